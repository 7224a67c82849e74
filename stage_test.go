package reslib

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/reslib/internal/testutil"
)

func TestStage_ReadWrite(t *testing.T) {
	t.Parallel()

	s := NewStage()
	require.NoError(t, s.StageBytes("test/abc/def", []byte{0, 1, 2, 3, 4, 5}))
	require.NoError(t, s.StageBytes("test/abc/defg", []byte{5, 4, 3, 2, 1, 0}))

	got, err := s.Read("test/abc/def")
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 3, 4, 5}, got)

	// Reads rewind, so a second read returns the same bytes.
	got, err = s.Read("test/abc/def")
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 3, 4, 5}, got)

	got, err = s.Read("test/abc/defg")
	require.NoError(t, err)
	assert.Equal(t, []byte{5, 4, 3, 2, 1, 0}, got)
	assert.Equal(t, 2, s.Len())
}

func TestStage_LastWriteWins(t *testing.T) {
	t.Parallel()

	s := NewStage()
	require.NoError(t, s.StageBytes("a", []byte("first")))
	require.NoError(t, s.StageBytes("a", []byte("second")))

	got, err := s.Read("a")
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
	assert.Equal(t, 1, s.Len())
}

func TestStage_InvalidPathLeavesStageUnchanged(t *testing.T) {
	t.Parallel()

	s := NewStage()
	require.NoError(t, s.StageBytes("ok", []byte("x")))

	for _, p := range []string{`a\b`, "a?b", "test/abc?/def", "a=b", "c:/x"} {
		err := s.StageBytes(p, []byte("data"))
		assert.ErrorIs(t, err, ErrInvalidPath, p)
	}
	assert.Equal(t, []string{"ok"}, s.Paths())

	_, err := s.Read("a?b")
	assert.ErrorIs(t, err, ErrInvalidPath)
	_, err = s.Take("a?b")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestStage_NotFound(t *testing.T) {
	t.Parallel()

	s := NewStage()
	_, err := s.Read("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = s.Take("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Remove("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStage_Take(t *testing.T) {
	t.Parallel()

	s := NewStage()
	require.NoError(t, s.StageBytes("a", []byte("alpha")))
	require.NoError(t, s.StageBytes("b", []byte("beta")))

	got, err := s.Take("a")
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(got))
	assert.False(t, s.Has("a"))
	assert.Equal(t, []string{"b"}, s.Paths())

	_, err = s.Take("a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStage_TakeKeepsEntryOnReadFailure(t *testing.T) {
	t.Parallel()

	s := NewStage()
	boom := errors.New("boom")
	require.NoError(t, s.Stage("bad", &testutil.FailingSeeker{Err: boom}))

	_, err := s.Take("bad")
	assert.ErrorIs(t, err, boom)
	assert.True(t, s.Has("bad"))
}

func TestStage_Remove(t *testing.T) {
	t.Parallel()

	s := NewStage()
	src := bytes.NewReader([]byte("payload"))
	require.NoError(t, s.Stage("p", src))

	got, err := s.Remove("p")
	require.NoError(t, err)
	assert.Same(t, src, got)
	assert.Equal(t, 0, s.Len())
}

func TestStage_RejectsNilSource(t *testing.T) {
	t.Parallel()

	s := NewStage()
	err := s.Stage("p", nil)
	assert.ErrorIs(t, err, fs.ErrInvalid)
	assert.Equal(t, 0, s.Len())
}

func TestStage_PathsSorted(t *testing.T) {
	t.Parallel()

	s := NewStage()
	for _, p := range []string{"z", "a/b", "m", "a", "B"} {
		require.NoError(t, s.StageBytes(p, nil))
	}
	assert.Equal(t, []string{"B", "a", "a/b", "m", "z"}, s.Paths())
}

func TestStage_FileSource(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "src.bin")
	testutil.WriteFile(t, path, []byte("from disk"))
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	s := NewStage()
	require.NoError(t, s.Stage("disk", f))

	// Move the cursor; Read must rewind.
	_, err = f.Seek(5, io.SeekStart)
	require.NoError(t, err)

	got, err := s.Read("disk")
	require.NoError(t, err)
	assert.Equal(t, "from disk", string(got))
}

type namedSource struct {
	*bytes.Reader
}

func (namedSource) String() string { return "named" }

func TestStage_String(t *testing.T) {
	t.Parallel()

	s := NewStage()
	require.NoError(t, s.Stage("x", namedSource{bytes.NewReader(nil)}))
	require.NoError(t, s.StageBytes("y", nil))

	assert.Equal(t, `Stage{"x": named, "y": *bytes.Reader}`, s.String())
}

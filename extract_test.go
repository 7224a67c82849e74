package reslib

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/reslib/internal/testutil"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	files := map[string][]byte{
		"a.txt":         []byte("aaa"),
		"dir/b.txt":     bytes.Repeat([]byte("b"), 200),
		"dir/sub/c.bin": testutil.RandomBytes(4096, 3),
		"empty":         {},
	}
	path := createTestArchive(t, files, TierFast)

	for _, workers := range []int{1, 3, 16} {
		dest := t.TempDir()
		stats, err := Extract(context.Background(), path, dest, ExtractWithWorkers(workers))
		require.NoError(t, err)
		assert.Equal(t, 4, stats.FileCount)
		assert.Equal(t, uint64(3+200+4096), stats.TotalBytes)
		assert.Equal(t, 0, stats.Skipped)

		for p, want := range files {
			got, err := os.ReadFile(filepath.Join(dest, filepath.FromSlash(p)))
			require.NoError(t, err, p)
			assert.Equal(t, want, got, p)
		}
	}
}

func TestExtract_SkipsExisting(t *testing.T) {
	t.Parallel()

	path := createTestArchive(t, testutil.SampleFiles(), TierFast)
	dest := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dest, "a.txt"), []byte("existing"))

	stats, err := Extract(context.Background(), path, dest)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.FileCount)
	assert.Equal(t, 1, stats.Skipped)

	got, err := os.ReadFile(filepath.Join(dest, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "existing", string(got))

	stats, err = Extract(context.Background(), path, dest, ExtractWithOverwrite(true))
	require.NoError(t, err)
	assert.Equal(t, 3, stats.FileCount)

	got, err = os.ReadFile(filepath.Join(dest, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Test file A", string(got))
}

func TestExtract_RejectsTraversalPaths(t *testing.T) {
	t.Parallel()

	for _, bad := range []string{"../pwned.txt", "/abs.txt", "a/../../pwned.txt", ""} {
		path := createTestArchive(t, map[string][]byte{
			bad:        []byte("pwned"),
			"safe.txt": []byte("safe"),
		}, TierFast)

		destDir := t.TempDir()
		_, err := Extract(context.Background(), path, destDir)
		var pathErr *fs.PathError
		require.ErrorAs(t, err, &pathErr, "%q", bad)
		require.ErrorIs(t, pathErr.Err, fs.ErrInvalid)

		_, statErr := os.Stat(filepath.Join(destDir, "safe.txt"))
		require.Error(t, statErr, "nothing is written when any path is rejected")
		_, statErr = os.Stat(filepath.Join(destDir, "..", "pwned.txt"))
		require.Error(t, statErr)
	}
}

func TestExtract_Progress(t *testing.T) {
	t.Parallel()

	path := createTestArchive(t, testutil.SampleFiles(), TierFast)

	var (
		mu    sync.Mutex
		paths []string
	)
	_, err := Extract(context.Background(), path, t.TempDir(),
		ExtractWithWorkers(2),
		ExtractWithProgress(func(e ProgressEvent) {
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, StageExtracting, e.Stage)
			assert.Equal(t, 3, e.EntriesTotal)
			paths = append(paths, e.Path)
		}))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.txt", "b.txt", "c.txt"}, paths)
}

func TestExtract_Canceled(t *testing.T) {
	t.Parallel()

	path := createTestArchive(t, testutil.SampleFiles(), TierFast)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Extract(ctx, path, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtract_BadArchive(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.rlib")
	testutil.WriteFile(t, path, []byte("not an archive at all, just text"))

	_, err := Extract(context.Background(), path, t.TempDir())
	assert.ErrorIs(t, err, ErrFormat)
}

func TestExtract_CorruptEntryLeavesNoFile(t *testing.T) {
	t.Parallel()

	path := createTestArchive(t, map[string][]byte{"a.txt": bytes.Repeat([]byte("a"), 4096)}, TierFast)
	r, err := Open(path)
	require.NoError(t, err)
	entry, err := r.Stat("a.txt")
	require.NoError(t, err)
	dataStart := int64(HeaderSize) + int64(r.IndexSize())
	require.NoError(t, r.Close())
	testutil.CorruptFile(t, path, dataStart+int64(entry.Offset+entry.Length)-1)

	dest := t.TempDir()
	_, err = Extract(context.Background(), path, dest)
	require.ErrorIs(t, err, ErrCodec)

	names, err := os.ReadDir(dest)
	require.NoError(t, err)
	assert.Empty(t, names, "no partial or temporary file remains")
}

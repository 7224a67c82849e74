package index

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoadIndex(tb testing.TB, entries []Entry) *Index {
	tb.Helper()
	idx, err := Load(EncodeEntries(entries))
	require.NoError(tb, err, "Load failed")
	return idx
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("empty data", func(t *testing.T) {
		t.Parallel()
		_, err := Load(nil)
		assert.ErrorIs(t, err, ErrDecode)
	})

	t.Run("empty index", func(t *testing.T) {
		t.Parallel()
		idx := mustLoadIndex(t, []Entry{})
		assert.Equal(t, 0, idx.Len())
		assert.Empty(t, idx.Paths())
	})

	t.Run("unsorted", func(t *testing.T) {
		t.Parallel()
		_, err := Load(EncodeEntries([]Entry{{Path: "b"}, {Path: "a"}}))
		assert.Error(t, err)
	})

	t.Run("duplicate", func(t *testing.T) {
		t.Parallel()
		_, err := Load(EncodeEntries([]Entry{{Path: "a"}, {Path: "a"}}))
		assert.Error(t, err)
	})
}

func TestIndexLookup(t *testing.T) {
	t.Parallel()

	var entries []Entry
	for i := range 101 {
		entries = append(entries, Entry{Path: fmt.Sprintf("dir/file%03d", i), Offset: uint64(i * 10), Length: 10})
	}
	idx := mustLoadIndex(t, entries)

	for _, i := range []int{0, 50, 100} {
		e, ok := idx.Lookup(entries[i].Path)
		require.True(t, ok, "expected to find %s", entries[i].Path)
		assert.Equal(t, entries[i], e)
	}

	for _, missing := range []string{"", "dir/file", "dir/file100x", "zzz", "a"} {
		_, ok := idx.Lookup(missing)
		assert.False(t, ok, "unexpected hit for %q", missing)
	}
}

func TestIndexEntriesIsCopy(t *testing.T) {
	t.Parallel()

	idx := mustLoadIndex(t, []Entry{{Path: "a", Offset: 0, Length: 1}})
	entries := idx.Entries()
	entries[0].Length = 99

	e, ok := idx.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, uint64(1), e.Length)
}

func TestEntryEnd(t *testing.T) {
	t.Parallel()

	end, ok := Entry{Offset: 10, Length: 5}.End()
	assert.True(t, ok)
	assert.Equal(t, uint64(15), end)

	_, ok = Entry{Offset: Unset, Length: 1}.End()
	assert.False(t, ok)
}

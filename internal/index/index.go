package index

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Unset is the sentinel offset and length of an entry that has not been
// written yet.
const Unset = math.MaxUint64

// Entry locates one resource within the data block.
type Entry struct {
	// Path is the resource name. Entries are ordered by Path.
	Path string

	// Offset is relative to the start of the data block.
	Offset uint64

	// Length is the compressed byte count.
	Length uint64
}

// End returns the offset one past the entry's last byte, and false if the
// sum overflows.
func (e Entry) End() (uint64, bool) {
	if e.Length > math.MaxUint64-e.Offset {
		return 0, false
	}
	return e.Offset + e.Length, true
}

// Index is an immutable, path-sorted list of entries.
type Index struct {
	entries []Entry
	paths   []string
}

// Placeholder returns an index with one unset entry per path. paths must be
// sorted ascending.
func Placeholder(paths []string) []Entry {
	entries := make([]Entry, len(paths))
	for i, p := range paths {
		entries[i] = Entry{Path: p, Offset: Unset, Length: Unset}
	}
	return entries
}

// Load decodes an encoded index and checks that its paths are strictly
// ascending.
func Load(data []byte) (*Index, error) {
	entries, err := DecodeEntries(data)
	if err != nil {
		return nil, err
	}
	return New(entries)
}

// New wraps entries, which must be strictly ascending by path. The slice is
// retained; callers must not modify it afterwards.
func New(entries []Entry) (*Index, error) {
	paths := make([]string, len(entries))
	for i, e := range entries {
		if i > 0 && entries[i-1].Path >= e.Path {
			return nil, fmt.Errorf("index: entry %d (%q) is not after %q", i, e.Path, entries[i-1].Path)
		}
		paths[i] = e.Path
	}
	return &Index{entries: entries, paths: paths}, nil
}

// Lookup returns the entry for path using binary search.
func (idx *Index) Lookup(path string) (Entry, bool) {
	i, ok := slices.BinarySearchFunc(idx.entries, path, func(e Entry, target string) int {
		return strings.Compare(e.Path, target)
	})
	if !ok {
		return Entry{}, false
	}
	return idx.entries[i], true
}

// Len returns the number of entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// At returns the i-th entry.
func (idx *Index) At(i int) Entry {
	return idx.entries[i]
}

// Paths returns the sorted paths. The slice is shared and must not be modified.
func (idx *Index) Paths() []string {
	return idx.paths
}

// Entries returns a copy of the entries.
func (idx *Index) Entries() []Entry {
	return slices.Clone(idx.entries)
}

package reslib

import (
	"cmp"
	"context"
	"slices"
)

// Verify checks that the entries tile the data block exactly, with no gaps
// or overlaps, and that every entry decompresses.
func (r *Reader) Verify(ctx context.Context) error {
	entries := r.idx.Entries()
	slices.SortFunc(entries, func(a, b Entry) int {
		return cmp.Compare(a.Offset, b.Offset)
	})

	var cursor uint64
	for _, e := range entries {
		pos := r.dataStart + int64(cursor)
		if e.Offset != cursor {
			return formatErrorf(pos, nil, "entry %q starts at %d, expected %d", e.Path, e.Offset, cursor)
		}
		end, ok := e.End()
		if !ok || end > r.dataSize {
			return formatErrorf(pos, nil, "entry %q exceeds data block", e.Path)
		}
		cursor = end
	}
	if cursor != r.dataSize {
		return formatErrorf(r.dataStart+int64(cursor), nil,
			"entries cover %d of %d data bytes", cursor, r.dataSize)
	}

	for i := range r.idx.Len() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := r.readEntry(r.idx.At(i)); err != nil {
			return err
		}
	}
	r.log().Debug("archive verified", "entries", r.idx.Len())
	return nil
}

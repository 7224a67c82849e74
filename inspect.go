package reslib

import (
	"fmt"
	"io"
	"os"

	"github.com/opencontainers/go-digest"
)

// Info summarizes an archive without decompressing any entry.
type Info struct {
	// Digest is the SHA-256 digest of the whole archive file.
	Digest digest.Digest

	// Size is the archive size in bytes.
	Size uint64

	// IndexSize is the size of the encoded index.
	IndexSize uint64

	// DataSize is the size of the data block.
	DataSize uint64

	// Entries is the index in path order.
	Entries []Entry
}

// Inspect reads the header and index of the archive at path and computes the
// digest of the file.
func Inspect(path string, opts ...Option) (*Info, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	r, err := NewReader(f, opts...)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to archive start: %w", err)
	}
	dgst, err := digest.SHA256.FromReader(io.LimitReader(f, int64(r.Size())))
	if err != nil {
		return nil, fmt.Errorf("digest archive: %w", err)
	}

	return &Info{
		Digest:    dgst,
		Size:      r.Size(),
		IndexSize: r.IndexSize(),
		DataSize:  r.DataSize(),
		Entries:   r.Entries(),
	}, nil
}

// FileCount returns the number of entries.
func (i *Info) FileCount() int {
	return len(i.Entries)
}

// CompressedSize returns the sum of all entry lengths.
func (i *Info) CompressedSize() uint64 {
	var total uint64
	for _, e := range i.Entries {
		total += e.Length
	}
	return total
}

package reslib

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"slices"

	"github.com/meigma/reslib/internal/codec"
	"github.com/meigma/reslib/internal/index"
)

// Reader serves individual entries of an archive.
//
// The index is parsed once when the Reader is created; entry data is read
// from the source on every call and never cached. A Reader is not safe for
// concurrent use because all reads share the source's cursor.
type Reader struct {
	src       io.ReadSeeker
	closer    io.Closer
	start     int64
	dataStart int64
	indexSize uint64
	dataSize  uint64
	idx       *index.Index
	dec       *codec.Decompressor
	logger    *slog.Logger
}

// Open opens the archive at path. The Reader owns the file and closes it on
// Close.
func Open(path string, opts ...Option) (*Reader, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	r, err := NewReader(f, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	r.log().Debug("archive opened", "path", path)
	return r, nil
}

// NewReader reads the archive header and index from src, starting at its
// current position. src is borrowed: Close does not close it.
func NewReader(src io.ReadSeeker, opts ...Option) (*Reader, error) {
	cfg := readerConfig{
		maxIndexSize: DefaultMaxIndexSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Reader{src: src, logger: cfg.logger}
	if err := r.load(&cfg); err != nil {
		return nil, err
	}
	r.dec = cfg.decompressor()
	r.log().Info("archive loaded", "entries", r.idx.Len(), "index_size", r.indexSize, "data_size", r.dataSize)
	return r, nil
}

// log returns the logger, falling back to a discard logger if nil.
func (r *Reader) log() *slog.Logger {
	if r.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.logger
}

func (r *Reader) load(cfg *readerConfig) error {
	start, err := r.src.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("locate archive start: %w", err)
	}
	r.start = start

	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r.src, hdr[:]); err != nil {
		if isShortRead(err) {
			return formatErrorf(start, nil, "truncated header")
		}
		return fmt.Errorf("read header: %w", err)
	}
	if [fingerprintSize]byte(hdr[:fingerprintSize]) != Fingerprint {
		return formatErrorf(start, nil, "fingerprint mismatch")
	}
	r.indexSize = binary.BigEndian.Uint64(hdr[fingerprintSize:])
	r.dataSize = binary.BigEndian.Uint64(hdr[fingerprintSize+index.Uint64Size:])

	if cfg.maxIndexSize > 0 && r.indexSize > cfg.maxIndexSize {
		return formatErrorf(start+fingerprintSize, nil, "index size %d exceeds limit %d", r.indexSize, cfg.maxIndexSize)
	}

	end, err := r.src.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("determine archive size: %w", err)
	}
	if end-start < HeaderSize {
		return formatErrorf(start, nil, "truncated header")
	}
	body := uint64(end-start) - HeaderSize
	if r.indexSize > body || r.dataSize > body-r.indexSize {
		return formatErrorf(start+fingerprintSize, nil,
			"truncated archive: header declares %d index and %d data bytes, %d available",
			r.indexSize, r.dataSize, body)
	}

	if _, err := r.src.Seek(start+HeaderSize, io.SeekStart); err != nil {
		return fmt.Errorf("seek to index: %w", err)
	}
	raw := make([]byte, r.indexSize)
	if _, err := io.ReadFull(r.src, raw); err != nil {
		if isShortRead(err) {
			return formatErrorf(start+HeaderSize, nil, "truncated index")
		}
		return fmt.Errorf("read index: %w", err)
	}

	idx, err := index.Load(raw)
	if err != nil {
		offset := start + HeaderSize
		var decErr *index.DecodeError
		if errors.As(err, &decErr) {
			offset += int64(decErr.Offset)
		}
		return formatErrorf(offset, err, "bad index")
	}
	r.idx = idx
	r.dataStart = start + HeaderSize + int64(r.indexSize)
	return nil
}

// Read returns the decompressed contents of the entry at path.
func (r *Reader) Read(path string) ([]byte, error) {
	entry, err := r.lookup("read", path)
	if err != nil {
		return nil, err
	}
	return r.readEntry(entry)
}

// ReadInto streams the decompressed contents of the entry at path to w and
// returns the number of bytes written. Neither the compressed nor the
// decompressed entry is held in memory as a whole.
//
// Errors returned by w are passed through unchanged. If decompression fails
// part way, w may already have received some of the entry.
func (r *Reader) ReadInto(path string, w io.Writer) (int64, error) {
	entry, err := r.lookup("read", path)
	if err != nil {
		return 0, err
	}
	if err := r.seekEntry(entry); err != nil {
		return 0, err
	}
	n, err := r.dec.Stream(w, io.LimitReader(r.src, int64(entry.Length)))
	if err != nil {
		var werr *codec.WriteError
		if errors.As(err, &werr) {
			return n, werr.Err
		}
		return n, &fs.PathError{Op: "read", Path: entry.Path, Err: fmt.Errorf("%w: %w", ErrCodec, err)}
	}
	r.log().Debug("entry streamed", "path", entry.Path, "compressed_size", entry.Length, "size", n)
	return n, nil
}

// Stat returns the index entry for path.
func (r *Reader) Stat(path string) (Entry, error) {
	return r.lookup("stat", path)
}

// List returns the archived paths in ascending order.
func (r *Reader) List() []string {
	return slices.Clone(r.idx.Paths())
}

// Entries returns a copy of the index.
func (r *Reader) Entries() []Entry {
	return r.idx.Entries()
}

// Len returns the number of archived entries.
func (r *Reader) Len() int {
	return r.idx.Len()
}

// IndexSize returns the size of the encoded index in bytes.
func (r *Reader) IndexSize() uint64 {
	return r.indexSize
}

// DataSize returns the size of the data block in bytes.
func (r *Reader) DataSize() uint64 {
	return r.dataSize
}

// Size returns the total archive size in bytes.
func (r *Reader) Size() uint64 {
	return HeaderSize + r.indexSize + r.dataSize
}

// Stage decompresses every entry into a new Stage, so an archive can be
// modified and flushed again.
func (r *Reader) Stage() (*Stage, error) {
	s := NewStage()
	for _, p := range r.idx.Paths() {
		data, err := r.Read(p)
		if err != nil {
			return nil, err
		}
		if err := s.StageBytes(p, data); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Close releases the decoder and, for Readers created by Open, the file.
func (r *Reader) Close() error {
	r.dec.Close()
	if r.closer != nil {
		err := r.closer.Close()
		r.closer = nil
		return err
	}
	return nil
}

func (r *Reader) lookup(op, path string) (Entry, error) {
	if err := ValidatePath(path); err != nil {
		return Entry{}, err
	}
	entry, ok := r.idx.Lookup(path)
	if !ok {
		return Entry{}, &fs.PathError{Op: op, Path: path, Err: ErrNotFound}
	}
	return entry, nil
}

// seekEntry checks that entry lies inside the data block and positions the
// source at its first byte.
func (r *Reader) seekEntry(entry Entry) error {
	end, ok := entry.End()
	if !ok || end > r.dataSize || entry.Length > math.MaxInt {
		return formatErrorf(r.dataStart, nil, "entry %q (offset %d, length %d) exceeds data block of %d bytes",
			entry.Path, entry.Offset, entry.Length, r.dataSize)
	}
	if _, err := r.src.Seek(r.dataStart+int64(entry.Offset), io.SeekStart); err != nil {
		return fmt.Errorf("seek to %s: %w", entry.Path, err)
	}
	return nil
}

// readRaw returns the compressed bytes of entry.
func (r *Reader) readRaw(entry Entry) ([]byte, error) {
	if err := r.seekEntry(entry); err != nil {
		return nil, err
	}
	buf := make([]byte, entry.Length)
	if _, err := io.ReadFull(r.src, buf); err != nil {
		if isShortRead(err) {
			return nil, formatErrorf(r.dataStart+int64(entry.Offset), nil, "truncated entry %q", entry.Path)
		}
		return nil, fmt.Errorf("read %s: %w", entry.Path, err)
	}
	return buf, nil
}

func (r *Reader) readEntry(entry Entry) ([]byte, error) {
	raw, err := r.readRaw(entry)
	if err != nil {
		return nil, err
	}
	data, err := r.dec.Decompress(nil, raw)
	if err != nil {
		return nil, &fs.PathError{Op: "read", Path: entry.Path, Err: fmt.Errorf("%w: %w", ErrCodec, err)}
	}
	if data == nil {
		data = []byte{}
	}
	r.log().Debug("entry read", "path", entry.Path, "compressed_size", entry.Length, "size", len(data))
	return data, nil
}

func isShortRead(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

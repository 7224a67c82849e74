package codec

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// Decompressor decodes zstd frames produced by Compressor.
//
// The underlying decoder is created on first use.
type Decompressor struct {
	dec                   *zstd.Decoder
	maxDecoderMemory      uint64
	decoderConcurrencySet bool
	decoderConcurrency    int
	decoderLowmemSet      bool
	decoderLowmem         bool
}

// DecompressOption configures a Decompressor.
type DecompressOption func(*Decompressor)

// WithDecoderConcurrency sets the decoder concurrency level.
// Values < 0 are treated as 0 (use GOMAXPROCS).
func WithDecoderConcurrency(n int) DecompressOption {
	return func(d *Decompressor) {
		if n < 0 {
			n = 0
		}
		d.decoderConcurrency = n
		d.decoderConcurrencySet = true
	}
}

// WithDecoderLowmem enables or disables low-memory mode.
func WithDecoderLowmem(b bool) DecompressOption {
	return func(d *Decompressor) {
		d.decoderLowmem = b
		d.decoderLowmemSet = true
	}
}

// NewDecompressor creates a Decompressor.
// If maxMemory is 0, no memory limit is applied.
func NewDecompressor(maxMemory uint64, opts ...DecompressOption) *Decompressor {
	d := &Decompressor{
		maxDecoderMemory:      maxMemory,
		decoderConcurrencySet: true,
		decoderConcurrency:    1,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decompress decodes src and appends the result to dst.
func (d *Decompressor) Decompress(dst, src []byte) ([]byte, error) {
	if err := d.init(); err != nil {
		return nil, err
	}
	return d.dec.DecodeAll(src, dst)
}

// Stream decodes the frames read from src and writes the output to dst.
// Failures reported by dst are returned as *WriteError so callers can tell
// them apart from corrupt input.
func (d *Decompressor) Stream(dst io.Writer, src io.Reader) (int64, error) {
	if err := d.init(); err != nil {
		return 0, err
	}
	if err := d.dec.Reset(src); err != nil {
		return 0, err
	}
	defer d.dec.Reset(nil) //nolint:errcheck // releases src
	return d.dec.WriteTo(errWriter{w: dst})
}

// WriteError is returned by Stream when the destination writer fails.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return "write decompressed data: " + e.Err.Error()
}

// Unwrap returns the writer's error.
func (e *WriteError) Unwrap() error {
	return e.Err
}

type errWriter struct {
	w io.Writer
}

func (ew errWriter) Write(p []byte) (int, error) {
	n, err := ew.w.Write(p)
	if err != nil {
		return n, &WriteError{Err: err}
	}
	return n, nil
}

func (d *Decompressor) init() error {
	if d.dec != nil {
		return nil
	}
	dec, err := d.newDecoder()
	if err != nil {
		return err
	}
	d.dec = dec
	return nil
}

// Close releases the decoder, if one was created.
func (d *Decompressor) Close() {
	if d.dec != nil {
		d.dec.Close()
		d.dec = nil
	}
}

func (d *Decompressor) newDecoder() (*zstd.Decoder, error) {
	opts := make([]zstd.DOption, 0, 3)
	if d.decoderConcurrencySet {
		opts = append(opts, zstd.WithDecoderConcurrency(d.decoderConcurrency))
	}
	if d.decoderLowmemSet {
		opts = append(opts, zstd.WithDecoderLowmem(d.decoderLowmem))
	}
	if d.maxDecoderMemory != 0 {
		opts = append(opts, zstd.WithDecoderMaxMemory(d.maxDecoderMemory))
	}
	return zstd.NewReader(nil, opts...)
}

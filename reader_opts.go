package reslib

import (
	"log/slog"

	"github.com/meigma/reslib/internal/codec"
)

// DefaultMaxIndexSize is the default limit on the encoded index size (64MB).
const DefaultMaxIndexSize = 64 << 20

type readerConfig struct {
	logger                *slog.Logger
	maxIndexSize          uint64
	maxDecoderMemory      uint64
	decoderConcurrencySet bool
	decoderConcurrency    int
	decoderLowmemSet      bool
	decoderLowmem         bool
}

// Option configures a Reader.
type Option func(*readerConfig)

// WithLogger sets the logger for reader operations.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *readerConfig) {
		cfg.logger = logger
	}
}

// WithMaxIndexSize limits the size of the index read at open time.
// Set limit to 0 to disable the limit.
func WithMaxIndexSize(limit uint64) Option {
	return func(cfg *readerConfig) {
		cfg.maxIndexSize = limit
	}
}

// WithMaxDecoderMemory limits the memory the zstd decoder may allocate,
// which also caps the decompressed size of a single entry. Entries above the
// cap fail to read with ErrCodec. The default of 0 means no limit.
func WithMaxDecoderMemory(limit uint64) Option {
	return func(cfg *readerConfig) {
		cfg.maxDecoderMemory = limit
	}
}

// WithDecoderConcurrency sets the zstd decoder concurrency (default: 1).
// Values < 0 are treated as 0 (use GOMAXPROCS).
func WithDecoderConcurrency(n int) Option {
	return func(cfg *readerConfig) {
		if n < 0 {
			n = 0
		}
		cfg.decoderConcurrency = n
		cfg.decoderConcurrencySet = true
	}
}

// WithDecoderLowmem sets whether the zstd decoder should use low-memory mode (default: false).
func WithDecoderLowmem(enabled bool) Option {
	return func(cfg *readerConfig) {
		cfg.decoderLowmem = enabled
		cfg.decoderLowmemSet = true
	}
}

func (cfg *readerConfig) decompressor() *codec.Decompressor {
	opts := make([]codec.DecompressOption, 0, 2)
	if cfg.decoderConcurrencySet {
		opts = append(opts, codec.WithDecoderConcurrency(cfg.decoderConcurrency))
	}
	if cfg.decoderLowmemSet {
		opts = append(opts, codec.WithDecoderLowmem(cfg.decoderLowmem))
	}
	return codec.NewDecompressor(cfg.maxDecoderMemory, opts...)
}

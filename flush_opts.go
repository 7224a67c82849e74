package reslib

import "log/slog"

// flushConfig holds configuration for Flush.
type flushConfig struct {
	logger             *slog.Logger
	progress           ProgressFunc
	encoderConcurrency int
}

// FlushOption configures Flush and FlushFile.
type FlushOption func(*flushConfig)

// FlushWithLogger sets the logger for flush operations.
// If not set, logging is disabled.
func FlushWithLogger(logger *slog.Logger) FlushOption {
	return func(cfg *flushConfig) {
		cfg.logger = logger
	}
}

// FlushWithProgress sets a callback that receives an event after each
// resource is written and once more before the index is backpatched.
func FlushWithProgress(fn ProgressFunc) FlushOption {
	return func(cfg *flushConfig) {
		cfg.progress = fn
	}
}

// FlushWithEncoderConcurrency sets the zstd encoder concurrency used for
// large resources. Values <= 0 use 1.
func FlushWithEncoderConcurrency(n int) FlushOption {
	return func(cfg *flushConfig) {
		cfg.encoderConcurrency = n
	}
}

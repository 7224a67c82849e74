package reslib

import "log/slog"

// defaultExtractWorkers is used when no ExtractWithWorkers option is set.
const defaultExtractWorkers = 4

type extractConfig struct {
	workers   int
	overwrite bool
	progress  ProgressFunc
	logger    *slog.Logger
	readOpts  []Option
}

// ExtractOption configures Extract.
type ExtractOption func(*extractConfig)

// ExtractWithWorkers sets the number of goroutines, each with its own
// Reader. Values <= 0 use the default (4).
func ExtractWithWorkers(n int) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.workers = n
	}
}

// ExtractWithOverwrite allows overwriting existing files.
// By default, existing files are skipped.
func ExtractWithOverwrite(overwrite bool) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.overwrite = overwrite
	}
}

// ExtractWithProgress sets a callback invoked after each entry is written.
// It is called from several goroutines.
func ExtractWithProgress(fn ProgressFunc) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.progress = fn
	}
}

// ExtractWithLogger sets the logger for extraction.
func ExtractWithLogger(logger *slog.Logger) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.logger = logger
	}
}

// ExtractWithReaderOptions passes options to every Reader Extract opens.
func ExtractWithReaderOptions(opts ...Option) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.readOpts = append(cfg.readOpts, opts...)
	}
}

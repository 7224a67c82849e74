package reslib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ExtractStats contains statistics about an Extract call.
type ExtractStats struct {
	// FileCount is the number of files written.
	FileCount int

	// TotalBytes is the number of decompressed bytes written.
	TotalBytes uint64

	// Skipped is the number of entries skipped because the file existed.
	Skipped int
}

// Extract writes every entry of the archive at archivePath below destDir.
// Forward slashes in entry paths become directories.
//
// Every path is checked before anything is written; a path that would
// escape destDir fails the whole call with fs.ErrInvalid. Files are written
// to a temporary name and renamed into place.
//
// Each worker opens its own Reader, since a Reader cannot be shared.
func Extract(ctx context.Context, archivePath, destDir string, opts ...ExtractOption) (ExtractStats, error) {
	cfg := extractConfig{workers: defaultExtractWorkers}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers <= 0 {
		cfg.workers = defaultExtractWorkers
	}
	log := cfg.logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	r, err := Open(archivePath, cfg.readOpts...)
	if err != nil {
		return ExtractStats{}, err
	}
	paths := r.List()
	if err := r.Close(); err != nil {
		return ExtractStats{}, fmt.Errorf("close archive: %w", err)
	}

	for _, p := range paths {
		if !filepath.IsLocal(filepath.FromSlash(p)) {
			return ExtractStats{}, &fs.PathError{Op: "extract", Path: p, Err: fs.ErrInvalid}
		}
	}

	log.Info("extracting archive", "path", archivePath, "dest", destDir, "entries", len(paths), "workers", cfg.workers)

	var (
		mu    sync.Mutex
		stats ExtractStats
	)
	work := make(chan string)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(work)
		for _, p := range paths {
			select {
			case work <- p:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	workers := min(cfg.workers, max(len(paths), 1))
	for range workers {
		g.Go(func() error {
			wr, err := Open(archivePath, cfg.readOpts...)
			if err != nil {
				return err
			}
			defer wr.Close()

			for p := range work {
				if err := gctx.Err(); err != nil {
					return err
				}
				n, skipped, err := extractEntry(wr, destDir, p, cfg.overwrite)
				if err != nil {
					return err
				}
				mu.Lock()
				if skipped {
					stats.Skipped++
				} else {
					stats.FileCount++
					stats.TotalBytes += n
				}
				event := ProgressEvent{
					Stage:        StageExtracting,
					Path:         p,
					BytesDone:    stats.TotalBytes,
					EntriesDone:  stats.FileCount + stats.Skipped,
					EntriesTotal: len(paths),
				}
				mu.Unlock()
				if cfg.progress != nil {
					cfg.progress(event)
				}
				log.Debug("entry extracted", "path", p, "size", n, "skipped", skipped)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return stats, err
	}
	return stats, nil
}

// extractEntry writes one entry below destDir.
func extractEntry(r *Reader, destDir, path string, overwrite bool) (uint64, bool, error) {
	target := filepath.Join(destDir, filepath.FromSlash(path))
	if !overwrite {
		if _, err := os.Lstat(target); err == nil {
			return 0, true, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return 0, false, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return 0, false, fmt.Errorf("create directory for %s: %w", path, err)
	}
	var n int64
	err := writeFileAtomic(target, func(w io.Writer) error {
		var err error
		n, err = r.ReadInto(path, w)
		return err
	})
	if err != nil {
		return 0, false, err
	}
	return uint64(n), false, nil
}

// writeFileAtomic streams fill into a temp file then renames it to target,
// so target is either absent, the old file, or complete.
func writeFileAtomic(target string, fill func(io.Writer) error) error {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, ".reslib-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", target, err)
	}
	tmpPath := tmp.Name()

	if err := fill(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

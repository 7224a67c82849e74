package reslib

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/meigma/reslib/internal/codec"
	"github.com/meigma/reslib/internal/index"
)

// Flush writes every staged resource to dst as an archive compressed at
// tier, and returns the number of bytes the archive occupies.
//
// The archive starts at dst's current position. Flush writes the header and
// a placeholder index first, then each resource in ascending path order,
// then seeks back to fill in the data length and the final index. On return
// dst is positioned at the end of the archive.
//
// Any error aborts the flush and leaves dst partially written. The Stage is
// only read, never modified.
func Flush(ctx context.Context, stage *Stage, dst io.WriteSeeker, tier Tier, opts ...FlushOption) (int64, error) {
	cfg := flushConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	w := &writer{cfg: cfg, logger: cfg.logger, dst: dst}
	return w.flush(ctx, stage, tier)
}

// FlushFile writes the staged resources to a new archive at path, creating
// parent directories as needed and truncating any existing file.
func FlushFile(ctx context.Context, stage *Stage, path string, tier Tier, opts ...FlushOption) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return 0, fmt.Errorf("create archive directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return 0, fmt.Errorf("create archive file: %w", err)
	}
	n, err := Flush(ctx, stage, f, tier, opts...)
	if err != nil {
		f.Close()
		return n, err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return n, fmt.Errorf("sync archive file: %w", err)
	}
	if err := f.Close(); err != nil {
		return n, fmt.Errorf("close archive file: %w", err)
	}
	return n, nil
}

// writer holds state for a single flush.
type writer struct {
	cfg    flushConfig
	logger *slog.Logger
	dst    io.WriteSeeker
}

// log returns the logger, falling back to a discard logger if nil.
func (w *writer) log() *slog.Logger {
	if w.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return w.logger
}

// reportProgress sends a progress event if a callback is configured.
func (w *writer) reportProgress(stage ProgressStage, path string, bytesDone uint64, done, total int) {
	if w.cfg.progress == nil {
		return
	}
	w.cfg.progress(ProgressEvent{
		Stage:        stage,
		Path:         path,
		BytesDone:    bytesDone,
		EntriesDone:  done,
		EntriesTotal: total,
	})
}

func (w *writer) flush(ctx context.Context, stage *Stage, tier Tier) (int64, error) {
	comp, err := codec.NewCompressor(tier, w.cfg.encoderConcurrency)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCodec, err)
	}
	defer comp.Close()

	paths := stage.Paths()
	entries := index.Placeholder(paths)
	placeholder := index.EncodeEntries(entries)
	indexSize := uint64(len(placeholder))

	w.log().Info("flushing archive", "entries", len(entries), "tier", tier.String(), "index_size", indexSize)

	start, err := w.dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("locate archive start: %w", err)
	}
	dataSizePos := start + int64(fingerprintSize+index.Uint64Size)
	indexPos := start + int64(HeaderSize)

	if err := w.writeHeader(indexSize, 0); err != nil {
		return 0, err
	}
	if _, err := w.dst.Write(placeholder); err != nil {
		return 0, fmt.Errorf("write placeholder index: %w", err)
	}

	dataSize, err := w.writeData(ctx, stage, comp, entries)
	if err != nil {
		return 0, err
	}

	w.reportProgress(StageFinalizing, "", dataSize, len(entries), len(entries))

	if _, err := w.dst.Seek(dataSizePos, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek to data length: %w", err)
	}
	var dataLen [index.Uint64Size]byte
	binary.BigEndian.PutUint64(dataLen[:], dataSize)
	if _, err := w.dst.Write(dataLen[:]); err != nil {
		return 0, fmt.Errorf("write data length: %w", err)
	}

	final := index.EncodeEntries(entries)
	if uint64(len(final)) != indexSize {
		return 0, fmt.Errorf("%w: placeholder %d bytes, final %d bytes", ErrIndexSizeChanged, indexSize, len(final))
	}
	if _, err := w.dst.Seek(indexPos, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek to index: %w", err)
	}
	if _, err := w.dst.Write(final); err != nil {
		return 0, fmt.Errorf("write index: %w", err)
	}

	total := uint64(HeaderSize) + indexSize + dataSize
	if total > math.MaxInt64-uint64(start) {
		return 0, ErrSizeOverflow
	}
	if _, err := w.dst.Seek(start+int64(total), io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek to archive end: %w", err)
	}

	w.log().Info("archive flushed", "entries", len(entries), "index_size", indexSize, "data_size", dataSize)
	return int64(total), nil
}

func (w *writer) writeHeader(indexSize, dataSize uint64) error {
	var hdr [HeaderSize]byte
	copy(hdr[:], Fingerprint[:])
	binary.BigEndian.PutUint64(hdr[fingerprintSize:], indexSize)
	binary.BigEndian.PutUint64(hdr[fingerprintSize+index.Uint64Size:], dataSize)
	if _, err := w.dst.Write(hdr[:]); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

// writeData compresses each staged resource into the data block and fills
// in the matching entry. entries must be in the same order as the stage's
// sorted paths.
func (w *writer) writeData(ctx context.Context, stage *Stage, comp *codec.Compressor, entries []index.Entry) (uint64, error) {
	var total uint64
	var buf []byte
	for i := range entries {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		path := entries[i].Path
		raw, err := stage.Read(path)
		if err != nil {
			return 0, err
		}
		buf = comp.Compress(buf[:0], raw)
		size := uint64(len(buf))
		if size > math.MaxUint64-total {
			return 0, ErrSizeOverflow
		}
		if _, err := w.dst.Write(buf); err != nil {
			return 0, fmt.Errorf("write %s: %w", path, err)
		}
		entries[i].Offset = total
		entries[i].Length = size
		total += size

		w.log().Debug("resource written", "path", path, "size", len(raw), "compressed_size", size)
		w.reportProgress(StageCompressing, path, total, i+1, len(entries))
	}
	return total, nil
}

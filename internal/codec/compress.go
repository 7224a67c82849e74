package codec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Compressor encodes whole buffers into independent zstd frames.
//
// A Compressor is not safe for concurrent use.
type Compressor struct {
	enc  *zstd.Encoder
	tier Tier
}

// NewCompressor returns a Compressor for tier. concurrency <= 0 uses 1.
func NewCompressor(tier Tier, concurrency int) (*Compressor, error) {
	if !tier.Valid() {
		return nil, fmt.Errorf("invalid compression tier %d", tier)
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	opts := []zstd.EOption{
		zstd.WithEncoderLevel(tier.EncoderLevel()),
		zstd.WithEncoderConcurrency(concurrency),
		zstd.WithZeroFrames(true),
	}
	if tier == TierUltra {
		opts = append(opts, zstd.WithAllLitEntropyCompression(true))
	}
	enc, err := zstd.NewWriter(nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	return &Compressor{enc: enc, tier: tier}, nil
}

// Tier returns the tier the compressor was created with.
func (c *Compressor) Tier() Tier {
	return c.tier
}

// Compress returns src encoded as a single zstd frame, appended to dst.
func (c *Compressor) Compress(dst, src []byte) []byte {
	return c.enc.EncodeAll(src, dst)
}

// Close releases encoder resources.
func (c *Compressor) Close() error {
	return c.enc.Close()
}

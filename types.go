package reslib

import (
	"github.com/meigma/reslib/internal/codec"
	"github.com/meigma/reslib/internal/index"
)

// Entry locates one archived resource.
//
// Offset is relative to the start of the data block and Length is the
// compressed size.
type Entry = index.Entry

// Tier selects the compression strength used by Flush.
type Tier = codec.Tier

// Compression tiers, from fastest and largest to slowest and smallest.
const (
	TierFastest = codec.TierFastest
	TierFast    = codec.TierFast
	TierNormal  = codec.TierNormal
	TierMaximum = codec.TierMaximum
	TierUltra   = codec.TierUltra
)

// ParseTier parses a tier name such as "fastest" or "ultra".
var ParseTier = codec.ParseTier

const (
	fingerprintSize = 10

	// HeaderSize is the size of the fingerprint and the two length fields.
	HeaderSize = fingerprintSize + 2*index.Uint64Size
)

// Fingerprint identifies a reslib archive.
var Fingerprint = [fingerprintSize]byte{0x67, 0xD7, 0x70, 0x3A, 0x54, 0x3D, 0xDB, 0xF5, 0x17, 0x95}

package codec

import (
	"fmt"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Tier selects a compression strength.
type Tier uint8

const (
	TierFastest Tier = iota
	TierFast
	TierNormal
	TierMaximum
	TierUltra
)

var tierNames = [...]string{"fastest", "fast", "normal", "maximum", "ultra"}

// String returns the lower-case name of the tier.
func (t Tier) String() string {
	if int(t) < len(tierNames) {
		return tierNames[t]
	}
	return "unknown"
}

// Valid reports whether t is one of the defined tiers.
func (t Tier) Valid() bool {
	return int(t) < len(tierNames)
}

// Strength returns the numeric strength of the tier on a 1-9 scale.
func (t Tier) Strength() int {
	return 2*int(t) + 1
}

// EncoderLevel maps the tier onto the zstd encoder's speed levels.
// Maximum and Ultra share the best level; NewCompressor additionally enables
// literal entropy compression for Ultra.
func (t Tier) EncoderLevel() zstd.EncoderLevel {
	switch t {
	case TierFastest:
		return zstd.SpeedFastest
	case TierFast:
		return zstd.SpeedDefault
	case TierNormal:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}

// ParseTier parses a tier name as returned by Tier.String.
func ParseTier(s string) (Tier, error) {
	for i, name := range tierNames {
		if strings.EqualFold(s, name) {
			return Tier(i), nil
		}
	}
	return 0, fmt.Errorf("unknown compression tier %q (want one of %s)", s, strings.Join(tierNames[:], ", "))
}

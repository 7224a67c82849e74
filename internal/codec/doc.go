// Package codec wraps zstd compression for archive entries.
//
// Each entry is stored as one self-contained zstd frame so that it can be
// decoded without touching its neighbours.
package codec

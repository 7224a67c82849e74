// Package index encodes, decodes and searches the archive index.
//
// The index is an ordered sequence of (path, offset, length) triples. It is
// stored with a deliberately small binary codec: big-endian uint64 values,
// strings prefixed with their uint64 byte length, and sequences prefixed with
// their uint64 element count. Tuples are plain concatenation. No other shape
// is representable.
//
// Every numeric field is fixed width, so re-encoding an index whose paths are
// unchanged always yields the same number of bytes. The archive writer relies
// on this to backpatch offsets in place.
package index

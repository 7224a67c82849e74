// Package reslib bundles many named resources into a single seekable
// archive file and reads any one of them back without decoding the rest.
//
// Resources are staged in a [Stage], written with [Flush] or [FlushFile], and
// read back through a [Reader] returned by [Open].
//
// # File layout
//
// All integers are big-endian.
//
//	offset 0            fingerprint   67 D7 70 3A 54 3D DB F5 17 95
//	offset 10           index length  uint64
//	offset 18           data length   uint64
//	offset 26           index block   (path, offset, length) triples sorted by path
//	offset 26+idxLen    data block    one zstd frame per entry
//
// Entry offsets are relative to the start of the data block.
//
// # Writing
//
// Flush writes the header and an index full of placeholder offsets, streams
// each compressed resource into the data block, then seeks back and
// overwrites the header and index with the real values. Flush does not
// rename or roll back anything; write to a temporary path and rename it if
// atomic replacement is needed.
//
// # Concurrency
//
// All operations block. A Reader shares a single file cursor between calls,
// so it must not be used from several goroutines at once. Open one Reader
// per goroutine instead, as [Extract] does.
package reslib

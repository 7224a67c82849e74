// Package testutil provides helpers shared by reslib tests.
package testutil

import (
	"errors"
	"io"
	"math/rand/v2"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// SampleFiles returns three small text resources with distinct lengths.
func SampleFiles() map[string][]byte {
	return map[string][]byte{
		"a.txt": []byte("Test file A"),
		"b.txt": []byte("Test file B "),
		"c.txt": []byte("Test file C  "),
	}
}

// RandomBytes returns n pseudo-random bytes derived from seed.
func RandomBytes(n int, seed uint64) []byte {
	rng := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(rng.UintN(256))
	}
	return buf
}

// Buffer is an in-memory io.ReadWriteSeeker. Writes past the end extend the
// buffer, zero-filling any gap.
type Buffer struct {
	data []byte
	pos  int64
}

// NewBuffer returns a Buffer initialised with a copy of data, positioned at 0.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: append([]byte(nil), data...)}
}

// Bytes returns the buffer contents.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Write implements io.Writer.
func (b *Buffer) Write(p []byte) (int, error) {
	end := b.pos + int64(len(p))
	if end > int64(len(b.data)) {
		b.data = append(b.data, make([]byte, end-int64(len(b.data)))...)
	}
	copy(b.data[b.pos:], p)
	b.pos = end
	return len(p), nil
}

// Read implements io.Reader.
func (b *Buffer) Read(p []byte) (int, error) {
	if b.pos >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.pos:])
	b.pos += int64(n)
	return n, nil
}

// Seek implements io.Seeker.
func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = b.pos + offset
	case io.SeekEnd:
		abs = int64(len(b.data)) + offset
	default:
		return 0, errors.New("testutil: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("testutil: negative position")
	}
	b.pos = abs
	return abs, nil
}

// FailingSeeker is an io.ReadSeeker whose Seek always fails.
type FailingSeeker struct {
	Err error
}

// Read implements io.Reader.
func (f *FailingSeeker) Read([]byte) (int, error) {
	return 0, io.EOF
}

// Seek implements io.Seeker.
func (f *FailingSeeker) Seek(int64, int) (int64, error) {
	return 0, f.Err
}

// WriteFile writes data to path or fails the test.
func WriteFile(tb testing.TB, path string, data []byte) {
	tb.Helper()
	require.NoError(tb, os.WriteFile(path, data, 0o644))
}

// CorruptFile XORs the byte at offset in the file at path with 0xFF.
func CorruptFile(tb testing.TB, path string, offset int64) {
	tb.Helper()
	data, err := os.ReadFile(path)
	require.NoError(tb, err)
	require.Less(tb, offset, int64(len(data)), "offset beyond file")
	data[offset] ^= 0xFF
	WriteFile(tb, path, data)
}

// TruncateFile shortens the file at path by n bytes.
func TruncateFile(tb testing.TB, path string, n int64) {
	tb.Helper()
	info, err := os.Stat(path)
	require.NoError(tb, err)
	require.LessOrEqual(tb, n, info.Size())
	require.NoError(tb, os.Truncate(path, info.Size()-n))
}

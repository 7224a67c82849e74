package index

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unicode/utf8"
)

// Uint64Size is the encoded size of a uint64 value.
const Uint64Size = 8

// minEntrySize is the smallest possible encoding of an Entry: an empty path
// (length prefix only) followed by offset and length.
const minEntrySize = 3 * Uint64Size

var (
	// ErrDecode is matched by every *DecodeError.
	ErrDecode = errors.New("index: malformed data")

	// ErrUnsupported is matched by every *UnsupportedTypeError.
	ErrUnsupported = errors.New("index: unsupported type")
)

// DecodeError describes malformed or truncated index bytes.
type DecodeError struct {
	// Offset is the byte position at which decoding failed.
	Offset int
	// Reason is a short description of the failure.
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("index: %s at offset %d", e.Reason, e.Offset)
}

// Is reports whether target is ErrDecode.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// UnsupportedTypeError is returned when Marshal or Unmarshal is given a
// value the codec cannot represent.
type UnsupportedTypeError struct {
	Op   string
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("index: cannot %s %s", e.Op, e.Type)
}

// Is reports whether target is ErrUnsupported.
func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupported
}

// Encoder appends codec values to an in-memory buffer.
//
// The zero value is ready to use.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an Encoder with capacity for size bytes.
func NewEncoder(size int) *Encoder {
	return &Encoder{buf: make([]byte, 0, size)}
}

// PutUint64 appends v as 8 big-endian bytes.
func (e *Encoder) PutUint64(v uint64) {
	e.buf = binary.BigEndian.AppendUint64(e.buf, v)
}

// PutString appends the byte length of s followed by its bytes.
func (e *Encoder) PutString(s string) {
	e.PutUint64(uint64(len(s)))
	e.buf = append(e.buf, s...)
}

// PutSeqLen appends a sequence element count.
func (e *Encoder) PutSeqLen(n int) {
	e.PutUint64(uint64(n))
}

// PutEntry appends an entry as a (string, uint64, uint64) tuple.
func (e *Encoder) PutEntry(entry Entry) {
	e.PutString(entry.Path)
	e.PutUint64(entry.Offset)
	e.PutUint64(entry.Length)
}

// Bytes returns the encoded bytes. The slice aliases the encoder buffer.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of bytes encoded so far.
func (e *Encoder) Len() int {
	return len(e.buf)
}

// Decoder reads codec values from a byte slice.
type Decoder struct {
	data []byte
	off  int
}

// NewDecoder returns a Decoder reading from data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Offset returns the number of bytes consumed.
func (d *Decoder) Offset() int {
	return d.off
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.data) - d.off
}

// Uint64 reads a big-endian uint64.
func (d *Decoder) Uint64() (uint64, error) {
	if d.Remaining() < Uint64Size {
		return 0, d.errorf("truncated uint64: need %d bytes, have %d", Uint64Size, d.Remaining())
	}
	v := binary.BigEndian.Uint64(d.data[d.off:])
	d.off += Uint64Size
	return v, nil
}

// String reads a length-prefixed UTF-8 string.
func (d *Decoder) String() (string, error) {
	n, err := d.Uint64()
	if err != nil {
		return "", err
	}
	if n > uint64(d.Remaining()) {
		return "", d.errorf("truncated string: need %d bytes, have %d", n, d.Remaining())
	}
	raw := d.data[d.off : d.off+int(n)]
	if !utf8.Valid(raw) {
		return "", d.errorf("invalid UTF-8 in string")
	}
	d.off += int(n)
	return string(raw), nil
}

// SeqLen reads a sequence element count. minElemSize is the smallest
// possible encoding of one element; counts that could not fit in the
// remaining bytes are rejected before any allocation happens.
func (d *Decoder) SeqLen(minElemSize int) (int, error) {
	n, err := d.Uint64()
	if err != nil {
		return 0, err
	}
	if minElemSize < 1 {
		minElemSize = 1
	}
	if n > uint64(d.Remaining()/minElemSize) || n > math.MaxInt32 {
		return 0, d.errorf("sequence length %d exceeds remaining data", n)
	}
	return int(n), nil
}

// Entry reads a (string, uint64, uint64) tuple.
func (d *Decoder) Entry() (Entry, error) {
	path, err := d.String()
	if err != nil {
		return Entry{}, err
	}
	off, err := d.Uint64()
	if err != nil {
		return Entry{}, err
	}
	length, err := d.Uint64()
	if err != nil {
		return Entry{}, err
	}
	return Entry{Path: path, Offset: off, Length: length}, nil
}

func (d *Decoder) errorf(format string, args ...any) error {
	return &DecodeError{Offset: d.off, Reason: fmt.Sprintf(format, args...)}
}

// Marshal encodes v. Only uint64, string, Entry and []Entry are supported.
func Marshal(v any) ([]byte, error) {
	var e Encoder
	switch v := v.(type) {
	case uint64:
		e.PutUint64(v)
	case string:
		e.PutString(v)
	case Entry:
		e.PutEntry(v)
	case []Entry:
		e.buf = make([]byte, 0, EncodedLen(v))
		e.PutSeqLen(len(v))
		for _, entry := range v {
			e.PutEntry(entry)
		}
	default:
		return nil, &UnsupportedTypeError{Op: "encode", Type: fmt.Sprintf("%T", v)}
	}
	return e.Bytes(), nil
}

// Unmarshal decodes data into v, which must be a *uint64, *string, *Entry or
// *[]Entry. The whole of data must be consumed; trailing bytes are an error.
func Unmarshal(data []byte, v any) error {
	d := NewDecoder(data)
	var err error
	switch v := v.(type) {
	case *uint64:
		*v, err = d.Uint64()
	case *string:
		*v, err = d.String()
	case *Entry:
		*v, err = d.Entry()
	case *[]Entry:
		*v, err = decodeEntries(d)
	default:
		return &UnsupportedTypeError{Op: "decode into", Type: fmt.Sprintf("%T", v)}
	}
	if err != nil {
		return err
	}
	if d.Remaining() != 0 {
		return d.errorf("%d trailing bytes", d.Remaining())
	}
	return nil
}

func decodeEntries(d *Decoder) ([]Entry, error) {
	n, err := d.SeqLen(minEntrySize)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, n)
	for range n {
		entry, err := d.Entry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// EncodeEntries encodes an index.
func EncodeEntries(entries []Entry) []byte {
	data, _ := Marshal(entries) //nolint:errcheck // []Entry is always supported
	return data
}

// DecodeEntries decodes an index produced by EncodeEntries.
func DecodeEntries(data []byte) ([]Entry, error) {
	var entries []Entry
	if err := Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// EncodedLen returns the exact number of bytes EncodeEntries produces.
func EncodedLen(entries []Entry) int {
	n := Uint64Size
	for _, e := range entries {
		n += minEntrySize + len(e.Path)
	}
	return n
}

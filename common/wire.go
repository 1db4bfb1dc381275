package common

import (
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
)

// DecodeError wraps any failure to deserialize a wire value: insufficient
// bytes, an unknown discriminant, an invalid ordinal, or malformed UTF-8.
// It always leaves the caller with no partial state to act on.
type DecodeError struct {
	Reason string
	Cause  error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decode error: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("decode error: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

func newDecodeError(reason string, cause error) error {
	return &DecodeError{Reason: reason, Cause: cause}
}

// Encoder accumulates the encoding of a message, field by field, in
// declaration order. Multi-byte integers are always little-endian,
// whatever the host's byte order.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder {
	return &Encoder{buf: make([]byte, 0, 64)}
}

// Bytes returns the accumulated encoding.
func (e *Encoder) Bytes() []byte { return e.buf }

// Bool appends a 1-byte boolean (0 -> false, nonzero -> true).
func (e *Encoder) Bool(v bool) {
	if v {
		e.buf = append(e.buf, 1)
	} else {
		e.buf = append(e.buf, 0)
	}
}

// U8 appends a single byte.
func (e *Encoder) U8(v uint8) {
	e.buf = append(e.buf, v)
}

// U16 appends a 2-byte value in little-endian byte order.
func (e *Encoder) U16(v uint16) {
	e.buf = append(e.buf, byte(v), byte(v>>8))
}

// UUID appends the raw 16 bytes of id.
func (e *Encoder) UUID(id uuid.UUID) {
	e.buf = append(e.buf, id[:]...)
}

// String appends a u16 byte-length prefix followed by the UTF-8 bytes of s.
// Errors if s is too long to fit a u16 length.
func (e *Encoder) String(s string) error {
	b := []byte(s)
	if len(b) > 0xFFFF {
		return fmt.Errorf("string too long to encode (%d bytes)", len(b))
	}
	e.U16(uint16(len(b)))
	e.buf = append(e.buf, b...)
	return nil
}

// Seq writes a length-prefixed sequence: a u16 byte count of the payload
// produced by encodeElems, followed by that payload.
func (e *Encoder) Seq(encodeElems func(*Encoder)) {
	sub := NewEncoder()
	encodeElems(sub)
	e.U16(uint16(len(sub.buf)))
	e.buf = append(e.buf, sub.buf...)
}

// Decoder reads primitives off a byte slice (multi-byte integers
// little-endian), advancing an internal cursor.
type Decoder struct {
	data   []byte
	offset int
}

// NewDecoder wraps data for sequential decoding.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Remaining reports how many undecoded bytes are left.
func (d *Decoder) Remaining() int { return len(d.data) - d.offset }

func (d *Decoder) need(n int) error {
	if d.Remaining() < n {
		return newDecodeError(fmt.Sprintf("need %d bytes, have %d", n, d.Remaining()), nil)
	}
	return nil
}

// Bool decodes a 1-byte boolean.
func (d *Decoder) Bool() (bool, error) {
	if err := d.need(1); err != nil {
		return false, err
	}
	v := d.data[d.offset] != 0
	d.offset++
	return v, nil
}

// U8 decodes a single byte.
func (d *Decoder) U8() (uint8, error) {
	if err := d.need(1); err != nil {
		return 0, err
	}
	v := d.data[d.offset]
	d.offset++
	return v, nil
}

// U16 decodes a 2-byte value in little-endian byte order.
func (d *Decoder) U16() (uint16, error) {
	if err := d.need(2); err != nil {
		return 0, err
	}
	v := uint16(d.data[d.offset]) | uint16(d.data[d.offset+1])<<8
	d.offset += 2
	return v, nil
}

// UUID decodes the raw 16-byte form.
func (d *Decoder) UUID() (uuid.UUID, error) {
	if err := d.need(16); err != nil {
		return uuid.UUID{}, err
	}
	var id uuid.UUID
	copy(id[:], d.data[d.offset:d.offset+16])
	d.offset += 16
	return id, nil
}

// String decodes a u16 byte-length prefix followed by that many UTF-8 bytes.
func (d *Decoder) String() (string, error) {
	n, err := d.U16()
	if err != nil {
		return "", newDecodeError("string length", err)
	}
	if err := d.need(int(n)); err != nil {
		return "", newDecodeError("string content", err)
	}
	raw := d.data[d.offset : d.offset+int(n)]
	d.offset += int(n)
	if !utf8.Valid(raw) {
		return "", newDecodeError("string content is not valid UTF-8", nil)
	}
	return string(raw), nil
}

// Seq reads a u16 byte-count-prefixed payload and repeatedly invokes
// decodeElem over a sub-decoder until the payload is exhausted.
func (d *Decoder) Seq(decodeElem func(*Decoder) error) error {
	n, err := d.U16()
	if err != nil {
		return newDecodeError("sequence length", err)
	}
	if err := d.need(int(n)); err != nil {
		return newDecodeError("sequence payload", err)
	}
	sub := NewDecoder(d.data[d.offset : d.offset+int(n)])
	d.offset += int(n)
	for sub.Remaining() > 0 {
		if err := decodeElem(sub); err != nil {
			return err
		}
	}
	return nil
}

// Package format implements the on-disk layout of a region archive: the
// sector index header (this file set), and the big-endian binary encoding
// helpers the archive package and its codecs build payloads with.
package format

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const (
	maxStringBytes = 1 << 20  // 1 MiB, a generous sanity bound on a single string field
	maxBytesField  = 16 << 20 // 16 MiB, a generous sanity bound on a single byte-slice field
)

// Buffer is an append-only, big-endian typed writer over an in-memory byte
// buffer.
type Buffer struct {
	bytes.Buffer
}

// NewBuffer returns an empty Buffer ready to be written to.
func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) WriteUint8(v uint8) error {
	return b.WriteByte(v)
}

func (b *Buffer) WriteInt8(v int8) error {
	return b.WriteByte(byte(v))
}

func (b *Buffer) WriteBool(v bool) error {
	if v {
		return b.WriteByte(1)
	}
	return b.WriteByte(0)
}

func (b *Buffer) WriteUint16(v uint16) error {
	var a [2]byte
	binary.BigEndian.PutUint16(a[:], v)
	_, err := b.Write(a[:])
	return err
}

func (b *Buffer) WriteInt16(v int16) error {
	return b.WriteUint16(uint16(v))
}

func (b *Buffer) WriteUint32(v uint32) error {
	var a [4]byte
	binary.BigEndian.PutUint32(a[:], v)
	_, err := b.Write(a[:])
	return err
}

func (b *Buffer) WriteInt32(v int32) error {
	return b.WriteUint32(uint32(v))
}

func (b *Buffer) WriteUint64(v uint64) error {
	var a [8]byte
	binary.BigEndian.PutUint64(a[:], v)
	_, err := b.Write(a[:])
	return err
}

func (b *Buffer) WriteInt64(v int64) error {
	return b.WriteUint64(uint64(v))
}

func (b *Buffer) WriteFloat32(v float32) error {
	return b.WriteUint32(math.Float32bits(v))
}

func (b *Buffer) WriteFloat64(v float64) error {
	return b.WriteUint64(math.Float64bits(v))
}

func (b *Buffer) WriteVarInt(v int64) error {
	var a [binary.MaxVarintLen64]byte
	n := binary.PutVarint(a[:], v)
	_, err := b.Write(a[:n])
	return err
}

func (b *Buffer) WriteString(s string) error {
	if len(s) > maxStringBytes {
		return fmt.Errorf("string too long: %d bytes", len(s))
	}
	if err := b.WriteVarInt(int64(len(s))); err != nil {
		return err
	}
	_, err := b.Buffer.WriteString(s)
	return err
}

func (b *Buffer) WriteBytes(p []byte) error {
	if len(p) > maxBytesField {
		return fmt.Errorf("byte field too long: %d bytes", len(p))
	}
	if err := b.WriteVarInt(int64(len(p))); err != nil {
		return err
	}
	_, err := b.Write(p)
	return err
}

// Reader is a big-endian typed reader over an io.Reader.
type Reader struct {
	r io.Reader
}

// NewReader wraps r for typed reads.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

func (r *Reader) ReadByte() (byte, error) {
	var a [1]byte
	if _, err := io.ReadFull(r.r, a[:]); err != nil {
		return 0, err
	}
	return a[0], nil
}

func (r *Reader) ReadUint8() (uint8, error) {
	return r.ReadByte()
}

func (r *Reader) ReadInt8() (int8, error) {
	v, err := r.ReadByte()
	return int8(v), err
}

func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadByte()
	return v != 0, err
}

func (r *Reader) ReadUint16() (uint16, error) {
	var a [2]byte
	if _, err := io.ReadFull(r.r, a[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(a[:]), nil
}

func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

func (r *Reader) ReadUint32() (uint32, error) {
	var a [4]byte
	if _, err := io.ReadFull(r.r, a[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(a[:]), nil
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *Reader) ReadUint64() (uint64, error) {
	var a [8]byte
	if _, err := io.ReadFull(r.r, a[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(a[:]), nil
}

func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	return math.Float32frombits(v), err
}

func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	return math.Float64frombits(v), err
}

func (r *Reader) ReadVarInt() (int64, error) {
	return binary.ReadVarint(byteReader{r.r})
}

func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadVarInt()
	if err != nil {
		return "", err
	}
	if n < 0 || n > maxStringBytes {
		return "", fmt.Errorf("invalid string length: %d", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	if n < 0 || n > maxBytesField {
		return nil, fmt.Errorf("invalid byte field length: %d", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// byteReader adapts a plain io.Reader to io.ByteReader for binary.ReadVarint.
type byteReader struct {
	r io.Reader
}

func (b byteReader) ReadByte() (byte, error) {
	var a [1]byte
	if _, err := io.ReadFull(b.r, a[:]); err != nil {
		return 0, err
	}
	return a[0], nil
}

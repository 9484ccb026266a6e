// Package archive opens region files and drives LZ4-framed, codec-encoded
// chunk payloads in and out of their sector allocation.
package archive

import (
	"bytes"

	"github.com/sandertv/gophertunnel/minecraft/nbt"

	"github.com/oriumgames/regioncore/format"
)

// Codec converts a payload value to and from bytes. Archive is generic over
// Codec so the same sector/LZ4 machinery serves both the bulk voxel
// payloads (BinaryCodec) and smaller metadata payloads for which NBT's
// self-describing tags are more convenient (NBTCodec).
type Codec[T any] interface {
	Encode(v T) ([]byte, error)
	Decode(data []byte) (T, error)
}

// BinaryPayload is satisfied by payload types that know how to serialize
// themselves through format.Buffer/format.Reader.
type BinaryPayload interface {
	MarshalBinary(buf *format.Buffer) error
	UnmarshalBinary(r *format.Reader) error
}

// BinaryCodec adapts a BinaryPayload type to Codec. New must return a fresh
// zero value ready to have UnmarshalBinary called on it (typically a
// pointer type, e.g. func() *BlockColumn { return new(BlockColumn) }).
type BinaryCodec[T BinaryPayload] struct {
	New func() T
}

func (c BinaryCodec[T]) Encode(v T) ([]byte, error) {
	buf := format.NewBuffer()
	if err := v.MarshalBinary(buf); err != nil {
		return nil, &format.EncodeError{Cause: err}
	}
	return buf.Bytes(), nil
}

func (c BinaryCodec[T]) Decode(data []byte) (T, error) {
	v := c.New()
	if err := v.UnmarshalBinary(format.NewReader(bytes.NewReader(data))); err != nil {
		return v, &format.DecodeError{Cause: err}
	}
	return v, nil
}

// NBTCodec encodes payloads as NBT, the way gophertunnel's own world-save
// code (and pile's settings/entity encoding) drives nbt.Encoder/Decoder
// over a byte buffer.
type NBTCodec[T any] struct {
	New func() T
}

func (c NBTCodec[T]) Encode(v T) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := nbt.NewEncoder(buf).Encode(v); err != nil {
		return nil, &format.EncodeError{Cause: err}
	}
	return buf.Bytes(), nil
}

func (c NBTCodec[T]) Decode(data []byte) (T, error) {
	v := c.New()
	if err := nbt.NewDecoder(bytes.NewReader(data)).Decode(&v); err != nil {
		return v, &format.DecodeError{Cause: err}
	}
	return v, nil
}

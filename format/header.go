package format

import (
	"fmt"
	"io"
)

// cellCount is the number of chunk slots a region holds (RegionAxis x
// RegionAxis), mirrored here rather than imported from the root package to
// keep format dependency-free of it.
const cellCount = 32 * 32

// HeaderBytes is the on-disk size of a region file's header: one 4-byte
// SectorIndex per chunk slot, with no padding.
const HeaderBytes = cellCount * 4

// HeaderSectors is the number of sectors a region file reserves for its
// header.
const HeaderSectors = HeaderBytes / SectorSize

// Header is a region file's sector index table, always HeaderBytes long on
// disk.
type Header struct {
	indices [cellCount]SectorIndex
	dirty   bool
}

// NewHeader returns an all-empty header.
func NewHeader() *Header {
	return &Header{}
}

// Get returns the sector index recorded for local chunk slot i. i must be
// in [0, cellCount).
func (h *Header) Get(i int) SectorIndex {
	return h.indices[i]
}

// Set records the sector index for local chunk slot i and marks the
// header dirty.
func (h *Header) Set(i int, idx SectorIndex) {
	h.indices[i] = idx
	h.dirty = true
}

// Dirty reports whether Set has been called since the last MarkClean.
func (h *Header) Dirty() bool {
	return h.dirty
}

// MarkClean clears the dirty flag, typically after a successful flush.
func (h *Header) MarkClean() {
	h.dirty = false
}

// Bytes serializes h to its fixed HeaderBytes-long on-disk form.
func (h *Header) Bytes() []byte {
	buf := make([]byte, 0, HeaderBytes)
	for _, idx := range h.indices {
		b := idx.Bytes()
		buf = append(buf, b[:]...)
	}
	return buf
}

// HeaderFromBytes decodes a header previously produced by Bytes. It returns
// a HeaderInvalidError if buf is not exactly HeaderBytes long.
func HeaderFromBytes(buf []byte) (*Header, error) {
	if len(buf) != HeaderBytes {
		return nil, &HeaderInvalidError{Len: len(buf)}
	}
	h := NewHeader()
	off := 0
	for i := range h.indices {
		var a [4]byte
		copy(a[:], buf[off:off+4])
		h.indices[i] = SectorIndexFromBytes(a)
		off += 4
	}
	return h, nil
}

// ReadHeader reads and decodes a header from the start of r.
func ReadHeader(r io.Reader) (*Header, error) {
	buf := make([]byte, HeaderBytes)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read header: %w", &IOError{Cause: err})
	}
	return HeaderFromBytes(buf)
}

// WriteTo writes h's fixed-size on-disk form to w.
func (h *Header) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(h.Bytes())
	return int64(n), err
}

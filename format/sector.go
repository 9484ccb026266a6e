package format

import "encoding/binary"

// SectorSize is the allocation granularity of a region file: every chunk
// payload occupies a whole number of SectorSize-byte sectors, even if it
// does not fill the last one.
const SectorSize = 4096

// SectorIndex locates a chunk payload within a region file, in units of
// SectorSize-byte sectors counted from the start of the file (sector 0 is
// the first header sector). Offset is zero for a chunk that has never been
// written.
type SectorIndex struct {
	Offset  uint16
	Sectors uint16
}

// Empty reports whether the index points at no data.
func (s SectorIndex) Empty() bool {
	return s.Offset == 0
}

// Bytes encodes s as four big-endian bytes: Offset then Sectors.
func (s SectorIndex) Bytes() [4]byte {
	var a [4]byte
	binary.BigEndian.PutUint16(a[0:2], s.Offset)
	binary.BigEndian.PutUint16(a[2:4], s.Sectors)
	return a
}

// SectorIndexFromBytes decodes a SectorIndex previously produced by Bytes.
func SectorIndexFromBytes(a [4]byte) SectorIndex {
	return SectorIndex{
		Offset:  binary.BigEndian.Uint16(a[0:2]),
		Sectors: binary.BigEndian.Uint16(a[2:4]),
	}
}

// SectorsFor returns the number of SectorSize-byte sectors needed to hold a
// payload of the given length. A zero-length payload still needs one
// sector: Offset==0 is reserved to mean "never written", so no written
// chunk may have Sectors==0.
//
// This intentionally differs from the naive "(bytes + SectorSize + 1) /
// SectorSize" formula, which overallocates by one sector whenever bytes is
// an exact multiple of SectorSize.
func SectorsFor(bytes int) uint16 {
	if bytes < 1 {
		bytes = 1
	}
	return uint16((bytes + SectorSize - 1) / SectorSize)
}

package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pierrec/lz4/v4"

	"github.com/oriumgames/regioncore/format"
)

const cellCount = 32 * 32

// Archive is a single region file: a fixed-size sector index header
// followed by sector-allocated, LZ4-framed, codec-encoded chunk payloads.
// One Archive owns one *os.File; callers are responsible for ensuring only
// one goroutine drives an Archive at a time (see the RegionWorker in the
// root package).
type Archive[T any] struct {
	file       *os.File
	header     *format.Header
	codec      Codec[T]
	nextSector int64
}

// Open opens the region file at path, creating its parent directory and an
// empty-header file if either does not already exist. If the file already
// has data, its first format.HeaderBytes bytes must parse as a valid
// header.
func Open[T any](path string, codec Codec[T]) (*Archive[T], error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &format.IOError{Cause: err}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, &format.IOError{Cause: err}
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &format.IOError{Cause: err}
	}

	a := &Archive[T]{file: f, codec: codec}

	if info.Size() == 0 {
		a.header = format.NewHeader()
		if _, err := a.header.WriteTo(f); err != nil {
			f.Close()
			return nil, &format.IOError{Cause: err}
		}
		a.header.MarkClean()
		a.nextSector = format.HeaderSectors
		return a, nil
	}

	if info.Size() < format.HeaderBytes {
		f.Close()
		return nil, &format.HeaderInvalidError{Len: int(info.Size())}
	}

	header, err := format.ReadHeader(io.NewSectionReader(f, 0, format.HeaderBytes))
	if err != nil {
		f.Close()
		return nil, err
	}
	a.header = header
	// Orphan sectors past the last referenced one are tolerated, not
	// reclaimed: nextSector is derived from file length, never from the
	// header's own high-water mark, so a later append always lands past
	// every byte the file currently occupies.
	a.nextSector = (info.Size() + format.SectorSize - 1) / format.SectorSize
	if a.nextSector < format.HeaderSectors {
		a.nextSector = format.HeaderSectors
	}
	return a, nil
}

// Read returns the payload stored at local, or ok==false if no payload has
// ever been written there.
func (a *Archive[T]) Read(local int) (v T, ok bool, err error) {
	if local < 0 || local >= cellCount {
		return v, false, &format.ChunkLoadError{Msg: fmt.Sprintf("local index %d out of range", local)}
	}
	idx := a.header.Get(local)
	if idx.Empty() {
		return v, false, nil
	}

	raw := make([]byte, int(idx.Sectors)*format.SectorSize)
	if _, err := a.file.ReadAt(raw, int64(idx.Offset)*format.SectorSize); err != nil {
		return v, false, &format.IOError{Cause: err}
	}

	// The tail of raw is zero padding inside the last sector; the LZ4
	// frame reader stops at its own end-of-stream marker and never
	// touches it.
	var decompressed bytes.Buffer
	zr := lz4.NewReader(bytes.NewReader(raw))
	if _, err := io.Copy(&decompressed, zr); err != nil {
		return v, false, &format.CompressError{Cause: err}
	}

	v, err = a.codec.Decode(decompressed.Bytes())
	if err != nil {
		return v, false, &format.DecodeError{Cause: err}
	}
	return v, true, nil
}

// Write encodes v, frames it in LZ4, and stores it at local chunk slot
// local. If the new payload fits in the sectors already allocated to local
// it is overwritten in place; otherwise it is appended at the end of the
// file and the old sectors are abandoned as orphan space (no
// defragmentation). Write flushes the payload bytes but not the header;
// call FlushHeader to make the write durably reachable after a reopen.
func (a *Archive[T]) Write(local int, v T) error {
	if local < 0 || local >= cellCount {
		return &format.ChunkSaveError{Msg: fmt.Sprintf("local index %d out of range", local)}
	}

	encoded, err := a.codec.Encode(v)
	if err != nil {
		return err
	}

	var compressed bytes.Buffer
	zw := lz4.NewWriter(&compressed)
	if _, err := zw.Write(encoded); err != nil {
		return &format.CompressError{Cause: err}
	}
	if err := zw.Close(); err != nil {
		return &format.CompressError{Cause: err}
	}

	needed := format.SectorsFor(compressed.Len())
	existing := a.header.Get(local)

	var offset uint16
	if !existing.Empty() && needed <= existing.Sectors {
		offset = existing.Offset
	} else {
		// The file is always sector-aligned at EOF: the header occupies a
		// whole number of sectors and every prior append wrote a whole
		// number of sectors too.
		offset = uint16(a.nextSector)
		a.nextSector += int64(needed)
	}

	padded := make([]byte, int(needed)*format.SectorSize)
	copy(padded, compressed.Bytes())
	if _, err := a.file.WriteAt(padded, int64(offset)*format.SectorSize); err != nil {
		return &format.IOError{Cause: err}
	}

	a.header.Set(local, format.SectorIndex{Offset: offset, Sectors: needed})
	return nil
}

// FlushHeader writes the header to disk if it has changed since the last
// flush. It does not fsync; callers that need durability across a crash
// should call Sync after FlushHeader.
func (a *Archive[T]) FlushHeader() error {
	if !a.header.Dirty() {
		return nil
	}
	if _, err := a.header.WriteTo(io.NewOffsetWriter(a.file, 0)); err != nil {
		return &format.IOError{Cause: err}
	}
	a.header.MarkClean()
	return nil
}

// Sync flushes the underlying file to stable storage.
func (a *Archive[T]) Sync() error {
	if err := a.file.Sync(); err != nil {
		return &format.IOError{Cause: err}
	}
	return nil
}

// Close flushes the header and closes the underlying file.
func (a *Archive[T]) Close() error {
	if err := a.FlushHeader(); err != nil {
		a.file.Close()
		return err
	}
	if err := a.file.Close(); err != nil {
		return &format.IOError{Cause: err}
	}
	return nil
}

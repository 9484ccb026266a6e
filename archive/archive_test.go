package archive

import (
	"math/rand"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/oriumgames/regioncore/format"
)

const regionCellCount = 32 * 32

// textPayload is a minimal BinaryPayload used only by this test file.
type textPayload struct {
	Value string
}

func (p *textPayload) MarshalBinary(buf *format.Buffer) error {
	return buf.WriteString(p.Value)
}

func (p *textPayload) UnmarshalBinary(r *format.Reader) error {
	s, err := r.ReadString()
	if err != nil {
		return err
	}
	p.Value = s
	return nil
}

func textCodec() Codec[*textPayload] {
	return BinaryCodec[*textPayload]{New: func() *textPayload { return &textPayload{} }}
}

func TestArchive_NewCreatesHeaderOnlyFile(t *testing.T) {
	// arrange
	path := filepath.Join(t.TempDir(), "r.0.0.region")

	// act
	a, err := Open(path, textCodec())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer a.Close()

	info, err := a.file.Stat()
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}

	// assert
	if info.Size() != format.HeaderBytes {
		t.Errorf("file size = %d, want %d", info.Size(), format.HeaderBytes)
	}
}

func TestArchive_ReadWriteSingle(t *testing.T) {
	// arrange
	path := filepath.Join(t.TempDir(), "r.2.3.region")
	a, err := Open(path, textCodec())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer a.Close()

	// act
	want := "The Silly Goosery is real!\U0001fabf︎"
	if err := a.Write(42, &textPayload{Value: want}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, ok, err := a.Read(42)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	// assert
	if !ok {
		t.Fatalf("Read() ok = false, want true")
	}
	if got.Value != want {
		t.Errorf("Read() value = %q, want %q", got.Value, want)
	}
}

func TestArchive_ReadMissingReturnsNotFound(t *testing.T) {
	// arrange
	path := filepath.Join(t.TempDir(), "r.0.0.region")
	a, err := Open(path, textCodec())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer a.Close()

	// act
	_, ok, err := a.Read(0)

	// assert
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if ok {
		t.Errorf("Read() ok = true, want false")
	}
}

func TestArchive_WriteSameSectorCountReusesOffset(t *testing.T) {
	// arrange
	path := filepath.Join(t.TempDir(), "r.0.0.region")
	a, err := Open(path, textCodec())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer a.Close()

	if err := a.Write(5, &textPayload{Value: "first"}); err != nil {
		t.Fatalf("Write() first error = %v", err)
	}
	first := a.header.Get(5)

	// act: overwrite with a payload of similar size, still fitting the
	// same sector footprint
	if err := a.Write(5, &textPayload{Value: "other"}); err != nil {
		t.Fatalf("Write() second error = %v", err)
	}
	second := a.header.Get(5)

	// assert
	if second.Offset != first.Offset {
		t.Errorf("Offset changed from %d to %d for a same-footprint overwrite", first.Offset, second.Offset)
	}
}

func TestArchive_WriteGrowAppendsNewSector(t *testing.T) {
	// arrange
	path := filepath.Join(t.TempDir(), "r.0.0.region")
	a, err := Open(path, textCodec())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer a.Close()

	if err := a.Write(7, &textPayload{Value: "x"}); err != nil {
		t.Fatalf("Write() first error = %v", err)
	}
	first := a.header.Get(7)

	// act: overwrite with a payload far too large for the same sector,
	// even after LZ4 framing (pseudo-random bytes do not compress)
	big := make([]byte, format.SectorSize*3)
	rand.New(rand.NewSource(1)).Read(big)
	if err := a.Write(7, &textPayload{Value: string(big)}); err != nil {
		t.Fatalf("Write() second error = %v", err)
	}
	second := a.header.Get(7)

	// assert
	if second.Offset == first.Offset {
		t.Errorf("Offset did not change after growing past the original sector footprint")
	}
	if second.Sectors <= first.Sectors {
		t.Errorf("Sectors = %d, want more than %d", second.Sectors, first.Sectors)
	}
}

func TestArchive_FullRegionSaturation(t *testing.T) {
	// arrange: write a payload to every local chunk slot a region holds,
	// each one unique (it starts with its slot number), so that every
	// SectorIndex the header ends up with is exercised at once.
	path := filepath.Join(t.TempDir(), "r.0.0.region")
	a, err := Open(path, textCodec())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer a.Close()

	want := make([]string, regionCellCount)
	for i := 0; i < regionCellCount; i++ {
		// Vary the payload length (1 to 64 repeated characters). Every
		// payload still fits in one sector after LZ4 framing, so slots
		// differ in offset, not in sector count.
		n := (i % 64) + 1
		s := make([]byte, n)
		for j := range s {
			s[j] = byte('a' + (i % 26))
		}
		want[i] = strconv.Itoa(i) + ":" + string(s)
		if err := a.Write(i, &textPayload{Value: want[i]}); err != nil {
			t.Fatalf("Write(%d) error = %v", i, err)
		}
	}

	// act: read every slot back.
	for i := 0; i < regionCellCount; i++ {
		got, ok, err := a.Read(i)
		if err != nil {
			t.Fatalf("Read(%d) error = %v", i, err)
		}
		if !ok {
			t.Fatalf("Read(%d) ok = false, want true", i)
		}
		if got.Value != want[i] {
			t.Errorf("Read(%d) = %q, want %q", i, got.Value, want[i])
		}
	}

	// assert: no two slots' allocated sector ranges overlap.
	type span struct {
		start, end int64 // [start, end)
		local      int
	}
	spans := make([]span, 0, regionCellCount)
	for i := 0; i < regionCellCount; i++ {
		idx := a.header.Get(i)
		if idx.Empty() {
			t.Fatalf("local %d: header entry unexpectedly empty after write", i)
		}
		start := int64(idx.Offset)
		end := start + int64(idx.Sectors)
		spans = append(spans, span{start: start, end: end, local: i})
	}
	for x := 0; x < len(spans); x++ {
		for y := x + 1; y < len(spans); y++ {
			if spans[x].start < spans[y].end && spans[y].start < spans[x].end {
				t.Fatalf("local %d sectors [%d,%d) overlap local %d sectors [%d,%d)",
					spans[x].local, spans[x].start, spans[x].end,
					spans[y].local, spans[y].start, spans[y].end)
			}
		}
	}
}

func TestArchive_ReopenPreservesData(t *testing.T) {
	// arrange
	path := filepath.Join(t.TempDir(), "r.1.1.region")
	a, err := Open(path, textCodec())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := a.Write(9, &textPayload{Value: "persisted"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// act
	reopened, err := Open(path, textCodec())
	if err != nil {
		t.Fatalf("reopen Open() error = %v", err)
	}
	defer reopened.Close()
	got, ok, err := reopened.Read(9)

	// assert
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !ok {
		t.Fatalf("Read() ok = false, want true")
	}
	if got.Value != "persisted" {
		t.Errorf("Read() value = %q, want %q", got.Value, "persisted")
	}
}

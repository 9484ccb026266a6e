package format

import "testing"

func TestSectorIndex_Bytes(t *testing.T) {
	// arrange
	s := SectorIndex{Offset: 123, Sectors: 9821}

	// act
	b := s.Bytes()

	// assert
	want := [4]byte{0x00, 0x7B, 0x26, 0x5D}
	if b != want {
		t.Errorf("Bytes() = %v, want %v", b, want)
	}
}

func TestSectorIndexFromBytes(t *testing.T) {
	// arrange
	b := [4]byte{0x00, 0x37, 0x03, 0xE7}

	// act
	s := SectorIndexFromBytes(b)

	// assert
	if s.Offset != 55 || s.Sectors != 999 {
		t.Errorf("FromBytes() = %+v, want {55 999}", s)
	}
}

func TestSectorIndex_Empty(t *testing.T) {
	// arrange
	var s SectorIndex

	// act + assert
	if !s.Empty() {
		t.Errorf("zero-value SectorIndex.Empty() = false, want true")
	}

	s.Offset = 4
	if s.Empty() {
		t.Errorf("SectorIndex{Offset:4}.Empty() = true, want false")
	}
}

func TestSectorsFor(t *testing.T) {
	// arrange
	cases := []struct {
		bytes int
		want  uint16
	}{
		{0, 1},
		{1, 1},
		{SectorSize, 1},
		{SectorSize + 1, 2},
		{SectorSize * 3, 3},
		{SectorSize*3 + 1, 4},
	}

	for _, c := range cases {
		// act
		got := SectorsFor(c.bytes)

		// assert
		if got != c.want {
			t.Errorf("SectorsFor(%d) = %d, want %d", c.bytes, got, c.want)
		}
	}
}

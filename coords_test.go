package regioncore

import "testing"

func TestWorldChunkCoord_ToRegion(t *testing.T) {
	// arrange
	c := WorldChunkCoord{X: -33, Z: 44}

	// act
	r := c.ToRegion()

	// assert
	if r.X != -2 || r.Z != 1 {
		t.Errorf("ToRegion(-33,44) = %+v, want {-2 1}", r)
	}
}

func TestWorldChunkCoord_ToLocal(t *testing.T) {
	// arrange
	c := WorldChunkCoord{X: -33, Z: 44}

	// act
	l := c.ToLocal()

	// assert
	if l.X != 31 || l.Z != 12 {
		t.Errorf("ToLocal(-33,44) = %+v, want {31 12}", l)
	}
}

func TestWorldChunkCoord_PositiveRoundTrip(t *testing.T) {
	// arrange
	c := WorldChunkCoord{X: 70, Z: 5}

	// act
	r, l := c.ToRegion(), c.ToLocal()

	// assert
	if r.X != 2 || r.Z != 0 {
		t.Errorf("ToRegion(70,5) = %+v, want {2 0}", r)
	}
	if l.X != 6 || l.Z != 5 {
		t.Errorf("ToLocal(70,5) = %+v, want {6 5}", l)
	}
}

func TestRegionLocalChunkCoord_Index(t *testing.T) {
	// arrange
	l := RegionLocalChunkCoord{X: 31, Z: 12}

	// act
	idx := l.Index()

	// assert
	if want := 31*RegionAxis + 12; idx != want {
		t.Errorf("Index() = %d, want %d", idx, want)
	}
}

func TestRegionLocalChunkCoord_Index_SpecScenario(t *testing.T) {
	// arrange: spec.md §8 scenario S2 pins local (2,3) to header index 67.
	l := RegionLocalChunkCoord{X: 2, Z: 3}

	// act
	idx := l.Index()

	// assert
	if idx != 67 {
		t.Errorf("Index() = %d, want 67", idx)
	}
}

package chunkstore

import "fmt"

// Storage holds one chunk's voxel values as a 3D grid of AxisSize-cubed
// Packs. Dims gives the grid's extent in whole packs along each axis, so a
// chunk that is e.g. 2x4x2 packs wide covers 16x32x16 cells.
type Storage[V comparable] struct {
	dims [3]int
	def  V
	packs []*Pack[V]
}

// NewStorage returns a Storage of the given pack-grid dimensions, with
// every cell set to def.
func NewStorage[V comparable](dims [3]int, def V) *Storage[V] {
	n := dims[0] * dims[1] * dims[2]
	packs := make([]*Pack[V], n)
	for i := range packs {
		packs[i] = NewPack(def)
	}
	return &Storage[V]{dims: dims, def: def, packs: packs}
}

// Dims returns the grid's extent in packs.
func (s *Storage[V]) Dims() [3]int { return s.dims }

// Default returns the value new cells and empty packs are filled with.
func (s *Storage[V]) Default() V { return s.def }

// Packs returns the underlying packs in (x fastest, then z, then y) order,
// matching packIndex. Callers that need to serialize a Storage walk this
// slice directly rather than going through Get/Set.
func (s *Storage[V]) Packs() []*Pack[V] { return s.packs }

// FromPacks reconstructs a Storage from previously-serialized packs, in the
// same order Packs returns them.
func FromPacks[V comparable](dims [3]int, def V, packs []*Pack[V]) *Storage[V] {
	return &Storage[V]{dims: dims, def: def, packs: packs}
}

// cellDims returns the grid's extent in cells.
func (s *Storage[V]) cellDims() [3]int {
	return [3]int{s.dims[0] * AxisSize, s.dims[1] * AxisSize, s.dims[2] * AxisSize}
}

func (s *Storage[V]) packIndex(px, py, pz int) int {
	return (py*s.dims[2]+pz)*s.dims[0] + px
}

// locate splits a chunk-local cell coordinate into a pack index and the
// cell's position within that pack.
func (s *Storage[V]) locate(x, y, z int) (packIdx, cellIdx int) {
	px, cx := x/AxisSize, x%AxisSize
	py, cy := y/AxisSize, y%AxisSize
	pz, cz := z/AxisSize, z%AxisSize
	packIdx = s.packIndex(px, py, pz)
	cellIdx = (cy*AxisSize+cz)*AxisSize + cx
	return packIdx, cellIdx
}

// Get returns the value at chunk-local cell (x, y, z).
func (s *Storage[V]) Get(x, y, z int) V {
	pi, ci := s.locate(x, y, z)
	return s.packs[pi].Get(ci)
}

// Set stores v at chunk-local cell (x, y, z).
func (s *Storage[V]) Set(x, y, z int, v V) {
	pi, ci := s.locate(x, y, z)
	s.packs[pi].Set(ci, v)
}

// IsDefault reports whether every cell in s holds its default value.
func (s *Storage[V]) IsDefault() bool {
	for _, p := range s.packs {
		if !p.IsDefault(s.def) {
			return false
		}
	}
	return true
}

// Compact runs palette clean-up on every pack that needs it.
func (s *Storage[V]) Compact() {
	for _, p := range s.packs {
		p.Compact()
	}
}

// Pack runs a full maintenance pass on every pack, demoting any that have
// shrunk back down to Single or Palette. Call before serializing a Storage
// that has seen heavy edit traffic, to avoid saving packs wider than the
// data they actually hold.
func (s *Storage[V]) Pack() {
	for _, p := range s.packs {
		p.Pack()
	}
}

// validate checks that a cell coordinate falls within s's extent.
func (s *Storage[V]) validate(x, y, z int) error {
	d := s.cellDims()
	if x < 0 || x >= d[0] || y < 0 || y >= d[1] || z < 0 || z >= d[2] {
		return fmt.Errorf("cell (%d,%d,%d) out of bounds %v", x, y, z, d)
	}
	return nil
}

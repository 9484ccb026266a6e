// Package chunkstore implements a palette-compressed, adaptively-resized
// container for the voxel values of one cubic sub-chunk.
package chunkstore

// AxisSize is the number of cells along one edge of a sub-chunk pack.
const AxisSize = 8

// Volume is the number of cells in one sub-chunk pack (AxisSize^3).
const Volume = AxisSize * AxisSize * AxisSize

// maxPaletteSize is the largest number of distinct values a Palette state
// can hold; indices are stored as a single byte, so 256 values is the hard
// ceiling, but the 256th slot is reserved to always leave room for the
// palette clean-up pass to attempt to free before promoting to Dense.
const maxPaletteSize = 255

// state distinguishes the three representations a Pack can be in.
type state uint8

const (
	stateSingle state = iota
	statePalette
	stateDense
)

// Pack is one sub-chunk's worth of voxel values (Volume cells), stored in
// whichever of three representations is smallest for the data it actually
// holds:
//
//   - Single: every cell holds the same value. Zero per-cell storage.
//   - Palette: up to 255 distinct values, referenced by a one-byte index
//     per cell.
//   - Dense: one full value per cell, used only once Palette can no longer
//     make room for a new distinct value even after compaction.
//
// Set never demotes a pack to a smaller representation on its own; that is
// the job of the separate Pack method, run as a maintenance pass.
type Pack[V comparable] struct {
	st      state
	single  V
	table   []V
	indices [Volume]uint8
	dense   [Volume]V
	dirty   bool // true once a Palette's table may contain entries no index references
}

// NewPack returns a pack with every cell set to def.
func NewPack[V comparable](def V) *Pack[V] {
	return &Pack[V]{st: stateSingle, single: def}
}

// Get returns the value at cell i. i must be in [0, Volume).
func (p *Pack[V]) Get(i int) V {
	switch p.st {
	case stateSingle:
		return p.single
	case statePalette:
		return p.table[p.indices[i]]
	default:
		return p.dense[i]
	}
}

// Set stores v at cell i, transitioning representation if needed.
func (p *Pack[V]) Set(i int, v V) {
	switch p.st {
	case stateSingle:
		if v == p.single {
			return
		}
		p.singleToPalette(v, i)
	case statePalette:
		p.setInPalette(i, v)
	case stateDense:
		p.dense[i] = v
	}
}

// singleToPalette converts a Single pack to Palette, with every cell
// pointing at the old single value except i, which gets v.
func (p *Pack[V]) singleToPalette(v V, i int) {
	old := p.single
	p.st = statePalette
	p.table = []V{old, v}
	for c := range p.indices {
		p.indices[c] = 0
	}
	p.indices[i] = 1
	p.dirty = false
}

func (p *Pack[V]) setInPalette(i int, v V) {
	// Cell i is about to point somewhere else (or stay put, harmlessly);
	// conservatively mark the table dirty since whatever it pointed to
	// before may now be unreferenced. Cleared precisely by palletCleanUp.
	p.dirty = true

	for idx, existing := range p.table {
		if existing == v {
			p.indices[i] = uint8(idx)
			return
		}
	}

	if len(p.table) < maxPaletteSize {
		p.table = append(p.table, v)
		p.indices[i] = uint8(len(p.table) - 1)
		return
	}

	// Palette is full of distinct values; try to reclaim space occupied by
	// entries no cell references any more. Cell i is about to be
	// overwritten, so it is excluded from the rebuild and patched in after.
	p.palletCleanUp(i)

	if len(p.table) < maxPaletteSize {
		p.table = append(p.table, v)
		p.indices[i] = uint8(len(p.table) - 1)
		return
	}

	p.palletToDense()
	p.dense[i] = v
}

// palletCleanUp rebuilds the palette table from only the entries still
// referenced by some cell other than skip, remapping every index in the
// process. It is a no-op (besides clearing dirty) if the table was already
// minimal.
func (p *Pack[V]) palletCleanUp(skip int) {
	live := make([]bool, len(p.table))
	for c, idx := range p.indices {
		if c == skip {
			continue
		}
		live[idx] = true
	}

	newTable := make([]V, 0, len(p.table))
	remap := make([]uint8, len(p.table))
	for old, isLive := range live {
		if !isLive {
			continue
		}
		remap[old] = uint8(len(newTable))
		newTable = append(newTable, p.table[old])
	}

	if len(newTable) == len(p.table) {
		p.dirty = false
		return
	}

	for c := range p.indices {
		if c == skip {
			continue
		}
		p.indices[c] = remap[p.indices[c]]
	}
	p.table = newTable
	p.dirty = false
}

// palletToDense expands every palette-indexed cell into a full dense array.
func (p *Pack[V]) palletToDense() {
	var dense [Volume]V
	for c, idx := range p.indices {
		dense[c] = p.table[idx]
	}
	p.st = stateDense
	p.dense = dense
	p.table = nil
	p.dirty = false
}

// IsSingle, IsPalette and IsDense report p's current representation, for
// callers (e.g. a serializer) that need to branch on it directly rather
// than through Get/Set/ForAll.
func (p *Pack[V]) IsSingle() bool  { return p.st == stateSingle }
func (p *Pack[V]) IsPalette() bool { return p.st == statePalette }
func (p *Pack[V]) IsDense() bool   { return p.st == stateDense }

// SingleValue returns the shared value of a Single pack. Only meaningful
// when IsSingle is true.
func (p *Pack[V]) SingleValue() V { return p.single }

// Table returns the distinct values of a Palette pack, indexed the same
// way Indices' entries are. Only meaningful when IsPalette is true; the
// slice may contain unreferenced entries if the pack is dirty.
func (p *Pack[V]) Table() []V { return p.table }

// Indices returns the per-cell palette index of a Palette pack. Only
// meaningful when IsPalette is true.
func (p *Pack[V]) Indices() [Volume]uint8 { return p.indices }

// DenseValues returns the per-cell value of a Dense pack. Only meaningful
// when IsDense is true.
func (p *Pack[V]) DenseValues() [Volume]V { return p.dense }

// NewSinglePack reconstructs a pack directly into the Single state, e.g.
// when deserializing.
func NewSinglePack[V comparable](v V) *Pack[V] {
	return &Pack[V]{st: stateSingle, single: v}
}

// NewPalettePack reconstructs a pack directly into the Palette state.
func NewPalettePack[V comparable](table []V, indices [Volume]uint8) *Pack[V] {
	return &Pack[V]{st: statePalette, table: table, indices: indices}
}

// NewDensePack reconstructs a pack directly into the Dense state.
func NewDensePack[V comparable](dense [Volume]V) *Pack[V] {
	return &Pack[V]{st: stateDense, dense: dense}
}

// Compact runs palette clean-up outside of a Set call, e.g. from a
// background maintenance pass. It is a no-op unless the pack is currently
// in the Palette state with a table larger than necessary, and never
// changes p's representation, only the size of its table.
func (p *Pack[V]) Compact() {
	if p.st != statePalette {
		return
	}
	p.palletCleanUp(-1)
}

// Pack runs a full maintenance pass: it compacts a Palette's table and, if
// clean-up leaves exactly one live entry, demotes the pack to Single; for a
// Dense pack it counts the distinct values actually present and demotes to
// Single (one distinct value) or Palette (at most maxPaletteSize distinct
// values), leaving the pack Dense otherwise. Unlike Compact, Pack can
// change p's representation.
func (p *Pack[V]) Pack() {
	switch p.st {
	case statePalette:
		p.palletCleanUp(-1)
		if len(p.table) == 1 {
			p.demoteToSingle(p.table[0])
		}
	case stateDense:
		p.packDense()
	}
}

// packDense demotes a Dense pack to Palette or Single if its actual
// distinct-value count allows, leaving it Dense otherwise.
func (p *Pack[V]) packDense() {
	seen := make(map[V]uint8, maxPaletteSize)
	order := make([]V, 0, maxPaletteSize)
	for _, v := range p.dense {
		if _, ok := seen[v]; ok {
			continue
		}
		if len(order) == maxPaletteSize {
			return
		}
		seen[v] = uint8(len(order))
		order = append(order, v)
	}

	if len(order) == 1 {
		p.demoteToSingle(order[0])
		return
	}

	var indices [Volume]uint8
	for c, v := range p.dense {
		indices[c] = seen[v]
	}
	p.st = statePalette
	p.table = order
	p.indices = indices
	p.dense = [Volume]V{}
	p.dirty = false
}

// demoteToSingle collapses p to the Single state holding v.
func (p *Pack[V]) demoteToSingle(v V) {
	p.st = stateSingle
	p.single = v
	p.table = nil
	p.indices = [Volume]uint8{}
	p.dirty = false
}

// IsDefault reports whether every cell in p holds def.
func (p *Pack[V]) IsDefault(def V) bool {
	return p.ForAll(func(v V) bool { return v == def })
}

// ForAll reports whether pred holds for every cell in p, short-circuiting
// on the first counterexample. Single packs and non-dirty Palette packs
// check their distinct value set rather than iterating all Volume cells; a
// dirty Palette and a Dense pack are checked cell by cell.
func (p *Pack[V]) ForAll(pred func(V) bool) bool {
	switch p.st {
	case stateSingle:
		return pred(p.single)
	case statePalette:
		if p.dirty {
			// The table may hold entries no cell references any more;
			// checking it directly could reject p over a value nothing
			// actually holds. Walk the indices instead.
			for _, idx := range p.indices {
				if !pred(p.table[idx]) {
					return false
				}
			}
			return true
		}
		for _, v := range p.table {
			if !pred(v) {
				return false
			}
		}
		return true
	default:
		for _, v := range p.dense {
			if !pred(v) {
				return false
			}
		}
		return true
	}
}

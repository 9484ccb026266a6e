package chunkstore

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/oriumgames/regioncore/format"
)

// BlockState is an example cell value: an opaque numeric block identifier
// plus orientation metadata. Storage and Pack only require V to be
// comparable; BlockState is the value type chunkstore's own tests are
// built around.
type BlockState struct {
	ID    uint16
	State uint8
}

// AirBlock is the BlockState a freshly-created chunk is filled with.
var AirBlock = BlockState{}

func (b BlockState) marshal(buf *format.Buffer) error {
	if err := buf.WriteUint16(b.ID); err != nil {
		return err
	}
	return buf.WriteUint8(b.State)
}

func unmarshalBlockState(r *format.Reader) (BlockState, error) {
	id, err := r.ReadUint16()
	if err != nil {
		return BlockState{}, err
	}
	st, err := r.ReadUint8()
	if err != nil {
		return BlockState{}, err
	}
	return BlockState{ID: id, State: st}, nil
}

// EntityRef anchors a loose entity to the chunk it was last saved in. It
// travels alongside a chunk's voxel Storage rather than inside it, the way
// the archive's NBT-backed codec carries player spawn anchors.
type EntityRef struct {
	ID       uuid.UUID
	Kind     string
	X, Y, Z  float64
}

// BlockColumn is one chunk's full saved state: its voxel storage plus any
// entities anchored to it. It implements archive.BinaryPayload so it can be
// the T of an Archive[T].
type BlockColumn struct {
	Storage  *Storage[BlockState]
	Entities []EntityRef
}

// NewBlockColumn returns an all-air column with the given pack-grid
// dimensions (see Storage).
func NewBlockColumn(dims [3]int) *BlockColumn {
	return &BlockColumn{Storage: NewStorage(dims, AirBlock)}
}

func (c *BlockColumn) MarshalBinary(buf *format.Buffer) error {
	c.Storage.Pack()

	dims := c.Storage.Dims()
	for _, d := range dims {
		if err := buf.WriteUint8(uint8(d)); err != nil {
			return err
		}
	}
	if err := c.Storage.Default().marshal(buf); err != nil {
		return err
	}

	for _, p := range c.Storage.Packs() {
		if err := marshalPack(buf, p); err != nil {
			return err
		}
	}

	if err := buf.WriteVarInt(int64(len(c.Entities))); err != nil {
		return err
	}
	for _, e := range c.Entities {
		if err := marshalEntity(buf, e); err != nil {
			return err
		}
	}
	return nil
}

func (c *BlockColumn) UnmarshalBinary(r *format.Reader) error {
	var dims [3]int
	for i := range dims {
		d, err := r.ReadUint8()
		if err != nil {
			return err
		}
		dims[i] = int(d)
	}
	def, err := unmarshalBlockState(r)
	if err != nil {
		return err
	}

	n := dims[0] * dims[1] * dims[2]
	packs := make([]*Pack[BlockState], n)
	for i := range packs {
		p, err := unmarshalPack(r)
		if err != nil {
			return fmt.Errorf("pack %d: %w", i, err)
		}
		packs[i] = p
	}
	c.Storage = FromPacks(dims, def, packs)

	entCount, err := r.ReadVarInt()
	if err != nil {
		return err
	}
	c.Entities = make([]EntityRef, entCount)
	for i := range c.Entities {
		e, err := unmarshalEntity(r)
		if err != nil {
			return fmt.Errorf("entity %d: %w", i, err)
		}
		c.Entities[i] = e
	}
	return nil
}

const (
	packTagSingle  uint8 = 0
	packTagPalette uint8 = 1
	packTagDense   uint8 = 2
)

func marshalPack(buf *format.Buffer, p *Pack[BlockState]) error {
	switch {
	case p.IsSingle():
		if err := buf.WriteUint8(packTagSingle); err != nil {
			return err
		}
		return p.SingleValue().marshal(buf)
	case p.IsPalette():
		if err := buf.WriteUint8(packTagPalette); err != nil {
			return err
		}
		table := p.Table()
		if err := buf.WriteVarInt(int64(len(table))); err != nil {
			return err
		}
		for _, v := range table {
			if err := v.marshal(buf); err != nil {
				return err
			}
		}
		indices := p.Indices()
		if _, err := buf.Write(indices[:]); err != nil {
			return err
		}
		return nil
	default:
		if err := buf.WriteUint8(packTagDense); err != nil {
			return err
		}
		dense := p.DenseValues()
		for _, v := range dense {
			if err := v.marshal(buf); err != nil {
				return err
			}
		}
		return nil
	}
}

func unmarshalPack(r *format.Reader) (*Pack[BlockState], error) {
	tag, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	switch tag {
	case packTagSingle:
		v, err := unmarshalBlockState(r)
		if err != nil {
			return nil, err
		}
		return NewSinglePack(v), nil
	case packTagPalette:
		n, err := r.ReadVarInt()
		if err != nil {
			return nil, err
		}
		table := make([]BlockState, n)
		for i := range table {
			v, err := unmarshalBlockState(r)
			if err != nil {
				return nil, err
			}
			table[i] = v
		}
		var indices [Volume]uint8
		for i := range indices {
			b, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			indices[i] = b
		}
		return NewPalettePack(table, indices), nil
	case packTagDense:
		var dense [Volume]BlockState
		for i := range dense {
			v, err := unmarshalBlockState(r)
			if err != nil {
				return nil, err
			}
			dense[i] = v
		}
		return NewDensePack(dense), nil
	default:
		return nil, fmt.Errorf("unknown pack tag %d", tag)
	}
}

func marshalEntity(buf *format.Buffer, e EntityRef) error {
	if err := buf.WriteBytes(e.ID[:]); err != nil {
		return err
	}
	if err := buf.WriteString(e.Kind); err != nil {
		return err
	}
	if err := buf.WriteFloat64(e.X); err != nil {
		return err
	}
	if err := buf.WriteFloat64(e.Y); err != nil {
		return err
	}
	return buf.WriteFloat64(e.Z)
}

func unmarshalEntity(r *format.Reader) (EntityRef, error) {
	idBytes, err := r.ReadBytes()
	if err != nil {
		return EntityRef{}, err
	}
	id, err := uuid.FromBytes(idBytes)
	if err != nil {
		return EntityRef{}, err
	}
	kind, err := r.ReadString()
	if err != nil {
		return EntityRef{}, err
	}
	x, err := r.ReadFloat64()
	if err != nil {
		return EntityRef{}, err
	}
	y, err := r.ReadFloat64()
	if err != nil {
		return EntityRef{}, err
	}
	z, err := r.ReadFloat64()
	if err != nil {
		return EntityRef{}, err
	}
	return EntityRef{ID: id, Kind: kind, X: x, Y: y, Z: z}, nil
}

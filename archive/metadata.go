package archive

import "github.com/google/uuid"

// SpawnAnchor is a player's last-known position, keyed by player UUID and
// stored in a region's metadata archive (an Archive[RegionMetadata] using
// NBTCodec rather than the bulk voxel archive's BinaryCodec).
type SpawnAnchor struct {
	Player string  `nbt:"player"` // uuid.UUID.String(); NBT has no native UUID tag
	X      float64 `nbt:"x"`
	Y      float64 `nbt:"y"`
	Z      float64 `nbt:"z"`
}

// PlayerUUID parses Player back into a uuid.UUID.
func (s SpawnAnchor) PlayerUUID() (uuid.UUID, error) {
	return uuid.Parse(s.Player)
}

// RegionMetadata is the small, infrequently-written sibling of a region's
// chunk payloads: spawn anchors for players last seen in this region. It
// holds no other region-level data; scheduled ticks are not stored here.
// It is NBT-encoded rather than binary-encoded because, unlike chunk voxel
// data, its shape changes across versions and NBT's self-describing tags
// tolerate that without a schema migration step (which is explicitly out
// of scope for the chunk payload format itself).
type RegionMetadata struct {
	Spawns []SpawnAnchor `nbt:"spawns"`
}

// NewRegionMetadataCodec returns the Codec a metadata Archive uses.
func NewRegionMetadataCodec() Codec[*RegionMetadata] {
	return NBTCodec[*RegionMetadata]{New: func() *RegionMetadata { return &RegionMetadata{} }}
}

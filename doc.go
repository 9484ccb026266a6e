// Package regioncore persists voxel world chunks in sector-allocated region
// archive files and serves them through a pool of per-region worker
// goroutines.
//
// A region groups a square of RegionAxis x RegionAxis chunks behind one
// archive file (see the format and archive packages); the chunk payload
// itself is a palette-compressed container (see the chunkstore package).
package regioncore

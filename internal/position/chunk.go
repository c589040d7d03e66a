package position

// Chunk/region grid. Блок -> чанк: >>4, чанк -> регион: >>5.
const (
	ChunkShift  = 4
	RegionShift = 5

	ChunkSize  = 1 << ChunkShift  // 16 blocks
	RegionSize = 1 << RegionShift // 32 chunks
)

// ChunkPos identifies a 16x16 column of blocks.
type ChunkPos struct {
	X, Z int
}

// RegionPos identifies a 32x32 area of chunks (one region file).
type RegionPos struct {
	X, Z int
}

// Chunk returns the chunk containing p. Arithmetic shift keeps negative
// coordinates on the correct side of zero.
func (p Position) Chunk() ChunkPos {
	return ChunkPos{
		X: BlockCoord(p.x) >> ChunkShift,
		Z: BlockCoord(p.z) >> ChunkShift,
	}
}

// Region returns the region containing the chunk.
func (c ChunkPos) Region() RegionPos {
	return RegionPos{X: c.X >> RegionShift, Z: c.Z >> RegionShift}
}

// Origin returns the minimum block X/Z of the chunk.
func (c ChunkPos) Origin() (x, z int) {
	return c.X << ChunkShift, c.Z << ChunkShift
}

// Contains reports whether block coordinates x/z fall inside the chunk.
func (c ChunkPos) Contains(x, z int) bool {
	return x>>ChunkShift == c.X && z>>ChunkShift == c.Z
}

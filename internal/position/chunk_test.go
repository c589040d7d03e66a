package position

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPosition_Chunk(t *testing.T) {
	reg := testRegistry(t)
	w := mustRef(t, reg, "world")

	tests := []struct {
		name       string
		x, z       float64
		wantChunk  ChunkPos
		wantRegion RegionPos
	}{
		{"origin", 0, 0, ChunkPos{0, 0}, RegionPos{0, 0}},
		{"inside first chunk", 15.9, 15.9, ChunkPos{0, 0}, RegionPos{0, 0}},
		{"next chunk", 16, 31.5, ChunkPos{1, 1}, RegionPos{0, 0}},
		{"negative fraction", -0.1, -0.1, ChunkPos{-1, -1}, RegionPos{-1, -1}},
		{"negative boundary", -16, -17, ChunkPos{-1, -2}, RegionPos{-1, -1}},
		{"region boundary", 512, -513, ChunkPos{32, -33}, RegionPos{1, -2}},
		{"saturated", 1e20, -1e20, ChunkPos{math.MaxInt >> 4, math.MinInt >> 4}, RegionPos{math.MaxInt >> 9, math.MinInt >> 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustAt(t, tt.x, 64, tt.z, 0, 0, w)
			c := p.Chunk()
			assert.Equal(t, tt.wantChunk, c)
			assert.Equal(t, tt.wantRegion, c.Region())

			b := p.BlockPos()
			assert.True(t, c.Contains(b[0], b[2]))
		})
	}
}

func TestChunkPos_Origin(t *testing.T) {
	x, z := ChunkPos{X: -2, Z: 3}.Origin()
	assert.Equal(t, -32, x)
	assert.Equal(t, 48, z)

	assert.True(t, ChunkPos{X: -2, Z: 3}.Contains(-32, 63))
	assert.False(t, ChunkPos{X: -2, Z: 3}.Contains(-33, 48))
}

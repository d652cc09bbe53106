package world

import (
	"fmt"

	"globe/internal/config"
)

// ChunkCoord identifies a chunk column in global chunk space.
type ChunkCoord struct {
	X int `json:"x"`
	Z int `json:"z"`
}

func (c ChunkCoord) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Z) }

// LocalChunkIndex represents a chunk index relative to the owning server region.
type LocalChunkIndex struct {
	X int
	Z int
}

// BlockCoord describes a block position in global block space. Y is
// vertical and Z runs north-south, so latitude follows Z.
type BlockCoord struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Dimensions defines the size of a chunk in blocks.
type Dimensions struct {
	Width  int `json:"width"`
	Depth  int `json:"depth"`
	Height int `json:"height"`
}

// Bounds is an axis-aligned bounding box with inclusive corners.
type Bounds struct {
	Min BlockCoord
	Max BlockCoord
}

// ServerRegion delineates the contiguous grid of chunks owned by one
// generator process.
type ServerRegion struct {
	Origin         ChunkCoord
	ChunksPerAxis  int
	ChunkDimension Dimensions
}

func NewServerRegion(cfg *config.Config) ServerRegion {
	return ServerRegion{
		Origin: ChunkCoord{
			X: cfg.Server.GlobalChunkOrigin.X,
			Z: cfg.Server.GlobalChunkOrigin.Z,
		},
		ChunksPerAxis: cfg.Chunk.ChunksPerAxis,
		ChunkDimension: Dimensions{
			Width:  cfg.Chunk.Width,
			Depth:  cfg.Chunk.Depth,
			Height: cfg.Chunk.Height,
		},
	}
}

func (r ServerRegion) ContainsGlobalChunk(coord ChunkCoord) bool {
	return coord.X >= r.Origin.X &&
		coord.Z >= r.Origin.Z &&
		coord.X < r.Origin.X+r.ChunksPerAxis &&
		coord.Z < r.Origin.Z+r.ChunksPerAxis
}

func (r ServerRegion) GlobalToLocalChunk(global ChunkCoord) (LocalChunkIndex, error) {
	if !r.ContainsGlobalChunk(global) {
		return LocalChunkIndex{}, fmt.Errorf("global chunk %v not owned by region", global)
	}
	return LocalChunkIndex{
		X: global.X - r.Origin.X,
		Z: global.Z - r.Origin.Z,
	}, nil
}

func (r ServerRegion) ChunkBounds(global ChunkCoord) (Bounds, error) {
	if !r.ContainsGlobalChunk(global) {
		return Bounds{}, fmt.Errorf("chunk %v outside region", global)
	}
	return BoundsFor(global, r.ChunkDimension), nil
}

// BoundsFor returns the block bounds of a chunk regardless of ownership.
func BoundsFor(global ChunkCoord, dim Dimensions) Bounds {
	min := BlockCoord{
		X: global.X * dim.Width,
		Y: 0,
		Z: global.Z * dim.Depth,
	}
	max := BlockCoord{
		X: min.X + dim.Width - 1,
		Y: dim.Height - 1,
		Z: min.Z + dim.Depth - 1,
	}
	return Bounds{Min: min, Max: max}
}

// LocateBlock returns the chunk holding block and whether this region owns it.
func (r ServerRegion) LocateBlock(block BlockCoord) (ChunkCoord, bool) {
	if block.Y < 0 || block.Y >= r.ChunkDimension.Height {
		return ChunkCoord{}, false
	}
	chunk := ChunkCoord{
		X: FloorDiv(block.X, r.ChunkDimension.Width),
		Z: FloorDiv(block.Z, r.ChunkDimension.Depth),
	}
	return chunk, r.ContainsGlobalChunk(chunk)
}

// FloorDiv divides rounding towards negative infinity.
func FloorDiv(value, size int) int {
	if size <= 0 {
		return 0
	}
	if value >= 0 {
		return value / size
	}
	return -((-value - 1) / size) - 1
}

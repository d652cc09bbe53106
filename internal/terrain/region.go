package terrain

import "globe/internal/world"

// Region is the mutable write API features use after the terrain shape is
// final. Coordinates are global; writes outside the chunk are ignored.
type Region struct {
	proto *ProtoChunk
	ctx   WriteContext
}

func (r *Region) Bounds() world.Bounds { return r.proto.bounds }

func (r *Region) local(pos world.BlockCoord) (int, int, int, bool) {
	b := r.proto.bounds
	if pos.X < b.Min.X || pos.X > b.Max.X ||
		pos.Y < b.Min.Y || pos.Y > b.Max.Y ||
		pos.Z < b.Min.Z || pos.Z > b.Max.Z {
		return 0, 0, 0, false
	}
	return pos.X - b.Min.X, pos.Y - b.Min.Y, pos.Z - b.Min.Z, true
}

// Contains reports whether pos lies inside the region.
func (r *Region) Contains(pos world.BlockCoord) bool {
	_, _, _, ok := r.local(pos)
	return ok
}

func (r *Region) Block(pos world.BlockCoord) world.Block {
	x, y, z, ok := r.local(pos)
	if !ok {
		return world.Air
	}
	return r.proto.Block(x, y, z)
}

// SetBlock writes through the region-stage hooks.
func (r *Region) SetBlock(pos world.BlockCoord, block world.Block) bool {
	x, y, z, ok := r.local(pos)
	if !ok {
		return false
	}
	return r.proto.set(&r.ctx, x, y, z, block)
}

// SurfaceY returns the global height of the highest non-air block in the
// column, or -1 when the column is empty or outside the region.
func (r *Region) SurfaceY(blockX, blockZ int) int {
	b := r.proto.bounds
	x, _, z, ok := r.local(world.BlockCoord{X: blockX, Y: b.Min.Y, Z: blockZ})
	if !ok {
		return -1
	}
	local := r.proto.SurfaceY(x, z)
	if local < 0 {
		return -1
	}
	return b.Min.Y + local
}

// SkyVisible reports whether nothing but air lies above pos.
func (r *Region) SkyVisible(pos world.BlockCoord) bool {
	x, y, z, ok := r.local(pos)
	if !ok {
		return false
	}
	return r.proto.SurfaceY(x, z) <= y
}

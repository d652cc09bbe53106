package terrain

import (
	"fmt"

	"globe/internal/world"
)

// ProtoChunk buffers the blocks of a chunk while it is generated. Every
// write passes through the block-write hooks at StageProto; nothing reaches
// storage until Flush.
type ProtoChunk struct {
	chunk   *world.Chunk
	bounds  world.Bounds
	dim     world.Dimensions
	hooks   Hooks
	ctx     WriteContext
	columns [][]world.Block
}

// NewProtoChunk buffers writes for chunk. ctx is copied and its stage forced
// to StageProto.
func NewProtoChunk(chunk *world.Chunk, hooks Hooks, ctx WriteContext) *ProtoChunk {
	dim := chunk.Dimensions()
	ctx.Stage = StageProto
	ctx.Chunk = chunk.Key
	return &ProtoChunk{
		chunk:   chunk,
		bounds:  chunk.Bounds,
		dim:     dim,
		hooks:   hooks,
		ctx:     ctx,
		columns: make([][]world.Block, dim.Width*dim.Depth),
	}
}

func (p *ProtoChunk) Bounds() world.Bounds { return p.bounds }

func (p *ProtoChunk) Dimensions() world.Dimensions { return p.dim }

// Context returns the write context of the chunk.
func (p *ProtoChunk) index(localX, localZ int) (int, bool) {
	if localX < 0 || localZ < 0 || localX >= p.dim.Width || localZ >= p.dim.Depth {
		return 0, false
	}
	return localZ*p.dim.Width + localX, true
}

func (p *ProtoChunk) global(localX, localY, localZ int) world.BlockCoord {
	return world.BlockCoord{
		X: p.bounds.Min.X + localX,
		Y: p.bounds.Min.Y + localY,
		Z: p.bounds.Min.Z + localZ,
	}
}

// Store replaces a whole column, bottom first. Blocks past the chunk height
// are dropped.
func (p *ProtoChunk) Store(localX, localZ int, column []world.Block) error {
	idx, ok := p.index(localX, localZ)
	if !ok {
		return fmt.Errorf("column (%d,%d) outside chunk %v", localX, localZ, p.chunk.Key)
	}
	buf := make([]world.Block, p.dim.Height)
	n := copy(buf, column)
	if len(p.hooks.BlockWrites) > 0 {
		for y := 0; y < n; y++ {
			if buf[y].IsAir() {
				continue
			}
			buf[y] = p.hooks.write(&p.ctx, p.global(localX, y, localZ), buf[y])
		}
	}
	p.columns[idx] = buf
	return nil
}

func (p *ProtoChunk) column(localX, localZ int) []world.Block {
	idx, ok := p.index(localX, localZ)
	if !ok {
		return nil
	}
	if p.columns[idx] == nil {
		p.columns[idx] = make([]world.Block, p.dim.Height)
	}
	return p.columns[idx]
}

// Block returns the buffered block at local coordinates.
func (p *ProtoChunk) Block(localX, localY, localZ int) world.Block {
	column := p.column(localX, localZ)
	if localY < 0 || localY >= len(column) {
		return world.Air
	}
	return column[localY]
}

// SetBlock writes one block through the proto-stage hooks.
func (p *ProtoChunk) SetBlock(localX, localY, localZ int, block world.Block) bool {
	return p.set(&p.ctx, localX, localY, localZ, block)
}

func (p *ProtoChunk) set(ctx *WriteContext, localX, localY, localZ int, block world.Block) bool {
	column := p.column(localX, localZ)
	if localY < 0 || localY >= len(column) {
		return false
	}
	column[localY] = p.hooks.write(ctx, p.global(localX, localY, localZ), block)
	return true
}

// SurfaceY returns the local height of the highest non-air block, or -1.
func (p *ProtoChunk) SurfaceY(localX, localZ int) int {
	column := p.column(localX, localZ)
	for y := len(column) - 1; y >= 0; y-- {
		if !column[y].IsAir() {
			return y
		}
	}
	return -1
}

// Region opens the mutable region write API over the buffered chunk.
func (p *ProtoChunk) Region() *Region {
	ctx := p.ctx
	ctx.Stage = StageRegion
	return &Region{proto: p, ctx: ctx}
}

// Flush persists every buffered column into the chunk.
func (p *ProtoChunk) Flush() error {
	for idx, column := range p.columns {
		if column == nil {
			continue
		}
		localX := idx % p.dim.Width
		localZ := idx / p.dim.Width
		if ok := p.chunk.SetColumnBlocks(localX, localZ, column); !ok {
			return fmt.Errorf("chunk %v failed to persist column (%d,%d)", p.chunk.Key, localX, localZ)
		}
	}
	return nil
}

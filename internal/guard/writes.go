package guard

import (
	"fmt"

	"globe/internal/diagnostics"
	"globe/internal/terrain"
	"globe/internal/world"
)

// ProtoWriteGuard corrects frozen blocks written while a warm-zone chunk is
// still being generated.
type ProtoWriteGuard struct {
	events *diagnostics.Sampled
}

func (g *ProtoWriteGuard) OnBlockWrite(ctx *terrain.WriteContext, pos world.BlockCoord, state world.Block) world.Block {
	if ctx == nil || ctx.Stage != terrain.StageProto {
		return state
	}
	return correctWrite(ctx, pos, state, g.events)
}

// RegionWriteGuard corrects frozen blocks placed through the region API,
// which bypasses the proto chunk.
type RegionWriteGuard struct {
	events *diagnostics.Sampled
}

func (g *RegionWriteGuard) OnBlockWrite(ctx *terrain.WriteContext, pos world.BlockCoord, state world.Block) world.Block {
	if ctx == nil || ctx.Stage != terrain.StageRegion {
		return state
	}
	return correctWrite(ctx, pos, state, g.events)
}

func correctWrite(ctx *terrain.WriteContext, pos world.BlockCoord, state world.Block, events *diagnostics.Sampled) world.Block {
	if !state.IsFrozen() {
		return state
	}
	zone, warm, ok := warmAt(ctx.Resolver, pos.Z)
	if !ok || !warm {
		return state
	}
	corrected := Correct(state, pos.Y, ctx.SeaLevel)
	if corrected == state {
		return state
	}
	if events.Inc() {
		events.Sample(fmt.Sprintf("%s write %s -> %s at %d,%d,%d (%s, chunk %s)",
			ctx.Stage, state, corrected, pos.X, pos.Y, pos.Z, zone, ctx.Chunk))
	}
	return corrected
}

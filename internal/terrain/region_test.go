package terrain

import (
	"testing"

	"globe/internal/world"
)

type stageRecorder struct {
	stages []Stage
}

func (s *stageRecorder) OnBlockWrite(ctx *WriteContext, _ world.BlockCoord, state world.Block) world.Block {
	s.stages = append(s.stages, ctx.Stage)
	if state == world.SnowLayer {
		return world.Air
	}
	return state
}

func TestProtoChunkAndRegion(t *testing.T) {
	chunk := testChunk(world.ChunkCoord{X: 1, Z: 1})
	rec := &stageRecorder{}
	proto := NewProtoChunk(chunk, Hooks{BlockWrites: []BlockWriteHook{rec}}, WriteContext{SeaLevel: 63})

	if err := proto.Store(0, 0, []world.Block{world.Bedrock, world.Stone, world.Dirt, world.SnowLayer}); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := proto.Store(16, 0, nil); err == nil {
		t.Fatalf("expected out of range error")
	}
	if got := proto.Block(0, 3, 0); got != world.Air {
		t.Fatalf("hook should have replaced the snow layer, got %v", got)
	}
	if len(rec.stages) != 4 || rec.stages[0] != StageProto {
		t.Fatalf("proto writes recorded %v", rec.stages)
	}

	region := proto.Region()
	base := world.BlockCoord{X: 16, Y: 0, Z: 16}
	if got := region.SurfaceY(base.X, base.Z); got != 2 {
		t.Fatalf("SurfaceY = %d, want 2", got)
	}
	if !region.SkyVisible(world.BlockCoord{X: 16, Y: 2, Z: 16}) {
		t.Fatalf("top block should see the sky")
	}
	if region.SkyVisible(world.BlockCoord{X: 16, Y: 1, Z: 16}) {
		t.Fatalf("buried block should not see the sky")
	}

	if !region.SetBlock(world.BlockCoord{X: 16, Y: 5, Z: 16}, world.Stone) {
		t.Fatalf("region SetBlock failed")
	}
	if rec.stages[len(rec.stages)-1] != StageRegion {
		t.Fatalf("region write recorded as %v", rec.stages[len(rec.stages)-1])
	}
	if region.SkyVisible(world.BlockCoord{X: 16, Y: 2, Z: 16}) {
		t.Fatalf("overhang should block the sky")
	}
	if region.SetBlock(world.BlockCoord{X: 0, Y: 5, Z: 0}, world.Stone) {
		t.Fatalf("write outside the region should fail")
	}
	if got := region.SurfaceY(0, 0); got != -1 {
		t.Fatalf("SurfaceY outside = %d, want -1", got)
	}

	if err := proto.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if b, _ := chunk.LocalBlock(0, 5, 0); b != world.Stone {
		t.Fatalf("flushed block = %v", b)
	}
	if chunk.SurfaceY(0, 0) != 5 {
		t.Fatalf("flushed surface = %d", chunk.SurfaceY(0, 0))
	}
}

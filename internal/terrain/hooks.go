package terrain

import (
	"globe/internal/preset"
	"globe/internal/world"
)

// Stage names the API a block write arrived through.
type Stage uint8

const (
	// StageProto covers writes made while the chunk is being generated.
	StageProto Stage = iota
	// StageRegion covers writes made through the mutable region API by
	// features and structures.
	StageRegion
)

func (s Stage) String() string {
	switch s {
	case StageProto:
		return "proto"
	case StageRegion:
		return "region"
	}
	return "unknown"
}

// Feature names passed to FeatureHook.
const (
	FeatureOreVein          = "ore_vein"
	FeatureIceSpike         = "ice_spike"
	FeaturePointedDripstone = "pointed_dripstone"
	FeatureDripstoneCluster = "dripstone_cluster"
	FeatureLargeDripstone   = "large_dripstone"
	FeatureFreezeTopLayer   = "freeze_top_layer"
)

// WriteContext is created once per chunk generation and handed to every
// hook invoked for that chunk.
type WriteContext struct {
	Stage    Stage
	Chunk    world.ChunkCoord
	Resolver *preset.Resolver
	SeaLevel int
}

// FeatureContext describes one feature placement attempt.
type FeatureContext struct {
	Feature  string
	Origin   world.BlockCoord
	Resolver *preset.Resolver
	SeaLevel int
	// Region is the write API the feature will use; hooks may read the
	// heightmap and sky visibility from it.
	Region *Region
}

// CarveContext describes the carving pass of one chunk.
type CarveContext struct {
	Chunk    world.ChunkCoord
	Bounds   world.Bounds
	Resolver *preset.Resolver
}

// BlockWriteHook may replace a block before it is written.
type BlockWriteHook interface {
	OnBlockWrite(ctx *WriteContext, pos world.BlockCoord, state world.Block) world.Block
}

// BiomeHook observes a chunk after its biome grid is populated.
type BiomeHook interface {
	OnBiomePopulated(ctx *WriteContext, chunk *world.Chunk)
}

// FeatureHook may cancel a feature placement by returning false.
type FeatureHook interface {
	BeforeFeature(ctx *FeatureContext) bool
}

// CarveHook may cancel the carving pass of a chunk by returning false.
type CarveHook interface {
	BeforeCarve(ctx *CarveContext) bool
}

// Hooks is the set of extension points the generator calls, in slice order.
type Hooks struct {
	BlockWrites []BlockWriteHook
	Biomes      []BiomeHook
	Features    []FeatureHook
	Carvers     []CarveHook
}

func (h Hooks) write(ctx *WriteContext, pos world.BlockCoord, state world.Block) world.Block {
	for _, hook := range h.BlockWrites {
		state = hook.OnBlockWrite(ctx, pos, state)
	}
	return state
}

func (h Hooks) biomesPopulated(ctx *WriteContext, chunk *world.Chunk) {
	for _, hook := range h.Biomes {
		hook.OnBiomePopulated(ctx, chunk)
	}
}

func (h Hooks) allowFeature(ctx *FeatureContext) bool {
	for _, hook := range h.Features {
		if !hook.BeforeFeature(ctx) {
			return false
		}
	}
	return true
}

func (h Hooks) allowCarve(ctx *CarveContext) bool {
	for _, hook := range h.Carvers {
		if !hook.BeforeCarve(ctx) {
			return false
		}
	}
	return true
}

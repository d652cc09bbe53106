package terrain

import (
	"globe/internal/biome"
	"globe/internal/world"
)

type surfaceRule struct {
	top    world.Block
	filler world.Block
}

var (
	grassRule  = surfaceRule{top: world.Grass, filler: world.Dirt}
	sandRule   = surfaceRule{top: world.Sand, filler: world.Sandstone}
	stoneRule  = surfaceRule{top: world.Stone, filler: world.Stone}
	gravelRule = surfaceRule{top: world.Gravel, filler: world.Gravel}
)

var surfaceRules = map[string]surfaceRule{
	biome.Desert:               sandRule,
	biome.Beach:                sandRule,
	biome.WarmOcean:            sandRule,
	biome.LukewarmOcean:        sandRule,
	biome.DeepLukewarmOcean:    sandRule,
	biome.Badlands:             {top: world.RedSand, filler: world.Terracotta},
	biome.WoodedBadlands:       {top: world.CoarseDirt, filler: world.Terracotta},
	biome.ErodedBadlands:       {top: world.RedSand, filler: world.Terracotta},
	biome.MushroomFields:       {top: world.Mycelium, filler: world.Dirt},
	biome.Swamp:                {top: world.Grass, filler: world.Mud},
	biome.MangroveSwamp:        {top: world.Mud, filler: world.Mud},
	biome.OldGrowthPineTaiga:   {top: world.Podzol, filler: world.Dirt},
	biome.OldGrowthSpruceTaiga: {top: world.Podzol, filler: world.Dirt},
	biome.StonyShore:           stoneRule,
	biome.StonyPeaks:           {top: world.Calcite, filler: world.Stone},
	biome.WindsweptHills:       stoneRule,
	biome.JaggedPeaks:          {top: world.SnowBlock, filler: world.Stone},
	biome.FrozenPeaks:          {top: world.PackedIce, filler: world.Stone},
	biome.SnowySlopes:          {top: world.SnowBlock, filler: world.PowderSnow},
	biome.Grove:                {top: world.SnowBlock, filler: world.Dirt},
	biome.SnowyBeach:           {top: world.Sand, filler: world.Sandstone},
	biome.Ocean:                gravelRule,
	biome.DeepOcean:            gravelRule,
	biome.ColdOcean:            gravelRule,
	biome.DeepColdOcean:        gravelRule,
	biome.FrozenOcean:          gravelRule,
	biome.DeepFrozenOcean:      gravelRule,
	biome.River:                {top: world.Clay, filler: world.Sand},
	biome.FrozenRiver:          {top: world.Clay, filler: world.Sand},
}

// buildSurface dresses the top of each column according to its surface
// biome, then lays snow wherever the host's own temperature says the
// surface is cold or the column rises above the snow line.
func (g *Generator) buildSurface(proto *ProtoChunk, chunk *world.Chunk) {
	dim := proto.Dimensions()
	bounds := proto.Bounds()
	for z := 0; z < dim.Depth; z++ {
		for x := 0; x < dim.Width; x++ {
			surface := g.terrainTop(proto, x, z)
			if surface < 0 {
				continue
			}
			id := chunk.Biome(x/world.QuartSize, surface/world.QuartSize, z/world.QuartSize)
			rule, ok := surfaceRules[id]
			if !ok {
				rule = grassRule
			}
			underwater := bounds.Min.Y+surface < g.seaLevel
			if underwater && rule.top == world.Grass {
				rule = surfaceRule{top: world.Dirt, filler: world.Dirt}
			}

			proto.SetBlock(x, surface, z, rule.top)
			for depth := 1; depth <= 3 && surface-depth > 0; depth++ {
				if proto.Block(x, surface-depth, z) == world.Dirt {
					proto.SetBlock(x, surface-depth, z, rule.filler)
				}
			}

			if underwater {
				continue
			}
			globalX, globalZ := bounds.Min.X+x, bounds.Min.Z+z
			cold := g.sampler.Temperature(globalX, globalZ) < g.cfg.FreezeBelow
			high := g.cfg.SnowLine > 0 && bounds.Min.Y+surface >= g.cfg.SnowLine
			if (cold || high) && surface+1 < dim.Height {
				if rule.top == world.Grass {
					proto.SetBlock(x, surface, z, world.SnowBlock)
				}
				proto.SetBlock(x, surface+1, z, world.SnowLayer)
			}
		}
	}
}

// terrainTop returns the local height of the highest solid block under any
// water, or -1.
func (g *Generator) terrainTop(proto *ProtoChunk, x, z int) int {
	for y := proto.SurfaceY(x, z); y >= 0; y-- {
		b := proto.Block(x, y, z)
		if !b.IsAir() && !b.IsFluid() {
			return y
		}
	}
	return -1
}

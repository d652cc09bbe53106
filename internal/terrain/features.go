package terrain

import (
	"math"
	"sort"

	"globe/internal/biome"
	"globe/internal/world"
)

// placeFeatures runs the feature stage in host order. Each placement asks
// the feature hooks first.
func (g *Generator) placeFeatures(region *Region, chunk *world.Chunk) {
	g.seedMineralVeins(region)
	g.placeIceSpikes(region, chunk)
	g.placeDripstone(region, chunk)
	g.freezeTopLayer(region, chunk)
}

func (g *Generator) allow(region *Region, feature string, origin world.BlockCoord) bool {
	ctx := FeatureContext{
		Feature:  feature,
		Origin:   origin,
		Resolver: region.ctx.Resolver,
		SeaLevel: region.ctx.SeaLevel,
		Region:   region,
	}
	return g.hooks.allowFeature(&ctx)
}

func (g *Generator) chunkRNG(region *Region, salt int64) *deterministicRNG {
	b := region.Bounds()
	return newDeterministicRNG(b.Min.X, b.Min.Z, g.seed^salt)
}

func (g *Generator) seedMineralVeins(region *Region) {
	if len(g.cfg.OreDensity) == 0 {
		return
	}
	names := make([]string, 0, len(g.cfg.OreDensity))
	for name := range g.cfg.OreDensity {
		names = append(names, name)
	}
	sort.Strings(names)

	b := region.Bounds()
	for _, name := range names {
		density := g.cfg.OreDensity[name]
		ore, err := world.ParseBlock(name)
		if err != nil || !ore.IsOre() || density <= 0 {
			continue
		}
		for z := b.Min.Z; z <= b.Max.Z; z++ {
			for x := b.Min.X; x <= b.Max.X; x++ {
				hashVal := hash3(x, z, int(g.seed^int64(len(name))^saltFeature)+int(ore))
				chance := float64(hashVal&0xFFFF) / 0xFFFF
				if chance > density {
					continue
				}
				top := region.SurfaceY(x, z) - 4
				if top <= caveFloorY {
					continue
				}
				rng := newDeterministicRNG(x, z, g.seed^int64(hashVal))
				placements := veinSizeForDensity(density, rng)
				origin := world.BlockCoord{X: x, Y: caveFloorY + rng.nextInt(top-caveFloorY), Z: z}
				if !g.allow(region, FeatureOreVein, origin) {
					continue
				}
				g.scatterMinerals(region, origin, top, ore, placements, rng)
			}
		}
	}
}

func (g *Generator) scatterMinerals(region *Region, origin world.BlockCoord, top int, ore world.Block, placements int, rng *deterministicRNG) {
	placed := 0
	for attempts := 0; placed < placements && attempts < placements*6; attempts++ {
		pos := origin
		pos.Y = clampInt(origin.Y+rng.nextInt(7)-3, caveFloorY, top)
		current := region.Block(pos)
		if current != world.Stone && current != world.Deepslate {
			continue
		}
		if region.SetBlock(pos, ore) {
			placed++
		}
	}
}

func veinSizeForDensity(density float64, rng *deterministicRNG) int {
	base := 3 + int(math.Ceil(density*4))
	max := base + int(math.Ceil(density*6))
	if max == base {
		return base
	}
	return base + rng.nextInt(max-base+1)
}

func (g *Generator) hasPossible(id string) bool {
	for _, b := range g.possible {
		if b.ID == id {
			return true
		}
	}
	return false
}

// surfaceBiome returns the chunk's biome at the top of a global column.
func surfaceBiome(region *Region, chunk *world.Chunk, blockX, blockZ int) (string, int) {
	surface := region.SurfaceY(blockX, blockZ)
	if surface < 0 {
		return "", surface
	}
	return chunk.BiomeAt(world.BlockCoord{X: blockX, Y: surface, Z: blockZ}), surface
}

func (g *Generator) placeIceSpikes(region *Region, chunk *world.Chunk) {
	if !g.hasPossible(biome.IceSpikes) {
		return
	}
	b := region.Bounds()
	dim := chunk.Dimensions()
	rng := g.chunkRNG(region, 0x1CE5)
	for attempt := 0; attempt < 2; attempt++ {
		x := b.Min.X + rng.nextInt(dim.Width)
		z := b.Min.Z + rng.nextInt(dim.Depth)
		id, surface := surfaceBiome(region, chunk, x, z)
		if id != biome.IceSpikes {
			continue
		}
		origin := world.BlockCoord{X: x, Y: surface + 1, Z: z}
		if !g.allow(region, FeatureIceSpike, origin) {
			continue
		}
		height := 4 + rng.nextInt(6)
		for h := 0; h < height; h++ {
			region.SetBlock(world.BlockCoord{X: x, Y: origin.Y + h, Z: z}, world.PackedIce)
		}
	}
}

type dripstoneFeature struct {
	name     string
	attempts int
	place    func(region *Region, origin world.BlockCoord, rng *deterministicRNG) bool
}

var dripstoneFeatures = []dripstoneFeature{
	{name: FeaturePointedDripstone, attempts: 4, place: placePointedDripstone},
	{name: FeatureDripstoneCluster, attempts: 2, place: placeDripstoneCluster},
	{name: FeatureLargeDripstone, attempts: 1, place: placeLargeDripstone},
}

// placeDripstone scatters the three dripstone features over the chunk.
// Candidate heights span the whole column up to just above the surface;
// dripstone caves get three times as many attempts.
func (g *Generator) placeDripstone(region *Region, chunk *world.Chunk) {
	b := region.Bounds()
	dim := chunk.Dimensions()
	rng := g.chunkRNG(region, 0xD819)
	for _, feature := range dripstoneFeatures {
		attempts := feature.attempts
		if chunkHasBiome(chunk, biome.DripstoneCaves) {
			attempts *= 3
		}
		for i := 0; i < attempts; i++ {
			x := b.Min.X + rng.nextInt(dim.Width)
			z := b.Min.Z + rng.nextInt(dim.Depth)
			surface := region.SurfaceY(x, z)
			if surface <= caveFloorY {
				continue
			}
			origin := world.BlockCoord{X: x, Y: caveFloorY + rng.nextInt(surface-caveFloorY+2), Z: z}
			if !g.allow(region, feature.name, origin) {
				continue
			}
			feature.place(region, origin, rng)
		}
	}
}

func chunkHasBiome(chunk *world.Chunk, id string) bool {
	qw, qh, qd := chunk.BiomeGridSize()
	for qy := 0; qy < qh; qy++ {
		for qz := 0; qz < qd; qz++ {
			for qx := 0; qx < qw; qx++ {
				if chunk.Biome(qx, qy, qz) == id {
					return true
				}
			}
		}
	}
	return false
}

func above(pos world.BlockCoord, dy int) world.BlockCoord {
	pos.Y += dy
	return pos
}

func placePointedDripstone(region *Region, origin world.BlockCoord, _ *deterministicRNG) bool {
	if !region.Block(origin).IsAir() {
		return false
	}
	if region.Block(above(origin, 1)).IsSolid() || region.Block(above(origin, -1)).IsSolid() {
		return region.SetBlock(origin, world.PointedDripstone)
	}
	return false
}

func placeDripstoneCluster(region *Region, origin world.BlockCoord, rng *deterministicRNG) bool {
	placed := false
	for dz := -1; dz <= 1; dz++ {
		for dx := -1; dx <= 1; dx++ {
			pos := world.BlockCoord{X: origin.X + dx, Y: origin.Y, Z: origin.Z + dz}
			if region.Block(pos) != world.Stone || rng.nextFloat() < 0.25 {
				continue
			}
			if region.SetBlock(pos, world.DripstoneBlock) {
				placed = true
			}
		}
	}
	return placed
}

func placeLargeDripstone(region *Region, origin world.BlockCoord, rng *deterministicRNG) bool {
	if !region.Block(above(origin, -1)).IsSolid() {
		return false
	}
	height := 3 + rng.nextInt(4)
	placed := false
	for h := 0; h < height; h++ {
		pos := above(origin, h)
		if !region.Block(pos).IsAir() {
			break
		}
		region.SetBlock(pos, world.DripstoneBlock)
		placed = true
	}
	return placed
}

// freezeTopLayer freezes surface water and lays snow on cold columns. It
// runs after carving and judges cold by the host's temperature or a snowy
// surface biome.
func (g *Generator) freezeTopLayer(region *Region, chunk *world.Chunk) {
	b := region.Bounds()
	origin := world.BlockCoord{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z}
	if !g.allow(region, FeatureFreezeTopLayer, origin) {
		return
	}
	for z := b.Min.Z; z <= b.Max.Z; z++ {
		for x := b.Min.X; x <= b.Max.X; x++ {
			id, top := surfaceBiome(region, chunk, x, z)
			if top < 0 {
				continue
			}
			snowy := false
			if bio, ok := g.registry.Lookup(id); ok {
				snowy = bio.Snowy
			}
			if !snowy && g.sampler.Temperature(x, z) >= g.cfg.FreezeBelow {
				continue
			}
			pos := world.BlockCoord{X: x, Y: top, Z: z}
			switch current := region.Block(pos); {
			case current == world.Water:
				region.SetBlock(pos, world.Ice)
			case current.IsSolid() && top+1 <= b.Max.Y:
				region.SetBlock(above(pos, 1), world.SnowLayer)
			}
		}
	}
}

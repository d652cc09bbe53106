// Package guard re-applies the latitude decision at every place the
// generation pipeline can write state that contradicts it. Each guard
// recomputes the zone itself and does nothing when its context is missing.
package guard

import (
	"globe/internal/biome"
	"globe/internal/diagnostics"
	"globe/internal/latitude"
	"globe/internal/preset"
	"globe/internal/terrain"
	"globe/internal/world"
)

// Counter names published in diagnostics.
const (
	CounterProtoWrite       = "guard.proto_write"
	CounterRegionWrite      = "guard.region_write"
	CounterCarveDisable     = "guard.carve_disable"
	CounterDripstoneSurface = "guard.dripstone_surface"
	CounterFreezeFeature    = "guard.freeze_feature"
	CounterBiomePopulated   = "biome.populated"
	CounterWarmSnowyBiome   = "biome.warm_snowy"
)

type Config struct {
	Enabled bool
	// CarvePreset is the only preset whose polar caps lose their caves.
	CarvePreset preset.ID
	// CarveCutoffZ is the |z| from which carving is cancelled.
	CarveCutoffZ int
	// DripstoneBuffer is how far below the surface dripstone stays banned.
	DripstoneBuffer int
}

func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		CarvePreset:     preset.Overworld,
		CarveCutoffZ:    12000,
		DripstoneBuffer: 8,
	}
}

// Correct returns what a frozen block becomes inside a warm zone. Solid snow
// and packed ice turn into dirt at or above sea level and stone below it,
// loose ice melts into water up to sea level, and a snow layer vanishes.
// Other blocks are returned unchanged, so Correct is idempotent.
func Correct(state world.Block, y, seaLevel int) world.Block {
	switch state {
	case world.SnowLayer:
		return world.Air
	case world.Ice:
		if y <= seaLevel {
			return world.Water
		}
		return world.Dirt
	case world.SnowBlock, world.PowderSnow, world.PackedIce, world.BlueIce:
		if y >= seaLevel {
			return world.Dirt
		}
		return world.Stone
	}
	return state
}

// warmAt resolves the zone of a block row. ok is false when the resolver
// cannot produce a radius.
func warmAt(resolver *preset.Resolver, z int) (zone latitude.Zone, warm bool, ok bool) {
	radius, resolved := resolver.Resolve()
	if !resolved {
		return latitude.Equator, false, false
	}
	zone = latitude.ZoneForRadius(radius, z)
	return zone, zone.Warm(), true
}

// Set is the full, ordered collection of guards sharing one diagnostics
// registry.
type Set struct {
	cfg       Config
	Proto     *ProtoWriteGuard
	Region    *RegionWriteGuard
	Carve     *CarveGuard
	Dripstone *DripstoneGuard
	Freeze    *FreezeGuard
	Audit     *BiomeAudit
}

func New(cfg Config, reg *biome.Registry, diag *diagnostics.Registry) *Set {
	if reg == nil {
		reg = biome.DefaultRegistry()
	}
	return &Set{
		cfg:       cfg,
		Proto:     &ProtoWriteGuard{events: diag.Sampled(CounterProtoWrite)},
		Region:    &RegionWriteGuard{events: diag.Sampled(CounterRegionWrite)},
		Carve:     &CarveGuard{preset: cfg.CarvePreset, cutoff: cfg.CarveCutoffZ, events: diag.Sampled(CounterCarveDisable)},
		Dripstone: &DripstoneGuard{buffer: cfg.DripstoneBuffer, events: diag.Sampled(CounterDripstoneSurface)},
		Freeze:    &FreezeGuard{events: diag.Sampled(CounterFreezeFeature)},
		Audit: &BiomeAudit{
			registry:  reg,
			populated: diag.Counter(CounterBiomePopulated),
			warmSnowy: diag.Sampled(CounterWarmSnowyBiome),
		},
	}
}

// Hooks returns the guards as generator hooks in stage order. A disabled
// set contributes no hooks.
func (s *Set) Hooks() terrain.Hooks {
	if s == nil || !s.cfg.Enabled {
		return terrain.Hooks{}
	}
	return terrain.Hooks{
		BlockWrites: []terrain.BlockWriteHook{s.Proto, s.Region},
		Biomes:      []terrain.BiomeHook{s.Audit},
		Carvers:     []terrain.CarveHook{s.Carve},
		Features:    []terrain.FeatureHook{s.Dripstone, s.Freeze},
	}
}

// Stage documents one correction stage.
type Stage struct {
	Order    int    `json:"order"`
	Name     string `json:"name"`
	Hook     string `json:"hook"`
	Counter  string `json:"counter"`
	Corrects string `json:"corrects"`
}

// Stages lists the correction stages in the order the pipeline reaches them.
func Stages() []Stage {
	return []Stage{
		{1, "proto-write", "OnBlockWrite(proto)", CounterProtoWrite, "snow and ice written while a warm-zone chunk generates"},
		{2, "region-write", "OnBlockWrite(region)", CounterRegionWrite, "snow and ice written by features through the region API in warm zones"},
		{3, "carve-disable", "BeforeCarve", CounterCarveDisable, "cave carving in the polar caps of the largest preset"},
		{4, "dripstone-surface", "BeforeFeature(pointed_dripstone, dripstone_cluster, large_dripstone)", CounterDripstoneSurface, "dripstone placed near the surface or under open sky"},
		{5, "freeze-feature", "BeforeFeature(freeze_top_layer)", CounterFreezeFeature, "surface freezing of warm-zone chunks"},
	}
}

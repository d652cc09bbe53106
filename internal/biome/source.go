package biome

import (
	"log"

	"globe/internal/preset"
)

// Climate is one multi-noise sample. Values are roughly in [-1, 1].
type Climate struct {
	Temperature     float64 `json:"temperature"`
	Humidity        float64 `json:"humidity"`
	Continentalness float64 `json:"continentalness"`
	Erosion         float64 `json:"erosion"`
	Depth           float64 `json:"depth"`
	Weirdness       float64 `json:"weirdness"`
}

// Sampler is the host's multi-noise sampler, addressed in quart (4-block)
// coordinates.
type Sampler interface {
	Sample(qx, qy, qz int) Climate
}

// SurfaceEstimator is implemented by samplers that can predict the terrain
// height of a column before any blocks exist.
type SurfaceEstimator interface {
	SurfaceY(blockX, blockZ int) int
}

// Source answers which biome exists at a quart position.
type Source interface {
	Biome(qx, qy, qz int, sampler Sampler) Biome
	// Possible lists every biome the source can return.
	Possible() []Biome
}

// CaveClamp keeps cave biomes out of the surface layer.
type CaveClamp struct {
	Enabled bool `json:"enabled"`
	// Buffer is how many blocks below the surface a cave biome may reach.
	Buffer int `json:"buffer"`
	// HardDeckY is the height from which cave biomes are always replaced.
	HardDeckY int `json:"hardDeckY"`
	// MaxY caps cave biomes regardless of the surface.
	MaxY int `json:"maxY"`
	// SeaLevel is used when the sampler cannot estimate the surface.
	SeaLevel int `json:"seaLevel"`
}

func DefaultCaveClamp() CaveClamp {
	return CaveClamp{Enabled: true, Buffer: 12, HardDeckY: 48, MaxY: 96, SeaLevel: 63}
}

// LatitudeSource decorates a host source so every query goes through the
// latitude decision.
type LatitudeSource struct {
	inner    Source
	registry *Registry
	picker   Picker
	radius   int
	caves    CaveClamp
}

func NewLatitudeSource(inner Source, reg *Registry, radius int, picker Picker, caves CaveClamp) *LatitudeSource {
	return &LatitudeSource{inner: inner, registry: reg, picker: picker, radius: radius, caves: caves}
}

// Inner returns the decorated source.
func (s *LatitudeSource) Inner() Source { return s.inner }

// Radius returns the border radius the source was built for.
func (s *LatitudeSource) Radius() int { return s.radius }

// Biome returns the latitude biome at a quart position. The base biome is
// always sampled at quart y 0 so the decision is the same for every height
// of the column.
func (s *LatitudeSource) Biome(qx, qy, qz int, sampler Sampler) Biome {
	blockX, blockY, blockZ := qx<<2+2, qy<<2+2, qz<<2+2
	base := s.inner.Biome(qx, 0, qz, sampler)

	if s.caves.Enabled {
		if current := s.inner.Biome(qx, qy, qz, sampler); current.Is(TagCave) {
			if !s.surfaceCave(blockX, blockY, blockZ, sampler) {
				return current
			}
			return s.surfaceReplacement(base, blockX, blockZ, sampler)
		}
	}
	return s.picker.Pick(s.registry, base, blockX, blockZ, s.radius, sampler)
}

// ColumnBiome returns the decision for a block column; it is what every
// height of the column resolves to outside cave pockets.
func (s *LatitudeSource) ColumnBiome(blockX, blockZ int, sampler Sampler) Biome {
	qx, qz := blockX>>2, blockZ>>2
	base := s.inner.Biome(qx, 0, qz, sampler)
	return s.picker.Pick(s.registry, base, qx<<2+2, qz<<2+2, s.radius, sampler)
}

func (s *LatitudeSource) surfaceCave(blockX, blockY, blockZ int, sampler Sampler) bool {
	surface := s.caves.SeaLevel
	if est, ok := sampler.(SurfaceEstimator); ok {
		surface = est.SurfaceY(blockX, blockZ)
	}
	return blockY >= surface-s.caves.Buffer || blockY >= s.caves.HardDeckY || blockY > s.caves.MaxY
}

func (s *LatitudeSource) surfaceReplacement(base Biome, blockX, blockZ int, sampler Sampler) Biome {
	picked := s.picker.Pick(s.registry, base, blockX, blockZ, s.radius, sampler)
	if !picked.Is(TagCave) {
		return picked
	}
	if base.Valid() && !base.Is(TagCave) {
		return base
	}
	return Fallback(s.registry, base, zoneOf(s.radius, blockZ))
}

// Possible returns the registry biomes; after decoration any of them can
// appear regardless of what the host source offers.
func (s *LatitudeSource) Possible() []Biome {
	return s.registry.All()
}

// Installer decorates host sources for latitude worlds.
type Installer struct {
	Registry *Registry
	Picker   Picker
	Caves    CaveClamp
	Logger   *log.Logger
}

// Decorate wraps src when the resolver reports a latitude world. It returns
// src unchanged when src is already decorated, when the world is not a
// latitude world, or when the generator settings are not ready yet; callers
// retry on a later access.
func (in Installer) Decorate(src Source, resolver *preset.Resolver) Source {
	if src == nil {
		return nil
	}
	if _, ok := src.(*LatitudeSource); ok {
		return src
	}
	radius, ok := resolver.Resolve()
	if !ok {
		return src
	}
	reg := in.Registry
	if reg == nil {
		reg = DefaultRegistry()
	}
	if in.Logger != nil {
		id, _ := resolver.SettingsID()
		in.Logger.Printf("latitude biome source installed for %s (radius %d)", id, radius)
	}
	return NewLatitudeSource(src, reg, radius, in.Picker, in.Caves)
}

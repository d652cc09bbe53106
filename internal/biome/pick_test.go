package biome

import (
	"math"
	"testing"

	"globe/internal/latitude"
)

type waveSampler struct{}

func (waveSampler) Sample(qx, qy, qz int) Climate {
	return Climate{
		Temperature: math.Sin(float64(qx) * 0.013),
		Humidity:    math.Cos(float64(qz)*0.011 + float64(qx)*0.007),
	}
}

func mustBiome(t *testing.T, id string) Biome {
	t.Helper()
	b, ok := DefaultRegistry().Lookup(id)
	if !ok {
		t.Fatalf("registry is missing %s", id)
	}
	return b
}

func TestPickDeterministic(t *testing.T) {
	reg := DefaultRegistry()
	for _, sampler := range []Sampler{nil, waveSampler{}} {
		for _, base := range reg.All() {
			for z := -8000; z <= 8000; z += 977 {
				for x := -3000; x <= 3000; x += 1499 {
					a := Pick(reg, base, x, z, 7500, sampler)
					b := Pick(reg, base, x, z, 7500, sampler)
					if a.ID != b.ID {
						t.Fatalf("pick(%s, %d, %d) not deterministic: %s vs %s", base.ID, x, z, a.ID, b.ID)
					}
				}
			}
		}
	}
}

func TestPickNeverSnowyInWarmZones(t *testing.T) {
	reg := DefaultRegistry()
	pickers := []Picker{{}, {Blend: DefaultBlend()}, {Blend: DefaultBlend(), Seed: 99}}
	for _, radius := range []int{3750, 7500, 20000} {
		for _, picker := range pickers {
			for _, sampler := range []Sampler{nil, waveSampler{}} {
				for _, base := range reg.All() {
					for z := -radius; z <= radius; z += radius / 97 {
						if !latitude.ZoneForRadius(radius, z).Warm() {
							continue
						}
						for x := -2048; x <= 2048; x += 1021 {
							got := picker.Pick(reg, base, x, z, radius, sampler)
							if got.Snowy {
								t.Fatalf("radius %d: pick(%s, x=%d, z=%d) returned snowy %s in %v", radius, base.ID, x, z, got.ID, latitude.ZoneForRadius(radius, z))
							}
						}
					}
				}
			}
		}
	}
}

func TestPickWithUnresolvedRadiusUsesDefault(t *testing.T) {
	reg := DefaultRegistry()
	base := mustBiome(t, SnowyPlains)
	for _, radius := range []int{0, -5} {
		got := Pick(reg, base, 10, 0, radius, nil)
		want := Pick(reg, base, 10, 0, latitude.DefaultRadius, nil)
		if got.ID != want.ID {
			t.Fatalf("radius %d: got %s, want %s", radius, got.ID, want.ID)
		}
	}
}

func TestPickSpecialCases(t *testing.T) {
	reg := DefaultRegistry()
	tests := []struct {
		name  string
		base  string
		z     int
		check func(Biome) bool
	}{
		{name: "warm river", base: FrozenRiver, z: 1000, check: func(b Biome) bool { return b.ID == River }},
		{name: "cold river", base: River, z: 6900, check: func(b Biome) bool { return b.ID == FrozenRiver }},
		{name: "warm beach stays beach", base: SnowyBeach, z: 300, check: func(b Biome) bool { return b.ID == Beach }},
		{name: "cold beach", base: Beach, z: 6900, check: func(b Biome) bool { return b.ID == SnowyBeach || b.ID == StonyShore }},
		{name: "deep ocean stays deep", base: DeepOcean, z: 300, check: func(b Biome) bool {
			return b.ID == DeepLukewarmOcean || b.ID == MushroomFields
		}},
		{name: "shallow polar ocean", base: WarmOcean, z: 7490, check: func(b Biome) bool {
			return b.ID == FrozenOcean || b.ID == ColdOcean
		}},
		{name: "temperate keeps plains", base: Plains, z: 5250, check: func(b Biome) bool {
			return b.ID == Plains || b.ID == SunflowerPlains
		}},
		{name: "jungle replaced near pole", base: Jungle, z: 7000, check: func(b Biome) bool {
			return b.Natural&Zones(latitude.Subpolar, latitude.Polar) != 0
		}},
		{name: "cave base replaced", base: DeepDark, z: 0, check: func(b Biome) bool { return !b.Is(TagCave) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := mustBiome(t, tt.base)
			for x := -4096; x <= 4096; x += 512 {
				got := Pick(reg, base, x, tt.z, 7500, waveSampler{})
				if !tt.check(got) {
					t.Fatalf("pick(%s, x=%d, z=%d) = %s", tt.base, x, tt.z, got.ID)
				}
			}
		})
	}
}

func TestBlendedZoneMixesOnlyNearBoundaries(t *testing.T) {
	p := Picker{Blend: DefaultBlend()}
	const radius = 7500
	b := boundary(latitude.Equator, radius)

	seen := map[latitude.Zone]bool{}
	for x := -20000; x <= 20000; x += 16 {
		seen[p.blendedZone(x, b, radius, latitude.ZoneForRadius(radius, b))] = true
	}
	if !seen[latitude.Equator] || !seen[latitude.Tropical] {
		t.Fatalf("expected both zones on the boundary, got %v", seen)
	}

	// 600 is the blend width at this radius.
	far := b + 601
	for x := -20000; x <= 20000; x += 16 {
		if got := p.blendedZone(x, far, radius, latitude.Tropical); got != latitude.Tropical {
			t.Fatalf("column outside the blend width moved to %v", got)
		}
	}
}

func TestBlendedZoneNeverCoolsWarmColumns(t *testing.T) {
	p := Picker{Blend: DefaultBlend()}
	const radius = 7500
	warmEdge := boundary(latitude.Temperate, radius)
	for z := warmEdge - 700; z < warmEdge; z += 3 {
		crisp := latitude.ZoneForRadius(radius, z)
		for x := -8000; x <= 8000; x += 64 {
			if got := p.blendedZone(x, z, radius, crisp); !got.Warm() {
				t.Fatalf("warm column z=%d blended into %v", z, got)
			}
		}
	}
}

func TestFallbackNeverSnowyForWarmZone(t *testing.T) {
	reg := NewRegistry([]Biome{
		{ID: SnowyPlains, Snowy: true},
		{ID: "custom:mesa"},
	})
	got := Fallback(reg, Biome{ID: SnowyPlains, Snowy: true}, latitude.Temperate)
	if got.ID != "custom:mesa" {
		t.Fatalf("expected non-snowy fallback, got %s", got.ID)
	}
	if got := Fallback(DefaultRegistry(), Biome{}, latitude.Equator); got.ID != Jungle {
		t.Fatalf("expected jungle, got %s", got.ID)
	}
}

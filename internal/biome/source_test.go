package biome

import (
	"testing"

	"globe/internal/preset"
)

// layeredSource returns an ocean above quart y 0 so a decorator that samples
// at the real height would see a different base biome.
type layeredSource struct {
	caveBelowQY int
}

func (s layeredSource) Biome(qx, qy, qz int, _ Sampler) Biome {
	reg := DefaultRegistry()
	if qy == 0 {
		b, _ := reg.Lookup(Plains)
		return b
	}
	if qy <= s.caveBelowQY {
		b, _ := reg.Lookup(LushCaves)
		return b
	}
	b, _ := reg.Lookup(WarmOcean)
	return b
}

func (layeredSource) Possible() []Biome { return nil }

type flatSurface struct{ y int }

func (flatSurface) Sample(int, int, int) Climate { return Climate{} }
func (f flatSurface) SurfaceY(int, int) int      { return f.y }

func TestLatitudeSourceSamplesBaseAtZero(t *testing.T) {
	src := NewLatitudeSource(layeredSource{}, DefaultRegistry(), 7500, Picker{}, CaveClamp{})
	for qy := 0; qy < 40; qy += 5 {
		got := src.Biome(1312, qy, 1312, nil)
		if got.Is(TagOcean) {
			t.Fatalf("qy=%d: expected land decision, got %s", qy, got.ID)
		}
		if want := src.ColumnBiome(1312<<2, 1312<<2, nil); got.ID != want.ID {
			t.Fatalf("qy=%d: %s differs from column decision %s", qy, got.ID, want.ID)
		}
	}
}

func TestLatitudeSourceClampsSurfaceCaves(t *testing.T) {
	clamp := DefaultCaveClamp()
	src := NewLatitudeSource(layeredSource{caveBelowQY: 15}, DefaultRegistry(), 7500, Picker{}, clamp)
	sampler := flatSurface{y: 80}

	if got := src.Biome(0, 4, 0, sampler); got.ID != LushCaves {
		t.Fatalf("deep cave biome should survive, got %s", got.ID)
	}
	// qy 13 is block y 54: above the hard deck.
	if got := src.Biome(0, 13, 0, sampler); got.Is(TagCave) {
		t.Fatalf("cave biome above the hard deck should be replaced, got %s", got.ID)
	}

	shallow := flatSurface{y: 20}
	if got := src.Biome(0, 4, 0, shallow); got.Is(TagCave) {
		t.Fatalf("cave biome within the surface buffer should be replaced, got %s", got.ID)
	}
}

func TestInstallerDecorate(t *testing.T) {
	in := Installer{Picker: Picker{Blend: DefaultBlend()}, Caves: DefaultCaveClamp()}
	host := layeredSource{}

	latitudeWorld := preset.NewResolver(preset.Static(preset.OverworldLarge), nil)
	wrapped := in.Decorate(host, latitudeWorld)
	ls, ok := wrapped.(*LatitudeSource)
	if !ok {
		t.Fatalf("expected latitude source, got %T", wrapped)
	}
	if ls.Radius() != 10000 {
		t.Fatalf("expected radius 10000, got %d", ls.Radius())
	}
	if again := in.Decorate(wrapped, latitudeWorld); again != wrapped {
		t.Fatal("decorating twice should return the same source")
	}
	if ls.Inner() != Source(host) {
		t.Fatal("inner source should be the host source")
	}

	vanillaWorld := preset.NewResolver(preset.Static("minecraft:overworld"), nil)
	if got := in.Decorate(host, vanillaWorld); got != Source(host) {
		t.Fatalf("non-latitude world should pass through, got %T", got)
	}

	pending := preset.NewResolver(preset.SettingsFunc(func() (preset.ID, bool) { return "", false }), nil)
	if got := in.Decorate(host, pending); got != Source(host) {
		t.Fatalf("uninitialised settings should pass through, got %T", got)
	}
}

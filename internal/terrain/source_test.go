package terrain

import (
	"testing"

	"globe/internal/biome"
	"globe/internal/config"
)

type fixedSampler struct {
	climate biome.Climate
	surface int
}

func (f fixedSampler) Sample(int, int, int) biome.Climate { return f.climate }

func (f fixedSampler) SurfaceY(int, int) int { return f.surface }

func TestMultiNoiseSourceBiomes(t *testing.T) {
	src := NewMultiNoiseSource(nil, 63)

	tests := []struct {
		name    string
		climate biome.Climate
		surface int
		want    string
	}{
		{"warm shallow ocean", biome.Climate{Temperature: 0.8}, 55, biome.WarmOcean},
		{"frozen deep ocean", biome.Climate{Temperature: -0.9}, 30, biome.DeepFrozenOcean},
		{"temperate deep ocean", biome.Climate{Temperature: 0}, 40, biome.DeepOcean},
		{"beach", biome.Climate{Temperature: 0.3}, 64, biome.Beach},
		{"snowy beach", biome.Climate{Temperature: -0.6}, 65, biome.SnowyBeach},
		{"river", biome.Climate{Temperature: 0, Weirdness: 0.01, Erosion: 0.3}, 70, biome.River},
		{"frozen river", biome.Climate{Temperature: -0.6, Weirdness: -0.01, Erosion: 0.3}, 70, biome.FrozenRiver},
		{"desert", biome.Climate{Temperature: 0.7, Humidity: 0}, 80, biome.Desert},
		{"jungle", biome.Climate{Temperature: 0.4, Humidity: 0.5, Weirdness: 0.3}, 80, biome.Jungle},
		{"snowy plains", biome.Climate{Temperature: -0.8, Humidity: -0.5, Weirdness: 0.2}, 80, biome.SnowyPlains},
		{"ice spikes", biome.Climate{Temperature: -0.8, Humidity: -0.5, Weirdness: 0.8}, 80, biome.IceSpikes},
		{"frozen peaks", biome.Climate{Temperature: -0.8, Weirdness: 0.2}, 120, biome.FrozenPeaks},
		{"lush caves", biome.Climate{Depth: 0.5, Humidity: 0.9}, 80, biome.LushCaves},
		{"dripstone caves", biome.Climate{Depth: 0.5, Continentalness: 0.9}, 80, biome.DripstoneCaves},
		{"deep dark", biome.Climate{Depth: 1.5, Erosion: -0.6}, 80, biome.DeepDark},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := src.Biome(0, 0, 0, fixedSampler{climate: tt.climate, surface: tt.surface})
			if got.ID != tt.want {
				t.Fatalf("Biome = %s, want %s", got.ID, tt.want)
			}
		})
	}
}

func TestMultiNoiseSourcePossibleIsUnique(t *testing.T) {
	src := NewMultiNoiseSource(nil, 63)
	seen := make(map[string]bool)
	for _, b := range src.Possible() {
		if seen[b.ID] {
			t.Fatalf("duplicate possible biome %s", b.ID)
		}
		seen[b.ID] = true
	}
	for _, id := range []string{biome.DeepDark, biome.Plains, biome.WarmOcean, biome.Badlands} {
		if !seen[id] {
			t.Fatalf("expected %s among possible biomes", id)
		}
	}
}

func TestNoiseSampler(t *testing.T) {
	cfg := config.Default().Terrain
	s := NewNoiseSampler(cfg, 99, 63, 128)

	for _, p := range [][2]int{{0, 0}, {1234, -987}, {-40000, 40000}} {
		y := s.SurfaceY(p[0], p[1])
		if y < 1 || y > 126 {
			t.Fatalf("SurfaceY(%d,%d) = %d outside the world", p[0], p[1], y)
		}
		if y != s.SurfaceY(p[0], p[1]) {
			t.Fatalf("SurfaceY not deterministic")
		}
	}

	deep := s.Sample(0, 0, 0)
	high := s.Sample(0, 40, 0)
	if deep.Depth <= 0 {
		t.Fatalf("expected positive depth near bedrock, got %f", deep.Depth)
	}
	if high.Depth >= 0 {
		t.Fatalf("expected negative depth above the surface, got %f", high.Depth)
	}
	if deep.Temperature != high.Temperature {
		t.Fatalf("temperature should not vary with height")
	}
}

package worldmap

import (
	"testing"

	"globe/internal/central/config"
	"globe/internal/world"
)

func testConfig() *config.Config {
	return &config.Config{
		World: config.WorldConfig{ChunkWidth: 16, ChunkDepth: 16, ChunkHeight: 128},
		Workers: []config.Worker{
			{
				ID:            "north",
				GlobalOrigin:  config.ChunkOrigin{ChunkX: -2, ChunkZ: -2},
				ChunksPerAxis: 2,
				DebugAddress:  "127.0.0.1:3000",
				HTTPAddress:   "http://north",
			},
			{
				ID:            "east",
				GlobalOrigin:  config.ChunkOrigin{ChunkX: 0, ChunkZ: 0},
				ChunksPerAxis: 1,
			},
		},
	}
}

func TestLoadFromConfigPopulatesEntries(t *testing.T) {
	idx := NewIndex()
	idx.LoadFromConfig(testConfig())

	workers := idx.Workers()
	if len(workers) != 2 {
		t.Fatalf("Workers length = %d, want 2", len(workers))
	}
	got := workers[1]
	if got.ID != "north" || got.OriginChunkX != -2 || got.ChunksPerAxis != 2 {
		t.Fatalf("unexpected worker info: %+v", got)
	}
	if got.DebugAddress != "127.0.0.1:3000" || got.HTTPAddress != "http://north" {
		t.Fatalf("unexpected addresses: %+v", got)
	}
}

func TestLookup(t *testing.T) {
	idx := NewIndex()
	idx.LoadFromConfig(testConfig())

	tests := []struct {
		x, z int
		want string
	}{
		{15, 15, "east"},
		{0, 0, "east"},
		{-1, -1, "north"},
		{-32, -32, "north"},
		{-33, -1, ""},
		{16, 0, ""},
	}
	for _, tt := range tests {
		got, err := idx.Lookup(tt.x, tt.z)
		if tt.want == "" {
			if err == nil {
				t.Fatalf("Lookup(%d,%d) = %q, want error", tt.x, tt.z, got.ID)
			}
			continue
		}
		if err != nil || got.ID != tt.want {
			t.Fatalf("Lookup(%d,%d) = %q, %v; want %q", tt.x, tt.z, got.ID, err, tt.want)
		}
	}
}

func TestChunkUsesFloorDivision(t *testing.T) {
	idx := NewIndex()
	idx.LoadFromConfig(testConfig())
	if got := idx.Chunk(-1, -17); got != (world.ChunkCoord{X: -1, Z: -2}) {
		t.Fatalf("Chunk(-1,-17) = %v", got)
	}
}

func TestWorkersReturnsCopy(t *testing.T) {
	idx := NewIndex()
	idx.LoadFromConfig(testConfig())

	workers := idx.Workers()
	workers[0].ID = "modified"

	if again := idx.Workers(); again[0].ID != "east" {
		t.Fatalf("Workers returned slice is not a copy; got %q", again[0].ID)
	}
}

func TestLookupBeforeLoad(t *testing.T) {
	idx := NewIndex()
	if got := idx.Chunk(-1, 17); got != (world.ChunkCoord{X: -1, Z: 1}) {
		t.Fatalf("Chunk(-1, 17) = %v, want (-1,1)", got)
	}
	if _, err := idx.Lookup(5, 5); err == nil {
		t.Fatal("Lookup on an empty index should fail")
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func validWorld() WorldConfig {
	return WorldConfig{ChunkWidth: 16, ChunkDepth: 16, ChunkHeight: 256, SeaLevel: 63}
}

func TestValidateAppliesDefaultsAndClusterExecutable(t *testing.T) {
	cfg := &Config{
		Workers: []Worker{{
			ID:            "alpha",
			ChunksPerAxis: 1,
		}},
		Cluster: ClusterConfig{DefaultBinary: "/usr/bin/globegen"},
		World:   validWorld(),
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}

	if got := cfg.ListenAddress; got != "0.0.0.0" {
		t.Fatalf("ListenAddress = %q, want %q", got, "0.0.0.0")
	}
	if got := cfg.HTTPPort; got != 28080 {
		t.Fatalf("HTTPPort = %d, want %d", got, 28080)
	}
	if got := cfg.Workers[0].Executable; got != "/usr/bin/globegen" {
		t.Fatalf("Executable = %q, want %q", got, "/usr/bin/globegen")
	}
	if got := cfg.World.Preset; got != "globe:overworld_regular" {
		t.Fatalf("Preset = %q", got)
	}
	if !cfg.World.GuardsEnabled() {
		t.Fatalf("guards should default to enabled")
	}
}

func TestValidateRejectsInvalidConfigurations(t *testing.T) {
	worker := func(id string, x, z, n int) Worker {
		return Worker{ID: id, GlobalOrigin: ChunkOrigin{ChunkX: x, ChunkZ: z}, ChunksPerAxis: n, Executable: "/bin/true"}
	}
	tests := map[string]*Config{
		"no workers": {
			World: validWorld(),
		},
		"missing world dims": {
			Workers: []Worker{worker("alpha", 0, 0, 1)},
		},
		"sea level above world": {
			Workers: []Worker{worker("alpha", 0, 0, 1)},
			World:   WorldConfig{ChunkWidth: 16, ChunkDepth: 16, ChunkHeight: 64, SeaLevel: 64},
		},
		"unknown preset": {
			Workers: []Worker{worker("alpha", 0, 0, 1)},
			World:   WorldConfig{Preset: "minecraft:overworld", ChunkWidth: 16, ChunkDepth: 16, ChunkHeight: 256},
		},
		"missing id": {
			Workers: []Worker{worker("", 0, 0, 1)},
			World:   validWorld(),
		},
		"duplicate id": {
			Workers: []Worker{worker("alpha", 0, 0, 1), worker("alpha", 5, 5, 1)},
			World:   validWorld(),
		},
		"non-positive span": {
			Workers: []Worker{worker("alpha", 0, 0, 0)},
			World:   validWorld(),
		},
		"overlapping workers": {
			Workers: []Worker{worker("alpha", 0, 0, 8), worker("beta", 7, -3, 4)},
			World:   validWorld(),
		},
		"unknown storage": {
			Workers: []Worker{{ID: "alpha", ChunksPerAxis: 1, Executable: "/bin/true", Storage: WorkerStorage{Backend: "s3"}}},
			World:   validWorld(),
		},
		"unknown mode": {
			Cluster: ClusterConfig{Mode: "nomad"},
			Workers: []Worker{worker("alpha", 0, 0, 1)},
			World:   validWorld(),
		},
		"missing executable without default": {
			Workers: []Worker{{ID: "alpha", ChunksPerAxis: 1}},
			World:   validWorld(),
		},
	}

	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			if err := cfg.Validate(); err == nil {
				t.Fatalf("Validate() = nil, want error")
			}
		})
	}
}

func TestAdjacentWorkersDoNotOverlap(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadReadsYAMLAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "central.yml")
	data := []byte(`
http_port: 9000
cluster:
  default_binary: /opt/globegen
world:
  preset: globe:overworld_small
  sea_level: 63
  chunk_width: 16
  chunk_depth: 16
  chunk_height: 128
  guards: false
workers:
  - id: gen-a
    chunks_per_axis: 8
    global_origin:
      chunk_x: -4
      chunk_z: -4
    storage:
      backend: postgres
      dsn: postgres://localhost/globe
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPPort != 9000 || cfg.World.Preset != "globe:overworld_small" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.World.GuardsEnabled() {
		t.Fatalf("guards: false was ignored")
	}
	w := cfg.Workers[0]
	if w.Executable != "/opt/globegen" || w.GlobalOrigin.ChunkZ != -4 || w.Storage.Backend != "postgres" {
		t.Fatalf("unexpected worker: %+v", w)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "central.yml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Workers) != 2 || cfg.Workers[1].GlobalOrigin.ChunkZ != 0 {
		t.Fatalf("unexpected workers: %+v", cfg.Workers)
	}
}

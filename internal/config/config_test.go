package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestValidateDefaultConfig(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration should be valid: %v", err)
	}
}

func TestValidateDetectsInvalidConfigurations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing server id",
			mutate:  func(cfg *Config) { cfg.Server.ID = "" },
			wantErr: "server.id must be set",
		},
		{
			name:    "non positive chunk dimensions",
			mutate:  func(cfg *Config) { cfg.Chunk.Height = 0 },
			wantErr: "chunk dimensions must be positive",
		},
		{
			name:    "missing chunk per axis",
			mutate:  func(cfg *Config) { cfg.Chunk.ChunksPerAxis = 0 },
			wantErr: "chunk.chunksPerAxis must be positive",
		},
		{
			name:    "unknown preset",
			mutate:  func(cfg *Config) { cfg.World.Preset = "globe:overworld_tiny" },
			wantErr: "is not a known preset",
		},
		{
			name:    "foreign preset",
			mutate:  func(cfg *Config) { cfg.World.Preset = "minecraft:overworld" },
			wantErr: "is not a known preset",
		},
		{
			name:    "sea level above the world",
			mutate:  func(cfg *Config) { cfg.World.SeaLevel = cfg.Chunk.Height },
			wantErr: "world.seaLevel must lie within the chunk height",
		},
		{
			name:    "negative terrain workers",
			mutate:  func(cfg *Config) { cfg.Terrain.Workers = -1 },
			wantErr: "terrain.workers cannot be negative",
		},
		{
			name:    "ore density above one",
			mutate:  func(cfg *Config) { cfg.Terrain.OreDensity["coal_ore"] = 1.5 },
			wantErr: "terrain.oreDensity[coal_ore]",
		},
		{
			name:    "negative cave buffer",
			mutate:  func(cfg *Config) { cfg.Biomes.Caves.Buffer = -1 },
			wantErr: "biomes.caves.buffer cannot be negative",
		},
		{
			name:    "negative dripstone buffer",
			mutate:  func(cfg *Config) { cfg.Guards.DripstoneBuffer = -2 },
			wantErr: "guards.dripstoneBuffer cannot be negative",
		},
		{
			name: "disk backend without path",
			mutate: func(cfg *Config) {
				cfg.Storage.Backend = "disk"
				cfg.Storage.Path = ""
			},
			wantErr: "storage.path must be set",
		},
		{
			name:    "postgres backend without dsn",
			mutate:  func(cfg *Config) { cfg.Storage.Backend = "postgres" },
			wantErr: "storage.dsn must be set",
		},
		{
			name:    "unknown backend",
			mutate:  func(cfg *Config) { cfg.Storage.Backend = "s3" },
			wantErr: "must be memory, disk or postgres",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
		"server": {"id": "globe-gen-7", "generateTimeout": "5s"},
		"world": {"preset": "globe:overworld_small", "seed": 42},
		"storage": {"backend": "disk", "path": "/tmp/chunks"}
	}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.ID != "globe-gen-7" {
		t.Fatalf("server id = %q", cfg.Server.ID)
	}
	if cfg.Server.GenerateTimeout.Duration() != 5*time.Second {
		t.Fatalf("generate timeout = %v", cfg.Server.GenerateTimeout.Duration())
	}
	if cfg.World.Preset != "globe:overworld_small" || cfg.World.Seed != 42 {
		t.Fatalf("world = %+v", cfg.World)
	}
	if cfg.World.SeaLevel != 63 {
		t.Fatalf("expected default sea level to survive, got %d", cfg.World.SeaLevel)
	}
	if cfg.Chunk.Width != 16 {
		t.Fatalf("expected default chunk width, got %d", cfg.Chunk.Width)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"world": {"preset": "globe:nowhere"}}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "validate config") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.World.Preset != "globe:overworld_regular" {
		t.Fatalf("preset = %q", cfg.World.Preset)
	}
}

func TestDurationJSON(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{`"250ms"`, 250 * time.Millisecond},
		{`""`, 0},
		{`null`, 0},
		{`1000`, time.Microsecond},
	}
	for _, tt := range tests {
		var d Duration
		if err := json.Unmarshal([]byte(tt.in), &d); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.in, err)
		}
		if d.Duration() != tt.want {
			t.Fatalf("unmarshal %s = %v, want %v", tt.in, d.Duration(), tt.want)
		}
	}
	if err := json.Unmarshal([]byte(`"soon"`), new(Duration)); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestYAMLPayloadMatchesJSONKeys(t *testing.T) {
	cfg := Default()
	cfg.Server.GenerateTimeout = Duration(1500 * time.Millisecond)
	cfg.World.Preset = "globe:overworld_small"

	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal yaml: %v", err)
	}
	if !strings.Contains(string(data), "generateTimeout: 1.5s") || !strings.Contains(string(data), "debugListen:") {
		t.Fatalf("yaml keys differ from json keys:\n%s", data)
	}

	var decoded Config
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal yaml: %v", err)
	}
	if decoded.Server.GenerateTimeout.Duration() != 1500*time.Millisecond {
		t.Fatalf("timeout = %s", decoded.Server.GenerateTimeout.Duration())
	}
	if decoded.World.Preset != "globe:overworld_small" || decoded.Terrain.OreDensity["iron_ore"] != 0.08 {
		t.Fatalf("decoded config lost values: %+v", decoded.World)
	}
	if err := decoded.Validate(); err != nil {
		t.Fatalf("decoded config invalid: %v", err)
	}
}

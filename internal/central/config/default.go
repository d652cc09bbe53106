package config

import (
	"fmt"
	"os"
	"path/filepath"

	"globe/internal/preset"

	"gopkg.in/yaml.v3"
)

// Default returns a configuration with two workers splitting the equatorial
// band of the default preset, so a central server starts without any prior
// configuration.
func Default() Config {
	return Config{
		ListenAddress: "0.0.0.0",
		HTTPPort:      28080,
		World: WorldConfig{
			Preset:      string(preset.Default),
			Seed:        1337,
			SeaLevel:    63,
			ChunkWidth:  16,
			ChunkDepth:  16,
			ChunkHeight: 256,
		},
		Cluster: ClusterConfig{
			DefaultBinary: "./bin/globegen",
			DataRoot:      "./data",
			Env: map[string]string{
				"GLOBE_LOG_PREFIX": "gen",
			},
		},
		Workers: []Worker{
			{
				ID:            "gen-north-0",
				GlobalOrigin:  ChunkOrigin{ChunkX: -32, ChunkZ: -64},
				ChunksPerAxis: 64,
				DebugAddress:  "127.0.0.1:19001",
				HTTPAddress:   "http://127.0.0.1:19001",
				Storage:       WorkerStorage{Backend: "disk", Path: "data/gen-north"},
			},
			{
				ID:            "gen-south-0",
				GlobalOrigin:  ChunkOrigin{ChunkX: -32, ChunkZ: 0},
				ChunksPerAxis: 64,
				DebugAddress:  "127.0.0.1:19101",
				HTTPAddress:   "http://127.0.0.1:19101",
				Storage:       WorkerStorage{Backend: "disk", Path: "data/gen-south"},
			},
		},
	}
}

// WriteDefault writes the default configuration to the provided path.
func WriteDefault(path string) error {
	cfg := Default()

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}

	return nil
}

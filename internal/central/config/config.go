// Package config holds the YAML configuration of the central orchestrator.
package config

import (
	"errors"
	"fmt"
	"os"

	"globe/internal/preset"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddress string        `yaml:"listen_address"`
	HTTPPort      int           `yaml:"http_port"`
	Cluster       ClusterConfig `yaml:"cluster"`
	Workers       []Worker      `yaml:"workers"`
	World         WorldConfig   `yaml:"world"`
}

type ClusterConfig struct {
	// Mode forces a runtime: local, docker or kubernetes. Empty detects it.
	Mode          string            `yaml:"mode"`
	DefaultBinary string            `yaml:"default_binary"`
	DataRoot      string            `yaml:"data_root"`
	Env           map[string]string `yaml:"env"`
}

// Worker is one generator process owning a square of chunks.
type Worker struct {
	ID             string            `yaml:"id"`
	GlobalOrigin   ChunkOrigin       `yaml:"global_origin"`
	ChunksPerAxis  int               `yaml:"chunks_per_axis"`
	Executable     string            `yaml:"executable"`
	ContainerImage string            `yaml:"container_image"`
	Args           []string          `yaml:"args"`
	Env            map[string]string `yaml:"env"`
	DebugAddress   string            `yaml:"debug_address"`
	HTTPAddress    string            `yaml:"http_address"`
	Storage        WorkerStorage     `yaml:"storage"`
}

type ChunkOrigin struct {
	ChunkX int `yaml:"chunk_x"`
	ChunkZ int `yaml:"chunk_z"`
}

type WorkerStorage struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	DSN     string `yaml:"dsn"`
}

type WorldConfig struct {
	Preset      string `yaml:"preset"`
	Seed        int64  `yaml:"seed"`
	SeaLevel    int    `yaml:"sea_level"`
	ChunkWidth  int    `yaml:"chunk_width"`
	ChunkDepth  int    `yaml:"chunk_depth"`
	ChunkHeight int    `yaml:"chunk_height"`
	Guards      *bool  `yaml:"guards,omitempty"`
}

// GuardsEnabled defaults to true when the key is absent.
func (w WorldConfig) GuardsEnabled() bool {
	return w.Guards == nil || *w.Guards
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.ListenAddress == "" {
		c.ListenAddress = "0.0.0.0"
	}
	if c.HTTPPort == 0 {
		c.HTTPPort = 28080
	}
	switch c.Cluster.Mode {
	case "", "local", "docker", "kubernetes":
	default:
		return fmt.Errorf("cluster.mode %q must be local, docker or kubernetes", c.Cluster.Mode)
	}
	if len(c.Workers) == 0 {
		return errors.New("workers cannot be empty")
	}
	if c.World.Preset == "" {
		c.World.Preset = string(preset.Default)
	}
	if _, ok := preset.Lookup(preset.ID(c.World.Preset)); !ok {
		return fmt.Errorf("world.preset %q is not a known preset", c.World.Preset)
	}
	if c.World.ChunkWidth <= 0 || c.World.ChunkDepth <= 0 || c.World.ChunkHeight <= 0 {
		return errors.New("world chunk dimensions must be positive")
	}
	if c.World.SeaLevel < 0 || c.World.SeaLevel >= c.World.ChunkHeight {
		return errors.New("world.sea_level must lie within the chunk height")
	}
	seen := make(map[string]bool, len(c.Workers))
	for i, w := range c.Workers {
		if w.ID == "" {
			return fmt.Errorf("workers[%d].id must be set", i)
		}
		if seen[w.ID] {
			return fmt.Errorf("workers[%d].id %q is duplicated", i, w.ID)
		}
		seen[w.ID] = true
		if w.ChunksPerAxis <= 0 {
			return fmt.Errorf("workers[%d].chunks_per_axis must be positive", i)
		}
		switch w.Storage.Backend {
		case "", "memory", "disk", "postgres":
		default:
			return fmt.Errorf("workers[%d].storage.backend %q is not supported", i, w.Storage.Backend)
		}
		if w.Executable == "" && w.ContainerImage == "" {
			if c.Cluster.DefaultBinary == "" {
				return fmt.Errorf("workers[%d].executable empty and no cluster.default_binary provided", i)
			}
			c.Workers[i].Executable = c.Cluster.DefaultBinary
		}
	}
	for i := range c.Workers {
		for j := i + 1; j < len(c.Workers); j++ {
			if overlaps(c.Workers[i], c.Workers[j]) {
				return fmt.Errorf("workers %q and %q own overlapping chunks", c.Workers[i].ID, c.Workers[j].ID)
			}
		}
	}
	return nil
}

func overlaps(a, b Worker) bool {
	return a.GlobalOrigin.ChunkX < b.GlobalOrigin.ChunkX+b.ChunksPerAxis &&
		b.GlobalOrigin.ChunkX < a.GlobalOrigin.ChunkX+a.ChunksPerAxis &&
		a.GlobalOrigin.ChunkZ < b.GlobalOrigin.ChunkZ+b.ChunksPerAxis &&
		b.GlobalOrigin.ChunkZ < a.GlobalOrigin.ChunkZ+a.ChunksPerAxis
}

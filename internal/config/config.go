// Package config holds the JSON configuration of a generator process.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"globe/internal/preset"

	"gopkg.in/yaml.v3"
)

// Duration is a JSON-friendly wrapper around time.Duration that accepts human
// readable strings such as "150ms" while still allowing numeric nanoseconds.
type Duration time.Duration

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("duration: empty value")
	}
	if string(b) == "null" {
		*d = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("duration: decode string: %w", err)
		}
		if s == "" {
			*d = 0
			return nil
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("duration: parse %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		*d = Duration(time.Duration(n))
		return nil
	}
	return fmt.Errorf("duration: invalid value %s", string(b))
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("duration: decode yaml: %w", err)
	}
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration: parse %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config captures the tunable parameters of one generator process.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	Chunk   ChunkConfig   `json:"chunk" yaml:"chunk"`
	World   WorldConfig   `json:"world" yaml:"world"`
	Terrain TerrainConfig `json:"terrain" yaml:"terrain"`
	Biomes  BiomeConfig   `json:"biomes" yaml:"biomes"`
	Guards  GuardConfig   `json:"guards" yaml:"guards"`
	Storage StorageConfig `json:"storage" yaml:"storage"`
}

type ServerConfig struct {
	ID                string     `json:"id" yaml:"id"`
	Description       string     `json:"description" yaml:"description"`
	DebugListen       string     `json:"debugListen" yaml:"debugListen"` // hertz debug surface, e.g. ":8081"
	GlobalChunkOrigin ChunkIndex `json:"globalChunkOrigin" yaml:"globalChunkOrigin"`
	GenerateTimeout   Duration   `json:"generateTimeout" yaml:"generateTimeout"` // per chunk request
}

type ChunkConfig struct {
	Width         int `json:"width" yaml:"width"`
	Depth         int `json:"depth" yaml:"depth"`
	Height        int `json:"height" yaml:"height"`
	ChunksPerAxis int `json:"chunksPerAxis" yaml:"chunksPerAxis"`
}

type WorldConfig struct {
	Preset   string `json:"preset" yaml:"preset"`
	Seed     int64  `json:"seed" yaml:"seed"`
	SeaLevel int    `json:"seaLevel" yaml:"seaLevel"`
}

type TerrainConfig struct {
	Frequency     float64            `json:"frequency" yaml:"frequency"`
	Amplitude     float64            `json:"amplitude" yaml:"amplitude"`
	Octaves       int                `json:"octaves" yaml:"octaves"`
	Persistence   float64            `json:"persistence" yaml:"persistence"`
	Lacunarity    float64            `json:"lacunarity" yaml:"lacunarity"`
	ClimateScale  float64            `json:"climateScale" yaml:"climateScale"`   // blocks per climate noise cell
	CaveThreshold float64            `json:"caveThreshold" yaml:"caveThreshold"` // noise above which rock is carved; 1 disables
	FreezeBelow   float64            `json:"freezeBelow" yaml:"freezeBelow"`     // host temperature under which the surface freezes
	SnowLine      int                `json:"snowLine" yaml:"snowLine"`           // height above which the surface always gets snow
	OreDensity    map[string]float64 `json:"oreDensity" yaml:"oreDensity"`       // keyed by block name
	Workers       int                `json:"workers" yaml:"workers"`
}

type BiomeConfig struct {
	Blend BlendConfig     `json:"blend" yaml:"blend"`
	Caves CaveClampConfig `json:"caves" yaml:"caves"`
}

type BlendConfig struct {
	Enabled   bool    `json:"enabled" yaml:"enabled"`
	WidthFrac float64 `json:"widthFrac" yaml:"widthFrac"`
	WarpFrac  float64 `json:"warpFrac" yaml:"warpFrac"`
}

type CaveClampConfig struct {
	Enabled   bool `json:"enabled" yaml:"enabled"`
	Buffer    int  `json:"buffer" yaml:"buffer"`
	HardDeckY int  `json:"hardDeckY" yaml:"hardDeckY"`
	MaxY      int  `json:"maxY" yaml:"maxY"`
}

type GuardConfig struct {
	Enabled         bool `json:"enabled" yaml:"enabled"`
	SampleLimit     int  `json:"sampleLimit" yaml:"sampleLimit"`         // logged occurrences per counter
	CarveCutoffZ    int  `json:"carveCutoffZ" yaml:"carveCutoffZ"`       // |z| at which carving stops
	DripstoneBuffer int  `json:"dripstoneBuffer" yaml:"dripstoneBuffer"` // blocks below the surface kept free of dripstone
}

type StorageConfig struct {
	Backend string `json:"backend" yaml:"backend"` // memory, disk or postgres
	Path    string `json:"path" yaml:"path"`
	DSN     string `json:"dsn" yaml:"dsn"`
}

type ChunkIndex struct {
	X int `json:"x" yaml:"x"`
	Z int `json:"z" yaml:"z"`
}

// Load reads configuration from a JSON file if provided. An empty path returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ID:                "globe-gen-0",
			Description:       "local development generator",
			DebugListen:       ":8081",
			GlobalChunkOrigin: ChunkIndex{X: -32, Z: -32},
			GenerateTimeout:   Duration(30 * time.Second),
		},
		Chunk: ChunkConfig{
			Width:         16,
			Depth:         16,
			Height:        256,
			ChunksPerAxis: 64,
		},
		World: WorldConfig{
			Preset:   string(preset.Default),
			Seed:     1337,
			SeaLevel: 63,
		},
		Terrain: TerrainConfig{
			Frequency:     0.004,
			Amplitude:     36,
			Octaves:       4,
			Persistence:   0.5,
			Lacunarity:    2.0,
			ClimateScale:  1024,
			CaveThreshold: 0.55,
			FreezeBelow:   -0.45,
			SnowLine:      100,
			OreDensity: map[string]float64{
				"coal_ore":    0.12,
				"iron_ore":    0.08,
				"copper_ore":  0.06,
				"gold_ore":    0.02,
				"diamond_ore": 0.005,
			},
		},
		Biomes: BiomeConfig{
			Blend: BlendConfig{
				Enabled:   true,
				WidthFrac: 0.08,
				WarpFrac:  0.06,
			},
			Caves: CaveClampConfig{
				Enabled:   true,
				Buffer:    12,
				HardDeckY: 48,
				MaxY:      96,
			},
		},
		Guards: GuardConfig{
			Enabled:         true,
			SampleLimit:     16,
			CarveCutoffZ:    12000,
			DripstoneBuffer: 8,
		},
		Storage: StorageConfig{
			Backend: "memory",
			Path:    "data/chunks",
		},
	}
}

func (c *Config) Validate() error {
	if c.Server.ID == "" {
		return errors.New("server.id must be set")
	}
	if c.Chunk.Width <= 0 || c.Chunk.Depth <= 0 || c.Chunk.Height <= 0 {
		return errors.New("chunk dimensions must be positive")
	}
	if c.Chunk.ChunksPerAxis <= 0 {
		return errors.New("chunk.chunksPerAxis must be positive")
	}
	if _, ok := preset.Lookup(preset.ID(c.World.Preset)); !ok {
		return fmt.Errorf("world.preset %q is not a known preset", c.World.Preset)
	}
	if c.World.SeaLevel < 0 || c.World.SeaLevel >= c.Chunk.Height {
		return errors.New("world.seaLevel must lie within the chunk height")
	}
	if c.Terrain.Octaves <= 0 {
		return errors.New("terrain.octaves must be positive")
	}
	if c.Terrain.Workers < 0 {
		return errors.New("terrain.workers cannot be negative")
	}
	for name, density := range c.Terrain.OreDensity {
		if density < 0 || density > 1 {
			return fmt.Errorf("terrain.oreDensity[%s] must be within [0,1]", name)
		}
	}
	if c.Biomes.Blend.WidthFrac < 0 || c.Biomes.Blend.WarpFrac < 0 {
		return errors.New("biomes.blend fractions cannot be negative")
	}
	if c.Biomes.Caves.Buffer < 0 {
		return errors.New("biomes.caves.buffer cannot be negative")
	}
	if c.Guards.SampleLimit < 0 {
		return errors.New("guards.sampleLimit cannot be negative")
	}
	if c.Guards.DripstoneBuffer < 0 {
		return errors.New("guards.dripstoneBuffer cannot be negative")
	}
	switch c.Storage.Backend {
	case "", "memory":
	case "disk":
		if c.Storage.Path == "" {
			return errors.New("storage.path must be set for the disk backend")
		}
	case "postgres":
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn must be set for the postgres backend")
		}
	default:
		return fmt.Errorf("storage.backend %q must be memory, disk or postgres", c.Storage.Backend)
	}
	return nil
}

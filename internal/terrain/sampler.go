package terrain

import (
	"math"

	"globe/internal/biome"
	"globe/internal/config"
)

// NoiseSampler is the host's multi-noise climate sampler. Its temperature
// field knows nothing about latitude.
type NoiseSampler struct {
	cfg      config.TerrainConfig
	seed     int64
	seaLevel int
	height   int
}

func NewNoiseSampler(cfg config.TerrainConfig, seed int64, seaLevel, height int) *NoiseSampler {
	if cfg.Octaves <= 0 {
		cfg.Octaves = 1
	}
	if cfg.ClimateScale <= 0 {
		cfg.ClimateScale = 1024
	}
	return &NoiseSampler{cfg: cfg, seed: seed, seaLevel: seaLevel, height: height}
}

func (s *NoiseSampler) climate(blockX, blockZ int, salt int64) float64 {
	freq := 1 / s.cfg.ClimateScale
	return fractalNoise(float64(blockX), float64(blockZ), s.seed^salt, freq, 0.5, 2, 3)
}

func (s *NoiseSampler) shape(blockX, blockZ int) float64 {
	return fractalNoise(float64(blockX), float64(blockZ), s.seed^saltHeight,
		s.cfg.Frequency, s.cfg.Persistence, s.cfg.Lacunarity, s.cfg.Octaves)
}

// Continentalness is negative over oceans.
func (s *NoiseSampler) Continentalness(blockX, blockZ int) float64 {
	return s.climate(blockX, blockZ, saltContinentalness)*1.4 + 0.15
}

// SurfaceY predicts the terrain height of a column from noise alone.
func (s *NoiseSampler) SurfaceY(blockX, blockZ int) int {
	c := s.Continentalness(blockX, blockZ)
	n := s.shape(blockX, blockZ)
	h := float64(s.seaLevel) + c*s.cfg.Amplitude*0.6 + n*s.cfg.Amplitude*0.5
	return clampInt(int(math.Round(h)), 1, s.height-2)
}

// Temperature is the host's own surface temperature at a block column.
func (s *NoiseSampler) Temperature(blockX, blockZ int) float64 {
	return s.climate(blockX, blockZ, saltTemperature) * 1.6
}

// Sample implements biome.Sampler.
func (s *NoiseSampler) Sample(qx, qy, qz int) biome.Climate {
	blockX, blockY, blockZ := qx<<2+2, qy<<2+2, qz<<2+2
	surface := s.SurfaceY(blockX, blockZ)
	return biome.Climate{
		Temperature:     s.Temperature(blockX, blockZ),
		Humidity:        s.climate(blockX, blockZ, saltHumidity) * 1.6,
		Continentalness: s.Continentalness(blockX, blockZ),
		Erosion:         s.climate(blockX, blockZ, saltErosion) * 1.6,
		Depth:           float64(surface-blockY) / 64,
		Weirdness:       s.climate(blockX*2, blockZ*2, saltWeirdness) * 1.6,
	}
}

var (
	_ biome.Sampler          = (*NoiseSampler)(nil)
	_ biome.SurfaceEstimator = (*NoiseSampler)(nil)
)

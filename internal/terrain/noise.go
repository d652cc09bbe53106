package terrain

import (
	"math"
	"runtime"
)

// Noise salts keep the independent fields of one seed uncorrelated.
const (
	saltHeight          = 0x1F3D5B79
	saltContinentalness = 0x2C4E6A8B
	saltTemperature     = 0x3A5C7E91
	saltHumidity        = 0x4B6D8FA3
	saltErosion         = 0x5C7E90B5
	saltWeirdness       = 0x6D8FA1C7
	saltCave            = 0x7E90B2D9
	saltBedrock         = 0x0FA1C3EB
	saltFeature         = 0x10B2D4FD
)

// fractalNoise sums octaves of value noise and normalises the result to [-1, 1].
func fractalNoise(x, y float64, seed int64, frequency, persistence, lacunarity float64, octaves int) float64 {
	amplitude := 1.0
	noiseSum := 0.0
	maxAmplitude := 0.0

	for i := 0; i < octaves; i++ {
		noiseSum += valueNoise(x*frequency, y*frequency, seed+int64(i)) * amplitude
		maxAmplitude += amplitude
		amplitude *= persistence
		frequency *= lacunarity
	}

	if maxAmplitude == 0 {
		return 0
	}
	return noiseSum / maxAmplitude
}

func valueNoise(x, y float64, seed int64) float64 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))

	sx := smooth(x - float64(x0))
	sy := smooth(y - float64(y0))

	ix0 := lerp(random2D(x0, y0, seed), random2D(x0+1, y0, seed), sx)
	ix1 := lerp(random2D(x0, y0+1, seed), random2D(x0+1, y0+1, seed), sx)
	return lerp(ix0, ix1, sy)
}

// valueNoise3 is trilinear value noise in [-1, 1].
func valueNoise3(x, y, z float64, seed int64) float64 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	z0 := int(math.Floor(z))

	sx := smooth(x - float64(x0))
	sy := smooth(y - float64(y0))
	sz := smooth(z - float64(z0))

	corner := func(dx, dy, dz int) float64 {
		return random3D(x0+dx, y0+dy, z0+dz, seed)
	}
	bottom := lerp(
		lerp(corner(0, 0, 0), corner(1, 0, 0), sx),
		lerp(corner(0, 0, 1), corner(1, 0, 1), sx),
		sz,
	)
	top := lerp(
		lerp(corner(0, 1, 0), corner(1, 1, 0), sx),
		lerp(corner(0, 1, 1), corner(1, 1, 1), sx),
		sz,
	)
	return lerp(bottom, top, sy)
}

func smooth(t float64) float64 {
	return t * t * (3 - 2*t)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func random2D(x, y int, seed int64) float64 {
	return float64(hash3(x, y, int(seed))&0xFFFF)/0x8000 - 1.0
}

func random3D(x, y, z int, seed int64) float64 {
	return float64(hash3(x, y*31+z, int(seed)^z)&0xFFFF)/0x8000 - 1.0
}

func hash3(x, y, z int) uint32 {
	h := uint32(x*374761393 + y*668265263 + z*2147483647)
	h = (h ^ (h >> 13)) * 1274126177
	return h ^ (h >> 16)
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

type deterministicRNG struct {
	state uint64
}

func newDeterministicRNG(x, z int, seed int64) *deterministicRNG {
	state := uint64(uint32(x))<<32 ^ uint64(uint32(z))<<1 ^ uint64(seed)
	if state == 0 {
		state = 0x9e3779b97f4a7c15
	}
	return &deterministicRNG{state: state}
}

func (r *deterministicRNG) next() uint64 {
	r.state ^= r.state << 7
	r.state ^= r.state >> 9
	r.state ^= r.state << 8
	return r.state
}

func (r *deterministicRNG) nextInt(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.next() % uint64(n))
}

func (r *deterministicRNG) nextFloat() float64 {
	return float64(r.next()&0xFFFFFF) / 0x1000000
}

func workerCount(configured, totalColumns int) int {
	if totalColumns <= 0 {
		return 0
	}
	if configured > 0 {
		if configured < totalColumns {
			return configured
		}
		return totalColumns
	}
	workers := runtime.GOMAXPROCS(0) * 2
	if workers > totalColumns {
		workers = totalColumns
	}
	if workers <= 0 {
		workers = 1
	}
	return workers
}

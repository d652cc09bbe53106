package biome

import "math"

const (
	fnvOffset = 0xcbf29ce484222325
	fnvPrime  = 0x100000001b3
	golden    = 0x9E3779B97F4A7C15
)

func mix64(z uint64) uint64 {
	z = (z ^ (z >> 33)) * 0xff51afd7ed558ccd
	z = (z ^ (z >> 33)) * 0xc4ceb9fe1a85ec53
	return z ^ (z >> 33)
}

// hash64 is FNV-1a over the three values followed by a 64-bit finaliser.
// Values are sign extended so negative coordinates hash distinctly.
func hash64(x, z int, salt int64) uint64 {
	h := uint64(fnvOffset)
	for _, v := range [3]int64{int64(x), int64(z), salt} {
		h ^= uint64(v)
		h *= fnvPrime
	}
	return mix64(h)
}

func hash01(seed int64, x, z int, salt uint64) float64 {
	h := uint64(seed) ^ salt
	h ^= uint64(int64(x)) * golden
	h ^= uint64(int64(z)) * 0xC2B2AE3D27D4EB4F
	h = mix64(h)
	return float64(h>>11) * (1.0 / (1 << 53))
}

// rollChance is true for one in denominator chunks.
func rollChance(blockX, blockZ int, salt int64, denominator uint64) bool {
	return hash64(blockX>>4, blockZ>>4, salt)%denominator == 0
}

func smoothstep(t float64) float64 {
	t = clamp(t, 0, 1)
	return t * t * (3 - 2*t)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// blobNoise01 interpolates hashed lattice values over patches of chunks,
// giving smooth blobs in [0, 1) that are stable per chunk.
func blobNoise01(seed int64, chunkX, chunkZ, patch int, salt uint64) float64 {
	x0 := floorDiv(chunkX, patch) * patch
	z0 := floorDiv(chunkZ, patch) * patch
	x1, z1 := x0+patch, z0+patch

	u := smoothstep(float64(chunkX-x0) / float64(patch))
	v := smoothstep(float64(chunkZ-z0) / float64(patch))

	n00 := hash01(seed, x0, z0, salt)
	n10 := hash01(seed, x1, z0, salt)
	n01 := hash01(seed, x0, z1, salt)
	n11 := hash01(seed, x1, z1, salt)

	nx0 := n00 + (n10-n00)*u
	nx1 := n01 + (n11-n01)*u
	return nx0 + (nx1-nx0)*v
}

// valueNoise01 samples smooth value noise in [0, 1) with lattice cells of
// scale blocks.
func valueNoise01(seed int64, blockX, blockZ, scale int) float64 {
	if scale <= 0 {
		scale = 1
	}
	fx := float64(blockX) / float64(scale)
	fz := float64(blockZ) / float64(scale)
	x0 := int(math.Floor(fx))
	z0 := int(math.Floor(fz))

	u := smoothstep(fx - float64(x0))
	v := smoothstep(fz - float64(z0))

	const salt = 0x5DEECE66D
	n00 := hash01(seed, x0, z0, salt)
	n10 := hash01(seed, x0+1, z0, salt)
	n01 := hash01(seed, x0, z0+1, salt)
	n11 := hash01(seed, x0+1, z0+1, salt)

	nx0 := n00 + (n10-n00)*u
	nx1 := n01 + (n11-n01)*u
	return nx0 + (nx1-nx0)*v
}

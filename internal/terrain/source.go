package terrain

import (
	"math"

	"globe/internal/biome"
)

// MultiNoiseSource chooses biomes from climate parameters the way the host
// does before any latitude decoration.
type MultiNoiseSource struct {
	registry *biome.Registry
	seaLevel int
}

func NewMultiNoiseSource(reg *biome.Registry, seaLevel int) *MultiNoiseSource {
	if reg == nil {
		reg = biome.DefaultRegistry()
	}
	return &MultiNoiseSource{registry: reg, seaLevel: seaLevel}
}

var landTable = [5][5]string{
	{biome.SnowyPlains, biome.SnowyPlains, biome.SnowyPlains, biome.SnowyTaiga, biome.Taiga},
	{biome.Plains, biome.Plains, biome.Forest, biome.Taiga, biome.OldGrowthSpruceTaiga},
	{biome.FlowerForest, biome.Plains, biome.Forest, biome.BirchForest, biome.DarkForest},
	{biome.Savanna, biome.Savanna, biome.Forest, biome.Jungle, biome.Jungle},
	{biome.Desert, biome.Desert, biome.Desert, biome.Desert, biome.Desert},
}

var peakTable = [5]string{biome.FrozenPeaks, biome.SnowySlopes, biome.StonyPeaks, biome.StonyPeaks, biome.Badlands}

func band(v float64, thresholds ...float64) int {
	for i, t := range thresholds {
		if v < t {
			return i
		}
	}
	return len(thresholds)
}

func (s *MultiNoiseSource) Biome(qx, qy, qz int, sampler biome.Sampler) biome.Biome {
	if sampler == nil {
		return s.lookup(biome.Plains)
	}
	c := sampler.Sample(qx, qy, qz)
	if id := caveBiome(c); id != "" {
		return s.lookup(id)
	}

	temp := band(c.Temperature, -0.45, -0.15, 0.2, 0.55)
	blockX, blockZ := qx<<2+2, qz<<2+2
	surface := s.seaLevel
	if est, ok := sampler.(biome.SurfaceEstimator); ok {
		surface = est.SurfaceY(blockX, blockZ)
	}

	switch {
	case surface < s.seaLevel:
		return s.lookup(oceanFor(temp, surface < s.seaLevel-20))
	case surface <= s.seaLevel+2:
		if temp == 0 {
			return s.lookup(biome.SnowyBeach)
		}
		return s.lookup(biome.Beach)
	case math.Abs(c.Weirdness) < 0.04 && c.Erosion > 0:
		if temp == 0 {
			return s.lookup(biome.FrozenRiver)
		}
		return s.lookup(biome.River)
	case surface > s.seaLevel+48:
		return s.lookup(peakTable[temp])
	}

	humid := band(c.Humidity, -0.35, -0.1, 0.1, 0.3)
	id := landTable[temp][humid]
	if temp == 0 && humid <= 1 && c.Weirdness > 0.5 {
		id = biome.IceSpikes
	}
	return s.lookup(id)
}

func caveBiome(c biome.Climate) string {
	switch {
	case c.Depth > 1.1 && c.Erosion < -0.4:
		return biome.DeepDark
	case c.Depth > 0.2 && c.Humidity > 0.7:
		return biome.LushCaves
	case c.Depth > 0.2 && c.Continentalness > 0.8:
		return biome.DripstoneCaves
	}
	return ""
}

func oceanFor(temp int, deep bool) string {
	switch temp {
	case 0:
		if deep {
			return biome.DeepFrozenOcean
		}
		return biome.FrozenOcean
	case 1:
		if deep {
			return biome.DeepColdOcean
		}
		return biome.ColdOcean
	case 2:
		if deep {
			return biome.DeepOcean
		}
		return biome.Ocean
	case 3:
		if deep {
			return biome.DeepLukewarmOcean
		}
		return biome.LukewarmOcean
	}
	return biome.WarmOcean
}

func (s *MultiNoiseSource) lookup(id string) biome.Biome {
	b, _ := s.registry.Lookup(id)
	return b
}

// Possible lists the biomes the climate tables can produce.
func (s *MultiNoiseSource) Possible() []biome.Biome {
	ids := []string{
		biome.DeepDark, biome.LushCaves, biome.DripstoneCaves,
		biome.SnowyBeach, biome.Beach, biome.FrozenRiver, biome.River, biome.IceSpikes,
		biome.FrozenOcean, biome.DeepFrozenOcean, biome.ColdOcean, biome.DeepColdOcean,
		biome.Ocean, biome.DeepOcean, biome.LukewarmOcean, biome.DeepLukewarmOcean, biome.WarmOcean,
	}
	for _, row := range landTable {
		ids = append(ids, row[:]...)
	}
	ids = append(ids, peakTable[:]...)

	seen := make(map[string]bool, len(ids))
	unique := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	return s.registry.Resolve(unique)
}

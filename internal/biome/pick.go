package biome

import (
	"math"

	"globe/internal/latitude"
)

// variantCell is the size of the square cells that share one
// primary/secondary/accent roll.
const variantCell = 1024

// varietyScale is the lattice size of the fallback variety noise.
const varietyScale = 2048

// Blend controls how zones mix near their boundaries.
type Blend struct {
	Enabled   bool    `json:"enabled"`
	WidthFrac float64 `json:"widthFrac"`
	WarpFrac  float64 `json:"warpFrac"`
}

func DefaultBlend() Blend {
	return Blend{Enabled: true, WidthFrac: 0.08, WarpFrac: 0.06}
}

// Picker holds the tunables of the biome decision. The zero value disables
// blending and uses seed 0.
type Picker struct {
	Blend Blend
	Seed  int64
}

// Pick decides the biome of a column with the default blend settings.
func Pick(reg *Registry, base Biome, blockX, blockZ, radius int, sampler Sampler) Biome {
	return Picker{Blend: DefaultBlend()}.Pick(reg, base, blockX, blockZ, radius, sampler)
}

// Pick decides the biome of a column. base must be the host biome sampled at
// quart y = 0. The result depends only on the arguments and the picker
// settings. A column whose zone is warm never receives a snowy biome.
func (p Picker) Pick(reg *Registry, base Biome, blockX, blockZ, radius int, sampler Sampler) Biome {
	if radius <= 0 {
		radius = latitude.DefaultRadius
	}
	crisp := latitude.ZoneForRadius(radius, blockZ)
	zone := p.blendedZone(blockX, blockZ, radius, crisp)

	var out Biome
	switch {
	case base.Is(TagBeach):
		out = p.beach(reg, base, blockX, blockZ, zone)
	case base.Is(TagRiver):
		out = p.river(reg, base, zone)
	case base.Is(TagOcean):
		out = p.ocean(reg, base, blockX, blockZ, zone, sampler)
	default:
		out = p.land(reg, base, blockX, blockZ, radius, zone, sampler)
	}
	if !out.Valid() || (crisp.Warm() && out.Snowy) {
		return Fallback(reg, base, crisp)
	}
	return out
}

// blendedZone moves columns near a zone boundary into the neighbouring zone
// with a probability that ramps across the blend width. A column in a warm
// zone never moves into a cold one.
func (p Picker) blendedZone(blockX, blockZ, radius int, crisp latitude.Zone) latitude.Zone {
	if !p.Blend.Enabled {
		return crisp
	}
	r := float64(radius)
	width := clamp(r*p.Blend.WidthFrac, 120, 700)
	warpMax := clamp(r*p.Blend.WarpFrac, 0, width)

	absZ := blockZ
	if absZ < 0 {
		absZ = -absZ
	}

	var lower latitude.Zone
	switch crisp {
	case latitude.Equator:
		lower = latitude.Equator
	case latitude.Polar:
		lower = latitude.Subpolar
	default:
		dLo := math.Abs(float64(absZ - boundary(crisp-1, radius)))
		dHi := math.Abs(float64(absZ - boundary(crisp, radius)))
		if dLo <= dHi {
			lower = crisp - 1
		} else {
			lower = crisp
		}
	}
	upper := lower + 1
	if crisp.Warm() && !upper.Warm() {
		return crisp
	}

	signed := float64(absZ - boundary(lower, radius))
	if math.Abs(signed) > width {
		return crisp
	}

	chunkX, chunkZ := blockX>>4, blockZ>>4
	blend := blobNoise01(p.Seed, chunkX, chunkZ, 6, 0xA1B2C3D4E5F60718)
	warp := (blobNoise01(p.Seed, chunkX, chunkZ, 8, 0x1020304050607080)*2 - 1) * warpMax
	warp = clamp(warp, -width, width)

	tt := smoothstep((signed+warp)/width*0.5 + 0.5)
	if blend < tt {
		return upper
	}
	return lower
}

// boundary is the |z| at which zone gives way to zone+1.
func boundary(zone latitude.Zone, radius int) int {
	_, end := latitude.Range(zone)
	return int(math.Round(end * float64(radius)))
}

func (p Picker) beach(reg *Registry, base Biome, blockX, blockZ int, zone latitude.Zone) Biome {
	if zone.Warm() {
		if base.Snowy {
			if b, ok := reg.Lookup(Beach); ok {
				return b
			}
		}
		return base
	}
	target := StonyShore
	if hash64(blockX>>4, blockZ>>4, 0xBEEFBEEF)%100 < 70 {
		target = SnowyBeach
	}
	if b, ok := reg.Lookup(target); ok {
		return b
	}
	return base
}

func (p Picker) river(reg *Registry, base Biome, zone latitude.Zone) Biome {
	id := FrozenRiver
	if zone.Warm() {
		id = River
	}
	if b, ok := reg.Lookup(id); ok {
		return b
	}
	return base
}

type oceanSet struct {
	shallow []string
	deep    []string
}

var oceans = map[latitude.Zone]oceanSet{
	latitude.Equator:     {shallow: []string{WarmOcean}, deep: []string{DeepLukewarmOcean}},
	latitude.Tropical:    {shallow: []string{WarmOcean, LukewarmOcean}, deep: []string{DeepLukewarmOcean}},
	latitude.Subtropical: {shallow: []string{LukewarmOcean}, deep: []string{DeepLukewarmOcean}},
	latitude.Temperate:   {shallow: []string{Ocean}, deep: []string{DeepOcean}},
	latitude.Subpolar:    {shallow: []string{ColdOcean}, deep: []string{DeepColdOcean}},
	latitude.Polar:       {shallow: []string{FrozenOcean}, deep: []string{DeepFrozenOcean}},
}

func (p Picker) ocean(reg *Registry, base Biome, blockX, blockZ int, zone latitude.Zone, sampler Sampler) Biome {
	set := oceans[zone]
	ids := set.shallow
	if base.Is(TagDeep) {
		ids = set.deep
	}
	out := base
	if entries := reg.Resolve(ids); len(entries) > 0 {
		out = entries[index(p.variety(blockX, blockZ, 20+int64(zone), sampler), len(entries))]
	}
	if out.Is(TagDeep) && rollChance(blockX, blockZ, 0x5F3759DF, 2000) {
		if b, ok := reg.Lookup(MushroomFields); ok {
			return b
		}
	}
	return out
}

func (p Picker) land(reg *Registry, base Biome, blockX, blockZ, radius int, zone latitude.Zone, sampler Sampler) Biome {
	if !base.Is(TagCave) && base.Natural.Has(zone) {
		return p.landOverrides(reg, base, blockX, blockZ, zone)
	}
	var pal palette
	if zone == latitude.Tropical {
		pal = p.tropicalLadder(blockX, blockZ, radius)
	} else {
		pal = palettes[zone]
	}
	return p.landOverrides(reg, p.weighted(reg, base, blockX, blockZ, pal, sampler), blockX, blockZ, zone)
}

// tropicalLadder grades the tropical band from wet forest on the equator
// side to arid scrub on the subtropical side, with blob jitter so the steps
// are not straight lines.
func (p Picker) tropicalLadder(blockX, blockZ, radius int) palette {
	start, end := latitude.Range(latitude.Tropical)
	u := clamp((latitude.Fraction(radius, blockZ)-start)/(end-start), 0, 1)
	jitter := blobNoise01(p.Seed, blockX>>4, blockZ>>4, 8, 0xBADC0FFEE0DDF00D)*2 - 1
	step := int(math.Floor(smoothstep(clamp(1-u+jitter*0.12, 0, 1)) * 4))
	if step > 3 {
		step = 3
	}
	return tropicalSteps[step]
}

func (p Picker) weighted(reg *Registry, base Biome, blockX, blockZ int, pal palette, sampler Sampler) Biome {
	cellX, cellZ := floorDiv(blockX, variantCell), floorDiv(blockZ, variantCell)
	roll := hash64(cellX, cellZ, pal.salt) % 100
	ids := pal.accent
	switch {
	case roll < 70:
		ids = pal.primary
	case roll < 95:
		ids = pal.secondary
	}
	entries := reg.Resolve(ids)
	if len(entries) == 0 {
		return base
	}
	return entries[index(p.variety(blockX, blockZ, pal.variety, sampler), len(entries))]
}

// variety returns a value in [0, 1) that varies slowly across a band. It is
// driven by the host's humidity so the band follows the host's own climate
// patterns, shifted per palette so adjacent bands do not line up.
func (p Picker) variety(blockX, blockZ int, salt int64, sampler Sampler) float64 {
	if sampler == nil {
		return valueNoise01(p.Seed^int64(uint64(golden)*uint64(salt)), blockX, blockZ, varietyScale)
	}
	c := sampler.Sample(blockX>>2, 0, blockZ>>2)
	n := clamp((c.Humidity+1)*0.5, 0, 1)
	n += float64(salt) * 0.6180339887
	return n - math.Floor(n)
}

func index(n float64, size int) int {
	idx := int(math.Floor(n * float64(size)))
	if idx >= size {
		return size - 1
	}
	if idx < 0 {
		return 0
	}
	return idx
}

func (p Picker) landOverrides(reg *Registry, b Biome, blockX, blockZ int, zone latitude.Zone) Biome {
	swap := func(id string) {
		if next, ok := reg.Lookup(id); ok {
			b = next
		}
	}
	if zone == latitude.Subtropical || zone == latitude.Temperate {
		if b.ID == Plains && rollChance(blockX, blockZ, 0x7F4A7C15, 25) {
			swap(SunflowerPlains)
		}
	}
	if zone == latitude.Temperate {
		if b.ID == DarkForest && rollChance(blockX, blockZ, 0x51ED270B, 4000) {
			swap(PaleGarden)
		}
		if (b.ID == Meadow || b.ID == WindsweptHills) && rollChance(blockX, blockZ, 0x31415926, 120) {
			swap(StonyPeaks)
		}
	}
	return b
}

var fallbacks = map[latitude.Zone][]string{
	latitude.Equator:     {Jungle, Savanna, Plains},
	latitude.Tropical:    {Savanna, SparseJungle, Jungle},
	latitude.Subtropical: {Savanna, SparseJungle, Jungle},
	latitude.Temperate:   {Plains, Forest, BirchForest},
	latitude.Subpolar:    {SnowyPlains, Taiga, SnowyTaiga},
	latitude.Polar:       {SnowyPlains, Taiga, SnowyTaiga},
}

// Fallback returns a safe biome for the zone when the regular decision is
// unavailable. In warm zones the result is never snowy as long as the
// registry holds at least one biome that is not.
func Fallback(reg *Registry, base Biome, zone latitude.Zone) Biome {
	if b, ok := reg.first(fallbacks[zone]...); ok {
		return b
	}
	if !zone.Warm() || (base.Valid() && !base.Snowy) {
		return base
	}
	var loose Biome
	for _, b := range reg.All() {
		if b.Snowy || b.Is(TagCave) {
			continue
		}
		if b.Natural.Has(zone) {
			return b
		}
		if !loose.Valid() {
			loose = b
		}
	}
	if loose.Valid() {
		return loose
	}
	return base
}

func zoneOf(radius, blockZ int) latitude.Zone {
	return latitude.ZoneForRadius(radius, blockZ)
}

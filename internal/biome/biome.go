// Package biome decides the final biome of a column from its latitude and
// decorates the host biome source with that decision.
package biome

import (
	"sort"

	"globe/internal/latitude"
)

// Tag is a bit set of biome categories the pipeline branches on.
type Tag uint16

const (
	TagOcean Tag = 1 << iota
	TagDeep
	TagBeach
	TagRiver
	TagCave
	TagMountain
)

// ZoneSet is a bit set of latitude zones.
type ZoneSet uint8

func Zones(zones ...latitude.Zone) ZoneSet {
	var s ZoneSet
	for _, z := range zones {
		s |= 1 << uint(z)
	}
	return s
}

func (s ZoneSet) Has(z latitude.Zone) bool {
	return s&(1<<uint(z)) != 0
}

// Biome describes one registry entry.
type Biome struct {
	ID    string
	Tags  Tag
	Snowy bool
	// Natural lists the zones in which the host may keep this biome unchanged.
	Natural ZoneSet
}

func (b Biome) Is(tag Tag) bool { return b.Tags&tag != 0 }

// Valid reports whether b refers to a registry entry.
func (b Biome) Valid() bool { return b.ID != "" }

const (
	Plains               = "minecraft:plains"
	SunflowerPlains      = "minecraft:sunflower_plains"
	Forest               = "minecraft:forest"
	FlowerForest         = "minecraft:flower_forest"
	BirchForest          = "minecraft:birch_forest"
	DarkForest           = "minecraft:dark_forest"
	PaleGarden           = "minecraft:pale_garden"
	CherryGrove          = "minecraft:cherry_grove"
	Meadow               = "minecraft:meadow"
	Swamp                = "minecraft:swamp"
	MangroveSwamp        = "minecraft:mangrove_swamp"
	WindsweptHills       = "minecraft:windswept_hills"
	StonyPeaks           = "minecraft:stony_peaks"
	Jungle               = "minecraft:jungle"
	SparseJungle         = "minecraft:sparse_jungle"
	BambooJungle         = "minecraft:bamboo_jungle"
	Savanna              = "minecraft:savanna"
	SavannaPlateau       = "minecraft:savanna_plateau"
	Desert               = "minecraft:desert"
	Badlands             = "minecraft:badlands"
	WoodedBadlands       = "minecraft:wooded_badlands"
	ErodedBadlands       = "minecraft:eroded_badlands"
	Taiga                = "minecraft:taiga"
	OldGrowthPineTaiga   = "minecraft:old_growth_pine_taiga"
	OldGrowthSpruceTaiga = "minecraft:old_growth_spruce_taiga"
	SnowyTaiga           = "minecraft:snowy_taiga"
	SnowyPlains          = "minecraft:snowy_plains"
	IceSpikes            = "minecraft:ice_spikes"
	Grove                = "minecraft:grove"
	SnowySlopes          = "minecraft:snowy_slopes"
	FrozenPeaks          = "minecraft:frozen_peaks"
	JaggedPeaks          = "minecraft:jagged_peaks"
	MushroomFields       = "minecraft:mushroom_fields"
	Beach                = "minecraft:beach"
	SnowyBeach           = "minecraft:snowy_beach"
	StonyShore           = "minecraft:stony_shore"
	River                = "minecraft:river"
	FrozenRiver          = "minecraft:frozen_river"
	WarmOcean            = "minecraft:warm_ocean"
	LukewarmOcean        = "minecraft:lukewarm_ocean"
	DeepLukewarmOcean    = "minecraft:deep_lukewarm_ocean"
	Ocean                = "minecraft:ocean"
	DeepOcean            = "minecraft:deep_ocean"
	ColdOcean            = "minecraft:cold_ocean"
	DeepColdOcean        = "minecraft:deep_cold_ocean"
	FrozenOcean          = "minecraft:frozen_ocean"
	DeepFrozenOcean      = "minecraft:deep_frozen_ocean"
	LushCaves            = "minecraft:lush_caves"
	DripstoneCaves       = "minecraft:dripstone_caves"
	DeepDark             = "minecraft:deep_dark"
)

var (
	hot      = Zones(latitude.Equator, latitude.Tropical)
	dry      = Zones(latitude.Tropical, latitude.Subtropical)
	mild     = Zones(latitude.Subtropical, latitude.Temperate)
	cool     = Zones(latitude.Temperate, latitude.Subpolar)
	cold     = Zones(latitude.Subpolar, latitude.Polar)
	anywhere = Zones(latitude.Zones()...)
)

// vanilla is the overworld biome set of the host.
var vanilla = []Biome{
	{ID: Plains, Natural: Zones(latitude.Temperate)},
	{ID: SunflowerPlains, Natural: Zones(latitude.Temperate)},
	{ID: Forest, Natural: Zones(latitude.Temperate)},
	{ID: FlowerForest, Natural: Zones(latitude.Temperate)},
	{ID: BirchForest, Natural: Zones(latitude.Temperate)},
	{ID: DarkForest, Natural: Zones(latitude.Temperate)},
	{ID: PaleGarden, Natural: Zones(latitude.Temperate)},
	{ID: CherryGrove, Natural: mild},
	{ID: Meadow, Tags: TagMountain, Natural: Zones(latitude.Temperate)},
	{ID: Swamp, Natural: mild},
	{ID: MangroveSwamp, Natural: hot},
	{ID: WindsweptHills, Tags: TagMountain, Natural: cool},
	{ID: StonyPeaks, Tags: TagMountain, Natural: mild},
	{ID: Jungle, Natural: hot},
	{ID: SparseJungle, Natural: hot},
	{ID: BambooJungle, Natural: Zones(latitude.Equator)},
	{ID: Savanna, Natural: dry},
	{ID: SavannaPlateau, Natural: dry},
	{ID: Desert, Natural: dry},
	{ID: Badlands, Natural: Zones(latitude.Subtropical)},
	{ID: WoodedBadlands, Natural: Zones(latitude.Subtropical)},
	{ID: ErodedBadlands, Natural: Zones(latitude.Subtropical)},
	{ID: Taiga, Natural: cool},
	{ID: OldGrowthPineTaiga, Natural: Zones(latitude.Subpolar)},
	{ID: OldGrowthSpruceTaiga, Natural: Zones(latitude.Subpolar)},
	{ID: SnowyTaiga, Snowy: true, Natural: cold},
	{ID: SnowyPlains, Snowy: true, Natural: cold},
	{ID: IceSpikes, Snowy: true, Natural: Zones(latitude.Polar)},
	{ID: Grove, Tags: TagMountain, Snowy: true, Natural: cold},
	{ID: SnowySlopes, Tags: TagMountain, Snowy: true, Natural: cold},
	{ID: FrozenPeaks, Tags: TagMountain, Snowy: true, Natural: Zones(latitude.Polar)},
	{ID: JaggedPeaks, Tags: TagMountain, Snowy: true, Natural: Zones(latitude.Polar)},
	{ID: MushroomFields, Natural: anywhere &^ cold},
	{ID: Beach, Tags: TagBeach},
	{ID: SnowyBeach, Tags: TagBeach, Snowy: true},
	{ID: StonyShore, Tags: TagBeach},
	{ID: River, Tags: TagRiver},
	{ID: FrozenRiver, Tags: TagRiver, Snowy: true},
	{ID: WarmOcean, Tags: TagOcean},
	{ID: LukewarmOcean, Tags: TagOcean},
	{ID: DeepLukewarmOcean, Tags: TagOcean | TagDeep},
	{ID: Ocean, Tags: TagOcean},
	{ID: DeepOcean, Tags: TagOcean | TagDeep},
	{ID: ColdOcean, Tags: TagOcean},
	{ID: DeepColdOcean, Tags: TagOcean | TagDeep},
	{ID: FrozenOcean, Tags: TagOcean, Snowy: true},
	{ID: DeepFrozenOcean, Tags: TagOcean | TagDeep, Snowy: true},
	{ID: LushCaves, Tags: TagCave},
	{ID: DripstoneCaves, Tags: TagCave},
	{ID: DeepDark, Tags: TagCave},
}

// Registry is an immutable set of biomes keyed by id.
type Registry struct {
	byID    map[string]Biome
	ordered []Biome
}

// NewRegistry builds a registry; later duplicates replace earlier entries.
func NewRegistry(biomes []Biome) *Registry {
	r := &Registry{byID: make(map[string]Biome, len(biomes))}
	for _, b := range biomes {
		if b.ID == "" {
			continue
		}
		r.byID[b.ID] = b
	}
	r.ordered = make([]Biome, 0, len(r.byID))
	for _, b := range r.byID {
		r.ordered = append(r.ordered, b)
	}
	sort.Slice(r.ordered, func(i, j int) bool { return r.ordered[i].ID < r.ordered[j].ID })
	return r
}

var defaultRegistry = NewRegistry(vanilla)

// DefaultRegistry returns the overworld registry.
func DefaultRegistry() *Registry { return defaultRegistry }

func (r *Registry) Lookup(id string) (Biome, bool) {
	if r == nil {
		return Biome{}, false
	}
	b, ok := r.byID[id]
	return b, ok
}

// All returns every biome sorted by id.
func (r *Registry) All() []Biome {
	if r == nil {
		return nil
	}
	out := make([]Biome, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Resolve keeps the ids present in the registry, sorted by id.
func (r *Registry) Resolve(ids []string) []Biome {
	out := make([]Biome, 0, len(ids))
	for _, id := range ids {
		if b, ok := r.Lookup(id); ok {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// first returns the first id present in the registry.
func (r *Registry) first(ids ...string) (Biome, bool) {
	for _, id := range ids {
		if b, ok := r.Lookup(id); ok {
			return b, true
		}
	}
	return Biome{}, false
}

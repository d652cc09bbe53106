package biome

import "globe/internal/latitude"

// palette is a weighted set of land biomes for one band. Within a variant
// cell, primary is chosen 70% of the time, secondary 25% and accent 5%.
type palette struct {
	salt      int64
	variety   int64
	primary   []string
	secondary []string
	accent    []string
}

var palettes = map[latitude.Zone]palette{
	latitude.Equator: {
		salt: 0x1A21, variety: 1,
		primary:   []string{Jungle},
		secondary: []string{BambooJungle, SparseJungle},
		accent:    []string{MangroveSwamp},
	},
	latitude.Subtropical: {
		salt: 0x5E65, variety: 5,
		primary:   []string{Desert, Badlands},
		secondary: []string{Savanna, WoodedBadlands},
		accent:    []string{ErodedBadlands},
	},
	latitude.Temperate: {
		salt: 0x2B32, variety: 2,
		primary:   []string{Plains, Forest, BirchForest},
		secondary: []string{DarkForest, FlowerForest, Swamp, Meadow},
		accent:    []string{CherryGrove, WindsweptHills},
	},
	latitude.Subpolar: {
		salt: 0x3C43, variety: 3,
		primary:   []string{Taiga, SnowyTaiga},
		secondary: []string{OldGrowthPineTaiga, OldGrowthSpruceTaiga, Grove},
		accent:    []string{SnowySlopes, WindsweptHills},
	},
	latitude.Polar: {
		salt: 0x4D54, variety: 4,
		primary:   []string{SnowyPlains},
		secondary: []string{IceSpikes, SnowyTaiga, SnowySlopes},
		accent:    []string{FrozenPeaks, JaggedPeaks},
	},
}

// tropicalSteps runs from arid (0) to wet tropics (3).
var tropicalSteps = [4]palette{
	{
		salt: 0x7A00, variety: 100,
		primary:   []string{Desert, Savanna},
		secondary: []string{SavannaPlateau, Badlands},
		accent:    []string{WoodedBadlands},
	},
	{
		salt: 0x7A11, variety: 101,
		primary:   []string{Savanna, SavannaPlateau},
		secondary: []string{Desert, SparseJungle},
		accent:    []string{WoodedBadlands},
	},
	{
		salt: 0x7A22, variety: 102,
		primary:   []string{SparseJungle, Savanna},
		secondary: []string{Jungle, SavannaPlateau},
		accent:    []string{MangroveSwamp},
	},
	{
		salt: 0x7A33, variety: 103,
		primary:   []string{Jungle, SparseJungle},
		secondary: []string{BambooJungle, Savanna},
		accent:    []string{MangroveSwamp},
	},
}

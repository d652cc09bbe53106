// Package preset maps generator-settings identifiers to world border radii.
package preset

import (
	"sort"
	"strings"

	"globe/internal/latitude"
)

// ID names a generator-settings entry chosen at world creation.
type ID string

// Namespace prefixes every identifier that requests latitude behaviour.
const Namespace = "globe:"

const (
	Overworld        ID = "globe:overworld"
	OverworldXSmall  ID = "globe:overworld_xsmall"
	OverworldSmall   ID = "globe:overworld_small"
	OverworldRegular ID = "globe:overworld_regular"
	OverworldLarge   ID = "globe:overworld_large"
	OverworldMassive ID = "globe:overworld_massive"
)

// Default is used when a latitude identifier does not match a known preset.
const Default = OverworldRegular

// Preset is one world size.
type Preset struct {
	ID           ID     `json:"id"`
	Name         string `json:"name"`
	RadiusBlocks int    `json:"radiusBlocks"`
}

var presets = map[ID]Preset{
	Overworld:        {ID: Overworld, Name: "Globe", RadiusBlocks: 15000},
	OverworldXSmall:  {ID: OverworldXSmall, Name: "Globe (XS)", RadiusBlocks: 3750},
	OverworldSmall:   {ID: OverworldSmall, Name: "Globe (Small)", RadiusBlocks: 5000},
	OverworldRegular: {ID: OverworldRegular, Name: "Globe (Regular)", RadiusBlocks: latitude.DefaultRadius},
	OverworldLarge:   {ID: OverworldLarge, Name: "Globe (Large)", RadiusBlocks: 10000},
	OverworldMassive: {ID: OverworldMassive, Name: "Globe (Massive)", RadiusBlocks: 20000},
}

// Lookup returns the preset registered for id.
func Lookup(id ID) (Preset, bool) {
	p, ok := presets[id]
	return p, ok
}

// All returns every preset ordered by radius.
func All() []Preset {
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RadiusBlocks < out[j].RadiusBlocks
	})
	return out
}

// IsLatitude reports whether the identifier asks for latitude generation.
func IsLatitude(id ID) bool {
	return strings.HasPrefix(string(id), Namespace)
}

// RadiusFor resolves a radius for id. Unknown identifiers inside the latitude
// namespace resolve to the default preset with matched=false; identifiers
// outside it are not applicable and return 0.
func RadiusFor(id ID) (radius int, matched bool) {
	if p, ok := presets[id]; ok {
		return p.RadiusBlocks, true
	}
	if IsLatitude(id) {
		return presets[Default].RadiusBlocks, false
	}
	return 0, false
}

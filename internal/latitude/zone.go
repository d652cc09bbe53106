// Package latitude classifies world coordinates into climate bands that are
// symmetric about the z = 0 axis of a bounded world.
package latitude

import (
	"fmt"
	"math"
	"strings"
)

// DefaultRadius is used whenever a caller supplies a non-positive radius.
const DefaultRadius = 7500

// Zone is a latitude band. Zones are ordered from the equator to the poles.
type Zone int

const (
	Equator Zone = iota
	Tropical
	Subtropical
	Temperate
	Subpolar
	Polar
)

// zoneEnds holds the exclusive upper bound of each zone as a fraction of the
// border radius. Polar has no upper bound.
var zoneEnds = [...]float64{
	Equator:     0.10,
	Tropical:    0.45,
	Subtropical: 0.60,
	Temperate:   0.80,
	Subpolar:    0.99,
}

var zoneNames = [...]string{
	Equator:     "EQUATOR",
	Tropical:    "TROPICAL",
	Subtropical: "SUBTROPICAL",
	Temperate:   "TEMPERATE",
	Subpolar:    "SUBPOLAR",
	Polar:       "POLAR",
}

// Zones lists every zone in order.
func Zones() []Zone {
	return []Zone{Equator, Tropical, Subtropical, Temperate, Subpolar, Polar}
}

func (z Zone) String() string {
	if z < Equator || z > Polar {
		return fmt.Sprintf("Zone(%d)", int(z))
	}
	return zoneNames[z]
}

// Key is the lower-case identifier used in config files and HTTP payloads.
func (z Zone) Key() string {
	return strings.ToLower(z.String())
}

// Warm reports whether snow and ice are forbidden in the zone.
func (z Zone) Warm() bool {
	return z >= Equator && z <= Temperate
}

// ParseZone accepts either the upper-case name or the lower-case key.
func ParseZone(s string) (Zone, error) {
	needle := strings.ToUpper(strings.TrimSpace(s))
	for zone, name := range zoneNames {
		if name == needle {
			return Zone(zone), nil
		}
	}
	return Equator, fmt.Errorf("unknown latitude zone %q", s)
}

// ZoneForRadius classifies a block z coordinate. It never fails: |z| beyond
// the radius clamps to Polar and a non-positive radius uses DefaultRadius.
func ZoneForRadius(radius, z int) Zone {
	t := Fraction(radius, z)
	for zone, end := range zoneEnds {
		if t < end {
			return Zone(zone)
		}
	}
	return Polar
}

// Fraction returns |z| / radius clamped to [0, 1].
func Fraction(radius, z int) float64 {
	if radius <= 0 {
		radius = DefaultRadius
	}
	if z >= radius || z <= -radius {
		return 1
	}
	abs := z
	if abs < 0 {
		abs = -abs
	}
	return float64(abs) / float64(radius)
}

// Degrees maps z onto a signed latitude where the border sits at ±90.
func Degrees(radius, z int) float64 {
	deg := Fraction(radius, z) * 90
	if z < 0 {
		return -deg
	}
	return deg
}

// Range returns the [start, end) radius fractions covered by a zone.
func Range(zone Zone) (float64, float64) {
	switch {
	case zone <= Equator:
		return 0, zoneEnds[Equator]
	case zone >= Polar:
		return zoneEnds[Subpolar], 1
	default:
		return zoneEnds[zone-1], zoneEnds[zone]
	}
}

// SpawnFraction is the absolute latitude fraction players are placed at when
// they choose a zone to start in.
func SpawnFraction(zone Zone) float64 {
	start, end := Range(zone)
	if zone == Polar {
		return start
	}
	return start + (end-start)*0.5
}

// SpawnZ returns a deterministic spawn latitude for the zone. The hemisphere
// is chosen from the seed and the result stays warnMargin+500 blocks inside
// the border, so polar spawns land at the edge of the subpolar band.
func SpawnZ(radius int, zone Zone, seed int64, warnMargin int) int {
	if radius <= 0 {
		radius = DefaultRadius
	}
	z := int(math.Round(float64(radius) * SpawnFraction(zone)))
	if hash01(seed, 1, 0, spawnSalt) < 0.5 {
		z = -z
	}
	maxAbs := radius - warnMargin - 500
	if maxAbs < 0 {
		maxAbs = 0
	}
	if z > maxAbs {
		return maxAbs
	}
	if z < -maxAbs {
		return -maxAbs
	}
	return z
}

const spawnSalt = 0x7A3E21B5D4C1F7A9

func hash01(seed int64, x, z int, salt uint64) float64 {
	h := uint64(seed) ^ salt
	h ^= uint64(int64(x)) * 0x9E3779B97F4A7C15
	h ^= uint64(int64(z)) * 0xC2B2AE3D27D4EB4F
	h ^= h >> 27
	h *= 0x3C79AC492BA7B653
	h ^= h >> 33
	return float64(h>>11) * (1.0 / (1 << 53))
}

// Package border derives the cosmetic feedback shown near the edges of a
// latitude world: polar warnings and whiteout fog towards the z border,
// storm fog and a decorative wall towards the x border.
package border

import (
	"fmt"
	"math"
)

// Distances inside the border, in blocks.
const (
	PoleWarningDistance = 256
	PoleLethalDistance  = 96
	poleWarn2Distance   = PoleWarningDistance - 64
	poleDangerDistance  = PoleLethalDistance + 32
	stormTextDanger     = 64

	fogNear = 96.0
	fogFar  = 2.0

	wallMaxDistance = 600.0
	wallHalfSpan    = 2048
	wallStep        = 16
	wallInset       = 2.5
	wallBottom      = -64.0
	wallTop         = 320.0
)

// RadiusSource reports the active border radius, 0 when unresolved.
// *preset.Resolver satisfies it.
type RadiusSource interface {
	ActiveRadiusBlocks() int
}

// RadiusFunc adapts a function to RadiusSource.
type RadiusFunc func() int

func (f RadiusFunc) ActiveRadiusBlocks() int { return f() }

type PolarStage int

const (
	PolarNone PolarStage = iota
	PolarWarn1
	PolarWarn2
	PolarDanger
	PolarLethal
)

func (s PolarStage) String() string {
	switch s {
	case PolarWarn1:
		return "warn_1"
	case PolarWarn2:
		return "warn_2"
	case PolarDanger:
		return "danger"
	case PolarLethal:
		return "lethal"
	}
	return "none"
}

func (s PolarStage) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *PolarStage) UnmarshalText(text []byte) error {
	for stage := PolarNone; stage <= PolarLethal; stage++ {
		if stage.String() == string(text) {
			*s = stage
			return nil
		}
	}
	return fmt.Errorf("unknown polar stage %q", text)
}

func polarStageFor(dist int) PolarStage {
	switch {
	case dist <= PoleLethalDistance:
		return PolarLethal
	case dist <= poleDangerDistance:
		return PolarDanger
	case dist <= poleWarn2Distance:
		return PolarWarn2
	case dist <= PoleWarningDistance:
		return PolarWarn1
	}
	return PolarNone
}

type StormStage int

const (
	StormNone StormStage = iota
	StormLevel1
	StormLevel2
)

func (s StormStage) String() string {
	switch s {
	case StormLevel1:
		return "level_1"
	case StormLevel2:
		return "level_2"
	}
	return "none"
}

func (s StormStage) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *StormStage) UnmarshalText(text []byte) error {
	for stage := StormNone; stage <= StormLevel2; stage++ {
		if stage.String() == string(text) {
			*s = stage
			return nil
		}
	}
	return fmt.Errorf("unknown storm stage %q", text)
}

func stormStageFor(dist int) StormStage {
	switch {
	case dist <= PoleLethalDistance:
		return StormLevel2
	case dist <= PoleWarningDistance:
		return StormLevel1
	}
	return StormNone
}

// Warning is the single message shown to the player. Polar lethal wins over
// a severe storm, which wins over lesser polar stages.
type Warning struct {
	Kind  string `json:"kind"`
	Stage string `json:"stage"`
	Rank  int    `json:"rank"`
}

// Segment is one vertical quad of the storm wall.
type Segment struct {
	Z0 int `json:"z0"`
	Z1 int `json:"z1"`
}

// Wall is the decorative plane drawn just inside the nearer x border.
type Wall struct {
	PlaneX   float64   `json:"planeX"`
	East     bool      `json:"east"`
	Bottom   float64   `json:"bottom"`
	Top      float64   `json:"top"`
	Segments []Segment `json:"segments"`
}

// Frame is what a client renders at one position. The zero Frame means no
// effect at all; fog ends of 0 leave the host fog untouched.
type Frame struct {
	Radius       int        `json:"radius"`
	DistX        float64    `json:"distX"`
	DistZ        float64    `json:"distZ"`
	Polar        PolarStage `json:"polar"`
	Storm        StormStage `json:"storm"`
	Warning      *Warning   `json:"warning,omitempty"`
	Whiteout     float64    `json:"whiteout"`
	PoleFogEnd   float64    `json:"poleFogEnd,omitempty"`
	EdgeFogEnd   float64    `json:"edgeFogEnd,omitempty"`
	StormFogEnd  float64    `json:"stormFogEnd,omitempty"`
	EdgeWarnFrom float64    `json:"edgeWarnFrom"`
	Wall         *Wall      `json:"wall,omitempty"`
}

// Active reports whether the frame carries any effect.
func (f Frame) Active() bool { return f.Radius > 0 }

type Visualizer struct {
	radius RadiusSource
}

func NewVisualizer(radius RadiusSource) *Visualizer {
	return &Visualizer{radius: radius}
}

// Frame computes the feedback for a camera at (x, z). The border is centred
// on the origin. Non-finite positions get the zero frame.
func (v *Visualizer) Frame(x, z float64) Frame {
	if v == nil || v.radius == nil || !finite(x) || !finite(z) {
		return Frame{}
	}
	radius := v.radius.ActiveRadiusBlocks()
	if radius <= 0 {
		return Frame{}
	}
	r := float64(radius)
	f := Frame{
		Radius:       radius,
		DistX:        r - math.Abs(x),
		DistZ:        r - math.Abs(z),
		EdgeWarnFrom: EdgeWarnStart(radius),
	}
	distX := int(math.Floor(f.DistX))
	distZ := int(math.Floor(f.DistZ))
	f.Polar = polarStageFor(distZ)
	f.Storm = stormStageFor(distX)
	f.Warning = warningFor(f.Polar, distX)

	f.Whiteout = WhiteoutIntensity(f.DistZ)
	f.PoleFogEnd = easeFog(f.Whiteout)
	f.EdgeFogEnd = easeFog(clamp01((f.EdgeWarnFrom - f.DistX) / f.EdgeWarnFrom))
	switch f.Storm {
	case StormLevel1:
		f.StormFogEnd = 48
	case StormLevel2:
		f.StormFogEnd = 10
	}
	f.Wall = wallFor(x, z, r, f.DistX)
	return f
}

func warningFor(polar PolarStage, distX int) *Warning {
	storm := StormNone
	if distX <= stormTextDanger {
		storm = StormLevel2
	} else if distX <= PoleWarningDistance {
		storm = StormLevel1
	}
	switch {
	case polar == PolarLethal:
		return &Warning{Kind: "polar", Stage: polar.String(), Rank: int(polar)}
	case storm == StormLevel2:
		return &Warning{Kind: "storm", Stage: storm.String(), Rank: int(storm)}
	case polar != PolarNone:
		return &Warning{Kind: "polar", Stage: polar.String(), Rank: int(polar)}
	case storm != StormNone:
		return &Warning{Kind: "storm", Stage: storm.String(), Rank: int(storm)}
	}
	return nil
}

// EdgeWarnStart is the distance from the x border at which edge fog begins.
func EdgeWarnStart(radius int) float64 {
	return math.Min(1500, math.Max(300, float64(radius)/8))
}

// WhiteoutIntensity rises linearly from 0 at the warning distance to 1 at
// the z border.
func WhiteoutIntensity(distZ float64) float64 {
	if distZ > PoleWarningDistance {
		return 0
	}
	if distZ <= 0 {
		return 1
	}
	return clamp01((PoleWarningDistance - distZ) / PoleWarningDistance)
}

// easeFog maps an intensity onto a fog end distance, closing from 96 to 2
// blocks along the square of the intensity. It returns 0 for no fog.
func easeFog(intensity float64) float64 {
	intensity = clamp01(intensity)
	if intensity <= 0.001 {
		return 0
	}
	e := intensity * intensity
	return fogNear + (fogFar-fogNear)*e
}

func wallFor(x, z, radius, distX float64) *Wall {
	if distX > wallMaxDistance {
		return nil
	}
	east := x >= 0
	w := &Wall{East: east, Bottom: wallBottom, Top: wallTop}
	if east {
		w.PlaneX = radius - wallInset
	} else {
		w.PlaneX = -radius + wallInset
	}
	start := int(math.Floor((z-wallHalfSpan)/wallStep)) * wallStep
	end := int(math.Ceil((z+wallHalfSpan)/wallStep)) * wallStep
	w.Segments = make([]Segment, 0, (end-start)/wallStep)
	for s := start; s < end; s += wallStep {
		w.Segments = append(w.Segments, Segment{Z0: s, Z1: s + wallStep})
	}
	return w
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

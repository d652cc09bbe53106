package border

import (
	"encoding/json"
	"math"
	"testing"
)

func fixed(radius int) *Visualizer {
	return NewVisualizer(RadiusFunc(func() int { return radius }))
}

func TestUnresolvedRadiusHasNoEffect(t *testing.T) {
	for _, v := range []*Visualizer{nil, NewVisualizer(nil), fixed(0), fixed(-5)} {
		f := v.Frame(100, 7400)
		if f.Active() || f.Warning != nil || f.Wall != nil || f.PoleFogEnd != 0 {
			t.Fatalf("expected zero frame, got %+v", f)
		}
	}
}

func TestPolarStages(t *testing.T) {
	v := fixed(7500)
	tests := []struct {
		z    float64
		want PolarStage
	}{
		{0, PolarNone},
		{7500 - 257, PolarNone},
		{7500 - 256, PolarWarn1},
		{-(7500 - 200), PolarWarn1},
		{7500 - 192, PolarWarn2},
		{7500 - 128, PolarDanger},
		{-(7500 - 96), PolarLethal},
		{7600, PolarLethal},
	}
	for _, tt := range tests {
		if got := v.Frame(0, tt.z).Polar; got != tt.want {
			t.Fatalf("z=%v: stage %s, want %s", tt.z, got, tt.want)
		}
	}
}

func TestPoleFogEases(t *testing.T) {
	v := fixed(7500)
	if got := v.Frame(0, 0).PoleFogEnd; got != 0 {
		t.Fatalf("fog far from the pole = %v", got)
	}
	mid := v.Frame(0, 7500-128).PoleFogEnd
	want := 96 + (2-96)*0.25
	if math.Abs(mid-want) > 1e-9 {
		t.Fatalf("fog halfway = %v, want %v", mid, want)
	}
	if got := v.Frame(0, 7500).PoleFogEnd; got != 2 {
		t.Fatalf("fog at the border = %v, want 2", got)
	}
	if got := v.Frame(0, 7500).Whiteout; got != 1 {
		t.Fatalf("whiteout at the border = %v", got)
	}
}

func TestEdgeWarnStart(t *testing.T) {
	tests := []struct {
		radius int
		want   float64
	}{
		{1000, 300},
		{3750, 468.75},
		{7500, 937.5},
		{15000, 1500},
		{20000, 1500},
	}
	for _, tt := range tests {
		if got := EdgeWarnStart(tt.radius); got != tt.want {
			t.Fatalf("EdgeWarnStart(%d) = %v, want %v", tt.radius, got, tt.want)
		}
	}
}

func TestWarningPrecedence(t *testing.T) {
	v := fixed(5000)
	tests := []struct {
		name      string
		x, z      float64
		kind      string
		stage     string
		noWarning bool
	}{
		{"interior", 0, 0, "", "", true},
		{"polar lethal beats storm", 4990, 4950, "polar", "lethal", false},
		{"storm danger beats polar warning", 4950, 4800, "storm", "level_2", false},
		{"polar warning beats storm warning", -4800, 4800, "polar", "warn_1", false},
		{"storm warning alone", -4800, 0, "storm", "level_1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := v.Frame(tt.x, tt.z).Warning
			if tt.noWarning {
				if w != nil {
					t.Fatalf("unexpected warning %+v", w)
				}
				return
			}
			if w == nil || w.Kind != tt.kind || w.Stage != tt.stage {
				t.Fatalf("warning = %+v, want %s/%s", w, tt.kind, tt.stage)
			}
		})
	}
}

func TestWallNearEastOrWestBorder(t *testing.T) {
	v := fixed(7500)
	if w := v.Frame(0, 0).Wall; w != nil {
		t.Fatalf("wall drawn far from the border")
	}
	east := v.Frame(7000, 0).Wall
	if east == nil || !east.East || east.PlaneX != 7497.5 {
		t.Fatalf("east wall = %+v", east)
	}
	if len(east.Segments) != 256 {
		t.Fatalf("east wall has %d segments", len(east.Segments))
	}
	if first := east.Segments[0]; first.Z0 != -2048 || first.Z1 != -2032 {
		t.Fatalf("first segment %+v", first)
	}
	west := v.Frame(-7400, 0).Wall
	if west == nil || west.East || west.PlaneX != -7497.5 {
		t.Fatalf("west wall = %+v", west)
	}
}

func TestStormFog(t *testing.T) {
	v := fixed(7500)
	tests := []struct {
		x    float64
		want float64
	}{
		{0, 0},
		{7300, 48},
		{-7450, 10},
	}
	for _, tt := range tests {
		if got := v.Frame(tt.x, 0).StormFogEnd; got != tt.want {
			t.Fatalf("x=%v: storm fog %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestStageText(t *testing.T) {
	for stage := PolarNone; stage <= PolarLethal; stage++ {
		text, _ := stage.MarshalText()
		var got PolarStage
		if err := got.UnmarshalText(text); err != nil || got != stage {
			t.Fatalf("polar %s: got %s, %v", stage, got, err)
		}
	}
	var s StormStage
	if err := s.UnmarshalText([]byte("level_2")); err != nil || s != StormLevel2 {
		t.Fatalf("storm stage = %s, %v", s, err)
	}
	if err := s.UnmarshalText([]byte("hurricane")); err == nil {
		t.Fatalf("expected error for unknown stage")
	}
}

func TestNonFinitePositionHasNoEffect(t *testing.T) {
	v := fixed(7500)
	for _, pos := range [][2]float64{
		{math.NaN(), 0},
		{0, math.NaN()},
		{math.Inf(1), 100},
		{100, math.Inf(-1)},
	} {
		f := v.Frame(pos[0], pos[1])
		if f.Active() || f.Warning != nil || f.Wall != nil {
			t.Fatalf("Frame(%v, %v) = %+v, want zero frame", pos[0], pos[1], f)
		}
		if _, err := json.Marshal(f); err != nil {
			t.Fatalf("marshal frame for (%v, %v): %v", pos[0], pos[1], err)
		}
	}
}

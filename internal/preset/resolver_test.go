package preset

import (
	"bytes"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func TestRadiusFor(t *testing.T) {
	tests := []struct {
		name        string
		id          ID
		wantRadius  int
		wantMatched bool
	}{
		{name: "legacy overworld", id: Overworld, wantRadius: 15000, wantMatched: true},
		{name: "xsmall", id: OverworldXSmall, wantRadius: 3750, wantMatched: true},
		{name: "small", id: OverworldSmall, wantRadius: 5000, wantMatched: true},
		{name: "regular", id: OverworldRegular, wantRadius: 7500, wantMatched: true},
		{name: "large", id: OverworldLarge, wantRadius: 10000, wantMatched: true},
		{name: "massive", id: OverworldMassive, wantRadius: 20000, wantMatched: true},
		{name: "unknown latitude id", id: "globe:overworld_tiny", wantRadius: 7500},
		{name: "vanilla world", id: "minecraft:overworld", wantRadius: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			radius, matched := RadiusFor(tt.id)
			if radius != tt.wantRadius || matched != tt.wantMatched {
				t.Fatalf("RadiusFor(%q) = (%d, %v), want (%d, %v)", tt.id, radius, matched, tt.wantRadius, tt.wantMatched)
			}
		})
	}
}

func TestAllOrderedByRadius(t *testing.T) {
	all := All()
	if len(all) != 6 {
		t.Fatalf("expected 6 presets, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].RadiusBlocks >= all[i].RadiusBlocks {
			t.Fatalf("presets not ordered: %v", all)
		}
	}
}

func TestResolverNotReadyIsNotCached(t *testing.T) {
	var ready atomic.Bool
	var calls atomic.Int32
	r := NewResolver(SettingsFunc(func() (ID, bool) {
		calls.Add(1)
		if !ready.Load() {
			return "", false
		}
		return OverworldLarge, true
	}), nil)

	if got := r.ActiveRadiusBlocks(); got != 0 {
		t.Fatalf("expected unresolved radius before init, got %d", got)
	}
	ready.Store(true)
	if got := r.ActiveRadiusBlocks(); got != 10000 {
		t.Fatalf("expected radius 10000 after init, got %d", got)
	}
	before := calls.Load()
	if got := r.ActiveRadiusBlocks(); got != 10000 {
		t.Fatalf("second resolve changed radius: %d", got)
	}
	if calls.Load() != before {
		t.Fatal("resolved radius should be served from the cache")
	}
}

func TestResolverPassThroughForOtherWorlds(t *testing.T) {
	r := NewResolver(Static("minecraft:overworld"), nil)
	if radius, ok := r.Resolve(); ok || radius != 0 {
		t.Fatalf("expected not applicable, got (%d, %v)", radius, ok)
	}
	if r.ActiveRadiusBlocks() != 0 {
		t.Fatal("expected unresolved radius for non-latitude world")
	}
}

func TestResolverWarnsOnceForUnknownPreset(t *testing.T) {
	var buf bytes.Buffer
	r := NewResolver(Static("globe:overworld_huge"), log.New(&buf, "", 0))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := r.ActiveRadiusBlocks(); got != 7500 {
				t.Errorf("expected default radius, got %d", got)
			}
		}()
	}
	wg.Wait()

	if n := strings.Count(buf.String(), "unknown latitude preset"); n != 1 {
		t.Fatalf("expected exactly one warning, got %d: %q", n, buf.String())
	}
}

func TestResolversAreIndependent(t *testing.T) {
	small := NewResolver(Static(OverworldSmall), nil)
	massive := NewResolver(Static(OverworldMassive), nil)
	if small.ActiveRadiusBlocks() != 5000 || massive.ActiveRadiusBlocks() != 20000 {
		t.Fatalf("resolvers leaked state: small=%d massive=%d", small.ActiveRadiusBlocks(), massive.ActiveRadiusBlocks())
	}
}

func TestNilResolverIsUnresolved(t *testing.T) {
	var r *Resolver
	if r.ActiveRadiusBlocks() != 0 {
		t.Fatal("nil resolver should be unresolved")
	}
}

package guard

import (
	"fmt"

	"globe/internal/diagnostics"
	"globe/internal/preset"
	"globe/internal/terrain"
	"globe/internal/world"
)

// CarveGuard cancels cave carving in the polar caps of one preset.
type CarveGuard struct {
	preset preset.ID
	cutoff int
	events *diagnostics.Sampled
}

func (g *CarveGuard) BeforeCarve(ctx *terrain.CarveContext) bool {
	if ctx == nil || ctx.Resolver == nil || g.cutoff <= 0 {
		return true
	}
	id, ok := ctx.Resolver.SettingsID()
	if !ok || id != g.preset {
		return true
	}
	z := nearestEquator(ctx.Bounds)
	if z < g.cutoff {
		return true
	}
	if g.events.Inc() {
		g.events.Sample(fmt.Sprintf("carve cancelled for chunk %s (|z| %d >= %d)", ctx.Chunk, z, g.cutoff))
	}
	return false
}

// nearestEquator returns the smallest |z| covered by b, so a chunk is only
// cancelled when all of it lies beyond the cutoff.
func nearestEquator(b world.Bounds) int {
	if b.Min.Z <= 0 && b.Max.Z >= 0 {
		return 0
	}
	lo, hi := abs(b.Min.Z), abs(b.Max.Z)
	if lo < hi {
		return lo
	}
	return hi
}

// DripstoneGuard keeps the three dripstone features underground: an origin
// within buffer blocks of the surface or with open sky above is refused.
type DripstoneGuard struct {
	buffer int
	events *diagnostics.Sampled
}

func isDripstone(feature string) bool {
	switch feature {
	case terrain.FeaturePointedDripstone, terrain.FeatureDripstoneCluster, terrain.FeatureLargeDripstone:
		return true
	}
	return false
}

func (g *DripstoneGuard) BeforeFeature(ctx *terrain.FeatureContext) bool {
	if ctx == nil || !isDripstone(ctx.Feature) || ctx.Region == nil {
		return true
	}
	origin := ctx.Origin
	reason := ""
	if surface := ctx.Region.SurfaceY(origin.X, origin.Z); surface >= 0 && origin.Y >= surface-g.buffer {
		reason = fmt.Sprintf("within %d of surface %d", g.buffer, surface)
	} else if ctx.Region.SkyVisible(origin) {
		reason = "sky visible"
	}
	if reason == "" {
		return true
	}
	if g.events.Inc() {
		g.events.Sample(fmt.Sprintf("%s cancelled at %d,%d,%d: %s", ctx.Feature, origin.X, origin.Y, origin.Z, reason))
	}
	return false
}

// FreezeGuard cancels the surface freeze feature in warm zones.
type FreezeGuard struct {
	events *diagnostics.Sampled
}

func (g *FreezeGuard) BeforeFeature(ctx *terrain.FeatureContext) bool {
	if ctx == nil || ctx.Feature != terrain.FeatureFreezeTopLayer {
		return true
	}
	zone, warm, ok := warmAt(ctx.Resolver, ctx.Origin.Z)
	if !ok || !warm {
		return true
	}
	if g.events.Inc() {
		g.events.Sample(fmt.Sprintf("freeze cancelled at %d,%d (%s)", ctx.Origin.X, ctx.Origin.Z, zone))
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

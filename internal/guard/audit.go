package guard

import (
	"fmt"

	"globe/internal/biome"
	"globe/internal/diagnostics"
	"globe/internal/latitude"
	"globe/internal/terrain"
	"globe/internal/world"
)

// BiomeAudit counts populated chunks and reports snowy biome cells that
// ended up in a warm zone. It never changes the grid.
type BiomeAudit struct {
	registry  *biome.Registry
	populated *diagnostics.Counter
	warmSnowy *diagnostics.Sampled
}

func (a *BiomeAudit) OnBiomePopulated(ctx *terrain.WriteContext, chunk *world.Chunk) {
	if chunk == nil {
		return
	}
	a.populated.Inc()
	if ctx == nil {
		return
	}
	radius, ok := ctx.Resolver.Resolve()
	if !ok {
		return
	}
	qw, qh, qd := chunk.BiomeGridSize()
	for qz := 0; qz < qd; qz++ {
		z := chunk.Bounds.Min.Z + qz*world.QuartSize + world.QuartSize/2
		if zone := latitude.ZoneForRadius(radius, z); !zone.Warm() {
			continue
		}
		for qx := 0; qx < qw; qx++ {
			for qy := 0; qy < qh; qy++ {
				id := chunk.Biome(qx, qy, qz)
				b, found := a.registry.Lookup(id)
				if !found || !b.Snowy {
					continue
				}
				if a.warmSnowy.Inc() {
					a.warmSnowy.Sample(fmt.Sprintf("%s at quart %d,%d,%d of chunk %s", id, qx, qy, qz, chunk.Key))
				}
			}
		}
	}
}

package terrain

import "globe/internal/world"

const (
	caveFloorY     = 5
	caveRoofMargin = 6
	caveScaleXZ    = 16.0
	caveScaleY     = 10.0
)

// carve hollows out caves where three-dimensional noise exceeds the
// configured threshold. It never opens a column within caveRoofMargin blocks
// of its surface.
func (g *Generator) carve(proto *ProtoChunk) int {
	threshold := g.cfg.CaveThreshold
	if threshold >= 1 {
		return 0
	}
	dim := proto.Dimensions()
	bounds := proto.Bounds()
	seed := g.seed ^ saltCave
	carved := 0

	for z := 0; z < dim.Depth; z++ {
		for x := 0; x < dim.Width; x++ {
			roof := g.terrainTop(proto, x, z) - caveRoofMargin
			for y := caveFloorY; y < roof; y++ {
				gx := float64(bounds.Min.X+x) / caveScaleXZ
				gy := float64(bounds.Min.Y+y) / caveScaleY
				gz := float64(bounds.Min.Z+z) / caveScaleXZ
				if valueNoise3(gx, gy, gz, seed) <= threshold {
					continue
				}
				b := proto.Block(x, y, z)
				if b == world.Bedrock || b.IsAir() || b.IsFluid() {
					continue
				}
				proto.SetBlock(x, y, z, world.Air)
				carved++
			}
		}
	}
	return carved
}

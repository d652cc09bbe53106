// Package world holds chunk state, block storage and the chunk manager of a
// generator process.
package world

import "fmt"

// Block is a block state. The zero value is air.
type Block uint16

const (
	Air Block = iota
	Stone
	Deepslate
	Bedrock
	Dirt
	CoarseDirt
	Grass
	Podzol
	Mud
	Sand
	RedSand
	Sandstone
	Terracotta
	Gravel
	Clay
	Calcite
	Water
	Ice
	PackedIce
	BlueIce
	SnowLayer
	SnowBlock
	PowderSnow
	PointedDripstone
	DripstoneBlock
	CoalOre
	IronOre
	CopperOre
	GoldOre
	DiamondOre
	Mycelium
	MossBlock
	blockCount
)

var blockNames = [...]string{
	Air:              "air",
	Stone:            "stone",
	Deepslate:        "deepslate",
	Bedrock:          "bedrock",
	Dirt:             "dirt",
	CoarseDirt:       "coarse_dirt",
	Grass:            "grass_block",
	Podzol:           "podzol",
	Mud:              "mud",
	Sand:             "sand",
	RedSand:          "red_sand",
	Sandstone:        "sandstone",
	Terracotta:       "terracotta",
	Gravel:           "gravel",
	Clay:             "clay",
	Calcite:          "calcite",
	Water:            "water",
	Ice:              "ice",
	PackedIce:        "packed_ice",
	BlueIce:          "blue_ice",
	SnowLayer:        "snow",
	SnowBlock:        "snow_block",
	PowderSnow:       "powder_snow",
	PointedDripstone: "pointed_dripstone",
	DripstoneBlock:   "dripstone_block",
	CoalOre:          "coal_ore",
	IronOre:          "iron_ore",
	CopperOre:        "copper_ore",
	GoldOre:          "gold_ore",
	DiamondOre:       "diamond_ore",
	Mycelium:         "mycelium",
	MossBlock:        "moss_block",
}

func (b Block) String() string {
	if b < blockCount {
		return blockNames[b]
	}
	return fmt.Sprintf("block(%d)", uint16(b))
}

// ParseBlock resolves a block by its name.
func ParseBlock(name string) (Block, error) {
	for b, n := range blockNames {
		if n == name {
			return Block(b), nil
		}
	}
	return Air, fmt.Errorf("unknown block %q", name)
}

func (b Block) IsAir() bool { return b == Air }

func (b Block) IsFluid() bool { return b == Water }

// IsSolid reports whether the block stops light and motion.
func (b Block) IsSolid() bool {
	switch b {
	case Air, Water, SnowLayer, PointedDripstone, PowderSnow:
		return false
	}
	return b < blockCount
}

// IsSnow covers every snow state, including the thin layer.
func (b Block) IsSnow() bool {
	return b == SnowLayer || b == SnowBlock || b == PowderSnow
}

func (b Block) IsIce() bool {
	return b == Ice || b == PackedIce || b == BlueIce
}

// IsFrozen reports snow or ice.
func (b Block) IsFrozen() bool { return b.IsSnow() || b.IsIce() }

// IsOre reports ore blocks.
func (b Block) IsOre() bool { return b >= CoalOre && b <= DiamondOre }

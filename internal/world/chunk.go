package world

import (
	"fmt"
	"log"
	"sort"
	"sync"
)

// QuartSize is the edge length of one biome cell in blocks.
const QuartSize = 4

// Chunk stores the block columns and the biome grid of one chunk.
type Chunk struct {
	Key       ChunkCoord
	Bounds    Bounds
	mu        sync.RWMutex
	store     BlockStorage
	dimension Dimensions
	biomes    []string
}

func NewChunk(key ChunkCoord, bounds Bounds, dim Dimensions) *Chunk {
	store, err := getStorageProvider().NewStorage(key, bounds, dim)
	if err != nil {
		log.Printf("chunk storage unavailable for %v: %v", key, err)
		store, _ = newMemoryStorageProvider().NewStorage(key, bounds, dim)
	}
	return &Chunk{
		Key:       key,
		Bounds:    bounds,
		store:     store,
		dimension: dim,
	}
}

func (c *Chunk) columnIndex(localX, localZ int) int {
	return localZ*c.dimension.Width + localX
}

func trimColumn(column []Block) []Block {
	end := len(column)
	for end > 0 && column[end-1].IsAir() {
		end--
	}
	return column[:end]
}

func (c *Chunk) inColumn(localX, localZ int) bool {
	return localX >= 0 && localZ >= 0 && localX < c.dimension.Width && localZ < c.dimension.Depth
}

func (c *Chunk) GlobalToLocal(coord BlockCoord) (int, int, int, bool) {
	if coord.X < c.Bounds.Min.X || coord.X > c.Bounds.Max.X ||
		coord.Y < c.Bounds.Min.Y || coord.Y > c.Bounds.Max.Y ||
		coord.Z < c.Bounds.Min.Z || coord.Z > c.Bounds.Max.Z {
		return 0, 0, 0, false
	}
	return coord.X - c.Bounds.Min.X,
		coord.Y - c.Bounds.Min.Y,
		coord.Z - c.Bounds.Min.Z, true
}

// Column returns a copy of the stored column, bottom first, trimmed of
// trailing air.
func (c *Chunk) Column(localX, localZ int) []Block {
	if !c.inColumn(localX, localZ) {
		return nil
	}
	c.mu.RLock()
	store := c.store
	c.mu.RUnlock()
	if store == nil {
		return nil
	}
	column, ok, err := store.LoadColumn(c.columnIndex(localX, localZ))
	if err != nil {
		log.Printf("chunk %v load column (%d,%d): %v", c.Key, localX, localZ, err)
		return nil
	}
	if !ok {
		return nil
	}
	return column
}

func (c *Chunk) LocalBlock(localX, localY, localZ int) (Block, bool) {
	if !c.inColumn(localX, localZ) || localY < 0 || localY >= c.dimension.Height {
		return Air, false
	}
	column := c.Column(localX, localZ)
	if localY >= len(column) {
		return Air, true
	}
	return column[localY], true
}

func (c *Chunk) SetLocalBlock(localX, localY, localZ int, block Block) bool {
	if !c.inColumn(localX, localZ) || localY < 0 || localY >= c.dimension.Height {
		return false
	}
	column := c.Column(localX, localZ)
	if localY >= len(column) {
		if block.IsAir() {
			return true
		}
		expanded := make([]Block, localY+1)
		copy(expanded, column)
		column = expanded
	}
	column[localY] = block
	return c.SetColumnBlocks(localX, localZ, column)
}

// SetColumnBlocks replaces the entire vertical column at the given local coordinates.
func (c *Chunk) SetColumnBlocks(localX, localZ int, blocks []Block) bool {
	if !c.inColumn(localX, localZ) {
		return false
	}
	idx := c.columnIndex(localX, localZ)
	column := make([]Block, len(blocks))
	copy(column, blocks)
	column = trimColumn(column)
	c.mu.Lock()
	store := c.store
	c.mu.Unlock()
	if store == nil {
		return false
	}
	var err error
	if len(column) == 0 {
		err = store.Delete(idx)
	} else {
		err = store.SaveColumn(idx, column)
	}
	if err != nil {
		log.Printf("chunk %v persist column %d: %v", c.Key, idx, err)
		return false
	}
	return true
}

// SurfaceY returns the global height of the highest non-air block in the
// column, or -1 for an empty column.
func (c *Chunk) SurfaceY(localX, localZ int) int {
	return c.Bounds.Min.Y + len(c.Column(localX, localZ)) - 1
}

// ForEachBlock iterates over non-air blocks, invoking fn with global coordinates.
func (c *Chunk) ForEachBlock(fn func(global BlockCoord, block Block) bool) {
	c.mu.RLock()
	store := c.store
	bounds := c.Bounds
	dim := c.dimension
	c.mu.RUnlock()

	if store == nil {
		return
	}

	if err := store.ForEach(func(idx int, column []Block) bool {
		localX := idx % dim.Width
		localZ := idx / dim.Width
		for localY, block := range column {
			if block.IsAir() {
				continue
			}
			global := BlockCoord{
				X: bounds.Min.X + localX,
				Y: bounds.Min.Y + localY,
				Z: bounds.Min.Z + localZ,
			}
			if !fn(global, block) {
				return false
			}
		}
		return true
	}); err != nil {
		log.Printf("chunk %v iterate blocks: %v", c.Key, err)
	}
}

// CountBlocks tallies every non-air block by state.
func (c *Chunk) CountBlocks() map[Block]int {
	counts := make(map[Block]int)
	c.ForEachBlock(func(_ BlockCoord, block Block) bool {
		counts[block]++
		return true
	})
	return counts
}

func (c *Chunk) Dimensions() Dimensions {
	return c.dimension
}

// HasStoredBlocks reports whether the chunk already has any persisted block data.
func (c *Chunk) HasStoredBlocks() bool {
	c.mu.RLock()
	store := c.store
	c.mu.RUnlock()
	if store == nil {
		return false
	}

	hasBlocks := false
	if err := store.ForEach(func(_ int, column []Block) bool {
		if len(trimColumn(column)) > 0 {
			hasBlocks = true
			return false
		}
		return true
	}); err != nil {
		log.Printf("chunk %v check stored blocks: %v", c.Key, err)
	}
	return hasBlocks
}

// BiomeGridSize returns the quart dimensions of the biome grid.
func (c *Chunk) BiomeGridSize() (qw, qh, qd int) {
	return ceilQuart(c.dimension.Width), ceilQuart(c.dimension.Height), ceilQuart(c.dimension.Depth)
}

func ceilQuart(v int) int {
	return (v + QuartSize - 1) / QuartSize
}

func (c *Chunk) biomeIndex(qx, qy, qz int) (int, bool) {
	qw, qh, qd := c.BiomeGridSize()
	if qx < 0 || qy < 0 || qz < 0 || qx >= qw || qy >= qh || qz >= qd {
		return 0, false
	}
	return (qy*qd+qz)*qw + qx, true
}

// SetBiomes replaces the biome grid and persists it.
func (c *Chunk) SetBiomes(grid []string) error {
	qw, qh, qd := c.BiomeGridSize()
	if len(grid) != qw*qh*qd {
		return fmt.Errorf("chunk %v biome grid has %d cells, want %d", c.Key, len(grid), qw*qh*qd)
	}
	dup := make([]string, len(grid))
	copy(dup, grid)

	c.mu.Lock()
	c.biomes = dup
	store := c.store
	c.mu.Unlock()

	if store == nil {
		return nil
	}
	if err := store.SaveBiomes(dup); err != nil {
		return fmt.Errorf("chunk %v persist biomes: %w", c.Key, err)
	}
	return nil
}

// LoadBiomes reads the biome grid back from storage.
func (c *Chunk) LoadBiomes() (bool, error) {
	c.mu.RLock()
	store := c.store
	c.mu.RUnlock()
	if store == nil {
		return false, nil
	}
	grid, ok, err := store.LoadBiomes()
	if err != nil || !ok {
		return false, err
	}
	c.mu.Lock()
	c.biomes = grid
	c.mu.Unlock()
	return true, nil
}

// Biome returns the biome id of a local quart cell.
func (c *Chunk) Biome(qx, qy, qz int) string {
	idx, ok := c.biomeIndex(qx, qy, qz)
	if !ok {
		return ""
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if idx >= len(c.biomes) {
		return ""
	}
	return c.biomes[idx]
}

// BiomeAt returns the biome id at a global block position.
func (c *Chunk) BiomeAt(coord BlockCoord) string {
	x, y, z, ok := c.GlobalToLocal(coord)
	if !ok {
		return ""
	}
	return c.Biome(x/QuartSize, y/QuartSize, z/QuartSize)
}

// BiomeCount is one entry of a biome histogram.
type BiomeCount struct {
	ID    string `json:"id"`
	Cells int    `json:"cells"`
}

// SurfaceBiomes counts the biome of each column at its surface, most common first.
func (c *Chunk) SurfaceBiomes() []BiomeCount {
	counts := make(map[string]int)
	qw, _, qd := c.BiomeGridSize()
	for qz := 0; qz < qd; qz++ {
		for qx := 0; qx < qw; qx++ {
			surface := c.SurfaceY(qx*QuartSize, qz*QuartSize) - c.Bounds.Min.Y
			if surface < 0 {
				surface = 0
			}
			if id := c.Biome(qx, surface/QuartSize, qz); id != "" {
				counts[id]++
			}
		}
	}
	out := make([]BiomeCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, BiomeCount{ID: id, Cells: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cells != out[j].Cells {
			return out[i].Cells > out[j].Cells
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Close releases any resources held by the chunk's underlying storage.
func (c *Chunk) Close() error {
	c.mu.Lock()
	store := c.store
	c.mu.Unlock()
	if store == nil {
		return nil
	}
	return store.Close()
}

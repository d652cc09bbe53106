// Package worldmap maps block positions to the worker that owns them.
package worldmap

import (
	"fmt"
	"sort"
	"sync"

	"globe/internal/central/config"
	"globe/internal/world"
)

type WorkerInfo struct {
	ID            string `json:"id"`
	OriginChunkX  int    `json:"originChunkX"`
	OriginChunkZ  int    `json:"originChunkZ"`
	ChunksPerAxis int    `json:"chunksPerAxis"`
	DebugAddress  string `json:"debugAddress,omitempty"`
	HTTPAddress   string `json:"httpAddress,omitempty"`
}

func (w WorkerInfo) contains(chunk world.ChunkCoord) bool {
	return chunk.X >= w.OriginChunkX &&
		chunk.Z >= w.OriginChunkZ &&
		chunk.X < w.OriginChunkX+w.ChunksPerAxis &&
		chunk.Z < w.OriginChunkZ+w.ChunksPerAxis
}

type Index struct {
	mu         sync.RWMutex
	chunkWidth int
	chunkDepth int
	entries    []WorkerInfo
}

func NewIndex() *Index {
	return &Index{
		entries: make([]WorkerInfo, 0),
	}
}

func (idx *Index) LoadFromConfig(cfg *config.Config) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.chunkWidth = cfg.World.ChunkWidth
	idx.chunkDepth = cfg.World.ChunkDepth
	idx.entries = idx.entries[:0]
	for _, w := range cfg.Workers {
		idx.entries = append(idx.entries, WorkerInfo{
			ID:            w.ID,
			OriginChunkX:  w.GlobalOrigin.ChunkX,
			OriginChunkZ:  w.GlobalOrigin.ChunkZ,
			ChunksPerAxis: w.ChunksPerAxis,
			DebugAddress:  w.DebugAddress,
			HTTPAddress:   w.HTTPAddress,
		})
	}
	sort.Slice(idx.entries, func(i, j int) bool { return idx.entries[i].ID < idx.entries[j].ID })
}

// defaultChunkSize is used until LoadFromConfig supplies the dimensions.
const defaultChunkSize = 16

// Chunk returns the chunk holding a block column.
func (idx *Index) Chunk(blockX, blockZ int) world.ChunkCoord {
	idx.mu.RLock()
	width, depth := idx.chunkWidth, idx.chunkDepth
	idx.mu.RUnlock()
	if width <= 0 {
		width = defaultChunkSize
	}
	if depth <= 0 {
		depth = defaultChunkSize
	}
	return world.ChunkCoord{
		X: world.FloorDiv(blockX, width),
		Z: world.FloorDiv(blockZ, depth),
	}
}

// Lookup returns the worker owning the block column at (blockX, blockZ).
func (idx *Index) Lookup(blockX, blockZ int) (WorkerInfo, error) {
	chunk := idx.Chunk(blockX, blockZ)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	for _, entry := range idx.entries {
		if entry.contains(chunk) {
			return entry, nil
		}
	}
	return WorkerInfo{}, fmt.Errorf("no worker found for chunk %s", chunk)
}

func (idx *Index) Workers() []WorkerInfo {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]WorkerInfo, len(idx.entries))
	copy(out, idx.entries)
	return out
}

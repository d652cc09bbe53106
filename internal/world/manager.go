package world

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
)

// Generator populates a freshly opened chunk that has no stored blocks.
type Generator interface {
	Generate(ctx context.Context, chunk *Chunk) error
}

// Manager keeps the authoritative chunk state for this server.
type Manager struct {
	region    ServerRegion
	generator Generator

	mu      sync.Mutex
	chunks  map[ChunkCoord]*Chunk
	pending map[ChunkCoord]*pendingChunk
}

type pendingChunk struct {
	done  chan struct{}
	chunk *Chunk
	err   error
}

func NewManager(region ServerRegion, generator Generator) *Manager {
	return &Manager{
		region:    region,
		generator: generator,
		chunks:    make(map[ChunkCoord]*Chunk),
		pending:   make(map[ChunkCoord]*pendingChunk),
	}
}

func (m *Manager) Region() ServerRegion {
	return m.region
}

// Chunk returns the cached chunk, loading it from storage or generating it
// on first access. Concurrent callers for the same chunk share one load.
func (m *Manager) Chunk(ctx context.Context, coord ChunkCoord) (*Chunk, error) {
	if !m.region.ContainsGlobalChunk(coord) {
		return nil, fmt.Errorf("chunk %v outside server region", coord)
	}

	m.mu.Lock()
	if ch, ok := m.chunks[coord]; ok {
		m.mu.Unlock()
		return ch, nil
	}
	if p, ok := m.pending[coord]; ok {
		m.mu.Unlock()
		select {
		case <-p.done:
			return p.chunk, p.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	p := &pendingChunk{done: make(chan struct{})}
	m.pending[coord] = p
	m.mu.Unlock()

	p.chunk, p.err = m.open(ctx, coord)

	m.mu.Lock()
	delete(m.pending, coord)
	if p.err == nil {
		m.chunks[coord] = p.chunk
	}
	m.mu.Unlock()
	close(p.done)

	return p.chunk, p.err
}

func (m *Manager) open(ctx context.Context, coord ChunkCoord) (*Chunk, error) {
	bounds, err := m.region.ChunkBounds(coord)
	if err != nil {
		return nil, err
	}
	ch := NewChunk(coord, bounds, m.region.ChunkDimension)

	if ch.HasStoredBlocks() {
		if _, err := ch.LoadBiomes(); err != nil {
			log.Printf("chunk %v load biomes: %v", coord, err)
		}
		return ch, nil
	}

	if m.generator == nil {
		return ch, nil
	}
	if err := m.generator.Generate(ctx, ch); err != nil {
		ch.Close()
		return nil, fmt.Errorf("generate chunk %v: %w", coord, err)
	}
	return ch, nil
}

func (m *Manager) ChunkForBlock(ctx context.Context, block BlockCoord) (*Chunk, error) {
	chunkCoord, ok := m.region.LocateBlock(block)
	if !ok {
		return nil, fmt.Errorf("block %v outside region bounds", block)
	}
	return m.Chunk(ctx, chunkCoord)
}

// Loaded lists the cached chunk coordinates in row-major order.
func (m *Manager) Loaded() []ChunkCoord {
	m.mu.Lock()
	out := make([]ChunkCoord, 0, len(m.chunks))
	for coord := range m.chunks {
		out = append(out, coord)
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Z != out[j].Z {
			return out[i].Z < out[j].Z
		}
		return out[i].X < out[j].X
	})
	return out
}

// Close releases every cached chunk.
func (m *Manager) Close() error {
	m.mu.Lock()
	chunks := m.chunks
	m.chunks = make(map[ChunkCoord]*Chunk)
	m.mu.Unlock()

	var firstErr error
	for coord, ch := range chunks {
		if err := ch.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close chunk %v: %w", coord, err)
		}
	}
	return firstErr
}

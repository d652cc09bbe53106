package world

import (
	"fmt"
	"sync"
)

type memoryStorageProvider struct{}

func newMemoryStorageProvider() StorageProvider {
	return memoryStorageProvider{}
}

func (memoryStorageProvider) NewStorage(_ ChunkCoord, _ Bounds, dim Dimensions) (BlockStorage, error) {
	n := dim.Width * dim.Depth
	if n < 0 {
		n = 0
	}
	return &memoryBlockStorage{columns: make([][]Block, n)}, nil
}

// memoryBlockStorage keeps one slot per column, sized from the chunk
// dimensions. A nil slot has never been saved; a saved column is never nil,
// even when empty.
type memoryBlockStorage struct {
	mu      sync.RWMutex
	columns [][]Block
	biomes  []string
}

func (m *memoryBlockStorage) slot(index int) error {
	if index < 0 {
		return fmt.Errorf("negative column index %d", index)
	}
	return nil
}

func (m *memoryBlockStorage) LoadColumn(index int) ([]Block, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.slot(index); err != nil {
		return nil, false, err
	}
	if index >= len(m.columns) {
		return nil, false, nil
	}
	column := m.columns[index]
	if column == nil {
		return nil, false, nil
	}
	return append([]Block(nil), column...), true, nil
}

func (m *memoryBlockStorage) SaveColumn(index int, blocks []Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.slot(index); err != nil {
		return err
	}
	if index >= len(m.columns) {
		m.columns = append(m.columns, make([][]Block, index+1-len(m.columns))...)
	}
	m.columns[index] = append(make([]Block, 0, len(blocks)), blocks...)
	return nil
}

func (m *memoryBlockStorage) Delete(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.slot(index); err != nil {
		return err
	}
	if index < len(m.columns) {
		m.columns[index] = nil
	}
	return nil
}

// ForEach visits saved columns in index order.
func (m *memoryBlockStorage) ForEach(fn func(index int, blocks []Block) bool) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for idx, column := range m.columns {
		if column == nil {
			continue
		}
		if !fn(idx, append([]Block(nil), column...)) {
			break
		}
	}
	return nil
}

func (m *memoryBlockStorage) LoadBiomes() ([]string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.biomes == nil {
		return nil, false, nil
	}
	return append([]string(nil), m.biomes...), true, nil
}

func (m *memoryBlockStorage) SaveBiomes(grid []string) error {
	m.mu.Lock()
	m.biomes = append(make([]string, 0, len(grid)), grid...)
	m.mu.Unlock()
	return nil
}

func (m *memoryBlockStorage) Close() error { return nil }

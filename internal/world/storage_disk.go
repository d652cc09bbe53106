package world

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
)

const (
	diskOpDelete byte = 0
	diskOpSet    byte = 1
	diskOpBiomes byte = 2
)

const diskHeaderSize = 9

// DiskStorageProvider keeps one append-only log file per chunk.
type DiskStorageProvider struct {
	basePath string
	region   ServerRegion
}

// NewDiskStorageProvider creates a provider that persists chunk data beneath basePath.
func NewDiskStorageProvider(basePath string, region ServerRegion) *DiskStorageProvider {
	return &DiskStorageProvider{
		basePath: basePath,
		region:   region,
	}
}

func (p *DiskStorageProvider) NewStorage(key ChunkCoord, bounds Bounds, dim Dimensions) (BlockStorage, error) {
	path, err := p.chunkPath(key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create chunk directory: %w", err)
	}
	return newDiskBlockStorage(path)
}

func (p *DiskStorageProvider) chunkPath(key ChunkCoord) (string, error) {
	local, err := p.region.GlobalToLocalChunk(key)
	if err != nil {
		return "", err
	}
	index := local.Z*p.region.ChunksPerAxis + local.X + 1
	dir := filepath.Join(p.basePath, strconv.Itoa(key.X), strconv.Itoa(key.Z))
	filename := fmt.Sprintf("chunk%02d.bin", index)
	return filepath.Join(dir, filename), nil
}

type diskRecordMeta struct {
	offset int64
	size   uint32
}

type diskBlockStorage struct {
	file    *os.File
	mu      sync.RWMutex
	records map[int]diskRecordMeta
	biomes  *diskRecordMeta
}

func newDiskBlockStorage(path string) (*diskBlockStorage, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open chunk file: %w", err)
	}
	storage := &diskBlockStorage{
		file:    f,
		records: make(map[int]diskRecordMeta),
	}
	if err := storage.loadIndex(); err != nil {
		f.Close()
		return nil, err
	}
	return storage, nil
}

func (s *diskBlockStorage) loadIndex() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind chunk file: %w", err)
	}

	header := make([]byte, diskHeaderSize)
	var offset int64
	for {
		if _, err := io.ReadFull(s.file, header); err != nil {
			if err == io.EOF {
				break
			}
			if err == io.ErrUnexpectedEOF {
				return fmt.Errorf("truncated chunk header: %w", err)
			}
			return fmt.Errorf("read chunk header: %w", err)
		}
		op := header[0]
		index := int(binary.LittleEndian.Uint32(header[1:5]))
		size := binary.LittleEndian.Uint32(header[5:9])
		meta := diskRecordMeta{offset: offset, size: size}
		offset += int64(len(header)) + int64(size)

		if _, err := s.file.Seek(int64(size), io.SeekCurrent); err != nil {
			return fmt.Errorf("seek past payload: %w", err)
		}
		switch op {
		case diskOpSet:
			s.records[index] = meta
		case diskOpBiomes:
			s.biomes = &meta
		default:
			delete(s.records, index)
		}
	}

	return nil
}

func (s *diskBlockStorage) readPayload(meta diskRecordMeta, want byte, out any) (bool, error) {
	header := make([]byte, diskHeaderSize)
	if _, err := s.file.ReadAt(header, meta.offset); err != nil {
		return false, fmt.Errorf("read header at %d: %w", meta.offset, err)
	}
	if header[0] != want {
		return false, nil
	}
	payload := make([]byte, binary.LittleEndian.Uint32(header[5:9]))
	if _, err := s.file.ReadAt(payload, meta.offset+diskHeaderSize); err != nil {
		return false, fmt.Errorf("read payload: %w", err)
	}
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(out); err != nil {
		return false, fmt.Errorf("decode record: %w", err)
	}
	return true, nil
}

func (s *diskBlockStorage) appendRecord(op byte, index int, value any) (diskRecordMeta, error) {
	var payload bytes.Buffer
	if value != nil {
		if err := gob.NewEncoder(&payload).Encode(value); err != nil {
			return diskRecordMeta{}, fmt.Errorf("encode record: %w", err)
		}
	}

	header := make([]byte, diskHeaderSize)
	header[0] = op
	binary.LittleEndian.PutUint32(header[1:5], uint32(index))
	binary.LittleEndian.PutUint32(header[5:9], uint32(payload.Len()))

	offset, err := s.file.Seek(0, io.SeekEnd)
	if err != nil {
		return diskRecordMeta{}, fmt.Errorf("seek chunk end: %w", err)
	}
	if _, err := s.file.Write(header); err != nil {
		return diskRecordMeta{}, fmt.Errorf("write header: %w", err)
	}
	if _, err := s.file.Write(payload.Bytes()); err != nil {
		return diskRecordMeta{}, fmt.Errorf("write payload: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return diskRecordMeta{}, fmt.Errorf("sync chunk file: %w", err)
	}
	return diskRecordMeta{offset: offset, size: uint32(payload.Len())}, nil
}

func (s *diskBlockStorage) LoadColumn(index int) ([]Block, bool, error) {
	s.mu.RLock()
	meta, ok := s.records[index]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	var blocks []Block
	ok, err := s.readPayload(meta, diskOpSet, &blocks)
	if err != nil || !ok {
		return nil, false, err
	}
	return blocks, true, nil
}

func (s *diskBlockStorage) SaveColumn(index int, blocks []Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta, err := s.appendRecord(diskOpSet, index, blocks)
	if err != nil {
		return err
	}
	s.records[index] = meta
	return nil
}

func (s *diskBlockStorage) Delete(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.appendRecord(diskOpDelete, index, nil); err != nil {
		return err
	}
	delete(s.records, index)
	return nil
}

func (s *diskBlockStorage) LoadBiomes() ([]string, bool, error) {
	s.mu.RLock()
	meta := s.biomes
	s.mu.RUnlock()
	if meta == nil {
		return nil, false, nil
	}
	var grid []string
	ok, err := s.readPayload(*meta, diskOpBiomes, &grid)
	if err != nil || !ok {
		return nil, false, err
	}
	return grid, true, nil
}

func (s *diskBlockStorage) SaveBiomes(grid []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta, err := s.appendRecord(diskOpBiomes, 0, grid)
	if err != nil {
		return err
	}
	s.biomes = &meta
	return nil
}

func (s *diskBlockStorage) ForEach(fn func(index int, blocks []Block) bool) error {
	s.mu.RLock()
	indices := make([]int, 0, len(s.records))
	for idx := range s.records {
		indices = append(indices, idx)
	}
	s.mu.RUnlock()

	sort.Ints(indices)
	for _, idx := range indices {
		blocks, ok, err := s.LoadColumn(idx)
		if err != nil {
			log.Printf("disk block storage load index %d: %v", idx, err)
			continue
		}
		if !ok {
			continue
		}
		if !fn(idx, blocks) {
			break
		}
	}
	return nil
}

func (s *diskBlockStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

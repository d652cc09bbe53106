package world

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChunkColumnRow is one persisted block column.
type ChunkColumnRow struct {
	World       string `gorm:"primaryKey;size:64"`
	ChunkX      int32  `gorm:"primaryKey"`
	ChunkZ      int32  `gorm:"primaryKey"`
	ColumnIndex int32  `gorm:"primaryKey"`
	Blocks      []byte
	UpdatedAt   time.Time
}

func (ChunkColumnRow) TableName() string { return "chunk_columns" }

// ChunkBiomeRow holds the quart biome grid of one chunk.
type ChunkBiomeRow struct {
	World     string `gorm:"primaryKey;size:64"`
	ChunkX    int32  `gorm:"primaryKey"`
	ChunkZ    int32  `gorm:"primaryKey"`
	Grid      []byte
	UpdatedAt time.Time
}

func (ChunkBiomeRow) TableName() string { return "chunk_biomes" }

func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// GormStorageProvider persists chunks as rows keyed by world and chunk.
type GormStorageProvider struct {
	db    *gorm.DB
	world string
}

// NewGormStorageProvider migrates the chunk tables and returns a provider
// scoped to one world.
func NewGormStorageProvider(db *gorm.DB, world string) (*GormStorageProvider, error) {
	if db == nil {
		return nil, errors.New("gorm storage requires a database handle")
	}
	if err := db.AutoMigrate(&ChunkColumnRow{}, &ChunkBiomeRow{}); err != nil {
		return nil, fmt.Errorf("migrate chunk tables: %w", err)
	}
	return &GormStorageProvider{db: db, world: world}, nil
}

func (p *GormStorageProvider) NewStorage(key ChunkCoord, _ Bounds, _ Dimensions) (BlockStorage, error) {
	return &gormBlockStorage{
		db:     p.db,
		world:  p.world,
		chunkX: int32(key.X),
		chunkZ: int32(key.Z),
	}, nil
}

type gormBlockStorage struct {
	db     *gorm.DB
	world  string
	chunkX int32
	chunkZ int32
}

func (s *gormBlockStorage) session() *gorm.DB {
	return s.db.WithContext(context.Background())
}

func (s *gormBlockStorage) chunkFilter() *gorm.DB {
	return s.session().Where("world = ? AND chunk_x = ? AND chunk_z = ?", s.world, s.chunkX, s.chunkZ)
}

func (s *gormBlockStorage) LoadColumn(index int) ([]Block, bool, error) {
	var row ChunkColumnRow
	err := s.chunkFilter().Where("column_index = ?", index).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load column %d: %w", index, err)
	}
	var blocks []Block
	if err := json.Unmarshal(row.Blocks, &blocks); err != nil {
		return nil, false, fmt.Errorf("decode column %d: %w", index, err)
	}
	return blocks, true, nil
}

func (s *gormBlockStorage) SaveColumn(index int, blocks []Block) error {
	payload, err := json.Marshal(blocks)
	if err != nil {
		return fmt.Errorf("encode column %d: %w", index, err)
	}
	row := ChunkColumnRow{
		World:       s.world,
		ChunkX:      s.chunkX,
		ChunkZ:      s.chunkZ,
		ColumnIndex: int32(index),
		Blocks:      payload,
		UpdatedAt:   time.Now(),
	}
	return s.session().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "world"}, {Name: "chunk_x"}, {Name: "chunk_z"}, {Name: "column_index"}},
		DoUpdates: clause.AssignmentColumns([]string{"blocks", "updated_at"}),
	}).Create(&row).Error
}

func (s *gormBlockStorage) Delete(index int) error {
	return s.chunkFilter().Where("column_index = ?", index).Delete(&ChunkColumnRow{}).Error
}

func (s *gormBlockStorage) ForEach(fn func(index int, blocks []Block) bool) error {
	var rows []ChunkColumnRow
	if err := s.chunkFilter().Order("column_index").Find(&rows).Error; err != nil {
		return fmt.Errorf("list columns: %w", err)
	}
	for _, row := range rows {
		var blocks []Block
		if err := json.Unmarshal(row.Blocks, &blocks); err != nil {
			return fmt.Errorf("decode column %d: %w", row.ColumnIndex, err)
		}
		if !fn(int(row.ColumnIndex), blocks) {
			break
		}
	}
	return nil
}

func (s *gormBlockStorage) LoadBiomes() ([]string, bool, error) {
	var row ChunkBiomeRow
	err := s.chunkFilter().First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load biomes: %w", err)
	}
	var grid []string
	if err := json.Unmarshal(row.Grid, &grid); err != nil {
		return nil, false, fmt.Errorf("decode biomes: %w", err)
	}
	return grid, true, nil
}

func (s *gormBlockStorage) SaveBiomes(grid []string) error {
	payload, err := json.Marshal(grid)
	if err != nil {
		return fmt.Errorf("encode biomes: %w", err)
	}
	row := ChunkBiomeRow{
		World:     s.world,
		ChunkX:    s.chunkX,
		ChunkZ:    s.chunkZ,
		Grid:      payload,
		UpdatedAt: time.Now(),
	}
	return s.session().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "world"}, {Name: "chunk_x"}, {Name: "chunk_z"}},
		DoUpdates: clause.AssignmentColumns([]string{"grid", "updated_at"}),
	}).Create(&row).Error
}

func (s *gormBlockStorage) Close() error { return nil }

// Package terrain is the chunk generation pipeline: biome population,
// noise fill, surface building, carving and features. Every stage writes
// through typed hooks so other packages can correct or cancel its output.
package terrain

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"globe/internal/biome"
	"globe/internal/config"
	"globe/internal/latitude"
	"globe/internal/preset"
	"globe/internal/world"
)

// SourceDecorator wraps the generator's biome source. It is called on every
// access until it returns a different source, so it must be idempotent.
type SourceDecorator func(src biome.Source, resolver *preset.Resolver) biome.Source

// Options configures a Generator.
type Options struct {
	Terrain  config.TerrainConfig
	World    config.WorldConfig
	Height   int
	Registry *biome.Registry
	Hooks    Hooks
	Decorate SourceDecorator
	Logger   *log.Logger
}

// Generator implements world.Generator.
type Generator struct {
	cfg      config.TerrainConfig
	seed     int64
	seaLevel int
	registry *biome.Registry
	sampler  *NoiseSampler
	resolver *preset.Resolver
	hooks    Hooks
	decorate SourceDecorator
	logger   *log.Logger

	// possible is captured from the undecorated source at construction.
	possible []biome.Biome

	sourceMu sync.Mutex
	source   biome.Source
}

func NewGenerator(opts Options) *Generator {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "terrain ", log.LstdFlags)
	}
	reg := opts.Registry
	if reg == nil {
		reg = biome.DefaultRegistry()
	}
	height := opts.Height
	if height <= 0 {
		height = 256
	}
	source := NewMultiNoiseSource(reg, opts.World.SeaLevel)
	return &Generator{
		cfg:      opts.Terrain,
		seed:     opts.World.Seed,
		seaLevel: opts.World.SeaLevel,
		registry: reg,
		sampler:  NewNoiseSampler(opts.Terrain, opts.World.Seed, opts.World.SeaLevel, height),
		resolver: preset.NewResolver(preset.Static(opts.World.Preset), logger),
		hooks:    opts.Hooks,
		decorate: opts.Decorate,
		logger:   logger,
		possible: source.Possible(),
		source:   source,
	}
}

// Resolver returns the border-radius resolver owned by this generator.
func (g *Generator) Resolver() *preset.Resolver { return g.resolver }

func (g *Generator) Sampler() *NoiseSampler { return g.sampler }

func (g *Generator) SeaLevel() int { return g.seaLevel }

// BiomeSource returns the active biome source, applying the decorator on
// first access that succeeds.
func (g *Generator) BiomeSource() biome.Source {
	g.sourceMu.Lock()
	defer g.sourceMu.Unlock()
	if g.decorate != nil {
		g.source = g.decorate(g.source, g.resolver)
	}
	return g.source
}

// PossibleBiomes is the biome list the generator cached before decoration.
func (g *Generator) PossibleBiomes() []biome.Biome {
	out := make([]biome.Biome, len(g.possible))
	copy(out, g.possible)
	return out
}

// SurfaceBiome returns the biome at the surface of a block column.
func (g *Generator) SurfaceBiome(blockX, blockZ int) biome.Biome {
	surface := g.sampler.SurfaceY(blockX, blockZ)
	return g.BiomeSource().Biome(blockX>>2, surface>>2, blockZ>>2, g.sampler)
}

// Zone returns the latitude zone of a block row, or false when the world
// has no latitude radius.
func (g *Generator) Zone(blockZ int) (latitude.Zone, bool) {
	radius, ok := g.resolver.Resolve()
	if !ok {
		return latitude.Equator, false
	}
	return latitude.ZoneForRadius(radius, blockZ), true
}

func (g *Generator) Generate(ctx context.Context, chunk *world.Chunk) error {
	start := time.Now()
	wctx := WriteContext{
		Chunk:    chunk.Key,
		Resolver: g.resolver,
		SeaLevel: g.seaLevel,
	}
	src := g.BiomeSource()

	if err := g.populateBiomes(chunk, src); err != nil {
		return err
	}
	g.hooks.biomesPopulated(&wctx, chunk)

	proto := NewProtoChunk(chunk, g.hooks, wctx)
	if err := g.fillNoise(ctx, proto); err != nil {
		return err
	}
	g.buildSurface(proto, chunk)

	carveCtx := CarveContext{Chunk: chunk.Key, Bounds: chunk.Bounds, Resolver: g.resolver}
	if g.hooks.allowCarve(&carveCtx) {
		g.carve(proto)
	}

	g.placeFeatures(proto.Region(), chunk)

	if err := proto.Flush(); err != nil {
		return err
	}
	g.logger.Printf("chunk %v generated in %s", chunk.Key, time.Since(start).Round(time.Millisecond))
	return nil
}

func (g *Generator) populateBiomes(chunk *world.Chunk, src biome.Source) error {
	qw, qh, qd := chunk.BiomeGridSize()
	originQX := world.FloorDiv(chunk.Bounds.Min.X, world.QuartSize)
	originQY := world.FloorDiv(chunk.Bounds.Min.Y, world.QuartSize)
	originQZ := world.FloorDiv(chunk.Bounds.Min.Z, world.QuartSize)

	grid := make([]string, qw*qh*qd)
	for qy := 0; qy < qh; qy++ {
		for qz := 0; qz < qd; qz++ {
			for qx := 0; qx < qw; qx++ {
				b := src.Biome(originQX+qx, originQY+qy, originQZ+qz, g.sampler)
				grid[(qy*qd+qz)*qw+qx] = b.ID
			}
		}
	}
	if err := chunk.SetBiomes(grid); err != nil {
		return fmt.Errorf("populate biomes: %w", err)
	}
	return nil
}

func (g *Generator) fillNoise(ctx context.Context, proto *ProtoChunk) error {
	dim := proto.Dimensions()
	bounds := proto.Bounds()
	totalColumns := dim.Width * dim.Depth
	if totalColumns <= 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type columnTask struct {
		localX int
		localZ int
	}

	type columnResult struct {
		localX int
		localZ int
		column []world.Block
		err    error
	}

	workers := workerCount(g.cfg.Workers, totalColumns)
	tasks := make(chan columnTask, workers)
	results := make(chan columnResult, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range tasks {
				if err := ctx.Err(); err != nil {
					select {
					case results <- columnResult{err: err}:
					default:
					}
					return
				}
				column := g.populateColumn(bounds.Min.X+task.localX, bounds.Min.Z+task.localZ, dim.Height)
				select {
				case results <- columnResult{localX: task.localX, localZ: task.localZ, column: column}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		defer close(tasks)
		for x := 0; x < dim.Width; x++ {
			for z := 0; z < dim.Depth; z++ {
				select {
				case <-ctx.Done():
					return
				case tasks <- columnTask{localX: x, localZ: z}:
				}
			}
		}
	}()

	var firstErr error
	for result := range results {
		if firstErr != nil {
			continue
		}
		if result.err != nil {
			firstErr = result.err
			cancel()
			continue
		}
		if err := proto.Store(result.localX, result.localZ, result.column); err != nil {
			firstErr = err
			cancel()
		}
	}
	if firstErr == nil {
		firstErr = ctx.Err()
	}
	return firstErr
}

// populateColumn shapes one column: bedrock floor, deepslate, stone, a dirt
// cap and water up to sea level.
func (g *Generator) populateColumn(blockX, blockZ, height int) []world.Block {
	surface := g.sampler.SurfaceY(blockX, blockZ)
	top := surface
	if g.seaLevel > top {
		top = g.seaLevel
	}
	top = clampInt(top, 0, height-1)
	surface = clampInt(surface, 0, top)

	column := make([]world.Block, top+1)
	dirtStart := clampInt(surface-3, 1, surface)
	deepslateEnd := clampInt(16, 1, dirtStart)

	fillBlockRange(column, 1, deepslateEnd-1, world.Deepslate)
	fillBlockRange(column, deepslateEnd, dirtStart-1, world.Stone)
	fillBlockRange(column, dirtStart, surface, world.Dirt)
	fillBlockRange(column, surface+1, top, world.Water)

	column[0] = world.Bedrock
	for y := 1; y < 4 && y < len(column); y++ {
		if hash3(blockX, blockZ, y^int(g.seed^saltBedrock))%4 >= uint32(y) {
			column[y] = world.Bedrock
		}
	}
	return column
}

func fillBlockRange(column []world.Block, start, end int, value world.Block) {
	if start < 0 {
		start = 0
	}
	if end >= len(column) {
		end = len(column) - 1
	}
	for i := start; i <= end; i++ {
		column[i] = value
	}
}

var _ world.Generator = (*Generator)(nil)

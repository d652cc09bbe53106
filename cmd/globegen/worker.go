package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"globe/internal/api"
	"globe/internal/biome"
	"globe/internal/border"
	"globe/internal/config"
	"globe/internal/diagnostics"
	"globe/internal/guard"
	"globe/internal/preset"
	"globe/internal/terrain"
	"globe/internal/world"
)

// worker wires one generator process: storage, guards, generator, chunk
// manager and the debug surface.
type worker struct {
	cfg     *config.Config
	logger  *log.Logger
	diag    *diagnostics.Registry
	gen     *terrain.Generator
	chunks  *world.Manager
	handler api.Handler
}

func newWorker(cfg *config.Config, logger *log.Logger) (*worker, error) {
	region := world.NewServerRegion(cfg)
	if err := installStorage(cfg, region); err != nil {
		return nil, err
	}

	diag := diagnostics.NewRegistry(cfg.Guards.SampleLimit, log.New(logger.Writer(), logger.Prefix()+"guard ", log.LstdFlags))
	reg := biome.DefaultRegistry()
	guards := guard.New(guard.Config{
		Enabled:         cfg.Guards.Enabled,
		CarvePreset:     preset.Overworld,
		CarveCutoffZ:    cfg.Guards.CarveCutoffZ,
		DripstoneBuffer: cfg.Guards.DripstoneBuffer,
	}, reg, diag)

	caves := biome.CaveClamp{
		Enabled:   cfg.Biomes.Caves.Enabled,
		Buffer:    cfg.Biomes.Caves.Buffer,
		HardDeckY: cfg.Biomes.Caves.HardDeckY,
		MaxY:      cfg.Biomes.Caves.MaxY,
		SeaLevel:  cfg.World.SeaLevel,
	}
	installer := biome.Installer{
		Registry: reg,
		Picker: biome.Picker{
			Blend: biome.Blend{
				Enabled:   cfg.Biomes.Blend.Enabled,
				WidthFrac: cfg.Biomes.Blend.WidthFrac,
				WarpFrac:  cfg.Biomes.Blend.WarpFrac,
			},
			Seed: cfg.World.Seed,
		},
		Caves:  caves,
		Logger: logger,
	}

	gen := terrain.NewGenerator(terrain.Options{
		Terrain:  cfg.Terrain,
		World:    cfg.World,
		Height:   cfg.Chunk.Height,
		Registry: reg,
		Hooks:    guards.Hooks(),
		Decorate: installer.Decorate,
		Logger:   logger,
	})
	chunks := world.NewManager(region, gen)

	return &worker{
		cfg:    cfg,
		logger: logger,
		diag:   diag,
		gen:    gen,
		chunks: chunks,
		handler: api.Handler{
			ServerID:    cfg.Server.ID,
			Climate:     gen,
			Chunks:      timeoutChunks{manager: chunks, timeout: cfg.Server.GenerateTimeout.Duration()},
			Diagnostics: diag,
			Border:      border.NewVisualizer(gen.Resolver()),
		},
	}, nil
}

func installStorage(cfg *config.Config, region world.ServerRegion) error {
	switch cfg.Storage.Backend {
	case "", "memory":
		world.SetStorageProvider(world.MemoryStorageProvider())
	case "disk":
		world.SetStorageProvider(world.NewDiskStorageProvider(cfg.Storage.Path, region))
	case "postgres":
		db, err := world.OpenPostgres(cfg.Storage.DSN)
		if err != nil {
			return err
		}
		provider, err := world.NewGormStorageProvider(db, cfg.World.Preset+"/"+cfg.Server.ID)
		if err != nil {
			return err
		}
		world.SetStorageProvider(provider)
	default:
		return fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
	return nil
}

// run serves the debug surface until ctx is cancelled, then flushes chunks.
func (w *worker) run(ctx context.Context) error {
	defer func() {
		if err := w.chunks.Close(); err != nil {
			w.logger.Printf("close chunks: %v", err)
		}
	}()

	if radius, ok := w.gen.Resolver().Resolve(); ok {
		w.logger.Printf("worker %s generating preset %s with radius %d", w.cfg.Server.ID, w.cfg.World.Preset, radius)
	} else {
		w.logger.Printf("worker %s: preset %s is not a latitude world, guards pass through", w.cfg.Server.ID, w.cfg.World.Preset)
	}

	h := api.NewServer(w.cfg.Server.DebugListen, w.handler)
	errCh := make(chan error, 1)
	go func() {
		w.logger.Printf("debug server listening on %s", w.cfg.Server.DebugListen)
		errCh <- h.Run()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.Shutdown(shutdownCtx)
		snap := w.diag.Snapshot()
		for _, name := range snap.Names() {
			w.logger.Printf("%s = %d", name, snap.Counters[name])
		}
		return nil
	case err := <-errCh:
		return err
	}
}

// timeoutChunks bounds each chunk request by the configured generate timeout.
type timeoutChunks struct {
	manager *world.Manager
	timeout time.Duration
}

func (t timeoutChunks) ChunkForBlock(ctx context.Context, block world.BlockCoord) (*world.Chunk, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	return t.manager.ChunkForBlock(ctx, block)
}

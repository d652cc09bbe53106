// Package server exposes the central orchestrator over HTTP.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"globe/internal/border"
	"globe/internal/central/cluster"
	"globe/internal/central/config"
	"globe/internal/central/worldmap"
	"globe/internal/latitude"
	"globe/internal/preset"
	"globe/internal/world"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

type Server struct {
	cfg     *config.Config
	cluster *cluster.Manager
	index   *worldmap.Index
	radius  int
	logger  *log.Logger
}

func New(cfg *config.Config) (*Server, error) {
	manager, err := cluster.New(cfg)
	if err != nil {
		return nil, err
	}
	p, ok := preset.Lookup(preset.ID(cfg.World.Preset))
	if !ok {
		return nil, fmt.Errorf("world.preset %q is not a known preset", cfg.World.Preset)
	}
	index := worldmap.NewIndex()
	index.LoadFromConfig(cfg)
	return &Server{
		cfg:     cfg,
		cluster: manager,
		index:   index,
		radius:  p.RadiusBlocks,
		logger:  log.New(log.Writer(), "central ", log.LstdFlags|log.Lmicroseconds),
	}, nil
}

// Run starts every worker and serves HTTP until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.cluster.StartAll(ctx); err != nil {
		s.cluster.Shutdown()
		return err
	}
	defer s.cluster.Shutdown()

	addr := fmt.Sprintf("%s:%d", s.cfg.ListenAddress, s.cfg.HTTPPort)
	h := server.Default(
		server.WithHostPorts(addr),
		server.WithExitWaitTime(2*time.Second),
	)
	s.RegisterRoutes(h)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("HTTP server listening on %s (preset %s, radius %d)", addr, s.cfg.World.Preset, s.radius)
		errCh <- h.Run()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) RegisterRoutes(h *server.Hertz) {
	h.GET("/healthz", s.handleHealth)
	h.GET("/workers", s.handleWorkers)
	h.GET("/lookup", s.handleLookup)
	h.GET("/spawn", s.handleSpawn)
}

func (s *Server) handleHealth(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, map[string]any{
		"status": "ok",
		"preset": s.cfg.World.Preset,
		"radius": s.radius,
	})
}

type workerStatus struct {
	worldmap.WorkerInfo
	Process *cluster.ProcessInfo `json:"process,omitempty"`
}

func (s *Server) handleWorkers(_ context.Context, ctx *app.RequestContext) {
	procs := make(map[string]cluster.ProcessInfo)
	for _, p := range s.cluster.Processes() {
		procs[p.ID] = p
	}
	workers := s.index.Workers()
	out := make([]workerStatus, 0, len(workers))
	for _, w := range workers {
		status := workerStatus{WorkerInfo: w}
		if p, ok := procs[w.ID]; ok {
			status.Process = &p
		}
		out = append(out, status)
	}
	ctx.JSON(consts.StatusOK, map[string]any{"workers": out})
}

type lookupResponse struct {
	X       int                 `json:"x"`
	Z       int                 `json:"z"`
	Chunk   world.ChunkCoord    `json:"chunk"`
	Zone    string              `json:"zone"`
	Warm    bool                `json:"warm"`
	Degrees float64             `json:"degrees"`
	Worker  worldmap.WorkerInfo `json:"worker"`
}

func (s *Server) handleLookup(_ context.Context, ctx *app.RequestContext) {
	x, ok := intParam(ctx, "x")
	if !ok {
		return
	}
	z, ok := intParam(ctx, "z")
	if !ok {
		return
	}
	info, err := s.index.Lookup(x, z)
	if err != nil {
		writeErrorBody(ctx, consts.StatusNotFound, "no_worker", err.Error())
		return
	}
	zone := latitude.ZoneForRadius(s.radius, z)
	ctx.JSON(consts.StatusOK, lookupResponse{
		X:       x,
		Z:       z,
		Chunk:   s.index.Chunk(x, z),
		Zone:    zone.Key(),
		Warm:    zone.Warm(),
		Degrees: latitude.Degrees(s.radius, z),
		Worker:  info,
	})
}

// handleSpawn answers the spawn latitude for a zone and the worker owning
// column x=0 there.
func (s *Server) handleSpawn(_ context.Context, ctx *app.RequestContext) {
	raw := strings.TrimSpace(ctx.Query("zone"))
	if raw == "" {
		raw = latitude.Temperate.Key()
	}
	zone, err := latitude.ParseZone(raw)
	if err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_zone", err.Error())
		return
	}
	z := latitude.SpawnZ(s.radius, zone, s.cfg.World.Seed, border.PoleWarningDistance)
	resp := map[string]any{
		"zone": zone.Key(),
		"x":    0,
		"z":    z,
	}
	if info, err := s.index.Lookup(0, z); err == nil {
		resp["worker"] = info
	}
	ctx.JSON(consts.StatusOK, resp)
}

func intParam(ctx *app.RequestContext, key string) (int, bool) {
	raw := strings.TrimSpace(ctx.Query(key))
	if raw == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "missing_coordinate", key+" query parameter required")
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_coordinate", "invalid "+key+" parameter")
		return 0, false
	}
	return v, true
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

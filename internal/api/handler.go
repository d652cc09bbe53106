// Package api serves the operator debug surface of a generator worker.
package api

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"globe/internal/biome"
	"globe/internal/border"
	"globe/internal/diagnostics"
	"globe/internal/guard"
	"globe/internal/latitude"
	"globe/internal/preset"
	"globe/internal/world"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// Climate is the part of the generator the handlers read.
type Climate interface {
	Resolver() *preset.Resolver
	Zone(blockZ int) (latitude.Zone, bool)
	SurfaceBiome(blockX, blockZ int) biome.Biome
}

// Chunks opens chunks by block position.
type Chunks interface {
	ChunkForBlock(ctx context.Context, block world.BlockCoord) (*world.Chunk, error)
}

type Handler struct {
	ServerID    string
	Climate     Climate
	Chunks      Chunks
	Diagnostics *diagnostics.Registry
	Border      *border.Visualizer
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.GET("/healthz", h.healthz)
	s.GET("/border", h.border)

	debug := s.Group("/debug")
	debug.GET("/guards", h.guards)
	debug.GET("/stages", h.stages)
	debug.GET("/zone", h.zone)
	debug.GET("/biome", h.biome)
	debug.GET("/chunk", h.chunk)
}

var (
	ErrMissingCoordinate = errors.New("missing coordinate")
	ErrNotLatitudeWorld  = errors.New("world has no latitude radius")
	ErrNonFinite         = errors.New("coordinate must be finite")
)

func (h Handler) healthz(_ context.Context, ctx *app.RequestContext) {
	resp := map[string]any{"status": "ok", "server": h.ServerID}
	if h.Climate != nil {
		id, _ := h.Climate.Resolver().SettingsID()
		resp["preset"] = id
		resp["radius"] = h.Climate.Resolver().ActiveRadiusBlocks()
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) guards(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, h.Diagnostics.Snapshot())
}

func (h Handler) stages(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, map[string]any{"stages": guard.Stages()})
}

type zoneResponse struct {
	Z        int     `json:"z"`
	Radius   int     `json:"radius"`
	Zone     string  `json:"zone"`
	Warm     bool    `json:"warm"`
	Fraction float64 `json:"fraction"`
	Degrees  float64 `json:"degrees"`
}

func (h Handler) zone(_ context.Context, ctx *app.RequestContext) {
	z, err := intQuery(ctx, "z")
	if err != nil {
		writeError(ctx, err)
		return
	}
	zone, radius, err := h.zoneAt(z)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, zoneResponse{
		Z:        z,
		Radius:   radius,
		Zone:     zone.Key(),
		Warm:     zone.Warm(),
		Fraction: latitude.Fraction(radius, z),
		Degrees:  latitude.Degrees(radius, z),
	})
}

func (h Handler) zoneAt(z int) (latitude.Zone, int, error) {
	if h.Climate == nil {
		return 0, 0, ErrNotLatitudeWorld
	}
	zone, ok := h.Climate.Zone(z)
	if !ok {
		return 0, 0, ErrNotLatitudeWorld
	}
	return zone, h.Climate.Resolver().ActiveRadiusBlocks(), nil
}

func (h Handler) biome(_ context.Context, ctx *app.RequestContext) {
	x, err := intQuery(ctx, "x")
	if err != nil {
		writeError(ctx, err)
		return
	}
	z, err := intQuery(ctx, "z")
	if err != nil {
		writeError(ctx, err)
		return
	}
	if h.Climate == nil {
		writeError(ctx, ErrNotLatitudeWorld)
		return
	}
	b := h.Climate.SurfaceBiome(x, z)
	resp := map[string]any{"x": x, "z": z, "biome": b.ID, "snowy": b.Snowy}
	if zone, ok := h.Climate.Zone(z); ok {
		resp["zone"] = zone.Key()
	}
	ctx.JSON(consts.StatusOK, resp)
}

type chunkSummary struct {
	Chunk  world.ChunkCoord   `json:"chunk"`
	Bounds world.Bounds       `json:"bounds"`
	Zone   string             `json:"zone,omitempty"`
	Blocks map[string]int     `json:"blocks"`
	Frozen int                `json:"frozen"`
	Biomes []world.BiomeCount `json:"biomes"`
}

func (h Handler) chunk(c context.Context, ctx *app.RequestContext) {
	x, err := intQuery(ctx, "x")
	if err != nil {
		writeError(ctx, err)
		return
	}
	z, err := intQuery(ctx, "z")
	if err != nil {
		writeError(ctx, err)
		return
	}
	if h.Chunks == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "chunk manager not configured")
		return
	}
	ch, err := h.Chunks.ChunkForBlock(c, world.BlockCoord{X: x, Z: z})
	if err != nil {
		writeErrorBody(ctx, consts.StatusNotFound, "chunk_unavailable", err.Error())
		return
	}
	summary := chunkSummary{
		Chunk:  ch.Key,
		Bounds: ch.Bounds,
		Blocks: make(map[string]int),
		Biomes: ch.SurfaceBiomes(),
	}
	for block, n := range ch.CountBlocks() {
		summary.Blocks[block.String()] = n
		if block.IsFrozen() {
			summary.Frozen += n
		}
	}
	if h.Climate != nil {
		centre := (ch.Bounds.Min.Z + ch.Bounds.Max.Z) / 2
		if zone, ok := h.Climate.Zone(centre); ok {
			summary.Zone = zone.Key()
		}
	}
	ctx.JSON(consts.StatusOK, summary)
}

func (h Handler) border(_ context.Context, ctx *app.RequestContext) {
	x, err := floatQuery(ctx, "x")
	if err != nil {
		writeError(ctx, err)
		return
	}
	z, err := floatQuery(ctx, "z")
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, h.Border.Frame(x, z))
}

func intQuery(ctx *app.RequestContext, key string) (int, error) {
	raw := strings.TrimSpace(ctx.Query(key))
	if raw == "" {
		return 0, missing(key)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &queryError{key: key, err: err}
	}
	return v, nil
}

func floatQuery(ctx *app.RequestContext, key string) (float64, error) {
	raw := strings.TrimSpace(ctx.Query(key))
	if raw == "" {
		return 0, missing(key)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &queryError{key: key, err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &queryError{key: key, err: ErrNonFinite}
	}
	return v, nil
}

type queryError struct {
	key string
	err error
}

func (e *queryError) Error() string { return "invalid " + e.key + ": " + e.err.Error() }

func (e *queryError) Unwrap() error { return e.err }

func missing(key string) error {
	return &queryError{key: key, err: ErrMissingCoordinate}
}

func writeError(ctx *app.RequestContext, err error) {
	var qe *queryError
	switch {
	case errors.Is(err, ErrMissingCoordinate):
		writeErrorBody(ctx, consts.StatusBadRequest, "missing_coordinate", err.Error())
	case errors.As(err, &qe):
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_coordinate", err.Error())
	case errors.Is(err, ErrNotLatitudeWorld):
		writeErrorBody(ctx, consts.StatusConflict, "not_latitude_world", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", err.Error())
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

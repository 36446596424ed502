// Package server exposes the de-identification engine and the full pipeline
// over HTTP.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinpipe/clinpipe/internal/deid"
	"github.com/clinpipe/clinpipe/internal/model"
	"github.com/clinpipe/clinpipe/internal/pipeline"
	"github.com/clinpipe/clinpipe/internal/vectorstore"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Server wires the HTTP API over the engine and pipeline.
type Server struct {
	e      *echo.Echo
	log    zerolog.Logger
	engine *deid.Engine
	runner *pipeline.Runner
}

// New builds the server. A non-empty jwtSecret puts the /v1 group behind
// HS256 bearer auth; the health endpoint stays open.
func New(log zerolog.Logger, engine *deid.Engine, runner *pipeline.Runner, jwtSecret []byte) *Server {
	s := &Server{
		e:      echo.New(),
		log:    log,
		engine: engine,
		runner: runner,
	}
	s.e.HideBanner = true
	s.e.HidePort = true

	s.e.Use(Recovery(log))
	s.e.Use(RequestID())
	s.e.Use(Logger(log))

	s.e.GET("/healthz", s.health)

	v1 := s.e.Group("/v1")
	if len(jwtSecret) > 0 {
		v1.Use(JWTAuth(jwtSecret))
	}
	v1.POST("/deid", s.deidentify)
	v1.POST("/pipeline", s.runPipeline)

	return s
}

// Echo exposes the underlying router for tests and embedding.
func (s *Server) Echo() *echo.Echo { return s.e }

// Start blocks serving on addr.
func (s *Server) Start(addr string) error {
	s.log.Info().Str("addr", addr).Msg("http server listening")
	return s.e.Start(addr)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": Version,
	})
}

type deidRequest struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

type deidResponse struct {
	Content any         `json:"content"`
	Stats   *deid.Stats `json:"stats"`
}

func (s *Server) deidentify(c echo.Context) error {
	var req deidRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	var item any
	switch req.Type {
	case "clinical":
		var content model.ClinicalContent
		if err := json.Unmarshal(req.Content, &content); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid clinical content")
		}
		item = &content
	case "operational":
		var content model.OperationalContent
		if err := json.Unmarshal(req.Content, &content); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid operational content")
		}
		item = &content
	default:
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("type must be clinical or operational, got %q", req.Type))
	}

	out, stats, err := s.engine.Process(item)
	if err != nil {
		s.log.Error().Err(err).Msg("de-identification failed")
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusOK, deidResponse{Content: out, Stats: stats})
}

type pipelineRequest struct {
	Document string `json:"document"`
}

type pipelineResponse struct {
	RunID    string           `json:"run_id"`
	Chunks   int              `json:"chunks"`
	Timings  map[string]int64 `json:"timings_ms"`
	ChunkIDs []string         `json:"chunk_ids"`
}

func (s *Server) runPipeline(c echo.Context) error {
	var req pipelineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Document == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "document must not be empty")
	}

	out, pc, err := s.runner.Run(c.Request().Context(), []byte(req.Document))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	records, _ := out.([]vectorstore.Record)

	resp := pipelineResponse{
		RunID:   pc.RunID.String(),
		Chunks:  len(records),
		Timings: make(map[string]int64, len(pc.Timings)),
	}
	for stage, d := range pc.Timings {
		resp.Timings[stage] = d.Milliseconds()
	}
	for _, r := range records {
		resp.ChunkIDs = append(resp.ChunkIDs, r.ID)
	}
	return c.JSON(http.StatusOK, resp)
}

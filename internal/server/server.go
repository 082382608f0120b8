// Package server exposes pipeline results over HTTP for the rendering
// collaborator. The pipeline itself stays transport-free; this is the thin
// boundary around it.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/quartierlabs/rentmap/internal/dataset"
	"github.com/quartierlabs/rentmap/internal/export"
	"github.com/quartierlabs/rentmap/internal/pipeline"
)

// Server answers summary and geometry queries against the loader's current
// snapshot.
type Server struct {
	loader   *dataset.Loader
	year     int
	defaults pipeline.EstimationCriteria
}

// New creates a Server. defaults fill in criteria fields the query string
// leaves unset.
func New(loader *dataset.Loader, year int, defaults pipeline.EstimationCriteria) *Server {
	return &Server{loader: loader, year: year, defaults: defaults}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/summaries", s.handleSummaries)
	r.Get("/api/geojson", s.handleGeoJSON)
	r.Post("/api/refresh", s.handleRefresh)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// run executes a pipeline run for the request's criteria. ok=false means a
// response (error or warning) has already been written.
func (s *Server) run(w http.ResponseWriter, r *http.Request) (*pipeline.Result, bool) {
	snap, err := s.loader.Snapshot(r.Context())
	if err != nil {
		zap.L().Error("server: snapshot load failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errBody("dataset fetch failed"))
		return nil, false
	}

	crit, err := s.criteriaFromQuery(r, snap)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errBody(err.Error()))
		return nil, false
	}

	res, err := pipeline.Run(snap, s.year, crit)
	switch {
	case err == nil:
		return res, true
	case errors.Is(err, dataset.ErrEmptyDataset):
		writeJSON(w, http.StatusOK, warnBody("no data received at all"))
	case errors.Is(err, pipeline.ErrEmptyYear):
		writeJSON(w, http.StatusOK, warnBody("no data for target year"))
	case errors.Is(err, pipeline.ErrNoMatch):
		writeJSON(w, http.StatusOK, warnBody("no records match the given criteria"))
	default:
		// Validation problems are the caller's; everything else is ours.
		writeJSON(w, http.StatusBadRequest, errBody(err.Error()))
	}
	return nil, false
}

func (s *Server) handleSummaries(w http.ResponseWriter, r *http.Request) {
	res, ok := s.run(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	res, ok := s.run(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	if err := export.WriteGeoJSON(w, res); err != nil {
		zap.L().Error("server: write geojson", zap.Error(err))
	}
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, changed, err := s.loader.Refresh(r.Context())
	if err != nil {
		zap.L().Error("server: refresh failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errBody("refresh failed"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"changed": changed,
		"records": len(snap.Records),
		"etag":    snap.ETag,
	})
}

// criteriaFromQuery overlays query parameters on the configured defaults.
func (s *Server) criteriaFromQuery(r *http.Request, snap *dataset.Snapshot) (pipeline.EstimationCriteria, error) {
	crit := s.defaults
	if crit.RentalType == "" && len(snap.RentalTypes) > 0 {
		crit.RentalType = snap.RentalTypes[0]
	}

	q := r.URL.Query()
	var err error
	if v := q.Get("budget"); v != "" {
		if crit.Budget, err = strconv.ParseFloat(v, 64); err != nil {
			return crit, errors.New("budget: not a number")
		}
	}
	if v := q.Get("surface"); v != "" {
		if crit.Surface, err = strconv.ParseFloat(v, 64); err != nil {
			return crit, errors.New("surface: not a number")
		}
	}
	if v := q.Get("type"); v != "" {
		crit.RentalType = v
	}
	if v := q.Get("eras"); v != "" {
		crit.Eras = strings.Split(v, ",")
	}
	if v := q.Get("tier"); v != "" {
		crit.Tier = pipeline.RentTier(v)
	}
	return crit, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Warn("server: write response", zap.Error(err))
	}
}

func errBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func warnBody(msg string) map[string]any {
	return map[string]any{"warning": msg, "summaries": []any{}}
}

package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/euring/internal/core"
	"github.com/JonMunkholm/euring/internal/logging"
	"github.com/JonMunkholm/euring/internal/web/templates"
)

// recognizeRequest is the body of POST /api/recognize.
type recognizeRequest struct {
	EuringString    string `json:"euring_string"`
	IncludeAnalysis bool   `json:"include_analysis"`
}

// batchRecognizeRequest is the body of POST /api/batch/recognize.
type batchRecognizeRequest struct {
	EuringStrings   []string `json:"euring_strings"`
	IncludeAnalysis bool     `json:"include_analysis"`
	MaxConcurrent   int      `json:"max_concurrent"`
}

// batchConvertRequest is the body of POST /api/batch/convert.
type batchConvertRequest struct {
	Conversions   []core.ConvertRequest `json:"conversions"`
	MaxConcurrent int                   `json:"max_concurrent"`
}

// lookupUpdateRequest is the body of PUT /api/lookup/{version}/{field}.
type lookupUpdateRequest struct {
	Values  []core.LookupEntry `json:"values"`
	Replace bool               `json:"replace"`
}

type lookupUpdateResponse struct {
	Success bool             `json:"success"`
	Table   core.LookupTable `json:"table"`
}

type mappingsResponse struct {
	SourceVersion string                   `json:"source_version"`
	TargetVersion string                   `json:"target_version"`
	Mappings      []core.ConversionMapping `json:"mappings"`
	Summary       core.MatrixCell          `json:"summary"`
}

type healthResponse struct {
	Status     string                  `json:"status"`
	Generation uint64                  `json:"catalog_generation"`
	Versions   int                     `json:"versions"`
	Store      string                  `json:"store"`
	Batches    core.BatchLimiterStatus `json:"batches"`
}

// decodeJSON reads a capped JSON body into v. On failure the error response
// has been written and false is returned.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if _, ok := err.(*http.MaxBytesError); !ok {
			err = fmt.Errorf("%w: %v", errInvalidBody, err)
		}
		s.respondError(w, r, err)
		return false
	}
	return true
}

// handleIndex renders the versions overview page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	gen := s.service.Catalog().Snapshot().Generation()
	if err := templates.Index(s.service.Versions(), gen).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Warn("render index", "error", err)
	}
}

// handleRecognize identifies the version of one record. Recognition
// failures are reported in the envelope with status 200.
func (s *Server) handleRecognize(w http.ResponseWriter, r *http.Request) {
	var req recognizeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	ctx := WithRequestMetadata(r.Context(), r)
	writeJSON(w, s.service.Recognize(ctx, req.EuringString, req.IncludeAnalysis))
}

// handleConvert converts one record. Conversion failures are reported in
// the envelope with status 200.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req core.ConvertRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	ctx := WithRequestMetadata(r.Context(), r)
	writeJSON(w, s.service.Convert(ctx, req))
}

// handleBatchRecognize recognizes many records. A rejected batch carries
// the error in the envelope and an error status.
func (s *Server) handleBatchRecognize(w http.ResponseWriter, r *http.Request) {
	var req batchRecognizeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	ctx := WithRequestMetadata(r.Context(), r)
	resp, err := s.service.RecognizeBatch(ctx, req.EuringStrings, req.IncludeAnalysis, req.MaxConcurrent)
	s.writeBatch(w, r, resp, err)
}

// handleBatchConvert converts many records.
func (s *Server) handleBatchConvert(w http.ResponseWriter, r *http.Request) {
	var req batchConvertRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	ctx := WithRequestMetadata(r.Context(), r)
	resp, err := s.service.ConvertBatch(ctx, req.Conversions, req.MaxConcurrent)
	s.writeBatch(w, r, resp, err)
}

func (s *Server) writeBatch(w http.ResponseWriter, r *http.Request, resp any, err error) {
	if err == nil {
		writeJSON(w, resp)
		return
	}
	code := core.MapError(err).Code
	status := statusForCode(code)
	if status == http.StatusNotFound {
		// unknown versions inside items are client errors
		status = http.StatusBadRequest
	}
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}
	logging.FromContext(r.Context()).Warn("batch rejected",
		"path", r.URL.Path,
		"status", status,
		"code", code,
		"error", err,
	)
	writeJSONStatus(w, status, resp)
}

// handleVersions lists the supported versions and the conversion matrix.
func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.Versions())
}

// handleMappings describes how each field of source travels to target.
func (s *Server) handleMappings(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")
	target := chi.URLParam(r, "target")

	maps, err := s.service.ConversionMappings(source, target)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, mappingsResponse{
		SourceVersion: source,
		TargetVersion: target,
		Mappings:      maps,
		Summary:       core.Summarize(maps),
	})
}

// handleGetLookup returns the code table for a field.
func (s *Server) handleGetLookup(w http.ResponseWriter, r *http.Request) {
	t, err := s.service.LookupTable(chi.URLParam(r, "field"), chi.URLParam(r, "version"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, t)
}

// handleUpdateLookup merges or replaces the code table for a field.
func (s *Server) handleUpdateLookup(w http.ResponseWriter, r *http.Request) {
	var req lookupUpdateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	ctx := WithRequestMetadata(r.Context(), r)
	t, err := s.service.UpdateLookupTable(ctx, chi.URLParam(r, "field"), chi.URLParam(r, "version"), req.Values, req.Replace)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, lookupUpdateResponse{Success: true, Table: t})
}

// handleHealth reports catalog, store and batch limiter state.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.service.Catalog().Snapshot()
	resp := healthResponse{
		Status:     "healthy",
		Generation: snap.Generation(),
		Versions:   len(snap.Versions()),
		Store:      "none",
		Batches:    s.service.LimiterStatus(),
	}

	status := http.StatusOK
	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			logging.FromContext(r.Context()).Error("health: store unreachable", "error", err)
			resp.Status = "degraded"
			resp.Store = "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			resp.Store = "ok"
		}
	}
	writeJSONStatus(w, status, resp)
}

package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/euring/internal/logging"
)

// Batch defaults.
const (
	DefaultBatchConcurrency = 10
	DefaultMaxRecognitions  = 100
	DefaultMaxConversions   = 50
)

// Config tunes the Service.
type Config struct {
	MaxConcurrent    int // ceiling for per-batch parallelism
	MaxRecognitions  int
	MaxConversions   int
	MaxActiveBatches int
	BatchWait        time.Duration
	MinConfidence    float64
	CenturyPivot     int
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent:    DefaultBatchConcurrency,
		MaxRecognitions:  DefaultMaxRecognitions,
		MaxConversions:   DefaultMaxConversions,
		MaxActiveBatches: DefaultMaxConcurrentBatches,
		BatchWait:        DefaultBatchWait,
		MinConfidence:    DefaultMinConfidence,
		CenturyPivot:     DefaultCenturyPivot,
	}
}

// Service orchestrates recognition and conversion against the catalog.
type Service struct {
	catalog *Catalog
	cfg     Config
	limiter *BatchLimiter
	metrics *Metrics
}

// NewService creates a Service. metrics may be nil.
func NewService(catalog *Catalog, cfg Config, metrics *Metrics) *Service {
	def := DefaultConfig()
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = def.MaxConcurrent
	}
	if cfg.MaxRecognitions <= 0 {
		cfg.MaxRecognitions = def.MaxRecognitions
	}
	if cfg.MaxConversions <= 0 {
		cfg.MaxConversions = def.MaxConversions
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = def.MinConfidence
	}
	if cfg.CenturyPivot <= 0 {
		cfg.CenturyPivot = def.CenturyPivot
	}

	return &Service{
		catalog: catalog,
		cfg:     cfg,
		limiter: NewBatchLimiter(cfg.MaxActiveBatches, cfg.BatchWait),
		metrics: metrics,
	}
}

// Catalog returns the underlying catalog.
func (s *Service) Catalog() *Catalog { return s.catalog }

// Config returns the effective configuration.
func (s *Service) Config() Config { return s.cfg }

func (s *Service) century() CenturyPolicy {
	return CenturyPolicy{Pivot: s.cfg.CenturyPivot}
}

// ============================================================================
// Single records
// ============================================================================

// RecognizeResponse is the outcome of recognizing one record.
type RecognizeResponse struct {
	Success          bool              `json:"success"`
	Version          string            `json:"version,omitempty"`
	Confidence       float64           `json:"confidence"`
	LowConfidence    bool              `json:"low_confidence"`
	Length           int               `json:"length"`
	Analysis         []VersionAnalysis `json:"discriminant_analysis,omitempty"`
	ProcessingTimeMS float64           `json:"processing_time_ms"`
	Error            string            `json:"error,omitempty"`
	ErrorCode        string            `json:"error_code,omitempty"`

	err error
}

// Err returns the failure behind Error, if any.
func (r RecognizeResponse) Err() error { return r.err }

// Recognize identifies the version of raw. A low score is flagged, not failed.
func (s *Service) Recognize(ctx context.Context, raw string, includeAnalysis bool) RecognizeResponse {
	return s.recognize(s.catalog.Snapshot(), raw, includeAnalysis)
}

func (s *Service) recognize(snap *Snapshot, raw string, includeAnalysis bool) RecognizeResponse {
	start := time.Now()
	var resp RecognizeResponse

	if strings.TrimSpace(raw) == "" {
		resp.fail(ErrEmptyRecord)
	} else {
		r := snap.Recognize(raw, includeAnalysis, s.cfg.MinConfidence)
		resp.Success = r.Version != ""
		resp.Version = r.Version
		resp.Confidence = r.Confidence
		resp.LowConfidence = r.LowConfidence
		resp.Length = r.Length
		resp.Analysis = r.Analysis
	}

	elapsed := time.Since(start)
	resp.ProcessingTimeMS = millis(elapsed)
	s.metrics.observeRecognition(resp.Version, resp.Confidence, elapsed)
	return resp
}

func (r *RecognizeResponse) fail(err error) {
	r.Success = false
	r.err = err
	r.Error = err.Error()
	r.ErrorCode = MapError(err).Code
}

// ConvertRequest asks for one record to be converted.
type ConvertRequest struct {
	EuringString  string `json:"euring_string"`
	SourceVersion string `json:"source_version,omitempty"`
	TargetVersion string `json:"target_version"`
	// UseSemantic defaults to true when omitted.
	UseSemantic *bool `json:"use_semantic,omitempty"`
}

func (r ConvertRequest) semantic() bool {
	return r.UseSemantic == nil || *r.UseSemantic
}

// ConvertResponse is the outcome of converting one record.
type ConvertResponse struct {
	Success          bool             `json:"success"`
	ConvertedString  string           `json:"converted_string,omitempty"`
	SourceVersion    string           `json:"source_version,omitempty"`
	TargetVersion    string           `json:"target_version"`
	ConversionMethod ConversionMethod `json:"conversion_method"`
	ConversionNotes  []string         `json:"conversion_notes"`
	Notes            []ConversionNote `json:"notes,omitempty"`
	ProcessingTimeMS float64          `json:"processing_time_ms"`
	Error            string           `json:"error,omitempty"`
	ErrorCode        string           `json:"error_code,omitempty"`

	err error
}

// Err returns the failure behind Error, if any.
func (r ConvertResponse) Err() error { return r.err }

func (r *ConvertResponse) fail(err error) {
	r.Success = false
	r.err = err
	r.Error = err.Error()
	r.ErrorCode = MapError(err).Code
}

// Convert runs recognize (when no source is given), parse, extract and
// convert for one record.
func (s *Service) Convert(ctx context.Context, req ConvertRequest) ConvertResponse {
	return s.convert(s.catalog.Snapshot(), req)
}

func (s *Service) convert(snap *Snapshot, req ConvertRequest) ConvertResponse {
	start := time.Now()
	resp := ConvertResponse{
		SourceVersion:    req.SourceVersion,
		TargetVersion:    req.TargetVersion,
		ConversionMethod: MethodSemantic,
		ConversionNotes:  []string{},
	}
	if !req.semantic() {
		resp.ConversionMethod = MethodLegacy
	}

	err := s.runConversion(snap, req, &resp)
	if err != nil {
		resp.fail(err)
	}

	elapsed := time.Since(start)
	resp.ProcessingTimeMS = millis(elapsed)
	target := req.TargetVersion
	if _, ok := snap.versions[target]; !ok {
		target = "unknown"
	}
	s.metrics.observeConversion(resp.SourceVersion, target, resp.ConversionMethod, resp.Success, elapsed)
	return resp
}

func (s *Service) runConversion(snap *Snapshot, req ConvertRequest, resp *ConvertResponse) error {
	if _, ok := snap.versions[req.TargetVersion]; !ok {
		return unknownVersion("target", req.TargetVersion)
	}
	if req.SourceVersion != "" {
		if _, ok := snap.versions[req.SourceVersion]; !ok {
			return unknownVersion("source", req.SourceVersion)
		}
		if req.SourceVersion == req.TargetVersion {
			return fmt.Errorf("%w (%s)", ErrSameVersion, req.TargetVersion)
		}
	}
	if strings.TrimSpace(req.EuringString) == "" {
		return ErrEmptyRecord
	}

	source := req.SourceVersion
	if source == "" {
		r := snap.Recognize(req.EuringString, false, s.cfg.MinConfidence)
		if r.LowConfidence || r.Version == "" {
			return fmt.Errorf("%w (best match %s at %.2f)", ErrLowConfidence, orNone(r.Version), r.Confidence)
		}
		source = r.Version
		resp.SourceVersion = source
		if source == req.TargetVersion {
			return fmt.Errorf("%w (%s)", ErrSameVersion, source)
		}
	}

	raw, err := snap.Parse(req.EuringString, source)
	if err != nil {
		return err
	}
	rec, err := snap.Extract(raw, s.century())
	if err != nil {
		return err
	}

	res := snap.Convert(rec, req.TargetVersion, ConvertOptions{
		UseSemantic: req.semantic(),
		Century:     s.century(),
	})
	resp.ConversionMethod = res.Method
	resp.Notes = res.Notes
	resp.ConversionNotes = res.NoteStrings()
	if res.Err != nil {
		return res.Err
	}
	resp.Success = true
	resp.ConvertedString = res.Converted
	return nil
}

func unknownVersion(role, id string) error {
	if id == "" {
		return fmt.Errorf("%w: %s version is required", ErrUnknownVersion, role)
	}
	return fmt.Errorf("%w: %s", ErrUnknownVersion, id)
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// ============================================================================
// Batches
// ============================================================================

// BatchRecognizeResponse carries per-item recognition results in input order.
type BatchRecognizeResponse struct {
	Success        bool                `json:"success"`
	BatchID        string              `json:"batch_id,omitempty"`
	TotalProcessed int                 `json:"total_processed"`
	Succeeded      int                 `json:"succeeded"`
	Failed         int                 `json:"failed"`
	Results        []RecognizeResponse `json:"results"`
	Error          string              `json:"error,omitempty"`
	ErrorCode      string              `json:"error_code,omitempty"`
}

// BatchConvertResponse carries per-item conversion results in input order.
type BatchConvertResponse struct {
	Success        bool              `json:"success"`
	BatchID        string            `json:"batch_id,omitempty"`
	TotalProcessed int               `json:"total_processed"`
	Succeeded      int               `json:"succeeded"`
	Failed         int               `json:"failed"`
	Results        []ConvertResponse `json:"results"`
	Error          string            `json:"error,omitempty"`
	ErrorCode      string            `json:"error_code,omitempty"`
}

// RecognizeBatch recognizes every record with bounded parallelism. Admission
// failures reject the whole batch before any item runs; item failures are
// reported inline.
func (s *Service) RecognizeBatch(ctx context.Context, raws []string, includeAnalysis bool, maxConcurrent int) (BatchRecognizeResponse, error) {
	resp := BatchRecognizeResponse{Results: []RecognizeResponse{}}

	if err := admit(len(raws), s.cfg.MaxRecognitions); err != nil {
		s.metrics.observeBatch("recognize", "rejected")
		return resp.reject(err), err
	}

	release, err := s.limiter.Acquire(ctx)
	if err != nil {
		s.metrics.observeBatch("recognize", "busy")
		return resp.reject(err), err
	}
	defer release()
	s.metrics.batchStarted()
	defer s.metrics.batchFinished()

	resp.BatchID = uuid.New().String()
	limit := s.concurrency(maxConcurrent)
	log := logging.WithBatch(ctx, resp.BatchID, "recognize", len(raws),
		append([]any{"concurrency", limit}, clientAttrs(ctx)...)...)
	log.Info("batch started")
	start := time.Now()

	snap := s.catalog.Snapshot()
	results := make([]RecognizeResponse, len(raws))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, raw := range raws {
		g.Go(func() error {
			results[i] = s.recognize(snap, raw, includeAnalysis)
			return nil
		})
	}
	_ = g.Wait() // items never return errors

	resp.Results = results
	resp.TotalProcessed = len(results)
	for _, r := range results {
		if r.Success {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}
	resp.Success = true
	s.metrics.observeBatch("recognize", "completed")

	log.Info("batch completed",
		"succeeded", resp.Succeeded,
		"failed", resp.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

func (r BatchRecognizeResponse) reject(err error) BatchRecognizeResponse {
	r.Success = false
	r.Error = err.Error()
	r.ErrorCode = MapError(err).Code
	return r
}

// ConvertBatch converts every request with bounded parallelism. Unknown
// version ids reject the whole batch; everything else fails per item.
func (s *Service) ConvertBatch(ctx context.Context, reqs []ConvertRequest, maxConcurrent int) (BatchConvertResponse, error) {
	resp := BatchConvertResponse{Results: []ConvertResponse{}}

	if err := admit(len(reqs), s.cfg.MaxConversions); err != nil {
		s.metrics.observeBatch("convert", "rejected")
		return resp.reject(err), err
	}

	snap := s.catalog.Snapshot()
	for i, req := range reqs {
		if err := snap.checkVersions(req); err != nil {
			err = fmt.Errorf("item %d: %w", i, err)
			s.metrics.observeBatch("convert", "rejected")
			return resp.reject(err), err
		}
	}

	release, err := s.limiter.Acquire(ctx)
	if err != nil {
		s.metrics.observeBatch("convert", "busy")
		return resp.reject(err), err
	}
	defer release()
	s.metrics.batchStarted()
	defer s.metrics.batchFinished()

	resp.BatchID = uuid.New().String()
	limit := s.concurrency(maxConcurrent)
	log := logging.WithBatch(ctx, resp.BatchID, "convert", len(reqs),
		append([]any{"concurrency", limit}, clientAttrs(ctx)...)...)
	log.Info("batch started")
	start := time.Now()

	results := make([]ConvertResponse, len(reqs))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, req := range reqs {
		g.Go(func() error {
			results[i] = s.convert(snap, req)
			return nil
		})
	}
	_ = g.Wait()

	resp.Results = results
	resp.TotalProcessed = len(results)
	for _, r := range results {
		if r.Success {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}
	resp.Success = true
	s.metrics.observeBatch("convert", "completed")

	log.Info("batch completed",
		"succeeded", resp.Succeeded,
		"failed", resp.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

func (r BatchConvertResponse) reject(err error) BatchConvertResponse {
	r.Success = false
	r.Error = err.Error()
	r.ErrorCode = MapError(err).Code
	return r
}

func (s *Snapshot) checkVersions(req ConvertRequest) error {
	if _, ok := s.versions[req.TargetVersion]; !ok {
		return unknownVersion("target", req.TargetVersion)
	}
	if req.SourceVersion != "" {
		if _, ok := s.versions[req.SourceVersion]; !ok {
			return unknownVersion("source", req.SourceVersion)
		}
	}
	return nil
}

func admit(n, limit int) error {
	if n == 0 {
		return ErrEmptyBatch
	}
	if n > limit {
		return &BatchSizeError{Limit: limit, Got: n}
	}
	return nil
}

// concurrency clamps a requested parallelism to the configured ceiling.
func (s *Service) concurrency(requested int) int {
	if requested <= 0 {
		return s.cfg.MaxConcurrent
	}
	return min(requested, s.cfg.MaxConcurrent)
}

// LimiterStatus reports batch admission state.
func (s *Service) LimiterStatus() BatchLimiterStatus {
	return s.limiter.Status()
}

// WaitForBatches blocks until running batches finish or ctx ends.
func (s *Service) WaitForBatches(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// ============================================================================
// Catalog queries
// ============================================================================

// VersionSummary describes one supported version.
type VersionSummary struct {
	ID         string `json:"id"`
	Year       int    `json:"year"`
	Name       string `json:"name"`
	Layout     Layout `json:"layout"`
	Separator  string `json:"separator,omitempty"`
	MinLength  int    `json:"min_length"`
	MaxLength  int    `json:"max_length"`
	FieldCount int    `json:"field_count"`
}

// VersionsResponse lists versions and their pairwise compatibility.
type VersionsResponse struct {
	SupportedVersions []VersionSummary                 `json:"supported_versions"`
	ConversionMatrix  map[string]map[string]MatrixCell `json:"conversion_matrix"`
}

// Versions lists the supported versions, oldest first.
func (s *Service) Versions() VersionsResponse {
	snap := s.catalog.Snapshot()
	vs := snap.Versions()
	out := VersionsResponse{
		SupportedVersions: make([]VersionSummary, 0, len(vs)),
		ConversionMatrix:  snap.Matrix(),
	}
	for _, v := range vs {
		out.SupportedVersions = append(out.SupportedVersions, VersionSummary{
			ID:         v.ID,
			Year:       v.Year,
			Name:       v.Name,
			Layout:     v.Format.Layout,
			Separator:  v.Format.Separator,
			MinLength:  v.Format.MinLength,
			MaxLength:  v.Format.MaxLength,
			FieldCount: len(v.Fields),
		})
	}
	return out
}

// ConversionMappings describes how each field of source travels to target.
func (s *Service) ConversionMappings(source, target string) ([]ConversionMapping, error) {
	if source == target {
		return nil, fmt.Errorf("%w (%s)", ErrSameVersion, source)
	}
	return s.catalog.Snapshot().Mappings(source, target)
}

// LookupTable returns the code table for (field, version).
func (s *Service) LookupTable(field, version string) (LookupTable, error) {
	return s.catalog.Table(field, version)
}

// UpdateLookupTable merges or replaces a code table.
func (s *Service) UpdateLookupTable(ctx context.Context, field, version string, entries []LookupEntry, replace bool) (LookupTable, error) {
	t, err := s.catalog.UpdateTable(ctx, field, version, entries, replace)
	if err != nil {
		if !errors.Is(err, ErrUnknownVersion) && !errors.Is(err, ErrUnknownField) {
			logging.FromContext(ctx).Warn("lookup update failed",
				"version", version,
				"field", field,
				"error", err,
			)
		}
		return LookupTable{}, err
	}
	s.metrics.observeLookupUpdate(version)
	return t, nil
}

package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/euring/internal/config"
	"github.com/JonMunkholm/euring/internal/core"
	_ "github.com/JonMunkholm/euring/internal/core/layouts"
)

const (
	record1966 = "5320 TA12345 3 11022023 5215N 01325E 10 2 050 0115 0750"
	want2020   = "||TA...12345|||||05320|||H|||||3|||||11022023||||52.2500|13.4167|||10||4||||50.0|11.5|75.0|||||"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{MaxBodyBytes: 1 << 20},
		Security: config.SecurityConfig{EnableCSP: true},
		Logging:  config.LoggingConfig{Level: "error", Format: "text"},
	}
}

type testServer struct {
	*Server
	reg *prometheus.Registry
}

func newTestServer(t *testing.T, cfg *config.Config, store Pinger) testServer {
	t.Helper()
	cat, err := core.NewBuiltinCatalog()
	require.NoError(t, err)
	reg := prometheus.NewRegistry()
	svc := core.NewService(cat, core.DefaultConfig(), core.NewMetrics(reg))
	s := NewServer(svc, cfg, store, reg)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return testServer{Server: s, reg: reg}
}

func (s testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func jsonBody(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestRecognize(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	rec := s.do(t, http.MethodPost, "/api/recognize", jsonBody(t, map[string]any{
		"euring_string":    record1966,
		"include_analysis": true,
	}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))

	resp := decode[core.RecognizeResponse](t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "euring_1966", resp.Version)
	assert.InDelta(t, 1.0, resp.Confidence, 1e-9)
	assert.Len(t, resp.Analysis, 4)
}

func TestRecognize_InvalidBody(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	rec := s.do(t, http.MethodPost, "/api/recognize", "{not json")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "REQ001", resp.Code)
	assert.False(t, resp.Success)
}

func TestRecognize_BodyTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MaxBodyBytes = 16
	s := newTestServer(t, cfg, nil)

	rec := s.do(t, http.MethodPost, "/api/recognize", jsonBody(t, map[string]any{"euring_string": record1966}))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "REQ002", decode[ErrorResponse](t, rec).Code)
}

func TestConvert(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	rec := s.do(t, http.MethodPost, "/api/convert", jsonBody(t, map[string]any{
		"euring_string":  record1966,
		"target_version": "euring_2020",
	}))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[core.ConvertResponse](t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "euring_1966", resp.SourceVersion, "source is auto-detected")
	assert.Equal(t, want2020, resp.ConvertedString)
	assert.Equal(t, core.MethodSemantic, resp.ConversionMethod)
	require.Len(t, resp.ConversionNotes, 1)
	assert.True(t, strings.HasPrefix(resp.ConversionNotes[0], "longitude: "))
}

func TestConvert_FailureInEnvelope(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	rec := s.do(t, http.MethodPost, "/api/convert", jsonBody(t, map[string]any{
		"euring_string":  record1966,
		"target_version": "euring_1850",
	}))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[core.ConvertResponse](t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "CNV001", resp.ErrorCode)
	assert.NotEmpty(t, resp.Error)
}

func TestBatchRecognize(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	rec := s.do(t, http.MethodPost, "/api/batch/recognize", jsonBody(t, map[string]any{
		"euring_strings": []string{record1966, ""},
		"max_concurrent": 2,
	}))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[core.BatchRecognizeResponse](t, rec)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.BatchID)
	assert.Equal(t, 2, resp.TotalProcessed)
	assert.Equal(t, 1, resp.Succeeded)
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, "euring_1966", resp.Results[0].Version)
	assert.Equal(t, "CNV004", resp.Results[1].ErrorCode)

	rec = s.do(t, http.MethodPost, "/api/batch/recognize", `{"euring_strings":[]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp = decode[core.BatchRecognizeResponse](t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "BAT001", resp.ErrorCode)
}

func TestBatchConvert(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	rec := s.do(t, http.MethodPost, "/api/batch/convert", jsonBody(t, map[string]any{
		"conversions": []map[string]any{
			{"euring_string": record1966, "source_version": "euring_1966", "target_version": "euring_2020"},
			{"euring_string": record1966, "source_version": "euring_1966", "target_version": "euring_1966"},
		},
	}))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[core.BatchConvertResponse](t, rec)
	assert.Equal(t, 1, resp.Succeeded)
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, want2020, resp.Results[0].ConvertedString)
	assert.Equal(t, "CNV002", resp.Results[1].ErrorCode)

	rec = s.do(t, http.MethodPost, "/api/batch/convert", jsonBody(t, map[string]any{
		"conversions": []map[string]any{
			{"euring_string": record1966, "target_version": "euring_1850"},
		},
	}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CNV001", decode[core.BatchConvertResponse](t, rec).ErrorCode)
}

func TestVersions(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	rec := s.do(t, http.MethodGet, "/api/versions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[core.VersionsResponse](t, rec)
	require.Len(t, resp.SupportedVersions, 4)
	assert.Equal(t, "euring_1966", resp.SupportedVersions[0].ID)
	assert.Equal(t, 42, resp.SupportedVersions[3].FieldCount)
	assert.Len(t, resp.ConversionMatrix["euring_1966"], 3)
}

func TestMappings(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	rec := s.do(t, http.MethodGet, "/api/versions/euring_1966/mappings/euring_2020", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[mappingsResponse](t, rec)
	assert.Equal(t, "euring_1966", resp.SourceVersion)
	assert.NotEmpty(t, resp.Mappings)
	assert.Equal(t, len(resp.Mappings), resp.Summary.Full+resp.Summary.Partial+resp.Summary.Lossy+resp.Summary.None)
	assert.Contains(t, resp.Summary.Domains, core.DomainSpatial)

	rec = s.do(t, http.MethodGet, "/api/versions/euring_1850/mappings/euring_2020", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "CNV001", decode[ErrorResponse](t, rec).Code)

	rec = s.do(t, http.MethodGet, "/api/versions/euring_2020/mappings/euring_2020", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CNV002", decode[ErrorResponse](t, rec).Code)
}

func TestLookup(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	rec := s.do(t, http.MethodGet, "/api/lookup/euring_2020/sex_concluded", "")
	require.Equal(t, http.StatusOK, rec.Code)
	table := decode[core.LookupTable](t, rec)
	assert.Equal(t, "sex_concluded", table.Field)
	assert.NotEmpty(t, table.Entries)

	rec = s.do(t, http.MethodPut, "/api/lookup/euring_2020/sex_concluded", `{"values":[{"code":"M","meaning":"Male bird"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	upd := decode[lookupUpdateResponse](t, rec)
	assert.True(t, upd.Success)
	assert.Equal(t, core.SourceCustom, upd.Table.Source)

	rec = s.do(t, http.MethodGet, "/api/lookup/euring_2020/sex_concluded", "")
	table = decode[core.LookupTable](t, rec)
	m, ok := table.Find("M")
	require.True(t, ok)
	assert.Equal(t, "Male bird", m.Meaning)

	rec = s.do(t, http.MethodPut, "/api/lookup/euring_2020/sex_concluded", `{"values":[{"code":"Q"},{"code":"Q"}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CAT002", decode[ErrorResponse](t, rec).Code)

	rec = s.do(t, http.MethodGet, "/api/lookup/euring_2020/wingspan", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "CAT001", decode[ErrorResponse](t, rec).Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, testConfig(), fakePinger{})
	rec := s.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[healthResponse](t, rec)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "ok", resp.Store)
	assert.Equal(t, 4, resp.Versions)
	assert.Equal(t, uint64(1), resp.Generation)
	assert.Positive(t, resp.Batches.MaxConcurrent)
	assert.Equal(t, resp.Batches.MaxConcurrent, resp.Batches.Available)

	down := newTestServer(t, testConfig(), fakePinger{err: errors.New("connection refused")})
	rec = down.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", decode[healthResponse](t, rec).Status)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)
	s.do(t, http.MethodPost, "/api/recognize", jsonBody(t, map[string]any{"euring_string": record1966}))

	rec := s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `euring_recognition_total{band="high",version="euring_1966"} 1`)
}

func TestIndexPage(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	rec := s.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<code>euring_2020</code>")
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2, BatchLimit: 1}
	s := newTestServer(t, cfg, nil)

	for range 2 {
		require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/versions", "").Code)
	}
	rec := s.do(t, http.MethodGet, "/api/versions", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE001", decode[ErrorResponse](t, rec).Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestAPIKeyRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"k1"}
	s := newTestServer(t, cfg, nil)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/versions", "").Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health", "").Code, "health stays open")

	req := httptest.NewRequest(http.MethodGet, "/api/versions", nil)
	req.Header.Set("X-API-Key", "k1")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusForCode(t *testing.T) {
	tests := map[string]int{
		"FMT001":  http.StatusBadRequest,
		"REC001":  http.StatusBadRequest,
		"CNV001":  http.StatusNotFound,
		"CAT001":  http.StatusNotFound,
		"CAT002":  http.StatusBadRequest,
		"BAT003":  http.StatusServiceUnavailable,
		"RATE001": http.StatusTooManyRequests,
		"CAT003":  http.StatusInternalServerError,
		"ERR000":  http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, statusForCode(code), code)
	}
}

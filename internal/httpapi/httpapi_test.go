package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arxfloor/roomdetect/internal/orchestrator"
)

func testServer() *Server {
	return &Server{Orchestrator: &orchestrator.Orchestrator{}}
}

func TestHealthEndpoint(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.NewRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestDetectEndpointReturnsRooms(t *testing.T) {
	s := testServer()
	payload := []byte(`{"lines":[
		{"Start":{"X":0,"Y":0},"End":{"X":20,"Y":0}},
		{"Start":{"X":20,"Y":0},"End":{"X":20,"Y":10}},
		{"Start":{"X":20,"Y":10},"End":{"X":0,"Y":10}},
		{"Start":{"X":0,"Y":10},"End":{"X":0,"Y":0}}
	]}`)
	req := httptest.NewRequest(http.MethodPost, "/detect", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	s.NewRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result struct {
		Rooms []map[string]any `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result.Rooms, 1)
}

func TestDetectEndpointRejectsMalformedBody(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodPost, "/detect", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	s.NewRouter().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDetectEnhancedRequiresAuthForPaidStrategy(t *testing.T) {
	s := testServer() // no auth middleware configured
	payload := []byte(`{"strategy":"gpt5_only"}`)
	req := httptest.NewRequest(http.MethodPost, "/detect/enhanced", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	s.NewRouter().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDetectEnhancedAllowsOpenStrategyWithoutAuth(t *testing.T) {
	s := testServer()
	payload := []byte(`{"strategy":"graph_only","lines":[
		{"Start":{"X":0,"Y":0},"End":{"X":5,"Y":0}},
		{"Start":{"X":5,"Y":0},"End":{"X":5,"Y":5}},
		{"Start":{"X":5,"Y":5},"End":{"X":0,"Y":5}},
		{"Start":{"X":0,"Y":5},"End":{"X":0,"Y":0}}
	]}`)
	req := httptest.NewRequest(http.MethodPost, "/detect/enhanced", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	s.NewRouter().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpointServesPrometheusFormat(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.NewRouter().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

package ops

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"dev-ticker-server/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(sloppy bool) (http.Handler, *metrics.MetricsService) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetricsService(reg)
	info := Info{Service: "dev-ticker", Version: "test", Sloppy: sloppy, Tokens: 3}
	return NewRouter(info, m, reg), m
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestInfo(t *testing.T) {
	r, m := newTestRouter(true)
	m.RecordAPIRequest("/api/v3/coins/list", http.StatusOK)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/info", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body struct {
		Service  string        `json:"service"`
		Sloppy   bool          `json:"sloppy"`
		Tokens   int           `json:"tokens"`
		Features []string      `json:"features"`
		Stats    metrics.Stats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "dev-ticker", body.Service)
	assert.True(t, body.Sloppy)
	assert.Equal(t, 3, body.Tokens)
	assert.Len(t, body.Features, 4)
	assert.Equal(t, uint64(1), body.Stats.Requests)
}

func TestMetrics(t *testing.T) {
	r, m := newTestRouter(false)
	m.RecordInjectedError("/api/v3/coins/list")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `ticker_fault_errors_total{endpoint="/api/v3/coins/list"} 1`)
}

func TestMethodNotAllowed(t *testing.T) {
	r, _ := newTestRouter(false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

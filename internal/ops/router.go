// Package ops serves health, info and Prometheus endpoints on a listener separate from the ticker API.
package ops

import (
	"encoding/json"
	"net/http"

	"dev-ticker-server/internal/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Info describes the running service
type Info struct {
	Service string
	Version string
	Sloppy  bool
	Tokens  int
}

// NewRouter sets up the ops routes
func NewRouter(info Info, m *metrics.MetricsService, gatherer prometheus.Gatherer) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	r.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		features := []string{"CoinMarketCap quotes/latest", "CoinGecko coins/list", "CoinGecko market_chart"}
		if info.Sloppy {
			features = append(features, "Random errors and delays (sloppy mode)")
		}
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"service":  info.Service,
			"version":  info.Version,
			"sloppy":   info.Sloppy,
			"tokens":   info.Tokens,
			"features": features,
			"stats":    m.GetStats(),
		})
	}).Methods("GET")

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")

	return r
}

// respondWithJSON sends a JSON response with the specified status code and payload
func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

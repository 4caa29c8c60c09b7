package api

import (
	"net/http"

	"dev-ticker-server/internal/fault"
	"dev-ticker-server/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// corsMaxAge is how long, in seconds, browsers may cache preflight results
const corsMaxAge = 3600

// RouterOption configures the router
type RouterOption func(*routerOptions)

type routerOptions struct {
	injector *fault.Injector
}

// WithFaultInjector wraps every ticker endpoint with the given injector
func WithFaultInjector(i *fault.Injector) RouterOption {
	return func(o *routerOptions) { o.injector = i }
}

// NewRouter builds the public ticker API. Only GET is routed and CORS is open to every origin.
func NewRouter(h *Handler, m *metrics.MetricsService, logger *zap.SugaredLogger, opts ...RouterOption) http.Handler {
	var o routerOptions
	for _, opt := range opts {
		opt(&o)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery(), RequestLogger(logger), Metrics(m))

	ticker := r.Group("/")
	if o.injector != nil {
		ticker.Use(o.injector.Middleware())
	}
	ticker.GET(QuotesLatestPath, h.LatestQuote)
	ticker.GET(CoinsListPath, h.CoinsList)
	ticker.GET(MarketChartPath, h.MarketChart)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
		MaxAge:         corsMaxAge,
	})
	return c.Handler(r)
}

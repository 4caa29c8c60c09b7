package api

import (
	"net/http"

	"dev-ticker-server/internal/catalog"
	"dev-ticker-server/internal/metrics"
	"dev-ticker-server/internal/pricing"
	"dev-ticker-server/internal/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Route patterns mimicking the CoinMarketCap and CoinGecko APIs
const (
	QuotesLatestPath = "/cryptocurrency/quotes/latest"
	CoinsListPath    = "/api/v3/coins/list"
	MarketChartPath  = "/api/v3/coins/:coin_id/market_chart"
)

// Handler handles API requests
type Handler struct {
	catalog *catalog.Catalog
	synth   *pricing.Synthesizer
	metrics *metrics.MetricsService
	logger  *zap.SugaredLogger
}

// NewHandler creates a new API handler
func NewHandler(
	c *catalog.Catalog,
	s *pricing.Synthesizer,
	m *metrics.MetricsService,
	l *zap.SugaredLogger,
) *Handler {
	return &Handler{
		catalog: c,
		synth:   s,
		metrics: m,
		logger:  l,
	}
}

// LatestQuote handles GET /cryptocurrency/quotes/latest?symbol={symbol}
func (h *Handler) LatestQuote(c *gin.Context) {
	symbol, ok := c.GetQuery("symbol")
	if !ok {
		respondWithError(c, http.StatusBadRequest, "Query parameter symbol is required")
		return
	}

	quote := h.synth.Quote(symbol)
	h.metrics.RecordQuote(QuotesLatestPath, pricing.IsKnown(symbol))
	h.logger.Infow("Quote served", "symbol", symbol, "price_usd", quote.PriceUSD.String())

	c.JSON(http.StatusOK, types.NewQuotesLatestResponse(quote))
}

// CoinsList handles GET /api/v3/coins/list
func (h *Handler) CoinsList(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Tokens())
}

// MarketChart handles GET /api/v3/coins/{coin_id}/market_chart
func (h *Handler) MarketChart(c *gin.Context) {
	coinID := c.Param("coin_id")

	quote := h.synth.Quote(coinID)
	h.metrics.RecordQuote(MarketChartPath, pricing.IsKnown(coinID))
	h.logger.Infow("Quote served", "coin_id", coinID, "price_usd", quote.PriceUSD.String())

	c.JSON(http.StatusOK, types.NewMarketChartResponse(quote))
}

// respondWithError sends an error response with the specified status code and message
func respondWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"msg": message})
}

package types

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// TokenDescriptor describes a token listed in the catalog
type TokenDescriptor struct {
	CanonicalID       string            `json:"id"`
	Symbol            string            `json:"symbol"`
	DisplayName       string            `json:"name"`
	PlatformAddresses map[string]string `json:"platforms"`
}

// Clone returns a deep copy so callers cannot mutate catalog entries
func (t TokenDescriptor) Clone() TokenDescriptor {
	platforms := make(map[string]string, len(t.PlatformAddresses))
	for k, v := range t.PlatformAddresses {
		platforms[k] = v
	}
	t.PlatformAddresses = platforms
	return t
}

// PriceQuote represents a synthesized USD price for a symbol or canonical id
type PriceQuote struct {
	Key       string
	PriceUSD  decimal.Decimal
	Timestamp time.Time
}

// LastUpdated formats the quote timestamp as RFC3339 with millisecond precision in UTC
func (q PriceQuote) LastUpdated() string {
	return q.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// TimestampMillis returns the quote timestamp as unix epoch milliseconds
func (q PriceQuote) TimestampMillis() int64 {
	return q.Timestamp.UnixMilli()
}

// USDQuote is the USD leaf of a quotes/latest response
type USDQuote struct {
	Price       string `json:"price"`
	LastUpdated string `json:"last_updated"`
}

// CurrencyQuotes groups quotes by fiat currency
type CurrencyQuotes struct {
	USD USDQuote `json:"USD"`
}

// SymbolQuote is the per-symbol entry of a quotes/latest response
type SymbolQuote struct {
	Quote CurrencyQuotes `json:"quote"`
}

// QuotesLatestResponse is the body of GET /cryptocurrency/quotes/latest
type QuotesLatestResponse struct {
	Data map[string]SymbolQuote `json:"data"`
}

// MarketChartResponse is the body of GET /api/v3/coins/{coin_id}/market_chart.
// Each point is [epoch millis, price], both encoded as JSON numbers.
type MarketChartResponse struct {
	Prices [][2]json.Number `json:"prices"`
}

// NewQuotesLatestResponse wraps a quote in the quotes/latest envelope
func NewQuotesLatestResponse(q PriceQuote) QuotesLatestResponse {
	return QuotesLatestResponse{
		Data: map[string]SymbolQuote{
			q.Key: {
				Quote: CurrencyQuotes{
					USD: USDQuote{
						Price:       q.PriceUSD.String(),
						LastUpdated: q.LastUpdated(),
					},
				},
			},
		},
	}
}

// NewMarketChartResponse wraps a quote in the market_chart envelope
func NewMarketChartResponse(q PriceQuote) MarketChartResponse {
	return MarketChartResponse{
		Prices: [][2]json.Number{
			{json.Number(strconv.FormatInt(q.TimestampMillis(), 10)), json.Number(q.PriceUSD.String())},
		},
	}
}

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"dev-ticker-server/internal/types"

	"github.com/shopspring/decimal"
)

// Error definitions
var (
	ErrUnexpectedResponse = errors.New("unexpected response body")
)

// defaultTimeout covers the longest injected delay with some headroom
const defaultTimeout = 10 * time.Second

// StatusError is returned when the server answers with a non-200 status
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status code: %d", e.Endpoint, e.StatusCode)
}

// Client queries a ticker server through its CoinMarketCap and CoinGecko shaped endpoints
type Client struct {
	baseURL string
	client  *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.client = c }
}

// NewClient creates a new Client for the server at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LatestQuote fetches the USD quote for a ticker symbol
func (c *Client) LatestQuote(ctx context.Context, symbol string) (*types.PriceQuote, error) {
	var resp types.QuotesLatestResponse
	query := url.Values{"symbol": []string{symbol}}
	if err := c.getJSON(ctx, "/cryptocurrency/quotes/latest", query, &resp); err != nil {
		return nil, err
	}

	entry, ok := resp.Data[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: no quote for %s", ErrUnexpectedResponse, symbol)
	}

	price, err := decimal.NewFromString(entry.Quote.USD.Price)
	if err != nil {
		return nil, fmt.Errorf("%w: price %q: %v", ErrUnexpectedResponse, entry.Quote.USD.Price, err)
	}
	updated, err := time.Parse(time.RFC3339, entry.Quote.USD.LastUpdated)
	if err != nil {
		return nil, fmt.Errorf("%w: last_updated %q: %v", ErrUnexpectedResponse, entry.Quote.USD.LastUpdated, err)
	}

	return &types.PriceQuote{Key: symbol, PriceUSD: price, Timestamp: updated}, nil
}

// CoinsList fetches the token catalog
func (c *Client) CoinsList(ctx context.Context) ([]types.TokenDescriptor, error) {
	var tokens []types.TokenDescriptor
	if err := c.getJSON(ctx, "/api/v3/coins/list", nil, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

// MarketChart fetches the latest price point for a coin id
func (c *Client) MarketChart(ctx context.Context, coinID string) (*types.PriceQuote, error) {
	var resp types.MarketChartResponse
	path := fmt.Sprintf("/api/v3/coins/%s/market_chart", url.PathEscape(coinID))
	if err := c.getJSON(ctx, path, nil, &resp); err != nil {
		return nil, err
	}

	if len(resp.Prices) == 0 {
		return nil, fmt.Errorf("%w: no prices for %s", ErrUnexpectedResponse, coinID)
	}
	point := resp.Prices[0]

	millis, err := strconv.ParseInt(point[0].String(), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: timestamp %q: %v", ErrUnexpectedResponse, point[0], err)
	}
	price, err := decimal.NewFromString(point[1].String())
	if err != nil {
		return nil, fmt.Errorf("%w: price %q: %v", ErrUnexpectedResponse, point[1], err)
	}

	return &types.PriceQuote{Key: coinID, PriceUSD: price, Timestamp: time.UnixMilli(millis)}, nil
}

// getJSON performs a GET request and decodes a 200 response into out
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Endpoint: path, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	return nil
}

package pricing

import (
	"math/rand"
	"time"

	"dev-ticker-server/internal/types"

	"github.com/shopspring/decimal"
)

const (
	// jitterMin and jitterMax bound the open interval the multiplier is drawn from
	jitterMin = 0.9
	jitterMax = 1.1
)

// basePrices holds USD prices estimated from real world values, keyed by ticker symbol
// and by canonical coin id. Lookups are case-sensitive.
var basePrices = map[string]decimal.Decimal{
	"ETH":  decimal.NewFromInt(200),
	"wBTC": decimal.NewFromInt(9000),
	"BAT":  decimal.RequireFromString("0.2"),
	"DAI":  decimal.NewFromInt(1),
	"GLM":  decimal.NewFromInt(1),
	"tGLM": decimal.NewFromInt(1),

	"ethereum":              decimal.NewFromInt(200),
	"wrapped-bitcoin":       decimal.NewFromInt(9000),
	"basic-attention-token": decimal.RequireFromString("0.2"),
	"dai":                   decimal.NewFromInt(1),
	"glm":                   decimal.NewFromInt(1),
	"tglm":                  decimal.NewFromInt(1),
}

// Rand is the source of randomness used to draw jitter factors
type Rand interface {
	Float64() float64
}

// globalRand draws from the math/rand top-level source, which is safe for concurrent use
type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// Synthesizer produces randomized quotes around the base price table
type Synthesizer struct {
	rnd Rand
	now func() time.Time
}

// Option configures a Synthesizer
type Option func(*Synthesizer)

// WithRand overrides the random source
func WithRand(r Rand) Option {
	return func(s *Synthesizer) { s.rnd = r }
}

// WithClock overrides the clock used to timestamp quotes
func WithClock(now func() time.Time) Option {
	return func(s *Synthesizer) { s.now = now }
}

// NewSynthesizer creates a new Synthesizer instance
func NewSynthesizer(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		rnd: globalRand{},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BasePrice returns the base USD price for a symbol or coin id, or zero if it is unknown
func BasePrice(key string) decimal.Decimal {
	if price, ok := basePrices[key]; ok {
		return price
	}
	return decimal.Zero
}

// IsKnown reports whether key has an entry in the base price table
func IsKnown(key string) bool {
	_, ok := basePrices[key]
	return ok
}

// Quote returns the base price for key multiplied by a fresh jitter factor
func (s *Synthesizer) Quote(key string) types.PriceQuote {
	jitter := decimal.NewFromFloat(s.jitter())
	return types.PriceQuote{
		Key:       key,
		PriceUSD:  BasePrice(key).Mul(jitter),
		Timestamp: s.now(),
	}
}

// jitter draws uniformly from (jitterMin, jitterMax); the lower bound is redrawn to keep it open
func (s *Synthesizer) jitter() float64 {
	for {
		j := jitterMin + (jitterMax-jitterMin)*s.rnd.Float64()
		if j > jitterMin && j < jitterMax {
			return j
		}
	}
}

package pricing

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRand []float64

func (f *fixedRand) Float64() float64 {
	v := (*f)[0]
	*f = (*f)[1:]
	return v
}

func TestQuoteWithinJitterBounds(t *testing.T) {
	s := NewSynthesizer(WithRand(rand.New(rand.NewSource(42))))

	for key, base := range basePrices {
		lower := base.Mul(decimal.RequireFromString("0.9"))
		upper := base.Mul(decimal.RequireFromString("1.1"))
		for i := 0; i < 1000; i++ {
			q := s.Quote(key)
			require.Equal(t, key, q.Key)
			require.True(t, q.PriceUSD.GreaterThanOrEqual(lower), "%s: %s < %s", key, q.PriceUSD, lower)
			require.True(t, q.PriceUSD.LessThanOrEqual(upper), "%s: %s > %s", key, q.PriceUSD, upper)
		}
	}
}

func TestQuoteUnknownKeyIsZero(t *testing.T) {
	s := NewSynthesizer()
	for _, key := range []string{"XYZ", "eth", "Ethereum", "", "wbtc"} {
		q := s.Quote(key)
		assert.True(t, q.PriceUSD.IsZero(), "expected zero price for %q, got %s", key, q.PriceUSD)
	}
}

func TestQuoteUsesJitterAndClock(t *testing.T) {
	now := time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)
	r := fixedRand{0.5}
	s := NewSynthesizer(WithRand(&r), WithClock(func() time.Time { return now }))

	q := s.Quote("ETH")
	assert.True(t, q.PriceUSD.Equal(decimal.NewFromInt(200)), "got %s", q.PriceUSD)
	assert.Equal(t, now, q.Timestamp)
}

func TestJitterOpenInterval(t *testing.T) {
	// a zero draw would hit the closed lower bound and must be redrawn
	r := fixedRand{0, 0.25}
	s := NewSynthesizer(WithRand(&r))

	j := s.jitter()
	assert.InDelta(t, 0.95, j, 1e-9)
	assert.Empty(t, r)
}

func TestBasePrice(t *testing.T) {
	assert.True(t, BasePrice("wBTC").Equal(decimal.NewFromInt(9000)))
	assert.True(t, BasePrice("wrapped-bitcoin").Equal(decimal.NewFromInt(9000)))
	assert.True(t, BasePrice("BAT").Equal(decimal.RequireFromString("0.2")))
	assert.True(t, BasePrice("WBTC").IsZero())
	assert.True(t, IsKnown("tGLM"))
	assert.False(t, IsKnown("TGLM"))
}

package fault

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"dev-ticker-server/internal/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// errorPercent is the share of requests answered with an injected server error
	errorPercent = 5

	shortDelay       = 100 * time.Millisecond
	longDelay        = 5 * time.Second
	minRandomDelayMs = 100
	maxRandomDelayMs = 1000
)

// Delay buckets
const (
	BucketShort  = "short"  // 60% of delayed requests, 100ms
	BucketLong   = "long"   // 10% of delayed requests, 5s
	BucketRandom = "random" // 30% of delayed requests, uniform in [100ms, 1s)
)

// Rand is the source of randomness for fault decisions
type Rand interface {
	Intn(n int) int
}

// globalRand draws from the math/rand top-level source, which is safe for concurrent use
type globalRand struct{}

func (globalRand) Intn(n int) int { return rand.Intn(n) }

// Decision is the outcome of a single fault draw
type Decision struct {
	Fail   bool
	Delay  time.Duration
	Bucket string
}

// Injector randomly fails or delays requests to simulate an unreliable upstream
type Injector struct {
	rnd     Rand
	wait    func(ctx context.Context, d time.Duration) error
	logger  *zap.SugaredLogger
	metrics *metrics.MetricsService
}

// Option configures an Injector
type Option func(*Injector)

// WithRand overrides the random source
func WithRand(r Rand) Option {
	return func(i *Injector) { i.rnd = r }
}

// WithWait overrides how the injector waits out a delay
func WithWait(wait func(ctx context.Context, d time.Duration) error) Option {
	return func(i *Injector) { i.wait = wait }
}

// NewInjector creates a new Injector instance
func NewInjector(logger *zap.SugaredLogger, m *metrics.MetricsService, opts ...Option) *Injector {
	i := &Injector{
		rnd:     globalRand{},
		wait:    sleep,
		logger:  logger,
		metrics: m,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Decide draws whether a request fails and, if not, how long it is delayed
func (i *Injector) Decide() Decision {
	if i.rnd.Intn(100) < errorPercent {
		return Decision{Fail: true}
	}

	switch n := i.rnd.Intn(100); {
	case n < 60:
		return Decision{Delay: shortDelay, Bucket: BucketShort}
	case n < 70:
		return Decision{Delay: longDelay, Bucket: BucketLong}
	default:
		ms := minRandomDelayMs + i.rnd.Intn(maxRandomDelayMs-minRandomDelayMs)
		return Decision{Delay: time.Duration(ms) * time.Millisecond, Bucket: BucketRandom}
	}
}

// Middleware wraps the downstream handlers of a route with fault injection
func (i *Injector) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		endpoint := c.FullPath()
		d := i.Decide()

		if d.Fail {
			i.logger.Debugw("Request has been errored", "endpoint", endpoint)
			i.metrics.RecordInjectedError(endpoint)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		i.logger.Debugw("Request has been delayed",
			"endpoint", endpoint,
			"bucket", d.Bucket,
			"delay_ms", d.Delay.Milliseconds(),
		)
		i.metrics.RecordInjectedDelay(endpoint, d.Bucket, d.Delay)

		if err := i.wait(c.Request.Context(), d.Delay); err != nil {
			i.logger.Debugw("Client went away during injected delay", "endpoint", endpoint, "error", err)
			c.Abort()
			return
		}

		c.Next()
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

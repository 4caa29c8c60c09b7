package client

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Latency bucket boundaries, chosen so that a sloppy server's 100ms, 100ms-1s and 5s delays separate
const (
	fastLatency = 300 * time.Millisecond
	slowLatency = 4 * time.Second
)

// Summary aggregates the outcome of a batch of sampled requests
type Summary struct {
	Total  int
	Errors int
	Fast   int // successful, under 300ms
	Medium int // successful, between 300ms and 4s
	Slow   int // successful, 4s or more
}

// ErrorRate returns the share of failed requests
func (s Summary) ErrorRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Errors) / float64(s.Total)
}

// Share returns the share of successful requests that fell into count
func (s Summary) Share(count int) float64 {
	ok := s.Total - s.Errors
	if ok == 0 {
		return 0
	}
	return float64(count) / float64(ok)
}

func (s *Summary) add(latency time.Duration, err error) {
	s.Total++
	switch {
	case err != nil:
		s.Errors++
	case latency < fastLatency:
		s.Fast++
	case latency < slowLatency:
		s.Medium++
	default:
		s.Slow++
	}
}

// Sample runs call n times with at most concurrency calls in flight and classifies the results.
// It stops early if ctx is cancelled.
func Sample(ctx context.Context, n, concurrency int, call func(ctx context.Context) error) (Summary, error) {
	var (
		summary Summary
		mu      sync.Mutex
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			start := time.Now()
			err := call(gctx)
			latency := time.Since(start)

			mu.Lock()
			summary.add(latency, err)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}
	return summary, ctx.Err()
}

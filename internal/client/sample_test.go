package client

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryAdd(t *testing.T) {
	var s Summary
	s.add(100*time.Millisecond, nil)
	s.add(299*time.Millisecond, nil)
	s.add(300*time.Millisecond, nil)
	s.add(999*time.Millisecond, nil)
	s.add(5*time.Second, nil)
	s.add(time.Millisecond, errors.New("boom"))

	assert.Equal(t, Summary{Total: 6, Errors: 1, Fast: 2, Medium: 2, Slow: 1}, s)
	assert.InDelta(t, 1.0/6, s.ErrorRate(), 1e-9)
	assert.InDelta(t, 0.4, s.Share(s.Fast), 1e-9)
}

func TestSummaryEmpty(t *testing.T) {
	var s Summary
	assert.Zero(t, s.ErrorRate())
	assert.Zero(t, s.Share(0))
}

func TestSample(t *testing.T) {
	var calls, inFlight, maxInFlight int64
	summary, err := Sample(context.Background(), 100, 4, func(context.Context) error {
		cur := atomic.AddInt64(&inFlight, 1)
		defer atomic.AddInt64(&inFlight, -1)
		for {
			prev := atomic.LoadInt64(&maxInFlight)
			if cur <= prev || atomic.CompareAndSwapInt64(&maxInFlight, prev, cur) {
				break
			}
		}

		if atomic.AddInt64(&calls, 1)%20 == 0 {
			return errors.New("injected")
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 100, summary.Total)
	assert.Equal(t, 5, summary.Errors)
	assert.Equal(t, 95, summary.Fast)
	assert.LessOrEqual(t, maxInFlight, int64(4))
}

func TestSampleCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := Sample(ctx, 100, 4, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Total)
}

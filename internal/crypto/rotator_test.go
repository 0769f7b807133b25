package crypto

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRotator struct {
	mu    sync.Mutex
	calls int
	err   error
	done  chan struct{}
}

func (c *countingRotator) RotateKeys(context.Context) (string, error) {
	c.mu.Lock()
	c.calls++
	n := c.calls
	c.mu.Unlock()
	if n == 3 {
		close(c.done)
	}
	return "id", c.err
}

func manualTicker(ch chan time.Time) func(time.Duration) (<-chan time.Time, func()) {
	return func(time.Duration) (<-chan time.Time, func()) { return ch, func() {} }
}

func TestRotator_RotatesOnEachTick(t *testing.T) {
	target := &countingRotator{done: make(chan struct{}), err: errors.New("boom")}
	ticks := make(chan time.Time)
	r := NewRotator(target, time.Hour)
	r.tick = manualTicker(ticks)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- r.Run(ctx) }()

	for i := 0; i < 3; i++ {
		ticks <- time.Now()
	}
	<-target.done
	cancel()
	require.NoError(t, <-errc)

	target.mu.Lock()
	defer target.mu.Unlock()
	assert.Equal(t, 3, target.calls, "los errores no detienen el scheduler")
}

func TestNewRotator_DefaultInterval(t *testing.T) {
	r := NewRotator(&countingRotator{}, 0)
	assert.Equal(t, DefaultRotationInterval, r.Interval)
}

func TestRotator_WithRealService(t *testing.T) {
	s := newService(t)
	ticks := make(chan time.Time)
	r := NewRotator(s, time.Hour)
	r.tick = manualTicker(ticks)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { _ = r.Run(ctx); close(done) }()

	ticks <- time.Now()
	ticks <- time.Now()
	cancel()
	<-done

	assert.Len(t, s.Keys(context.Background()), 3)
}

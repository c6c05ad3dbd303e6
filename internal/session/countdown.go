// Package session implements the session-expiry countdown: a once-per-interval
// decrementing counter owned by a view, which redirects exactly once when it
// reaches zero and never fires after its owner stops it.
package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrStarted = errors.New("countdown already started")
	ErrStopped = errors.New("countdown stopped")
)

// TickerFunc starts a ticker and returns its channel and a stop function.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func RealTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Countdown counts down from a start value, one step per tick. onTick gets the
// remaining count after each step; onDone runs once when it hits zero.
// Callbacks run on the countdown goroutine and must not call Stop.
type Countdown struct {
	from      int
	interval  time.Duration
	newTicker TickerFunc
	onTick    func(remaining int)
	onDone    func()

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
	stopped bool
}

func NewCountdown(from int, interval time.Duration, ticker TickerFunc, onTick func(int), onDone func()) *Countdown {
	if ticker == nil {
		ticker = RealTicker
	}
	if onTick == nil {
		onTick = func(int) {}
	}
	if onDone == nil {
		onDone = func() {}
	}
	return &Countdown{
		from:      from,
		interval:  interval,
		newTicker: ticker,
		onTick:    onTick,
		onDone:    onDone,
		done:      make(chan struct{}),
	}
}

// Start begins ticking. The countdown also ends when ctx is cancelled.
func (c *Countdown) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return ErrStopped
	}
	if c.started {
		return ErrStarted
	}
	c.started = true

	ctx, c.cancel = context.WithCancel(ctx)
	ticks, stop := c.newTicker(c.interval)
	go c.run(ctx, ticks, stop)
	return nil
}

func (c *Countdown) run(ctx context.Context, ticks <-chan time.Time, stop func()) {
	defer close(c.done)
	defer stop()

	remaining := c.from
	for remaining > 0 {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
		}
		// a tick and a cancel can be ready together
		if ctx.Err() != nil {
			return
		}
		remaining--
		c.onTick(remaining)
	}
	if ctx.Err() != nil {
		return
	}
	c.onDone()
}

// Stop cancels the countdown and waits for its goroutine to exit, so no
// callback runs after Stop returns. It is safe to call more than once.
func (c *Countdown) Stop() {
	c.mu.Lock()
	c.stopped = true
	started := c.started
	cancel := c.cancel
	c.mu.Unlock()

	if !started {
		return
	}
	cancel()
	<-c.done
}

// Done is closed once the countdown goroutine has exited.
func (c *Countdown) Done() <-chan struct{} { return c.done }

// Package clock arms the per-turn draft timer.
package clock

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// TurnClock owns the single armed timer for a draft. Every arm gets a
// fresh token; the expiry callback receives the token it was armed with,
// so a fire that lost a race with a pick or a turn transition can be
// recognized as stale and dropped.
//
// In production the clock is a clockwork real clock; tests drive it with
// a fake one.
type TurnClock struct {
	clk      clockwork.Clock
	onExpire func(token uint64)

	mu        sync.Mutex
	timer     clockwork.Timer
	token     uint64
	expiresAt time.Time
	remaining time.Duration
}

// New creates a TurnClock. onExpire runs on the clock's timer goroutine;
// callers are expected to re-serialize through their own lock and check
// the token before acting.
func New(clk clockwork.Clock, onExpire func(token uint64)) *TurnClock {
	return &TurnClock{clk: clk, onExpire: onExpire}
}

// Begin arms a single-fire timer for a new turn and returns its token
// and expiry instant. Any previously armed timer is cancelled.
func (c *TurnClock) Begin(window time.Duration) (uint64, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.arm(window)
}

// Pause cancels the armed timer and captures the remaining duration so
// Resume can re-arm with it. Returns the captured remainder.
func (c *TurnClock) Pause() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	remaining := c.expiresAt.Sub(c.clk.Now())
	if remaining < 0 {
		remaining = 0
	}
	c.stop()
	c.remaining = remaining
	c.expiresAt = time.Time{}
	return remaining
}

// Resume re-arms using the duration captured at pause time and returns
// the new token and expiry instant.
func (c *TurnClock) Resume() (uint64, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.arm(c.remaining)
}

// Cancel stops any armed timer without capturing remaining time. Used on
// pick commit before the next turn's Begin, and on draft completion.
func (c *TurnClock) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stop()
	c.expiresAt = time.Time{}
}

// PrimeRemaining seeds the paused remainder without arming, for engines
// restored from a store snapshot in the PAUSED state.
func (c *TurnClock) PrimeRemaining(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remaining = d
}

// ExpiresAt returns the expiry instant of the armed timer, or nil when
// no timer is armed.
func (c *TurnClock) ExpiresAt() *time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer == nil {
		return nil
	}
	t := c.expiresAt
	return &t
}

func (c *TurnClock) arm(window time.Duration) (uint64, time.Time) {
	c.stop()
	c.token++
	c.remaining = 0
	c.expiresAt = c.clk.Now().Add(window)

	token := c.token
	c.timer = c.clk.AfterFunc(window, func() {
		c.onExpire(token)
	})
	return token, c.expiresAt
}

// stop halts the armed timer and invalidates its token. A fire already
// in flight still runs, but carries a stale token.
func (c *TurnClock) stop() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.token++
}

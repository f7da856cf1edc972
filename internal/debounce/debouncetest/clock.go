// Package debouncetest provides a manually advanced clock for debounce users.
package debouncetest

import (
	"sort"
	"sync"
	"time"

	"rent-admin/internal/debounce"
)

// Clock is a debounce.Clock whose time only moves on Advance
type Clock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*timer
}

var _ debounce.Clock = (*Clock)(nil)

type timer struct {
	clock *Clock
	at    time.Duration
	f     func()
}

// Stop unschedules the timer. It reports whether the timer was still pending.
func (t *timer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	return t.clock.remove(t)
}

func (c *Clock) remove(t *timer) bool {
	for i, other := range c.timers {
		if other == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return true
		}
	}
	return false
}

// Now is the elapsed fake time
func (c *Clock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Scheduled is the number of timers still waiting to fire
func (c *Clock) Scheduled() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func (c *Clock) AfterFunc(d time.Duration, f func()) debounce.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &timer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward by d and runs due timers in order on the
// calling goroutine
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		sort.SliceStable(c.timers, func(i, j int) bool { return c.timers[i].at < c.timers[j].at })
		if len(c.timers) == 0 || c.timers[0].at > target {
			c.now = target
			c.mu.Unlock()
			return
		}
		due := c.timers[0]
		c.timers = c.timers[1:]
		c.now = due.at
		c.mu.Unlock()
		due.f()
	}
}

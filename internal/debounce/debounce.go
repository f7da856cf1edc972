package debounce

import (
	"sync"
	"time"
)

// DefaultWindow is the quiescence window used by search inputs
const DefaultWindow = 300 * time.Millisecond

// Timer is the part of *time.Timer the debouncer needs
type Timer interface {
	Stop() bool
}

// Clock schedules delayed calls
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// RealClock is backed by the time package
var RealClock Clock = realClock{}

// Debouncer calls fn with the last triggered value once no new trigger
// arrived for the window
type Debouncer[V any] struct {
	mu      sync.Mutex
	clock   Clock
	window  time.Duration
	fn      func(V)
	pending Timer
	gen     uint64
}

func New[V any](window time.Duration, clock Clock, fn func(V)) *Debouncer[V] {
	if window <= 0 {
		window = DefaultWindow
	}
	if clock == nil {
		clock = RealClock
	}
	return &Debouncer[V]{clock: clock, window: window, fn: fn}
}

// Trigger restarts the window with value v
func (d *Debouncer[V]) Trigger(v V) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		d.pending.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = d.clock.AfterFunc(d.window, func() {
		d.mu.Lock()
		// a timer that fired while being replaced must not run
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.pending = nil
		d.mu.Unlock()
		d.fn(v)
	})
}

// Stop cancels the pending call, if any
func (d *Debouncer[V]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
	d.gen++
}

// Pending reports whether a call is scheduled
func (d *Debouncer[V]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

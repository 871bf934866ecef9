package sched

import (
	"sync"
	"time"
)

// Debouncer runs the most recent of a burst of calls once no new call has
// arrived for the configured delay.
type Debouncer struct {
	clock Clock
	delay time.Duration

	mu    sync.Mutex
	gen   uint64
	timer Timer
}

// NewDebouncer creates a trailing-edge debouncer. A nil clock uses RealClock.
func NewDebouncer(clock Clock, delay time.Duration) *Debouncer {
	if clock == nil {
		clock = RealClock()
	}
	return &Debouncer{clock: clock, delay: delay}
}

// Call schedules fn, replacing any call still waiting out the delay.
func (d *Debouncer) Call(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// A real timer can fire after Stop lost the race; the generation
		// tells us a newer call superseded this one.
		if d.gen != gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops any pending call.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending reports whether a call is waiting to run.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

package mapfeed

import (
	"math"
	"sync"
	"time"
)

const (
	// DefaultSettleDelay is how long the viewport must stay still before a
	// query is considered worth issuing.
	DefaultSettleDelay = time.Second

	// DefaultMoveThreshold is the minimum center movement, in degrees on
	// either axis, that justifies a new query. Roughly 100 m of latitude.
	DefaultMoveThreshold = 0.001
)

// Debouncer reduces a raw stream of viewport-change events to settled
// viewports worth querying. A burst of events within the settle window
// collapses to the last one; settles whose center barely moved since the
// last emitted viewport are suppressed entirely.
type Debouncer struct {
	settle    time.Duration
	threshold float64
	emit      func(Viewport)

	mu          sync.Mutex
	timer       *time.Timer
	pending     Viewport
	lastQueried *Viewport
	closed      bool
}

// NewDebouncer creates a Debouncer that calls emit for each settled
// viewport. Zero settle or threshold select the defaults.
func NewDebouncer(settle time.Duration, threshold float64, emit func(Viewport)) *Debouncer {
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	if threshold <= 0 {
		threshold = DefaultMoveThreshold
	}
	return &Debouncer{settle: settle, threshold: threshold, emit: emit}
}

// Observe records a viewport-change event, restarting the settle timer.
func (d *Debouncer) Observe(v Viewport) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	d.pending = v
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.settle, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	v := d.pending
	d.timer = nil

	// Suppress sub-significant moves relative to the last viewport that
	// actually produced a query, not merely the last event.
	if d.lastQueried != nil &&
		math.Abs(d.lastQueried.Center.Lat-v.Center.Lat) < d.threshold &&
		math.Abs(d.lastQueried.Center.Lng-v.Center.Lng) < d.threshold {
		d.mu.Unlock()
		return
	}

	last := v
	d.lastQueried = &last
	d.mu.Unlock()

	d.emit(v)
}

// Close cancels any pending settle timer. The owning view is being torn
// down; a query must not fire into a dead view.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

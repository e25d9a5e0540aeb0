package mapfeed_test

import (
	"sync"
	"testing"
	"time"

	"github.com/runmate-app/runmate/internal/core/domain"
	"github.com/runmate-app/runmate/internal/mapfeed"
)

const testSettle = 30 * time.Millisecond

func viewportAt(lat, lng float64) mapfeed.Viewport {
	return mapfeed.Viewport{
		Center:   domain.GeoPoint{Lat: lat, Lng: lng},
		LatDelta: 0.05,
		LngDelta: 0.05,
	}
}

// collector records emitted viewports safely across goroutines.
type collector struct {
	mu      sync.Mutex
	settled []mapfeed.Viewport
}

func (c *collector) emit(v mapfeed.Viewport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settled = append(c.settled, v)
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.settled)
}

func (c *collector) last() mapfeed.Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settled[len(c.settled)-1]
}

func TestDebouncer_BurstCollapsesToOne(t *testing.T) {
	var c collector
	d := mapfeed.NewDebouncer(testSettle, mapfeed.DefaultMoveThreshold, c.emit)
	defer d.Close()

	// A burst of pans inside the settle window.
	for i := 0; i < 8; i++ {
		d.Observe(viewportAt(60.39+float64(i)*0.01, 5.32))
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(4 * testSettle)

	if got := c.count(); got != 1 {
		t.Fatalf("expected exactly 1 settled event, got %d", got)
	}
	want := 60.39 + 7*0.01
	if got := c.last().Center.Lat; got != want {
		t.Errorf("settled viewport should carry the last event, lat = %f, want %f", got, want)
	}
}

func TestDebouncer_SuppressesSubSignificantMove(t *testing.T) {
	var c collector
	d := mapfeed.NewDebouncer(testSettle, mapfeed.DefaultMoveThreshold, c.emit)
	defer d.Close()

	d.Observe(viewportAt(60.3913, 5.3221))
	time.Sleep(4 * testSettle)
	if got := c.count(); got != 1 {
		t.Fatalf("first viewport should settle, got %d events", got)
	}

	// Pan by 0.0005 degrees: below the 0.001 threshold on both axes.
	d.Observe(viewportAt(60.3913+0.0005, 5.3221+0.0005))
	time.Sleep(4 * testSettle)
	if got := c.count(); got != 1 {
		t.Fatalf("sub-threshold move must not emit, got %d events", got)
	}

	// Pan by 0.01 degrees: clearly significant.
	d.Observe(viewportAt(60.3913+0.01, 5.3221))
	time.Sleep(4 * testSettle)
	if got := c.count(); got != 2 {
		t.Fatalf("significant move should emit exactly one new event, got %d", got)
	}
}

func TestDebouncer_SuppressionComparesAgainstLastQueried(t *testing.T) {
	var c collector
	d := mapfeed.NewDebouncer(testSettle, mapfeed.DefaultMoveThreshold, c.emit)
	defer d.Close()

	d.Observe(viewportAt(60.0, 5.0))
	time.Sleep(4 * testSettle)

	// Two consecutive sub-threshold settles; neither may emit even though
	// the second differs from the first suppressed one.
	d.Observe(viewportAt(60.0004, 5.0))
	time.Sleep(4 * testSettle)
	d.Observe(viewportAt(60.0008, 5.0))
	time.Sleep(4 * testSettle)

	if got := c.count(); got != 1 {
		t.Fatalf("expected only the initial emit, got %d", got)
	}
}

func TestDebouncer_SingleAxisMoveEmits(t *testing.T) {
	var c collector
	d := mapfeed.NewDebouncer(testSettle, mapfeed.DefaultMoveThreshold, c.emit)
	defer d.Close()

	d.Observe(viewportAt(60.0, 5.0))
	time.Sleep(4 * testSettle)

	// Longitude moved past the threshold, latitude did not.
	d.Observe(viewportAt(60.0, 5.002))
	time.Sleep(4 * testSettle)

	if got := c.count(); got != 2 {
		t.Fatalf("move past threshold on one axis should emit, got %d events", got)
	}
}

func TestDebouncer_CloseCancelsPendingSettle(t *testing.T) {
	var c collector
	d := mapfeed.NewDebouncer(testSettle, mapfeed.DefaultMoveThreshold, c.emit)

	d.Observe(viewportAt(60.39, 5.32))
	d.Close()

	time.Sleep(4 * testSettle)
	if got := c.count(); got != 0 {
		t.Fatalf("closed debouncer must not emit, got %d events", got)
	}

	// Events after Close are ignored too.
	d.Observe(viewportAt(61.0, 6.0))
	time.Sleep(4 * testSettle)
	if got := c.count(); got != 0 {
		t.Fatalf("observe after close must not emit, got %d events", got)
	}
}

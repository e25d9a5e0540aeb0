package mapfeed_test

import (
	"errors"
	"math"
	"testing"

	"github.com/runmate-app/runmate/internal/core/domain"
	"github.com/runmate-app/runmate/internal/mapfeed"
)

func TestBuildBoxQuery(t *testing.T) {
	v := mapfeed.Viewport{
		Center:   domain.GeoPoint{Lat: 60.3913, Lng: 5.3221},
		LatDelta: 0.05,
		LngDelta: 0.05,
	}

	q, err := mapfeed.BuildBoxQuery(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Kind != mapfeed.BoxQuery {
		t.Errorf("expected box query kind, got %d", q.Kind)
	}
	if q.Bounds.LatMin > q.Bounds.LatMax {
		t.Errorf("latMin %f > latMax %f", q.Bounds.LatMin, q.Bounds.LatMax)
	}
	if q.Bounds.LngMin > q.Bounds.LngMax {
		t.Errorf("lngMin %f > lngMax %f", q.Bounds.LngMin, q.Bounds.LngMax)
	}
	if got := q.Bounds.LatMin; math.Abs(got-(60.3913-0.05)) > 1e-9 {
		t.Errorf("latMin = %f, want %f", got, 60.3913-0.05)
	}
	if got := q.Bounds.LngMax; math.Abs(got-(5.3221+0.05)) > 1e-9 {
		t.Errorf("lngMax = %f, want %f", got, 5.3221+0.05)
	}
}

func TestBuildBoxQuery_OrderedForAnySpan(t *testing.T) {
	// Min never exceeds max as long as both deltas are positive.
	for _, delta := range []float64{1e-9, 0.001, 0.5, 10, 90} {
		v := mapfeed.Viewport{Center: domain.GeoPoint{Lat: -33.9, Lng: 151.2}, LatDelta: delta, LngDelta: delta}
		q, err := mapfeed.BuildBoxQuery(v)
		if err != nil {
			t.Fatalf("delta %f: unexpected error: %v", delta, err)
		}
		if q.Bounds.LatMin > q.Bounds.LatMax || q.Bounds.LngMin > q.Bounds.LngMax {
			t.Errorf("delta %f: bounds out of order: %+v", delta, q.Bounds)
		}
	}
}

func TestBuildBoxQuery_InvalidViewport(t *testing.T) {
	for _, v := range []mapfeed.Viewport{
		{LatDelta: 0, LngDelta: 0.05},
		{LatDelta: 0.05, LngDelta: 0},
		{LatDelta: -0.01, LngDelta: 0.05},
	} {
		if _, err := mapfeed.BuildBoxQuery(v); !errors.Is(err, mapfeed.ErrInvalidViewport) {
			t.Errorf("viewport %+v: expected ErrInvalidViewport, got %v", v, err)
		}
	}
}

func TestBuildRadiusQuery(t *testing.T) {
	v := mapfeed.Viewport{
		Center:   domain.GeoPoint{Lat: 60.3913, Lng: 5.3221},
		LatDelta: 0.05,
		LngDelta: 0.05,
	}

	q, err := mapfeed.BuildRadiusQuery(v, 1.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Kind != mapfeed.RadiusQuery {
		t.Errorf("expected radius query kind, got %d", q.Kind)
	}

	// radius = round((latDelta / 2) * 111000 * padding)
	want := int(math.Round((0.05 / 2) * 111000 * 1.5))
	if q.RadiusM != want {
		t.Errorf("radius = %d, want %d", q.RadiusM, want)
	}
	if q.RadiusM <= 0 {
		t.Errorf("radius must be positive, got %d", q.RadiusM)
	}
}

func TestBuildRadiusQuery_PositiveForAnyPositivePadding(t *testing.T) {
	v := mapfeed.Viewport{Center: domain.GeoPoint{Lat: 60.0, Lng: 5.0}, LatDelta: 0.01, LngDelta: 0.01}
	for _, padding := range []float64{0.1, 1, 1.5, 3} {
		q, err := mapfeed.BuildRadiusQuery(v, padding)
		if err != nil {
			t.Fatalf("padding %f: unexpected error: %v", padding, err)
		}
		if q.RadiusM <= 0 {
			t.Errorf("padding %f: radius = %d, want > 0", padding, q.RadiusM)
		}
	}
}

func TestBuildRadiusQuery_Invalid(t *testing.T) {
	v := mapfeed.Viewport{Center: domain.GeoPoint{Lat: 60.0, Lng: 5.0}, LatDelta: 0.05, LngDelta: 0.05}
	if _, err := mapfeed.BuildRadiusQuery(v, 0); !errors.Is(err, mapfeed.ErrInvalidViewport) {
		t.Errorf("zero padding: expected ErrInvalidViewport, got %v", err)
	}
	v.LatDelta = 0
	if _, err := mapfeed.BuildRadiusQuery(v, 1.5); !errors.Is(err, mapfeed.ErrInvalidViewport) {
		t.Errorf("zero delta: expected ErrInvalidViewport, got %v", err)
	}
}

// Package mapfeed implements the client-side core of the map and feed
// screens: turning a map viewport into a geospatial query, debouncing
// viewport-driven refetches, and merging responses that may arrive out of
// order into the single set of runs currently displayed.
package mapfeed

import (
	"errors"
	"math"

	"github.com/runmate-app/runmate/internal/core/domain"
	"github.com/runmate-app/runmate/internal/pkg/geospatial"
)

// ErrInvalidViewport reports a viewport with a non-positive span. It is a
// local construction error and never reaches the network.
var ErrInvalidViewport = errors.New("invalid viewport")

// DefaultPadding over-fetches radius queries slightly so panning does not
// immediately starve the view.
const DefaultPadding = 1.5

// Viewport is the visible map region: a center plus an angular span.
// It is produced continuously by map interaction and never persisted.
type Viewport struct {
	Center   domain.GeoPoint
	LatDelta float64
	LngDelta float64
}

// QueryKind discriminates the two request shapes the store supports.
type QueryKind int

const (
	// BoxQuery filters by four coordinate bounds.
	BoxQuery QueryKind = iota
	// RadiusQuery filters by center point and radius in meters.
	RadiusQuery
)

// Query is a single geospatial request derived from a viewport. Seq is
// stamped at issue time (Merger.Next) and identifies staleness; a Query is
// discarded once its response is merged or superseded.
type Query struct {
	Kind    QueryKind
	Bounds  domain.Bounds
	Center  domain.GeoPoint
	RadiusM int
	Seq     uint64
}

// BuildBoxQuery derives a bounding box from the viewport: the center plus
// and minus the full angular span on each axis.
func BuildBoxQuery(v Viewport) (Query, error) {
	if v.LatDelta <= 0 || v.LngDelta <= 0 {
		return Query{}, ErrInvalidViewport
	}
	return Query{
		Kind: BoxQuery,
		Bounds: domain.Bounds{
			LatMin: v.Center.Lat - v.LatDelta,
			LatMax: v.Center.Lat + v.LatDelta,
			LngMin: v.Center.Lng - v.LngDelta,
			LngMax: v.Center.Lng + v.LngDelta,
		},
	}, nil
}

// BuildRadiusQuery derives a search radius in meters from half the latitude
// span, scaled by a padding factor and rounded to the nearest meter.
func BuildRadiusQuery(v Viewport, padding float64) (Query, error) {
	if v.LatDelta <= 0 || padding <= 0 {
		return Query{}, ErrInvalidViewport
	}
	radius := math.Round((v.LatDelta / 2) * geospatial.MetersPerDegreeLat * padding)
	return Query{
		Kind:    RadiusQuery,
		Center:  v.Center,
		RadiusM: int(radius),
	}, nil
}

// Simulates a map client panning over the run map: viewport changes are
// debounced, settled viewports become bounding-box queries against the API,
// and responses are merged with stale-response protection. Useful for
// eyeballing the feed against a running API.
//
//	mapsim [baseURL] [centerLat] [centerLng]
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/runmate-app/runmate/internal/core/domain"
	"github.com/runmate-app/runmate/internal/mapfeed"
)

func main() {
	baseURL := "http://localhost:8080"
	centerLat, centerLng := 60.3913, 5.3221 // Bergen
	if len(os.Args) > 1 {
		baseURL = os.Args[1]
	}
	if len(os.Args) > 3 {
		if lat, err := strconv.ParseFloat(os.Args[2], 64); err == nil {
			centerLat = lat
		}
		if lng, err := strconv.ParseFloat(os.Args[3], 64); err == nil {
			centerLng = lng
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := mapfeed.NewClient(baseURL, 10*time.Second)
	view := mapfeed.NewView(ctx, client, mapfeed.ViewOptions{})
	defer view.Close()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	vp := mapfeed.Viewport{
		Center:   domain.GeoPoint{Lat: centerLat, Lng: centerLng},
		LatDelta: 0.05,
		LngDelta: 0.05,
	}

	log.Printf("panning around (%.4f, %.4f) against %s", centerLat, centerLng, baseURL)

	for i := 0; i < 10; i++ {
		// A pan gesture: a burst of region changes, then the finger lifts.
		steps := 3 + rng.Intn(5)
		for s := 0; s < steps; s++ {
			vp.Center.Lat += (rng.Float64() - 0.5) * 0.01
			vp.Center.Lng += (rng.Float64() - 0.5) * 0.01
			view.HandleRegionChange(vp)
			time.Sleep(50 * time.Millisecond)
		}

		// Wait out the settle delay plus a little network slack.
		time.Sleep(mapfeed.DefaultSettleDelay + 500*time.Millisecond)

		runs := view.Runs()
		fmt.Printf("pan %2d: center=(%.4f, %.4f) -> %d runs displayed\n",
			i+1, vp.Center.Lat, vp.Center.Lng, len(runs))
		for _, r := range runs[:min(3, len(runs))] {
			fmt.Printf("        %s (%.1f km) at (%.4f, %.4f)\n",
				r.Title, r.DistanceKm, r.Location.Lat, r.Location.Lng)
		}
	}
}

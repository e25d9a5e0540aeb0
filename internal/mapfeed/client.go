package mapfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/runmate-app/runmate/internal/core/domain"
)

const (
	// boxQueryLimit caps the client-side box path. The remote bounding-box
	// endpoint carries its own larger cap.
	boxQueryLimit = 100

	defaultTimeout = 10 * time.Second
)

// Client executes geospatial queries against the RunMate API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the given API base URL. A request that
// never returns would otherwise hang forever, so every request carries an
// explicit timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Execute issues the query and returns the matching runs. Failures are
// typed: *NetworkError for transport problems, *RemoteQueryError for
// store-side failures. Both are non-fatal for a browsing view; the caller
// keeps whatever it was already displaying.
func (c *Client) Execute(ctx context.Context, q Query) ([]domain.Run, error) {
	var endpoint string
	params := url.Values{}

	switch q.Kind {
	case BoxQuery:
		endpoint = c.baseURL + "/v1/runs/box"
		params.Set("latMin", formatCoord(q.Bounds.LatMin))
		params.Set("latMax", formatCoord(q.Bounds.LatMax))
		params.Set("lngMin", formatCoord(q.Bounds.LngMin))
		params.Set("lngMax", formatCoord(q.Bounds.LngMax))
		params.Set("limit", strconv.Itoa(boxQueryLimit))
	case RadiusQuery:
		endpoint = c.baseURL + "/v1/runs/nearby"
		params.Set("lat", formatCoord(q.Center.Lat))
		params.Set("lng", formatCoord(q.Center.Lng))
		params.Set("radius", strconv.Itoa(q.RadiusM))
	default:
		return nil, fmt.Errorf("unknown query kind %d", q.Kind)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &RemoteQueryError{Status: resp.StatusCode, Message: string(body)}
	}

	var runs []domain.Run
	if err := json.NewDecoder(resp.Body).Decode(&runs); err != nil {
		return nil, &RemoteQueryError{Status: resp.StatusCode, Message: "invalid response body: " + err.Error()}
	}

	return validateRuns(runs), nil
}

// validateRuns drops rows the store should never have produced instead of
// letting them reach rendering.
func validateRuns(runs []domain.Run) []domain.Run {
	valid := runs[:0]
	for _, r := range runs {
		if r.ID == "" || !r.Location.Valid() {
			slog.Warn("dropping malformed run record", "id", r.ID, "lat", r.Location.Lat, "lng", r.Location.Lng)
			continue
		}
		valid = append(valid, r)
	}
	return valid
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

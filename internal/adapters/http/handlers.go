package http

import (
	"errors"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/runmate-app/runmate/internal/core/domain"
	"github.com/runmate-app/runmate/internal/core/usecases"
	"github.com/runmate-app/runmate/internal/pkg/metrics"
)

// clientBoxRowCap bounds the browsing box path; the standalone
// bounding-box endpoint uses usecases.MaxBoxRows instead.
const clientBoxRowCap = 100

// parseBounds reads the four box parameters. All are required and must be
// finite numbers.
func parseBounds(c *fiber.Ctx) (domain.Bounds, bool) {
	var vals [4]float64
	for i, name := range [4]string{"latMin", "latMax", "lngMin", "lngMax"} {
		raw := c.Query(name)
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return domain.Bounds{}, false
		}
		vals[i] = f
	}
	return domain.Bounds{LatMin: vals[0], LatMax: vals[1], LngMin: vals[2], LngMax: vals[3]}, true
}

// RunsInBoxHandler is the standalone bounding-box endpoint. Its contract is
// fixed: plain-text 400 on any missing or non-numeric parameter, a JSON
// array capped at 500 rows on success, and the store error serialized as
// JSON on failure.
func RunsInBoxHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		b, ok := parseBounds(c)
		if !ok {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid query")
		}

		runs, err := deps.Runs.FindInBox(c.Context(), b, usecases.MaxBoxRows)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		if runs == nil {
			runs = []domain.Run{}
		}

		metrics.GeoQueriesTotal.WithLabelValues("box").Inc()
		metrics.GeoQueryRows.WithLabelValues("box").Observe(float64(len(runs)))
		return c.JSON(runs)
	}
}

// BoxRunsHandler serves the client-side box path used by the map screen,
// capped at 100 rows.
func BoxRunsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		b, ok := parseBounds(c)
		if !ok {
			return errBadRequest(c, "latMin, latMax, lngMin and lngMax must be finite numbers")
		}

		limit := c.QueryInt("limit", clientBoxRowCap)
		if limit <= 0 || limit > clientBoxRowCap {
			limit = clientBoxRowCap
		}

		runs, err := deps.Runs.FindInBox(c.Context(), b, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}
		if runs == nil {
			runs = []domain.Run{}
		}

		metrics.GeoQueriesTotal.WithLabelValues("box").Inc()
		metrics.GeoQueryRows.WithLabelValues("box").Observe(float64(len(runs)))
		return c.JSON(runs)
	}
}

// NearbyRunsHandler returns runs within a radius of a point, nearest first,
// each with its computed distance_m.
func NearbyRunsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("lat") == "" || c.Query("lng") == "" {
			return errBadRequest(c, "lat and lng are required")
		}
		lat := c.QueryFloat("lat", 0)
		lng := c.QueryFloat("lng", 0)
		radius := c.QueryInt("radius", 5000)
		limit := c.QueryInt("limit", 50)

		var filter *usecases.RunFilter
		if c.Query("min_distance") != "" || c.Query("max_distance") != "" {
			filter = &usecases.RunFilter{}
			if v := c.Query("min_distance"); v != "" {
				f, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return errBadRequest(c, "min_distance must be a number")
				}
				filter.MinDistanceKm = &f
			}
			if v := c.Query("max_distance"); v != "" {
				f, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return errBadRequest(c, "max_distance must be a number")
				}
				filter.MaxDistanceKm = &f
			}
		}

		runs, err := deps.Runs.FindNearby(c.Context(), lat, lng, radius, limit, filter)
		if err != nil {
			if errors.Is(err, usecases.ErrInvalidInput) {
				return errBadRequest(c, err.Error())
			}
			return errInternal(c, err.Error())
		}
		if runs == nil {
			runs = []domain.Run{}
		}

		metrics.GeoQueriesTotal.WithLabelValues("radius").Inc()
		metrics.GeoQueryRows.WithLabelValues("radius").Observe(float64(len(runs)))
		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(runs)
	}
}

// UpcomingRunsHandler returns future runs with their creators, soonest
// first, for the feed screen.
func UpcomingRunsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 100 {
			limit = 50
		}

		runs, total, err := deps.Runs.ListUpcoming(c.Context(), offset, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}
		if runs == nil {
			runs = []domain.RunWithCreator{}
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		c.Set("Cache-Control", "public, max-age=30")
		return c.JSON(PaginatedResponse{Data: runs, Pagination: pg})
	}
}

// GetRunHandler returns a single run with its creator.
func GetRunHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "run id is required")
		}
		run, err := deps.Runs.GetByID(c.Context(), id)
		if err != nil {
			return errNotFound(c, "run not found")
		}
		return c.JSON(run)
	}
}

// CreateRunHandler accepts a submitted run. This is a write path: every
// failure is reported to the submitter, never swallowed.
func CreateRunHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var nr domain.NewRun
		if err := c.BodyParser(&nr); err != nil {
			return errBadRequest(c, "invalid request body: "+err.Error())
		}

		run, err := deps.Runs.Create(c.Context(), nr)
		if err != nil {
			if errors.Is(err, usecases.ErrInvalidInput) {
				return errBadRequest(c, err.Error())
			}
			LoggerFromCtx(c.UserContext()).Error("create run failed", "error", err)
			return errInternal(c, err.Error())
		}

		metrics.RunsCreated.Inc()
		return c.Status(fiber.StatusCreated).JSON(run)
	}
}

// GetProfileHandler returns a user's public profile.
func GetProfileHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "profile id is required")
		}
		profile, err := deps.Profiles.GetByID(c.Context(), id)
		if err != nil {
			return errNotFound(c, "profile not found")
		}
		return c.JSON(profile)
	}
}

// UpdateProfileHandler applies a partial profile edit.
func UpdateProfileHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "profile id is required")
		}

		var upd domain.ProfileUpdate
		if err := c.BodyParser(&upd); err != nil {
			return errBadRequest(c, "invalid request body: "+err.Error())
		}

		profile, err := deps.Profiles.Update(c.Context(), id, upd)
		if err != nil {
			if errors.Is(err, usecases.ErrInvalidInput) {
				return errBadRequest(c, err.Error())
			}
			LoggerFromCtx(c.UserContext()).Error("update profile failed", "profile_id", id, "error", err)
			return errInternal(c, err.Error())
		}
		return c.JSON(profile)
	}
}

// StoreStats holds row counts from the run tables.
type StoreStats struct {
	Runs        int    `json:"runs"`
	Profiles    int    `json:"profiles"`
	Upcoming    int    `json:"upcoming"`
	LastCreated string `json:"last_created,omitempty"`
}

// StatsHandler returns row counts from the store.
func StatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}

		var stats StoreStats
		row := deps.DB.Pool.QueryRow(c.Context(), `
			SELECT
				(SELECT count(*) FROM runs),
				(SELECT count(*) FROM profiles),
				(SELECT count(*) FROM runs WHERE start_time > now()),
				COALESCE((SELECT max(created_at)::text FROM runs), '')
		`)
		if err := row.Scan(&stats.Runs, &stats.Profiles, &stats.Upcoming, &stats.LastCreated); err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(stats)
	}
}

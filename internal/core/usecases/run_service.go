package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/runmate-app/runmate/internal/core/domain"
	"github.com/runmate-app/runmate/internal/core/ports"
)

const (
	// MaxBoxRows caps any bounding-box query; dense regions must not
	// produce unbounded responses.
	MaxBoxRows = 500
	// MaxRadiusMeters bounds the radius accepted from clients.
	MaxRadiusMeters = 50000
)

// ErrInvalidInput marks caller mistakes so the HTTP layer can answer 400
// instead of 500.
var ErrInvalidInput = errors.New("invalid input")

// RunFilter narrows radius results the way the feed's filter modal does.
type RunFilter struct {
	MinDistanceKm *float64
	MaxDistanceKm *float64
}

// RunService handles run queries and submissions.
type RunService struct {
	runs      ports.RunRepository
	cache     ports.CacheService
	publisher ports.EventPublisher
}

// NewRunService creates a new RunService.
func NewRunService(runs ports.RunRepository, cache ports.CacheService, publisher ports.EventPublisher) *RunService {
	return &RunService{runs: runs, cache: cache, publisher: publisher}
}

// FindInBox returns runs inside a bounding box. The limit is clamped to
// MaxBoxRows; callers pass their own tighter cap (the client box path uses 100).
func (s *RunService) FindInBox(ctx context.Context, b domain.Bounds, limit int) ([]domain.Run, error) {
	if limit <= 0 || limit > MaxBoxRows {
		limit = MaxBoxRows
	}

	cacheKey := fmt.Sprintf("runs:box:%.4f:%.4f:%.4f:%.4f:%d", b.LatMin, b.LatMax, b.LngMin, b.LngMax, limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var runs []domain.Run
			if err := json.Unmarshal(data, &runs); err == nil {
				return runs, nil
			}
		}
	}

	runs, err := s.runs.FindInBox(ctx, b, limit)
	if err != nil {
		return nil, err
	}

	// Short TTL: the map refetches on every settled viewport anyway.
	if s.cache != nil {
		if data, err := json.Marshal(runs); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 60)
		}
	}

	return runs, nil
}

// FindNearby returns runs within radiusMeters of a point, nearest first.
func (s *RunService) FindNearby(ctx context.Context, lat, lng float64, radiusMeters, limit int, filter *RunFilter) ([]domain.Run, error) {
	if !(domain.GeoPoint{Lat: lat, Lng: lng}).Valid() {
		return nil, fmt.Errorf("%w: center out of range: lat=%f lng=%f", ErrInvalidInput, lat, lng)
	}
	if radiusMeters <= 0 || radiusMeters > MaxRadiusMeters {
		return nil, fmt.Errorf("%w: radius must be between 1 and %d meters", ErrInvalidInput, MaxRadiusMeters)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	cacheKey := fmt.Sprintf("runs:nearby:%.4f:%.4f:%d:%d", lat, lng, radiusMeters, limit)
	var runs []domain.Run
	cached := false
	if s.cache != nil && filter == nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			if err := json.Unmarshal(data, &runs); err == nil {
				cached = true
			}
		}
	}

	if !cached {
		var err error
		runs, err = s.runs.FindNearby(ctx, lat, lng, radiusMeters, limit)
		if err != nil {
			return nil, err
		}
		if s.cache != nil && filter == nil {
			if data, err := json.Marshal(runs); err == nil {
				_ = s.cache.Set(ctx, cacheKey, data, 60)
			}
		}
	}

	if filter != nil {
		filtered := runs[:0:0]
		for _, r := range runs {
			if filter.MinDistanceKm != nil && r.DistanceKm < *filter.MinDistanceKm {
				continue
			}
			if filter.MaxDistanceKm != nil && r.DistanceKm > *filter.MaxDistanceKm {
				continue
			}
			filtered = append(filtered, r)
		}
		runs = filtered
	}

	return runs, nil
}

// ListUpcoming returns future runs with their creators, soonest first.
func (s *RunService) ListUpcoming(ctx context.Context, offset, limit int) ([]domain.RunWithCreator, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.runs.ListUpcoming(ctx, time.Now(), offset, limit)
}

// GetByID returns a single run with its creator.
func (s *RunService) GetByID(ctx context.Context, id string) (*domain.RunWithCreator, error) {
	return s.runs.GetByID(ctx, id)
}

// Create validates and persists a submitted run, then announces it.
// Persistence errors are returned to the caller: the submitter must find out
// that their run was not saved.
func (s *RunService) Create(ctx context.Context, nr domain.NewRun) (*domain.Run, error) {
	if strings.TrimSpace(nr.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if !nr.Location.Valid() {
		return nil, fmt.Errorf("%w: location out of range: lat=%f lng=%f", ErrInvalidInput, nr.Location.Lat, nr.Location.Lng)
	}
	if nr.DistanceKm < 0 {
		return nil, fmt.Errorf("%w: distance must be non-negative", ErrInvalidInput)
	}
	if nr.StartTime.IsZero() {
		return nil, fmt.Errorf("%w: start_time is required", ErrInvalidInput)
	}
	if nr.CreatedBy == "" {
		return nil, fmt.Errorf("%w: created_by is required", ErrInvalidInput)
	}
	if nr.PaceMinKm != nil && *nr.PaceMinKm <= 0 {
		return nil, fmt.Errorf("%w: pace must be positive", ErrInvalidInput)
	}

	run := &domain.Run{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(nr.Title),
		Description: strings.TrimSpace(nr.Description),
		Location:    nr.Location,
		DistanceKm:  nr.DistanceKm,
		PaceMinKm:   nr.PaceMinKm,
		StartTime:   nr.StartTime,
		CreatedBy:   nr.CreatedBy,
		CreatedAt:   time.Now(),
	}

	if err := s.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	// The run is persisted at this point; a failed announcement only means
	// connected map clients miss the live marker until their next refetch.
	if s.publisher != nil {
		if err := s.publisher.PublishRunCreated(ctx, run); err != nil {
			slog.Warn("publish run created", "run_id", run.ID, "error", err)
		}
	}

	return run, nil
}

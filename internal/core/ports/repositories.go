package ports

import (
	"context"
	"time"

	"github.com/runmate-app/runmate/internal/core/domain"
)

// RunRepository persists runs.
type RunRepository interface {
	Create(ctx context.Context, run *domain.Run) error
	GetByID(ctx context.Context, id string) (*domain.RunWithCreator, error)
	// FindInBox returns runs inside a bounding box, capped at limit rows.
	FindInBox(ctx context.Context, b domain.Bounds, limit int) ([]domain.Run, error)
	// FindNearby returns runs within radiusMeters of a point, nearest first,
	// each with its distance from the center filled in.
	FindNearby(ctx context.Context, lat, lng float64, radiusMeters int, limit int) ([]domain.Run, error)
	// ListUpcoming returns runs starting after the given time, soonest first,
	// joined with their creators.
	ListUpcoming(ctx context.Context, after time.Time, offset, limit int) ([]domain.RunWithCreator, int, error)
}

// ProfileRepository persists user profiles.
type ProfileRepository interface {
	Upsert(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	Update(ctx context.Context, id string, upd domain.ProfileUpdate) (*domain.Profile, error)
}

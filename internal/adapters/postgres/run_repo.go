package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/runmate-app/runmate/internal/core/domain"
)

// RunRepo implements ports.RunRepository with pgx.
type RunRepo struct {
	db *DB
}

// NewRunRepo creates a new RunRepo.
func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// Create inserts a new run.
func (r *RunRepo) Create(ctx context.Context, run *domain.Run) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO runs (id, title, description, lat, lng, distance_km, pace_min_km, start_time, created_by, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10)
	`, run.ID, run.Title, run.Description, run.Location.Lat, run.Location.Lng,
		run.DistanceKm, run.PaceMinKm, run.StartTime, run.CreatedBy, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetByID returns a run joined with its creator's profile.
func (r *RunRepo) GetByID(ctx context.Context, id string) (*domain.RunWithCreator, error) {
	var rw domain.RunWithCreator
	var p domain.Profile
	err := r.db.Pool.QueryRow(ctx, `
		SELECT r.id, r.title, COALESCE(r.description, ''), r.lat, r.lng,
		       r.distance_km, r.pace_min_km, r.start_time, r.created_by, r.created_at,
		       p.id, p.username, COALESCE(p.full_name, ''), COALESCE(p.avatar_url, ''), p.created_at
		FROM runs r
		JOIN profiles p ON p.id = r.created_by
		WHERE r.id = $1
	`, id).Scan(
		&rw.ID, &rw.Title, &rw.Description, &rw.Location.Lat, &rw.Location.Lng,
		&rw.DistanceKm, &rw.PaceMinKm, &rw.StartTime, &rw.CreatedBy, &rw.CreatedAt,
		&p.ID, &p.Username, &p.FullName, &p.AvatarURL, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rw.Creator = &p
	return &rw, nil
}

// FindInBox returns runs inside a bounding box using four inequality
// predicates over the lat/lng columns. The limit is a hard cap, not a hint.
func (r *RunRepo) FindInBox(ctx context.Context, b domain.Bounds, limit int) ([]domain.Run, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, title, COALESCE(description, ''), lat, lng,
		       distance_km, pace_min_km, start_time, created_by, created_at
		FROM runs
		WHERE lat >= $1 AND lat <= $2 AND lng >= $3 AND lng <= $4
		ORDER BY start_time
		LIMIT $5
	`, b.LatMin, b.LatMax, b.LngMin, b.LngMax, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		var run domain.Run
		if err := rows.Scan(
			&run.ID, &run.Title, &run.Description, &run.Location.Lat, &run.Location.Lng,
			&run.DistanceKm, &run.PaceMinKm, &run.StartTime, &run.CreatedBy, &run.CreatedAt,
		); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// FindNearby returns runs within radiusMeters of a point via the
// runs_nearby SQL function, nearest first, with distance_m computed.
func (r *RunRepo) FindNearby(ctx context.Context, lat, lng float64, radiusMeters, limit int) ([]domain.Run, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, title, COALESCE(description, ''), lat, lng,
		       distance_km, pace_min_km, start_time, created_by, created_at, distance_m
		FROM runs_nearby($1, $2, $3)
		LIMIT $4
	`, lat, lng, radiusMeters, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		var run domain.Run
		var dist float64
		if err := rows.Scan(
			&run.ID, &run.Title, &run.Description, &run.Location.Lat, &run.Location.Lng,
			&run.DistanceKm, &run.PaceMinKm, &run.StartTime, &run.CreatedBy, &run.CreatedAt,
			&dist,
		); err != nil {
			return nil, err
		}
		run.DistanceM = &dist
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListUpcoming returns runs starting after the given time, soonest first,
// joined with their creators, plus the total count for pagination.
func (r *RunRepo) ListUpcoming(ctx context.Context, after time.Time, offset, limit int) ([]domain.RunWithCreator, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM runs WHERE start_time > $1`, after,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT r.id, r.title, COALESCE(r.description, ''), r.lat, r.lng,
		       r.distance_km, r.pace_min_km, r.start_time, r.created_by, r.created_at,
		       p.id, p.username, COALESCE(p.full_name, ''), COALESCE(p.avatar_url, ''), p.created_at
		FROM runs r
		JOIN profiles p ON p.id = r.created_by
		WHERE r.start_time > $1
		ORDER BY r.start_time
		OFFSET $2 LIMIT $3
	`, after, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var runs []domain.RunWithCreator
	for rows.Next() {
		var rw domain.RunWithCreator
		var p domain.Profile
		if err := rows.Scan(
			&rw.ID, &rw.Title, &rw.Description, &rw.Location.Lat, &rw.Location.Lng,
			&rw.DistanceKm, &rw.PaceMinKm, &rw.StartTime, &rw.CreatedBy, &rw.CreatedAt,
			&p.ID, &p.Username, &p.FullName, &p.AvatarURL, &p.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		rw.Creator = &p
		runs = append(runs, rw)
	}
	return runs, total, rows.Err()
}

package postgres

import (
	"context"
	"fmt"

	"github.com/runmate-app/runmate/internal/core/domain"
)

// ProfileRepo implements ports.ProfileRepository with pgx.
type ProfileRepo struct {
	db *DB
}

// NewProfileRepo creates a new ProfileRepo.
func NewProfileRepo(db *DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// Upsert inserts or updates a profile.
func (r *ProfileRepo) Upsert(ctx context.Context, p *domain.Profile) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO profiles (id, username, full_name, avatar_url)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''))
		ON CONFLICT (id) DO UPDATE
		SET username = EXCLUDED.username,
		    full_name = EXCLUDED.full_name,
		    avatar_url = EXCLUDED.avatar_url
	`, p.ID, p.Username, p.FullName, p.AvatarURL)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// GetByID returns a profile by ID.
func (r *ProfileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	var p domain.Profile
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, username, COALESCE(full_name, ''), COALESCE(avatar_url, ''), created_at
		FROM profiles WHERE id = $1
	`, id).Scan(&p.ID, &p.Username, &p.FullName, &p.AvatarURL, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update applies a partial edit and returns the updated profile.
func (r *ProfileRepo) Update(ctx context.Context, id string, upd domain.ProfileUpdate) (*domain.Profile, error) {
	var p domain.Profile
	err := r.db.Pool.QueryRow(ctx, `
		UPDATE profiles
		SET username   = COALESCE($2, username),
		    full_name  = COALESCE($3, full_name),
		    avatar_url = COALESCE($4, avatar_url)
		WHERE id = $1
		RETURNING id, username, COALESCE(full_name, ''), COALESCE(avatar_url, ''), created_at
	`, id, upd.Username, upd.FullName, upd.AvatarURL).Scan(
		&p.ID, &p.Username, &p.FullName, &p.AvatarURL, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

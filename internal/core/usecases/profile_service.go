package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/runmate-app/runmate/internal/core/domain"
	"github.com/runmate-app/runmate/internal/core/ports"
)

// ProfileService handles profile reads and edits.
type ProfileService struct {
	profiles ports.ProfileRepository
	cache    ports.CacheService
}

// NewProfileService creates a new ProfileService.
func NewProfileService(profiles ports.ProfileRepository, cache ports.CacheService) *ProfileService {
	return &ProfileService{profiles: profiles, cache: cache}
}

// GetByID returns a single profile.
func (s *ProfileService) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	cacheKey := "profiles:id:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var p domain.Profile
			if err := json.Unmarshal(data, &p); err == nil {
				return &p, nil
			}
		}
	}

	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(p); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}

	return p, nil
}

// Update applies a partial profile edit. Errors are returned to the caller:
// profile edits are a write path and must not fail silently.
func (s *ProfileService) Update(ctx context.Context, id string, upd domain.ProfileUpdate) (*domain.Profile, error) {
	if upd.Username != nil {
		name := strings.TrimSpace(*upd.Username)
		if name == "" {
			return nil, fmt.Errorf("%w: username must not be empty", ErrInvalidInput)
		}
		if len(name) > 64 {
			return nil, fmt.Errorf("%w: username too long (max 64 characters)", ErrInvalidInput)
		}
		upd.Username = &name
	}

	p, err := s.profiles.Update(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, "profiles:id:"+id)
	}

	return p, nil
}

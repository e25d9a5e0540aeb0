package domain

import (
	"time"
)

// Run is a scheduled running event created by a user.
type Run struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Location    GeoPoint `json:"location"`
	DistanceKm  float64  `json:"distance_km"`
	// PaceMinKm is the planned pace in minutes per kilometer.
	PaceMinKm *float64  `json:"pace_min_km,omitempty"`
	StartTime time.Time `json:"start_time"`
	CreatedBy string    `json:"created_by"`
	// DistanceM is the distance from a query center in meters.
	// Populated only by radius queries.
	DistanceM *float64  `json:"distance_m,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is a user's public profile.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RunWithCreator is a run joined with its creator's profile, as shown in the feed.
type RunWithCreator struct {
	Run
	Creator *Profile `json:"creator,omitempty"`
}

// NewRun carries the fields of a run submission form.
type NewRun struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    GeoPoint  `json:"location"`
	DistanceKm  float64   `json:"distance_km"`
	PaceMinKm   *float64  `json:"pace_min_km,omitempty"`
	StartTime   time.Time `json:"start_time"`
	CreatedBy   string    `json:"created_by"`
}

// ProfileUpdate carries the editable fields of a profile.
type ProfileUpdate struct {
	Username  *string `json:"username,omitempty"`
	FullName  *string `json:"full_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

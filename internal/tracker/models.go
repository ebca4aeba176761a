package tracker

import (
	"time"

	"backend-soozu/internal/trip"
)

// Tracker is a shareable, token-addressed, email-gated read capability over
// one trip. Never hard-deleted: deactivation only flips is_active.
type Tracker struct {
	Token        string     `json:"token"`
	TripID       string     `json:"trip_id"`
	Email        string     `json:"email"`
	TravelerName string     `json:"traveler_name,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	IsActive     bool       `json:"is_active"`
	AccessCount  int64      `json:"access_count"`
	LastAccessed *time.Time `json:"last_accessed,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	SaveDate     time.Time  `json:"save_date"`
}

// IsLive reports whether the tracker is active and not expired at now.
// Computed, never stored.
func (t Tracker) IsLive(now time.Time) bool {
	return t.IsActive && (t.ExpiresAt == nil || t.ExpiresAt.After(now))
}

type CreateInput struct {
	TripID       string     `json:"trip_id"`
	Email        string     `json:"email"`
	TravelerName string     `json:"traveler_name"`
	Phone        string     `json:"phone"`
	SaveDate     *time.Time `json:"save_date"`
	ExpiresAt    *time.Time `json:"expires_at"`
	StartDate    *time.Time `json:"start_date"`
}

// UpdateInput has partial-update semantics: nil leaves a field untouched, a
// pointer to the zero value clears it.
type UpdateInput struct {
	TravelerName *string    `json:"traveler_name"`
	Phone        *string    `json:"phone"`
	ExpiresAt    *time.Time `json:"expires_at"`
}

// ReadResult is an authorized read: the trip aggregate plus the tracker's
// audit fields after the access was counted.
type ReadResult struct {
	Tracker Tracker   `json:"tracker"`
	Trip    trip.View `json:"trip"`
}

// Verdict is the outcome of a side-effect-free liveness probe.
type Verdict struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason"`
}

// Summary pairs a tracker with its parent trip's summary fields for
// list-by-email responses.
type Summary struct {
	Tracker
	TripName        string    `json:"trip_name"`
	TripDestination string    `json:"trip_destination"`
	TripStartDate   time.Time `json:"trip_start_date"`
	TripStatus      string    `json:"trip_status"`
}

const (
	ReasonValid    = "valid"
	ReasonNotFound = "not_found"
	ReasonInactive = "inactive"
	ReasonExpired  = "expired"
)

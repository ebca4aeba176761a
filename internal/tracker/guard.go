package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"backend-soozu/internal/apperr"

	"github.com/jackc/pgx/v5"
)

const trackerColumns = `token, trip_id, email, COALESCE(traveler_name,''), COALESCE(phone,''),
	       is_active, access_count, last_accessed, expires_at, save_date`

func scanTracker(row pgx.Row) (Tracker, error) {
	var t Tracker
	err := row.Scan(&t.Token, &t.TripID, &t.Email, &t.TravelerName, &t.Phone,
		&t.IsActive, &t.AccessCount, &t.LastAccessed, &t.ExpiresAt, &t.SaveDate)
	return t, err
}

func (s *Service) getByToken(ctx context.Context, token string) (Tracker, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+trackerColumns+`
		FROM trackers WHERE token=$1
	`, token)
	t, err := scanTracker(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tracker{}, apperr.NotFound("tracker not found")
		}
		return Tracker{}, err
	}
	return t, nil
}

// Authorize enforces the access rules for a tracker read, in order: the
// tracker must exist, be active, be unexpired, and — only when the caller
// supplies an email — the email must exactly match the stored one. On
// success the access counter is bumped with a relative UPDATE so concurrent
// reads never lose increments, and the updated audit fields are returned.
func (s *Service) Authorize(ctx context.Context, token, email string) (Tracker, error) {
	t, err := s.getByToken(ctx, token)
	if err != nil {
		return Tracker{}, err
	}

	if !t.IsActive {
		return Tracker{}, apperr.Gone("tracker is inactive")
	}
	if t.ExpiresAt != nil && !t.ExpiresAt.After(time.Now()) {
		return Tracker{}, apperr.Gone("tracker has expired")
	}
	if email != "" && email != t.Email {
		return Tracker{}, apperr.AccessDenied("email does not match tracker")
	}

	// is_active is re-checked in the UPDATE so a read racing a deactivate
	// cannot count an access after the flag flips.
	row := s.db.QueryRow(ctx, `
		UPDATE trackers
		SET access_count = access_count + 1, last_accessed = now()
		WHERE token=$1 AND is_active
		RETURNING access_count, last_accessed
	`, token)
	if err := row.Scan(&t.AccessCount, &t.LastAccessed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tracker{}, apperr.Gone("tracker is inactive")
		}
		return Tracker{}, err
	}

	s.broadcastAccess(t)
	return t, nil
}

func (s *Service) broadcastAccess(t Tracker) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"token":         t.Token,
		"access_count":  t.AccessCount,
		"last_accessed": t.LastAccessed,
	})
	if err != nil {
		return
	}
	s.hub.Broadcast(t.Token, payload)
}

// Validate is a side-effect-free liveness probe: it reports whether a read
// would be admitted without touching the access counter.
func (s *Service) Validate(ctx context.Context, token string) (Verdict, error) {
	t, err := s.getByToken(ctx, token)
	if err != nil {
		if apperr.Is(err, apperr.CodeNotFound) {
			return Verdict{Valid: false, Reason: ReasonNotFound}, nil
		}
		return Verdict{}, err
	}
	if !t.IsActive {
		return Verdict{Valid: false, Reason: ReasonInactive}, nil
	}
	if t.ExpiresAt != nil && !t.ExpiresAt.After(time.Now()) {
		return Verdict{Valid: false, Reason: ReasonExpired}, nil
	}
	return Verdict{Valid: true, Reason: ReasonValid}, nil
}

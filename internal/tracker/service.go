package tracker

import (
	"context"
	"log"
	"strings"
	"time"

	"backend-soozu/internal/apperr"
	"backend-soozu/internal/db"
	"backend-soozu/internal/notify"
	"backend-soozu/internal/stream"
	"backend-soozu/internal/token"
	"backend-soozu/internal/trip"
)

type Service struct {
	db            db.Querier
	trips         *trip.Service
	tokens        *token.Generator
	queue         *notify.Queue
	hub           *stream.Hub
	tokenAttempts int
}

func NewService(q db.Querier, trips *trip.Service, tokens *token.Generator, queue *notify.Queue, hub *stream.Hub, tokenAttempts int) *Service {
	return &Service{
		db:            q,
		trips:         trips,
		tokens:        tokens,
		queue:         queue,
		hub:           hub,
		tokenAttempts: tokenAttempts,
	}
}

func (s *Service) Create(ctx context.Context, input CreateInput) (Tracker, error) {
	if input.TripID == "" {
		return Tracker{}, apperr.Validation("trip_id required")
	}
	if !strings.Contains(input.Email, "@") {
		return Tracker{}, apperr.Validation("valid email required")
	}
	if input.ExpiresAt != nil && !input.ExpiresAt.After(time.Now()) {
		return Tracker{}, apperr.Validation("expires_at must be in the future")
	}

	t, err := s.trips.GetTrip(ctx, input.TripID)
	if err != nil {
		return Tracker{}, err
	}

	// The trip start date is always written on this call: the requested
	// value when given, otherwise today — even when the trip already has
	// one. Kept from the original flow; flagged in DESIGN.md.
	start := time.Now()
	if input.StartDate != nil {
		start = *input.StartDate
	}
	if err := s.trips.SetStartDate(ctx, input.TripID, start); err != nil {
		return Tracker{}, err
	}

	tok, err := s.tokens.EnsureUnique(ctx, s.tokenAttempts)
	if err != nil {
		return Tracker{}, err
	}

	saveDate := time.Now()
	if input.SaveDate != nil {
		saveDate = *input.SaveDate
	}

	tracker := Tracker{
		Token:        tok,
		TripID:       input.TripID,
		Email:        input.Email,
		TravelerName: input.TravelerName,
		Phone:        input.Phone,
		IsActive:     true,
		ExpiresAt:    input.ExpiresAt,
		SaveDate:     saveDate,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO trackers (token, trip_id, email, traveler_name, phone, is_active, access_count, expires_at, save_date)
		VALUES ($1,$2,$3,$4,$5,TRUE,0,$6,$7)
		RETURNING save_date
	`, tracker.Token, tracker.TripID, tracker.Email, nullStr(tracker.TravelerName), nullStr(tracker.Phone), tracker.ExpiresAt, tracker.SaveDate)
	if err := row.Scan(&tracker.SaveDate); err != nil {
		return Tracker{}, err
	}

	// Best effort only: a lost confirmation never rolls back the tracker.
	msg := notify.Message{
		To:           tracker.Email,
		TravelerName: tracker.TravelerName,
		TripName:     t.Name,
		Token:        tracker.Token,
		StartDate:    start.Format("January 2, 2006"),
	}
	if err := s.queue.Enqueue(ctx, msg); err != nil {
		log.Printf("tracker: confirmation enqueue failed token=%s: %v", tracker.Token, err)
	}

	return tracker, nil
}

func (s *Service) Read(ctx context.Context, tok, email string) (ReadResult, error) {
	t, err := s.Authorize(ctx, tok, email)
	if err != nil {
		return ReadResult{}, err
	}
	view, err := s.trips.Aggregate(ctx, t.TripID)
	if err != nil {
		return ReadResult{}, err
	}
	return ReadResult{Tracker: t, Trip: view}, nil
}

// ListByEmail returns all active trackers for an email regardless of
// expiry, newest saved first, each with parent trip summary fields.
func (s *Service) ListByEmail(ctx context.Context, email string) ([]Summary, error) {
	if email == "" {
		return nil, apperr.Validation("email required")
	}
	rows, err := s.db.Query(ctx, `
		SELECT tr.token, tr.trip_id, tr.email, COALESCE(tr.traveler_name,''), COALESCE(tr.phone,''),
		       tr.is_active, tr.access_count, tr.last_accessed, tr.expires_at, tr.save_date,
		       t.name, t.destination, COALESCE(t.start_date,'0001-01-01'::timestamptz), t.status
		FROM trackers tr
		JOIN trips t ON t.id = tr.trip_id
		WHERE tr.email=$1 AND tr.is_active
		ORDER BY tr.save_date DESC
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(&sm.Token, &sm.TripID, &sm.Email, &sm.TravelerName, &sm.Phone,
			&sm.IsActive, &sm.AccessCount, &sm.LastAccessed, &sm.ExpiresAt, &sm.SaveDate,
			&sm.TripName, &sm.TripDestination, &sm.TripStartDate, &sm.TripStatus); err != nil {
			return nil, err
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}

// Update applies a partial patch after an ownership check. Unlike reads it
// does not require the tracker to be live: owners may edit an expired or
// inactive tracker.
func (s *Service) Update(ctx context.Context, tok string, patch UpdateInput, email string) (Tracker, error) {
	t, err := s.ownedTracker(ctx, tok, email)
	if err != nil {
		return Tracker{}, err
	}

	if patch.TravelerName != nil {
		t.TravelerName = *patch.TravelerName
	}
	if patch.Phone != nil {
		t.Phone = *patch.Phone
	}
	if patch.ExpiresAt != nil {
		if patch.ExpiresAt.IsZero() {
			t.ExpiresAt = nil
		} else {
			t.ExpiresAt = patch.ExpiresAt
		}
	}

	_, err = s.db.Exec(ctx, `
		UPDATE trackers
		SET traveler_name=$2, phone=$3, expires_at=$4
		WHERE token=$1
	`, t.Token, nullStr(t.TravelerName), nullStr(t.Phone), t.ExpiresAt)
	if err != nil {
		return Tracker{}, err
	}
	return t, nil
}

// Deactivate is terminal: there is no public re-activation.
func (s *Service) Deactivate(ctx context.Context, tok, email string) error {
	if _, err := s.ownedTracker(ctx, tok, email); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `UPDATE trackers SET is_active=FALSE WHERE token=$1`, tok)
	return err
}

func (s *Service) ownedTracker(ctx context.Context, tok, email string) (Tracker, error) {
	t, err := s.getByToken(ctx, tok)
	if err != nil {
		return Tracker{}, err
	}
	if email != "" && email != t.Email {
		return Tracker{}, apperr.AccessDenied("email does not match tracker")
	}
	return t, nil
}

func nullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

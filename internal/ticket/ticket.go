package ticket

import (
	"context"
	"errors"
	"strings"
	"time"

	"backend-soozu/internal/apperr"
	"backend-soozu/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Ticket is a generated travel document for one traveler on a trip.
type Ticket struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	TripID       string    `json:"trip_id"`
	TravelerName string    `json:"traveler_name"`
	Seat         string    `json:"seat,omitempty"`
	IssuedAt     time.Time `json:"issued_at"`
}

type Service struct {
	db db.Querier
}

func NewService(q db.Querier) *Service {
	return &Service{db: q}
}

func (s *Service) Issue(ctx context.Context, tripID, travelerName, seat string) (Ticket, error) {
	if tripID == "" || travelerName == "" {
		return Ticket{}, apperr.Validation("trip_id and traveler_name required")
	}

	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM trips WHERE id=$1)`, tripID).Scan(&exists); err != nil {
		return Ticket{}, err
	}
	if !exists {
		return Ticket{}, apperr.NotFound("trip not found")
	}

	t := Ticket{
		ID:           uuid.NewString(),
		Code:         ticketCode(),
		TripID:       tripID,
		TravelerName: travelerName,
		Seat:         seat,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO tickets (id, code, trip_id, traveler_name, seat)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING issued_at
	`, t.ID, t.Code, t.TripID, t.TravelerName, nullIfEmpty(t.Seat))
	if err := row.Scan(&t.IssuedAt); err != nil {
		return Ticket{}, err
	}
	return t, nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (Ticket, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, code, trip_id, traveler_name, COALESCE(seat,''), issued_at
		FROM tickets WHERE code=$1
	`, code)
	var t Ticket
	if err := row.Scan(&t.ID, &t.Code, &t.TripID, &t.TravelerName, &t.Seat, &t.IssuedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Ticket{}, apperr.NotFound("ticket not found")
		}
		return Ticket{}, err
	}
	return t, nil
}

func (s *Service) ListByTrip(ctx context.Context, tripID string) ([]Ticket, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, code, trip_id, traveler_name, COALESCE(seat,''), issued_at
		FROM tickets WHERE trip_id=$1
		ORDER BY issued_at DESC
	`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Ticket
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.ID, &t.Code, &t.TripID, &t.TravelerName, &t.Seat, &t.IssuedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func ticketCode() string {
	return "TKT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package trip

import (
	"context"
	"errors"
	"time"

	"backend-soozu/internal/apperr"
	"backend-soozu/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Service struct {
	db db.Querier
}

func NewService(q db.Querier) *Service {
	return &Service{db: q}
}

func (s *Service) CreateTrip(ctx context.Context, input Trip) (Trip, error) {
	input.ID = uuid.NewString()
	if input.Status == "" {
		input.Status = StatusActive
	}
	if input.Travelers <= 0 {
		input.Travelers = 1
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO trips (id, owner_id, name, destination, start_date, end_date, budget, travelers, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at
	`, input.ID, nullStr(input.OwnerID), input.Name, input.Destination, timePtr(input.StartDate), timePtr(input.EndDate), input.Budget, input.Travelers, input.Status)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Trip{}, err
	}
	return input, nil
}

func (s *Service) GetTrip(ctx context.Context, id string) (Trip, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, COALESCE(owner_id,''), name, destination,
		       COALESCE(start_date,'0001-01-01'::timestamptz), COALESCE(end_date,'0001-01-01'::timestamptz),
		       budget, travelers, status, created_at
		FROM trips WHERE id=$1
	`, id)
	var t Trip
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Destination, &t.StartDate, &t.EndDate, &t.Budget, &t.Travelers, &t.Status, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Trip{}, apperr.NotFound("trip not found")
		}
		return Trip{}, err
	}
	return t, nil
}

func (s *Service) UpdateTrip(ctx context.Context, id string, patch Trip) (Trip, error) {
	t, err := s.GetTrip(ctx, id)
	if err != nil {
		return Trip{}, err
	}
	if patch.Name != "" {
		t.Name = patch.Name
	}
	if patch.Destination != "" {
		t.Destination = patch.Destination
	}
	if !patch.StartDate.IsZero() {
		t.StartDate = patch.StartDate
	}
	if !patch.EndDate.IsZero() {
		t.EndDate = patch.EndDate
	}
	if patch.Budget != 0 {
		t.Budget = patch.Budget
	}
	if patch.Travelers != 0 {
		t.Travelers = patch.Travelers
	}
	if patch.Status != "" {
		t.Status = patch.Status
	}

	_, err = s.db.Exec(ctx, `
		UPDATE trips
		SET name=$2, destination=$3, start_date=$4, end_date=$5, budget=$6, travelers=$7, status=$8
		WHERE id=$1
	`, t.ID, t.Name, t.Destination, timePtr(t.StartDate), timePtr(t.EndDate), t.Budget, t.Travelers, t.Status)
	if err != nil {
		return Trip{}, err
	}
	return t, nil
}

func (s *Service) DeleteTrip(ctx context.Context, id string) error {
	// destinations and routes cascade in the schema
	_, err := s.db.Exec(ctx, `DELETE FROM trips WHERE id=$1`, id)
	return err
}

func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM trips WHERE id=$1)`, id).Scan(&ok)
	return ok, err
}

// SetStartDate overwrites the trip start date. Used by tracker creation.
func (s *Service) SetStartDate(ctx context.Context, id string, start time.Time) error {
	_, err := s.db.Exec(ctx, `UPDATE trips SET start_date=$2 WHERE id=$1`, id, start)
	return err
}

func (s *Service) AddDestination(ctx context.Context, input Destination) (Destination, error) {
	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO destinations (id, trip_id, name, notes, order_index)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING added_at
	`, input.ID, input.TripID, input.Name, input.Notes, input.OrderIndex)
	if err := row.Scan(&input.AddedAt); err != nil {
		return Destination{}, err
	}
	return input, nil
}

func (s *Service) Destinations(ctx context.Context, tripID string) ([]Destination, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, trip_id, name, COALESCE(notes,''), order_index, added_at
		FROM destinations WHERE trip_id=$1
		ORDER BY order_index ASC, added_at ASC
	`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Destination
	for rows.Next() {
		var d Destination
		if err := rows.Scan(&d.ID, &d.TripID, &d.Name, &d.Notes, &d.OrderIndex, &d.AddedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Service) AddRoute(ctx context.Context, input Route) (Route, error) {
	input.ID = uuid.NewString()
	if input.ComputedAt.IsZero() {
		input.ComputedAt = time.Now()
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO routes (id, trip_id, total_distance_km, estimated_days, legs, computed_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING computed_at
	`, input.ID, input.TripID, input.TotalDistanceKm, input.EstimatedDays, input.LegsJSON, input.ComputedAt)
	if err := row.Scan(&input.ComputedAt); err != nil {
		return Route{}, err
	}
	return input, nil
}

// LatestRoute returns the most recently computed route, or nil when the
// trip has none.
func (s *Service) LatestRoute(ctx context.Context, tripID string) (*Route, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, trip_id, total_distance_km, estimated_days, COALESCE(legs,''), computed_at
		FROM routes WHERE trip_id=$1
		ORDER BY computed_at DESC
		LIMIT 1
	`, tripID)
	var r Route
	if err := row.Scan(&r.ID, &r.TripID, &r.TotalDistanceKm, &r.EstimatedDays, &r.LegsJSON, &r.ComputedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

// Aggregate assembles the trip with its ordered destinations and latest
// route into a single response view.
func (s *Service) Aggregate(ctx context.Context, tripID string) (View, error) {
	t, err := s.GetTrip(ctx, tripID)
	if err != nil {
		return View{}, err
	}
	dests, err := s.Destinations(ctx, tripID)
	if err != nil {
		return View{}, err
	}
	route, err := s.LatestRoute(ctx, tripID)
	if err != nil {
		return View{}, err
	}
	if dests == nil {
		dests = []Destination{}
	}

	view := View{Trip: t, Destinations: dests, Route: route}
	if !t.StartDate.IsZero() {
		view.StartDateDisplay = t.StartDate.Format("January 2, 2006")
	}
	return view, nil
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func nullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package review

import (
	"context"

	"backend-soozu/internal/apperr"
	"backend-soozu/internal/db"

	"github.com/google/uuid"
)

type Service struct {
	db db.Querier
}

func NewService(q db.Querier) *Service {
	return &Service{db: q}
}

func (s *Service) Create(ctx context.Context, input Review) (Review, error) {
	switch input.Type {
	case TypeTrip:
		if input.TripID == "" {
			return Review{}, apperr.Validation("trip_id required for trip reviews")
		}
		var exists bool
		if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM trips WHERE id=$1)`, input.TripID).Scan(&exists); err != nil {
			return Review{}, err
		}
		if !exists {
			return Review{}, apperr.NotFound("trip not found")
		}
	case TypePlatform:
		input.TripID = ""
	default:
		return Review{}, apperr.Validation("type must be trip or platform")
	}

	if input.Rating < 1 || input.Rating > 5 {
		return Review{}, apperr.Validation("rating must be between 1 and 5")
	}
	if input.AuthorName == "" {
		return Review{}, apperr.Validation("author_name required")
	}

	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO reviews (id, type, trip_id, author_name, email, rating, comment)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at
	`, input.ID, input.Type, nullStr(input.TripID), input.AuthorName, nullStr(input.Email), input.Rating, input.Comment)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Review{}, err
	}
	return input, nil
}

func (s *Service) ListByTrip(ctx context.Context, tripID string) ([]Review, error) {
	return s.list(ctx, `
		SELECT id, type, COALESCE(trip_id,''), author_name, COALESCE(email,''), rating, COALESCE(comment,''), created_at
		FROM reviews WHERE type='trip' AND trip_id=$1
		ORDER BY created_at DESC
	`, tripID)
}

func (s *Service) ListPlatform(ctx context.Context) ([]Review, error) {
	return s.list(ctx, `
		SELECT id, type, COALESCE(trip_id,''), author_name, COALESCE(email,''), rating, COALESCE(comment,''), created_at
		FROM reviews WHERE type='platform'
		ORDER BY created_at DESC
	`)
}

func (s *Service) list(ctx context.Context, sql string, args ...any) ([]Review, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.Type, &r.TripID, &r.AuthorName, &r.Email, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

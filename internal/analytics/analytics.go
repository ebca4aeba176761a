package analytics

import (
	"context"
	"time"

	"backend-soozu/internal/db"

	"github.com/gofiber/fiber/v2"
)

type Summary struct {
	TripsByStatus     map[string]int64 `json:"trips_by_status"`
	ActiveTrackers    int64            `json:"active_trackers"`
	ExpiredTrackers   int64            `json:"expired_trackers"`
	TotalAccesses     int64            `json:"total_accesses"`
	AvgTripRating     float64          `json:"avg_trip_rating"`
	AvgPlatformRating float64          `json:"avg_platform_rating"`
	TicketsIssued     int64            `json:"tickets_issued"`
	GeneratedAt       time.Time        `json:"generated_at"`
}

type Service struct {
	db db.Querier
}

func NewService(q db.Querier) *Service {
	return &Service{db: q}
}

func (s *Service) Summarize(ctx context.Context) (Summary, error) {
	sum := Summary{TripsByStatus: map[string]int64{}, GeneratedAt: time.Now()}

	rows, err := s.db.Query(ctx, `SELECT status, COUNT(*) FROM trips GROUP BY status`)
	if err != nil {
		return Summary{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return Summary{}, err
		}
		sum.TripsByStatus[status] = n
	}
	if err := rows.Err(); err != nil {
		return Summary{}, err
	}

	err = s.db.QueryRow(ctx, `
		SELECT
		  COUNT(*) FILTER (WHERE is_active AND (expires_at IS NULL OR expires_at > now())),
		  COUNT(*) FILTER (WHERE expires_at IS NOT NULL AND expires_at <= now()),
		  COALESCE(SUM(access_count), 0)
		FROM trackers
	`).Scan(&sum.ActiveTrackers, &sum.ExpiredTrackers, &sum.TotalAccesses)
	if err != nil {
		return Summary{}, err
	}

	err = s.db.QueryRow(ctx, `
		SELECT
		  COALESCE(AVG(rating) FILTER (WHERE type='trip'), 0),
		  COALESCE(AVG(rating) FILTER (WHERE type='platform'), 0)
		FROM reviews
	`).Scan(&sum.AvgTripRating, &sum.AvgPlatformRating)
	if err != nil {
		return Summary{}, err
	}

	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&sum.TicketsIssued); err != nil {
		return Summary{}, err
	}

	return sum, nil
}

func RegisterRoutes(r fiber.Router, svc *Service, adminMiddleware fiber.Handler) {
	r.Get("/summary", adminMiddleware, func(c *fiber.Ctx) error {
		sum, err := svc.Summarize(c.Context())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "summary": sum})
	})
}

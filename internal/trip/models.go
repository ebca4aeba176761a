package trip

import "time"

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

type Trip struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id,omitempty"`
	Name        string    `json:"name"`
	Destination string    `json:"destination"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date,omitempty"`
	Budget      float64   `json:"budget"`
	Travelers   int       `json:"travelers"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type Destination struct {
	ID         string    `json:"id"`
	TripID     string    `json:"trip_id"`
	Name       string    `json:"name"`
	Notes      string    `json:"notes,omitempty"`
	OrderIndex int       `json:"order_index"`
	AddedAt    time.Time `json:"added_at"`
}

type Route struct {
	ID              string    `json:"id"`
	TripID          string    `json:"trip_id"`
	TotalDistanceKm float64   `json:"total_distance_km"`
	EstimatedDays   int       `json:"estimated_days"`
	LegsJSON        string    `json:"legs,omitempty"`
	ComputedAt      time.Time `json:"computed_at"`
}

// View is the flattened trip aggregate: the trip row, its ordered
// destinations and the latest computed route. The route key is absent when
// no route has been computed yet.
type View struct {
	Trip
	StartDateDisplay string        `json:"start_date_display"`
	Destinations     []Destination `json:"destinations"`
	Route            *Route        `json:"route,omitempty"`
}

package review

import "time"

const (
	TypeTrip     = "trip"
	TypePlatform = "platform"
)

// Review is discriminated by an explicit Type chosen by the caller, never
// inferred from the shape of an identifier.
type Review struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	TripID     string    `json:"trip_id,omitempty"`
	AuthorName string    `json:"author_name"`
	Email      string    `json:"email,omitempty"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

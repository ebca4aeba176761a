package notify

import "context"

// Message carries the template data for a tracker confirmation email.
type Message struct {
	To           string `json:"to"`
	TravelerName string `json:"traveler_name,omitempty"`
	TripName     string `json:"trip_name"`
	Token        string `json:"token"`
	StartDate    string `json:"start_date,omitempty"`
}

type Result struct {
	MessageID string `json:"message_id"`
}

// Dispatcher is the delivery boundary. Outcomes are logged by callers and
// never fail a tracker lifecycle operation.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) (Result, error)
}

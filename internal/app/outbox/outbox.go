package outbox

import (
	"context"
	"encoding/json"
	"time"

	"staybook/internal/domain/reservation"
)

const (
	EventReservationCreated = "reservation.created"
	EventReservationPaid    = "reservation.paid"
)

// Event is a domain fact queued for asynchronous publication. Recording
// happens inside the same transaction that produced the fact. Attempts
// counts prior failed publishes; stores populate it on claim so the worker
// can escalate its retry backoff.
type Event struct {
	ID         string
	Name       string
	Aggregate  string
	Payload    json.RawMessage
	OccurredAt time.Time
	Attempts   int
}

// Recorder appends events to the transactional outbox.
type Recorder interface {
	Record(ctx context.Context, evt Event) error
}

type reservationPayload struct {
	ReservationID string `json:"reservation_id"`
	PropertyID    string `json:"property_id"`
	CheckIn       string `json:"checkin"`
	CheckOut      string `json:"checkout"`
	Status        string `json:"status"`
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
}

// ReservationEvent builds an outbox event from a reservation snapshot.
func ReservationEvent(id, name string, res *reservation.Reservation, at time.Time) (Event, error) {
	payload, err := json.Marshal(reservationPayload{
		ReservationID: string(res.ID),
		PropertyID:    string(res.PropertyID),
		CheckIn:       res.Range.CheckIn.Format("2006-01-02"),
		CheckOut:      res.Range.CheckOut.Format("2006-01-02"),
		Status:        string(res.Status),
		AmountCents:   res.AmountCents,
		Currency:      res.Currency,
	})
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:         id,
		Name:       name,
		Aggregate:  string(res.ID),
		Payload:    payload,
		OccurredAt: at.UTC(),
	}, nil
}

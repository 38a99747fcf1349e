package reservation

import (
	"context"
	"errors"
	"time"

	"staybook/internal/domain/property"
	"staybook/internal/domain/shared/daterange"
)

var (
	ErrNotFound      = errors.New("reservation: not found")
	ErrInvalidGuests = errors.New("reservation: guests count must be positive")
	ErrEmailRequired = errors.New("reservation: contact email required")
	ErrInvalidState  = errors.New("reservation: invalid state transition")
)

type ID string

type Status string

const (
	// StatusPending is a reservation awaiting payment confirmation. It
	// blocks the dates exactly like a paid one.
	StatusPending Status = "pending"
	// StatusPaid is set by the external payment confirmation, never by
	// the booking flow itself.
	StatusPaid Status = "paid"
	// StatusCancelled is terminal and frees the dates.
	StatusCancelled Status = "cancelled"
)

// BlocksDates reports whether a reservation in this status counts toward
// conflict detection.
func (s Status) BlocksDates() bool {
	return s == StatusPending || s == StatusPaid
}

type Reservation struct {
	ID               ID
	PropertyID       property.ID
	Range            daterange.DateRange
	Guests           int
	Email            string
	Status           Status
	AmountCents      int64
	Currency         string
	PaymentSessionID string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type CreateParams struct {
	ID          ID
	PropertyID  property.ID
	Range       daterange.DateRange
	Guests      int
	Email       string
	AmountCents int64
	Currency    string
	CreatedAt   time.Time
}

// New builds a pending reservation, validating guest and contact invariants.
// Date-range validity is the caller's concern via daterange.New.
func New(params CreateParams) (*Reservation, error) {
	if params.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if params.Email == "" {
		return nil, ErrEmailRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	return &Reservation{
		ID:          params.ID,
		PropertyID:  params.PropertyID,
		Range:       params.Range,
		Guests:      params.Guests,
		Email:       params.Email,
		Status:      StatusPending,
		AmountCents: params.AmountCents,
		Currency:    params.Currency,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// MarkPaid transitions a pending reservation to paid. Driven by the external
// payment confirmation; calling it twice is rejected. A confirmation without
// a session id keeps the one attached at booking time.
func (r *Reservation) MarkPaid(sessionID string, now time.Time) error {
	if r.Status != StatusPending {
		return ErrInvalidState
	}
	r.Status = StatusPaid
	if sessionID != "" {
		r.PaymentSessionID = sessionID
	}
	r.UpdatedAt = now.UTC()
	return nil
}

// Repository is the persistence port for reservations. Overlapping returns
// date-blocking reservations (pending or paid) for a property that intersect
// the given half-open range, ordered by check-in ascending.
//
// MarkPaid is a conditional transition: it flips the row to paid only while
// it is still pending and reports whether it did. Concurrent confirmations
// of the same reservation therefore apply exactly once; an empty session id
// preserves the stored one.
type Repository interface {
	ByID(ctx context.Context, id ID) (*Reservation, error)
	Overlapping(ctx context.Context, propertyID property.ID, dr daterange.DateRange) ([]*Reservation, error)
	Create(ctx context.Context, r *Reservation) error
	Delete(ctx context.Context, id ID) error
	SetPaymentSession(ctx context.Context, id ID, sessionID string) error
	MarkPaid(ctx context.Context, id ID, sessionID string, now time.Time) (bool, error)
}

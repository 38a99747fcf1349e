package policies

import (
	"context"
	"errors"
)

var (
	// ErrSessionRejected means the gateway refused the request itself
	// (bad amount, unsupported currency). Retrying the same request
	// cannot succeed.
	ErrSessionRejected = errors.New("payments: session request rejected")
	// ErrGatewayUnavailable covers transient gateway failures and
	// timeouts. The booking flow treats it as fatal for the attempt.
	ErrGatewayUnavailable = errors.New("payments: gateway unavailable")
)

// SessionRequest carries everything the gateway needs to host a checkout
// page. Metadata must be rich enough for a later external confirmation to
// correlate back to the reservation.
type SessionRequest struct {
	AmountCents int64
	Currency    string
	Description string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// Session is the gateway's opaque handle plus the hosted payment URL the
// end user is redirected to.
type Session struct {
	ID  string
	URL string
}

// PaymentSessionFactory is the external payment-gateway boundary.
type PaymentSessionFactory interface {
	CreateSession(ctx context.Context, req SessionRequest) (Session, error)
}

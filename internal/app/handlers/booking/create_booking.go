package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/apperrors"
	"staybook/internal/app/lookup"
	"staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/property"
	"staybook/internal/domain/reservation"
	"staybook/internal/domain/shared/daterange"
)

const dayLayout = "2006-01-02"

type CreateBookingCommand struct {
	PropertyID   string
	PropertySlug string
	CheckIn      time.Time
	CheckOut     time.Time
	Guests       int
	Email        string
}

type CreateBookingResult struct {
	ReservationID string
	CheckoutURL   string
	AmountCents   int64
	Currency      string
}

// CreateBookingHandler runs the atomic booking flow: conflict check and
// pending insert inside one serializable transaction, then the payment
// session call, then a compensating delete if the gateway failed.
//
// The transaction deliberately does not stay open across the gateway call.
// The pending row is committed first so no database locks outlive the
// network round trip; the exclusion constraint and serializable isolation
// keep the no-overlap invariant regardless.
type CreateBookingHandler struct {
	UoWFactory     uow.UoWFactory
	Properties     property.Repository
	Payments       policies.PaymentSessionFactory
	BaseURL        string
	PaymentTimeout time.Duration
	Logger         *slog.Logger
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*CreateBookingResult, error) {
	if strings.TrimSpace(cmd.Email) == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	guests := cmd.Guests
	if guests == 0 {
		guests = 1
	}
	if guests < 0 {
		return nil, apperrors.InvalidInput("guests must be positive")
	}
	dr, err := daterange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		if errors.Is(err, daterange.ErrInvalidRange) {
			return nil, apperrors.InvalidInput("checkout must be after checkin")
		}
		return nil, apperrors.Internal("invalid booking range", err)
	}

	prop, err := lookup.Property(ctx, h.Properties, cmd.PropertyID, cmd.PropertySlug)
	if err != nil {
		return nil, err
	}

	stay, err := pricing.ForStay(dr, prop.NightlyRate())
	if err != nil {
		return nil, apperrors.Internal("pricing failed", err)
	}

	res, err := h.reservePending(ctx, prop, dr, guests, cmd.Email, stay)
	if err != nil {
		return nil, err
	}

	session, err := h.createPaymentSession(ctx, prop, res, dr)
	if err != nil {
		h.compensate(ctx, res.ID)
		return nil, apperrors.Upstream("payment session could not be created", err)
	}

	if err := h.attachSession(ctx, res.ID, session.ID); err != nil {
		// The booking stands; losing the session id only costs
		// correlation convenience, the gateway metadata still carries
		// the reservation id.
		h.logger().Warn("payment session id not persisted", "reservation_id", res.ID, "error", err)
	}

	return &CreateBookingResult{
		ReservationID: string(res.ID),
		CheckoutURL:   session.URL,
		AmountCents:   res.AmountCents,
		Currency:      res.Currency,
	}, nil
}

// reservePending inserts the pending reservation inside a serializable
// transaction. The in-transaction overlap query is a fast path; the
// authoritative guards are serializable isolation and the database exclusion
// constraint, both surfacing as a Conflict at commit.
func (h *CreateBookingHandler) reservePending(ctx context.Context, prop *property.Property, dr daterange.DateRange, guests int, email string, stay pricing.Quote) (*reservation.Reservation, error) {
	unit, err := h.UoWFactory.Begin(ctx, uow.TxOptions{Serializable: true})
	if err != nil {
		return nil, apperrors.Internal("could not start booking transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()

	conflicts, err := unit.Reservations().Overlapping(ctx, prop.ID, dr)
	if err != nil {
		return nil, apperrors.Internal("conflict check failed", err)
	}
	if len(conflicts) > 0 {
		return nil, apperrors.Conflict("requested dates are no longer available")
	}

	now := time.Now().UTC()
	res, err := reservation.New(reservation.CreateParams{
		ID:          reservation.ID(uuid.NewString()),
		PropertyID:  prop.ID,
		Range:       dr,
		Guests:      guests,
		Email:       email,
		AmountCents: stay.Total.Amount,
		Currency:    stay.Total.Currency,
		CreatedAt:   now,
	})
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	if err := unit.Reservations().Create(ctx, res); err != nil {
		return nil, err
	}

	evt, err := outbox.ReservationEvent(uuid.NewString(), outbox.EventReservationCreated, res, now)
	if err != nil {
		return nil, apperrors.Internal("outbox event encoding failed", err)
	}
	if err := unit.Outbox().Record(ctx, evt); err != nil {
		return nil, apperrors.Internal("outbox record failed", err)
	}

	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	committed = true
	return res, nil
}

func (h *CreateBookingHandler) createPaymentSession(ctx context.Context, prop *property.Property, res *reservation.Reservation, dr daterange.DateRange) (policies.Session, error) {
	timeout := h.PaymentTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	base := strings.TrimRight(h.BaseURL, "/")
	return h.Payments.CreateSession(ctx, policies.SessionRequest{
		AmountCents: res.AmountCents,
		Currency:    res.Currency,
		Description: fmt.Sprintf("%s, %s", prop.Name, dr),
		SuccessURL:  fmt.Sprintf("%s/booking/success?reservation_id=%s", base, res.ID),
		CancelURL:   fmt.Sprintf("%s/booking/cancel?reservation_id=%s", base, res.ID),
		Metadata: map[string]string{
			"reservation_id": string(res.ID),
			"property_id":    string(prop.ID),
			"property_slug":  prop.Slug,
			"checkin":        dr.CheckIn.Format(dayLayout),
			"checkout":       dr.CheckOut.Format(dayLayout),
		},
	})
}

// compensate removes the committed pending reservation after a gateway
// failure so the dates free up immediately. Runs detached from the request
// context: a request timeout must not leave the row behind.
func (h *CreateBookingHandler) compensate(ctx context.Context, id reservation.ID) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	unit, err := h.UoWFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		h.logger().Error("compensation begin failed, pending reservation orphaned", "reservation_id", id, "error", err)
		return
	}
	if err := unit.Reservations().Delete(ctx, id); err != nil {
		_ = unit.Rollback(ctx)
		h.logger().Error("compensation delete failed, pending reservation orphaned", "reservation_id", id, "error", err)
		return
	}
	if err := unit.Commit(ctx); err != nil {
		h.logger().Error("compensation commit failed, pending reservation orphaned", "reservation_id", id, "error", err)
		return
	}
	h.logger().Info("pending reservation compensated after gateway failure", "reservation_id", id)
}

func (h *CreateBookingHandler) attachSession(ctx context.Context, id reservation.ID, sessionID string) error {
	unit, err := h.UoWFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	if err := unit.Reservations().SetPaymentSession(ctx, id, sessionID); err != nil {
		_ = unit.Rollback(ctx)
		return err
	}
	return unit.Commit(ctx)
}

func (h *CreateBookingHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

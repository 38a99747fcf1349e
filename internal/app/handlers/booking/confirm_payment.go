package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/apperrors"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	"staybook/internal/domain/reservation"
)

type ConfirmPaymentCommand struct {
	ReservationID string
	SessionID     string
}

type ConfirmPaymentResult struct {
	ReservationID string
	Status        reservation.Status
}

// ConfirmPaymentHandler flips a pending reservation to paid when the
// external payment confirmation arrives. Idempotent: confirming an already
// paid reservation succeeds without touching it again.
type ConfirmPaymentHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ConfirmPaymentHandler) Handle(ctx context.Context, cmd ConfirmPaymentCommand) (*ConfirmPaymentResult, error) {
	if cmd.ReservationID == "" {
		return nil, apperrors.InvalidInput("reservation_id is required")
	}

	unit, err := h.UoWFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, apperrors.Internal("could not start confirmation transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()

	res, err := unit.Reservations().ByID(ctx, reservation.ID(cmd.ReservationID))
	if err != nil {
		if errors.Is(err, reservation.ErrNotFound) {
			return nil, apperrors.NotFound("reservation not found")
		}
		return nil, apperrors.Internal("reservation lookup failed", err)
	}

	if res.Status == reservation.StatusPaid {
		return &ConfirmPaymentResult{ReservationID: string(res.ID), Status: res.Status}, nil
	}

	now := time.Now().UTC()
	if err := res.MarkPaid(cmd.SessionID, now); err != nil {
		return nil, apperrors.Conflict("reservation is not awaiting payment")
	}
	applied, err := unit.Reservations().MarkPaid(ctx, res.ID, cmd.SessionID, now)
	if err != nil {
		return nil, err
	}
	if !applied {
		// A concurrent confirmation won the conditional update after our
		// read. Same outcome, and only the winner emits the paid event.
		return &ConfirmPaymentResult{ReservationID: string(res.ID), Status: reservation.StatusPaid}, nil
	}

	evt, err := outbox.ReservationEvent(uuid.NewString(), outbox.EventReservationPaid, res, now)
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

	if h.Logger != nil {
		h.Logger.Info("reservation paid", "reservation_id", res.ID, "session_id", cmd.SessionID)
	}
	return &ConfirmPaymentResult{ReservationID: string(res.ID), Status: res.Status}, nil
}

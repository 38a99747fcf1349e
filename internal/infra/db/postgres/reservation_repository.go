package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"staybook/internal/domain/property"
	"staybook/internal/domain/reservation"
	"staybook/internal/domain/shared/daterange"
)

type reservationRow struct {
	ID               string         `db:"id"`
	PropertyID       string         `db:"property_id"`
	CheckIn          time.Time      `db:"checkin"`
	CheckOut         time.Time      `db:"checkout"`
	Guests           int            `db:"guests"`
	Email            string         `db:"email"`
	Status           string         `db:"status"`
	AmountCents      int64          `db:"amount_cents"`
	Currency         string         `db:"currency"`
	PaymentSessionID sql.NullString `db:"payment_session_id"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func (row reservationRow) toDomain() (*reservation.Reservation, error) {
	dr, err := daterange.New(row.CheckIn, row.CheckOut)
	if err != nil {
		return nil, err
	}
	return &reservation.Reservation{
		ID:               reservation.ID(row.ID),
		PropertyID:       property.ID(row.PropertyID),
		Range:            dr,
		Guests:           row.Guests,
		Email:            row.Email,
		Status:           reservation.Status(row.Status),
		AmountCents:      row.AmountCents,
		Currency:         row.Currency,
		PaymentSessionID: row.PaymentSessionID.String,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}, nil
}

// ReservationRepository persists reservations. It works over either the pool
// or an open transaction; the booking flow always hands it a transaction.
type ReservationRepository struct {
	q sqlx.ExtContext
}

func NewReservationRepository(q sqlx.ExtContext) *ReservationRepository {
	return &ReservationRepository{q: q}
}

const reservationColumns = `id, property_id, checkin, checkout, guests, email, status, amount_cents, currency, payment_session_id, created_at, updated_at`

func (r *ReservationRepository) ByID(ctx context.Context, id reservation.ID) (*reservation.Reservation, error) {
	var row reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.q, &row, query, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrNotFound
		}
		return nil, classify("reservation query failed", err)
	}
	return row.toDomain()
}

// Overlapping returns pending/paid reservations intersecting the half-open
// range [dr.CheckIn, dr.CheckOut), ordered by check-in ascending.
func (r *ReservationRepository) Overlapping(ctx context.Context, propertyID property.ID, dr daterange.DateRange) ([]*reservation.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE property_id = $1
		  AND status IN ('pending', 'paid')
		  AND checkin < $3
		  AND checkout > $2
		ORDER BY checkin ASC`

	var rows []reservationRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, string(propertyID), dr.CheckIn, dr.CheckOut); err != nil {
		return nil, classify("overlap query failed", err)
	}

	out := make([]*reservation.Reservation, 0, len(rows))
	for _, row := range rows {
		res, err := row.toDomain()
		if err != nil {
			return nil, classify("reservation row invalid", err)
		}
		out = append(out, res)
	}
	return out, nil
}

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	query := `
		INSERT INTO reservations (
			id, property_id, checkin, checkout, guests, email,
			status, amount_cents, currency, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.q.ExecContext(ctx, query,
		string(res.ID), string(res.PropertyID),
		res.Range.CheckIn, res.Range.CheckOut,
		res.Guests, res.Email, string(res.Status),
		res.AmountCents, res.Currency,
		res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		return classify("reservation insert failed", err)
	}
	return nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id reservation.ID) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, string(id)); err != nil {
		return classify("reservation delete failed", err)
	}
	return nil
}

func (r *ReservationRepository) SetPaymentSession(ctx context.Context, id reservation.ID, sessionID string) error {
	query := `UPDATE reservations SET payment_session_id = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.q.ExecContext(ctx, query, string(id), sessionID, time.Now().UTC()); err != nil {
		return classify("payment session update failed", err)
	}
	return nil
}

// MarkPaid flips a pending reservation to paid. The status predicate makes
// the transition race-safe under read committed: a concurrent confirmation
// that already committed leaves this update matching zero rows. An empty
// session id keeps the one attached at booking time.
func (r *ReservationRepository) MarkPaid(ctx context.Context, id reservation.ID, sessionID string, now time.Time) (bool, error) {
	query := `
		UPDATE reservations
		SET status = 'paid',
		    payment_session_id = COALESCE(NULLIF($2, ''), payment_session_id),
		    updated_at = $3
		WHERE id = $1 AND status = 'pending'`

	result, err := r.q.ExecContext(ctx, query, string(id), sessionID, now.UTC())
	if err != nil {
		return false, classify("reservation paid transition failed", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, classify("reservation paid transition failed", err)
	}
	return affected == 1, nil
}

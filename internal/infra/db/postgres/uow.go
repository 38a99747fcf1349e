package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	"staybook/internal/domain/property"
	"staybook/internal/domain/reservation"
)

var ErrUnitOfWorkNotConfigured = errors.New("postgres: unit of work factory missing database")

// Factory wires Postgres transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *sqlx.DB
}

// Begin starts a transaction. The booking flow asks for Serializable so
// concurrent conflict checks for the same dates cannot both commit.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	txOpts := &sql.TxOptions{ReadOnly: opts.ReadOnly}
	if opts.Serializable {
		txOpts.Isolation = sql.LevelSerializable
	}
	tx, err := f.DB.BeginTxx(ctx, txOpts)
	if err != nil {
		return nil, classify("begin transaction failed", err)
	}
	return &Unit{
		tx:           tx,
		properties:   NewPropertyRepository(tx),
		reservations: NewReservationRepository(tx),
		outbox:       NewOutboxStore(tx),
	}, nil
}

// Unit is a uow.UnitOfWork bound to one open transaction.
type Unit struct {
	tx           *sqlx.Tx
	properties   *PropertyRepository
	reservations *ReservationRepository
	outbox       *OutboxStore
}

func (u *Unit) Properties() property.Repository {
	return u.properties
}

func (u *Unit) Reservations() reservation.Repository {
	return u.reservations
}

func (u *Unit) Outbox() outbox.Recorder {
	return u.outbox
}

// Commit ends the transaction. Serialization failures and exclusion
// violations surface here and are classified as Conflict.
func (u *Unit) Commit(ctx context.Context) error {
	if err := u.tx.Commit(); err != nil {
		return classify("commit failed", err)
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return classify("rollback failed", err)
	}
	return nil
}

var _ uow.UoWFactory = Factory{}

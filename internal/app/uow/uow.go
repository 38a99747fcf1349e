package uow

import (
	"context"

	"staybook/internal/app/outbox"
	"staybook/internal/domain/property"
	"staybook/internal/domain/reservation"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Properties() property.Repository
	Reservations() reservation.Repository
	Outbox() outbox.Recorder

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries. Serializable is required by
// the booking flow so concurrent conflict checks cannot both pass.
type TxOptions struct {
	ReadOnly     bool
	Serializable bool
}

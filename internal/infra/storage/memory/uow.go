package memory

import (
	"context"
	"errors"

	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	"staybook/internal/domain/property"
	"staybook/internal/domain/reservation"
)

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory wires in-memory repositories into a unit-of-work boundary.
// Writes apply immediately; the overlap rule is enforced by the reservation
// repository itself, mirroring the database exclusion constraint.
type Factory struct {
	PropertiesRepo   *PropertyRepository
	ReservationsRepo *ReservationRepository
	OutboxStore      *Outbox
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.PropertiesRepo == nil || f.ReservationsRepo == nil || f.OutboxStore == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		properties:   f.PropertiesRepo,
		reservations: f.ReservationsRepo,
		outbox:       f.OutboxStore,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	properties   *PropertyRepository
	reservations *ReservationRepository
	outbox       *Outbox
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

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}

var _ uow.UoWFactory = Factory{}

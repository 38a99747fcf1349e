package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"staybook/internal/app/apperrors"
	"staybook/internal/domain/property"
	"staybook/internal/domain/reservation"
	"staybook/internal/domain/shared/daterange"
)

// PropertyRepository is an in-memory implementation for tests and demos.
type PropertyRepository struct {
	mu    sync.RWMutex
	items map[property.ID]*property.Property
}

func NewPropertyRepository() *PropertyRepository {
	return &PropertyRepository{items: make(map[property.ID]*property.Property)}
}

func (r *PropertyRepository) Add(p *property.Property) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[p.ID] = p
}

func (r *PropertyRepository) ByID(ctx context.Context, id property.ID) (*property.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prop, ok := r.items[id]
	if !ok {
		return nil, property.ErrNotFound
	}
	return prop, nil
}

func (r *PropertyRepository) BySlug(ctx context.Context, slug string) (*property.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, prop := range r.items {
		if prop.Slug == slug {
			return prop, nil
		}
	}
	return nil, property.ErrNotFound
}

// ReservationRepository keeps reservations in memory and enforces the same
// no-overlap rule the database exclusion constraint does: Create rejects a
// date-blocking overlap atomically under the repository lock.
type ReservationRepository struct {
	mu    sync.Mutex
	items map[reservation.ID]*reservation.Reservation
}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{items: make(map[reservation.ID]*reservation.Reservation)}
}

func (r *ReservationRepository) ByID(ctx context.Context, id reservation.ID) (*reservation.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.items[id]
	if !ok {
		return nil, reservation.ErrNotFound
	}
	copied := *res
	return &copied, nil
}

func (r *ReservationRepository) Overlapping(ctx context.Context, propertyID property.ID, dr daterange.DateRange) ([]*reservation.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overlappingLocked(propertyID, dr), nil
}

func (r *ReservationRepository) overlappingLocked(propertyID property.ID, dr daterange.DateRange) []*reservation.Reservation {
	var out []*reservation.Reservation
	for _, res := range r.items {
		if res.PropertyID != propertyID || !res.Status.BlocksDates() {
			continue
		}
		if res.Range.Overlaps(dr) {
			copied := *res
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Range.CheckIn.Before(out[j].Range.CheckIn)
	})
	return out
}

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res.Status.BlocksDates() {
		if conflicts := r.overlappingLocked(res.PropertyID, res.Range); len(conflicts) > 0 {
			return apperrors.Conflict("requested dates are no longer available")
		}
	}
	copied := *res
	r.items[res.ID] = &copied
	return nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id reservation.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *ReservationRepository) SetPaymentSession(ctx context.Context, id reservation.ID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.items[id]
	if !ok {
		return reservation.ErrNotFound
	}
	res.PaymentSessionID = sessionID
	return nil
}

// MarkPaid mirrors the conditional database transition: only a pending row
// flips, and exactly one of several concurrent confirmations reports true.
func (r *ReservationRepository) MarkPaid(ctx context.Context, id reservation.ID, sessionID string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.items[id]
	if !ok {
		return false, reservation.ErrNotFound
	}
	if res.Status != reservation.StatusPending {
		return false, nil
	}
	res.Status = reservation.StatusPaid
	if sessionID != "" {
		res.PaymentSessionID = sessionID
	}
	res.UpdatedAt = now.UTC()
	return true, nil
}

package availability

import (
	"context"
	"errors"
	"time"

	"staybook/internal/app/apperrors"
	"staybook/internal/app/lookup"
	"staybook/internal/domain/property"
	"staybook/internal/domain/reservation"
	"staybook/internal/domain/shared/daterange"
)

type GetAvailabilityQuery struct {
	PropertyID   string
	PropertySlug string
	From         time.Time
	To           time.Time
}

type OccupiedRange struct {
	ID       string
	CheckIn  time.Time
	CheckOut time.Time
	Status   reservation.Status
}

type GetAvailabilityResult struct {
	Property *property.Property
	Range    daterange.DateRange
	Occupied []OccupiedRange
}

// GetAvailabilityHandler lists date-blocking reservations overlapping a
// range. Runs against plain read-committed reads; the authoritative conflict
// check happens inside the booking transaction.
type GetAvailabilityHandler struct {
	Properties   property.Repository
	Reservations reservation.Repository
}

func (h *GetAvailabilityHandler) Handle(ctx context.Context, q GetAvailabilityQuery) (*GetAvailabilityResult, error) {
	dr, err := daterange.New(q.From, q.To)
	if err != nil {
		if errors.Is(err, daterange.ErrInvalidRange) {
			return nil, apperrors.InvalidInput("to must be after from")
		}
		return nil, apperrors.Internal("invalid availability range", err)
	}

	prop, err := lookup.Property(ctx, h.Properties, q.PropertyID, q.PropertySlug)
	if err != nil {
		return nil, err
	}

	overlapping, err := h.Reservations.Overlapping(ctx, prop.ID, dr)
	if err != nil {
		return nil, apperrors.Internal("availability query failed", err)
	}

	occupied := make([]OccupiedRange, 0, len(overlapping))
	for _, res := range overlapping {
		occupied = append(occupied, OccupiedRange{
			ID:       string(res.ID),
			CheckIn:  res.Range.CheckIn,
			CheckOut: res.Range.CheckOut,
			Status:   res.Status,
		})
	}

	return &GetAvailabilityResult{Property: prop, Range: dr, Occupied: occupied}, nil
}

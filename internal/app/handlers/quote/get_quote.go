package quote

import (
	"context"
	"errors"
	"time"

	"staybook/internal/app/apperrors"
	"staybook/internal/app/lookup"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/property"
	"staybook/internal/domain/shared/daterange"
)

type GetQuoteQuery struct {
	PropertyID   string
	PropertySlug string
	CheckIn      time.Time
	CheckOut     time.Time
}

type GetQuoteResult struct {
	Property       *property.Property
	Range          daterange.DateRange
	Nights         int
	TotalCents     int64
	Currency       string
	TotalFormatted string
}

// GetQuoteHandler prices a stay without touching reservations. Deterministic
// and side-effect free.
type GetQuoteHandler struct {
	Properties property.Repository
}

func (h *GetQuoteHandler) Handle(ctx context.Context, q GetQuoteQuery) (*GetQuoteResult, error) {
	dr, err := daterange.New(q.CheckIn, q.CheckOut)
	if err != nil {
		if errors.Is(err, daterange.ErrInvalidRange) {
			return nil, apperrors.InvalidInput("checkout must be after checkin")
		}
		return nil, apperrors.Internal("invalid quote range", err)
	}

	prop, err := lookup.Property(ctx, h.Properties, q.PropertyID, q.PropertySlug)
	if err != nil {
		return nil, err
	}

	stay, err := pricing.ForStay(dr, prop.NightlyRate())
	if err != nil {
		return nil, apperrors.Internal("pricing failed", err)
	}

	return &GetQuoteResult{
		Property:       prop,
		Range:          dr,
		Nights:         stay.Nights,
		TotalCents:     stay.Total.Amount,
		Currency:       stay.Total.Currency,
		TotalFormatted: stay.FormattedTotal(),
	}, nil
}

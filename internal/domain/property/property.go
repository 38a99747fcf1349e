package property

import (
	"context"
	"errors"

	"staybook/internal/domain/shared/money"
)

var ErrNotFound = errors.New("property: not found")

type ID string

// Property is a bookable unit. The booking core treats properties as
// read-only reference data; catalog management lives elsewhere.
type Property struct {
	ID                ID
	Slug              string
	Name              string
	Currency          string
	NightlyPriceCents int64
}

// NightlyRate returns the nightly price as a money value.
func (p *Property) NightlyRate() money.Money {
	return money.Money{Amount: p.NightlyPriceCents, Currency: p.Currency}
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Property, error)
	BySlug(ctx context.Context, slug string) (*Property, error)
}

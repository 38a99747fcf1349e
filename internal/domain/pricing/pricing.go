package pricing

import (
	"errors"

	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

var ErrCurrencyUnset = errors.New("pricing: currency must be defined")

// Quote is the deterministic price for a stay: whole nights times the
// nightly rate, all in integer minor units.
type Quote struct {
	Nights  int
	Nightly money.Money
	Total   money.Money
}

// ForStay prices a date range at the given nightly rate. The range must be
// valid (checkout strictly after check-in); daterange.ErrInvalidRange is
// returned otherwise.
func ForStay(dr daterange.DateRange, nightly money.Money) (Quote, error) {
	if err := dr.Validate(); err != nil {
		return Quote{}, err
	}
	if nightly.Currency == "" {
		return Quote{}, ErrCurrencyUnset
	}
	nights := dr.Nights()
	return Quote{
		Nights:  nights,
		Nightly: nightly,
		Total:   nightly.Multiply(int64(nights)),
	}, nil
}

// FormattedTotal renders the total as a major-unit decimal with currency
// code, e.g. "300.00 EUR".
func (q Quote) FormattedTotal() string {
	return q.Total.Format()
}

package quote

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/apperrors"
	"staybook/internal/domain/property"
	"staybook/internal/infra/storage/memory"
)

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func newHandler() *GetQuoteHandler {
	properties := memory.NewPropertyRepository()
	properties.Add(&property.Property{ID: "prop-1", Slug: "villa-x", Name: "Villa X", Currency: "EUR", NightlyPriceCents: 10000})
	return &GetQuoteHandler{Properties: properties}
}

func TestGetQuote(t *testing.T) {
	h := newHandler()

	result, err := h.Handle(context.Background(), GetQuoteQuery{
		PropertySlug: "villa-x",
		CheckIn:      day("2024-06-01"),
		CheckOut:     day("2024-06-04"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Nights)
	assert.Equal(t, int64(30000), result.TotalCents)
	assert.Equal(t, "EUR", result.Currency)
	assert.Equal(t, "300.00 EUR", result.TotalFormatted)
	assert.Equal(t, property.ID("prop-1"), result.Property.ID)
}

func TestGetQuoteSingleNight(t *testing.T) {
	h := newHandler()

	result, err := h.Handle(context.Background(), GetQuoteQuery{
		PropertyID: "prop-1",
		CheckIn:    day("2024-06-01"),
		CheckOut:   day("2024-06-02"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Nights)
	assert.Equal(t, int64(10000), result.TotalCents)
}

func TestGetQuoteErrors(t *testing.T) {
	h := newHandler()

	tests := []struct {
		name string
		q    GetQuoteQuery
		want apperrors.Kind
	}{
		{
			name: "same day stay",
			q:    GetQuoteQuery{PropertySlug: "villa-x", CheckIn: day("2024-06-01"), CheckOut: day("2024-06-01")},
			want: apperrors.KindInvalidInput,
		},
		{
			name: "reversed dates",
			q:    GetQuoteQuery{PropertySlug: "villa-x", CheckIn: day("2024-06-04"), CheckOut: day("2024-06-01")},
			want: apperrors.KindInvalidInput,
		},
		{
			name: "unknown property",
			q:    GetQuoteQuery{PropertySlug: "no-such", CheckIn: day("2024-06-01"), CheckOut: day("2024-06-04")},
			want: apperrors.KindNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Handle(context.Background(), tt.q)
			require.Error(t, err)
			assert.Equal(t, tt.want, apperrors.KindOf(err))
		})
	}
}

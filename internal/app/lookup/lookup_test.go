package lookup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/apperrors"
	"staybook/internal/domain/property"
	"staybook/internal/infra/storage/memory"
)

func TestProperty(t *testing.T) {
	repo := memory.NewPropertyRepository()
	repo.Add(&property.Property{ID: "prop-1", Slug: "villa-x", Name: "Villa X", Currency: "EUR", NightlyPriceCents: 10000})
	repo.Add(&property.Property{ID: "prop-2", Slug: "cabin-y", Name: "Cabin Y", Currency: "EUR", NightlyPriceCents: 5000})

	tests := []struct {
		name     string
		id       string
		slug     string
		wantID   property.ID
		wantKind apperrors.Kind
	}{
		{name: "by id", id: "prop-1", wantID: "prop-1"},
		{name: "by slug", slug: "cabin-y", wantID: "prop-2"},
		{name: "id wins over slug", id: "prop-1", slug: "cabin-y", wantID: "prop-1"},
		{name: "both empty", wantKind: apperrors.KindInvalidInput},
		{name: "unknown id", id: "prop-9", wantKind: apperrors.KindNotFound},
		{name: "unknown slug", slug: "no-such", wantKind: apperrors.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prop, err := Property(context.Background(), repo, tt.id, tt.slug)
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperrors.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, prop.ID)
		})
	}
}

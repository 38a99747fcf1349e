package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"staybook/internal/domain/property"
)

type propertyRow struct {
	ID                string `db:"id"`
	Slug              string `db:"slug"`
	Name              string `db:"name"`
	Currency          string `db:"currency"`
	NightlyPriceCents int64  `db:"price_per_night_cents"`
}

// PropertyRepository reads the properties table. The booking core never
// writes it.
type PropertyRepository struct {
	q sqlx.ExtContext
}

func NewPropertyRepository(q sqlx.ExtContext) *PropertyRepository {
	return &PropertyRepository{q: q}
}

const propertyColumns = `id, slug, name, currency, price_per_night_cents`

func (r *PropertyRepository) ByID(ctx context.Context, id property.ID) (*property.Property, error) {
	return r.get(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = $1`, string(id))
}

func (r *PropertyRepository) BySlug(ctx context.Context, slug string) (*property.Property, error) {
	return r.get(ctx, `SELECT `+propertyColumns+` FROM properties WHERE slug = $1`, slug)
}

func (r *PropertyRepository) get(ctx context.Context, query string, arg any) (*property.Property, error) {
	var row propertyRow
	if err := sqlx.GetContext(ctx, r.q, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, property.ErrNotFound
		}
		return nil, classify("property query failed", err)
	}
	return &property.Property{
		ID:                property.ID(row.ID),
		Slug:              row.Slug,
		Name:              row.Name,
		Currency:          row.Currency,
		NightlyPriceCents: row.NightlyPriceCents,
	}, nil
}

package lookup

import (
	"context"
	"errors"

	"staybook/internal/app/apperrors"
	"staybook/internal/domain/property"
)

// Property resolves a property by id or slug. The id wins when both are
// present. Pure read, no transaction.
func Property(ctx context.Context, repo property.Repository, id, slug string) (*property.Property, error) {
	if id == "" && slug == "" {
		return nil, apperrors.InvalidInput("property_id or property_slug is required")
	}
	var (
		prop *property.Property
		err  error
	)
	if id != "" {
		prop, err = repo.ByID(ctx, property.ID(id))
	} else {
		prop, err = repo.BySlug(ctx, slug)
	}
	if err != nil {
		if errors.Is(err, property.ErrNotFound) {
			return nil, apperrors.NotFound("property not found")
		}
		return nil, apperrors.Internal("property lookup failed", err)
	}
	return prop, nil
}

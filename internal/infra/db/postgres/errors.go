package postgres

import (
	"errors"

	"github.com/lib/pq"

	"staybook/internal/app/apperrors"
)

// Postgres error codes that the booking flow treats as an authoritative
// Conflict: a serialization failure under SERIALIZABLE, the reservations
// exclusion-constraint violation, and unique violations.
const (
	codeSerializationFailure = "40001"
	codeUniqueViolation      = "23505"
	codeExclusionViolation   = "23P01"
)

// classify maps driver errors onto the application taxonomy. Anything not
// recognized is an internal failure wrapped with the failing operation.
func classify(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeSerializationFailure:
			return apperrors.Conflict("concurrent booking attempt detected")
		case codeExclusionViolation, codeUniqueViolation:
			return apperrors.Conflict("requested dates are no longer available")
		}
	}
	return apperrors.Internal(op, err)
}

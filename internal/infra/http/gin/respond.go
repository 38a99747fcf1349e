package ginserver

import (
	"time"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/apperrors"
	"staybook/internal/domain/property"
)

const dayLayout = "2006-01-02"

// writeError is the single boundary translating typed use-case errors into
// transport responses. The body shape is fixed: {ok:false, error:<message>}.
func writeError(c *gin.Context, err error) {
	appErr := apperrors.As(err)
	if appErr.Kind == apperrors.KindInternal || appErr.Kind == apperrors.KindUpstream {
		_ = c.Error(appErr)
	}
	c.JSON(appErr.HTTPStatus(), gin.H{"ok": false, "error": appErr.Message})
}

type propertyResponse struct {
	ID                string `json:"id"`
	Slug              string `json:"slug"`
	Name              string `json:"name"`
	Currency          string `json:"currency"`
	PricePerNightCent int64  `json:"price_per_night_cents"`
}

func mapProperty(p *property.Property) propertyResponse {
	return propertyResponse{
		ID:                string(p.ID),
		Slug:              p.Slug,
		Name:              p.Name,
		Currency:          p.Currency,
		PricePerNightCent: p.NightlyPriceCents,
	}
}

// parseDay parses a YYYY-MM-DD calendar date.
func parseDay(raw string) (time.Time, bool) {
	t, err := time.Parse(dayLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

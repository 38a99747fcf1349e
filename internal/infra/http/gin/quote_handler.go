package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/apperrors"
	quoteapp "staybook/internal/app/handlers/quote"
)

type QuoteHandler struct {
	Query *quoteapp.GetQuoteHandler
}

type quoteRequest struct {
	PropertyID   string `json:"property_id"`
	PropertySlug string `json:"property_slug"`
	CheckIn      string `json:"checkin"`
	CheckOut     string `json:"checkout"`
}

func (h QuoteHandler) Quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.InvalidInput("invalid request body"))
		return
	}
	if req.CheckIn == "" || req.CheckOut == "" {
		writeError(c, apperrors.InvalidInput("checkin and checkout are required"))
		return
	}
	checkIn, ok := parseDay(req.CheckIn)
	if !ok {
		writeError(c, apperrors.InvalidInput("checkin must be a YYYY-MM-DD date"))
		return
	}
	checkOut, ok := parseDay(req.CheckOut)
	if !ok {
		writeError(c, apperrors.InvalidInput("checkout must be a YYYY-MM-DD date"))
		return
	}

	result, err := h.Query.Handle(c.Request.Context(), quoteapp.GetQuoteQuery{
		PropertyID:   req.PropertyID,
		PropertySlug: req.PropertySlug,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":                    true,
		"property":              mapProperty(result.Property),
		"checkin":               result.Range.CheckIn.Format(dayLayout),
		"checkout":              result.Range.CheckOut.Format(dayLayout),
		"nights":                result.Nights,
		"currency":              result.Currency,
		"price_per_night_cents": result.Property.NightlyPriceCents,
		"total_cents":           result.TotalCents,
		"total_formatted":       result.TotalFormatted,
	})
}

var _ QuoteHTTP = QuoteHandler{}

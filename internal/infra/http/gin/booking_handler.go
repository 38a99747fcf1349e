package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/apperrors"
	bookingapp "staybook/internal/app/handlers/booking"
)

type BookingHandler struct {
	Commands *bookingapp.CreateBookingHandler
}

type checkoutRequest struct {
	PropertyID   string `json:"property_id"`
	PropertySlug string `json:"property_slug"`
	CheckIn      string `json:"checkin"`
	CheckOut     string `json:"checkout"`
	Email        string `json:"email" binding:"omitempty,email"`
	Guests       int    `json:"guests"`
}

func (h BookingHandler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.InvalidInput("invalid request body"))
		return
	}
	if req.Email == "" {
		writeError(c, apperrors.InvalidInput("email is required"))
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

	result, err := h.Commands.Handle(c.Request.Context(), bookingapp.CreateBookingCommand{
		PropertyID:   req.PropertyID,
		PropertySlug: req.PropertySlug,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		Guests:       req.Guests,
		Email:        req.Email,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"ok":             true,
		"reservation_id": result.ReservationID,
		"checkout_url":   result.CheckoutURL,
		"amount_cents":   result.AmountCents,
		"currency":       result.Currency,
	})
}

var _ CheckoutHTTP = BookingHandler{}

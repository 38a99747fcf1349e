package ginserver

import (
	"crypto/subtle"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/apperrors"
	bookingapp "staybook/internal/app/handlers/booking"
)

// PaymentsHandler receives the gateway's payment confirmation. Signature
// verification beyond the shared secret is the gateway integration's
// concern, not this core's.
type PaymentsHandler struct {
	Commands      *bookingapp.ConfirmPaymentHandler
	WebhookSecret string
}

type confirmRequest struct {
	ReservationID string `json:"reservation_id"`
	SessionID     string `json:"session_id"`
}

func (h PaymentsHandler) Confirm(c *gin.Context) {
	if h.WebhookSecret != "" {
		provided := c.GetHeader("X-Webhook-Secret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(h.WebhookSecret)) != 1 {
			c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "invalid webhook secret"})
			return
		}
	}

	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.InvalidInput("invalid request body"))
		return
	}

	result, err := h.Commands.Handle(c.Request.Context(), bookingapp.ConfirmPaymentCommand{
		ReservationID: req.ReservationID,
		SessionID:     req.SessionID,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":             true,
		"reservation_id": result.ReservationID,
		"status":         string(result.Status),
	})
}

var _ PaymentsHTTP = PaymentsHandler{}

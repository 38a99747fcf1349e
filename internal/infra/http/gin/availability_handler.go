package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/apperrors"
	availabilityapp "staybook/internal/app/handlers/availability"
)

type AvailabilityHandler struct {
	Query *availabilityapp.GetAvailabilityHandler
}

type occupiedResponse struct {
	ID       string `json:"id"`
	CheckIn  string `json:"checkin"`
	CheckOut string `json:"checkout"`
	Status   string `json:"status"`
}

func (h AvailabilityHandler) Get(c *gin.Context) {
	fromRaw := c.Query("from")
	toRaw := c.Query("to")
	if fromRaw == "" || toRaw == "" {
		writeError(c, apperrors.InvalidInput("from and to are required"))
		return
	}
	from, ok := parseDay(fromRaw)
	if !ok {
		writeError(c, apperrors.InvalidInput("from must be a YYYY-MM-DD date"))
		return
	}
	to, ok := parseDay(toRaw)
	if !ok {
		writeError(c, apperrors.InvalidInput("to must be a YYYY-MM-DD date"))
		return
	}

	result, err := h.Query.Handle(c.Request.Context(), availabilityapp.GetAvailabilityQuery{
		PropertyID:   c.Query("property_id"),
		PropertySlug: c.Query("property_slug"),
		From:         from,
		To:           to,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	occupied := make([]occupiedResponse, 0, len(result.Occupied))
	for _, o := range result.Occupied {
		occupied = append(occupied, occupiedResponse{
			ID:       o.ID,
			CheckIn:  o.CheckIn.Format(dayLayout),
			CheckOut: o.CheckOut.Format(dayLayout),
			Status:   string(o.Status),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"property": mapProperty(result.Property),
		"range": gin.H{
			"from": result.Range.CheckIn.Format(dayLayout),
			"to":   result.Range.CheckOut.Format(dayLayout),
		},
		"occupied": occupied,
	})
}

var _ AvailabilityHTTP = AvailabilityHandler{}

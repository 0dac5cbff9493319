package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ink2deck/internal/app"
	"ink2deck/internal/transport/http/middleware"
	"ink2deck/internal/transport/http/response"
)

type HistoryHandler struct {
	history *app.HistoryService
}

func NewHistoryHandler(history *app.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// List returns the caller's recent conversions. Optional query: limit.
func (h *HistoryHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	events, err := h.history.List(c.Request.Context(), c.GetString(middleware.ContextUsernameKey), limit)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		case errors.Is(err, app.ErrStoreUnavailable):
			response.Error(c, http.StatusServiceUnavailable, response.CodeStoreUnavailable, "conversion history unavailable")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list conversions failed")
		}
		return
	}

	response.OK(c, gin.H{"conversions": events})
}

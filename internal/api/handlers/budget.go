package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/doomdagadiggiedahdah/SentinelNet/internal/api/middleware"
)

// GetBudget reports the caller's remaining allowance without consuming any of
// it, so clients can schedule retries around the reset boundary.
func (h *Handler) GetBudget(c *gin.Context) {
	org := middleware.Org(c)

	status, err := h.budget.Peek(org.ID)
	if err != nil {
		h.logger.Error("Failed to read budget", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, status)
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/doomdagadiggiedahdah/SentinelNet/internal/api/middleware"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/budget"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/db"
)

// consumeBudget charges one query unit for a privacy-sensitive read. It
// writes the 429 response itself when the allowance is spent.
func (h *Handler) consumeBudget(c *gin.Context, orgID string) bool {
	status, err := h.budget.CheckAndDecrement(orgID)
	if err != nil {
		var exhausted *budget.ExhaustedError
		if errors.As(err, &exhausted) {
			h.metrics.RecordBudgetDenied()
			retryAfter := int(time.Until(exhausted.ResetAt).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":    "Query budget exhausted",
				"reset_at": exhausted.ResetAt.UTC(),
			})
			return false
		}

		h.logger.Error("Budget check failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return false
	}

	c.Header("X-Query-Budget-Remaining", strconv.Itoa(status.Remaining))
	return true
}

func (h *Handler) ListCampaigns(c *gin.Context) {
	org := middleware.Org(c)

	if !h.consumeBudget(c, org.ID) {
		return
	}

	views, err := h.campaigns.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list campaigns", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	h.metrics.RecordCampaignRead()
	c.JSON(http.StatusOK, gin.H{
		"campaigns": views,
		"count":     len(views),
	})
}

func (h *Handler) GetCampaign(c *gin.Context) {
	org := middleware.Org(c)
	campaignID := c.Param("id")

	if !h.consumeBudget(c, org.ID) {
		return
	}

	view, err := h.campaigns.Get(c.Request.Context(), campaignID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
			return
		}
		h.logger.Error("Failed to get campaign", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	h.metrics.RecordCampaignRead()
	c.JSON(http.StatusOK, view)
}

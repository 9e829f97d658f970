package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/doomdagadiggiedahdah/SentinelNet/internal/api/middleware"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/db"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/exchange"
)

type SubmitIncidentRequest struct {
	LocalRef     string          `json:"local_ref" binding:"required"`
	TimeStart    time.Time       `json:"time_start" binding:"required"`
	TimeEnd      *time.Time      `json:"time_end"`
	AttackVector db.AttackVector `json:"attack_vector" binding:"required"`
	AIComponents []string        `json:"ai_components"`
	Techniques   []string        `json:"techniques"`
	IOCs         []db.IOC        `json:"iocs"`
	ImpactLevel  db.ImpactLevel  `json:"impact_level" binding:"required"`
	Summary      string          `json:"summary"`
}

func (h *Handler) SubmitIncident(c *gin.Context) {
	org := middleware.Org(c)

	var req SubmitIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report := exchange.Report{
		LocalRef:     req.LocalRef,
		TimeStart:    req.TimeStart,
		TimeEnd:      req.TimeEnd,
		AttackVector: req.AttackVector,
		AIComponents: req.AIComponents,
		Techniques:   req.Techniques,
		IOCs:         req.IOCs,
		ImpactLevel:  req.ImpactLevel,
		Summary:      req.Summary,
	}

	incident, isNew, err := h.exchange.Submit(c.Request.Context(), org.ID, report)
	if err != nil {
		switch {
		case errors.Is(err, exchange.ErrEmptyLocalRef):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, db.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		default:
			h.logger.Error("Failed to submit incident", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"incident": incident,
		"created":  isNew,
	})
}

func (h *Handler) ListOwnIncidents(c *gin.Context) {
	org := middleware.Org(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 100 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	incidents, err := h.exchange.ListOwn(org.ID, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list incidents", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"incidents": incidents,
		"count":     len(incidents),
	})
}

package handlers

import (
	"go.uber.org/zap"

	"github.com/doomdagadiggiedahdah/SentinelNet/internal/budget"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/campaigns"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/db"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/exchange"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/metrics"
)

type Handler struct {
	repo      *db.Repository
	exchange  *exchange.Service
	campaigns *campaigns.Service
	budget    *budget.Tracker
	metrics   *metrics.Collector
	logger    *zap.Logger
}

func NewHandler(repo *db.Repository, exchangeSvc *exchange.Service, campaignSvc *campaigns.Service, tracker *budget.Tracker, collector *metrics.Collector, logger *zap.Logger) *Handler {
	return &Handler{
		repo:      repo,
		exchange:  exchangeSvc,
		campaigns: campaignSvc,
		budget:    tracker,
		metrics:   collector,
		logger:    logger,
	}
}

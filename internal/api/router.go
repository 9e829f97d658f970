package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/doomdagadiggiedahdah/SentinelNet/internal/api/handlers"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/api/middleware"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/budget"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/campaigns"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/config"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/db"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/exchange"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/metrics"
)

type Server struct {
	Config *config.Config
	Router *gin.Engine
}

func NewServer(cfg *config.Config, repo *db.Repository, exchangeSvc *exchange.Service, campaignSvc *campaigns.Service, tracker *budget.Tracker, collector *metrics.Collector, logger *zap.Logger) *Server {
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))

	server := &Server{
		Config: cfg,
		Router: router,
	}

	h := handlers.NewHandler(repo, exchangeSvc, campaignSvc, tracker, collector, logger)

	// Health and metrics
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	router.GET("/metrics", gin.WrapH(collector.Handler()))

	// API routes (protected)
	api := router.Group("/api/v1")
	api.Use(middleware.APIKeyAuth(repo, collector))
	{
		api.POST("/incidents", h.SubmitIncident)
		api.GET("/incidents", h.ListOwnIncidents)
		api.GET("/campaigns", h.ListCampaigns)
		api.GET("/campaigns/:id", h.GetCampaign)
		api.GET("/budget", h.GetBudget)
	}

	return server
}

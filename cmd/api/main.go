package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/doomdagadiggiedahdah/SentinelNet/internal/api"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/budget"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/campaigns"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/config"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/correlation"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/db"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/exchange"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/metrics"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/storage/redis"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer logger.Sync()

	// Database
	conn, err := db.NewConnection(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer conn.Close()

	if err := runMigrations(conn, cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	repo := db.NewRepository(conn)

	// Redis (optional campaign list cache)
	var cache *redis.Cache
	if cfg.Redis.URL != "" {
		cache = redis.NewCache(cfg.Redis.URL, cfg.Redis.CacheTTL)
		defer cache.Close()
	}

	// Correlation predicate
	rules, err := correlation.LoadRules(cfg.Correlation.RulesPath)
	if err != nil {
		logger.Fatal("Failed to load correlation rules", zap.Error(err))
	}
	matcher := correlation.NewRuleMatcher(rules)

	collector := metrics.NewCollector()
	exchangeSvc := exchange.NewService(repo, matcher, cache, collector, logger, time.Now)
	campaignSvc := campaigns.NewService(repo, cache, logger)
	tracker := budget.NewTracker(repo, cfg.Budget.DefaultQueryBudget, time.Now, logger)

	server := api.NewServer(cfg, repo, exchangeSvc, campaignSvc, tracker, collector, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: server.Router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("API server started", zap.String("port", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func runMigrations(conn *sqlx.DB, path string) error {
	driver, err := migratepg.WithInstance(conn.DB, &migratepg.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance(path, "postgres", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

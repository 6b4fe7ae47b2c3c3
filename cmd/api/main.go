package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/metricops/anomalyd/internal/api/handlers"
	"github.com/metricops/anomalyd/internal/api/router"
	"github.com/metricops/anomalyd/internal/archive"
	"github.com/metricops/anomalyd/internal/config"
	"github.com/metricops/anomalyd/internal/detector"
	"github.com/metricops/anomalyd/internal/monitor"
	"github.com/metricops/anomalyd/internal/pkg/logger"
	"github.com/metricops/anomalyd/internal/pkg/validator"
	"github.com/metricops/anomalyd/internal/repository/postgres"
	"github.com/metricops/anomalyd/internal/services"
	"github.com/metricops/anomalyd/internal/worker"
	"github.com/metricops/anomalyd/migrations"
)

// @title anomalyd API
// @version 1.0
// @description Univariate time series anomaly detection service.
// @BasePath /api/v1
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
	})

	log.WithFields(map[string]interface{}{
		"environment": cfg.Server.Environment,
		"driver":      cfg.Database.Driver,
	}).Info("Starting anomalyd API server")

	// Database
	db, err := postgres.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	migrationsFS, err := migrations.GetFS(cfg.Database.Driver)
	if err != nil {
		log.Fatalf("Failed to load migrations: %v", err)
	}
	applied, err := postgres.RunMigrations(db, migrationsFS)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if applied > 0 {
		log.Infof("Applied %d database migration(s)", applied)
	}

	// Domain wiring
	repo := postgres.NewDetectionRepository(db)
	defaults := detector.Params{
		Contamination:   cfg.Detection.Contamination,
		Seed:            cfg.Detection.Seed,
		RatioThreshold:  cfg.Detection.RatioThreshold,
		StreakThreshold: cfg.Detection.StreakThreshold,
	}
	service := services.NewDetectionService(repo, log, defaults)

	h := &router.Handlers{
		Health: handlers.NewHealthHandler(db, log),
		Detect: handlers.NewDetectHandler(service, log, validator.New()),
		Runs:   handlers.NewRunsHandler(service, log),
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.New(cfg, log, h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Background workers share one cancellable context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mon *monitor.Monitor
	if cfg.Monitor.Enabled {
		queries, err := monitor.LoadQueries(cfg.Monitor.QueriesPath)
		if err != nil {
			log.Fatalf("Failed to load monitor queries: %v", err)
		}
		promClient, err := monitor.NewPrometheusClient(cfg.Monitor.PrometheusURL, log)
		if err != nil {
			log.Fatalf("Failed to create Prometheus client: %v", err)
		}
		mon = monitor.New(promClient, service, queries, cfg.Monitor, log)
		if err := mon.Start(ctx); err != nil {
			log.Fatalf("Failed to start monitor: %v", err)
		}
	}

	if cfg.Retention.Enabled {
		var archiver archive.Archiver
		if cfg.Archive.Enabled {
			s3Archiver, err := archive.NewS3Archiver(ctx, cfg.Archive, log)
			if err != nil {
				log.Fatalf("Failed to create S3 archiver: %v", err)
			}
			archiver = s3Archiver
		}
		sweeper := worker.NewRetentionSweeper(repo, archiver, cfg.Retention, log)
		go sweeper.Start(ctx)
	}

	go func() {
		log.Infof("API listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")

	if mon != nil {
		mon.Stop()
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.ErrorWithErr(err, "Forced shutdown")
	}

	log.Info("Server stopped")
}

package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/tair/stockroom/internal/app"
	"github.com/tair/stockroom/internal/config"
	"github.com/tair/stockroom/internal/storage"
	"github.com/tair/stockroom/kafka"
	"github.com/tair/stockroom/pkg/database"
	"github.com/tair/stockroom/pkg/logger"
	"github.com/tair/stockroom/pkg/tracing"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Msg("Starting stockroom daemon")

	tp, err := tracing.InitTracer(cfg.ServiceName)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize tracer")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(ctx, tp); err != nil {
			logger.Logger.Error().Err(err).Msg("Tracer shutdown failed")
		}
	}()

	db, err := database.NewGormConnection(cfg.DB)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database handle")
	}
	defer sqlDB.Close()

	gormStore := storage.NewGormStore(db)
	if err := gormStore.AutoMigrate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Every store call goes through metrics and tracing.
	var store storage.Store = storage.NewTracedStore(storage.NewInstrumentedStore(gormStore))

	var events *kafka.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		events, err = kafka.NewPublisher(cfg.KafkaBrokers)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to create Kafka publisher")
		}
		defer events.Close()
	} else {
		logger.Logger.Info().Msg("Kafka brokers not configured, eventing disabled")
	}
	application := app.New(store, events)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.ReconcileSpec, func() {
		if _, err := application.Sweeper.Run(context.Background()); err != nil {
			logger.Logger.Error().Err(err).Msg("Reconciliation sweep failed")
		}
	}); err != nil {
		logger.Logger.Fatal().Err(err).Str("spec", cfg.ReconcileSpec).Msg("Invalid reconcile schedule")
	}
	scheduler.Start()
	defer scheduler.Stop()

	logger.Logger.Info().
		Str("schedule", cfg.ReconcileSpec).
		Msg("Reconciliation sweeper scheduled")

	startOpsServer(sqlDB, cfg.HTTPPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down")
}

// startOpsServer serves health and metrics. Entity CRUD has no HTTP surface
// here; callers integrate through the usecase packages.
func startOpsServer(db *sql.DB, port string) {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	go func() {
		logger.Logger.Info().
			Str("port", port).
			Str("metrics_endpoint", "/metrics").
			Msg("Ops HTTP server started")
		if err := http.ListenAndServe(":"+port, c.Handler(router)); err != nil {
			logger.Logger.Fatal().Err(err).Msg("Ops HTTP server failed")
		}
	}()
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/diacare-ai/readmission/pkg/analytics"
	"github.com/diacare-ai/readmission/pkg/common/config"
	"github.com/diacare-ai/readmission/pkg/common/database"
	"github.com/diacare-ai/readmission/pkg/common/kafka"
	"github.com/diacare-ai/readmission/pkg/common/logger"
	"github.com/diacare-ai/readmission/pkg/common/middleware"
	"github.com/diacare-ai/readmission/pkg/inference"
	"github.com/diacare-ai/readmission/pkg/ingest"
	"github.com/diacare-ai/readmission/pkg/observability/metrics"
	"github.com/diacare-ai/readmission/pkg/outcome"
	"github.com/diacare-ai/readmission/pkg/store"
)

func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.GetDB()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to the database")
	}

	patients := store.NewRepository(db)
	if err := patients.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate patient store")
	}
	batches := ingest.NewBatchRepository(db)
	if err := batches.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate upload audit")
	}
	predictions := inference.NewAuditRepository(db)
	if err := predictions.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate prediction audit")
	}

	seeded, err := patients.EnsureSeeded(context.Background(), cfg.SeedCSVPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to seed patient store")
	}
	if seeded > 0 {
		logger.Log.WithField("rows", seeded).Info("Seeded patient store from bootstrap csv")
	}
	if count, err := patients.Count(context.Background()); err == nil {
		metrics.SetStoreRows(count)
	}

	// Nil redis client leaves the cache inert; stats fall back to store scans.
	cache := analytics.NewCache(database.GetRedis(), cfg.StatsCacheTTL)

	var producer *kafka.Producer
	if cfg.KafkaEnabled {
		producer = kafka.NewProducer(cfg.IngestTopic)
		defer producer.Close()
	}

	taxonomy, err := outcome.Load(cfg.TaxonomyPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to load outcome taxonomy")
	}

	// A missing artifact is not fatal: uploads and the dashboard still work,
	// predictions answer with a model-unavailable error.
	engine := inference.NewEngine(cfg.ModelArtifactPath)

	ingestService := ingest.NewService(ingest.NewValidator(), patients, batches, producer, cache)
	analyticsService := analytics.NewService(patients, analytics.WithCache(cache))

	uploadHandler := ingest.NewHTTPHandler(ingestService, cfg.MaxRequestBody)
	predictHandler := inference.NewHTTPHandler(engine, taxonomy, predictions)
	dashboardHandler := analytics.NewHTTPHandler(analyticsService)

	router := mux.NewRouter()
	router.Use(middleware.Logging)
	router.Use(middleware.Recovery)
	router.Use(middleware.CORS)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)
	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)
	router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		if count, err := patients.Count(r.Context()); err == nil {
			metrics.SetStoreRows(count)
		}
		metrics.WritePrometheus(w)
	}).Methods(http.MethodGet)

	// Routes are method-restricted, so preflights need their own match for
	// the CORS middleware to see them.
	router.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	api := router.PathPrefix("/api/v1").Subrouter()
	uploadHandler.Register(api)
	predictHandler.Register(api)
	dashboardHandler.Register(api)

	address := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithField("addr", address).Info("Readmission service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start readmission service")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down readmission service...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Readmission service forced to shutdown")
	}

	if err := database.CloseDB(); err != nil {
		logger.Log.WithError(err).Error("Failed to close database")
	}
	if err := database.CloseRedis(); err != nil {
		logger.Log.WithError(err).Error("Failed to close redis")
	}
	logger.Log.Info("Readmission service stopped")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"parking-status-backend/config"
	"parking-status-backend/internal/api"
	"parking-status-backend/internal/db"
	"parking-status-backend/internal/forecast"
	"parking-status-backend/internal/ingest"
	"parking-status-backend/internal/metrics"
	"parking-status-backend/internal/model"
	"parking-status-backend/internal/store"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "parking-backend ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	// Provision the facility registry from config
	facilities, chargers := seedEntities(cfg)
	if err := appStore.Seed(ctx, facilities, chargers); err != nil {
		logger.Fatalf("failed to seed facilities: %v", err)
	}

	// Metrics registry shared by the ingestion service and the API
	registry := prometheus.NewRegistry()
	appMetrics, err := metrics.New(registry)
	if err != nil {
		logger.Fatalf("failed to register metrics: %v", err)
	}

	// Run the ingestion cadence in the background
	source := ingest.NewSimulatedSource(facilities, time.Now().UnixNano())
	ingestSvc := ingest.NewService(&cfg.Ingest, appStore, source, appMetrics)
	go ingestSvc.Run(ctx)

	// Initialize router
	engine := &forecast.Engine{}
	router := api.NewRouter(&cfg.Server, appStore, engine, appMetrics, registry)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}

// seedEntities converts the configured facilities and chargers into models.
func seedEntities(cfg *config.Config) ([]model.Facility, []model.Charger) {
	var facilities []model.Facility
	var chargers []model.Charger
	for _, f := range cfg.Facilities {
		facilities = append(facilities, model.Facility{
			ID:             f.ID,
			Name:           f.Name,
			Capacity:       f.Capacity,
			ShadedCapacity: f.ShadedCapacity,
			Latitude:       f.Latitude,
			Longitude:      f.Longitude,
		})
		for _, ch := range f.Chargers {
			chargers = append(chargers, model.Charger{
				ID:         ch.ID,
				FacilityID: f.ID,
				Name:       ch.Name,
				PowerKW:    ch.PowerKW,
				Status:     model.ChargerAvailable,
			})
		}
	}
	return facilities, chargers
}

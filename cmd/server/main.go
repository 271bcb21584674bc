package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"

	httpapi "equiprent-backend/internal/api/http"
	"equiprent-backend/internal/config"
	"equiprent-backend/internal/logger"
	"equiprent-backend/internal/repository/postgres"
	"equiprent-backend/internal/security"
	"equiprent-backend/internal/service"
	"equiprent-backend/internal/storage"

	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Equiprent Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)

	// Initialize Artifact Storage
	var artifactStore storage.Store
	if cfg.Storage.Type == "" || cfg.Storage.Type == "local" {
		logger.Info("Using local artifact storage", "upload_dir", cfg.Storage.UploadDir)
		localStore, err := storage.NewLocalStore(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
		if err != nil {
			logger.Error("Failed to initialize local storage", "error", err)
			log.Fatalf("Failed to initialize local storage: %v", err)
		}
		artifactStore = localStore
	} else {
		logger.Error("Unsupported storage type", "type", cfg.Storage.Type)
		log.Fatalf("Storage type '%s' not yet implemented", cfg.Storage.Type)
	}

	// Initialize Notifier
	var notifier service.Notifier
	if cfg.SendGrid.APIKey != "" {
		notifier = service.NewEmailNotifier(
			cfg.SendGrid.APIKey,
			cfg.SendGrid.FromEmail,
			cfg.SendGrid.FromName,
			postgres.NewUserDirectory(db),
			store.RentalRepository,
		)
	} else {
		logger.Warn("SendGrid API key not configured, notifications disabled")
		notifier = service.NewNoopNotifier()
	}

	// Initialize Services
	rentalService := service.NewRentalService(
		store.RentalRepository,
		store.TransitionRepository,
		store.PaymentRepository,
		store.SaleRepository,
		store.CommissionLedgerRepository,
		notifier,
		service.LifecyclePolicy{
			AutoApproveMaxQuantity:      cfg.Rental.AutoApproveMaxQuantity,
			CommissionRateBps:           cfg.Pricing.CommissionRateBps,
			LateFeeMultiplierBps:        cfg.Pricing.LateFeeMultiplierBps,
			CancellationProcessingCents: cfg.Pricing.CancellationProcessingCents,
			SettlementWindowDays:        cfg.Settlement.WindowDays,
		},
	)
	settlementService := service.NewSettlementService(
		store.RentalRepository,
		store.PaymentRepository,
		store.SaleRepository,
		store.CommissionLedgerRepository,
		rentalService,
		notifier,
	)

	// Set up HTTP server
	router := httpapi.NewRouter(tokenManager, rentalService, settlementService, artifactStore)

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}

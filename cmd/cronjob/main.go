package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"equiprent-backend/internal/config"
	"equiprent-backend/internal/jobs"
	"equiprent-backend/internal/logger"
	"equiprent-backend/internal/repository/postgres"
	"equiprent-backend/internal/scheduler"
	"equiprent-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'mark-overdue-rentals', 'all-nightly')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Equiprent Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
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

	jobServices := &jobs.Services{
		Rental:   rentalService,
		Notifier: notifier,
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(db, store, jobServices, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "mark-overdue-rentals":
		jobRunner.MarkOverdueRentals()
	case "expire-pending-payments":
		jobRunner.ExpirePendingPayments()
	case "send-commission-reminders":
		jobRunner.SendCommissionReminders()
	case "all-nightly":
		jobRunner.RunAllNightlyJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - mark-overdue-rentals\n")
		fmt.Printf("  - expire-pending-payments\n")
		fmt.Printf("  - send-commission-reminders\n")
		fmt.Printf("  - all-nightly\n")
		os.Exit(1)
	}
}

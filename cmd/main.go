package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"loan-origination/internal/api"
	"loan-origination/internal/batch"
	"loan-origination/internal/config"
	"loan-origination/internal/domain/customer"
	"loan-origination/internal/domain/loan"
	"loan-origination/internal/domain/offer"
	"loan-origination/internal/domain/sanction"
	"loan-origination/internal/domain/underwriting"
	"loan-origination/internal/event"
	"loan-origination/internal/infrastructure/database/postgres"
	"loan-origination/internal/infrastructure/logging"
	"loan-origination/internal/journey"
)

func main() {
	cfg, logger := initializeApp()

	dbPool := initializeDatabase(cfg, logger)
	defer closeDatabase(dbPool, logger)

	publisher, amqpConn := initializePublisher(cfg, logger)
	if amqpConn != nil {
		defer amqpConn.Close()
	}

	orch, loanService, documents, states := initializeServices(dbPool, cfg, publisher, logger)

	expiryJob := batch.NewSessionExpiryJob(states, cfg.Batch.SessionMaxIdle, logger)

	cronScheduler := startBatchJobs(cfg, logger, expiryJob)
	router := api.SetupRouter(orch, loanService, documents, cfg, logger)

	srv, serverErrors, shutdownChan := startServer(cfg, router, logger)
	handleShutdown(srv, cronScheduler, shutdownChan, serverErrors, logger)
}

func initializeApp() (*config.Config, *slog.Logger) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logger)
	slog.SetDefault(logger)
	logger.Info("Application starting...", "config_source", viper.ConfigFileUsed())

	return cfg, logger
}

func initializeDatabase(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	logger.Info("Initializing database connection pool...")
	dbPool, err := postgres.NewConnectionPool(context.Background(), cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}
	return dbPool
}

func closeDatabase(dbPool *pgxpool.Pool, logger *slog.Logger) {
	logger.Info("Closing database connection pool...")
	dbPool.Close()
}

// initializePublisher connects to the broker when events are enabled and
// falls back to the no-op publisher otherwise. A broker outage at startup is
// fatal only when events were explicitly requested.
func initializePublisher(cfg *config.Config, logger *slog.Logger) (event.EventPublisher, *amqp.Connection) {
	if !cfg.Event.Enabled {
		logger.Info("Event publishing disabled, using no-op publisher")
		return event.NewNoopEventPublisher(logger), nil
	}

	conn, err := amqp.Dial(cfg.Event.URL)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	publisher, err := event.NewRabbitMQEventPublisher(conn, cfg.Event.Exchange, logger)
	if err != nil {
		logger.Error("Failed to set up event publisher", "error", err)
		os.Exit(1)
	}
	return publisher, conn
}

func initializeServices(dbPool *pgxpool.Pool, cfg *config.Config, publisher event.EventPublisher, logger *slog.Logger) (*journey.Orchestrator, loan.LoanService, sanction.Store, journey.StateRepository) {
	logger.Info("Initializing application components...")

	customerRepo := postgres.NewCustomerRepository(dbPool, logger)
	offerRepo := postgres.NewOfferRepository(dbPool, logger)
	loanRepo := postgres.NewLoanRepository(dbPool, logger)
	sessionRepo := postgres.NewSessionRepository(dbPool, logger)
	documents := postgres.NewSanctionDocumentRepository(dbPool, logger)

	customerService := customer.NewCustomerService(customerRepo, logger)
	offerService := offer.NewOfferService(offerRepo, logger)
	loanService := loan.NewLoanService(loanRepo, logger)

	thresholds := underwriting.LoadThresholds(underwriting.NewConfigProvider(cfg.Policy, logger))
	engine := underwriting.NewEngine(thresholds, logger)

	orch := journey.NewOrchestrator(sessionRepo, customerService, offerService, loanService,
		documents, engine, underwriting.DefaultBandPolicy(), publisher, logger)

	return orch, loanService, documents, sessionRepo
}

func startServer(cfg *config.Config, router http.Handler, logger *slog.Logger) (*http.Server, <-chan error, <-chan os.Signal) {
	logger.Info("Setting up HTTP server...", "port", cfg.Server.Port)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server listening on port %d", cfg.Server.Port))
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			serverErrors <- err
		} else {
			logger.Info("Server closed gracefully.")
			serverErrors <- nil
		}
	}()
	return srv, serverErrors, shutdownChan
}

func handleShutdown(srv *http.Server, cronScheduler *cron.Cron, shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) {
	logger.Info("Shutdown handler started. Waiting for signal or server error...")

	var triggerReason string
	select {
	case sig := <-shutdownChan:
		triggerReason = "signal: " + sig.String()
		logger.Info("Shutdown signal received.", "signal", sig.String())
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server exited unexpectedly before signal", "error", err)
			os.Exit(1)
		}
		triggerReason = "server exited"
		logger.Info("Server goroutine finished before signal.", "error", err)
	}

	logger.Info("Starting graceful shutdown...", "trigger", triggerReason)

	logger.Info("Stopping cron scheduler...")
	cronCtx := cronScheduler.Stop()
	select {
	case <-cronCtx.Done():
		logger.Info("Cron scheduler stopped gracefully.")
	case <-time.After(15 * time.Second):
		logger.Warn("Cron scheduler shutdown timed out.")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server graceful shutdown failed", "error", err)
		} else {
			logger.Info("HTTP server shutdown initiated.")
		}
		if err := srv.Close(); err != nil {
			logger.Error("HTTP server forced close failed", "error", err)
		}
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}
	logger.Info("Waiting for server goroutine to confirm exit...")
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Server goroutine exited with unexpected error after shutdown", "error", err)
		} else {
			logger.Info("Server goroutine confirmed exit.")
		}
	case <-time.After(5 * time.Second):
		logger.Warn("Timed out waiting for server goroutine confirmation.")
	}

	logger.Info("Application shutdown process complete.")
}

func startBatchJobs(cfg *config.Config, logger *slog.Logger, expiryJob *batch.SessionExpiryJob) *cron.Cron {
	logger.Info("Initializing batch job scheduler...")
	c := cron.New()

	scheduleSpec := cfg.Batch.SessionExpirySchedule
	if scheduleSpec == "" {
		scheduleSpec = "0 2 * * *"
		logger.Warn("Session expiry schedule not configured, using default", "schedule", scheduleSpec)
	}
	jobTimeout := cfg.Batch.SessionExpiryTimeout
	if jobTimeout <= 0 {
		jobTimeout = 30 * time.Minute
	}

	jobID, err := c.AddJob(scheduleSpec, cron.FuncJob(func() {
		jobLogger := logger.With("job_name", "SessionExpiry")
		jobLogger.Info("Cron triggered: Running session expiry job.")

		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if runErr := expiryJob.Run(ctx); runErr != nil {
			jobLogger.Error("Session expiry job finished with error", slog.Any("error", runErr))
		} else {
			jobLogger.Info("Session expiry job finished successfully.")
		}
	}))

	if err != nil {
		logger.Error("Failed to schedule session expiry job", "schedule", scheduleSpec, slog.Any("error", err))
	} else {
		logger.Info("Scheduled session expiry job", "schedule", scheduleSpec, "job_id", jobID)
	}

	c.Start()
	logger.Info("Cron scheduler started.")
	return c
}

package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loan-origination/internal/api/handler"
	mw "loan-origination/internal/api/middleware"
	"loan-origination/internal/config"
	"loan-origination/internal/domain/loan"
	"loan-origination/internal/domain/sanction"
	"loan-origination/internal/journey"
)

func SetupRouter(orch *journey.Orchestrator, loanService loan.LoanService, documents sanction.Store, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, cfg, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupSessionRoutes(router, cfg, orch, logger)
	setupLoanRoutes(router, loanService, documents, cfg, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return router
}

func setupMiddleware(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, logger).Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSessionRoutes(router *chi.Mux, cfg *config.Config, orch *journey.Orchestrator, logger *slog.Logger) {
	sessionHandler := handler.NewSessionHandler(orch, logger)
	authHandler := handler.NewAuthHandler(*cfg, logger)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/token", authHandler.GenerateBearerToken)
	})

	router.Route("/sessions", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", sessionHandler.StartSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", sessionHandler.GetSession)
			r.Post("/turns", sessionHandler.HandleTurn)
		})
	})
}

func setupLoanRoutes(router *chi.Mux, loanService loan.LoanService, documents sanction.Store, cfg *config.Config, logger *slog.Logger) {
	loanHandler := handler.NewLoanHandler(loanService, documents, logger)

	router.Route("/loans", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Route("/{loanID}", func(r chi.Router) {
			r.Get("/", loanHandler.GetLoan)
			r.Get("/schedule", loanHandler.GetSchedule)
			r.Get("/sanction", loanHandler.GetSanction)
		})
	})
}

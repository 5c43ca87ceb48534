// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/auth"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/config"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/handler"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/logging"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/middleware"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/predictor"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/render"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/scheduler"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/session"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/store"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/summary"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/version"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	doSeed := flag.Bool("seed", false, "Seed demo data into an empty database, train the price model, and exit")
	doTrain := flag.Bool("train", false, "Train the price model from stored quotations and exit")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Reliant Windows - Customer and Quotation Management\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RELIANT_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RELIANT_DB_PATH           SQLite database path (default: ./data/reliant.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RELIANT_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RELIANT_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RELIANT_PRICE_MODEL_PATH  Trained model path (default: ./data/price_model.json)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RELIANT_SUMMARY_API_KEY   API key for generative summaries (optional)\n")
	}

	flag.Parse()

	if *showVersion {
		info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
		_, _ = fmt.Printf("reliant %s\n", info)
		os.Exit(0)
	}

	if err := run(*doSeed, *doTrain); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(doSeed, doTrain bool) error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Mirror WARN and ERROR logs into the database event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)

	ctx := context.Background()
	queries := store.New(db)

	pricePredictor := predictor.NewService(db, cfg.PriceModelPath)

	if doSeed || cfg.DoSeed {
		slog.Info("seeding demo data")
		if err := store.Seed(ctx, queries, auth.HashPassword); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
		// Train immediately so a seeded database starts with a usable
		// price model.
		m, err := pricePredictor.Retrain(ctx)
		if err != nil {
			return fmt.Errorf("training price model after seed: %w", err)
		}
		slog.Info("seed complete",
			"model_path", cfg.PriceModelPath, "rows", m.TrainingRows, "mae", m.MAE)
		if doSeed {
			return nil
		}
	}

	if doTrain {
		m, err := pricePredictor.Retrain(ctx)
		if err != nil {
			return fmt.Errorf("training price model: %w", err)
		}
		slog.Info("price model trained",
			"path", cfg.PriceModelPath, "rows", m.TrainingRows, "mae", m.MAE)
		return nil
	}

	if err := pricePredictor.LoadModel(); err != nil {
		if !cfg.AllowDegraded {
			return fmt.Errorf("loading price model (set RELIANT_ALLOW_DEGRADED=true to start without one): %w", err)
		}
		slog.Warn("starting without a price model; predictions answer 503 until a retrain",
			"path", cfg.PriceModelPath, "error", err)
	}

	sessionManager := session.New(db, cfg.IsDevelopment())

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	summaries := summary.New(summary.Config{
		APIKey:  cfg.SummaryAPIKey,
		BaseURL: cfg.SummaryBaseURL,
		Model:   cfg.SummaryModel,
	})
	if summaries.Enabled() {
		slog.Info("generative summaries enabled", "model", cfg.SummaryModel)
	} else {
		slog.Info("generative summaries disabled, using template fallback")
	}

	var retrainScheduler *scheduler.Scheduler
	if cfg.RetrainCron != "" {
		retrainScheduler = scheduler.New(pricePredictor, cfg.RetrainCron, logger)
		if err := retrainScheduler.Start(); err != nil {
			return fmt.Errorf("starting retrain scheduler: %w", err)
		}
		defer retrainScheduler.Stop()
	}

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())

	authHandler := handler.NewAuthHandler(db, renderer, sessionManager, loginProtection)
	dashboardHandler := handler.NewDashboardHandler(db, renderer)
	customerHandler := handler.NewCustomerHandler(db, renderer)
	quotationHandler := handler.NewQuotationHandler(db, renderer, summaries)
	apiHandler := handler.NewAPIHandler(db, pricePredictor, summaries)
	segmentHandler := handler.NewSegmentHandler(db, renderer)
	exportHandler := handler.NewExportHandler(db, renderer)
	pdfHandler := handler.NewPDFHandler(db, renderer)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.RequestPath)
	r.Use(sessionManager.LoadAndSave)

	csrfMiddleware := middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment()))

	// Static assets
	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Public routes
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Get(handler.RouteRoot, func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, handler.RouteLogin, http.StatusSeeOther)
		})
		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.With(loginProtection.Middleware()).Post(handler.RouteLogin, authHandler.Login)
		r.Post(handler.RouteLogout, authHandler.Logout)
	})

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(middleware.Auth(sessionManager))
		r.Use(middleware.LoadUser(sessionManager, db))

		r.Get(handler.RouteDashboard, dashboardHandler.Show)

		r.Get(handler.RouteCustomers, customerHandler.List)
		r.Get(handler.RouteCustomers+handler.RouteParamID, customerHandler.Detail)

		r.Get(handler.RouteQuotations, quotationHandler.List)
		r.Get(handler.RouteQuotations+handler.RouteSuffixNew, quotationHandler.New)
		r.Post(handler.RouteQuotations, quotationHandler.Create)
		r.Get(handler.RouteQuotations+handler.RouteParamID, quotationHandler.Detail)
		r.Post(handler.RouteQuotations+handler.RouteParamID+"/status", quotationHandler.UpdateStatus)
		r.Get(handler.RouteQuotations+handler.RouteSuffixPDF, pdfHandler.Quotation)

		r.Post(handler.RouteAPIPredictPrice, apiHandler.PredictPrice)
		r.Post(handler.RouteAPIGenerateSummary, apiHandler.GenerateSummary)

		// Manager-only routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireManager())

			r.Get(handler.RouteCustomers+handler.RouteSuffixNew, customerHandler.New)
			r.Post(handler.RouteCustomers, customerHandler.Create)
			r.Get(handler.RouteCustomers+handler.RouteSuffixEdit, customerHandler.Edit)
			r.Post(handler.RouteCustomers+handler.RouteSuffixEdit, customerHandler.Update)

			r.Get(handler.RouteSegments, segmentHandler.Show)
			r.Get(handler.RouteExportQuotations, exportHandler.Quotations)
		})
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

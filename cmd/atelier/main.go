// Copyright (c) 2026 Camille Morel
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

	"github.com/cmorel/atelier-go/internal/config"
	"github.com/cmorel/atelier-go/internal/handler"
	"github.com/cmorel/atelier-go/internal/logging"
	"github.com/cmorel/atelier-go/internal/mailer"
	"github.com/cmorel/atelier-go/internal/middleware"
	"github.com/cmorel/atelier-go/internal/render"
	"github.com/cmorel/atelier-go/internal/scheduler"
	"github.com/cmorel/atelier-go/internal/service"
	"github.com/cmorel/atelier-go/internal/session"
	"github.com/cmorel/atelier-go/internal/store"
	"github.com/cmorel/atelier-go/internal/transfer"
	"github.com/cmorel/atelier-go/internal/version"
	"github.com/cmorel/atelier-go/web"
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

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "atelier - portfolio site for a photography studio\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ATELIER_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ATELIER_DB_PATH           SQLite database path (default: ./data/atelier.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ATELIER_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ATELIER_UPLOADS_DIR       Uploaded photo directory (default: ./public/uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ATELIER_ENV               Environment: development|production (default: development)\n")
	}

	flag.Parse()

	if *showVersion {
		_, _ = fmt.Printf("atelier %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := &version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
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
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
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

	// Upgrade logger to also write WARN and ERROR logs to the events table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	ctx := context.Background()
	if err := store.Seed(ctx, db, store.SeedOptions{
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPassword,
	}); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

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
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	uploader, err := service.NewUploader(cfg.UploadsDir)
	if err != nil {
		return fmt.Errorf("initializing uploads directory: %w", err)
	}

	sender := mailer.New(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	if sender.IsConfigured() {
		slog.Info("contact notifications enabled", "smtp_host", cfg.SMTPHost)
	} else {
		slog.Info("contact notifications disabled, messages are only stored")
	}
	messageService := service.NewMessageService(db, sender)

	sched := scheduler.New(db, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	loginProtection := middleware.NewLoginProtection(middleware.LoginProtectionConfig{})

	exporter := transfer.NewExporter(db, logger, cfg.UploadsDir)
	importer := transfer.NewImporter(db, logger, cfg.UploadsDir)

	authHandler := handler.NewAuthHandler(db, renderer, sessionManager, loginProtection)
	frontendHandler := handler.NewFrontendHandler(db, renderer, uploader, messageService)
	adminHandler := handler.NewAdminHandler(db, renderer, uploader, messageService)
	photoHandler := handler.NewPhotoHandler(db, renderer, uploader, cfg.MaxUploadBytes())
	categoryHandler := handler.NewCategoryHandler(db, renderer, uploader, cfg.MaxUploadBytes())
	experienceHandler := handler.NewExperienceHandler(db, renderer, uploader, cfg.MaxUploadBytes())
	insightHandler := handler.NewInsightHandler(db, renderer)
	settingsHandler := handler.NewSettingsHandler(db, renderer)
	messageHandler := handler.NewMessageHandler(renderer, messageService)
	importExportHandler := handler.NewImportExportHandler(renderer, exporter, importer, cfg.MaxUploadBytes())

	csrfMiddleware := middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment()))

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(sessionManager.LoadAndSave)

	// Public site
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Get(handler.RouteRoot, frontendHandler.Home)
		r.Get(handler.RouteGallery, frontendHandler.Gallery)
		r.Get(handler.RouteGallery+"/{slug}", frontendHandler.Category)
		r.Get(handler.RouteContact, frontendHandler.ContactForm)
		r.Post(handler.RouteContact, frontendHandler.ContactSubmit)
	})

	// Authentication
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Get("/admin/login", authHandler.LoginForm)
		r.With(loginProtection.Middleware()).Post("/admin/login", authHandler.Login)
	})

	// Admin dashboard, requires a session
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(middleware.Auth(sessionManager))
		r.Use(middleware.LoadUser(sessionManager, db))

		r.Get("/admin", adminHandler.Dashboard)
		r.Post("/admin/logout", authHandler.Logout)

		r.Post("/admin/photos", photoHandler.Create)
		r.Post("/admin/photos/{id}", photoHandler.Update)
		r.Post("/admin/photos/{id}/delete", photoHandler.Delete)

		r.Post("/admin/categories", categoryHandler.Create)
		r.Post("/admin/categories/{id}", categoryHandler.Update)
		r.Post("/admin/categories/{id}/delete", categoryHandler.Delete)

		r.Post("/admin/experiences", experienceHandler.Create)
		r.Post("/admin/experiences/{id}", experienceHandler.Update)
		r.Post("/admin/experiences/{id}/delete", experienceHandler.Delete)

		r.Post("/admin/studio-insights", insightHandler.Create)
		r.Post("/admin/studio-insights/{id}", insightHandler.Update)
		r.Post("/admin/studio-insights/{id}/delete", insightHandler.Delete)

		r.Post("/admin/hero-intro", settingsHandler.UpdateHeroIntro)
		r.Post("/admin/contact-email", settingsHandler.UpdateContactEmail)

		r.Post("/admin/messages/{id}/delete", messageHandler.Delete)

		r.Get("/admin/export", importExportHandler.Export)
		r.Post("/admin/import", importExportHandler.Import)
	})

	// Static assets: cache for 1 year
	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	staticHandler := middleware.StaticCache(31536000)(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	r.Handle("/static/*", staticHandler)

	// Uploaded photos: cache for 1 week
	uploadsHandler := middleware.StaticCache(604800)(http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))
	r.Handle("/uploads/*", uploadsHandler)

	r.NotFound(frontendHandler.NotFound)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      120 * time.Second, // backup downloads can be large
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server",
			"addr", cfg.ServerAddr(),
			"env", cfg.Env,
			"version", versionInfo.Version)
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

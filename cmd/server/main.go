// Package main is the entry point for the Appointment Tracker server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/appointment-tracker/backend/internal/api"
	"github.com/appointment-tracker/backend/internal/calendar"
	"github.com/appointment-tracker/backend/internal/config"
	"github.com/appointment-tracker/backend/internal/logger"
	"github.com/appointment-tracker/backend/internal/scheduler"
	"github.com/appointment-tracker/backend/internal/storage"
	"github.com/appointment-tracker/backend/internal/store"
	"github.com/appointment-tracker/backend/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
// Defaults to "dev" when not provided.
var version = "dev"

func main() {
	// Load .env first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	// Command-line flags override environment configuration
	addr := flag.String("addr", "", "HTTP server address")
	dataDir := flag.String("data", "", "Data directory for SQLite database")
	staticDir := flag.String("static", "", "Directory for static frontend files")
	healthCheck := flag.Bool("health-check", false, "Run health check and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.HTTPAddr = *addr
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *staticDir != "" {
		cfg.StaticDir = *staticDir
	}

	// Health check mode for Docker HEALTHCHECK
	if *healthCheck {
		if err := runHealthCheck(cfg.HTTPAddr); err != nil {
			fmt.Fprintf(os.Stderr, "health check failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Allow overriding version via environment (e.g., injected by container build/runtime)
	if envVer := os.Getenv("VERSION"); envVer != "" {
		version = envVer
	}

	log := logger.New("appointment-tracker", cfg.LogLevel)
	log.Info().Str("version", version).Msg("starting appointment tracker")

	// Initialize database
	dbPath := cfg.DataDir + "/appointment-tracker.db"
	db, err := storage.NewDB(dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := storage.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Str("path", dbPath).Msg("database ready")

	// Initialize WebSocket hub
	hub := websocket.NewHub(log)
	go hub.Run()

	// Application state store with write-through persistence and live
	// change broadcasting
	st := store.New(log)
	gateway := storage.NewLocalStore(db)
	store.NewPersister(st, gateway, log)

	broadcaster := websocket.NewEventBroadcaster(hub, log)
	st.Subscribe(broadcaster.HandleStoreChange)

	// Load persisted state
	store.Bootstrap(context.Background(), st, gateway, log)

	// Calendar gateway
	var cal calendar.Gateway
	switch cfg.CalendarProvider {
	case config.ProviderGoogle:
		cal = calendar.NewGoogle(calendar.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			TokenFile:    cfg.GoogleTokenFile,
			CalendarID:   cfg.GoogleCalendarID,
		}, log)
	default:
		cal = calendar.NewMock(calendar.MockConfig{
			AuthFailureRate: cfg.MockAuthFailureRate,
			APIFailureRate:  cfg.MockAPIFailureRate,
			Latency:         cfg.MockLatency,
		}, log, nil)
	}
	log.Info().Str("provider", cfg.CalendarProvider).Msg("calendar gateway ready")

	// Past-appointment watcher
	watcher := scheduler.NewPastWatcher(st, broadcaster, log)
	watcher.Start()

	// Initialize HTTP router
	router := api.NewRouter(st, db, hub, cal, cfg.StaticDir, log)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("server listening")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	watcher.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("server stopped")
}

// runHealthCheck performs a health check against the running server.
func runHealthCheck(addr string) error {
	url := "http://localhost" + addr + "/api/health"
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return http.ErrAbortHandler
	}
	return nil
}

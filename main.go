// main.go - Entry point and dependency injection
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sstent/ridecoach/internal/config"
	"github.com/sstent/ridecoach/internal/database"
	"github.com/sstent/ridecoach/internal/sync"
	"github.com/sstent/ridecoach/internal/web"
)

type App struct {
	cfg         config.Config
	db          *database.SQLiteDB
	cron        *cron.Cron
	server      *http.Server
	shutdown    chan os.Signal
	syncService *sync.SyncService
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	app := &App{
		cfg:      cfg,
		shutdown: make(chan os.Signal, 1),
	}

	// Initialize components
	if err := app.init(); err != nil {
		log.Fatal("Failed to initialize app:", err)
	}

	// Start services
	if err := app.start(); err != nil {
		log.Fatal("Failed to start app:", err)
	}

	// Wait for shutdown signal
	signal.Notify(app.shutdown, os.Interrupt, syscall.SIGTERM)
	<-app.shutdown

	// Graceful shutdown
	app.stop()
}

func (app *App) init() error {
	var err error

	app.db, err = initDatabase(app.cfg.DBPath)
	if err != nil {
		return err
	}

	app.syncService = sync.NewSyncService(app.db, app.cfg.Thresholds(), app.cfg.InboxDir, app.cfg.SyncUserID)

	app.cron = cron.New()

	webHandler := web.NewWebHandler(app.syncService)
	app.server = &http.Server{
		Addr:              app.cfg.HTTPAddr,
		Handler:           web.NewRouter(webHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return nil
}

func (app *App) start() error {
	_, err := app.cron.AddFunc(app.cfg.SyncSchedule, func() {
		log.Println("Starting scheduled sync...")
		if err := app.syncService.Sync(context.Background()); err != nil {
			log.Printf("Sync failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", app.cfg.SyncSchedule, err)
	}
	app.cron.Start()

	go func() {
		log.Printf("Server starting on %s", app.cfg.HTTPAddr)
		if err := app.server.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	return nil
}

func (app *App) stop() {
	log.Println("Shutting down...")

	// wait for a running sync to finish
	<-app.cron.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	if app.db != nil {
		app.db.Close()
	}

	log.Println("Shutdown complete")
}

func initDatabase(dbPath string) (*database.SQLiteDB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := database.NewSQLiteDB(dbPath)
	if err != nil {
		return nil, err
	}

	log.Printf("Database ready at %s", dbPath)
	return db, nil
}

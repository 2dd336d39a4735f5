package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newkimjiwon/freshbox/app/api"
	"github.com/newkimjiwon/freshbox/app/cfg"
	"github.com/newkimjiwon/freshbox/app/database"
	"github.com/newkimjiwon/freshbox/app/inventory"
	"github.com/newkimjiwon/freshbox/app/notify"
	"github.com/newkimjiwon/freshbox/app/prefs"
	"github.com/newkimjiwon/freshbox/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting FreshBox server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	foodRepo := database.NewFoodRepository(db)
	categoryRepo := database.NewCategoryRepository(db)
	repo := inventory.NewRepository(foodRepo, categoryRepo)

	seed, err := inventory.LoadCategorySeed(appCfg.CategoriesFile)
	if err != nil {
		slog.Error("Failed to load category seed", "file", appCfg.CategoriesFile, "error", err)
		os.Exit(1)
	}

	// One view-state per screen scope so the home screen and the full
	// list keep independent filters.
	homeState := inventory.NewListViewState("home", foodRepo, appCfg.ExpiringSoonDays)
	allState := inventory.NewListViewState("all", foodRepo, appCfg.ExpiringSoonDays)
	repo.OnItemsChanged(homeState.SetItems)
	repo.OnItemsChanged(allState.SetItems)
	repo.OnCategoriesChanged(homeState.SetCategories)
	repo.OnCategoriesChanged(allState.SetCategories)
	repo.Refresh()

	prefsStore := prefs.NewStore(appCfg.PrefsFile)
	slog.Info("Preferences loaded", "file", appCfg.PrefsFile, "theme", prefsStore.Theme())

	notifier := notify.NewEmailNotifier()
	if err := notifier.EnsureChannel(); err != nil {
		slog.Warn("Failed to prepare notification channel", "error", err)
	}

	scheduler := tasks.NewScheduler()
	scheduler.RegisterPeriodic("expiry_check",
		time.Duration(appCfg.ExpiryCheckInterval)*time.Minute,
		func() tasks.TaskInterface {
			return tasks.NewExpiryCheckTask(foodRepo, notifier)
		})
	if err := scheduler.EnqueueTask(tasks.NewSeedCategoriesTask(repo, seed)); err != nil {
		slog.Warn("Failed to enqueue category seeding", "error", err)
	}
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background scheduler started", "workers", appCfg.WorkerCount, "expiry_check_interval_minutes", appCfg.ExpiryCheckInterval)

	handler := api.NewHandler(repo, homeState, allState, prefsStore, scheduler, appCfg.ExpiringSoonDays)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}

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

	"github.com/CyberPrince-glitch/TechPlus/app/api"
	"github.com/CyberPrince-glitch/TechPlus/app/cfg"
	"github.com/CyberPrince-glitch/TechPlus/app/config"
	"github.com/CyberPrince-glitch/TechPlus/app/database"
	"github.com/CyberPrince-glitch/TechPlus/app/feed"
	"github.com/CyberPrince-glitch/TechPlus/app/generation"
	"github.com/CyberPrince-glitch/TechPlus/app/llm"
	"github.com/CyberPrince-glitch/TechPlus/app/quota"
	"github.com/CyberPrince-glitch/TechPlus/app/tasks"
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

	setupLogger(appCfg.Debug)

	slog.Info("Starting TechPlus server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	feedRepo := database.NewFeedRepository(db)
	articleRepo := database.NewArticleRepository(db)
	keyRepo := database.NewKeyRepository(db)
	contentRepo := database.NewContentRepository(db)

	registerFeeds(feedRepo, appCfg.FeedsDir)

	httpClient := &http.Client{Timeout: 30 * time.Second}
	fetcher := feed.NewFetcher(httpClient, appCfg.UserAgent)
	ingester := feed.NewIngester(articleRepo, appCfg.DedupSimilarity,
		time.Duration(appCfg.DedupWindowHours)*time.Hour)

	ledger := quota.NewLedger(keyRepo, time.Now, appCfg.Location())

	providerTimeout := time.Duration(appCfg.ProviderTimeout) * time.Second
	completerFactory := func(key database.ProviderKey) (llm.Completer, error) {
		return llm.NewCompleter(key, &http.Client{Timeout: providerTimeout})
	}
	llmClient := llm.NewClient(keyRepo, ledger, completerFactory, providerTimeout)

	pipeline := generation.NewPipeline(articleRepo, contentRepo, llmClient)

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount,
		"interval", (time.Duration(appCfg.SchedulerInterval) * time.Second).String())
	scheduler := tasks.NewScheduler(feedRepo, fetcher, ingester, ledger)
	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(feedRepo, articleRepo, keyRepo, contentRepo,
		pipeline, llmClient, scheduler)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port,
			"api_auth", appCfg.APIAccessKey != "")
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

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// registerFeeds loads source definitions from the feeds directory (falling
// back to the built-in defaults) and upserts them so collection can start
// without any manual setup.
func registerFeeds(feedRepo database.FeedRepository, feedsDir string) {
	loader := config.NewLoader(feedsDir)
	sources, err := loader.LoadAll()
	if err != nil {
		slog.Error("Failed to load feed sources", "dir", feedsDir, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	registered := 0
	for _, source := range sources {
		if _, err := feedRepo.UpsertFeed(ctx, source.Title, source.URL, source.Category, source.Language); err != nil {
			slog.Warn("Failed to register feed source", "title", source.Title, "url", source.URL, "error", err)
			continue
		}
		registered++
	}
	slog.Info("Registered feed sources", "registered", registered, "total", len(sources))
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/xmlreport/internal/api"
	"github.com/dgallion1/xmlreport/internal/config"
	"github.com/dgallion1/xmlreport/internal/pipeline"
	"github.com/dgallion1/xmlreport/internal/rules"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load rules; degraded resources are logged and listed at /api/rules.
	store := rules.Open(rules.Options{
		Dir:                cfg.RulesDir,
		FragmentPrecedence: cfg.Precedence(),
		Logger:             log,
	})
	for _, st := range store.Diagnostics() {
		log.Info("rules resource", "resource", st.Resource, "state", st.State, "path", st.Path)
	}

	stats := pipeline.NewConversionStats(cfg.StatsWindow)
	conv := pipeline.NewConverter(store, pipeline.ConverterOptions{
		DefaultTitle:  cfg.ReportTitle,
		DefaultFormat: cfg.DefaultFormat,
		Render:        cfg.RenderOptions(),
		Stats:         stats,
		Logger:        log,
	})

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, conv, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, store, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
	}()

	log.Info("starting xmlreport", "port", cfg.Port, "rules_dir", cfg.RulesDir, "workers", cfg.WorkerCount)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

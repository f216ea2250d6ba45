package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"netscan/internal/adapter"
	"netscan/internal/config"
	"netscan/internal/handler"
	"netscan/internal/hub"
	"netscan/internal/metrics"
	"netscan/internal/repository/sqlite"
	"netscan/internal/service"
	"netscan/internal/watcher"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to config file (default: search standard locations)")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	cfg, loadedFrom, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	setupLogging(cfg.Log)
	if loadedFrom != "" {
		log.Info("Loaded config", "path", loadedFrom)
	} else {
		log.Info("No config file found, using defaults")
	}

	repo, err := sqlite.New(cfg.Database.Path, sqlite.WithSeedPresets(cfg.Presets))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repo.Close()
	log.Info("Database opened", "path", cfg.Database.Path)

	probe := adapter.NewNmapProbe(
		adapter.WithBinaryPath(cfg.Probe.Binary),
		adapter.WithTimeout(cfg.ProbeTimeout()),
		adapter.WithDefaultPorts(cfg.Probe.DefaultPorts),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if probe.Available(ctx) {
		log.Info("Probe ready", "binary", cfg.Probe.Binary, "timeout", cfg.ProbeTimeout())
	} else {
		log.Warn("nmap binary not found; scans will fail until it is installed", "binary", cfg.Probe.Binary)
	}

	m := metrics.New()
	eventBus := service.NewEventBus()
	sseHub := hub.New()

	h := handler.New(
		service.NewScanService(probe, repo, eventBus, m),
		service.NewAliasService(repo, eventBus, m),
		service.NewPresetService(repo, eventBus, probe.DefaultPorts()),
	)
	h.SetScanRate(cfg.Server.ScansPerMinute)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler.NewRouter(h, sseHub, m.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
		// No write timeout: scans block for up to the probe timeout and
		// /events streams stay open.
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sseHub.Run(gctx)
		return nil
	})

	// Connect event bus to SSE hub
	events := make(chan service.Event, 100)
	eventBus.Subscribe(events)
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case event := <-events:
				sseHub.Broadcast(string(event.Type), event.Payload)
			}
		}
	})

	g.Go(func() error {
		log.Info("Server listening", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if loadedFrom != "" {
		w := watcher.New(loadedFrom, func() { reloadLogging(loadedFrom) })
		g.Go(func() error {
			if err := w.Watch(gctx); err != nil {
				log.Warn("Config watch disabled", "path", loadedFrom, "error", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Server stopped")
	return nil
}

func setupLogging(cfg config.LogConfig) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetReportTimestamp(true)
	if cfg.Format == "json" {
		log.SetFormatter(log.JSONFormatter)
	} else {
		log.SetFormatter(log.TextFormatter)
	}
}

// reloadLogging applies log settings from an edited config file.
// Other keys need a restart.
func reloadLogging(path string) {
	cfg, _, err := config.LoadFromPath(path)
	if err == nil {
		err = cfg.ApplyEnv()
	}
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		log.Warn("Ignoring config change", "path", path, "error", err)
		return
	}

	setupLogging(cfg.Log)
	log.Info("Reloaded log settings", "level", cfg.Log.Level, "format", cfg.Log.Format)
}

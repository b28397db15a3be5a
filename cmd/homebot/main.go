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

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/homebot/internal/bot"
	"git.home.luguber.info/inful/homebot/internal/config"
	"git.home.luguber.info/inful/homebot/internal/events"
	"git.home.luguber.info/inful/homebot/internal/feedlog"
	"git.home.luguber.info/inful/homebot/internal/logfields"
	"git.home.luguber.info/inful/homebot/internal/metrics"
	"git.home.luguber.info/inful/homebot/internal/presence"
	"git.home.luguber.info/inful/homebot/internal/scheduler"
	"git.home.luguber.info/inful/homebot/internal/state"
	"git.home.luguber.info/inful/homebot/internal/telegram"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Serve struct{} `cmd:"" default:"1" help:"Run the bot"`

	Accounts struct{} `cmd:"" help:"List household accounts from the store"`
}

func main() {
	ctx := kong.Parse(&CLI)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg)

	switch ctx.Command() {
	case "serve", "":
		if err := runServe(cfg); err != nil {
			slog.Error("Bot failed", logfields.Error(err))
			os.Exit(1)
		}
	case "accounts":
		if err := runAccounts(cfg); err != nil {
			slog.Error("Listing accounts failed", logfields.Error(err))
			os.Exit(1)
		}
	}
}

func setupLogging(cfg *config.Config) {
	level := slog.LevelInfo
	if CLI.Verbose || cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}

func runServe(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	loc := cfg.Location()

	// Storage is optional: without it the bot runs memory-only and
	// persistence-dependent commands degrade to a user-visible notice.
	var store feedlog.Store
	if cfg.HasDatabase() {
		sqlStore, err := feedlog.NewSQLiteStore(cfg.DatabasePath)
		if err != nil {
			slog.Warn("Failed to open feeding log, degrading to memory-only", logfields.Error(err))
		} else {
			defer func() { _ = sqlStore.Close() }()
			store = sqlStore
			slog.Info("Feeding log opened", "path", cfg.DatabasePath)
		}
	} else {
		slog.Warn("No database configured, running memory-only")
	}

	recorder, metricsSrv := setupMetrics(cfg)

	publisher, err := setupPublisher(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = publisher.Close() }()

	cache := state.NewDailyCache(store, cfg.Pets, loc, cfg.Rollover)
	tracker := presence.NewTracker()
	service := bot.NewService(cache, tracker, loc,
		bot.WithStore(store),
		bot.WithRecorder(recorder),
		bot.WithPublisher(publisher),
	)

	// Recover today's projection before accepting any command.
	if err := service.Rebuild(ctx); err != nil {
		return fmt.Errorf("failed to rebuild daily state: %w", err)
	}

	sched, err := scheduler.New(loc)
	if err != nil {
		return err
	}
	if _, err := sched.ScheduleDailyAt("rollover", 0, 0, func() {
		rolloverCtx, rolloverCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer rolloverCancel()
		service.Rollover(rolloverCtx)
	}); err != nil {
		return err
	}
	sched.Start()
	defer func() { _ = sched.Stop() }()

	watcher, err := config.NewWatcher(CLI.Config, func(next *config.Config) {
		service.SetRoster(next.Pets)
		reloadCtx, reloadCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer reloadCancel()
		if err := service.Rebuild(reloadCtx); err != nil {
			slog.Error("Projection rebuild after reload failed", logfields.Error(err))
		}
	})
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = watcher.Stop(context.Background()) }()

	if metricsSrv != nil {
		go func() {
			slog.Info("Serving metrics", "listen", cfg.Metrics.Listen)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("Metrics server failed", logfields.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}()
	}

	transport, err := telegram.New(cfg.Token, service)
	if err != nil {
		return err
	}

	slog.Info("Bot started, waiting for shutdown signal...")
	if err := transport.Run(ctx); err != nil && err != context.Canceled {
		return err
	}

	slog.Info("Bot stopped")
	return nil
}

func setupMetrics(cfg *config.Config) (metrics.Recorder, *http.Server) {
	if cfg.Metrics.Listen == "" {
		return metrics.NoopRecorder{}, nil
	}
	registry := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(registry))
	return recorder, &http.Server{Addr: cfg.Metrics.Listen, Handler: mux}
}

func setupPublisher(cfg *config.Config) (events.Publisher, error) {
	if cfg.Events.NATSURL == "" {
		return events.NoopPublisher{}, nil
	}
	publisher, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to set up event publisher: %w", err)
	}
	return publisher, nil
}

func runAccounts(cfg *config.Config) error {
	if !cfg.HasDatabase() {
		return fmt.Errorf("no database configured (set %s)", config.EnvDatabase)
	}

	store, err := feedlog.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	accounts, err := store.ListAccounts(ctx)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		flags := ""
		if a.Admin {
			flags += " admin"
		}
		if !a.Active {
			flags += " inactive"
		}
		fmt.Printf("%d\t@%s\t%s\t%s%s\n", a.ID, a.Username, a.DisplayName, a.Gender, flags)
	}
	return nil
}

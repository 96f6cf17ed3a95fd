package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/clive/todo-tui/internal/api"
	"github.com/clive/todo-tui/internal/auth"
	"github.com/clive/todo-tui/internal/config"
	"github.com/clive/todo-tui/internal/kv"
	"github.com/clive/todo-tui/internal/logging"
	"github.com/clive/todo-tui/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a config file (default: .todo-tui/config.yaml, then ~/.todo-tui/config.yaml)")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var extra []slog.Handler
	sink := logging.NewSink(slog.LevelDebug)
	if cfg.Debug {
		extra = append(extra, sink)
	}
	logger, logCloser, err := logging.Open(cfg.LogLevel, cfg.LogPath, extra...)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	ctx := context.Background()
	backend, err := kv.Open(ctx, cfg.Storage)
	if err != nil {
		// Without storage the client still runs; every protected page
		// redirects to login and sign-in reports the failure.
		logger.Error("open session storage", "driver", cfg.Storage.Driver, "error", err)
		backend = nil
	} else {
		defer backend.Close()
	}

	router := tui.NewRouter(auth.HomePath)
	session := auth.NewManager(auth.NewStore(backend), router, logger.With("component", "auth"))

	client, err := api.NewClient(api.Options{
		BaseURL:   cfg.APIURL,
		Transport: auth.NewTransport(nil, session),
		Timeout:   cfg.RequestTimeout,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
		Logger:    logger.With("component", "api"),
	})
	if err != nil {
		return fmt.Errorf("create api client: %w", err)
	}

	logger.Info("starting",
		"api_url", client.BaseURL(),
		"storage", cfg.Storage.Driver,
		"guard_interval", cfg.GuardInterval.String(),
	)

	root := tui.NewRootModel(&tui.Deps{
		Client:        client,
		Session:       session,
		Router:        router,
		Logger:        logger.With("component", "tui"),
		GuardInterval: cfg.GuardInterval,
		Debug:         cfg.Debug,
	})

	p := tea.NewProgram(root, tea.WithAltScreen())
	router.Attach(p.Send)
	sink.Attach(tui.DebugSender(p.Send))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}

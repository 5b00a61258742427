// Package main provides the playback daemon entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/soundbridge/soundbridge/internal/api/remote"
	"github.com/soundbridge/soundbridge/internal/app/playback"
	"github.com/soundbridge/soundbridge/internal/app/session"
	"github.com/soundbridge/soundbridge/internal/engine"
	"github.com/soundbridge/soundbridge/internal/engine/memengine"
	"github.com/soundbridge/soundbridge/internal/infra/catalog"
	"github.com/soundbridge/soundbridge/internal/infra/config"
	"github.com/soundbridge/soundbridge/internal/infra/logger"
)

var (
	app        = kingpin.New("playerd", "soundbridge playback daemon")
	configPath = app.Flag("config", "Path to config file").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	loggerConfig := logger.Config{Output: "stdout", Level: "info"}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		zlog.Info().Msgf("Loading config from %s", *configPath)
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.Default()
	}
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Daemon error: %v", err)
		os.Exit(1)
	}
}

// run executes the main daemon logic.
func run(cfg *config.Config) error {
	ctx := context.Background()

	// The in-memory engine is the headless default; a native engine
	// plugs in behind the same interface.
	adapter := engine.NewAdapter(memengine.New(), cfg.EngineOptions())

	orch := playback.New(adapter, playback.Config{
		PreviousRestartThreshold: cfg.PreviousRestartThreshold(),
	})

	// System-level remote signals flow back into the orchestrator.
	disposeRemote := engine.BindRemote(adapter, orch)
	defer disposeRemote()

	var resolver session.Resolver
	if cfg.Catalog.Enabled {
		client, err := catalog.New(ctx, catalog.Config{
			ClientID:     cfg.Catalog.ClientID,
			ClientSecret: cfg.Catalog.ClientSecret,
			RefreshToken: cfg.Catalog.RefreshToken,
			Market:       cfg.Catalog.Market,
		})
		if err != nil {
			return fmt.Errorf("failed to create catalog client: %w", err)
		}
		resolver = client
	}

	sess := session.New(adapter, orch, resolver)
	sess.Start(ctx)
	defer sess.Close()
	session.Install(sess)

	zlog.Info().Msgf("Session started: id=%s", sess.ID())

	service := remote.NewService(sess, orch)
	path, handler := remote.NewHandler(service)

	mux := http.NewServeMux()
	mux.Handle(path, handler)

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: h2c.NewHandler(mux, &http2.Server{}),
	}

	serverErrCh := make(chan error, 1)
	go func() {
		zlog.Info().Msgf("Starting remote API: addr=%s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
		if err := sess.Stop(ctx); err != nil {
			zlog.Error().Msgf("Failed to stop playback: %v", err)
		}
	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/vango-dev/vango-history/internal/config"
	"github.com/vango-dev/vango-history/pkg/history"
	"github.com/vango-dev/vango-history/pkg/server"
	"github.com/vango-dev/vango-history/pkg/telemetry"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		port       int
		host       string
		capacity   int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve histories over HTTP",
		Long: `Serve named string histories over HTTP and WebSocket.

Configuration is read from history.json in the working directory, or
from the file given with --config. Flags override file values.

Examples:
  vango-history serve
  vango-history serve --port=8080 --capacity=50
  vango-history serve --config=./deploy/history.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("capacity") {
				cfg.Capacity = capacity
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to history.json")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from history.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from history.json)")
	cmd.Flags().IntVar(&capacity, "capacity", history.DefaultCapacity, "Values kept per history")

	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.LoadOrDefault(dir)
}

// newLogger builds the process logger from cfg.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	shutdownTracing, err := setupTracing(os.Stderr, cfg.Tracing.Enabled, cfg.Tracing.TracerName)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("flush traces", "error", err)
		}
	}()

	shutdownTimeout, err := time.ParseDuration(cfg.Server.ShutdownTimeout)
	if err != nil {
		shutdownTimeout = 5 * time.Second
	}

	historyOpts := []history.Option{
		history.WithCapacity(cfg.Capacity),
		history.WithLogger(logger),
	}

	srvConfig := server.Config{
		Logger:  logger,
		Tracing: cfg.Tracing.Enabled,
		TracingOptions: []telemetry.TracingOption{
			telemetry.WithTracerName(cfg.Tracing.TracerName),
			telemetry.WithRequestFilter(func(r *http.Request) bool {
				return r.URL.Path != cfg.Metrics.Path
			}),
		},
	}

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		m := telemetry.Metrics(
			telemetry.WithRegistry(reg),
			telemetry.WithNamespace(cfg.Metrics.Namespace),
		)
		historyOpts = append(historyOpts, history.WithObserver(m))
		srvConfig.MetricsPath = cfg.Metrics.Path
		srvConfig.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}
	srvConfig.HistoryOptions = historyOpts

	srv, err := server.New(srvConfig)
	if err != nil {
		return err
	}
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              cfg.Address(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	success("Serving histories on http://%s", cfg.Address())
	info("capacity %d per history", cfg.Capacity)
	if cfg.Metrics.Enabled {
		info("metrics at %s", cfg.Metrics.Path)
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/movieflair/movieflair"
	"github.com/movieflair/movieflair/internal/logging"
)

const shutdownTimeout = 15 * time.Second

func serveCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the server",
		Long: `Start the HTTP server.

In development the shell and the application tree are reloaded on every
change and open pages refresh themselves. In production the client build
is read once at startup; a missing build stops the server from starting.

Examples:
  movieflair serve
  movieflair serve --port=8080
  APP_ENV=production movieflair serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := movieflair.Build(ctx, cfg, movieflair.BuildOptions{Logger: logger})
			if err != nil {
				return err
			}
			defer rt.Close()

			ln, err := net.Listen("tcp", cfg.Address())
			if err != nil {
				return err
			}
			logger.Info("listening", "addr", ln.Addr().String(), "mode", cfg.ModeValue())
			return runServer(ctx, rt, ln, logger)
		},
	}
}

// runServer serves rt on ln until ctx is done, then shuts down gracefully.
func runServer(ctx context.Context, rt *movieflair.Runtime, ln net.Listener, logger *slog.Logger) error {
	srv := &http.Server{
		Handler:           rt.App,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := rt.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("file watcher stopped", "error", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/trendscan/internal/config"
	"github.com/nao1215/trendscan/internal/httpapi"
	trendlog "github.com/nao1215/trendscan/internal/log"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server.
const shutdownTimeout = 30 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP trigger and the result page",
		Long: `Serve starts an HTTP server:

  GET /                 page with buttons to run the scraper and show the latest result
  GET /run-script       run the scraper, then return the latest stored record
  GET /get-latest-data  return the latest stored record
  GET /healthz          liveness probe
  GET /metrics          request and run counters

Concurrent /run-script requests share a single run.

Examples:
  trendscan serve
  trendscan serve --listen 0.0.0.0:8080 --json-log`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", config.DefaultListenAddr, "Address to listen on")
	cmd.Flags().Bool("json-log", false, "Write logs as JSON lines")

	return cmd
}

func applyServeFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("listen") {
		v, err := cmd.Flags().GetString("listen")
		if err != nil {
			return err
		}
		cfg.ListenAddr = v
	}
	return nil
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, applyServeFlags)
	if err != nil {
		return err
	}

	jsonLog, err := cmd.Flags().GetBool("json-log")
	if err != nil {
		return err
	}
	logger := trendlog.NewSecureLoggerWithLevel(os.Stderr, serveLevel(cfg.Verbose))
	if jsonLog {
		logger = trendlog.NewSecureJSONLogger(os.Stderr, cfg.Verbose)
	}
	slog.SetDefault(logger)

	if err := cfg.ValidateSecrets(); err != nil {
		// Runs will fail until the variables are set; reading still works.
		logger.Warn("credentials incomplete, /run-script will fail", "error", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	runner, cleanup, err := buildRunner(ctx, cfg, s, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	api := httpapi.NewServer(runner, s, httpapi.Options{Logger: logger})
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr)
		fmt.Fprintf(cmd.ErrOrStderr(), "Serving on http://%s\n", cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

// serveLevel logs every request and run unless verbose asks for more.
func serveLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

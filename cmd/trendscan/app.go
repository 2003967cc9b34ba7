package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/trendscan/internal/auth"
	"github.com/nao1215/trendscan/internal/browser"
	"github.com/nao1215/trendscan/internal/config"
	trendlog "github.com/nao1215/trendscan/internal/log"
	"github.com/nao1215/trendscan/internal/model"
	"github.com/nao1215/trendscan/internal/pipeline"
	"github.com/nao1215/trendscan/internal/proxy"
	"github.com/nao1215/trendscan/internal/store"
	"github.com/nao1215/trendscan/internal/trends"
)

// getenv is the environment lookup used for credentials.
var getenv = os.Getenv

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// configHook applies command-specific flags to the configuration.
type configHook func(cmd *cobra.Command, cfg *config.Config) error

// loadConfig builds the configuration from defaults, the config file, the
// environment, the output flag when the command has one and hooks.
func loadConfig(cmd *cobra.Command, hooks ...configHook) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(path, getenv)
	if err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	if f := cmd.Flags().Lookup("output"); f != nil && f.Changed {
		cfg.Output = config.OutputFormat(f.Value.String())
	}
	for _, hook := range hooks {
		if err := hook(cmd, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// addOutputFlag registers --output on a command that prints records.
func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", string(config.OutputTable),
		"Output format: table, json or markdown")
}

// newLogger returns the secret-masking stderr logger.
func newLogger(cfg *config.Config) *slog.Logger {
	return trendlog.NewSecureLogger(os.Stderr, cfg.Verbose)
}

// openStore opens the configured record store.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.RecordStore, error) {
	s, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("record store opened", "driver", cfg.StoreDriver)
	return s, nil
}

// buildRunner wires the scrape run. The returned cleanup stops the embedded
// Tor daemon when the fallback is enabled.
func buildRunner(ctx context.Context, cfg *config.Config, recorder pipeline.Recorder, logger *slog.Logger) (*pipeline.Runner, func(), error) {
	cleanup := func() {}

	endpoints, err := cfg.ProxyEndpoints()
	if err != nil {
		return nil, cleanup, err
	}
	rotator := proxy.NewRotator(endpoints...)
	logger.Debug("egress endpoints loaded", "count", rotator.Len())

	if cfg.TorFallback && cfg.Secrets.Complete() {
		torEndpoint, stop, err := startTorFallback(ctx, cfg, logger)
		if err != nil {
			logger.Warn("embedded Tor fallback unavailable", "error", err)
		} else {
			rotator = rotator.With(torEndpoint)
			cleanup = stop
		}
	}

	launcher := browser.NewChromeLauncher(
		browser.WithHeadless(cfg.Headless),
		browser.WithExecPath(cfg.ChromePath),
		browser.WithUserAgents(cfg.UserAgents),
		browser.WithProxyAuth(cfg.Secrets.Proxy),
		browser.WithLaunchTimeout(cfg.LaunchTimeout),
		browser.WithLauncherLogger(logger),
	)
	pacer := browser.NewPacer(cfg.MinDelay, cfg.MaxDelay, cfg.MinKeystroke, cfg.MaxKeystroke)
	snapshots := browser.NewSnapshotter(cfg.SnapshotDir, logger)

	authenticator := auth.New(auth.Targets{
		HomeURL:            cfg.HomeURL,
		LoginURL:           cfg.LoginURL,
		UsernameSelector:   cfg.UsernameSelector,
		PasswordSelector:   cfg.PasswordSelector,
		HomeMarkerSelector: cfg.HomeMarkerSelector,
	},
		auth.WithPacer(pacer),
		auth.WithSnapshotter(snapshots),
		auth.WithTimeouts(cfg.WaitTimeout, cfg.HomeTimeout),
		auth.WithLogger(logger),
	)

	extractor := trends.NewExtractor(cfg.TrendingURL, cfg.TrendSelector,
		trends.WithWaitTimeout(cfg.WaitTimeout),
		trends.WithMaxTrends(cfg.MaxTrends),
		trends.WithPacer(pacer),
		trends.WithSnapshotter(snapshots),
		trends.WithLogger(logger),
	)

	runner := pipeline.NewRunner(rotator, launcher, authenticator, extractor, recorder, cfg.Secrets,
		pipeline.WithAuthFailurePolicy(cfg.AuthFailure),
		pipeline.WithRunnerLogger(logger),
	)
	return runner, cleanup, nil
}

// startTorFallback boots the embedded Tor daemon and returns its endpoint.
func startTorFallback(ctx context.Context, cfg *config.Config, logger *slog.Logger) (model.ProxyEndpoint, func(), error) {
	tor := proxy.NewEmbeddedTor(proxy.WithStartupTimeout(cfg.TorStartupTimeout))

	logger.Info("starting embedded Tor daemon", "timeout", cfg.TorStartupTimeout)
	if err := tor.Start(ctx); err != nil {
		return model.ProxyEndpoint{}, nil, err
	}
	ep, err := tor.Endpoint()
	if err != nil {
		_ = tor.Stop()
		return model.ProxyEndpoint{}, nil, err
	}
	logger.Info("embedded Tor daemon ready", "endpoint", ep.String())

	return ep, func() {
		if err := tor.Stop(); err != nil {
			logger.Error("failed to stop embedded Tor", "error", err)
		}
	}, nil
}

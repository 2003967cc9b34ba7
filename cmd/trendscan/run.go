package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/trendscan/internal/config"
	"github.com/nao1215/trendscan/internal/report"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scrape the trending topics once and store the result",
		Long: `Run tries each configured egress proxy in order. For every proxy a fresh
browser is started, the account is logged in and the trending page is read.
The first proxy that yields at least one hashtag wins: its result is stored
and printed, and the remaining proxies are not tried.

Examples:
  # Scrape with the settings from .trendscan
  trendscan run

  # Watch the browser and print JSON
  trendscan run --headless=false -o json

  # Move on to the next proxy as soon as a login fails
  trendscan run --auth-failure skip`,
		Args: cobra.NoArgs,
		RunE: runRunCmd,
	}

	addOutputFlag(cmd)
	cmd.Flags().Bool("headless", true, "Run the browser without a window")
	cmd.Flags().String("auth-failure", string(config.AuthFailureContinue),
		"What to do after a failed login: continue (read trends anyway) or skip (next proxy)")
	cmd.Flags().Bool("tor-fallback", false, "Try an embedded Tor endpoint after the configured proxies")

	return cmd
}

// applyRunFlags copies the run flags the user set into cfg.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("headless") {
		v, err := cmd.Flags().GetBool("headless")
		if err != nil {
			return err
		}
		cfg.Headless = v
	}
	if cmd.Flags().Changed("auth-failure") {
		v, err := cmd.Flags().GetString("auth-failure")
		if err != nil {
			return err
		}
		cfg.AuthFailure = config.AuthFailurePolicy(v)
	}
	if cmd.Flags().Changed("tor-fallback") {
		v, err := cmd.Flags().GetBool("tor-fallback")
		if err != nil {
			return err
		}
		cfg.TorFallback = v
	}
	return nil
}

func runRunCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, applyRunFlags)
	if err != nil {
		return err
	}
	if err := cfg.ValidateSecrets(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runOnce(ctx, cmd, cfg)
}

// runOnce performs one run and prints the stored record.
func runOnce(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	logger := newLogger(cfg)

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

	result, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	if result == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "No data was fetched by the scraper.")
		return nil
	}

	w, err := report.New(cfg.Output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	_, err = w.Write(result)
	return err
}

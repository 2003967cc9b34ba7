package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for trendscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trendscan",
		Short: "Scrape the top trending topics on X through rotating proxies",
		Long: `trendscan opens a browser through each configured egress proxy in turn,
logs in to X, reads the top five trending hashtags and stores them together
with the time of the run and the proxy that produced them.

Proxy and account credentials are read from the environment:
  PROXYMESH_USERNAME, PROXYMESH_PASSWORD, TWITTER_USERNAME, TWITTER_PASSWORD

Everything else has a default and can be overridden in a .trendscan file
(see "trendscan init").`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .trendscan in current or home directory)")

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewLatestCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewProxiesCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

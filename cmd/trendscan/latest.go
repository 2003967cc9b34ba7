package main

import (
	"github.com/spf13/cobra"

	"github.com/nao1215/trendscan/internal/report"
)

// NewLatestCmd creates the latest command.
func NewLatestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Print the most recent stored result",
		Long: `Latest prints the stored result with the greatest timestamp.

Examples:
  trendscan latest
  trendscan latest -o json`,
		Args: cobra.NoArgs,
		RunE: runLatestCmd,
	}
	addOutputFlag(cmd)
	return cmd
}

func runLatestCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	s, err := openStore(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	latest, err := s.Latest(cmd.Context())
	if err != nil {
		return err
	}

	w, err := report.New(cfg.Output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	_, err = w.Write(latest)
	return err
}

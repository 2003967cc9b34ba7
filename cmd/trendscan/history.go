package main

import (
	"github.com/spf13/cobra"

	"github.com/nao1215/trendscan/internal/config"
	"github.com/nao1215/trendscan/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored results, newest first",
		Long: `History lists the stored results ordered by timestamp, newest first.

Examples:
  trendscan history
  trendscan history -n 5 -o markdown`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}
	addOutputFlag(cmd)
	cmd.Flags().IntP("limit", "n", config.DefaultHistoryLimit, "Maximum number of results")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	s, err := openStore(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	results, err := s.History(cmd.Context(), limit)
	if err != nil {
		return err
	}

	w, err := report.New(cfg.Output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	_, err = w.WriteAll(results)
	return err
}

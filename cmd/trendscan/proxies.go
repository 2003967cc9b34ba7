package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nao1215/trendscan/internal/proxy"
)

// NewProxiesCmd creates the proxies command.
func NewProxiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proxies",
		Short: "List the configured egress proxies",
		Long: `Proxies lists the egress endpoints in the order a run tries them.

With --check every endpoint is probed concurrently: HTTP proxies fetch the
target page with the proxy credentials, SOCKS5 proxies open a connection.

Examples:
  trendscan proxies
  trendscan proxies --check --timeout 10s`,
		Args: cobra.NoArgs,
		RunE: runProxiesCmd,
	}
	cmd.Flags().Bool("check", false, "Probe every endpoint")
	cmd.Flags().Duration("timeout", proxy.DefaultProbeTimeout, "Timeout for each probe")
	cmd.Flags().Int("concurrency", proxy.DefaultProbeConcurrency, "Number of probes run at once")
	return cmd
}

func runProxiesCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	endpoints, err := cfg.ProxyEndpoints()
	if err != nil {
		return err
	}
	rotator := proxy.NewRotator(endpoints...)

	check, err := cmd.Flags().GetBool("check")
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleRounded)

	if !check {
		t.AppendHeader(table.Row{"#", "Endpoint", "Scheme"})
		for i, ep := range rotator.List() {
			t.AppendRow(table.Row{i + 1, ep.String(), ep.Scheme})
		}
		t.AppendFooter(table.Row{"", fmt.Sprintf("%d endpoints", rotator.Len()), ""})
		t.Render()
		return nil
	}

	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}
	concurrency, err := cmd.Flags().GetInt("concurrency")
	if err != nil {
		return err
	}

	prober := proxy.NewProber(
		proxy.WithProbeTarget(cfg.HomeURL),
		proxy.WithProbeTimeout(timeout),
		proxy.WithProbeConcurrency(concurrency),
		proxy.WithProxyCredentials(cfg.Secrets.Proxy),
	)
	results := prober.ProbeAll(cmd.Context(), rotator.List())

	t.AppendHeader(table.Row{"#", "Endpoint", "Scheme", "Status", "HTTP", "Latency"})
	failed := 0
	for i, r := range results {
		code := "-"
		if r.StatusCode != 0 {
			code = fmt.Sprint(r.StatusCode)
		}
		if r.Status != proxy.ProbeOK {
			failed++
		}
		t.AppendRow(table.Row{i + 1, r.Endpoint.String(), r.Endpoint.Scheme, r.Status, code, r.Latency.Round(time.Millisecond)})
	}
	t.Render()

	if failed > 0 {
		return fmt.Errorf("%d of %d proxies failed the check", failed, len(results))
	}
	return nil
}

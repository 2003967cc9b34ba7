package proxy

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/nao1215/tornago"

	"github.com/nao1215/trendscan/internal/model"
)

// EmbeddedTor runs a private Tor daemon whose SOCKS5 port serves as a last
// resort egress endpoint. Bootstrapping takes one to three minutes.
type EmbeddedTor struct {
	process        *tornago.TorProcess
	socksAddr      string
	startupTimeout time.Duration
}

// EmbeddedTorOption configures an EmbeddedTor instance.
type EmbeddedTorOption func(*EmbeddedTor)

// WithStartupTimeout sets the maximum time to wait for Tor to bootstrap.
func WithStartupTimeout(timeout time.Duration) EmbeddedTorOption {
	return func(e *EmbeddedTor) {
		e.startupTimeout = timeout
	}
}

// NewEmbeddedTor creates a manager. Call Start to launch the daemon.
func NewEmbeddedTor(opts ...EmbeddedTorOption) *EmbeddedTor {
	e := &EmbeddedTor{startupTimeout: 3 * time.Minute}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start launches the daemon on OS-assigned ports and blocks until it bootstraps.
func (e *EmbeddedTor) Start(ctx context.Context) error {
	launchCfg, err := tornago.NewTorLaunchConfig(
		tornago.WithTorSocksAddr(":0"),
		tornago.WithTorControlAddr(":0"),
		tornago.WithTorStartupTimeout(e.startupTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create Tor launch config: %w", err)
	}

	process, err := tornago.StartTorDaemon(launchCfg)
	if err != nil {
		return fmt.Errorf("failed to start embedded Tor daemon: %w", err)
	}

	if ctx.Err() != nil {
		_ = process.Stop() //nolint:errcheck // cancelled during bootstrap
		return ctx.Err()
	}

	e.process = process
	e.socksAddr = process.SocksAddr()
	return nil
}

// Stop shuts the daemon down. It is safe to call more than once.
func (e *EmbeddedTor) Stop() error {
	if e.process == nil {
		return nil
	}
	err := e.process.Stop()
	e.process = nil
	e.socksAddr = ""
	return err
}

// IsRunning reports whether the daemon is running.
func (e *EmbeddedTor) IsRunning() bool {
	return e.process != nil
}

// Endpoint returns the daemon's SOCKS5 port as an egress endpoint.
func (e *EmbeddedTor) Endpoint() (model.ProxyEndpoint, error) {
	if !e.IsRunning() {
		return model.ProxyEndpoint{}, ErrTorNotRunning
	}
	return socksEndpoint(e.socksAddr)
}

// socksEndpoint converts a listener address such as ":41234" or
// "127.0.0.1:41234" into a socks5 endpoint on the loopback interface.
func socksEndpoint(addr string) (model.ProxyEndpoint, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return model.ProxyEndpoint{}, fmt.Errorf("%w: %q", ErrInvalidProxyAddress, addr)
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return model.ProxyEndpoint{}, fmt.Errorf("%w: %q", ErrInvalidProxyAddress, addr)
	}
	return model.ProxyEndpoint{Host: host, Port: port, Scheme: model.SchemeSOCKS5}, nil
}

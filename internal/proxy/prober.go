package proxy

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/proxy"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/trendscan/internal/model"
)

const (
	// DefaultProbeTarget is fetched through each proxy by Probe.
	DefaultProbeTarget = "https://x.com"

	// DefaultProbeTimeout bounds a single probe.
	DefaultProbeTimeout = 15 * time.Second

	// DefaultProbeConcurrency is the number of probes run at once.
	DefaultProbeConcurrency = 4
)

// ProbeResult is the outcome of probing one endpoint.
type ProbeResult struct {
	Endpoint   model.ProxyEndpoint
	Status     ProbeStatus
	StatusCode int
	Latency    time.Duration
	Err        error
}

// Prober checks whether endpoints can reach the target site.
// HTTP proxies are checked with a HEAD request carrying the proxy credentials;
// SOCKS5 proxies with a TCP connect to the target's port.
type Prober struct {
	target      string
	timeout     time.Duration
	concurrency int
	creds       model.Credentials
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithProbeTarget sets the URL fetched through the proxy.
func WithProbeTarget(target string) ProberOption {
	return func(p *Prober) {
		p.target = target
	}
}

// WithProbeTimeout sets the per-probe timeout.
func WithProbeTimeout(d time.Duration) ProberOption {
	return func(p *Prober) {
		p.timeout = d
	}
}

// WithProbeConcurrency sets how many endpoints are probed at once.
func WithProbeConcurrency(n int) ProberOption {
	return func(p *Prober) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithProxyCredentials sets the credentials sent to the proxies.
func WithProxyCredentials(c model.Credentials) ProberOption {
	return func(p *Prober) {
		p.creds = c
	}
}

// NewProber creates a Prober with default target, timeout and concurrency.
func NewProber(opts ...ProberOption) *Prober {
	p := &Prober{
		target:      DefaultProbeTarget,
		timeout:     DefaultProbeTimeout,
		concurrency: DefaultProbeConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProbeAll probes every endpoint and returns the results in input order.
// Individual failures are reported in the results, never as an error.
func (p *Prober) ProbeAll(ctx context.Context, endpoints []model.ProxyEndpoint) []ProbeResult {
	results := make([]ProbeResult, len(endpoints))

	g := new(errgroup.Group)
	g.SetLimit(p.concurrency)
	for i, ep := range endpoints {
		g.Go(func() error {
			results[i] = p.Probe(ctx, ep)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // probes never return errors

	return results
}

// Probe checks a single endpoint.
func (p *Prober) Probe(ctx context.Context, ep model.ProxyEndpoint) ProbeResult {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	var res ProbeResult
	if ep.IsSOCKS() {
		res = p.probeSOCKS(ctx, ep)
	} else {
		res = p.probeHTTP(ctx, ep)
	}
	res.Endpoint = ep
	res.Latency = time.Since(start)
	if res.Err == nil {
		res.Err = res.Status.Err()
	}
	return res
}

func (p *Prober) probeHTTP(ctx context.Context, ep model.ProxyEndpoint) ProbeResult {
	proxyURL := &url.URL{Scheme: ep.Scheme, Host: ep.String()}
	if proxyURL.Scheme == "" {
		proxyURL.Scheme = model.SchemeHTTP
	}
	if p.creds.Present() {
		proxyURL.User = url.UserPassword(p.creds.Username, p.creds.Password)
	}

	client := resty.New().
		SetProxy(proxyURL.String()).
		SetTimeout(p.timeout).
		SetRedirectPolicy(resty.NoRedirectPolicy())

	resp, err := client.R().SetContext(ctx).Head(p.target)
	if err != nil {
		// A redirect is a response from the target, which is all we need.
		if resp != nil && resp.StatusCode() >= 300 && resp.StatusCode() < 400 {
			return ProbeResult{Status: ProbeOK, StatusCode: resp.StatusCode()}
		}
		return ProbeResult{Status: classify(err), Err: fmt.Errorf("%w: %w", classify(err).Err(), err)}
	}

	code := resp.StatusCode()
	switch {
	case code == http.StatusProxyAuthRequired:
		return ProbeResult{Status: ProbeAuthRequired, StatusCode: code}
	case code >= http.StatusInternalServerError:
		return ProbeResult{Status: ProbeBadResponse, StatusCode: code}
	default:
		return ProbeResult{Status: ProbeOK, StatusCode: code}
	}
}

func (p *Prober) probeSOCKS(ctx context.Context, ep model.ProxyEndpoint) ProbeResult {
	var auth *proxy.Auth
	if p.creds.Present() {
		auth = &proxy.Auth{User: p.creds.Username, Password: p.creds.Password}
	}

	dialer, err := proxy.SOCKS5("tcp", ep.String(), auth, &net.Dialer{Timeout: p.timeout})
	if err != nil {
		return ProbeResult{Status: ProbeCannotConnect, Err: fmt.Errorf("%w: %w", ErrProxyCannotConnect, err)}
	}
	cd, ok := dialer.(proxy.ContextDialer)
	if !ok {
		return ProbeResult{Status: ProbeCannotConnect, Err: ErrProxyCannotConnect}
	}

	target, err := targetAddr(p.target)
	if err != nil {
		return ProbeResult{Status: ProbeCannotConnect, Err: err}
	}
	conn, err := cd.DialContext(ctx, "tcp", target)
	if err != nil {
		return ProbeResult{Status: classify(err), Err: fmt.Errorf("%w: %w", classify(err).Err(), err)}
	}
	_ = conn.Close() //nolint:errcheck // probe connection only

	return ProbeResult{Status: ProbeOK}
}

// targetAddr turns the probe URL into host:port for a raw dial.
func targetAddr(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid probe target %q: %w", raw, err)
	}
	port := u.Port()
	if port == "" {
		port = "443"
		if u.Scheme == "http" {
			port = "80"
		}
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}

// classify maps a transport error to a status.
func classify(err error) ProbeStatus {
	if errors.Is(err, context.DeadlineExceeded) {
		return ProbeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ProbeTimeout
	}
	// net/http reports a 407 on CONNECT as a plain error carrying the status text.
	if strings.Contains(err.Error(), http.StatusText(http.StatusProxyAuthRequired)) {
		return ProbeAuthRequired
	}
	return ProbeCannotConnect
}

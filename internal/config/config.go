package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/trendscan/internal/model"
)

// AppName is the application name used for XDG directory paths.
const AppName = "trendscan"

// Destination URLs on the target platform.
const (
	DefaultHomeURL     = "https://x.com"
	DefaultLoginURL    = "https://x.com/login"
	DefaultTrendingURL = "https://x.com/explore/tabs/trending"
)

// DOM markers used by the login protocol and the trend extractor.
const (
	DefaultUsernameSelector   = `input[name="text"]`
	DefaultPasswordSelector   = `input[name="password"]`
	DefaultHomeMarkerSelector = `[data-testid="primaryColumn"]`
	DefaultTrendSelector      = `[data-testid="trend"]`
)

const (
	// DefaultWaitTimeout bounds every element wait except the home marker.
	DefaultWaitTimeout = 45 * time.Second

	// DefaultHomeTimeout bounds the wait for the authenticated home view.
	// The home timeline is the slowest page to settle after login.
	DefaultHomeTimeout = 60 * time.Second

	// DefaultLaunchTimeout bounds browser start-up.
	DefaultLaunchTimeout = 30 * time.Second

	// DefaultMinDelay and DefaultMaxDelay bound the pause after each navigation.
	DefaultMinDelay = 3 * time.Second
	DefaultMaxDelay = 6 * time.Second

	// DefaultMinKeystroke and DefaultMaxKeystroke bound the gap between typed characters.
	DefaultMinKeystroke = 200 * time.Millisecond
	DefaultMaxKeystroke = 400 * time.Millisecond

	// DefaultMaxTrends is the number of trend entries kept per run.
	DefaultMaxTrends = model.MaxTrends

	// DefaultListenAddr is the address of the HTTP trigger.
	DefaultListenAddr = "127.0.0.1:5000"

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap when the Tor fallback endpoint is enabled.
	DefaultTorStartupTimeout = 3 * time.Minute

	// DefaultHistoryLimit is the number of records listed by the history command.
	DefaultHistoryLimit = 20
)

// DefaultEndpoints is the ordered list of egress proxies tried by a run.
var DefaultEndpoints = []string{
	"us-ca.proxymesh.com:31280",
	"us-il.proxymesh.com:31280",
	"us-fl.proxymesh.com:31280",
}

// DefaultUserAgents are the desktop browser identities picked from at random per session.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// AuthFailurePolicy decides what an attempt does after a failed login.
type AuthFailurePolicy string

const (
	// AuthFailureContinue runs the extraction anyway. The trending page is
	// sometimes readable without a session.
	AuthFailureContinue AuthFailurePolicy = "continue"
	// AuthFailureSkip ends the attempt and moves to the next endpoint.
	AuthFailureSkip AuthFailurePolicy = "skip"
)

// Valid reports whether p is a known policy.
func (p AuthFailurePolicy) Valid() bool {
	return p == AuthFailureContinue || p == AuthFailureSkip
}

// StoreDriver names a RecordStore backend.
type StoreDriver string

// Supported record store backends.
const (
	StoreSQLite   StoreDriver = "sqlite"
	StorePostgres StoreDriver = "postgres"
	StoreMongo    StoreDriver = "mongodb"
)

// OutputFormat selects how records are printed by the CLI.
type OutputFormat string

// Supported output formats.
const (
	OutputTable    OutputFormat = "table"
	OutputJSON     OutputFormat = "json"
	OutputMarkdown OutputFormat = "markdown"
)

// Config holds all configuration options for trendscan.
// It is populated from defaults, the YAML config file, the environment and
// CLI flags, in that order, and passed down explicitly.
type Config struct {
	// Endpoints is the ordered egress proxy list in "host:port" or
	// "scheme://host:port" form. An empty list is valid and yields no attempts.
	Endpoints []string

	HomeURL     string
	LoginURL    string
	TrendingURL string

	UsernameSelector   string
	PasswordSelector   string
	HomeMarkerSelector string
	TrendSelector      string

	// WaitTimeout bounds element waits on the login and trending pages.
	WaitTimeout time.Duration
	// HomeTimeout bounds the wait for the home marker after submitting the password.
	HomeTimeout time.Duration
	// LaunchTimeout bounds browser start-up.
	LaunchTimeout time.Duration

	MinDelay     time.Duration
	MaxDelay     time.Duration
	MinKeystroke time.Duration
	MaxKeystroke time.Duration

	// MaxTrends caps the number of entries extracted per run (1..5).
	MaxTrends int

	// AuthFailure selects what happens after a failed login.
	AuthFailure AuthFailurePolicy

	// Headless runs the browser without a window.
	Headless bool
	// ChromePath overrides the browser executable. Empty means autodetect.
	ChromePath string
	// UserAgents is the pool one identity is drawn from per session.
	UserAgents []string

	// SnapshotDir receives diagnostic screenshots. Empty disables snapshots.
	SnapshotDir string

	// StoreDriver selects the record store backend.
	StoreDriver StoreDriver
	// StoreDSN is the connection string for postgres and mongodb.
	StoreDSN string
	// DBDir is the directory of the SQLite database file.
	DBDir string

	// TorFallback appends an embedded Tor SOCKS5 endpoint after the configured list.
	TorFallback bool
	// TorStartupTimeout bounds the embedded Tor bootstrap.
	TorStartupTimeout time.Duration

	// ListenAddr is the address served by the HTTP trigger.
	ListenAddr string

	// Output selects how records are printed.
	Output OutputFormat

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is an explicit config file path. Empty means search.
	ConfigFilePath string

	// Secrets holds the proxy and platform credentials. Never read from or
	// written to the config file.
	Secrets model.Secrets
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Endpoints:          append([]string(nil), DefaultEndpoints...),
		HomeURL:            DefaultHomeURL,
		LoginURL:           DefaultLoginURL,
		TrendingURL:        DefaultTrendingURL,
		UsernameSelector:   DefaultUsernameSelector,
		PasswordSelector:   DefaultPasswordSelector,
		HomeMarkerSelector: DefaultHomeMarkerSelector,
		TrendSelector:      DefaultTrendSelector,
		WaitTimeout:        DefaultWaitTimeout,
		HomeTimeout:        DefaultHomeTimeout,
		LaunchTimeout:      DefaultLaunchTimeout,
		MinDelay:           DefaultMinDelay,
		MaxDelay:           DefaultMaxDelay,
		MinKeystroke:       DefaultMinKeystroke,
		MaxKeystroke:       DefaultMaxKeystroke,
		MaxTrends:          DefaultMaxTrends,
		AuthFailure:        AuthFailureContinue,
		Headless:           true,
		UserAgents:         append([]string(nil), DefaultUserAgents...),
		SnapshotDir:        XDGCacheDir(),
		StoreDriver:        StoreSQLite,
		DBDir:              XDGDataDir(),
		TorStartupTimeout:  DefaultTorStartupTimeout,
		ListenAddr:         DefaultListenAddr,
		Output:             OutputTable,
	}
}

// XDGDataDir returns the XDG data directory for trendscan.
// On Linux: ~/.local/share/trendscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for trendscan.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for trendscan.
// Diagnostic snapshots are written here by default.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName, "snapshots")
}

// ProxyEndpoints parses Endpoints in order.
func (c *Config) ProxyEndpoints() ([]model.ProxyEndpoint, error) {
	out := make([]model.ProxyEndpoint, 0, len(c.Endpoints))
	for i, s := range c.Endpoints {
		ep, err := model.ParseProxyEndpoint(s)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", ErrInvalidEndpoint, i, err)
		}
		out = append(out, ep)
	}
	return out, nil
}

// Validate checks that the configuration is usable. Credentials are checked
// separately by ValidateSecrets because read-only commands do not need them.
func (c *Config) Validate() error {
	if _, err := c.ProxyEndpoints(); err != nil {
		return err
	}

	if c.WaitTimeout <= 0 || c.HomeTimeout <= 0 || c.LaunchTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MinDelay < 0 || c.MaxDelay < c.MinDelay {
		return ErrInvalidDelay
	}
	if c.MinKeystroke < 0 || c.MaxKeystroke < c.MinKeystroke {
		return ErrInvalidDelay
	}

	if c.MaxTrends < 1 || c.MaxTrends > model.MaxTrends {
		return ErrInvalidMaxTrends
	}

	if !c.AuthFailure.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAuthFailurePolicy, c.AuthFailure)
	}

	switch c.StoreDriver {
	case StoreSQLite:
		if c.DBDir == "" {
			return ErrMissingStoreDSN
		}
	case StorePostgres, StoreMongo:
		if c.StoreDSN == "" {
			return ErrMissingStoreDSN
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStoreDriver, c.StoreDriver)
	}

	switch c.Output {
	case OutputTable, OutputJSON, OutputMarkdown:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOutputFormat, c.Output)
	}

	return nil
}

// ValidateSecrets returns ErrMissingCredentials naming every unset variable.
func (c *Config) ValidateSecrets() error {
	missing := MissingSecretVars(c.Secrets)
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrMissingCredentials, missing)
}

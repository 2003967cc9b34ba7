package config

import "time"

// File represents the structure of the .trendscan configuration file.
// Zero values leave the corresponding Config field untouched.
type File struct {
	Endpoints   []string  `yaml:"endpoints,omitempty"`
	URLs        URLs      `yaml:"urls,omitempty"`
	Selectors   Selectors `yaml:"selectors,omitempty"`
	Timeouts    Timeouts  `yaml:"timeouts,omitempty"`
	Delays      Delays    `yaml:"delays,omitempty"`
	MaxTrends   int       `yaml:"max_trends,omitempty"`
	AuthFailure string    `yaml:"auth_failure,omitempty"`
	Browser     Browser   `yaml:"browser,omitempty"`
	Store       Store     `yaml:"store,omitempty"`
	TorFallback *bool     `yaml:"tor_fallback,omitempty"`
	Listen      string    `yaml:"listen,omitempty"`
}

// URLs overrides the destination URLs.
type URLs struct {
	Home     string `yaml:"home,omitempty"`
	Login    string `yaml:"login,omitempty"`
	Trending string `yaml:"trending,omitempty"`
}

// Selectors overrides the DOM markers.
type Selectors struct {
	Username   string `yaml:"username,omitempty"`
	Password   string `yaml:"password,omitempty"`
	HomeMarker string `yaml:"home_marker,omitempty"`
	Trend      string `yaml:"trend,omitempty"`
}

// Timeouts overrides the stage bounds.
type Timeouts struct {
	Wait   time.Duration `yaml:"wait,omitempty"`
	Home   time.Duration `yaml:"home,omitempty"`
	Launch time.Duration `yaml:"launch,omitempty"`
	Tor    time.Duration `yaml:"tor,omitempty"`
}

// Delays overrides the humanized pause bounds.
type Delays struct {
	Min          time.Duration `yaml:"min,omitempty"`
	Max          time.Duration `yaml:"max,omitempty"`
	KeystrokeMin time.Duration `yaml:"keystroke_min,omitempty"`
	KeystrokeMax time.Duration `yaml:"keystroke_max,omitempty"`
}

// Browser overrides the launch settings.
type Browser struct {
	Headless    *bool    `yaml:"headless,omitempty"`
	Path        string   `yaml:"path,omitempty"`
	UserAgents  []string `yaml:"user_agents,omitempty"`
	SnapshotDir string   `yaml:"snapshot_dir,omitempty"`
}

// Store overrides the record store.
type Store struct {
	Driver string `yaml:"driver,omitempty"`
	DSN    string `yaml:"dsn,omitempty"`
	DBDir  string `yaml:"db_dir,omitempty"`
}

// Apply merges the non-zero values of f into c.
func (f *File) Apply(c *Config) {
	if f == nil {
		return
	}
	if len(f.Endpoints) > 0 {
		c.Endpoints = append([]string(nil), f.Endpoints...)
	}

	setString(&c.HomeURL, f.URLs.Home)
	setString(&c.LoginURL, f.URLs.Login)
	setString(&c.TrendingURL, f.URLs.Trending)

	setString(&c.UsernameSelector, f.Selectors.Username)
	setString(&c.PasswordSelector, f.Selectors.Password)
	setString(&c.HomeMarkerSelector, f.Selectors.HomeMarker)
	setString(&c.TrendSelector, f.Selectors.Trend)

	setDuration(&c.WaitTimeout, f.Timeouts.Wait)
	setDuration(&c.HomeTimeout, f.Timeouts.Home)
	setDuration(&c.LaunchTimeout, f.Timeouts.Launch)
	setDuration(&c.TorStartupTimeout, f.Timeouts.Tor)

	setDuration(&c.MinDelay, f.Delays.Min)
	setDuration(&c.MaxDelay, f.Delays.Max)
	setDuration(&c.MinKeystroke, f.Delays.KeystrokeMin)
	setDuration(&c.MaxKeystroke, f.Delays.KeystrokeMax)

	if f.MaxTrends != 0 {
		c.MaxTrends = f.MaxTrends
	}
	if f.AuthFailure != "" {
		c.AuthFailure = AuthFailurePolicy(f.AuthFailure)
	}

	if f.Browser.Headless != nil {
		c.Headless = *f.Browser.Headless
	}
	setString(&c.ChromePath, f.Browser.Path)
	if len(f.Browser.UserAgents) > 0 {
		c.UserAgents = append([]string(nil), f.Browser.UserAgents...)
	}
	setString(&c.SnapshotDir, f.Browser.SnapshotDir)

	if f.Store.Driver != "" {
		c.StoreDriver = StoreDriver(f.Store.Driver)
	}
	setString(&c.StoreDSN, f.Store.DSN)
	setString(&c.DBDir, f.Store.DBDir)

	if f.TorFallback != nil {
		c.TorFallback = *f.TorFallback
	}
	setString(&c.ListenAddr, f.Listen)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/trendscan/internal/model"
)

// TestNewConfig documents the defaults. A failing subtest means a default changed.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default endpoints are the three proxymesh regions in order", func(t *testing.T) {
		t.Parallel()
		want := []string{"us-ca.proxymesh.com:31280", "us-il.proxymesh.com:31280", "us-fl.proxymesh.com:31280"}
		if strings.Join(cfg.Endpoints, ",") != strings.Join(want, ",") {
			t.Errorf("expected endpoints %v, got %v", want, cfg.Endpoints)
		}
	})

	t.Run("default wait timeout is 45 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.WaitTimeout != 45*time.Second {
			t.Errorf("expected WaitTimeout to be 45s, got %v", cfg.WaitTimeout)
		}
	})

	t.Run("default home timeout is 60 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.HomeTimeout != 60*time.Second {
			t.Errorf("expected HomeTimeout to be 60s, got %v", cfg.HomeTimeout)
		}
	})

	t.Run("default delays are 3s to 6s", func(t *testing.T) {
		t.Parallel()
		if cfg.MinDelay != 3*time.Second || cfg.MaxDelay != 6*time.Second {
			t.Errorf("expected 3s..6s, got %v..%v", cfg.MinDelay, cfg.MaxDelay)
		}
	})

	t.Run("default auth failure policy is continue", func(t *testing.T) {
		t.Parallel()
		if cfg.AuthFailure != AuthFailureContinue {
			t.Errorf("expected continue, got %q", cfg.AuthFailure)
		}
	})

	t.Run("default store is sqlite in the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if cfg.StoreDriver != StoreSQLite {
			t.Errorf("expected sqlite, got %q", cfg.StoreDriver)
		}
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected DBDir %q, got %q", XDGDataDir(), cfg.DBDir)
		}
	})

	t.Run("defaults are valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected defaults to validate, got %v", err)
		}
	})

	t.Run("endpoints slice is a copy", func(t *testing.T) {
		t.Parallel()
		other := NewConfig()
		other.Endpoints[0] = "changed:1"
		if DefaultEndpoints[0] == "changed:1" {
			t.Error("NewConfig must not alias DefaultEndpoints")
		}
	})
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "empty endpoint list is valid", mutate: func(c *Config) { c.Endpoints = nil }},
		{name: "bad endpoint", mutate: func(c *Config) { c.Endpoints = []string{"nope"} }, wantErr: ErrInvalidEndpoint},
		{name: "zero wait timeout", mutate: func(c *Config) { c.WaitTimeout = 0 }, wantErr: ErrInvalidTimeout},
		{name: "negative home timeout", mutate: func(c *Config) { c.HomeTimeout = -time.Second }, wantErr: ErrInvalidTimeout},
		{name: "max delay below min", mutate: func(c *Config) { c.MaxDelay = time.Second }, wantErr: ErrInvalidDelay},
		{name: "negative keystroke", mutate: func(c *Config) { c.MinKeystroke = -1 }, wantErr: ErrInvalidDelay},
		{name: "zero delays are valid", mutate: func(c *Config) {
			c.MinDelay, c.MaxDelay, c.MinKeystroke, c.MaxKeystroke = 0, 0, 0, 0
		}},
		{name: "max trends zero", mutate: func(c *Config) { c.MaxTrends = 0 }, wantErr: ErrInvalidMaxTrends},
		{name: "max trends six", mutate: func(c *Config) { c.MaxTrends = 6 }, wantErr: ErrInvalidMaxTrends},
		{name: "unknown auth policy", mutate: func(c *Config) { c.AuthFailure = "retry" }, wantErr: ErrInvalidAuthFailurePolicy},
		{name: "unknown store", mutate: func(c *Config) { c.StoreDriver = "redis" }, wantErr: ErrUnknownStoreDriver},
		{name: "postgres without dsn", mutate: func(c *Config) { c.StoreDriver = StorePostgres }, wantErr: ErrMissingStoreDSN},
		{name: "mongodb with dsn", mutate: func(c *Config) {
			c.StoreDriver = StoreMongo
			c.StoreDSN = "mongodb://localhost:27017"
		}},
		{name: "unknown output", mutate: func(c *Config) { c.Output = "xml" }, wantErr: ErrInvalidOutputFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			cfg.DBDir = t.TempDir()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateSecrets(t *testing.T) {
	t.Parallel()

	t.Run("all four set", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Secrets = model.Secrets{
			Proxy:    model.Credentials{Username: "pu", Password: "pp"},
			Platform: model.Credentials{Username: "tu", Password: "tp"},
		}
		if err := cfg.ValidateSecrets(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("missing values are named", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Secrets = model.Secrets{Proxy: model.Credentials{Username: "pu"}}

		err := cfg.ValidateSecrets()
		if !errors.Is(err, ErrMissingCredentials) {
			t.Fatalf("expected ErrMissingCredentials, got %v", err)
		}
		for _, name := range []string{EnvProxyPassword, EnvPlatformUsername, EnvPlatformPassword} {
			if !strings.Contains(err.Error(), name) {
				t.Errorf("expected %s in %q", name, err.Error())
			}
		}
		if strings.Contains(err.Error(), EnvProxyUsername) {
			t.Errorf("did not expect %s in %q", EnvProxyUsername, err.Error())
		}
	})
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		EnvProxyUsername:    "proxy-user",
		EnvProxyPassword:    "proxy-pass",
		EnvPlatformUsername: "someone",
		EnvPlatformPassword: "hunter2",
		EnvMongoURI:         "mongodb://db:27017",
	}
	getenv := func(k string) string { return env[k] }

	t.Run("reads credentials", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.ApplyEnv(getenv)
		if !cfg.Secrets.Complete() {
			t.Errorf("expected complete secrets, got %+v", cfg.Secrets)
		}
	})

	t.Run("mongo uri fills the dsn for mongodb", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.StoreDriver = StoreMongo
		cfg.ApplyEnv(getenv)
		if cfg.StoreDSN != "mongodb://db:27017" {
			t.Errorf("expected mongo dsn, got %q", cfg.StoreDSN)
		}
	})

	t.Run("explicit dsn wins", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.StoreDriver = StoreMongo
		cfg.StoreDSN = "mongodb://explicit"
		cfg.ApplyEnv(getenv)
		if cfg.StoreDSN != "mongodb://explicit" {
			t.Errorf("expected explicit dsn, got %q", cfg.StoreDSN)
		}
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("file values override defaults", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `endpoints:
  - proxy-a.example.com:8080
  - socks5://127.0.0.1:9050
timeouts:
  wait: 10s
delays:
  min: 1s
  max: 2s
max_trends: 3
auth_failure: skip
browser:
  headless: false
store:
  driver: postgres
  dsn: postgres://localhost/trends
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		cfg := NewConfig()
		f.Apply(cfg)

		if len(cfg.Endpoints) != 2 || cfg.Endpoints[1] != "socks5://127.0.0.1:9050" {
			t.Errorf("unexpected endpoints %v", cfg.Endpoints)
		}
		if cfg.WaitTimeout != 10*time.Second {
			t.Errorf("expected wait 10s, got %v", cfg.WaitTimeout)
		}
		if cfg.HomeTimeout != DefaultHomeTimeout {
			t.Errorf("expected home timeout untouched, got %v", cfg.HomeTimeout)
		}
		if cfg.MinDelay != time.Second || cfg.MaxDelay != 2*time.Second {
			t.Errorf("unexpected delays %v..%v", cfg.MinDelay, cfg.MaxDelay)
		}
		if cfg.MaxTrends != 3 {
			t.Errorf("expected max trends 3, got %d", cfg.MaxTrends)
		}
		if cfg.AuthFailure != AuthFailureSkip {
			t.Errorf("expected skip, got %q", cfg.AuthFailure)
		}
		if cfg.Headless {
			t.Error("expected headless false")
		}
		if cfg.StoreDriver != StorePostgres || cfg.StoreDSN != "postgres://localhost/trends" {
			t.Errorf("unexpected store %q %q", cfg.StoreDriver, cfg.StoreDSN)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected merged config to validate, got %v", err)
		}
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("explicit missing path is an error", func(t *testing.T) {
		t.Parallel()
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), func(string) string { return "" })
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("explicit path is applied", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "c.yaml")
		if err := os.WriteFile(path, []byte("listen: 0.0.0.0:8080\n"), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		cfg, err := Load(path, func(string) string { return "" })
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.ListenAddr != "0.0.0.0:8080" {
			t.Errorf("expected listen override, got %q", cfg.ListenAddr)
		}
		if cfg.ConfigFilePath != path {
			t.Errorf("expected ConfigFilePath %q, got %q", path, cfg.ConfigFilePath)
		}
	})
}

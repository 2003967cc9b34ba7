package config

import "github.com/nao1215/trendscan/internal/model"

// Environment variables read by LoadSecretsFromEnv and ApplyEnv.
const (
	EnvProxyUsername    = "PROXYMESH_USERNAME"
	EnvProxyPassword    = "PROXYMESH_PASSWORD"
	EnvPlatformUsername = "TWITTER_USERNAME"
	EnvPlatformPassword = "TWITTER_PASSWORD"
	EnvMongoURI         = "MONGO_URI"
	EnvDatabaseURL      = "DATABASE_URL"
)

// LoadSecretsFromEnv reads both credential pairs through getenv.
// Tests pass a map lookup; the CLI passes os.Getenv.
func LoadSecretsFromEnv(getenv func(string) string) model.Secrets {
	return model.Secrets{
		Proxy: model.Credentials{
			Username: getenv(EnvProxyUsername),
			Password: getenv(EnvProxyPassword),
		},
		Platform: model.Credentials{
			Username: getenv(EnvPlatformUsername),
			Password: getenv(EnvPlatformPassword),
		},
	}
}

// MissingSecretVars returns the names of the unset credential variables.
func MissingSecretVars(s model.Secrets) []string {
	var missing []string
	if s.Proxy.Username == "" {
		missing = append(missing, EnvProxyUsername)
	}
	if s.Proxy.Password == "" {
		missing = append(missing, EnvProxyPassword)
	}
	if s.Platform.Username == "" {
		missing = append(missing, EnvPlatformUsername)
	}
	if s.Platform.Password == "" {
		missing = append(missing, EnvPlatformPassword)
	}
	return missing
}

// ApplyEnv loads the secrets and, when StoreDSN is still empty, the
// connection string matching the selected store driver.
func (c *Config) ApplyEnv(getenv func(string) string) {
	c.Secrets = LoadSecretsFromEnv(getenv)

	if c.StoreDSN != "" {
		return
	}
	switch c.StoreDriver {
	case StoreMongo:
		c.StoreDSN = getenv(EnvMongoURI)
	case StorePostgres:
		c.StoreDSN = getenv(EnvDatabaseURL)
	case StoreSQLite:
	}
}

package model

import "log/slog"

// Credentials is a username/password pair.
// Credentials are read once per run and never persisted.
type Credentials struct {
	Username string
	Password string
}

// Present reports whether both the username and the password are set.
func (c Credentials) Present() bool {
	return c.Username != "" && c.Password != ""
}

// String hides the password so that credentials can be printed safely.
func (c Credentials) String() string {
	if c.Password == "" {
		return c.Username
	}
	return c.Username + ":***"
}

// LogValue implements slog.LogValuer.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("username", c.Username),
		slog.Bool("password_set", c.Password != ""),
	)
}

// Secrets groups the two credential pairs a run needs.
type Secrets struct {
	// Proxy authenticates against the egress proxies.
	Proxy Credentials
	// Platform logs in to the target site.
	Platform Credentials
}

// Complete reports whether both credential pairs are present.
func (s Secrets) Complete() bool {
	return s.Proxy.Present() && s.Platform.Present()
}

package model

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Endpoint errors.
var (
	// ErrEmptyEndpoint is returned when the endpoint string is empty.
	ErrEmptyEndpoint = errors.New("proxy endpoint cannot be empty")
	// ErrInvalidEndpoint is returned when the endpoint is not in "host:port" form.
	ErrInvalidEndpoint = errors.New("invalid proxy endpoint: expected host:port")
	// ErrUnsupportedScheme is returned for schemes other than http, https and socks5.
	ErrUnsupportedScheme = errors.New("unsupported proxy scheme")
)

// Proxy schemes understood by the browser launcher.
const (
	SchemeHTTP   = "http"
	SchemeHTTPS  = "https"
	SchemeSOCKS5 = "socks5"
)

// ProxyEndpoint is an immutable egress proxy address.
// The zero Scheme is treated as SchemeHTTP.
type ProxyEndpoint struct {
	Host   string `json:"host" yaml:"host"`
	Port   int    `json:"port" yaml:"port"`
	Scheme string `json:"scheme,omitempty" yaml:"scheme,omitempty"`
}

// ParseProxyEndpoint parses "host:port" or "scheme://host:port".
func ParseProxyEndpoint(s string) (ProxyEndpoint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ProxyEndpoint{}, ErrEmptyEndpoint
	}

	scheme := SchemeHTTP
	if before, after, found := strings.Cut(s, "://"); found {
		scheme = strings.ToLower(before)
		s = after
	}
	switch scheme {
	case SchemeHTTP, SchemeHTTPS, SchemeSOCKS5:
	default:
		return ProxyEndpoint{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}

	host, portStr, err := net.SplitHostPort(s)
	if err != nil || host == "" {
		return ProxyEndpoint{}, fmt.Errorf("%w: %q", ErrInvalidEndpoint, s)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return ProxyEndpoint{}, fmt.Errorf("%w: port %q out of range", ErrInvalidEndpoint, portStr)
	}

	return ProxyEndpoint{Host: host, Port: port, Scheme: scheme}, nil
}

// MustParseProxyEndpoint is like ParseProxyEndpoint but panics on error.
// It is intended for package-level defaults.
func MustParseProxyEndpoint(s string) ProxyEndpoint {
	ep, err := ParseProxyEndpoint(s)
	if err != nil {
		panic(err)
	}
	return ep
}

// String returns "host:port". This is the value persisted as ip_address.
func (p ProxyEndpoint) String() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// URL returns the endpoint as a proxy URL, e.g. "http://host:port".
func (p ProxyEndpoint) URL() string {
	return p.scheme() + "://" + p.String()
}

// IsSOCKS reports whether the endpoint speaks SOCKS5.
func (p ProxyEndpoint) IsSOCKS() bool {
	return p.scheme() == SchemeSOCKS5
}

func (p ProxyEndpoint) scheme() string {
	if p.Scheme == "" {
		return SchemeHTTP
	}
	return p.Scheme
}

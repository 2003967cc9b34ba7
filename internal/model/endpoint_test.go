package model

import (
	"errors"
	"testing"
)

func TestParseProxyEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    ProxyEndpoint
		wantErr error
	}{
		{
			name:  "host and port default to http",
			input: "us-ca.proxymesh.com:31280",
			want:  ProxyEndpoint{Host: "us-ca.proxymesh.com", Port: 31280, Scheme: SchemeHTTP},
		},
		{
			name:  "explicit socks5 scheme",
			input: "socks5://127.0.0.1:9050",
			want:  ProxyEndpoint{Host: "127.0.0.1", Port: 9050, Scheme: SchemeSOCKS5},
		},
		{
			name:  "surrounding whitespace is trimmed",
			input: "  10.0.0.1:8080 ",
			want:  ProxyEndpoint{Host: "10.0.0.1", Port: 8080, Scheme: SchemeHTTP},
		},
		{name: "empty", input: "", wantErr: ErrEmptyEndpoint},
		{name: "missing port", input: "proxy.example.com", wantErr: ErrInvalidEndpoint},
		{name: "missing host", input: ":8080", wantErr: ErrInvalidEndpoint},
		{name: "port zero", input: "proxy:0", wantErr: ErrInvalidEndpoint},
		{name: "port too large", input: "proxy:70000", wantErr: ErrInvalidEndpoint},
		{name: "non numeric port", input: "proxy:abc", wantErr: ErrInvalidEndpoint},
		{name: "unknown scheme", input: "ftp://proxy:21", wantErr: ErrUnsupportedScheme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseProxyEndpoint(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestProxyEndpointString(t *testing.T) {
	t.Parallel()

	t.Run("String is host:port without scheme", func(t *testing.T) {
		t.Parallel()
		ep := ProxyEndpoint{Host: "us-il.proxymesh.com", Port: 31280, Scheme: SchemeHTTP}
		if got := ep.String(); got != "us-il.proxymesh.com:31280" {
			t.Errorf("expected 'us-il.proxymesh.com:31280', got %q", got)
		}
	})

	t.Run("URL defaults scheme to http", func(t *testing.T) {
		t.Parallel()
		ep := ProxyEndpoint{Host: "proxy", Port: 3128}
		if got := ep.URL(); got != "http://proxy:3128" {
			t.Errorf("expected 'http://proxy:3128', got %q", got)
		}
		if ep.IsSOCKS() {
			t.Error("expected IsSOCKS to be false")
		}
	})

	t.Run("IPv6 hosts are bracketed", func(t *testing.T) {
		t.Parallel()
		ep := ProxyEndpoint{Host: "::1", Port: 9050, Scheme: SchemeSOCKS5}
		if got := ep.String(); got != "[::1]:9050" {
			t.Errorf("expected '[::1]:9050', got %q", got)
		}
		if !ep.IsSOCKS() {
			t.Error("expected IsSOCKS to be true")
		}
	})
}

func TestMustParseProxyEndpointPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid endpoint")
		}
	}()
	MustParseProxyEndpoint("not-an-endpoint")
}

package collection

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http2"
)

// ClientConfig configures the HTTP client used by remote collections
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	// HTTP2 forces HTTP/2: over TLS for https URLs, prior-knowledge h2c for http URLs
	HTTP2 bool
}

// NewHTTPClient builds the client shared by remote collections and records
func NewHTTPClient(cfg ClientConfig) (*http.Client, error) {
	client := &http.Client{Timeout: cfg.Timeout}
	if !cfg.HTTP2 {
		return client, nil
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base url: %w", err)
	}

	switch u.Scheme {
	case "https":
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		if err := http2.ConfigureTransport(t); err != nil {
			return nil, fmt.Errorf("failed to configure http2 transport: %w", err)
		}
		client.Transport = t
	case "http":
		client.Transport = &http2.Transport{
			AllowHTTP: true,
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, network, addr)
			},
		}
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return client, nil
}

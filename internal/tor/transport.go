// Package tor implements outbound transport over the Tor network: a
// SOCKS5h-proxied HTTP client, the dark-web search-engine catalog, a
// concurrent search-engine crawler, and a page scraper.
package tor

import (
	"crypto/tls"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/proxy"
)

// Config configures the Tor-routed HTTP client.
type Config struct {
	SocksAddr  string
	Timeout    time.Duration
	MaxRetries int
}

// DefaultConfig points at a local Tor daemon's SOCKS port with a generous
// timeout for onion-routed latency.
func DefaultConfig() Config {
	return Config{
		SocksAddr:  "socks5h://127.0.0.1:9050",
		Timeout:    45 * time.Second,
		MaxRetries: 3,
	}
}

// userAgents rotates across requests so no single crawl carries an
// identical fingerprint across every hidden-service hit.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:137.0) Gecko/20100101 Firefox/137.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14.7; rv:137.0) Gecko/20100101 Firefox/137.0",
}

// RandomUserAgent returns one of the rotation's five user-agent strings.
func RandomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

// userAgentTransport injects a rotating User-Agent header ahead of the
// proxy dialer, since neither net/http nor x/net/proxy set one by default.
type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", RandomUserAgent())
	return t.base.RoundTrip(req)
}

// NewClient builds an http.Client that routes every request through the
// configured SOCKS5h proxy. Onion services frequently present self-signed
// or expired certificates, so TLS verification is disabled.
func NewClient(cfg Config) (*http.Client, error) {
	proxyURL, err := url.Parse(cfg.SocksAddr)
	if err != nil {
		return nil, fmt.Errorf("parsing socks address: %w", err)
	}

	dialer, err := proxy.FromURL(proxyURL, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("building socks5 dialer: %w", err)
	}
	contextDialer, ok := dialer.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("socks5 dialer does not support contexts")
	}

	base := &http.Transport{
		DialContext:     contextDialer.DialContext,
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
	}

	return &http.Client{
		Transport: &userAgentTransport{base: base},
		Timeout:   cfg.Timeout,
	}, nil
}

// torProjectOnion is the Tor Project's own onion service, used purely as a
// reachability probe.
const torProjectOnion = "http://2gzyxa5ihm7nsggfxnu52rck2vv4rvmdlkiu3ber7fzs2xqxczfebsid.onion/"

// CheckConnection reports whether the Tor proxy is up and can reach the
// onion network at all.
func CheckConnection(cfg Config) bool {
	client, err := NewClient(cfg)
	if err != nil {
		return false
	}
	resp, err := client.Get(torProjectOnion)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 400
}

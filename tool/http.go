package tool

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	ai "github.com/spetersoncode/warden"
)

// HTTPOption configures the HTTP-backed tools.
type HTTPOption func(*httpConfig)

type httpConfig struct {
	client          *http.Client
	allowedHosts    []string
	maxResponseSize int64
	timeout         time.Duration
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(cfg *httpConfig) {
		cfg.client = c
	}
}

// WithAllowedHosts restricts direct URL fetches to the given hosts and their subdomains.
func WithAllowedHosts(hosts ...string) HTTPOption {
	return func(cfg *httpConfig) {
		cfg.allowedHosts = hosts
	}
}

// WithMaxResponseSize sets the maximum response body size. Default is 1MB.
func WithMaxResponseSize(bytes int64) HTTPOption {
	return func(cfg *httpConfig) {
		cfg.maxResponseSize = bytes
	}
}

// WithHTTPTimeout sets the request timeout. Default is 30 seconds.
func WithHTTPTimeout(d time.Duration) HTTPOption {
	return func(cfg *httpConfig) {
		cfg.timeout = d
	}
}

func applyHTTPOpts(opts []HTTPOption) *httpConfig {
	cfg := &httpConfig{
		maxResponseSize: 1024 * 1024,
		timeout:         30 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.client == nil {
		cfg.client = &http.Client{Timeout: cfg.timeout, CheckRedirect: cfg.checkRedirect}
	}
	return cfg
}

// checkRedirect applies the host allow-list to every redirect hop.
func (c *httpConfig) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= 10 {
		return fmt.Errorf("stopped after %d redirects", len(via))
	}
	return c.checkHost(req.URL.String())
}

func (c *httpConfig) checkHost(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if len(c.allowedHosts) == 0 {
		return nil
	}

	host := u.Hostname()
	for _, a := range c.allowedHosts {
		if host == a || strings.HasSuffix(host, "."+a) {
			return nil
		}
	}
	return fmt.Errorf("host %q is not in allowed list", host)
}

// do executes req and returns the size-limited body. Non-2xx answers are
// reported as ErrUpstream.
func (c *httpConfig) do(service string, req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ErrUpstream{
			Service:    service,
			Code:       resp.StatusCode,
			Body:       truncate(string(body), 200),
			RetryDelay: ai.ParseRetryAfter(resp),
		}
	}
	return body, nil
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

// Package geoip resolves a client IP address to a country code through an
// external IP-info service. The lookup is the only network call on the click
// intake path, so it runs on its own HTTP client with a bounded timeout.
package geoip

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Resolver maps a source IP to an ISO-style country code. An empty string
// means "unknown": the caller decides whether unknown blocks the click.
type Resolver interface {
	CountryCode(ctx context.Context, ip string) (string, error)
}

// HTTPResolver queries an ipinfo-style endpoint (GET {base}/{ip}/country
// returning the bare country code).
type HTTPResolver struct {
	baseURL string
	client  *http.Client
}

// NewHTTPResolver builds a resolver against the given base URL. A nil client
// falls back to a default with a 5 second timeout.
func NewHTTPResolver(baseURL string, client *http.Client) *HTTPResolver {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTPResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// CountryCode performs the lookup. A non-2xx answer or transport failure is
// returned as an error; a 2xx answer with an unusable body (the service
// reports "undefined" for unroutable addresses) resolves to unknown.
func (r *HTTPResolver) CountryCode(ctx context.Context, ip string) (string, error) {
	url := fmt.Sprintf("%s/%s/country", r.baseURL, ip)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build geoip request for %s: %w", ip, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("geoip lookup failed for %s: %w", ip, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("geoip lookup for %s returned status %d", ip, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return "", fmt.Errorf("failed to read geoip response for %s: %w", ip, err)
	}

	code := strings.TrimSpace(string(body))
	if code == "" || strings.EqualFold(code, "undefined") || strings.EqualFold(code, "unknown") {
		logrus.WithField("ip", ip).Debug("GeoIP service could not place IP, treating as unknown")
		return "", nil
	}
	return code, nil
}

// Package doi resolves DOIs to CSL-JSON through doi.org content negotiation.
package doi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the DOI resolver.
	BaseURL = "https://doi.org"

	// AcceptCSL requests CSL-JSON from the registration agency.
	AcceptCSL = "application/vnd.citationstyles.csl+json"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 10 * time.Second

	// RateLimit is the default number of requests per second.
	RateLimit = 2.0

	// maxErrorBody caps how much of an error response is kept.
	maxErrorBody = 4096
)

var (
	// ErrInvalidDOI indicates the input does not look like a DOI.
	ErrInvalidDOI = errors.New("invalid DOI")

	// ErrNotFound indicates the resolver does not know the DOI.
	ErrNotFound = errors.New("DOI not found")
)

// Resolver fetches CSL-JSON metadata for DOIs.
type Resolver struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	userAgent  string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(r *Resolver) {
		r.httpClient = hc
	}
}

// WithBaseURL sets a custom resolver base URL (for testing).
func WithBaseURL(u string) Option {
	return func(r *Resolver) {
		r.baseURL = strings.TrimRight(u, "/")
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(r *Resolver) {
		r.userAgent = ua
	}
}

// NewResolver creates a rate-limited resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
		userAgent:  "bibnow",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Normalize strips resolver URLs and "doi:" prefixes from a DOI.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi.org/"} {
		if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
			s = s[len(prefix):]
			break
		}
	}
	if len(s) >= 4 && strings.EqualFold(s[:4], "doi:") {
		s = s[4:]
	}
	return strings.TrimSpace(s)
}

// Fetch returns the CSL-JSON document for a DOI.
func (r *Resolver) Fetch(ctx context.Context, doi string) ([]byte, error) {
	doi = Normalize(doi)
	if !strings.HasPrefix(doi, "10.") || !strings.Contains(doi, "/") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDOI, doi)
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/"+escapePath(doi), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", AcceptCSL)
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", doi, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, doi)
	case resp.StatusCode != http.StatusOK:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("doi: http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return data, nil
}

// escapePath escapes each path segment of a DOI, keeping its slashes.
func escapePath(doi string) string {
	parts := strings.Split(doi, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// Package zotero is a client for the Zotero Web API.
package zotero

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/matsen/bibnow/internal/reference"
)

const (
	// BaseURL is the Zotero Web API base URL.
	BaseURL = "https://api.zotero.org"

	// WebURL is the base of zotero.org library pages.
	WebURL = "https://www.zotero.org"

	// APIVersion is sent in the Zotero-API-Version header.
	APIVersion = "3"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit is the default number of requests per second.
	RateLimit = 1.0

	// DefaultStyle is the citation style used by FetchCitation.
	DefaultStyle = "chicago-author-date"
)

// Library kinds.
const (
	LibraryUser  = "user"
	LibraryGroup = "group"
)

// Library identifies a user or group library.
type Library struct {
	Kind string
	ID   string
}

// Prefix returns the API path prefix, "users/<id>" or "groups/<id>".
func (l Library) Prefix() string {
	if l.Kind == LibraryGroup {
		return "groups/" + l.ID
	}
	return "users/" + l.ID
}

// Response is the raw result of an upload. Body holds decoded JSON, or the
// response text when it is not JSON.
type Response struct {
	StatusCode int `json:"status_code"`
	Body       any `json:"body"`
}

// Client is a rate-limited Zotero Web API client.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	baseURL    string
	webURL     string
	library    Library
	username   string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the API key.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithLibrary selects the user or group library.
func WithLibrary(kind, id string) ClientOption {
	return func(c *Client) {
		c.library = Library{Kind: kind, ID: id}
	}
}

// WithUsername sets the zotero.org username used in item URLs.
func WithUsername(name string) ClientOption {
	return func(c *Client) {
		c.username = name
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom API base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithRateLimit sets the request rate in requests per second.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// NewClient creates a new Zotero client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
		webURL:     WebURL,
		library:    Library{Kind: LibraryUser},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Library returns the configured library.
func (c *Client) Library() Library {
	return c.library
}

// Upload posts one item to the library. Non-2xx responses are returned, not
// treated as errors; use Interpret and Response.Err. A transport failure
// returns status 0 and ErrNetworkError.
func (c *Client) Upload(ctx context.Context, dest reference.DestinationRecord) (Response, error) {
	payload, err := json.Marshal([]reference.DestinationRecord{dest})
	if err != nil {
		return Response{}, fmt.Errorf("encoding item: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.apiURL("items"), bytes.NewReader(payload), nil)
	if err != nil {
		return Response{StatusCode: 0, Body: err.Error()}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{StatusCode: resp.StatusCode}, fmt.Errorf("%w: reading response: %v", ErrNetworkError, err)
	}
	return Response{StatusCode: resp.StatusCode, Body: decodeBody(data)}, nil
}

// FetchCitation returns the formatted bibliography entry for an item.
func (c *Client) FetchCitation(ctx context.Context, key, style string) (string, error) {
	if style == "" {
		style = DefaultStyle
	}
	q := url.Values{}
	q.Set("format", "bib")
	q.Set("style", style)

	resp, err := c.do(ctx, http.MethodGet, c.apiURL("items/"+url.PathEscape(key))+"?"+q.Encode(), nil, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrNetworkError, err)
	}
	if err := checkStatus(resp.StatusCode, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// ItemVersion returns the current version of an item.
func (c *Client) ItemVersion(ctx context.Context, key string) (int, error) {
	resp, err := c.do(ctx, http.MethodGet, c.apiURL("items/"+url.PathEscape(key)), nil, nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: reading response: %v", ErrNetworkError, err)
	}
	if err := checkStatus(resp.StatusCode, data); err != nil {
		return 0, err
	}

	var item struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &item); err != nil {
		return 0, fmt.Errorf("%w: parsing item: %v", ErrInvalidResponse, err)
	}
	return item.Version, nil
}

// DeleteItem deletes an item, guarded by its current version.
func (c *Client) DeleteItem(ctx context.Context, key string, version int) error {
	headers := map[string]string{"If-Unmodified-Since-Version": strconv.Itoa(version)}
	resp, err := c.do(ctx, http.MethodDelete, c.apiURL("items/"+url.PathEscape(key)), nil, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	return checkStatus(resp.StatusCode, data)
}

// ItemURL returns the zotero.org page of an item.
func (c *Client) ItemURL(key string) string {
	if c.library.Kind == LibraryGroup {
		return fmt.Sprintf("%s/groups/%s/items/%s", c.webURL, c.library.ID, key)
	}
	owner := c.username
	if owner == "" {
		owner = c.library.ID
	}
	return fmt.Sprintf("%s/users/%s/items/%s", c.webURL, owner, key)
}

func (c *Client) apiURL(path string) string {
	return c.baseURL + "/" + c.library.Prefix() + "/" + path
}

func (c *Client) do(ctx context.Context, method, u string, body io.Reader, headers map[string]string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Zotero-API-Version", APIVersion)
	if c.apiKey != "" {
		req.Header.Set("Zotero-API-Key", c.apiKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	return resp, nil
}

func decodeBody(data []byte) any {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return string(data)
	}
	return v
}

// checkStatus maps non-2xx statuses to errors.
func checkStatus(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	switch status {
	case 401, 403:
		return fmt.Errorf("%w: %w", ErrAuthError, &UploadError{StatusCode: status, Message: msg})
	case 404:
		return fmt.Errorf("%w: %w", ErrNotFound, &UploadError{StatusCode: status, Message: msg})
	case 429:
		return fmt.Errorf("%w: %w", ErrRateLimited, &UploadError{StatusCode: status, Message: msg})
	}
	return &UploadError{StatusCode: status, Message: msg}
}

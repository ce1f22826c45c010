package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"github.com/muurk/argus/internal/logging"
	"github.com/muurk/argus/internal/urls"
)

const (
	// DefaultTimeout is the per-request timeout for directory requests
	DefaultTimeout = 10 * time.Second

	// DefaultMaxBodyBytes caps how much of a response body is read
	DefaultMaxBodyBytes = 8 << 20

	// DefaultUserAgent is sent unless the header set overrides it
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/110.0.0.0 Safari/537.36"
)

// DefaultHeaders returns the browser-like header set sent with every
// directory request. Host is left to the request URL.
func DefaultHeaders() http.Header {
	h := make(http.Header)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7")
	h.Set("Cache-Control", "max-age=0")
	h.Set("Connection", "keep-alive")
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("User-Agent", DefaultUserAgent)
	return h
}

// Client fetches the region catalog and listing pages from the directory
type Client struct {
	// BaseURL is the directory origin (e.g., "http://www.insecam.org")
	BaseURL string

	// Headers is sent with every request. A "Host" entry overrides the
	// request host.
	Headers http.Header

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// Timeout bounds each request individually (0 = DefaultTimeout)
	Timeout time.Duration

	// Limiter throttles requests when set (nil = unlimited)
	Limiter *rate.Limiter

	// MaxBodyBytes caps the bytes read per response (0 = DefaultMaxBodyBytes)
	MaxBodyBytes int64

	dialer *net.Dialer
}

// NewClient creates a directory client for the given origin.
// An empty baseURL selects urls.DefaultDirectory.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = urls.DefaultDirectory
	}

	// Connects and response headers are bounded by the per-request
	// context so SetTimeout covers the whole request
	dialer := &net.Dialer{KeepAlive: 30 * time.Second}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		BaseURL:      baseURL,
		Headers:      DefaultHeaders(),
		HTTPClient:   &http.Client{Transport: transport},
		Timeout:      DefaultTimeout,
		MaxBodyBytes: DefaultMaxBodyBytes,
		dialer:       dialer,
	}
}

// SetTimeout sets the per-request timeout. It bounds the whole request,
// connect and body read included.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.Timeout = timeout
}

// SetRate limits directory requests to rps requests per second.
// A non-positive rps removes the limit.
func (c *Client) SetRate(rps float64) {
	if rps <= 0 {
		c.Limiter = nil
		return
	}
	c.Limiter = rate.NewLimiter(rate.Limit(rps), 1)
}

// WithHeaders returns a shallow copy of the client that sends h instead of
// the configured header set. The receiver is not modified.
func (c *Client) WithHeaders(h http.Header) *Client {
	clone := *c
	clone.Headers = h.Clone()
	return &clone
}

// FetchCatalog fetches and decodes the region catalog.
// Any failure is reported as ErrTypeCatalogUnavailable.
func (c *Client) FetchCatalog(ctx context.Context) (Catalog, error) {
	body, status, err := c.get(ctx, urls.Catalog(c.BaseURL), false)
	if err != nil {
		return nil, NewCatalogError("catalog request failed", 0, err)
	}
	if !isSuccess(status) {
		return nil, NewCatalogError(fmt.Sprintf("catalog returned HTTP %d", status), status, nil)
	}

	var payload struct {
		Countries map[string]struct {
			Country string `json:"country"`
			Count   int    `json:"count"`
		} `json:"countries"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, NewCatalogError("malformed catalog response", 0, err)
	}
	if payload.Countries == nil {
		return nil, NewCatalogError("catalog response has no countries object", 0, nil)
	}

	catalog := make(Catalog, len(payload.Countries))
	for code, entry := range payload.Countries {
		catalog[code] = Region{Code: code, Name: entry.Country, Count: entry.Count}
	}

	logging.Debug("Catalog fetched", zap.Int("regions", len(catalog)), zap.Int("cameras", catalog.Total()))
	return catalog, nil
}

// ResolveLastPage fetches page 0 of the region and returns the last page
// index it advertises. When maxPages is positive and smaller than that
// index, maxPages is returned instead. Returns an ErrTypeNoListings error
// when the page carries no pager token.
func (c *Client) ResolveLastPage(ctx context.Context, code string, maxPages int) (int, error) {
	body, status, err := c.get(ctx, urls.Region(c.BaseURL, code), true)
	if err != nil {
		return 0, NewPageFetchError(code, 0, 0, err)
	}
	if !isSuccess(status) {
		return 0, NewPageFetchError(code, 0, status, nil)
	}

	last, ok := ParseLastPage(body)
	if !ok {
		return 0, NewNoListingsError(code)
	}

	if maxPages > 0 && maxPages < last {
		logging.Debug("Page cap applied",
			zap.String("region", code),
			zap.Int("last_page", last),
			zap.Int("max_pages", maxPages),
		)
		last = maxPages
	}
	return last, nil
}

// FetchPage fetches one listing page and returns its endpoint URLs in
// document order. Failures are reported as ErrTypePageFetch.
func (c *Client) FetchPage(ctx context.Context, code string, page int) ([]string, error) {
	body, status, err := c.get(ctx, urls.Page(c.BaseURL, code, page), true)
	if err != nil {
		return nil, NewPageFetchError(code, page, 0, err)
	}
	if !isSuccess(status) {
		return nil, NewPageFetchError(code, page, status, nil)
	}
	return ExtractEndpoints(body), nil
}

// get performs one GET and returns the body of a 2xx response. For other
// statuses the body is discarded and only the status is returned.
func (c *Client) get(ctx context.Context, target string, decode bool) ([]byte, int, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, 0, err
		}
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, err
	}
	for name, values := range c.Headers {
		if http.CanonicalHeaderKey(name) == "Host" {
			if len(values) > 0 {
				req.Host = values[0]
			}
			continue
		}
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		logging.Debug("Directory request failed",
			zap.String("url", target),
			zap.String("cause", ClassifyNetworkError(err).String()),
			zap.Error(err),
		)
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	logging.LogRequest(target, resp.StatusCode, time.Since(start))

	if !isSuccess(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, resp.StatusCode, nil
	}

	body, err := c.readBody(resp, decode)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// readBody reads up to MaxBodyBytes, converting HTML to UTF-8 when decode
// is set.
func (c *Client) readBody(resp *http.Response, decode bool) ([]byte, error) {
	limit := c.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil || !decode || len(raw) == 0 {
		return raw, err
	}

	r, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		// Extraction only needs ASCII, the raw body will do
		logging.Debug("Charset decoding skipped", zap.Error(err))
		return raw, nil
	}
	return io.ReadAll(r)
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

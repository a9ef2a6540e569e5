package fdsnws

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mohammed-shakir/fdsnws-client/internal/xmltree"
)

// Request outcomes reported to an Observer.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Observer receives request and cache events. Implementations must be safe
// for concurrent use.
type Observer interface {
	ObserveRequest(service, outcome string, d time.Duration)
	ObserveCache(service string, hit bool)
}

// ResponseCache stores raw 2xx XML bodies keyed by service and encoded
// query. Failures are logged and bypassed by the client.
//
// Set receives the time the upstream request started, so a cache can refuse
// a body fetched before its last invalidation.
type ResponseCache interface {
	Get(ctx context.Context, service, rawQuery string) ([]byte, bool, error)
	Set(ctx context.Context, service, rawQuery string, body []byte, fetchedAt time.Time) error
}

// DefaultMaxBodyBytes caps how much of a response body the client reads.
const DefaultMaxBodyBytes int64 = 64 << 20

type nopObserver struct{}

func (nopObserver) ObserveRequest(string, string, time.Duration) {}
func (nopObserver) ObserveCache(string, bool)                    {}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for every request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger. The client logs nothing by default.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

func WithCache(rc ResponseCache) Option {
	return func(c *Client) { c.cache = rc }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithMaxBodyBytes limits response bodies to n bytes. Larger responses fail
// with ErrResponseTooLarge. n <= 0 keeps DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

// Client talks to one FDSNWS server. It is safe for concurrent use; every
// query builder it hands out is independent.
type Client struct {
	baseURL   string
	http      *http.Client
	logger    *slog.Logger
	observer  Observer
	cache     ResponseCache
	userAgent string
	maxBody   int64

	// Station is the fdsnws-station service.
	Station *StationService
}

// New creates a client for the server at baseURL, for example
// "https://moho.iag.usp.br/fdsnws/". A trailing slash is removed.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		http:      http.DefaultClient,
		logger:    slog.New(slog.DiscardHandler),
		observer:  nopObserver{},
		userAgent: "fdsnws-client",
		maxBody:   DefaultMaxBodyBytes,
	}
	for _, o := range opts {
		o(c)
	}
	c.Station = &StationService{client: c}
	return c
}

// BaseURL returns the server URL without trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// request performs a GET on baseURL+path. With asXML the body is decoded to
// a tree, otherwise it is returned as a string. A 404 yields (nil, nil), and
// so does an empty XML body such as a 204 No Content. Any other non-2xx
// status yields *HTTPError.
func (c *Client) request(ctx context.Context, service, path string, q Query, asXML bool) (any, error) {
	rawQuery := ""
	if q != nil {
		rawQuery = q.Encode()
	}

	if asXML && c.cache != nil {
		body, ok, err := c.cache.Get(ctx, service, rawQuery)
		if err != nil {
			c.logger.WarnContext(ctx, "fdsnws cache get failed", "service", service, "err", err)
		}
		if err == nil {
			c.observer.ObserveCache(service, ok)
		}
		if ok {
			if tree, err := decodeXML(body); err == nil {
				return tree, nil
			}
			c.logger.WarnContext(ctx, "fdsnws cached body is not valid xml; refetching", "service", service)
		}
	}

	start := time.Now()
	body, err := c.get(ctx, c.baseURL+path, rawQuery)
	dur := time.Since(start)

	var he *HTTPError
	switch {
	case errors.As(err, &he) && he.Status == http.StatusNotFound:
		c.observer.ObserveRequest(service, OutcomeNotFound, dur)
		c.logger.DebugContext(ctx, "fdsnws no data", "path", path, "query", rawQuery, "duration", dur.String())
		return nil, nil
	case err != nil:
		c.observer.ObserveRequest(service, OutcomeError, dur)
		c.logger.DebugContext(ctx, "fdsnws request failed", "path", path, "query", rawQuery, "err", err)
		return nil, err
	}
	if asXML && len(bytes.TrimSpace(body)) == 0 {
		c.observer.ObserveRequest(service, OutcomeNotFound, dur)
		c.logger.DebugContext(ctx, "fdsnws empty response", "path", path, "query", rawQuery, "duration", dur.String())
		return nil, nil
	}
	c.observer.ObserveRequest(service, OutcomeOK, dur)
	c.logger.DebugContext(ctx, "fdsnws request done",
		"path", path, "query", rawQuery, "bytes", len(body), "duration", dur.String())

	if !asXML {
		return string(body), nil
	}
	tree, err := decodeXML(body)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		if err := c.cache.Set(ctx, service, rawQuery, body, start); err != nil {
			c.logger.WarnContext(ctx, "fdsnws cache set failed", "service", service, "err", err)
		}
	}
	return tree, nil
}

// get is the raw GET primitive.
func (c *Client) get(ctx context.Context, url, rawQuery string) ([]byte, error) {
	if rawQuery != "" {
		url += "?" + rawQuery
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("read body: %w (limit %d bytes)", ErrResponseTooLarge, c.maxBody)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func decodeXML(body []byte) (map[string]any, error) {
	tree, err := xmltree.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, malformed("", err)
	}
	return tree, nil
}

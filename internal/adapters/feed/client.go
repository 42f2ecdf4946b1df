package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/escala/pkg/logger"
	"github.com/okian/escala/pkg/metrics"
)

// Upstream paths relative to the base URL.
const (
	MarketPath   = "/atletas/mercado"
	FixturesPath = "/partidas"
)

const (
	defaultBaseURL   = "https://api.cartola.globo.com"
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "escala/1.0"
	maxBodyBytes     = 32 << 20
)

// Client reads the market and fixture endpoints.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
	logger    logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL points the client at another host, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient returns a Client for the public API with a 10s timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: defaultTimeout},
		baseURL:   defaultBaseURL,
		userAgent: defaultUserAgent,
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch downloads the market and the fixture list and normalizes them.
// Any transport, status or decode failure wraps ErrUpstream.
func (c *Client) Fetch(ctx context.Context) (Snapshot, error) {
	start := time.Now()

	var market marketPayload
	if err := c.getJSON(ctx, MarketPath, &market); err != nil {
		metrics.RecordFeedFetch("error", msSince(start))
		return Snapshot{}, err
	}
	var fixtures fixturesPayload
	if err := c.getJSON(ctx, FixturesPath, &fixtures); err != nil {
		metrics.RecordFeedFetch("error", msSince(start))
		return Snapshot{}, err
	}

	snap := Snapshot{
		Players:    normalize(market, fixtures),
		MarketOpen: market.StatusMercado == marketOpen,
		FetchedAt:  time.Now().UTC(),
	}
	metrics.RecordFeedFetch("ok", msSince(start))
	metrics.UpdateFeedPlayers(len(snap.Players))

	c.logger.Info(ctx, "feed fetched",
		logger.Int("athletes", len(market.Atletas)),
		logger.Int("players", len(snap.Players)),
		logger.Int("fixtures", len(fixtures.Partidas)),
		logger.Bool("market_open", snap.MarketOpen),
		logger.Duration("took", time.Since(start)),
	)
	return snap, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: build request %s: %w", ErrUpstream, path, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %w", ErrUpstream, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", ErrUpstream, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: GET %s returned %d", ErrUpstream, path, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrUpstream, path, err)
	}
	return nil
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}

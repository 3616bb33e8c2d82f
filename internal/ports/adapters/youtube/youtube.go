package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/forPelevin/ytdigest/internal/resilience"
	"github.com/forPelevin/ytdigest/internal/types"
)

const (
	DefaultAPIBase   = "https://www.googleapis.com/youtube/v3"
	DefaultWatchBase = "https://www.youtube.com"

	defaultPageSize        = 50
	defaultMaxItems        = 200
	defaultPlaylistTimeout = 30 * time.Second
	userAgent              = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"
)

// Client talks to the YouTube Data API for metadata and playlists and scrapes
// the watch page for caption tracks.
type Client struct {
	apiKey    string
	apiBase   string
	watchBase string
	http      *http.Client
	retry     resilience.RetryPolicy
	pages     *rate.Limiter
	langs     []string
	log       *slog.Logger

	pageSize        int
	maxItems        int
	playlistTimeout time.Duration
}

type Option func(*Client)

func WithAPIBase(u string) Option   { return func(c *Client) { c.apiBase = u } }
func WithWatchBase(u string) Option { return func(c *Client) { c.watchBase = u } }

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

func WithRetry(p resilience.RetryPolicy) Option { return func(c *Client) { c.retry = p } }

// WithPageRate sets how often playlist pages may be requested.
func WithPageRate(r rate.Limit) Option { return func(c *Client) { c.pages = rate.NewLimiter(r, 1) } }

func WithMaxItems(n int) Option { return func(c *Client) { c.maxItems = n } }

func WithPlaylistTimeout(d time.Duration) Option { return func(c *Client) { c.playlistTimeout = d } }

func WithLanguages(langs ...string) Option { return func(c *Client) { c.langs = langs } }

func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.log = l } }

func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:          apiKey,
		apiBase:         DefaultAPIBase,
		watchBase:       DefaultWatchBase,
		http:            &http.Client{Timeout: 30 * time.Second},
		pages:           rate.NewLimiter(rate.Every(time.Second), 1),
		langs:           []string{"en"},
		log:             slog.Default(),
		pageSize:        defaultPageSize,
		maxItems:        defaultMaxItems,
		playlistTimeout: defaultPlaylistTimeout,
	}
	c.retry = resilience.RetryPolicy{
		MaxAttempts:  5,
		InitialWait:  time.Second,
		MaxWait:      16 * time.Second,
		Multiplier:   2,
		NonRetryable: func(err error) bool { return !transient(err) },
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// transient reports the upstream failures worth retrying: 429, 500 and 503.
func transient(err error) bool {
	return errors.Is(err, types.ErrRateLimited) || errors.Is(err, types.ErrServer)
}

// statusError maps a non-2xx response. missing is returned for 403/404 since
// the API uses both for private or deleted resources.
func statusError(code int, body []byte, missing error) error {
	switch code {
	case http.StatusTooManyRequests:
		return fmt.Errorf("youtube status %d: %w", code, types.ErrRateLimited)
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		return fmt.Errorf("youtube status %d: %w", code, types.ErrServer)
	case http.StatusForbidden, http.StatusNotFound:
		return fmt.Errorf("youtube status %d: %w", code, missing)
	default:
		return fmt.Errorf("youtube status %d: %s", code, truncate(string(body), 300))
	}
}

// get performs a GET with retries and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, url string, missing error, limit int64) ([]byte, error) {
	return resilience.Retry(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
		if err != nil {
			return nil, fmt.Errorf("read youtube response: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, statusError(resp.StatusCode, body, missing)
		}
		return body, nil
	})
}

func (c *Client) getJSON(ctx context.Context, url string, missing error, out any) error {
	body, err := c.get(ctx, url, missing, 4<<20)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode youtube response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

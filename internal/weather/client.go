package weather

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"
)

const dateLayout = "2006-01-02"

// Client provides access to the weather provider's REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger

	maxRetries   int
	retryBackoff time.Duration

	// Daily responses are immutable once the day has passed, so a small
	// LRU avoids refetching during repeated merges.
	cache *lru.Cache[string, Daily]
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new weather REST client.
func NewClient(baseURL, apiKey string, opts ...ClientOption) (*Client, error) {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:       slog.Default(),
		maxRetries:   3,
		retryBackoff: time.Second,
	}

	cache, err := lru.New[string, Daily](4096)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	c.cache = cache

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry configuration.
func WithRetries(max int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = max
		c.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithCacheSize resizes the daily-response cache.
func WithCacheSize(n int) ClientOption {
	return func(c *Client) {
		c.cache.Resize(n)
	}
}

// Stations fetches the provider's station catalog.
func (c *Client) Stations(ctx context.Context) ([]Station, error) {
	var out struct {
		Stations []Station `json:"stations"`
	}
	if err := c.get(ctx, "/v1/stations", nil, &out); err != nil {
		return nil, err
	}
	return out.Stations, nil
}

// Day fetches one station's daily record. Answers come from the cache when
// the date was fetched before.
func (c *Client) Day(ctx context.Context, station string, date time.Time) (Daily, error) {
	key := station + "|" + date.Format(dateLayout)
	if d, ok := c.cache.Get(key); ok {
		return d, nil
	}

	q := url.Values{}
	q.Set("station", station)
	q.Set("date", date.Format(dateLayout))

	var d Daily
	if err := c.get(ctx, "/v1/daily", q, &d); err != nil {
		return Daily{}, err
	}
	c.cache.Add(key, d)
	return d, nil
}

// DayRange fetches daily records for [from, to], inclusive.
func (c *Client) DayRange(ctx context.Context, station string, from, to time.Time) ([]Daily, error) {
	q := url.Values{}
	q.Set("station", station)
	q.Set("from", from.Format(dateLayout))
	q.Set("to", to.Format(dateLayout))

	var out struct {
		Days []Daily `json:"days"`
	}
	if err := c.get(ctx, "/v1/daily/range", q, &out); err != nil {
		return nil, err
	}
	for _, d := range out.Days {
		c.cache.Add(d.Station+"|"+d.Date.Format(dateLayout), d)
	}
	return out.Days, nil
}

// doRequest performs an HTTP request with the given method and path.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	return body, nil
}

// doWithRetry performs a request with exponential backoff retry.
func (c *Client) doWithRetry(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Add jitter: backoff * (0.5 to 1.5)
			jitter := backoff/2 + time.Duration(rand.Int63n(int64(backoff)))
			c.logger.Debug("retrying request",
				"attempt", attempt,
				"backoff", jitter,
				"path", path,
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(jitter):
			}

			backoff *= 2
		}

		body, err := c.doRequest(ctx, method, path, query)
		if err == nil {
			return body, nil
		}

		lastErr = err

		apiErr, ok := err.(*APIError)
		if !ok || !apiErr.IsRetryable() {
			return nil, err
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// get performs a GET request with retries and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	body, err := c.doWithRetry(ctx, http.MethodGet, path, query)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}

package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s (%s)", e.StatusCode, e.Status, e.URL)
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// IsNotFound reports whether err is a 404 StatusError.
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

// ClientConfig configures a Client. Zero values pick the defaults noted on
// each field.
type ClientConfig struct {
	// HTTPClient performs requests, e.g. an oauth2 client that injects
	// bearer tokens. Default: a plain client with Timeout.
	HTTPClient *http.Client

	// UserAgent header. Default: "ranksim".
	UserAgent string

	// Timeout for the default HTTPClient. Default: 60s.
	Timeout time.Duration

	// RequestsPerSecond caps the request rate. Zero disables limiting.
	RequestsPerSecond float64
	Burst             int

	// FailureThreshold is the number of consecutive failures that opens
	// the circuit breaker. Default: 5.
	FailureThreshold uint32

	// MaxRetries for temporary failures (429, 5xx, transport errors).
	// Default: 3.
	MaxRetries int

	// RetryCooldown is the first retry delay; each retry multiplies it by 4.
	// Default: 200ms.
	RetryCooldown time.Duration
}

// Client wraps HTTP operations for metadata providers.
//
// Client provides:
//   - Configured User-Agent header
//   - Request rate limiting
//   - A circuit breaker that stops hammering a failing API
//   - Retries with exponential backoff, honoring Retry-After
//   - JSON decoding
//
// Example usage:
//
//	client := NewClient(ClientConfig{HTTPClient: oauthClient, RequestsPerSecond: 5})
//
//	var album dto.Album
//	err := client.GetJSON(ctx, "https://api.spotify.com/v1/albums/"+id, &album)
type Client struct {
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
	maxRetries int
	cooldown   time.Duration
}

// NewClient creates a new Client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "ranksim"
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryCooldown <= 0 {
		cfg.RetryCooldown = 200 * time.Millisecond
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	threshold := cfg.FailureThreshold
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "http",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Client errors such as 404 say nothing about the API's health.
		IsSuccessful: func(err error) bool {
			var se *StatusError
			if errors.As(err, &se) {
				return !se.Temporary()
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &Client{
		httpClient: cfg.HTTPClient,
		userAgent:  cfg.UserAgent,
		limiter:    limiter,
		breaker:    breaker,
		maxRetries: cfg.MaxRetries,
		cooldown:   cfg.RetryCooldown,
	}
}

// Get performs a GET request and returns the response body as bytes.
//
// Temporary failures are retried up to MaxRetries times. Returns a
// *StatusError for non-2xx responses and gobreaker.ErrOpenState while the
// breaker is open.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for tries := 0; tries <= c.maxRetries; tries++ {
		if tries > 0 {
			if err := c.waitForRetry(ctx, tries-1, lastErr); err != nil {
				return nil, err
			}
		}

		body, err := c.breaker.Execute(func() ([]byte, error) {
			return c.do(ctx, url)
		})
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !retryable(err) || ctx.Err() != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// GetJSON performs a GET request and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	body, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// DownloadBytes downloads a file and returns the bytes in memory.
//
// Use this for small files like cover art images.
func (c *Client) DownloadBytes(ctx context.Context, url string) ([]byte, error) {
	return c.Get(ctx, url)
}

func (c *Client) do(ctx context.Context, url string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	return io.ReadAll(resp.Body)
}

func retryable(err error) bool {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}

func (c *Client) waitForRetry(ctx context.Context, tries int, lastErr error) error {
	cooldown := time.Duration(float64(c.cooldown) * math.Pow(4, float64(tries)))
	var se *StatusError
	if errors.As(lastErr, &se) && se.RetryAfter > cooldown {
		cooldown = se.RetryAfter
	}

	timer := time.NewTimer(cooldown)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

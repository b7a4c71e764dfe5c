package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/charterdesk/charterdesk/internal/logging"
	"github.com/charterdesk/charterdesk/internal/version"
	"github.com/charterdesk/charterdesk/internal/yacht"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for failed GET requests
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the default delay between retry attempts
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultMaxRetryDelay is the maximum delay for exponential backoff
	DefaultMaxRetryDelay = 10 * time.Second

	// DefaultTypeCacheDuration is how long the yacht type list is cached
	DefaultTypeCacheDuration = 5 * time.Minute

	// IdempotencyHeader carries the per-submission key on reservation requests
	IdempotencyHeader = "Idempotency-Key"
)

const (
	availabilityPath = "/api/yachts/availability"
	reservationsPath = "/api/reservations"
	yachtTypesPath   = "/api/yacht-types"
	healthPath       = "/api/health"
)

// Client talks to the reservation backend over HTTP+JSON.
// It satisfies the availability, reservation and type-listing interfaces
// consumed by the panel package.
type Client struct {
	// BaseURL is the backend root (e.g., "http://localhost:8080")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// MaxRetries is the maximum number of retry attempts for GET requests.
	// Reservation creation is never retried.
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts
	RetryDelay time.Duration

	// MaxRetryDelay is the maximum delay for exponential backoff
	MaxRetryDelay time.Duration

	// UseExponentialBackoff enables exponential backoff for retries
	UseExponentialBackoff bool

	// TypeCacheDuration is how long to cache the yacht type list (0 = no cache)
	TypeCacheDuration time.Duration

	// newKey generates idempotency keys; replaced in tests
	newKey func() string

	cachedTypes []string
	cacheTime   time.Time
	cacheMutex  sync.RWMutex
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:               strings.TrimRight(baseURL, "/"),
		HTTPClient:            &http.Client{Timeout: DefaultTimeout},
		MaxRetries:            DefaultMaxRetries,
		RetryDelay:            DefaultRetryDelay,
		MaxRetryDelay:         DefaultMaxRetryDelay,
		UseExponentialBackoff: true,
		TypeCacheDuration:     DefaultTypeCacheDuration,
		newKey:                func() string { return uuid.NewString() },
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// SetRetry configures retry behavior
func (c *Client) SetRetry(maxRetries int, retryDelay time.Duration) {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
}

// Ping performs a health check against the backend
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, c.BaseURL+healthPath, nil, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return newHTTPError(resp.StatusCode, readMessage(resp.Body))
	}
	return nil
}

// Availability returns the yachts matching criteria together with their
// availability for the reservation date. The slice is in backend order.
func (c *Client) Availability(ctx context.Context, criteria yacht.Criteria) ([]yacht.Record, error) {
	q := url.Values{}
	q.Set("reservationDate", criteria.ReservationDate)
	q.Set("yachtType", criteria.TypeFilter())
	if criteria.MinimumCapacity > 0 {
		q.Set("minimumCapacity", strconv.Itoa(criteria.MinimumCapacity))
	}
	endpoint := c.BaseURL + availabilityPath + "?" + q.Encode()

	var records []yacht.Record
	err := c.withRetry(ctx, http.MethodGet, endpoint, func() error {
		records = nil
		return c.getJSON(ctx, endpoint, &records)
	})
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []yacht.Record{}
	}
	return records, nil
}

type yachtTypeDTO struct {
	Name string `json:"name"`
}

// YachtTypes returns the yacht type names known to the backend.
// Results are cached for TypeCacheDuration.
func (c *Client) YachtTypes(ctx context.Context) ([]string, error) {
	if c.TypeCacheDuration > 0 {
		c.cacheMutex.RLock()
		if c.cachedTypes != nil && time.Since(c.cacheTime) < c.TypeCacheDuration {
			cached := slices.Clone(c.cachedTypes)
			c.cacheMutex.RUnlock()
			return cached, nil
		}
		c.cacheMutex.RUnlock()
	}

	var dtos []yachtTypeDTO
	err := c.withRetry(ctx, http.MethodGet, c.BaseURL+yachtTypesPath, func() error {
		dtos = nil
		return c.getJSON(ctx, c.BaseURL+yachtTypesPath, &dtos)
	})
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(dtos))
	for _, d := range dtos {
		if d.Name != "" {
			names = append(names, d.Name)
		}
	}

	if c.TypeCacheDuration > 0 {
		c.cacheMutex.Lock()
		c.cachedTypes = slices.Clone(names)
		c.cacheTime = time.Now()
		c.cacheMutex.Unlock()
	}
	return names, nil
}

// InvalidateCache clears the cached yacht type list
func (c *Client) InvalidateCache() {
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()
	c.cachedTypes = nil
	c.cacheTime = time.Time{}
}

type confirmationDTO struct {
	Confirmation string `json:"confirmation"`
}

// CreateReservation submits r and returns the backend's confirmation text.
// The request is sent once; a duplicate-booking conflict is reported as an
// Error of type ErrTypeDuplicate.
func (c *Client) CreateReservation(ctx context.Context, r yacht.Reservation) (string, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return "", newParseError("failed to encode reservation", err)
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set(IdempotencyHeader, c.newKey())

	logging.LogRequest(http.MethodPost, c.BaseURL+reservationsPath, 1)
	resp, err := c.do(ctx, http.MethodPost, c.BaseURL+reservationsPath, bytes.NewReader(body), headers)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", newHTTPError(resp.StatusCode, readMessage(resp.Body))
	}

	var out confirmationDTO
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", newParseError("failed to parse reservation response", err)
	}
	return out.Confirmation, nil
}

// withRetry runs attempt until it succeeds, returns a non-retryable error,
// exhausts MaxRetries or ctx is done.
func (c *Client) withRetry(ctx context.Context, method, endpoint string, attempt func() error) error {
	var lastErr error
	currentDelay := c.RetryDelay

	for i := 0; i <= c.MaxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(currentDelay):
			}

			if c.UseExponentialBackoff {
				currentDelay *= 2
				if currentDelay > c.MaxRetryDelay {
					currentDelay = c.MaxRetryDelay
				}
			}
		}

		logging.LogRequest(method, endpoint, i+1)
		err := attempt()
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !IsRetryable(err) {
			return err
		}
		logging.Warn("Retrying backend request",
			zap.String("url", endpoint),
			zap.Duration("delay", currentDelay),
			zap.Error(err),
		)
	}

	return lastErr
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return newHTTPError(resp.StatusCode, readMessage(resp.Body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return classifyNetworkError("failed to read response body", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return newParseError("failed to parse JSON response", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, headers http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, &Error{Type: ErrTypeUnknown, Message: "failed to create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	for k, v := range headers {
		req.Header[k] = v
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, classifyNetworkError(fmt.Sprintf("%s %s failed", method, req.URL.Path), err)
	}
	logging.LogResponse(method, endpoint, resp.StatusCode, time.Since(start))
	return resp, nil
}

type messageDTO struct {
	Message string `json:"message"`
}

// readMessage extracts the backend's error message from a failed response.
// Non-JSON bodies are returned as trimmed text.
func readMessage(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(body) == 0 {
		return ""
	}
	var m messageDTO
	if json.Unmarshal(body, &m) == nil && m.Message != "" {
		return m.Message
	}
	return strings.TrimSpace(string(body))
}

package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"sportsync/ingestion/internal/metrics"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const maxBodyBytes = 32 << 20

// ErrorKind classifies a FetchError by whether a later attempt may succeed.
type ErrorKind int

const (
	Transient ErrorKind = iota + 1
	Permanent
)

func (k ErrorKind) String() string {
	switch k {
	case Transient:
		return "transient"
	case Permanent:
		return "permanent"
	default:
		return "unknown"
	}
}

var (
	ErrTransient = crerr.New("transient fetch failure")
	ErrPermanent = crerr.New("permanent fetch failure")
)

// FetchError is returned by Fetch for non-2xx statuses, transport failures
// and bodies that are not JSON. URL is always redacted.
type FetchError struct {
	Kind    ErrorKind
	Status  int
	URL     string
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s fetch of %s failed", e.Kind, e.URL)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is lets errors.Is match the ErrTransient and ErrPermanent sentinels.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrTransient:
		return e.Kind == Transient
	case ErrPermanent:
		return e.Kind == Permanent
	}
	return false
}

// Retryable reports whether the caller may retry the request later.
func (e *FetchError) Retryable() bool { return e.Kind == Transient }

// IsTransient reports whether err is, or wraps, a transient FetchError.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// Response is a successful fetch. Body is guaranteed to be valid JSON; it may
// still encode a provider-level failure.
type Response struct {
	URL    string
	Status int
	Body   []byte
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	if err := sonic.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", RedactURL(r.URL), err)
	}
	return nil
}

// Fetcher issues a single GET and returns the JSON body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) (*Response, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) (*Response, error) {
	return f(ctx, url)
}

// Options configures a Client.
type Options struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	UserAgent         string
	Headers           map[string]string
	HTTPClient        *http.Client
}

// Client is a rate limited JSON-over-HTTP client. It never retries.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	headers    map[string]string
}

// NewClient creates a new fetch client
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "sportsync-ingestion/1.0"
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        200,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return &Client{
		httpClient: httpClient,
		limiter:    limiter,
		userAgent:  opts.UserAgent,
		headers:    opts.Headers,
	}
}

// Fetch performs a GET request and classifies every failure as a FetchError
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	safeURL := RedactURL(rawURL)
	host := hostOf(rawURL)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &FetchError{Kind: Transient, URL: safeURL, Message: "rate limit wait", Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{Kind: Permanent, URL: safeURL, Message: "invalid request", Err: redactErr(err, safeURL)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	log.Ctx(ctx).Debug().
		Str("url", safeURL).
		Str("method", req.Method).
		Msg("Making API request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPICall(host, "error", time.Since(start).Seconds())
		return nil, &FetchError{Kind: Transient, URL: safeURL, Message: "request failed", Err: redactErr(err, safeURL)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	metrics.RecordAPICall(host, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
	if err != nil {
		return nil, &FetchError{Kind: Transient, Status: resp.StatusCode, URL: safeURL, Message: "failed to read response body", Err: err}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// handled below

	case resp.StatusCode == http.StatusRequestTimeout,
		resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode >= 500:
		log.Ctx(ctx).Warn().
			Str("url", safeURL).
			Int("status", resp.StatusCode).
			Msg("API returned transient error status")
		return nil, &FetchError{Kind: Transient, Status: resp.StatusCode, URL: safeURL, Message: truncate(body, 200)}

	default:
		log.Ctx(ctx).Warn().
			Str("url", safeURL).
			Int("status", resp.StatusCode).
			Msg("API returned permanent error status")
		return nil, &FetchError{Kind: Permanent, Status: resp.StatusCode, URL: safeURL, Message: truncate(body, 200)}
	}

	if !sonic.Valid(body) {
		return nil, &FetchError{Kind: Permanent, Status: resp.StatusCode, URL: safeURL, Message: "response body is not valid JSON"}
	}

	log.Ctx(ctx).Debug().
		Str("url", safeURL).
		Int("status", resp.StatusCode).
		Int("size", len(body)).
		Msg("API request successful")

	return &Response{URL: rawURL, Status: resp.StatusCode, Body: body}, nil
}

var secretParams = []string{"key", "api_key", "apikey", "api_token", "token"}

// RedactURL masks credential query parameters so the URL is safe to log.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	q := u.Query()
	changed := false
	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, "REDACTED")
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}

// redactErr strips the request URL out of *url.Error so keys never reach logs.
func redactErr(err error, safeURL string) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return &url.Error{Op: ue.Op, URL: safeURL, Err: ue.Err}
	}
	return err
}

func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}

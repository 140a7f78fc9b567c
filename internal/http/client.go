package http

import (
	"context"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/metalwarrior665/apify-client-go/internal/constants"
	"github.com/metalwarrior665/apify-client-go/internal/telemetry"
	"github.com/metalwarrior665/apify-client-go/pkg/apify"
)

// SleepFunc waits for d or until ctx is done, whichever comes first.
type SleepFunc func(ctx context.Context, d time.Duration) error

// RetryLimits are the per-category retry budgets.
type RetryLimits struct {
	RateLimit     int
	ServerFailure int
	Timeout       int
}

// DefaultRetryLimits returns the production budgets.
func DefaultRetryLimits() RetryLimits {
	return RetryLimits{
		RateLimit:     constants.DefaultMaxRateLimitRetries,
		ServerFailure: constants.DefaultMaxServerFailureRetries,
		Timeout:       constants.DefaultMaxTimeoutRetries,
	}
}

// Client sends requests to the Apify API and owns the retry policy.
// It is safe for concurrent use; WithToken derives a copy.
type Client struct {
	baseURL    string
	token      string
	httpClient *retryablehttp.Client
	limiter    *rate.Limiter
	logger     apify.Logger
	debug      bool
	userAgent  string
	limits     RetryLimits
	baseDelay  time.Duration
	sleep      SleepFunc
	metrics    *telemetry.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger apify.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables per-attempt logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithRetryLimits overrides the retry budgets. Non-positive values keep the default.
func WithRetryLimits(limits RetryLimits) Option {
	return func(c *Client) {
		if limits.RateLimit > 0 {
			c.limits.RateLimit = limits.RateLimit
		}

		if limits.ServerFailure > 0 {
			c.limits.ServerFailure = limits.ServerFailure
		}

		if limits.Timeout > 0 {
			c.limits.Timeout = limits.Timeout
		}
	}
}

// WithRetryBaseDelay sets the backoff base.
func WithRetryBaseDelay(d time.Duration) Option {
	return func(c *Client) {
		c.baseDelay = d
	}
}

// WithSleep replaces the backoff sleep, mainly for tests.
func WithSleep(sleep SleepFunc) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// WithRateLimiter throttles attempts client-side.
func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// WithMetrics records request metrics.
func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithHTTPTimeout bounds each attempt. Expiry is classified as a timeout.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.HTTPClient.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying pooled client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient.HTTPClient = httpClient
		}
	}
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: newTransport(),
		userAgent:  constants.DefaultUserAgent,
		limits:     DefaultRetryLimits(),
		baseDelay:  constants.DefaultRetryBaseDelay,
		sleep:      sleepContext,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// newTransport returns a retryablehttp client reduced to a single attempt.
// Retry classification and backoff live in Do; retryablehttp contributes the
// pooled connections and the rewindable request body.
func newTransport() *retryablehttp.Client {
	transport := retryablehttp.NewClient()
	transport.RetryMax = 0
	transport.CheckRetry = func(context.Context, *http.Response, error) (bool, error) {
		return false, nil
	}
	transport.ErrorHandler = retryablehttp.PassthroughErrorHandler
	// Its request logging prints full URLs, which carry the token.
	transport.Logger = nil
	transport.HTTPClient.Timeout = constants.DefaultHTTPTimeout

	return transport
}

// WithToken returns a client sharing the transport but authenticating with token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token

	return &clone
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HasToken reports whether a token is configured.
func (c *Client) HasToken() bool {
	return c.token != ""
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package client

import (
	"fmt"
	"os"

	"golang.org/x/time/rate"

	"github.com/metalwarrior665/apify-client-go/internal/constants"
	"github.com/metalwarrior665/apify-client-go/internal/http"
	"github.com/metalwarrior665/apify-client-go/internal/telemetry"
	"github.com/metalwarrior665/apify-client-go/pkg/apify"
)

// Client implements the apify.Client interface.
type Client struct {
	httpClient *http.Client
	config     apify.Config

	// Resource clients
	datasets       *DatasetsClient
	runs           *RunsClient
	keyValueStores *KeyValueStoresClient
}

// New creates a client from an already normalized config (see apifyclient.New).
func New(config *apify.Config, opts ...http.Option) (*Client, error) {
	if config == nil {
		return nil, apify.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, apify.ErrInvalidBaseURL
	}

	if config.RetryBaseDelay < 0 {
		return nil, apify.ErrNegativeRetryBaseDelay
	}

	if config.MaxRateLimitRetries < 0 || config.MaxServerFailureRetries < 0 || config.MaxTimeoutRetries < 0 {
		return nil, apify.ErrNegativeRetryLimit
	}

	logger := config.Logger
	if logger == nil && config.Debug {
		logger = telemetry.NewLogger("debug", os.Stderr)
	}

	metrics, err := telemetry.NewMetrics(config.MetricsRegisterer)
	if err != nil {
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	httpOpts := []http.Option{
		http.WithLogger(logger),
		http.WithDebug(config.Debug),
		http.WithRetryBaseDelay(config.RetryBaseDelay),
		http.WithRetryLimits(http.RetryLimits{
			RateLimit:     config.MaxRateLimitRetries,
			ServerFailure: config.MaxServerFailureRetries,
			Timeout:       config.MaxTimeoutRetries,
		}),
		http.WithHTTPTimeout(config.HTTPTimeout),
		http.WithUserAgent(config.UserAgent),
		http.WithMetrics(metrics),
	}

	if config.RateLimit > 0 {
		burst := config.RateBurst
		if burst <= 0 {
			burst = constants.DefaultRateBurst
		}

		httpOpts = append(httpOpts, http.WithRateLimiter(rate.NewLimiter(rate.Limit(config.RateLimit), burst)))
	}

	httpClient := http.NewClient(config.BaseURL, config.Token, append(httpOpts, opts...)...)

	return newClient(httpClient, *config), nil
}

func newClient(httpClient *http.Client, config apify.Config) *Client {
	client := &Client{
		httpClient: httpClient,
		config:     config,
	}

	client.initializeResourceClients()

	return client
}

func (c *Client) initializeResourceClients() {
	c.datasets = NewDatasetsClient(c.httpClient)
	c.runs = NewRunsClient(c.httpClient)
	c.keyValueStores = NewKeyValueStoresClient(c.httpClient)
}

// Datasets implements apify.Client.Datasets.
func (c *Client) Datasets() apify.DatasetsClient {
	return c.datasets
}

// Runs implements apify.Client.Runs.
func (c *Client) Runs() apify.RunsClient {
	return c.runs
}

// KeyValueStores implements apify.Client.KeyValueStores.
func (c *Client) KeyValueStores() apify.KeyValueStoresClient {
	return c.keyValueStores
}

// WithToken implements apify.Client.WithToken.
func (c *Client) WithToken(token string) apify.Client {
	return newClient(c.httpClient.WithToken(token), c.config.WithToken(token))
}

// Config implements apify.Client.Config.
func (c *Client) Config() apify.Config {
	return c.config
}

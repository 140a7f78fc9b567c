package apifyclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"

	"github.com/metalwarrior665/apify-client-go/internal/client"
	"github.com/metalwarrior665/apify-client-go/internal/constants"
	"github.com/metalwarrior665/apify-client-go/pkg/apify"
)

// New creates a new Apify API client. The config is copied; zero values are
// replaced with defaults and BaseURL is normalized.
func New(config *apify.Config) (apify.Client, error) {
	if config == nil {
		return nil, apify.ErrConfigRequired
	}

	normalized := *config

	baseURL, err := normalizeBaseURL(normalized.BaseURL)
	if err != nil {
		return nil, err
	}

	normalized.BaseURL = baseURL

	if normalized.RetryBaseDelay == 0 {
		normalized.RetryBaseDelay = constants.DefaultRetryBaseDelay
	}

	if normalized.HTTPTimeout == 0 {
		normalized.HTTPTimeout = constants.DefaultHTTPTimeout
	}

	if normalized.MaxRateLimitRetries == 0 {
		normalized.MaxRateLimitRetries = constants.DefaultMaxRateLimitRetries
	}

	if normalized.MaxServerFailureRetries == 0 {
		normalized.MaxServerFailureRetries = constants.DefaultMaxServerFailureRetries
	}

	if normalized.MaxTimeoutRetries == 0 {
		normalized.MaxTimeoutRetries = constants.DefaultMaxTimeoutRetries
	}

	if normalized.UserAgent == "" {
		normalized.UserAgent = constants.DefaultUserAgent
	}

	c, err := client.New(&normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// normalizeBaseURL trims a trailing slash and adds "https://" when no scheme is given.
func normalizeBaseURL(raw string) (string, error) {
	if raw == "" {
		return constants.DefaultBaseURL, nil
	}

	baseURL := strings.TrimSpace(raw)
	if !strings.Contains(baseURL, "://") {
		baseURL = "https://" + baseURL
	}

	baseURL = strings.TrimSuffix(baseURL, "/")

	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", fmt.Errorf("%w: %q", apify.ErrInvalidBaseURL, raw)
	}

	return baseURL, nil
}

// NewWithToken creates a client for the production API authenticating with token.
func NewWithToken(token string) (apify.Client, error) {
	return New(&apify.Config{Token: token})
}

// NewFromEnv creates a client configured from APIFY_TOKEN, APIFY_API_BASE_URL,
// APIFY_DEBUG and APIFY_RETRY_BASE_DELAY (a duration such as "250ms").
func NewFromEnv() (apify.Client, error) {
	config, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}

	return New(config)
}

// ConfigFromEnv reads the client configuration from the environment.
func ConfigFromEnv() (*apify.Config, error) {
	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault(constants.EnvBaseURL, constants.DefaultBaseURL)
	v.SetDefault(constants.EnvRetryBaseDelay, constants.DefaultRetryBaseDelay.String())

	delay := v.GetDuration(constants.EnvRetryBaseDelay)
	if delay < 0 {
		return nil, apify.ErrNegativeRetryBaseDelay
	}

	return &apify.Config{
		Token:          v.GetString(constants.EnvToken),
		BaseURL:        v.GetString(constants.EnvBaseURL),
		Debug:          v.GetBool(constants.EnvDebug),
		RetryBaseDelay: delay,
	}, nil
}

// ListItems fetches one page of dataset items decoded as T.
func ListItems[T any](ctx context.Context, c apify.Client, locator string, params *apify.ListItemsParams) (*apify.PaginationList[T], error) {
	page, err := c.Datasets().ListItems(ctx, locator, params)
	if err != nil {
		return nil, err
	}

	return apify.DecodeItems[T](page)
}

// PushItems pushes typed items into a dataset.
func PushItems[T any](ctx context.Context, c apify.Client, locator string, items []T) error {
	_, err := c.Datasets().PushItems(ctx, locator, items)

	return err
}

// GetRecordJSON reads a key-value store record and decodes it as JSON into T.
func GetRecordJSON[T any](ctx context.Context, c apify.Client, locator, key string) (*T, error) {
	record, err := c.KeyValueStores().GetRecord(ctx, locator, key)
	if err != nil {
		return nil, err
	}

	var value T

	err = record.JSON(&value)
	if err != nil {
		return nil, fmt.Errorf("parsing record %q: %w", key, err)
	}

	return &value, nil
}

// SetRecordJSON stores value as a JSON record.
func SetRecordJSON(ctx context.Context, c apify.Client, locator, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return &apify.ParseError{Err: err}
	}

	_, err = c.KeyValueStores().SetRecord(ctx, locator, &apify.Record{
		Key:         key,
		Value:       data,
		ContentType: constants.ContentTypeJSON,
	})

	return err
}

package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600

	// OutputFilePerm is the permission for downloaded exports and records.
	OutputFilePerm = 0644
)

// API endpoint defaults.
const (
	// DefaultBaseURL is the production Apify API root.
	DefaultBaseURL = "https://api.apify.com/v2"

	// DefaultUserAgent is sent when the config does not override it.
	DefaultUserAgent = "apify-client-go/" + Version

	// Version of the client library.
	Version = "0.3.0"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout bounds a single attempt. Dataset exports can be slow.
	DefaultHTTPTimeout = 360 * time.Second

	// ShortHTTPTimeout is used by the CLI for quick metadata calls.
	ShortHTTPTimeout = 30 * time.Second
)

// Retry limits and backoff.
const (
	// DefaultRetryBaseDelay is the base of the exponential backoff.
	DefaultRetryBaseDelay = 500 * time.Millisecond

	// DefaultMaxRateLimitRetries is the budget for 429 responses.
	DefaultMaxRateLimitRetries = 8

	// DefaultMaxServerFailureRetries is the budget for 5xx responses.
	DefaultMaxServerFailureRetries = 8

	// DefaultMaxTimeoutRetries is the budget for transport timeouts.
	DefaultMaxTimeoutRetries = 5

	// DefaultRateBurst is the limiter burst when only a rate is configured.
	DefaultRateBurst = 1
)

// Response headers.
const (
	// HeaderPaginationTotal carries the total number of dataset items.
	HeaderPaginationTotal = "X-Apify-Pagination-Total"

	// HeaderPaginationLimit carries the effective page size.
	HeaderPaginationLimit = "X-Apify-Pagination-Limit"

	// HeaderPaginationOffset carries the page offset.
	HeaderPaginationOffset = "X-Apify-Pagination-Offset"

	// HeaderRequestID correlates a call across all of its attempts.
	HeaderRequestID = "X-Request-Id"
)

// URL segments of the resource endpoints.
const (
	SegmentDatasets       = "datasets"
	SegmentActorRuns      = "actor-runs"
	SegmentKeyValueStores = "key-value-stores"
)

// Query parameter names.
const (
	// QueryToken is the authentication query parameter.
	QueryToken = "token"
)

// Content types.
const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain; charset=utf-8"
)

// Environment variables read by apifyclient.NewFromEnv and the CLI.
const (
	EnvPrefix = "APIFY"

	// EnvToken is APIFY_TOKEN.
	EnvToken = "token"

	// EnvBaseURL is APIFY_API_BASE_URL.
	EnvBaseURL = "api_base_url"

	// EnvDebug is APIFY_DEBUG.
	EnvDebug = "debug"

	// EnvRetryBaseDelay is APIFY_RETRY_BASE_DELAY.
	EnvRetryBaseDelay = "retry_base_delay"
)

// Display constants.
const (
	// JSONIndentSize is the number of spaces for JSON and YAML indentation.
	JSONIndentSize = 2

	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// Redacted replaces secrets in logged URLs.
	Redacted = "[REDACTED]"

	// DefaultPageSize is the CLI page size for item listings.
	DefaultPageSize = 50
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"
)

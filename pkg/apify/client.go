package apify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DatasetsClient defines operations for datasets.
type DatasetsClient interface {
	Get(ctx context.Context, locator string) (*Dataset, error)
	Update(ctx context.Context, locator string, request *DatasetUpdateRequest) (*Dataset, error)
	Delete(ctx context.Context, locator string) (NoContent, error)
	List(ctx context.Context, params *ListParams) (*PaginationList[Dataset], error)
	GetOrCreate(ctx context.Context, name string) (*Dataset, error)
	ListItems(ctx context.Context, locator string, params *ListItemsParams) (*PaginationList[json.RawMessage], error)
	PushItems(ctx context.Context, locator string, items any) (NoContent, error)
	DownloadItems(ctx context.Context, locator string, format DownloadFormat, params *ListItemsParams) ([]byte, error)
}

// RunsClient defines operations for actor runs.
type RunsClient interface {
	Get(ctx context.Context, locator string) (*Run, error)
	Abort(ctx context.Context, locator string, gracefully bool) (*Run, error)
	Delete(ctx context.Context, locator string) (NoContent, error)
}

// KeyValueStoresClient defines operations for key-value stores and their records.
type KeyValueStoresClient interface {
	Get(ctx context.Context, locator string) (*KeyValueStore, error)
	Update(ctx context.Context, locator string, request *KeyValueStoreUpdateRequest) (*KeyValueStore, error)
	Delete(ctx context.Context, locator string) (NoContent, error)
	List(ctx context.Context, params *ListParams) (*PaginationList[KeyValueStore], error)
	GetOrCreate(ctx context.Context, name string) (*KeyValueStore, error)
	ListKeys(ctx context.Context, locator string, params *ListKeysParams) (*KeyValueStoreKeys, error)
	GetRecord(ctx context.Context, locator, key string) (*Record, error)
	SetRecord(ctx context.Context, locator string, record *Record) (NoContent, error)
	DeleteRecord(ctx context.Context, locator, key string) (NoContent, error)
}

// Client is the main Apify API client interface.
type Client interface {
	Datasets() DatasetsClient
	Runs() RunsClient
	KeyValueStores() KeyValueStoresClient

	// WithToken returns a client that shares this client's transport but
	// authenticates with token. The receiver is left untouched.
	WithToken(token string) Client
	// Config returns a copy of the effective configuration.
	Config() Config
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building an apify.Client.
//
// # Retries
//
// Requests that hit 429, a 5xx status or a transport timeout are retried with
// exponential backoff: the n-th retry of a category waits RetryBaseDelay*2^n.
// Every category has its own budget (MaxRateLimitRetries,
// MaxServerFailureRetries, MaxTimeoutRetries). Zero values select the
// defaults, which are 8, 8 and 5. There is no jitter and no cap on the delay.
//
// # Authentication
//
// Token is sent as the "token" query parameter whenever it is set. Reads of
// resources addressed by ID work without it; everything else fails locally
// with ErrMissingToken when it is empty.
type Config struct {
	// Token: API token. Optional, see above.
	Token string
	// BaseURL: API root (e.g., "https://api.apify.com/v2"). apifyclient.New
	// trims a trailing slash and adds "https://" if no scheme is present.
	BaseURL string
	// RetryBaseDelay: base of the exponential backoff. Defaults to 500ms.
	RetryBaseDelay time.Duration
	// Debug: enables per-attempt request/response logging.
	Debug bool

	// Optional configurations
	// Logger: optional structured logger. When nil and Debug is set, a logrus
	// logger writing to stderr is installed.
	Logger Logger
	// HTTPTimeout: per-attempt timeout. Its expiry counts as a transport timeout.
	HTTPTimeout time.Duration
	// MaxRateLimitRetries: retry budget for 429 responses.
	MaxRateLimitRetries int
	// MaxServerFailureRetries: retry budget for 5xx responses.
	MaxServerFailureRetries int
	// MaxTimeoutRetries: retry budget for transport timeouts.
	MaxTimeoutRetries int
	// RateLimit: optional client-side cap in requests per second. 0 disables it.
	RateLimit float64
	// RateBurst: burst size for RateLimit. Defaults to 1.
	RateBurst int
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// MetricsRegisterer: when set, request metrics are registered on it.
	MetricsRegisterer prometheus.Registerer
}

// WithToken returns a copy of c authenticating with token.
func (c Config) WithToken(token string) Config {
	c.Token = token

	return c
}

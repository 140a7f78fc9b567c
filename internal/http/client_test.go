package http_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	apifyhttp "github.com/metalwarrior665/apify-client-go/internal/http"
	"github.com/metalwarrior665/apify-client-go/internal/telemetry"
	"github.com/metalwarrior665/apify-client-go/pkg/apify"
)

const testBaseDelay = 100 * time.Millisecond

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{})  { l.record("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{})  { l.record("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

func (l *MockLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	msgs := make([]string, 0, len(l.logs))
	for _, entry := range l.logs {
		msgs = append(msgs, entry["msg"].(string))
	}

	return msgs
}

// sleepRecorder replaces the backoff sleep and records requested delays.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()

	return ctx.Err()
}

func (s *sleepRecorder) recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]time.Duration(nil), s.delays...)
}

// scriptedServer answers with statuses in order and repeats the last one.
func scriptedServer(t *testing.T, statuses ...int) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		n := int(calls.Add(1)) - 1
		if n >= len(statuses) {
			n = len(statuses) - 1
		}

		status := statuses[n]
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(status)

		switch {
		case status == http.StatusNotFound:
			_, _ = writer.Write([]byte(`{"error":{"type":"record-not-found","message":"Dataset was not found"}}`))
		case status >= 200 && status < 300:
			_, _ = writer.Write([]byte(`{"data":{"attempt":` + strconv.Itoa(n+1) + `}}`))
		}
	}))
	t.Cleanup(server.Close)

	return server, &calls
}

func newTestClient(baseURL string, recorder *sleepRecorder, opts ...apifyhttp.Option) *apifyhttp.Client {
	all := append([]apifyhttp.Option{
		apifyhttp.WithRetryBaseDelay(testBaseDelay),
		apifyhttp.WithSleep(recorder.sleep),
	}, opts...)

	return apifyhttp.NewClient(baseURL, testToken, all...)
}

func send(t *testing.T, client *apifyhttp.Client, method string) (*apifyhttp.Response, error) {
	t.Helper()

	return client.NewRequest(method, "datasets").
		Resource(mustParse(t, testID)).
		Send(context.Background())
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()

	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/datasets/"+testID, request.URL.Path)
			assert.Equal(t, http.MethodGet, request.Method)
			assert.Equal(t, testToken, request.URL.Query().Get("token"))
			assert.Equal(t, "apify-client-go/test", request.Header.Get("User-Agent"))
			assert.NotEmpty(t, request.Header.Get("X-Request-Id"))

			writer.Header().Set("X-Custom", "yes")
			_, _ = writer.Write([]byte(`{"data":{"id":"` + testID + `"}}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, &sleepRecorder{}, apifyhttp.WithUserAgent("apify-client-go/test"))

		resp, err := send(t, client, http.MethodGet)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "yes", resp.Headers.Get("X-Custom"))
		assert.JSONEq(t, `{"data":{"id":"`+testID+`"}}`, string(resp.Body))
	})

	t.Run("rate limited twice then succeeds", func(t *testing.T) {
		t.Parallel()

		server, calls := scriptedServer(t, 429, 429, 200)
		recorder := &sleepRecorder{}
		client := newTestClient(server.URL, recorder)

		resp, err := send(t, client, http.MethodGet)
		require.NoError(t, err)
		assert.Equal(t, int32(3), calls.Load())
		assert.Equal(t, []time.Duration{2 * testBaseDelay, 4 * testBaseDelay}, recorder.recorded())
		assert.JSONEq(t, `{"data":{"attempt":3}}`, string(resp.Body))
	})

	t.Run("rate limit budget exhausted", func(t *testing.T) {
		t.Parallel()

		server, calls := scriptedServer(t, 429, 429, 429, 429, 429, 429, 429, 429, 429)
		recorder := &sleepRecorder{}
		client := newTestClient(server.URL, recorder)

		_, err := send(t, client, http.MethodGet)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apify.ErrMaxRateLimitRetriesReached))
		assert.True(t, apify.IsRetriesExhausted(err))

		var apiErr *apify.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, 8, apiErr.Retries)
		assert.Equal(t, int32(8), calls.Load())
		assert.Len(t, recorder.recorded(), 7)
	})

	t.Run("server failures back off per category", func(t *testing.T) {
		t.Parallel()

		server, calls := scriptedServer(t, 500, 502, 503, 200)
		recorder := &sleepRecorder{}
		client := newTestClient(server.URL, recorder)

		_, err := send(t, client, http.MethodGet)
		require.NoError(t, err)
		assert.Equal(t, int32(4), calls.Load())
		assert.Equal(t, []time.Duration{2 * testBaseDelay, 4 * testBaseDelay, 8 * testBaseDelay}, recorder.recorded())
	})

	t.Run("counters are independent", func(t *testing.T) {
		t.Parallel()

		server, calls := scriptedServer(t, 429, 500, 429, 200)
		recorder := &sleepRecorder{}
		client := newTestClient(server.URL, recorder)

		_, err := send(t, client, http.MethodGet)
		require.NoError(t, err)
		assert.Equal(t, int32(4), calls.Load())
		assert.Equal(t, []time.Duration{2 * testBaseDelay, 2 * testBaseDelay, 4 * testBaseDelay}, recorder.recorded())
	})

	t.Run("server failure budget exhausted", func(t *testing.T) {
		t.Parallel()

		server, calls := scriptedServer(t, 503)
		client := newTestClient(server.URL, &sleepRecorder{}, apifyhttp.WithRetryLimits(apifyhttp.RetryLimits{ServerFailure: 2}))

		_, err := send(t, client, http.MethodGet)
		assert.ErrorIs(t, err, apify.ErrMaxServerRetriesReached)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("not found is terminal", func(t *testing.T) {
		t.Parallel()

		server, calls := scriptedServer(t, 404)
		client := newTestClient(server.URL, &sleepRecorder{})

		_, err := send(t, client, http.MethodGet)
		require.Error(t, err)
		assert.True(t, apify.IsNotFound(err))

		var apiErr *apify.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "Dataset was not found", apiErr.Message)
		assert.Equal(t, "record-not-found", apiErr.Type)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("other client errors are raw errors", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusBadRequest)
			_, _ = writer.Write([]byte(`{"error":{"type":"invalid-input","message":"Field name is invalid"}}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, &sleepRecorder{})

		_, err := send(t, client, http.MethodGet)
		require.ErrorIs(t, err, apify.ErrRawAPIError)

		var apiErr *apify.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, "Field name is invalid", apiErr.Message)
	})

	t.Run("malformed error body is an API failure", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusForbidden)
			_, _ = writer.Write([]byte(`<html>forbidden</html>`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, &sleepRecorder{})

		_, err := send(t, client, http.MethodGet)
		require.ErrorIs(t, err, apify.ErrAPIFailure)
		assert.Contains(t, err.Error(), "did not return correct error format")
	})

	t.Run("error envelope without error object is an API failure", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusUnauthorized)
			_, _ = writer.Write([]byte(`{"message":"nope"}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, &sleepRecorder{})

		_, err := send(t, client, http.MethodGet)
		assert.ErrorIs(t, err, apify.ErrAPIFailure)
	})

	t.Run("connection refused is terminal", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := server.URL
		server.Close()

		recorder := &sleepRecorder{}
		client := newTestClient(url, recorder)

		_, err := send(t, client, http.MethodGet)
		require.ErrorIs(t, err, apify.ErrAPIFailure)
		assert.False(t, apify.IsRetriesExhausted(err))
		assert.Empty(t, recorder.recorded())
	})

	t.Run("transport timeouts are retried", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			calls.Add(1)
			select {
			case <-request.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer server.Close()

		recorder := &sleepRecorder{}
		client := newTestClient(server.URL, recorder,
			apifyhttp.WithHTTPTimeout(50*time.Millisecond),
			apifyhttp.WithRetryLimits(apifyhttp.RetryLimits{Timeout: 2}),
		)

		_, err := send(t, client, http.MethodGet)
		require.ErrorIs(t, err, apify.ErrMaxTimeoutRetriesReached)
		assert.Equal(t, int32(2), calls.Load())
		assert.Equal(t, []time.Duration{2 * testBaseDelay}, recorder.recorded())
	})

	t.Run("retries resend identical requests", func(t *testing.T) {
		t.Parallel()

		var (
			mu       sync.Mutex
			bodies   []string
			requests []string
			calls    atomic.Int32
		)

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			body, _ := io.ReadAll(request.Body)

			mu.Lock()
			bodies = append(bodies, string(body))
			requests = append(requests, request.Method+" "+request.URL.String()+" "+
				request.Header.Get("Content-Type")+" "+request.Header.Get("X-Request-Id"))
			mu.Unlock()

			if calls.Add(1) == 1 {
				writer.WriteHeader(http.StatusServiceUnavailable)

				return
			}

			writer.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client := newTestClient(server.URL, &sleepRecorder{})

		resp, err := client.NewRequest(http.MethodPost, "datasets").
			Resource(mustParse(t, testID)).
			Path("items").
			JSONBody([]map[string]int{{"a": 1}}).
			Send(context.Background())
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		mu.Lock()
		defer mu.Unlock()

		require.Len(t, bodies, 2)
		assert.Equal(t, `[{"a":1}]`, bodies[0])
		assert.Equal(t, bodies[0], bodies[1])
		assert.Equal(t, requests[0], requests[1])
	})

	t.Run("cancellation during backoff is terminal", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			cancel()
			writer.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := apifyhttp.NewClient(server.URL, testToken, apifyhttp.WithRetryBaseDelay(time.Hour))

		start := time.Now()
		_, err := client.NewRequest(http.MethodGet, "datasets").
			Resource(mustParse(t, testID)).
			Send(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
		assert.True(t, errors.Is(err, apify.ErrAPIFailure))
		assert.Less(t, time.Since(start), 10*time.Second)
	})

	t.Run("rate limiter honours cancellation", func(t *testing.T) {
		t.Parallel()

		server, calls := scriptedServer(t, 200)
		client := newTestClient(server.URL, &sleepRecorder{}, apifyhttp.WithRateLimiter(rate.NewLimiter(rate.Limit(1), 1)))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.NewRequest(http.MethodGet, "datasets").
			Resource(mustParse(t, testID)).
			Send(ctx)
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, int32(0), calls.Load())
	})
}

func TestClient_DebugLogging(t *testing.T) {
	t.Parallel()

	server, _ := scriptedServer(t, 429, 200)
	logger := &MockLogger{}
	client := newTestClient(server.URL, &sleepRecorder{}, apifyhttp.WithLogger(logger), apifyhttp.WithDebug(true))

	_, err := send(t, client, http.MethodGet)
	require.NoError(t, err)

	assert.Equal(t, []string{"HTTP Request", "HTTP Response", "Retrying request", "HTTP Request", "HTTP Response"}, logger.messages())

	logger.mu.Lock()
	defer logger.mu.Unlock()

	for _, entry := range logger.logs {
		fields, ok := entry["fields"].(map[string]interface{})
		require.True(t, ok)

		if logged, ok := fields["url"].(string); ok {
			assert.NotContains(t, logged, testToken)
			assert.True(t, strings.Contains(logged, "REDACTED"))
		}
	}
}

func TestClient_Metrics(t *testing.T) {
	t.Parallel()

	server, _ := scriptedServer(t, 500, 429, 200)
	registry := prometheus.NewRegistry()

	metrics, err := telemetry.NewMetrics(registry)
	require.NoError(t, err)

	client := newTestClient(server.URL, &sleepRecorder{}, apifyhttp.WithMetrics(metrics))

	_, err = send(t, client, http.MethodGet)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(registry, "apify_client_retries_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = testutil.GatherAndCount(registry, "apify_client_http_attempts_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

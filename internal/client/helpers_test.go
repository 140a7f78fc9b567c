package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metalwarrior665/apify-client-go/pkg/apify"
)

const (
	testToken     = "test-token"
	testDatasetID = "WkzbQMuFYuamGv3YF"
	testStoreID   = "Zx4pY8dQmK2nR7sTb"
	testRunID     = "3KH8gEpp4d8uQSe8T"
)

// capturedRequest is what the test server saw.
type capturedRequest struct {
	Method      string
	Path        string
	RawPath     string
	Query       map[string][]string
	RawQuery    string
	Body        []byte
	ContentType string
}

// NewTestClient creates a client against baseURL without backoff delays.
func NewTestClient(t *testing.T, baseURL, token string) *Client {
	t.Helper()

	client, err := New(&apify.Config{
		Token:                   token,
		BaseURL:                 baseURL,
		MaxRateLimitRetries:     2,
		MaxServerFailureRetries: 2,
		MaxTimeoutRetries:       1,
	})
	require.NoError(t, err)

	return client
}

// requestRecorder keeps the last request seen by a test server.
type requestRecorder struct {
	mu   sync.Mutex
	last capturedRequest
}

func (r *requestRecorder) set(req capturedRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.last = req
}

func (r *requestRecorder) get() capturedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.last
}

// newRecordingServer answers every request with status and body and records
// the last request it received.
func newRecordingServer(t *testing.T, status int, body string, headers map[string]string) (*httptest.Server, *requestRecorder) {
	t.Helper()

	recorder := &requestRecorder{}

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		data, err := io.ReadAll(request.Body)
		assert.NoError(t, err)

		recorder.set(capturedRequest{
			Method:      request.Method,
			Path:        request.URL.Path,
			RawPath:     request.URL.EscapedPath(),
			Query:       request.URL.Query(),
			RawQuery:    request.URL.RawQuery,
			Body:        data,
			ContentType: request.Header.Get("Content-Type"),
		})

		for k, v := range headers {
			writer.Header().Set(k, v)
		}

		if writer.Header().Get("Content-Type") == "" {
			writer.Header().Set("Content-Type", "application/json")
		}

		writer.WriteHeader(status)
		_, _ = writer.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server, recorder
}

// envelope wraps v the way the API wraps single resources.
func envelope(t *testing.T, v interface{}) string {
	t.Helper()

	data, err := json.Marshal(map[string]interface{}{"data": v})
	require.NoError(t, err)

	return string(data)
}

// TestGetOperation represents a generic get operation test case.
type TestGetOperation[TResponse any] struct {
	Name         string
	Locator      string
	Token        string
	ExpectedPath string
	StatusCode   int
	Body         string
	WantErr      error
	Validate     func(t *testing.T, result *TResponse)
}

// RunGetTests runs get operations against a recording server.
func RunGetTests[TResponse any](
	t *testing.T,
	tests []TestGetOperation[TResponse],
	getFunc func(*Client) func(context.Context, string) (*TResponse, error),
) {
	t.Helper()

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.Name, func(t *testing.T) {
			t.Parallel()

			server, recorder := newRecordingServer(t, testCase.StatusCode, testCase.Body, nil)
			client := NewTestClient(t, server.URL, testCase.Token)

			result, err := getFunc(client)(context.Background(), testCase.Locator)

			if testCase.WantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, testCase.WantErr)
				assert.Nil(t, result)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, result)

			captured := recorder.get()
			assert.Equal(t, http.MethodGet, captured.Method)
			assert.Equal(t, testCase.ExpectedPath, captured.RawPath)

			if testCase.Validate != nil {
				testCase.Validate(t, result)
			}
		})
	}
}

package commands_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

const (
	testToken     = "cli-token"
	testDatasetID = "WkzbQMuFYuamGv3YF"
	testStoreID   = "Zx4pY8dQmK2nR7sTb"
	testRunID     = "3KH8gEpp4d8uQSe8T"
)

// findSubcommand finds a subcommand by name within a cobra command.
func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

type apiCall struct {
	Method      string
	Path        string
	RawQuery    string
	Body        string
	ContentType string
}

type apiRecorder struct {
	mu    sync.Mutex
	calls []apiCall
}

func (r *apiRecorder) add(call apiCall) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, call)
}

func (r *apiRecorder) last(t *testing.T) apiCall {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()

	require.NotEmpty(t, r.calls)

	return r.calls[len(r.calls)-1]
}

func (r *apiRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.calls)
}

// setupAPI resets viper, starts a fake API answering with handler and points
// the CLI configuration at it.
func setupAPI(t *testing.T, handler http.HandlerFunc) *apiRecorder {
	t.Helper()

	resetViper(t)

	recorder := &apiRecorder{}
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		body, _ := io.ReadAll(request.Body)
		recorder.add(apiCall{
			Method:      request.Method,
			Path:        request.URL.Path,
			RawQuery:    request.URL.RawQuery,
			Body:        string(body),
			ContentType: request.Header.Get("Content-Type"),
		})
		handler(writer, request)
	}))
	t.Cleanup(server.Close)

	viper.Set("api", server.URL)
	viper.Set("token", testToken)

	return recorder
}

func resetViper(t *testing.T) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)
}

func respond(status int, body string) http.HandlerFunc {
	return func(writer http.ResponseWriter, _ *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(status)
		_, _ = writer.Write([]byte(body))
	}
}

// execute runs cmd with args and returns what it wrote to stdout.
func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	err := cmd.ExecuteContext(ctx)

	return out.String(), err
}

package client

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metalwarrior665/apify-client-go/pkg/apify"
)

const testRunBody = `{"data":{
	"id":"` + testRunID + `",
	"actId":"HDSasDasz78YcAPEB",
	"userId":"7sT5jcggjjA9fNcxF",
	"startedAt":"2019-11-30T07:34:24.202Z",
	"finishedAt":"2019-12-12T09:30:12.202Z",
	"status":"SUCCEEDED",
	"meta":{"origin":"WEB","userAgent":"Mozilla/5.0"},
	"stats":{"inputBodyLen":240,"restartCount":0,"durationMillis":1000,"computeUnits":0.25},
	"options":{"build":"latest","timeoutSecs":300,"memoryMbytes":1024,"diskMbytes":2048},
	"buildId":"7sT5jcggjjA9fNcxF",
	"exitCode":0,
	"defaultKeyValueStoreId":"eJNzqsbPiopwJcgGQ",
	"defaultDatasetId":"wmKPijuyDnPZAPRMk",
	"defaultRequestQueueId":"FL35cSF7jrxr3BY39",
	"buildNumber":"0.0.36",
	"containerUrl":"https://g8kd8kbc5ge8.runs.apify.net",
	"usageTotalUsd":0.2654,
	"usage":{"ACTOR_COMPUTE_UNITS":3,"DATASET_WRITES":4}
}}`

func TestRunsClient_Get(t *testing.T) {
	t.Parallel()

	tests := []TestGetOperation[apify.Run]{
		{
			Name:         "by ID",
			Locator:      testRunID,
			ExpectedPath: "/actor-runs/" + testRunID,
			StatusCode:   http.StatusOK,
			Body:         testRunBody,
			Validate: func(t *testing.T, run *apify.Run) {
				t.Helper()

				assert.Equal(t, testRunID, run.ID)
				assert.Equal(t, apify.RunStatusSucceeded, run.Status)
				assert.True(t, run.Status.IsTerminal())
				require.NotNil(t, run.FinishedAt)
				require.NotNil(t, run.ExitCode)
				assert.Equal(t, 0, *run.ExitCode)
				assert.Equal(t, "WEB", run.Meta.Origin)
				assert.Equal(t, uint32(1024), run.Options.MemoryMbytes)
				assert.InDelta(t, 0.25, run.Stats.ComputeUnits, 1e-9)
				assert.InDelta(t, 3, run.Usage["ACTOR_COMPUTE_UNITS"], 1e-9)
				assert.Equal(t, "wmKPijuyDnPZAPRMk", run.DefaultDatasetID)
			},
		},
		{
			Name:       "not found",
			Locator:    testRunID,
			StatusCode: http.StatusNotFound,
			Body:       `{"error":{"type":"record-not-found","message":"Actor run was not found"}}`,
			WantErr:    apify.ErrNotFound,
		},
	}

	RunGetTests(t, tests, func(c *Client) func(context.Context, string) (*apify.Run, error) {
		return c.Runs().Get
	})
}

func TestRunsClient_Abort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		gracefully bool
		wantQuery  string
	}{
		{name: "immediate", gracefully: false, wantQuery: "token=" + testToken},
		{name: "graceful", gracefully: true, wantQuery: "gracefully=true&token=" + testToken},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server, recorder := newRecordingServer(t, http.StatusOK, testRunBody, nil)
			client := NewTestClient(t, server.URL, testToken)

			run, err := client.Runs().Abort(context.Background(), testRunID, tt.gracefully)
			require.NoError(t, err)
			assert.Equal(t, testRunID, run.ID)

			captured := recorder.get()
			assert.Equal(t, http.MethodPost, captured.Method)
			assert.Equal(t, "/actor-runs/"+testRunID+"/abort", captured.Path)
			assert.Equal(t, tt.wantQuery, captured.RawQuery)
		})
	}
}

func TestRunsClient_Delete(t *testing.T) {
	t.Parallel()

	server, recorder := newRecordingServer(t, http.StatusNoContent, "", nil)
	client := NewTestClient(t, server.URL, testToken)

	_, err := client.Runs().Delete(context.Background(), testRunID)
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, recorder.get().Method)

	_, err = NewTestClient(t, server.URL, "").Runs().Delete(context.Background(), testRunID)
	assert.ErrorIs(t, err, apify.ErrMissingToken)
}

func TestRunsClient_RetriesExhausted(t *testing.T) {
	t.Parallel()

	server, _ := newRecordingServer(t, http.StatusTooManyRequests, "", nil)
	client := NewTestClient(t, server.URL, testToken)

	_, err := client.Runs().Get(context.Background(), testRunID)
	require.Error(t, err)
	assert.ErrorIs(t, err, apify.ErrMaxRateLimitRetriesReached)
	assert.Contains(t, err.Error(), "getting run")
}

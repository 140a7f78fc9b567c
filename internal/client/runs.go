package client

import (
	"context"
	"fmt"
	nethttp "net/http"
	"strconv"

	"github.com/metalwarrior665/apify-client-go/internal/constants"
	"github.com/metalwarrior665/apify-client-go/internal/http"
	"github.com/metalwarrior665/apify-client-go/pkg/apify"
)

// RunsClient implements apify.RunsClient.
type RunsClient struct {
	httpClient *http.Client
}

// NewRunsClient creates a new actor runs client.
func NewRunsClient(httpClient *http.Client) *RunsClient {
	return &RunsClient{
		httpClient: httpClient,
	}
}

// Get implements apify.RunsClient.Get.
func (c *RunsClient) Get(ctx context.Context, locator string) (*apify.Run, error) {
	id, err := apify.ParseResourceID(locator)
	if err != nil {
		return nil, fmt.Errorf("getting run: %w", err)
	}

	resp, err := c.httpClient.NewRequest(nethttp.MethodGet, constants.SegmentActorRuns).
		Resource(id).
		Send(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting run: %w", err)
	}

	run, err := decodeEnvelope[apify.Run](resp)
	if err != nil {
		return nil, fmt.Errorf("parsing run: %w", err)
	}

	return run, nil
}

// Abort implements apify.RunsClient.Abort. A graceful abort lets the actor
// persist its state before it is stopped.
func (c *RunsClient) Abort(ctx context.Context, locator string, gracefully bool) (*apify.Run, error) {
	id, err := apify.ParseResourceID(locator)
	if err != nil {
		return nil, fmt.Errorf("aborting run: %w", err)
	}

	builder := c.httpClient.NewRequest(nethttp.MethodPost, constants.SegmentActorRuns).
		Resource(id).
		Path("abort")
	if gracefully {
		builder.Query("gracefully", strconv.FormatBool(gracefully))
	}

	resp, err := builder.Send(ctx)
	if err != nil {
		return nil, fmt.Errorf("aborting run: %w", err)
	}

	run, err := decodeEnvelope[apify.Run](resp)
	if err != nil {
		return nil, fmt.Errorf("parsing run: %w", err)
	}

	return run, nil
}

// Delete implements apify.RunsClient.Delete.
func (c *RunsClient) Delete(ctx context.Context, locator string) (apify.NoContent, error) {
	id, err := apify.ParseResourceID(locator)
	if err != nil {
		return apify.NoContent{}, fmt.Errorf("deleting run: %w", err)
	}

	resp, err := c.httpClient.NewRequest(nethttp.MethodDelete, constants.SegmentActorRuns).
		Resource(id).
		Send(ctx)
	if err != nil {
		return apify.NoContent{}, fmt.Errorf("deleting run: %w", err)
	}

	return decodeNoContent(resp), nil
}

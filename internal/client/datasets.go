package client

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"

	"github.com/metalwarrior665/apify-client-go/internal/constants"
	"github.com/metalwarrior665/apify-client-go/internal/http"
	"github.com/metalwarrior665/apify-client-go/pkg/apify"
)

// DatasetsClient implements apify.DatasetsClient.
type DatasetsClient struct {
	httpClient *http.Client
}

// NewDatasetsClient creates a new datasets client.
func NewDatasetsClient(httpClient *http.Client) *DatasetsClient {
	return &DatasetsClient{
		httpClient: httpClient,
	}
}

// Get implements apify.DatasetsClient.Get.
func (c *DatasetsClient) Get(ctx context.Context, locator string) (*apify.Dataset, error) {
	id, err := apify.ParseResourceID(locator)
	if err != nil {
		return nil, fmt.Errorf("getting dataset: %w", err)
	}

	resp, err := c.httpClient.NewRequest(nethttp.MethodGet, constants.SegmentDatasets).
		Resource(id).
		Send(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting dataset: %w", err)
	}

	dataset, err := decodeEnvelope[apify.Dataset](resp)
	if err != nil {
		return nil, fmt.Errorf("parsing dataset: %w", err)
	}

	return dataset, nil
}

// Update implements apify.DatasetsClient.Update.
func (c *DatasetsClient) Update(ctx context.Context, locator string, request *apify.DatasetUpdateRequest) (*apify.Dataset, error) {
	id, err := apify.ParseResourceID(locator)
	if err != nil {
		return nil, fmt.Errorf("updating dataset: %w", err)
	}

	resp, err := c.httpClient.NewRequest(nethttp.MethodPut, constants.SegmentDatasets).
		Resource(id).
		JSONBody(request).
		Send(ctx)
	if err != nil {
		return nil, fmt.Errorf("updating dataset: %w", err)
	}

	dataset, err := decodeEnvelope[apify.Dataset](resp)
	if err != nil {
		return nil, fmt.Errorf("parsing dataset response: %w", err)
	}

	return dataset, nil
}

// Delete implements apify.DatasetsClient.Delete.
func (c *DatasetsClient) Delete(ctx context.Context, locator string) (apify.NoContent, error) {
	id, err := apify.ParseResourceID(locator)
	if err != nil {
		return apify.NoContent{}, fmt.Errorf("deleting dataset: %w", err)
	}

	resp, err := c.httpClient.NewRequest(nethttp.MethodDelete, constants.SegmentDatasets).
		Resource(id).
		Send(ctx)
	if err != nil {
		return apify.NoContent{}, fmt.Errorf("deleting dataset: %w", err)
	}

	return decodeNoContent(resp), nil
}

// List implements apify.DatasetsClient.List.
func (c *DatasetsClient) List(ctx context.Context, params *apify.ListParams) (*apify.PaginationList[apify.Dataset], error) {
	resp, err := c.httpClient.NewRequest(nethttp.MethodGet, constants.SegmentDatasets).
		RequireToken().
		QueryParams(params.ToQuery()).
		Send(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing datasets: %w", err)
	}

	list, err := decodeEnvelope[apify.PaginationList[apify.Dataset]](resp)
	if err != nil {
		return nil, fmt.Errorf("parsing datasets list: %w", err)
	}

	return list, nil
}

// GetOrCreate implements apify.DatasetsClient.GetOrCreate. An empty name
// creates a new unnamed dataset.
func (c *DatasetsClient) GetOrCreate(ctx context.Context, name string) (*apify.Dataset, error) {
	builder := c.httpClient.NewRequest(nethttp.MethodPost, constants.SegmentDatasets).RequireToken()
	if name != "" {
		builder.Query("name", name)
	}

	resp, err := builder.Send(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting or creating dataset: %w", err)
	}

	dataset, err := decodeEnvelope[apify.Dataset](resp)
	if err != nil {
		return nil, fmt.Errorf("parsing dataset: %w", err)
	}

	return dataset, nil
}

// ListItems implements apify.DatasetsClient.ListItems. Items are always
// requested as JSON; params.Format is ignored.
func (c *DatasetsClient) ListItems(ctx context.Context, locator string, params *apify.ListItemsParams) (*apify.PaginationList[json.RawMessage], error) {
	id, err := apify.ParseResourceID(locator)
	if err != nil {
		return nil, fmt.Errorf("listing dataset items: %w", err)
	}

	var query []apify.QueryParam

	if params != nil {
		jsonParams := *params
		jsonParams.Format = nil
		query = jsonParams.ToQuery()
	}

	resp, err := c.httpClient.NewRequest(nethttp.MethodGet, constants.SegmentDatasets).
		Resource(id).
		Path("items").
		QueryParams(query).
		Send(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing dataset items: %w", err)
	}

	page, err := decodePagination[json.RawMessage](resp, params.IsDesc())
	if err != nil {
		return nil, fmt.Errorf("parsing dataset items: %w", err)
	}

	return page, nil
}

// PushItems implements apify.DatasetsClient.PushItems. items is a single
// object or a slice of objects.
func (c *DatasetsClient) PushItems(ctx context.Context, locator string, items any) (apify.NoContent, error) {
	id, err := apify.ParseResourceID(locator)
	if err != nil {
		return apify.NoContent{}, fmt.Errorf("pushing dataset items: %w", err)
	}

	resp, err := c.httpClient.NewRequest(nethttp.MethodPost, constants.SegmentDatasets).
		Resource(id).
		Path("items").
		JSONBody(items).
		Send(ctx)
	if err != nil {
		return apify.NoContent{}, fmt.Errorf("pushing dataset items: %w", err)
	}

	return decodeNoContent(resp), nil
}

// DownloadItems implements apify.DatasetsClient.DownloadItems.
func (c *DatasetsClient) DownloadItems(ctx context.Context, locator string, format apify.DownloadFormat, params *apify.ListItemsParams) ([]byte, error) {
	id, err := apify.ParseResourceID(locator)
	if err != nil {
		return nil, fmt.Errorf("downloading dataset items: %w", err)
	}

	if _, err := apify.ParseDownloadFormat(string(format)); err != nil {
		return nil, fmt.Errorf("downloading dataset items: %w", err)
	}

	withFormat := apify.ListItemsParams{}
	if params != nil {
		withFormat = *params
	}

	withFormat.Format = &format

	resp, err := c.httpClient.NewRequest(nethttp.MethodGet, constants.SegmentDatasets).
		Resource(id).
		Path("items").
		QueryParams(withFormat.ToQuery()).
		Send(ctx)
	if err != nil {
		return nil, fmt.Errorf("downloading dataset items: %w", err)
	}

	return resp.Body, nil
}

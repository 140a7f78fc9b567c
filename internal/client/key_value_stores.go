package client

import (
	"context"
	"fmt"
	nethttp "net/http"

	"github.com/metalwarrior665/apify-client-go/internal/constants"
	"github.com/metalwarrior665/apify-client-go/internal/http"
	"github.com/metalwarrior665/apify-client-go/pkg/apify"
)

// KeyValueStoresClient implements apify.KeyValueStoresClient.
type KeyValueStoresClient struct {
	httpClient *http.Client
}

// NewKeyValueStoresClient creates a new key-value stores client.
func NewKeyValueStoresClient(httpClient *http.Client) *KeyValueStoresClient {
	return &KeyValueStoresClient{
		httpClient: httpClient,
	}
}

// Get implements apify.KeyValueStoresClient.Get.
func (c *KeyValueStoresClient) Get(ctx context.Context, locator string) (*apify.KeyValueStore, error) {
	id, err := apify.ParseResourceID(locator)
	if err != nil {
		return nil, fmt.Errorf("getting key-value store: %w", err)
	}

	resp, err := c.httpClient.NewRequest(nethttp.MethodGet, constants.SegmentKeyValueStores).
		Resource(id).
		Send(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting key-value store: %w", err)
	}

	store, err := decodeEnvelope[apify.KeyValueStore](resp)
	if err != nil {
		return nil, fmt.Errorf("parsing key-value store: %w", err)
	}

	return store, nil
}

// Update implements apify.KeyValueStoresClient.Update.
func (c *KeyValueStoresClient) Update(ctx context.Context, locator string, request *apify.KeyValueStoreUpdateRequest) (*apify.KeyValueStore, error) {
	id, err := apify.ParseResourceID(locator)
	if err != nil {
		return nil, fmt.Errorf("updating key-value store: %w", err)
	}

	resp, err := c.httpClient.NewRequest(nethttp.MethodPut, constants.SegmentKeyValueStores).
		Resource(id).
		JSONBody(request).
		Send(ctx)
	if err != nil {
		return nil, fmt.Errorf("updating key-value store: %w", err)
	}

	store, err := decodeEnvelope[apify.KeyValueStore](resp)
	if err != nil {
		return nil, fmt.Errorf("parsing key-value store response: %w", err)
	}

	return store, nil
}

// Delete implements apify.KeyValueStoresClient.Delete.
func (c *KeyValueStoresClient) Delete(ctx context.Context, locator string) (apify.NoContent, error) {
	id, err := apify.ParseResourceID(locator)
	if err != nil {
		return apify.NoContent{}, fmt.Errorf("deleting key-value store: %w", err)
	}

	resp, err := c.httpClient.NewRequest(nethttp.MethodDelete, constants.SegmentKeyValueStores).
		Resource(id).
		Send(ctx)
	if err != nil {
		return apify.NoContent{}, fmt.Errorf("deleting key-value store: %w", err)
	}

	return decodeNoContent(resp), nil
}

// List implements apify.KeyValueStoresClient.List.
func (c *KeyValueStoresClient) List(ctx context.Context, params *apify.ListParams) (*apify.PaginationList[apify.KeyValueStore], error) {
	resp, err := c.httpClient.NewRequest(nethttp.MethodGet, constants.SegmentKeyValueStores).
		RequireToken().
		QueryParams(params.ToQuery()).
		Send(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing key-value stores: %w", err)
	}

	list, err := decodeEnvelope[apify.PaginationList[apify.KeyValueStore]](resp)
	if err != nil {
		return nil, fmt.Errorf("parsing key-value stores list: %w", err)
	}

	return list, nil
}

// GetOrCreate implements apify.KeyValueStoresClient.GetOrCreate.
func (c *KeyValueStoresClient) GetOrCreate(ctx context.Context, name string) (*apify.KeyValueStore, error) {
	builder := c.httpClient.NewRequest(nethttp.MethodPost, constants.SegmentKeyValueStores).RequireToken()
	if name != "" {
		builder.Query("name", name)
	}

	resp, err := builder.Send(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting or creating key-value store: %w", err)
	}

	store, err := decodeEnvelope[apify.KeyValueStore](resp)
	if err != nil {
		return nil, fmt.Errorf("parsing key-value store: %w", err)
	}

	return store, nil
}

// ListKeys implements apify.KeyValueStoresClient.ListKeys.
func (c *KeyValueStoresClient) ListKeys(ctx context.Context, locator string, params *apify.ListKeysParams) (*apify.KeyValueStoreKeys, error) {
	id, err := apify.ParseResourceID(locator)
	if err != nil {
		return nil, fmt.Errorf("listing record keys: %w", err)
	}

	resp, err := c.httpClient.NewRequest(nethttp.MethodGet, constants.SegmentKeyValueStores).
		Resource(id).
		Path("keys").
		QueryParams(params.ToQuery()).
		Send(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing record keys: %w", err)
	}

	keys, err := decodeEnvelope[apify.KeyValueStoreKeys](resp)
	if err != nil {
		return nil, fmt.Errorf("parsing record keys: %w", err)
	}

	return keys, nil
}

// GetRecord implements apify.KeyValueStoresClient.GetRecord. The value is
// returned exactly as stored.
func (c *KeyValueStoresClient) GetRecord(ctx context.Context, locator, key string) (*apify.Record, error) {
	if key == "" {
		return nil, fmt.Errorf("getting record: %w", apify.ErrRecordKeyRequired)
	}

	id, err := apify.ParseResourceID(locator)
	if err != nil {
		return nil, fmt.Errorf("getting record: %w", err)
	}

	resp, err := c.httpClient.NewRequest(nethttp.MethodGet, constants.SegmentKeyValueStores).
		Resource(id).
		Path("records", key).
		Send(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting record: %w", err)
	}

	return &apify.Record{
		Key:         key,
		Value:       resp.Body,
		ContentType: resp.Headers.Get("Content-Type"),
	}, nil
}

// SetRecord implements apify.KeyValueStoresClient.SetRecord. An empty
// content type defaults to JSON.
func (c *KeyValueStoresClient) SetRecord(ctx context.Context, locator string, record *apify.Record) (apify.NoContent, error) {
	if record == nil || record.Key == "" {
		return apify.NoContent{}, fmt.Errorf("setting record: %w", apify.ErrRecordKeyRequired)
	}

	id, err := apify.ParseResourceID(locator)
	if err != nil {
		return apify.NoContent{}, fmt.Errorf("setting record: %w", err)
	}

	contentType := record.ContentType
	if contentType == "" {
		contentType = constants.ContentTypeJSON
	}

	resp, err := c.httpClient.NewRequest(nethttp.MethodPut, constants.SegmentKeyValueStores).
		Resource(id).
		Path("records", record.Key).
		Header("Content-Type", contentType).
		Body(record.Value, nil).
		Send(ctx)
	if err != nil {
		return apify.NoContent{}, fmt.Errorf("setting record: %w", err)
	}

	return decodeNoContent(resp), nil
}

// DeleteRecord implements apify.KeyValueStoresClient.DeleteRecord.
func (c *KeyValueStoresClient) DeleteRecord(ctx context.Context, locator, key string) (apify.NoContent, error) {
	if key == "" {
		return apify.NoContent{}, fmt.Errorf("deleting record: %w", apify.ErrRecordKeyRequired)
	}

	id, err := apify.ParseResourceID(locator)
	if err != nil {
		return apify.NoContent{}, fmt.Errorf("deleting record: %w", err)
	}

	resp, err := c.httpClient.NewRequest(nethttp.MethodDelete, constants.SegmentKeyValueStores).
		Resource(id).
		Path("records", key).
		Send(ctx)
	if err != nil {
		return apify.NoContent{}, fmt.Errorf("deleting record: %w", err)
	}

	return decodeNoContent(resp), nil
}

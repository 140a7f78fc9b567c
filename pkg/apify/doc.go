// Package apify provides types, interfaces, and helpers for working with the
// Apify platform API v2.
//
// # Overview
//
// The apify package defines the domain types (Dataset, Run, KeyValueStore),
// the resource client interfaces (DatasetsClient, RunsClient,
// KeyValueStoresClient) and the error model shared by all of them. A
// concrete implementation is provided by the apifyclient package, which
// wires configuration, transport, retries, and logging.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/metalwarrior665/apify-client-go/pkg/apify"
//	  "github.com/metalwarrior665/apify-client-go/pkg/apifyclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := apifyclient.New(&apify.Config{Token: "my-token"})
//	  if err != nil { log.Fatal(err) }
//
//	  ds, err := cli.Datasets().Get(ctx, "username/my-dataset")
//	  if err != nil { log.Fatal(err) }
//	  _ = ds
//	}
//
// # Resource locators
//
// Every single-resource method accepts either a 17 character resource ID or an
// "owner/name" pair. ParseResourceID validates the value; on the wire a pair
// is rendered as "owner~name". Reading by ID works without a token.
//
// # Pagination
//
// List endpoints return a PaginationList. Dataset items are returned as raw
// JSON; use DecodeItems (or apifyclient.ListItems) to get typed items:
//
//	page, err := cli.Datasets().ListItems(ctx, id, apify.NewListItemsParams().WithLimit(100))
//	typed, err := apify.DecodeItems[MyItem](page)
//
// # Errors
//
// Errors are one of *ValidationError (raised before any request),
// *APIError (returned by, or while talking to, the API) or *ParseError.
// Use errors.Is with the kind sentinels, or the helpers:
//
//	if apify.IsNotFound(err) { /* ... */ }
//	if errors.Is(err, apify.ErrMaxRateLimitRetriesReached) { /* ... */ }
package apify

// Package apifyclient provides the primary entry point for constructing an
// Apify API client that implements the apify.Client interface.
//
// It layers configuration defaults, the HTTP transport, retries, logging and
// metrics on top of the resource interfaces and types defined in the apify
// package.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/metalwarrior665/apify-client-go/pkg/apify"
//	  "github.com/metalwarrior665/apify-client-go/pkg/apifyclient"
//	)
//
//	type Product struct {
//	  Title string  `json:"title"`
//	  Price float64 `json:"price"`
//	}
//
//	func example() {
//	  ctx := context.Background()
//
//	  // Token from APIFY_TOKEN, everything else defaulted.
//	  cli, err := apifyclient.NewFromEnv()
//	  if err != nil { log.Fatal(err) }
//
//	  page, err := apifyclient.ListItems[Product](ctx, cli, "username/products",
//	    apify.NewListItemsParams().WithLimit(100).WithClean(true))
//	  if err != nil { log.Fatal(err) }
//	  _ = page.Items
//	}
//
// # Retries
//
// Rate limiting (429), server failures (5xx) and transport timeouts are
// retried with exponential backoff, each up to its own budget. See
// apify.Config for the knobs.
//
// # Helpers
//
// NewWithToken and NewFromEnv wrap New. ListItems, PushItems, GetRecordJSON
// and SetRecordJSON add type parameters on top of the resource clients.
package apifyclient

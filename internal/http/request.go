package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/metalwarrior665/apify-client-go/internal/constants"
	"github.com/metalwarrior665/apify-client-go/pkg/apify"
)

// Request is a fully resolved call, ready to be sent (and re-sent) verbatim.
type Request struct {
	Method string
	// URL is absolute and already carries the query string and token.
	URL string
	// Path is the URL path without query, safe to log.
	Path          string
	Body          []byte
	Headers       map[string]string
	RequiresToken bool
}

// Response is a successful (2xx) response with its body fully read.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// RequestBuilder assembles a Request against one resource endpoint.
type RequestBuilder struct {
	client     *Client
	method     string
	segment    string
	resource   *apify.ResourceID
	subpath    []string
	query      []apify.QueryParam
	body       []byte
	bodyErr    error
	headers    map[string]string
	forceToken bool
}

// NewRequest starts a request for method against the collection at segment.
func (c *Client) NewRequest(method, segment string) *RequestBuilder {
	return &RequestBuilder{
		client:  c,
		method:  method,
		segment: segment,
		headers: map[string]string{},
	}
}

// Resource addresses a single resource inside the collection.
func (b *RequestBuilder) Resource(id apify.ResourceID) *RequestBuilder {
	b.resource = &id

	return b
}

// Path appends path elements after the resource. Each element is escaped.
func (b *RequestBuilder) Path(elems ...string) *RequestBuilder {
	b.subpath = append(b.subpath, elems...)

	return b
}

// Query appends a query parameter.
func (b *RequestBuilder) Query(key, value string) *RequestBuilder {
	b.query = append(b.query, apify.QueryParam{Key: key, Value: value})

	return b
}

// OptionalQuery appends a query parameter only when value is set.
func (b *RequestBuilder) OptionalQuery(key string, value *string) *RequestBuilder {
	if value != nil {
		b.Query(key, *value)
	}

	return b
}

// QueryParams appends already rendered parameters in order.
func (b *RequestBuilder) QueryParams(params []apify.QueryParam) *RequestBuilder {
	b.query = append(b.query, params...)

	return b
}

// Body sets a pre-serialized body together with the error its serialization
// produced, if any. A non-nil err makes Build fail.
func (b *RequestBuilder) Body(data []byte, err error) *RequestBuilder {
	b.body = data
	b.bodyErr = err

	return b
}

// JSONBody serializes v as the JSON request body.
func (b *RequestBuilder) JSONBody(v any) *RequestBuilder {
	data, err := json.Marshal(v)
	b.Header("Content-Type", constants.ContentTypeJSON)

	return b.Body(data, err)
}

// Header sets a request header.
func (b *RequestBuilder) Header(key, value string) *RequestBuilder {
	b.headers[key] = value

	return b
}

// RequireToken marks the request as authenticated regardless of the locator.
// Collection endpoints have no locator to derive this from.
func (b *RequestBuilder) RequireToken() *RequestBuilder {
	b.forceToken = true

	return b
}

// Build resolves the request. It fails with apify.ErrMissingToken when the
// request needs a token the client does not have, and with an apify.ParseError
// when the body could not be serialized.
func (b *RequestBuilder) Build() (*Request, error) {
	requiresToken := b.forceToken
	if b.resource != nil && b.resource.RequiresToken(b.method) {
		requiresToken = true
	}

	token := b.client.token
	if requiresToken && token == "" {
		return nil, &apify.ValidationError{Kind: apify.ValidationMissingToken}
	}

	if b.bodyErr != nil {
		return nil, &apify.ParseError{Err: b.bodyErr}
	}

	path := b.buildPath()

	var query strings.Builder

	for _, p := range b.query {
		appendQuery(&query, p.Key, p.Value)
	}

	if token != "" {
		appendQuery(&query, constants.QueryToken, token)
	}

	fullURL := b.client.baseURL + path
	if query.Len() > 0 {
		fullURL += "?" + query.String()
	}

	headers := make(map[string]string, len(b.headers))
	for k, v := range b.headers {
		headers[k] = v
	}

	return &Request{
		Method:        b.method,
		URL:           fullURL,
		Path:          path,
		Body:          b.body,
		Headers:       headers,
		RequiresToken: requiresToken,
	}, nil
}

// Send builds the request and executes it with the owning client.
func (b *RequestBuilder) Send(ctx context.Context) (*Response, error) {
	req, err := b.Build()
	if err != nil {
		return nil, err
	}

	return b.client.Do(ctx, req)
}

func (b *RequestBuilder) buildPath() string {
	var path strings.Builder

	path.WriteString("/")
	path.WriteString(b.segment)

	if b.resource != nil {
		path.WriteString("/")
		path.WriteString(url.PathEscape(b.resource.String()))
	}

	for _, elem := range b.subpath {
		path.WriteString("/")
		path.WriteString(url.PathEscape(elem))
	}

	return path.String()
}

func appendQuery(sb *strings.Builder, key, value string) {
	if sb.Len() > 0 {
		sb.WriteString("&")
	}

	sb.WriteString(url.QueryEscape(key))
	sb.WriteString("=")
	sb.WriteString(url.QueryEscape(value))
}

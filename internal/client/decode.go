package client

import (
	"bytes"
	"encoding/json"
	nethttp "net/http"
	"strconv"
	"strings"

	"github.com/metalwarrior665/apify-client-go/internal/constants"
	"github.com/metalwarrior665/apify-client-go/internal/http"
	"github.com/metalwarrior665/apify-client-go/pkg/apify"
)

// decodeEnvelope parses a {"data": T} response body. A missing or null data
// field is a parse error.
func decodeEnvelope[T any](resp *http.Response) (*T, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}

	err := json.Unmarshal(resp.Body, &envelope)
	if err != nil {
		return nil, &apify.ParseError{Err: err}
	}

	if len(envelope.Data) == 0 || bytes.Equal(envelope.Data, []byte("null")) {
		return nil, &apify.ParseError{Err: constants.ErrEnvelopeDataMissing}
	}

	var data T

	err = json.Unmarshal(envelope.Data, &data)
	if err != nil {
		return nil, &apify.ParseError{Err: err}
	}

	return &data, nil
}

// decodePagination rebuilds a page from the pagination headers and a bare
// JSON array body. desc is echoed from the request.
func decodePagination[T any](resp *http.Response, desc bool) (*apify.PaginationList[T], error) {
	total, err := paginationHeader(resp.Headers, constants.HeaderPaginationTotal)
	if err != nil {
		return nil, err
	}

	limit, err := paginationHeader(resp.Headers, constants.HeaderPaginationLimit)
	if err != nil {
		return nil, err
	}

	offset, err := paginationHeader(resp.Headers, constants.HeaderPaginationOffset)
	if err != nil {
		return nil, err
	}

	var items []T

	err = json.Unmarshal(resp.Body, &items)
	if err != nil {
		return nil, &apify.ParseError{Err: err}
	}

	if items == nil {
		items = []T{}
	}

	return &apify.PaginationList[T]{
		Total:  total,
		Offset: offset,
		Limit:  &limit,
		Count:  uint64(len(items)),
		Desc:   desc,
		Items:  items,
	}, nil
}

// decodeNoContent accepts any successful response without looking at the body.
func decodeNoContent(*http.Response) apify.NoContent {
	return apify.NoContent{}
}

func paginationHeader(headers nethttp.Header, name string) (uint64, error) {
	raw := headers.Get(name)
	if raw == "" {
		return 0, &apify.APIError{
			Kind:    apify.APIErrorFailure,
			Message: name + " header missing in response",
			Err:     constants.ErrPaginationHeaderMissing,
		}
	}

	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, &apify.APIError{
			Kind:    apify.APIErrorFailure,
			Message: name + " header cannot be parsed as an unsigned integer",
			Err:     constants.ErrPaginationHeaderInvalid,
		}
	}

	return value, nil
}

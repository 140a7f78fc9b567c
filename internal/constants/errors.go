package constants

import "errors"

// Configuration errors.
var (
	ErrNoTokenConfigured   = errors.New("no API token configured, use 'apify login' or set APIFY_TOKEN")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
	ErrEmptyTokenEntered   = errors.New("token must not be empty")
	ErrInvalidOutputFormat = errors.New("invalid output format, expected table, json or yaml")
)

// Response contract errors.
var (
	ErrPaginationHeaderMissing = errors.New("pagination header missing")
	ErrPaginationHeaderInvalid = errors.New("pagination header is not a number")
	ErrUnexpectedErrorFormat   = errors.New("Apify API did not return correct error format")
	ErrEnvelopeDataMissing     = errors.New("response has no data field")
)

// Input errors.
var (
	ErrReadingInput      = errors.New("failed to read input")
	ErrRecordValueNeeded = errors.New("either --value or --file is required")
)

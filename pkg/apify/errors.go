package apify

import (
	"errors"
	"fmt"
)

// ValidationKind identifies a locally detected misuse of the client.
type ValidationKind int

const (
	// ValidationMissingToken is returned when a request needs a token but none is configured.
	ValidationMissingToken ValidationKind = iota + 1
	// ValidationInvalidResourceIdentifier is returned when a locator is neither an ID nor an owner/name pair.
	ValidationInvalidResourceIdentifier
)

// ValidationError is raised before any network traffic happens. It is never retried.
type ValidationError struct {
	Kind  ValidationKind
	Value string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	switch e.Kind {
	case ValidationMissingToken:
		return "client validation failed: API token is required for this request"
	case ValidationInvalidResourceIdentifier:
		return fmt.Sprintf("client validation failed: %q is neither a resource ID nor an owner/name pair", e.Value)
	default:
		return "client validation failed"
	}
}

// Is matches any ValidationError of the same kind.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}

	return t.Kind == e.Kind
}

// APIErrorKind classifies failures reported by, or while talking to, the API.
type APIErrorKind int

const (
	// APIErrorNotFound is a 404 with a well-formed error envelope.
	APIErrorNotFound APIErrorKind = iota + 1
	// APIErrorRaw is any other 3xx/4xx (except 429) with a well-formed error envelope.
	APIErrorRaw
	// APIErrorMaxRateLimitRetries is returned once the 429 budget is spent.
	APIErrorMaxRateLimitRetries
	// APIErrorMaxServerFailedRetries is returned once the 5xx budget is spent.
	APIErrorMaxServerFailedRetries
	// APIErrorMaxTimeoutRetries is returned once the transport timeout budget is spent.
	APIErrorMaxTimeoutRetries
	// APIErrorFailure covers transport errors and responses that violate the API contract.
	APIErrorFailure
)

// String returns the kind name.
func (k APIErrorKind) String() string {
	switch k {
	case APIErrorNotFound:
		return "NotFound"
	case APIErrorRaw:
		return "RawError"
	case APIErrorMaxRateLimitRetries:
		return "MaxRateLimitRetriesReached"
	case APIErrorMaxServerFailedRetries:
		return "MaxServerFailedRetriesReached"
	case APIErrorMaxTimeoutRetries:
		return "MaxTimeoutRetriesReached"
	case APIErrorFailure:
		return "ApiFailure"
	default:
		return "Unknown"
	}
}

// APIError represents an error from the Apify API or from the request engine.
//
// StatusCode is the status of the last response (0 when none was received),
// Type and Message come from the API error envelope and Retries is the
// counter value that exhausted a retry budget.
type APIError struct {
	Kind       APIErrorKind `json:"kind"                  yaml:"kind"`
	StatusCode int          `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	Type       string       `json:"type,omitempty"        yaml:"type,omitempty"`
	Message    string       `json:"message,omitempty"     yaml:"message,omitempty"`
	Retries    int          `json:"retries,omitempty"     yaml:"retries,omitempty"`
	Err        error        `json:"-"                     yaml:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	switch e.Kind {
	case APIErrorNotFound:
		return "not found: " + e.Message
	case APIErrorRaw:
		if e.Type != "" {
			return fmt.Sprintf("API error %s (status %d): %s", e.Type, e.StatusCode, e.Message)
		}

		return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
	case APIErrorMaxRateLimitRetries:
		return fmt.Sprintf("rate limit retries exhausted after %d attempts", e.Retries)
	case APIErrorMaxServerFailedRetries:
		return fmt.Sprintf("server failure retries exhausted after %d attempts", e.Retries)
	case APIErrorMaxTimeoutRetries:
		return fmt.Sprintf("timeout retries exhausted after %d attempts", e.Retries)
	case APIErrorFailure:
		if e.Err != nil {
			return fmt.Sprintf("API failure: %s: %v", e.Message, e.Err)
		}

		return "API failure: " + e.Message
	default:
		return "unknown API error"
	}
}

// Unwrap exposes the transport or parse cause, if any.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches any APIError of the same kind.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}

	return t.Kind == e.Kind
}

// ParseError wraps a JSON (de)serialization failure. It is never retried.
type ParseError struct {
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Err == nil {
		return "parse error"
	}

	return "parse error: " + e.Err.Error()
}

// Unwrap returns the underlying encoding error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is matches any ParseError.
func (e *ParseError) Is(target error) bool {
	_, ok := target.(*ParseError)

	return ok
}

// Kind sentinels, usable with errors.Is.
var (
	ErrMissingToken               = &ValidationError{Kind: ValidationMissingToken}
	ErrInvalidResourceIdentifier  = &ValidationError{Kind: ValidationInvalidResourceIdentifier}
	ErrNotFound                   = &APIError{Kind: APIErrorNotFound}
	ErrRawAPIError                = &APIError{Kind: APIErrorRaw}
	ErrMaxRateLimitRetriesReached = &APIError{Kind: APIErrorMaxRateLimitRetries}
	ErrMaxServerRetriesReached    = &APIError{Kind: APIErrorMaxServerFailedRetries}
	ErrMaxTimeoutRetriesReached   = &APIError{Kind: APIErrorMaxTimeoutRetries}
	ErrAPIFailure                 = &APIError{Kind: APIErrorFailure}
	ErrParse                      = &ParseError{}
)

// Static errors for err113 compliance.
var (
	ErrConfigRequired         = errors.New("config is required")
	ErrInvalidBaseURL         = errors.New("invalid base URL")
	ErrNegativeRetryBaseDelay = errors.New("retry base delay must not be negative")
	ErrNegativeRetryLimit     = errors.New("retry limits must not be negative")
	ErrUnsupportedFormat      = errors.New("unsupported download format")
	ErrRecordKeyRequired      = errors.New("record key is required")
)

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRetriesExhausted reports whether any retry budget ran out.
func IsRetriesExhausted(err error) bool {
	return errors.Is(err, ErrMaxRateLimitRetriesReached) ||
		errors.Is(err, ErrMaxServerRetriesReached) ||
		errors.Is(err, ErrMaxTimeoutRetriesReached)
}

// IsValidationError checks if the error was raised locally before dispatch.
func IsValidationError(err error) bool {
	validationErr := &ValidationError{}

	return errors.As(err, &validationErr)
}

// IsParseError checks if the error is a serialization failure.
func IsParseError(err error) bool {
	return errors.Is(err, ErrParse)
}

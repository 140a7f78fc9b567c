package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/metalwarrior665/apify-client-go/internal/constants"
	"github.com/metalwarrior665/apify-client-go/internal/telemetry"
	"github.com/metalwarrior665/apify-client-go/pkg/apify"
)

// retryReason is the failure category a retry is charged to.
type retryReason string

const (
	reasonRateLimit     retryReason = "rate_limit"
	reasonServerFailure retryReason = "server_failure"
	reasonTimeout       retryReason = "timeout"
)

// retryState holds the per-call counters. Each category has its own budget
// and its own backoff exponent.
type retryState struct {
	limits        RetryLimits
	rateLimit     int
	serverFailure int
	timeout       int
}

// exhausted returns the error for the first category whose budget is spent.
func (s *retryState) exhausted() (retryReason, *apify.APIError) {
	switch {
	case s.rateLimit >= s.limits.RateLimit:
		return reasonRateLimit, &apify.APIError{Kind: apify.APIErrorMaxRateLimitRetries, Retries: s.rateLimit}
	case s.serverFailure >= s.limits.ServerFailure:
		return reasonServerFailure, &apify.APIError{Kind: apify.APIErrorMaxServerFailedRetries, Retries: s.serverFailure}
	case s.timeout >= s.limits.Timeout:
		return reasonTimeout, &apify.APIError{Kind: apify.APIErrorMaxTimeoutRetries, Retries: s.timeout}
	default:
		return "", nil
	}
}

// charge increments the counter of reason and returns its new value.
func (s *retryState) charge(reason retryReason) int {
	switch reason {
	case reasonRateLimit:
		s.rateLimit++

		return s.rateLimit
	case reasonServerFailure:
		s.serverFailure++

		return s.serverFailure
	default:
		s.timeout++

		return s.timeout
	}
}

// backoff returns base * 2^count. The delay is not capped; the clamp only
// keeps the shift from overflowing time.Duration.
func backoff(base time.Duration, count int) time.Duration {
	if base <= 0 {
		return 0
	}

	if count >= 62 || base > time.Duration(math.MaxInt64>>uint(count)) {
		return time.Duration(math.MaxInt64)
	}

	return base << uint(count)
}

// attemptResult is the classification of one exchange.
type attemptResult struct {
	response *Response
	retry    retryReason
	status   int
	err      error
}

type apiErrorEnvelope struct {
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Do sends req until it succeeds, fails terminally, or a retry budget runs out.
//
// 2xx responses are returned. 429, 5xx and transport timeouts are retried with
// exponential backoff. 404 yields apify.ErrNotFound, other 3xx/4xx yield
// apify.ErrRawAPIError, and everything else apify.ErrAPIFailure.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	requestID := uuid.NewString()
	start := time.Now()

	ctx, span := telemetry.StartCall(ctx, req.Method, req.Path)

	resp, err := c.retryLoop(ctx, req, requestID, span)

	telemetry.EndCall(span, err)
	c.metrics.ObserveCall(req.Method, callOutcome(err), time.Since(start))

	return resp, err
}

func (c *Client) retryLoop(ctx context.Context, req *Request, requestID string, span trace.Span) (*Response, error) {
	state := &retryState{limits: c.limits}

	for attempt := 1; ; attempt++ {
		if reason, err := state.exhausted(); err != nil {
			c.metrics.ObserveExhausted(string(reason))
			c.logError("Retries exhausted", map[string]interface{}{
				"request_id": requestID,
				"reason":     string(reason),
				"retries":    err.Retries,
				"url":        sanitizeURL(req.URL),
			})

			return nil, err
		}

		result := c.attempt(ctx, req, requestID, attempt)
		telemetry.RecordAttempt(span, attempt, result.status)

		if result.retry == "" {
			return result.response, result.err
		}

		count := state.charge(result.retry)
		delay := backoff(c.baseDelay, count)

		c.metrics.ObserveRetry(string(result.retry))
		telemetry.RecordRetry(span, string(result.retry), count)
		c.logWarn("Retrying request", map[string]interface{}{
			"request_id": requestID,
			"reason":     string(result.retry),
			"status":     result.status,
			"retry":      count,
			"delay":      delay.String(),
		})

		// The next exhaustion check fails anyway; don't wait for nothing.
		if _, err := state.exhausted(); err != nil {
			continue
		}

		err := c.sleep(ctx, delay)
		if err != nil {
			return nil, &apify.APIError{Kind: apify.APIErrorFailure, Message: "interrupted while backing off", Err: err}
		}
	}
}

// attempt performs one exchange and classifies it.
func (c *Client) attempt(ctx context.Context, req *Request, requestID string, attempt int) attemptResult {
	if c.limiter != nil {
		err := c.limiter.Wait(ctx)
		if err != nil {
			return attemptResult{err: &apify.APIError{Kind: apify.APIErrorFailure, Message: "waiting for rate limiter", Err: err}}
		}
	}

	httpReq, err := c.newHTTPRequest(ctx, req, requestID)
	if err != nil {
		return attemptResult{err: &apify.APIError{Kind: apify.APIErrorFailure, Message: "creating request", Err: err}}
	}

	if c.debug {
		c.logDebug("HTTP Request", map[string]interface{}{
			"request_id": requestID,
			"method":     req.Method,
			"url":        sanitizeURL(req.URL),
			"attempt":    attempt,
			"body_size":  len(req.Body),
		})
	}

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.ObserveAttempt(req.Method, 0)

		return c.classifyTransportError(ctx, err)
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		c.metrics.ObserveAttempt(req.Method, httpResp.StatusCode)

		return c.classifyTransportError(ctx, err)
	}

	c.metrics.ObserveAttempt(req.Method, httpResp.StatusCode)

	if c.debug {
		c.logDebug("HTTP Response", map[string]interface{}{
			"request_id": requestID,
			"status":     httpResp.StatusCode,
			"duration":   time.Since(start).String(),
			"body_size":  len(body),
		})
	}

	return classifyStatus(httpResp, body)
}

func (c *Client) newHTTPRequest(ctx context.Context, req *Request, requestID string) (*retryablehttp.Request, error) {
	var body interface{}
	if req.Body != nil {
		body = req.Body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", req.Method, err)
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(constants.HeaderRequestID, requestID)

	return httpReq, nil
}

// classifyTransportError decides whether a failed exchange is a retryable timeout.
// A cancelled or expired caller context is always terminal.
func (c *Client) classifyTransportError(ctx context.Context, err error) attemptResult {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return attemptResult{err: &apify.APIError{Kind: apify.APIErrorFailure, Message: "request cancelled", Err: ctxErr}}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return attemptResult{retry: reasonTimeout}
	}

	return attemptResult{err: &apify.APIError{Kind: apify.APIErrorFailure, Message: "transport error", Err: err}}
}

func classifyStatus(httpResp *http.Response, body []byte) attemptResult {
	status := httpResp.StatusCode

	switch {
	case status == http.StatusTooManyRequests:
		return attemptResult{retry: reasonRateLimit, status: status}
	case status >= http.StatusInternalServerError:
		return attemptResult{retry: reasonServerFailure, status: status}
	case status >= http.StatusMultipleChoices:
		return attemptResult{status: status, err: parseAPIError(status, body)}
	case status >= http.StatusOK:
		return attemptResult{status: status, response: &Response{
			StatusCode: status,
			Headers:    httpResp.Header,
			Body:       body,
		}}
	default:
		return attemptResult{status: status, err: &apify.APIError{
			Kind:       apify.APIErrorFailure,
			StatusCode: status,
			Message:    "unexpected status " + strconv.Itoa(status),
		}}
	}
}

func parseAPIError(status int, body []byte) error {
	var envelope apiErrorEnvelope

	decoder := json.NewDecoder(bytes.NewReader(body))

	err := decoder.Decode(&envelope)
	if err == nil && envelope.Error == nil {
		err = constants.ErrUnexpectedErrorFormat
	}

	if err != nil {
		return &apify.APIError{
			Kind:       apify.APIErrorFailure,
			StatusCode: status,
			Message:    constants.ErrUnexpectedErrorFormat.Error(),
			Err:        err,
		}
	}

	kind := apify.APIErrorRaw
	if status == http.StatusNotFound {
		kind = apify.APIErrorNotFound
	}

	return &apify.APIError{
		Kind:       kind,
		StatusCode: status,
		Type:       envelope.Error.Type,
		Message:    envelope.Error.Message,
	}
}

func callOutcome(err error) string {
	if err == nil {
		return "success"
	}

	var apiErr *apify.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind.String()
	}

	return "error"
}

func (c *Client) logDebug(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, fields)
	}
}

func (c *Client) logWarn(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Warn(msg, fields)
	}
}

func (c *Client) logError(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Error(msg, fields)
	}
}

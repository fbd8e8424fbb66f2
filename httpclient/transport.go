package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/gaborage/replicon-go/config"
	"github.com/gaborage/replicon-go/logger"
)

// HTTPTransport is the net/http backed Transport implementation.
// A single instance is shared by all dispatch workers.
type HTTPTransport struct {
	client            *http.Client
	log               logger.Logger
	correlationHeader string
}

// Ensure HTTPTransport implements the interface
var _ Transport = (*HTTPTransport)(nil)

// TransportOption configures the transport.
type TransportOption func(*HTTPTransport)

// WithHTTPClient replaces the underlying *http.Client. The default client
// carries no timeout; cancellation, when wanted, comes from the context.
func WithHTTPClient(c *http.Client) TransportOption {
	return func(t *HTTPTransport) {
		if c != nil {
			t.client = c
		}
	}
}

// NewHTTPTransport creates a transport that extracts the correlation ID from
// the named response header and logs every exchange through log.
func NewHTTPTransport(log logger.Logger, correlationHeader string, opts ...TransportOption) *HTTPTransport {
	if correlationHeader == "" {
		correlationHeader = config.DefaultCorrelationHeader
	}
	t := &HTTPTransport{
		client:            &http.Client{},
		log:               log,
		correlationHeader: correlationHeader,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Send performs one synchronous exchange and classifies the outcome.
// Structural successes, including application-level error bodies and 429
// responses, come back as a Result; only transport faults return an error.
func (t *HTTPTransport) Send(ctx context.Context, req *Request) (*Result, error) {
	httpReq, err := t.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, classifyTransportFailure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == StatusRateLimited {
		t.log.Warn().
			Int("status", resp.StatusCode).
			Interface("payload", map[string]any(req.Payload)).
			Msg("request throttled by backend")
		return &Result{StatusCode: resp.StatusCode, Body: RateLimitMessage}, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewHTTPError("failed to read response body", resp.StatusCode, err)
	}

	correlationID := resp.Header.Get(t.correlationHeader)
	if correlationID == "" {
		return nil, NewProtocolError(fmt.Sprintf("response is missing the %s header", t.correlationHeader))
	}
	t.log.Debug().
		Str("correlation_id", correlationID).
		Interface("payload", map[string]any(req.Payload)).
		Msg("correlation ID received")

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, NewDecodeError("response body is not valid JSON", err)
	}

	result := &Result{
		StatusCode:    resp.StatusCode,
		CorrelationID: correlationID,
		Body:          decoded,
	}

	if obj, ok := decoded.(map[string]any); ok {
		if appErr, present := obj["error"]; present && appErr != nil {
			result.Body = appErr
			result.AppError = true
			t.log.Error().
				Int("status", resp.StatusCode).
				Interface("payload", map[string]any(req.Payload)).
				Interface("response", appErr).
				Msg("backend returned an application error")
			return result, nil
		}
	}

	t.log.Info().
		Int("status", resp.StatusCode).
		Interface("payload", map[string]any(req.Payload)).
		Interface("response", decoded).
		Msg("request completed")
	return result, nil
}

// buildRequest serializes the payload per method, applies headers and credentials.
func (t *HTTPTransport) buildRequest(ctx context.Context, req *Request) (*http.Request, error) {
	var httpReq *http.Request
	var err error

	switch req.Method {
	case config.MethodPost:
		var body []byte
		body, err = json.Marshal(req.Payload)
		if err != nil {
			return nil, NewValidationError("failed to serialize payload", err)
		}
		httpReq, err = http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(body))
	case config.MethodGet:
		target := req.URL
		if len(req.Payload) > 0 {
			target, err = appendQuery(req.URL, req.Payload)
			if err != nil {
				return nil, NewValidationError("failed to build query parameters", err)
			}
		}
		httpReq, err = http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	default:
		return nil, NewValidationError(fmt.Sprintf("unsupported method %q", req.Method), nil)
	}
	if err != nil {
		return nil, NewValidationError("failed to build request", err)
	}

	requestID := ""
	for name, value := range req.Headers {
		httpReq.Header.Set(name, value)
		if strings.EqualFold(name, HeaderXRequestID) {
			requestID = value
		}
	}
	if requestID == "" {
		httpReq.Header.Set(HeaderXRequestID, uuid.NewString())
	}

	if req.Credentials != nil {
		switch {
		case req.Credentials.Token != "":
			httpReq.Header.Set("Authorization", "Bearer "+req.Credentials.Token)
		case req.Credentials.Basic != nil:
			httpReq.SetBasicAuth(req.Credentials.Basic.Username, req.Credentials.Basic.Password)
		}
	}

	return httpReq, nil
}

// appendQuery encodes the payload as URL query parameters for GET requests.
func appendQuery(rawURL string, payload Payload) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for key, value := range payload {
		q.Set(key, fmt.Sprint(value))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// classifyTransportFailure maps net/http failures onto the error taxonomy.
// Caller-initiated cancellation is not a transport fault and passes through
// unclassified, so the handler propagates it instead of retrying.
func classifyTransportFailure(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("request deadline exceeded", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewTimeoutError("network timeout", err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return NewNetworkError("request failed", err)
	}
	return NewNetworkError("connection failed", err)
}

// Package httpclient implements the transport layer: one synchronous HTTP
// exchange per call, with payload serialization, credential application,
// correlation-ID extraction, and JSON body decoding. Retry policy lives a
// layer up in the handler package; the transport only classifies what
// happened into the ClientError taxonomy.
package httpclient

import (
	"context"
)

const (
	// HeaderXRequestID is the outbound header carrying the client-generated request ID
	HeaderXRequestID = "X-Request-ID"

	// RateLimitMessage is the fixed body substituted for throttled responses.
	// The backend does not guarantee a parseable body or a correlation header
	// on 429, so the transport never looks for them.
	RateLimitMessage = "API Calls Limit Reached."

	// StatusRateLimited is the backend's throttling signal
	StatusRateLimited = 429
)

// Payload is one logical unit of work: an opaque JSON-serializable mapping
// sent as the request body (post) or query parameters (get). The transport
// assumes nothing about its internal structure.
type Payload map[string]any

// Transport performs a single blocking HTTP call. Implementations must be
// safe for concurrent use; the dispatcher shares one instance across workers.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Result, error)
}

// Request carries everything needed for one exchange.
type Request struct {
	Method      string // config.MethodPost or config.MethodGet
	URL         string
	Headers     map[string]string
	Payload     Payload
	Credentials *Credentials
}

// Credentials selects the authentication applied to the outbound request:
// a basic pair or a bearer token, never both.
type Credentials struct {
	Basic *BasicAuth
	Token string
}

// BasicAuth contains basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// Result is the structural outcome of one exchange. Application-level error
// bodies are results, not faults: when the decoded body carries an "error"
// field, Body holds that field's value and AppError is true.
type Result struct {
	StatusCode    int
	CorrelationID string
	Body          any
	AppError      bool
}

// RateLimited reports whether the backend throttled this exchange.
func (r *Result) RateLimited() bool {
	return r.StatusCode == StatusRateLimited
}

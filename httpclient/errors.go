package httpclient

import (
	"errors"
	"fmt"
)

// ErrorType identifies the category of a transport failure. The handler
// switches on this closed set rather than on concrete error types.
type ErrorType int

const (
	// NetworkError indicates a connection-level failure (dial, reset, DNS). Retryable.
	NetworkError ErrorType = iota
	// TimeoutError indicates the call exceeded its deadline. Retryable.
	TimeoutError
	// HTTPError indicates a protocol-level failure while exchanging the
	// request or reading the response. Retryable.
	HTTPError
	// DecodeError indicates the response body was not valid JSON. Fatal.
	DecodeError
	// ProtocolError indicates the backend broke its response contract,
	// e.g. the correlation header is missing. Fatal.
	ProtocolError
	// ValidationError indicates the request could not be constructed. Fatal.
	ValidationError
)

// String returns the human-readable name of the error type.
func (t ErrorType) String() string {
	switch t {
	case NetworkError:
		return "network"
	case TimeoutError:
		return "timeout"
	case HTTPError:
		return "http"
	case DecodeError:
		return "decode"
	case ProtocolError:
		return "protocol"
	case ValidationError:
		return "validation"
	default:
		return "unknown"
	}
}

// ClientError is the interface implemented by all transport-layer errors.
type ClientError interface {
	error
	Type() ErrorType
}

type networkError struct {
	message string
	cause   error
}

func (e *networkError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("network error: %s: %v", e.message, e.cause)
	}
	return fmt.Sprintf("network error: %s", e.message)
}

func (e *networkError) Type() ErrorType { return NetworkError }
func (e *networkError) Unwrap() error   { return e.cause }

// NewNetworkError creates a retryable connection-level error.
func NewNetworkError(message string, cause error) ClientError {
	return &networkError{message: message, cause: cause}
}

type timeoutError struct {
	message string
	cause   error
}

func (e *timeoutError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("timeout error: %s: %v", e.message, e.cause)
	}
	return fmt.Sprintf("timeout error: %s", e.message)
}

func (e *timeoutError) Type() ErrorType { return TimeoutError }
func (e *timeoutError) Unwrap() error   { return e.cause }

// NewTimeoutError creates a retryable deadline error.
func NewTimeoutError(message string, cause error) ClientError {
	return &timeoutError{message: message, cause: cause}
}

type httpError struct {
	message    string
	statusCode int
	cause      error
}

func (e *httpError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("HTTP error: %s (status %d): %v", e.message, e.statusCode, e.cause)
	}
	return fmt.Sprintf("HTTP error: %s (status %d)", e.message, e.statusCode)
}

func (e *httpError) Type() ErrorType { return HTTPError }
func (e *httpError) Unwrap() error   { return e.cause }

// StatusCode returns the HTTP status observed when the failure occurred,
// or zero when none was received.
func (e *httpError) StatusCode() int { return e.statusCode }

// NewHTTPError creates a retryable protocol-level exchange error.
func NewHTTPError(message string, statusCode int, cause error) ClientError {
	return &httpError{message: message, statusCode: statusCode, cause: cause}
}

type decodeError struct {
	message string
	cause   error
}

func (e *decodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("decode error: %s: %v", e.message, e.cause)
	}
	return fmt.Sprintf("decode error: %s", e.message)
}

func (e *decodeError) Type() ErrorType { return DecodeError }
func (e *decodeError) Unwrap() error   { return e.cause }

// NewDecodeError creates a fatal malformed-body error.
func NewDecodeError(message string, cause error) ClientError {
	return &decodeError{message: message, cause: cause}
}

type protocolError struct {
	message string
}

func (e *protocolError) Error() string {
	return fmt.Sprintf("protocol error: %s", e.message)
}

func (e *protocolError) Type() ErrorType { return ProtocolError }

// NewProtocolError creates a fatal response-contract error.
func NewProtocolError(message string) ClientError {
	return &protocolError{message: message}
}

type validationError struct {
	message string
	cause   error
}

func (e *validationError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("validation error: %s: %v", e.message, e.cause)
	}
	return fmt.Sprintf("validation error: %s", e.message)
}

func (e *validationError) Type() ErrorType { return ValidationError }
func (e *validationError) Unwrap() error   { return e.cause }

// NewValidationError creates a fatal request-construction error.
func NewValidationError(message string, cause error) ClientError {
	return &validationError{message: message, cause: cause}
}

// IsErrorType checks whether err is a ClientError of the given type.
func IsErrorType(err error, errorType ErrorType) bool {
	var clientErr ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type() == errorType
	}
	return false
}

// IsRetryable reports whether err belongs to the retryable subset of the
// taxonomy: connection-level, timeout, and protocol-exchange failures. All
// other errors are fatal and must propagate to the caller unchanged.
func IsRetryable(err error) bool {
	var clientErr ClientError
	if !errors.As(err, &clientErr) {
		return false
	}
	switch clientErr.Type() {
	case NetworkError, TimeoutError, HTTPError:
		return true
	default:
		return false
	}
}

// IsSuccessStatus checks if the status code indicates success (2xx range)
func IsSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

package networking

import (
	"errors"
	"fmt"
)

// Call errors. Every failed call surfaces exactly one of these kinds; use
// errors.Is against the sentinel and errors.As against the typed error to
// recover details such as the cause or the response body.
var (
	ErrInvalidRequest       = errors.New("invalid request")
	ErrTransform            = errors.New("prerequest transformer failed")
	ErrTransport            = errors.New("transport failed")
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrNotAnHTTPResponse    = errors.New("response is not an http response")
	ErrResponseProcessor    = errors.New("response processor failed")
	ErrDecode               = errors.New("response body decode failed")
	ErrUnknown              = errors.New("unknown networking error")
)

// Transformer errors
var (
	ErrNoTokenAvailable = errors.New("no access token available")
)

// Builder and configuration errors
var (
	ErrBaseURLRequired        = errors.New("base url is required")
	ErrInvalidBaseURL         = errors.New("base url is invalid")
	ErrInvalidStatusRange     = errors.New("allowed status code range is invalid")
	ErrNilTransport           = errors.New("transport is nil")
	ErrNilTransformer         = errors.New("prerequest transformer is nil")
	ErrNilProcessor           = errors.New("response processor is nil")
	ErrNilCodec               = errors.New("codec is nil")
	ErrMissingVerb            = errors.New("request verb is required for send")
	ErrUnsupportedVerb        = errors.New("unsupported request verb")
	ErrUnsupportedFormValue   = errors.New("form value must be a scalar")
	ErrUnsupportedFormInput   = errors.New("unsupported form input")
	ErrDecodeTargetNotPointer = errors.New("decode target must be a non-nil pointer")
)

// Config validation errors
var (
	ErrConfigNil                  = errors.New("config is nil")
	ErrConfigNotPointer           = errors.New("config must be a pointer")
	ErrConfigNotStruct            = errors.New("config must be a struct")
	ErrConfigRequiredFieldMissing = errors.New("required field is missing")
	ErrUnsupportedTypeForDefault  = errors.New("unsupported type for default value")
	ErrConfigFeederError          = errors.New("config feeder error")
	ErrConfigInvalid              = errors.New("config is invalid")
	ErrDefaultValueOverflow       = errors.New("default value overflows field")
	ErrIncompatibleFieldKind      = errors.New("default value incompatible with field kind")
	ErrUnsupportedFormatType      = errors.New("unsupported config format")
)

// InvalidRequestError reports a descriptor that could not be turned into a
// wire request.
type InvalidRequestError struct {
	Reason string
	Cause  error
}

func (e *InvalidRequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", ErrInvalidRequest, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidRequest, e.Reason)
}

func (e *InvalidRequestError) Is(target error) bool { return target == ErrInvalidRequest }

func (e *InvalidRequestError) Unwrap() error { return e.Cause }

// TransformError wraps the error of the first prerequest transformer that failed.
type TransformError struct {
	Cause error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("%s: %v", ErrTransform, e.Cause)
}

func (e *TransformError) Is(target error) bool { return target == ErrTransform }

func (e *TransformError) Unwrap() error { return e.Cause }

// TransportError wraps a failure of the transport call itself.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", ErrTransport, e.Cause)
}

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

func (e *TransportError) Unwrap() error { return e.Cause }

// UnexpectedStatusCodeError is returned when the response status lies outside
// the allowed range. Body holds the raw response body for diagnostics.
type UnexpectedStatusCodeError struct {
	StatusCode int
	Body       []byte
}

func (e *UnexpectedStatusCodeError) Error() string {
	return fmt.Sprintf("%s: %d", ErrUnexpectedStatusCode, e.StatusCode)
}

func (e *UnexpectedStatusCodeError) Is(target error) bool { return target == ErrUnexpectedStatusCode }

// ResponseProcessorError wraps the error of a response processor.
type ResponseProcessorError struct {
	Cause error
}

func (e *ResponseProcessorError) Error() string {
	return fmt.Sprintf("%s: %v", ErrResponseProcessor, e.Cause)
}

func (e *ResponseProcessorError) Is(target error) bool { return target == ErrResponseProcessor }

func (e *ResponseProcessorError) Unwrap() error { return e.Cause }

// DecodeError wraps a failure to decode the response body into the requested type.
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %v", ErrDecode, e.Cause)
}

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

func (e *DecodeError) Unwrap() error { return e.Cause }

// UnknownError wraps any failure that matches no other kind.
type UnknownError struct {
	Cause error
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("%s: %v", ErrUnknown, e.Cause)
}

func (e *UnknownError) Is(target error) bool { return target == ErrUnknown }

func (e *UnknownError) Unwrap() error { return e.Cause }

var taxonomyKinds = []error{
	ErrInvalidRequest, ErrTransform, ErrTransport, ErrUnexpectedStatusCode,
	ErrNotAnHTTPResponse, ErrResponseProcessor, ErrDecode, ErrUnknown,
}

// isTaxonomyError reports whether err, or any error it wraps, already belongs
// to the call error taxonomy.
func isTaxonomyError(err error) bool {
	for _, kind := range taxonomyKinds {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// normalizeError funnels any error into the taxonomy, wrapping strangers as UnknownError.
func normalizeError(err error) error {
	if err == nil || isTaxonomyError(err) {
		return err
	}
	return &UnknownError{Cause: err}
}

package networking

import (
	"context"
	"fmt"
)

// ResponseProcessor inspects a raw response before it is treated as a success.
// Returning an error fails the call; processors must not modify body or resp.
type ResponseProcessor interface {
	Process(ctx context.Context, body []byte, resp *RawResponse) error
}

// ProcessorFunc adapts a function to a ResponseProcessor.
type ProcessorFunc func(ctx context.Context, body []byte, resp *RawResponse) error

// Process implements ResponseProcessor.
func (f ProcessorFunc) Process(ctx context.Context, body []byte, resp *RawResponse) error {
	return f(ctx, body, resp)
}

// StatusRange is a closed range of status codes.
type StatusRange struct {
	Min int
	Max int
}

// DefaultStatusRange accepts every 2xx status.
var DefaultStatusRange = StatusRange{Min: 200, Max: 299}

// Contains reports whether code lies within the range, bounds included.
func (r StatusRange) Contains(code int) bool {
	return code >= r.Min && code <= r.Max
}

// Validate rejects ranges whose bounds are reversed or not positive.
func (r StatusRange) Validate() error {
	if r.Min <= 0 || r.Max < r.Min {
		return fmt.Errorf("%w: %d...%d", ErrInvalidStatusRange, r.Min, r.Max)
	}
	return nil
}

func (r StatusRange) String() string {
	return fmt.Sprintf("%d...%d", r.Min, r.Max)
}

// AllowedStatusRangeProcessor fails responses whose status lies outside Range.
// The client always runs one as the last processor of the chain.
type AllowedStatusRangeProcessor struct {
	Range StatusRange
}

// Process implements ResponseProcessor.
func (p AllowedStatusRangeProcessor) Process(_ context.Context, body []byte, resp *RawResponse) error {
	if resp == nil || !resp.HasStatus() {
		return ErrNotAnHTTPResponse
	}
	if !p.Range.Contains(resp.StatusCode) {
		return &UnexpectedStatusCodeError{StatusCode: resp.StatusCode, Body: body}
	}
	return nil
}

// processChain runs processors in order and stops at the first failure.
// Errors that already belong to the call taxonomy pass through unchanged,
// anything else becomes a ResponseProcessorError.
func processChain(ctx context.Context, body []byte, resp *RawResponse, processors []ResponseProcessor) error {
	for _, p := range processors {
		if err := ctx.Err(); err != nil {
			return &ResponseProcessorError{Cause: err}
		}
		if err := p.Process(ctx, body, resp); err != nil {
			if isTaxonomyError(err) {
				return err
			}
			return &ResponseProcessorError{Cause: err}
		}
	}
	return nil
}

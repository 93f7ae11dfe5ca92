package aiops

import (
	"errors"
	"fmt"

	"resume-builder/internal/credits"
	"resume-builder/internal/llm"
)

// Kind is the failure taxonomy reported to callers.
type Kind string

const (
	KindUnauthorized          Kind = "unauthorized"
	KindInsufficientCredits   Kind = "insufficient_credits"
	KindUpstreamUnavailable   Kind = "upstream_unavailable"
	KindUpstreamEmptyResponse Kind = "upstream_empty_response"
	KindResponseParseError    Kind = "response_parse_error"
	KindRefundFailed          Kind = "refund_failed"
	KindInternal              Kind = "internal_error"
)

// ErrResponseParse marks model output that does not have the expected shape.
var ErrResponseParse = errors.New("unparseable model response")

// Error is a classified lifecycle failure.
type Error struct {
	Kind Kind
	// Required and Available are set for KindInsufficientCredits.
	Required  int
	Available int
	Err       error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the taxonomy kind of err, or KindInternal.
func KindOf(err error) Kind {
	var opErr *Error
	if errors.As(err, &opErr) {
		return opErr.Kind
	}
	return KindInternal
}

func insufficient(err error, required int) *Error {
	out := &Error{Kind: KindInsufficientCredits, Required: required, Err: err}
	var detail *credits.InsufficientError
	if errors.As(err, &detail) {
		out.Required = detail.Required
		out.Available = detail.Available
	}
	return out
}

// classifyExternal maps a generation or parse failure into the taxonomy. Timeouts and
// transport errors count as an unavailable upstream.
func classifyExternal(err error) *Error {
	var upstream *llm.UpstreamError
	switch {
	case errors.As(err, &upstream):
		return &Error{Kind: KindUpstreamUnavailable, Err: err}
	case errors.Is(err, llm.ErrEmptyResponse):
		return &Error{Kind: KindUpstreamEmptyResponse, Err: err}
	case errors.Is(err, ErrResponseParse):
		return &Error{Kind: KindResponseParseError, Err: err}
	default:
		return &Error{Kind: KindUpstreamUnavailable, Err: err}
	}
}

package llm

import (
	"context"
	"errors"
	"fmt"
)

// Client abstracts text-generation providers.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is a single-shot completion.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
}

var (
	// ErrEmptyResponse is returned when the provider answers without usable content.
	ErrEmptyResponse = errors.New("llm returned no content")
	// ErrNotConfigured is returned by the disabled client.
	ErrNotConfigured = errors.New("llm provider not configured")
)

// UpstreamError reports a transport failure or a non-success status from the provider.
// Status is 0 when no HTTP response was received.
type UpstreamError struct {
	Provider string
	Status   int
	Message  string
	Err      error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Status > 0 && e.Message != "":
		return fmt.Sprintf("%s upstream status %d: %s", e.Provider, e.Status, e.Message)
	case e.Status > 0:
		return fmt.Sprintf("%s upstream status %d", e.Provider, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s upstream: %v", e.Provider, e.Err)
	default:
		return e.Provider + " upstream unavailable"
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Disabled fails every call. It is used when no provider is configured.
type Disabled struct{}

func (Disabled) Complete(ctx context.Context, req Request) (string, error) {
	_ = ctx
	_ = req
	return "", &UpstreamError{Provider: "none", Err: ErrNotConfigured}
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"

	openai "github.com/openai/openai-go/v3"
)

// FailureKind classifies a failed summarization call.
type FailureKind string

const (
	KindTimeout    FailureKind = "timeout"
	KindConnection FailureKind = "connection"
	KindStatus     FailureKind = "status"
	KindMalformed  FailureKind = "malformed"
)

// CallError is returned by Client.Summarize for every failed call.
type CallError struct {
	Kind       FailureKind
	StatusCode int // Set for KindStatus.
	Err        error
}

func (e *CallError) Error() string {
	switch e.Kind {
	case KindTimeout:
		return fmt.Sprintf("timed out waiting for the model: %s", truncate(e.Err.Error(), 200))
	case KindConnection:
		return fmt.Sprintf("could not connect to the model server: %s", truncate(e.Err.Error(), 200))
	case KindStatus:
		return fmt.Sprintf("model server returned status %d: %s", e.StatusCode, truncate(e.Err.Error(), 200))
	default:
		return fmt.Sprintf("unexpected response from the model server: %s", truncate(e.Err.Error(), 200))
	}
}

func (e *CallError) Unwrap() error { return e.Err }

// Classify maps a transport or SDK error onto a CallError.
func Classify(err error) *CallError {
	if err == nil {
		return nil
	}
	var ce *CallError
	if errors.As(err, &ce) {
		return ce
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &CallError{Kind: KindTimeout, Err: err}
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &CallError{Kind: KindStatus, StatusCode: apiErr.StatusCode, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &CallError{Kind: KindTimeout, Err: err}
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return &CallError{Kind: KindConnection, Err: err}
	}
	var opErr *net.OpError
	var urlErr *url.Error
	if errors.As(err, &opErr) || errors.As(err, &urlErr) {
		return &CallError{Kind: KindConnection, Err: err}
	}
	return &CallError{Kind: KindMalformed, Err: err}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

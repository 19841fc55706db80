// Package llm abstracts over LLM chat-completion backends so workers never
// need to know whether they're talking to OpenAI, OpenRouter, a local
// OpenAI-compatible server, or Anthropic.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Backend generates a completion given a system and user prompt.
type Backend interface {
	Generate(ctx context.Context, system, user string) (string, error)
	ModelName() string
}

// ErrorKind classifies a Backend failure.
type ErrorKind int

const (
	ErrAPI ErrorKind = iota
	ErrConfig
	ErrRateLimited
	ErrEmptyResponse
)

// Error is the typed failure every Backend implementation returns.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrRateLimited:
		return "rate limited"
	case ErrEmptyResponse:
		return "empty response"
	case ErrConfig:
		return "configuration error: " + e.Msg
	default:
		return "api error: " + e.Msg
	}
}

func apiErr(format string, args ...any) error {
	return &Error{Kind: ErrAPI, Msg: fmt.Sprintf(format, args...)}
}

// ErrEmpty is returned when a backend's response contains no content.
var ErrEmpty = &Error{Kind: ErrEmptyResponse}

// KindOf extracts the ErrorKind from err if it is (or wraps) an *Error.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

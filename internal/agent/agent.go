// Package agent defines the uniform contract every worker implements, and
// the typed failures a worker's process step can return to the swarm driver.
package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/duskline/robin-smesh/internal/field"
	"github.com/google/uuid"
)

// OsintAgent is the uniform worker contract. Sense must be side-effect-free;
// Process is the only mutation entry point.
type OsintAgent interface {
	ID() string
	AgentType() string
	Sense(f *field.Field) []string
	Process(ctx context.Context, f *field.Field) ([]string, error)
	Heartbeat(f *field.Field)
}

// Config is the shared construction parameters for every worker.
type Config struct {
	ID               string
	SensingThreshold float64
	MaxConcurrent    int
}

// DefaultConfig returns a config with an 8-character id (first 8 chars of a
// fresh UUIDv4) and the default threshold/concurrency.
func DefaultConfig() Config {
	return Config{
		ID:               uuid.NewString()[:8],
		SensingThreshold: 0.1,
		MaxConcurrent:    3,
	}
}

// WithID overrides the generated id — used to give each worker instance a
// stable, human-readable name like "crawler-1".
func (c Config) WithID(id string) Config {
	c.ID = id
	return c
}

func (c Config) WithThreshold(t float64) Config {
	c.SensingThreshold = t
	return c
}

// Kind enumerates the typed failures a worker's Process step may return.
type Kind int

const (
	// KindLlm, KindNetwork, and KindParse are transient external failures;
	// the driver logs them and continues.
	KindLlm Kind = iota
	KindNetwork
	KindParse
	// KindNoWork means nothing matched this tick — normal, not logged at
	// warn level.
	KindNoWork
	// KindNotReady means the worker's preconditions aren't met yet.
	KindNotReady
)

// Error is the typed failure a worker's Process returns instead of a bare
// error, so the driver can switch on Kind.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNoWork:
		return "no work"
	case KindNotReady:
		return "not ready: " + e.Reason
	case KindLlm:
		return "llm error: " + e.Reason
	case KindNetwork:
		return "network error: " + e.Reason
	case KindParse:
		return "parse error: " + e.Reason
	default:
		return "agent error"
	}
}

// ErrNoWork is the sentinel value workers return when nothing on the field
// matched their sensing predicate this tick.
var ErrNoWork = &Error{Kind: KindNoWork}

func NotReady(reason string) error { return &Error{Kind: KindNotReady, Reason: reason} }
func Llm(reason string) error      { return &Error{Kind: KindLlm, Reason: reason} }
func Network(reason string) error  { return &Error{Kind: KindNetwork, Reason: reason} }
func Parse(reason string) error    { return &Error{Kind: KindParse, Reason: reason} }

// Wrapf builds an agent error of the given kind whose reason is the
// formatted message, for annotating a failure with context.
func Wrapf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind from err if it is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

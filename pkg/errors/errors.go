package errors

import (
	"fmt"
	"strings"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when authentication fails
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrConflict is returned when there's a conflict (e.g. a replayed webhook delivery)
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "conflict"
}

// ErrValidation is returned when validation fails
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrUnsupportedCollection is returned when a collection handle has no field rule.
// It is permanent for the product until its collection membership changes.
type ErrUnsupportedCollection struct {
	Handle    string
	Supported []string
}

func (e *ErrUnsupportedCollection) Error() string {
	if e.Handle == "" {
		return "product is not part of a supported collection"
	}
	return fmt.Sprintf("collection %q is not supported", e.Handle)
}

// ErrUpstreamUnavailable is returned when the Shopify Admin API cannot be reached
// or answers with a transport-level failure (non-200, throttled).
type ErrUpstreamUnavailable struct {
	Operation  string
	StatusCode int
	Err        error
}

func (e *ErrUpstreamUnavailable) Error() string {
	var b strings.Builder
	b.WriteString("shopify unavailable")
	if e.Operation != "" {
		b.WriteString(" (" + e.Operation + ")")
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *ErrUpstreamUnavailable) Unwrap() error {
	return e.Err
}

// ErrInvalidStateTransition is returned when an invalid save state transition is attempted
type ErrInvalidStateTransition struct {
	From string
	To   string
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

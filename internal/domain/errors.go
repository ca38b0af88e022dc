// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrMissingType indicates a message cannot be formatted because it has no
// type; there is no sensible default.
var ErrMissingType = errors.New("message type is required")

// ErrMissingSender indicates a message cannot be formatted because it has
// no sender; there is no sensible default.
var ErrMissingSender = errors.New("message sender is required")

// ErrCircuitOpen indicates an operation was rejected because its circuit
// breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

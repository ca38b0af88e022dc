// Package fault defines the operational error taxonomy and the classifier
// that turns raw failures into typed error details.
package fault

import (
	"strings"
	"time"
)

// Category groups operational failures by their likely origin.
type Category string

const (
	CategoryNetwork        Category = "network"
	CategoryTimeout        Category = "timeout"
	CategoryAuthentication Category = "authentication"
	CategoryValidation     Category = "validation"
	CategoryUnknown        Category = "unknown"
)

// Code is the default error code attached to a category.
type Code string

const (
	CodeNetworkUnavailable   Code = "network_unavailable"
	CodeOperationTimeout     Code = "operation_timeout"
	CodeAuthenticationFailed Code = "authentication_failed"
	CodeValidationFailed     Code = "validation_failed"
	CodeUnknownError         Code = "unknown_error"
)

// Severity ranks how urgent a failure is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Details is the typed record produced for every operational failure.
// It is consumed immediately by the recovery coordinator and the
// observability sink; it is not persisted.
type Details struct {
	Category  Category `json:"category"`
	Code      Code     `json:"code"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
	Operation string   `json:"operation,omitempty"`
	// Timestamp is epoch milliseconds at classification time.
	Timestamp int64 `json:"timestamp"`
	// Cause is the original error. Not serialized.
	Cause error `json:"-"`
}

// Context carries optional classification context.
type Context struct {
	// Operation is the circuit-breaker key for the failing operation.
	Operation string
}

// pattern maps message substrings to a category. Matching is
// case-insensitive and priority-ordered: the first pattern group with a
// hit wins.
type pattern struct {
	terms    []string
	category Category
	code     Code
	severity Severity
}

var patterns = []pattern{
	{
		terms:    []string{"connection", "network", "unreachable", "refused", "dns"},
		category: CategoryNetwork,
		code:     CodeNetworkUnavailable,
		severity: SeverityHigh,
	},
	{
		terms:    []string{"timeout", "timed out", "deadline exceeded"},
		category: CategoryTimeout,
		code:     CodeOperationTimeout,
		severity: SeverityMedium,
	},
	{
		terms:    []string{"api key", "unauthorized", "forbidden", "authentication", "credential"},
		category: CategoryAuthentication,
		code:     CodeAuthenticationFailed,
		severity: SeverityCritical,
	},
	{
		terms:    []string{"invalid", "validation", "malformed"},
		category: CategoryValidation,
		code:     CodeValidationFailed,
		severity: SeverityLow,
	},
}

// NewDetails classifies a raw error into typed details. Classification is
// pure: the same error text always yields the same category and code,
// independent of prior calls.
func NewDetails(err error, c Context) Details {
	return newDetailsAt(err, c, time.Now().UnixMilli())
}

// newDetailsAt is the clock-injected form used by tests.
func newDetailsAt(err error, c Context, now int64) Details {
	msg := ""
	if err != nil {
		msg = err.Error()
	}

	d := Details{
		Category:  CategoryUnknown,
		Code:      CodeUnknownError,
		Severity:  SeverityMedium,
		Message:   msg,
		Operation: c.Operation,
		Timestamp: now,
		Cause:     err,
	}

	lower := strings.ToLower(msg)
	for _, p := range patterns {
		for _, term := range p.terms {
			if strings.Contains(lower, term) {
				d.Category = p.category
				d.Code = p.code
				d.Severity = p.severity
				return d
			}
		}
	}
	return d
}

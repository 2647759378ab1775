package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v57/github"

	"github.com/fyrsmithlabs/ghconnect/internal/sanitize"
)

// ErrorKind is the error taxonomy exposed to the host. Every adapter-level
// failure is converted to one of these before it reaches the dispatcher.
type ErrorKind string

const (
	ErrUnknownTool      ErrorKind = "unknown_tool"
	ErrInvalidArgument  ErrorKind = "invalid_argument"
	ErrUnauthorized     ErrorKind = "unauthorized"
	ErrNotFound         ErrorKind = "not_found"
	ErrRateLimited      ErrorKind = "rate_limited"
	ErrEscape           ErrorKind = "escape"
	ErrAlreadyExists    ErrorKind = "already_exists"
	ErrTimeout          ErrorKind = "timeout"
	ErrTransportFailure ErrorKind = "transport_failure"
)

// ToolError is the structured error returned for every failed tool call.
// Messages are sanitized: no credential value, no raw stack trace.
type ToolError struct {
	Kind       ErrorKind     // taxonomy bucket
	Field      string        // offending argument, for invalid_argument
	Message    string        // sanitized human-readable description
	RetryAfter time.Duration // populated for rate_limited when known
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field %q)", e.Kind, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewToolError creates a classified error with a formatted message.
func NewToolError(kind ErrorKind, format string, args ...any) *ToolError {
	return &ToolError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// invalidArgument creates an invalid_argument error naming the field.
func invalidArgument(field, format string, args ...any) *ToolError {
	return &ToolError{Kind: ErrInvalidArgument, Field: field, Message: fmt.Sprintf(format, args...)}
}

// classify converts an adapter-level failure into a ToolError. Errors that
// are already classified pass through unchanged; anything unrecognized
// becomes transport_failure.
func classify(err error) *ToolError {
	if err == nil {
		return nil
	}

	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return toolErr
	}

	if errors.Is(err, sanitize.ErrPathEscape) {
		return NewToolError(ErrEscape, "%s", err.Error())
	}
	if errors.Is(err, sanitize.ErrInvalidRepoName) || errors.Is(err, sanitize.ErrEmptyPath) {
		return NewToolError(ErrInvalidArgument, "%s", err.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewToolError(ErrTimeout, "operation timed out")
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		te := NewToolError(ErrRateLimited, "GitHub API rate limit exhausted")
		if reset := time.Until(rateErr.Rate.Reset.Time); reset > 0 {
			te.RetryAfter = reset
		}
		return te
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		te := NewToolError(ErrRateLimited, "GitHub API secondary rate limit hit")
		if abuseErr.RetryAfter != nil {
			te.RetryAfter = *abuseErr.RetryAfter
		}
		return te
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			// Never echo the response body here: 401 bodies can reference
			// the credential that was presented.
			return NewToolError(ErrUnauthorized, "GitHub API rejected the configured credential")
		case http.StatusNotFound:
			return NewToolError(ErrNotFound, "GitHub API returned not found: %s", respErr.Message)
		case http.StatusUnprocessableEntity:
			return NewToolError(ErrInvalidArgument, "GitHub API rejected the request: %s", respErr.Message)
		}
		return NewToolError(ErrTransportFailure, "GitHub API error (status %d): %s",
			respErr.Response.StatusCode, respErr.Message)
	}

	return NewToolError(ErrTransportFailure, "%s", err.Error())
}

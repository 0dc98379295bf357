package github

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/google/go-github/v66/github"
)

// ErrorType represents different categories of GitHub API errors
type ErrorType string

const (
	ErrorTypeAuth       ErrorType = "authentication"
	ErrorTypePermission ErrorType = "permission"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeRateLimit  ErrorType = "rate_limit"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// GitHubError represents a structured error from GitHub operations
type GitHubError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Cause      error     `json:"-"`
	Resource   string    `json:"resource,omitempty"`
	Field      string    `json:"field,omitempty"`
	Code       string    `json:"code,omitempty"`
	StatusCode int       `json:"status_code,omitempty"`
	Retryable  bool      `json:"retryable"`
}

// Error implements the error interface
func (e *GitHubError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s error for %s: %s", e.Type, e.Resource, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *GitHubError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether the error is retryable
func (e *GitHubError) IsRetryable() bool {
	return e.Retryable
}

// NewGitHubError creates a new GitHubError with the specified type and message
func NewGitHubError(errorType ErrorType, message string, cause error) *GitHubError {
	return &GitHubError{
		Type:      errorType,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryableErrorType(errorType),
	}
}

// IsNotFound reports whether err is, or wraps, a not_found GitHubError
func IsNotFound(err error) bool {
	var ghErr *GitHubError
	return errors.As(err, &ghErr) && ghErr.Type == ErrorTypeNotFound
}

// WrapGitHubError wraps a GitHub API error into our structured error type
func WrapGitHubError(err error, resource string) *GitHubError {
	if err == nil {
		return nil
	}

	// Already classified further down the stack
	var ghErr *GitHubError
	if errors.As(err, &ghErr) {
		if ghErr.Resource == "" {
			ghErr.Resource = resource
		}
		return ghErr
	}

	wrapped := &GitHubError{Cause: err, Resource: resource}

	var rateLimitErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	var respErr *github.ErrorResponse

	switch {
	case errors.As(err, &rateLimitErr):
		wrapped.Type = ErrorTypeRateLimit
		wrapped.Message = fmt.Sprintf("Rate limit exceeded. Reset at %v", rateLimitErr.Rate.Reset.Time)
	case errors.As(err, &abuseErr):
		wrapped.Type = ErrorTypeRateLimit
		wrapped.Message = "Secondary rate limit exceeded"
	case errors.As(err, &respErr) && respErr.Response != nil:
		wrapped.StatusCode = respErr.Response.StatusCode
		wrapped.Type, wrapped.Message = classifyResponse(respErr, resource)
		if wrapped.Type == ErrorTypeValidation {
			wrapped.Field, wrapped.Code = firstFieldError(respErr)
		}
	case isNetworkError(err):
		wrapped.Type = ErrorTypeNetwork
		wrapped.Message = "Network error occurred. Please check your connection and try again"
	default:
		wrapped.Type = ErrorTypeUnknown
		wrapped.Message = err.Error()
	}

	wrapped.Retryable = isRetryableErrorType(wrapped.Type) ||
		(wrapped.Type == ErrorTypeUnknown && wrapped.StatusCode >= 500)
	return wrapped
}

// classifyResponse maps an API error response onto an error type and a message
// that tells a settings maintainer what to fix
func classifyResponse(resp *github.ErrorResponse, resource string) (ErrorType, string) {
	switch status := resp.Response.StatusCode; {
	case status == http.StatusUnauthorized:
		if strings.Contains(resp.Message, "token") {
			return ErrorTypeAuth, "Invalid or expired GitHub token. Please update the GITHUB_TOKEN environment variable or the githubToken input"
		}
		return ErrorTypeAuth, "Authentication failed. Please check your GitHub token"

	case status == http.StatusForbidden && strings.Contains(strings.ToLower(resp.Message), "rate limit"):
		return ErrorTypeRateLimit, "GitHub API rate limit exceeded. Please wait before retrying"

	case status == http.StatusForbidden:
		msg := "Insufficient permissions. Your token may not have the required scopes"
		if strings.Contains(resource, "repository") || strings.Contains(resource, "branch protection") {
			msg += ". Administration permission on the repository is required"
		}
		return ErrorTypePermission, msg

	case status == http.StatusNotFound:
		return ErrorTypeNotFound, notFoundMessage(resource)

	case status == http.StatusConflict:
		if resp.Message != "" {
			return ErrorTypeConflict, "Resource conflict occurred: " + resp.Message
		}
		return ErrorTypeConflict, "Resource conflict occurred"

	case status == http.StatusUnprocessableEntity:
		return ErrorTypeValidation, validationMessage(resp)

	case status == http.StatusInternalServerError, status == http.StatusBadGateway,
		status == http.StatusServiceUnavailable, status == http.StatusGatewayTimeout:
		return ErrorTypeNetwork, "GitHub API is temporarily unavailable. Please try again later"
	}

	return ErrorTypeUnknown, resp.Message
}

func notFoundMessage(resource string) string {
	switch {
	case strings.HasPrefix(resource, "file "):
		return "File not found"
	case strings.HasPrefix(resource, "branch protection"):
		return "Branch not found or not protected"
	case strings.HasPrefix(resource, "repository"):
		return "Repository not found. Check the repository name and your access permissions"
	default:
		return "Resource not found"
	}
}

// validationMessage joins the field errors of a 422 response
func validationMessage(resp *github.ErrorResponse) string {
	if len(resp.Errors) == 0 {
		if resp.Message == "" {
			return "Validation failed"
		}
		return "Validation failed: " + resp.Message
	}

	details := make([]string, 0, len(resp.Errors))
	for _, e := range resp.Errors {
		if e.Field == "" {
			details = append(details, e.Message)
			continue
		}
		details = append(details, e.Field+": "+e.Message)
	}
	return "Validation failed: " + strings.Join(details, "; ")
}

func firstFieldError(resp *github.ErrorResponse) (string, string) {
	for _, e := range resp.Errors {
		if e.Field != "" {
			return e.Field, e.Code
		}
	}
	return "", ""
}

// isNetworkError reports transport failures that never reached the API
func isNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, keyword := range []string{"connection refused", "connection reset", "no such host", "network is unreachable", "timeout", "dial tcp"} {
		if strings.Contains(msg, keyword) {
			return true
		}
	}
	return false
}

func isRetryableErrorType(errorType ErrorType) bool {
	return errorType == ErrorTypeRateLimit || errorType == ErrorTypeNetwork
}

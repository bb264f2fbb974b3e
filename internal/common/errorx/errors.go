package errorx

import (
	"fmt"
	"net/http"
)

// APIError is a typed service failure carrying a stable machine code and the
// HTTP status it maps to. Instances are immutable templates; use With* helpers
// to derive request-specific copies.
type APIError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *APIError) clone() *APIError {
	c := &APIError{
		Code:       e.Code,
		Message:    e.Message,
		HTTPStatus: e.HTTPStatus,
	}
	if len(e.Details) > 0 {
		c.Details = make(map[string]any, len(e.Details))
		for k, v := range e.Details {
			c.Details[k] = v
		}
	}
	return c
}

// WithMessage returns a copy of the error with a custom message
func (e *APIError) WithMessage(msg string) *APIError {
	c := e.clone()
	c.Message = msg
	return c
}

// WithDetail returns a copy of the error with an extra detail attached
func (e *APIError) WithDetail(key string, value any) *APIError {
	c := e.clone()
	if c.Details == nil {
		c.Details = make(map[string]any, 1)
	}
	c.Details[key] = value
	return c
}

// Authentication failures (401)
var (
	ErrInvalidCredentials = &APIError{
		Code:       "INVALID_CREDENTIALS",
		Message:    "Invalid email or password",
		HTTPStatus: http.StatusUnauthorized,
	}
	ErrTokenExpired = &APIError{
		Code:       "TOKEN_EXPIRED",
		Message:    "Token has expired",
		HTTPStatus: http.StatusUnauthorized,
	}
	ErrInvalidToken = &APIError{
		Code:       "INVALID_TOKEN",
		Message:    "Invalid or malformed token",
		HTTPStatus: http.StatusUnauthorized,
	}
	ErrUnauthorized = &APIError{
		Code:       "UNAUTHORIZED",
		Message:    "Authentication required",
		HTTPStatus: http.StatusUnauthorized,
	}
)

// Authorization failures (403)
var (
	ErrForbidden = &APIError{
		Code:       "FORBIDDEN",
		Message:    "Insufficient permissions",
		HTTPStatus: http.StatusForbidden,
	}
	ErrTenantMismatch = &APIError{
		Code:       "TENANT_MISMATCH",
		Message:    "Tenant does not match authenticated identity",
		HTTPStatus: http.StatusForbidden,
	}
)

// Conflicts (409)
var (
	ErrDuplicateSlug = &APIError{
		Code:       "DUPLICATE_SLUG",
		Message:    "Slug is already taken",
		HTTPStatus: http.StatusConflict,
	}
	ErrDuplicateEmail = &APIError{
		Code:       "DUPLICATE_EMAIL",
		Message:    "Email is already registered",
		HTTPStatus: http.StatusConflict,
	}
)

var (
	ErrNotFound = &APIError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		HTTPStatus: http.StatusNotFound,
	}
	ErrValidation = &APIError{
		Code:       "VALIDATION_ERROR",
		Message:    "Invalid input",
		HTTPStatus: http.StatusBadRequest,
	}
	ErrRateLimited = &APIError{
		Code:       "RATE_LIMITED",
		Message:    "Too many requests",
		HTTPStatus: http.StatusTooManyRequests,
	}
	ErrInternal = &APIError{
		Code:       "INTERNAL_ERROR",
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
	}
)

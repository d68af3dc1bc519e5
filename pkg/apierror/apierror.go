package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeSessionExpired     = "SESSION_EXPIRED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountDisabled    = "ACCOUNT_DISABLED"
	CodeForbidden          = "FORBIDDEN"
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeRateLimited        = "RATE_LIMITED"
	CodeRequestTimeout     = "REQUEST_TIMEOUT"
	CodeInternal           = "INTERNAL_ERROR"
)

type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code string, message string, details any, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

func Unauthorized(message string) *APIError {
	return New(CodeUnauthorized, message, nil, http.StatusUnauthorized)
}

func InvalidToken(message string) *APIError {
	return New(CodeInvalidToken, message, nil, http.StatusUnauthorized)
}

func SessionExpired(message string) *APIError {
	return New(CodeSessionExpired, message, nil, http.StatusUnauthorized)
}

func InvalidCredentials() *APIError {
	return New(CodeInvalidCredentials, "invalid credentials", nil, http.StatusUnauthorized)
}

func AccountDisabled() *APIError {
	return New(CodeAccountDisabled, "account is disabled", nil, http.StatusForbidden)
}

func Forbidden(message string) *APIError {
	return New(CodeForbidden, message, nil, http.StatusForbidden)
}

func Validation(message string, details any) *APIError {
	return New(CodeValidation, message, details, http.StatusBadRequest)
}

func NotFound(message string, details any) *APIError {
	return New(CodeNotFound, message, details, http.StatusNotFound)
}

func Conflict(message string, details any) *APIError {
	return New(CodeConflict, message, details, http.StatusConflict)
}

// CodeOf returns the API code carried by err, or "" if err is not an *APIError.
func CodeOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

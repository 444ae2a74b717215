package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/ghostdeal/internal/usecase"
)

// ErrorType machine-readable error category
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeExternal     ErrorType = "EXTERNAL_API_ERROR"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
)

// APIError JSON error body
type APIError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Status HTTP status for the error type
func (e *APIError) Status() int {
	switch e.Type {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeExternal:
		return http.StatusServiceUnavailable
	case ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func NewValidationError(message string) *APIError {
	return &APIError{Type: ErrorTypeValidation, Message: message}
}

func NewNotFoundError(message string) *APIError {
	return &APIError{Type: ErrorTypeNotFound, Message: message}
}

func NewExternalError(service string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeExternal,
		Message: fmt.Sprintf("Error from external service (%s)", service),
		Details: err.Error(),
	}
}

func NewUnauthorizedError(message string) *APIError {
	return &APIError{Type: ErrorTypeUnauthorized, Message: message}
}

func NewInternalError(err error) *APIError {
	return &APIError{
		Type:    ErrorTypeInternal,
		Message: "Internal server error",
		Details: err.Error(),
	}
}

// toAPIError maps use case sentinels onto API errors
func toAPIError(err error) *APIError {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, usecase.ErrEmptyQuery), errors.Is(err, usecase.ErrInvalidWatch):
		return &APIError{Type: ErrorTypeValidation, Message: err.Error()}
	case errors.Is(err, usecase.ErrWatchNotFound), errors.Is(err, usecase.ErrNoResults):
		return &APIError{Type: ErrorTypeNotFound, Message: err.Error()}
	case errors.Is(err, usecase.ErrAdvisorUnavailable):
		return NewExternalError("gemini", err)
	case errors.Is(err, usecase.ErrNotifierUnavailable):
		return NewExternalError("telegram", err)
	case errors.Is(err, usecase.ErrAlertsClosed):
		return &APIError{Type: ErrorTypeExternal, Message: err.Error()}
	default:
		return NewInternalError(err)
	}
}

func handleError(c *gin.Context, err error) {
	apiErr := toAPIError(err)
	if apiErr.Type == ErrorTypeInternal || apiErr.Type == ErrorTypeExternal {
		log.Printf("api: %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(apiErr.Status(), apiErr)
}

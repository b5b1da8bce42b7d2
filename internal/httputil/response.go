// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/neoskop/hostit/internal/errors"
)

// ErrorResponse represents a structured error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HandleErrorGin maps domain errors to HTTP status codes and returns a JSON response.
// Unknown errors are surfaced as a generic 500 without internal detail.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	var statusCode int
	var errorResponse ErrorResponse

	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		statusCode = http.StatusNotFound
		errorResponse = ErrorResponse{
			Error:   "not_found",
			Message: "The requested file was not found",
		}

	case apperrors.Is(err, apperrors.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		errorResponse = ErrorResponse{
			Error:   "unauthorized",
			Message: "Authentication is required",
		}

	case apperrors.Is(err, apperrors.ErrForbidden):
		statusCode = http.StatusForbidden
		errorResponse = ErrorResponse{
			Error:   "forbidden",
			Message: "You don't have permission to access this resource",
		}

	case apperrors.Is(err, apperrors.ErrUnsupportedMediaType):
		statusCode = http.StatusUnsupportedMediaType
		errorResponse = ErrorResponse{
			Error:   "unsupported_media_type",
			Message: "The content type is not accepted",
		}

	case apperrors.Is(err, apperrors.ErrPayloadTooLarge):
		statusCode = http.StatusRequestEntityTooLarge
		errorResponse = ErrorResponse{
			Error:   "payload_too_large",
			Message: "The request body exceeds the upload limit",
		}

	case apperrors.Is(err, apperrors.ErrNotAcceptable):
		statusCode = http.StatusNotAcceptable
		errorResponse = ErrorResponse{
			Error:   "not_acceptable",
			Message: "The content was rejected",
		}

	case apperrors.Is(err, apperrors.ErrBadRequest):
		statusCode = http.StatusBadRequest
		errorResponse = ErrorResponse{
			Error:   "bad_request",
			Message: "The request payload is malformed",
		}

	case apperrors.Is(err, apperrors.ErrInvalidInput):
		statusCode = http.StatusUnprocessableEntity
		errorResponse = ErrorResponse{
			Error:   "invalid_input",
			Message: err.Error(),
		}

	default:
		// For unknown/internal errors, don't expose details to the client
		statusCode = http.StatusInternalServerError
		errorResponse = ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		}
	}

	// Log the full error details (including wrapped errors)
	if logger != nil {
		logger.Error("request failed",
			slog.Int("status_code", statusCode),
			slog.String("error_code", errorResponse.Error),
			slog.Any("error", err),
		)
	}

	c.JSON(statusCode, errorResponse)
}

// HandleBadRequestGin writes a 400 Bad Request response for malformed JSON or parameters.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}

	errorResponse := ErrorResponse{
		Error:   "bad_request",
		Message: "The request payload is malformed",
	}

	c.JSON(http.StatusBadRequest, errorResponse)
}

// MakeJSONResponse writes a JSON response with the given status code using the
// standard library, for handlers outside the Gin router.
func MakeJSONResponse(w http.ResponseWriter, statusCode int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

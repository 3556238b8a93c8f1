package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ressKim-io/EcoScan/api-service/internal/domain/service"
	"github.com/ressKim-io/EcoScan/api-service/internal/usecase"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	StatusCode int
	Code       string
	Message    string
}

// MapUsecaseError maps usecase errors to HTTP error responses.
// Upstream failures keep the endpoint's status code and raw body in the message.
func MapUsecaseError(err error) ErrorResponse {
	switch {
	case errors.Is(err, usecase.ErrMissingInput):
		return ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Code:       "MISSING_INPUT",
			Message:    "please enter a product name or upload an image",
		}
	case errors.Is(err, usecase.ErrInvalidMode):
		return ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Code:       "INVALID_REQUEST",
			Message:    "mode must be one of: analysis, sentiment",
		}
	case errors.Is(err, usecase.ErrScanNotFound):
		return ErrorResponse{
			StatusCode: http.StatusNotFound,
			Code:       "NOT_FOUND",
			Message:    "scan not found",
		}
	case errors.Is(err, usecase.ErrInvalidRequest):
		return ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Code:       "INVALID_REQUEST",
			Message:    "invalid request",
		}
	case errors.Is(err, usecase.ErrProviderUnavailable):
		return ErrorResponse{
			StatusCode: http.StatusServiceUnavailable,
			Code:       "PROVIDER_UNAVAILABLE",
			Message:    "no inference provider is configured for this mode",
		}
	case errors.Is(err, usecase.ErrUpstream):
		return ErrorResponse{
			StatusCode: http.StatusBadGateway,
			Code:       "UPSTREAM_ERROR",
			Message:    upstreamMessage(err),
		}
	default:
		return ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Code:       "INTERNAL_ERROR",
			Message:    "internal server error",
		}
	}
}

func upstreamMessage(err error) string {
	if upErr, ok := service.AsUpstreamError(err); ok {
		if upErr.Body == "" {
			return fmt.Sprintf("Error: %d", upErr.StatusCode)
		}
		return fmt.Sprintf("Error: %d - %s", upErr.StatusCode, upErr.Body)
	}
	return "inference endpoint unreachable"
}

// HandleUsecaseError handles a usecase error by sending an appropriate HTTP response.
func HandleUsecaseError(c *gin.Context, err error) {
	errResp := MapUsecaseError(err)
	if errResp.StatusCode >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	respondError(c, errResp.StatusCode, errResp.Code, errResp.Message)
}

// HandleInvalidUUID handles an invalid UUID parameter error.
func HandleInvalidUUID(c *gin.Context, paramName string) {
	respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid "+paramName)
}

// HandleInvalidRequest handles a generic invalid request error.
func HandleInvalidRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, "INVALID_REQUEST", message)
}

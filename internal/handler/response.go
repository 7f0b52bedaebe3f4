package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ridepool/internal/maps"
	"ridepool/internal/repository"
	"ridepool/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
// Internal errors are not echoed to the client.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	_ = c.Error(err)
	if code == http.StatusInternalServerError {
		c.JSON(code, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	var routingErr *service.RoutingServiceError
	var mapsErr *maps.Error

	switch {
	// Validation errors
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrNoTripRoutes):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrAlreadyExists),
		errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, service.ErrTripRouteBusy):
		return http.StatusConflict

	// Upstream routing failures
	case errors.As(err, &routingErr),
		errors.As(err, &mapsErr):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

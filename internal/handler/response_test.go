package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"ridepool/internal/maps"
	"ridepool/internal/repository"
	"ridepool/internal/service"
)

func TestMapErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", service.ErrInvalidPassengerCount, http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("create: %w", service.ErrDuplicatePassenger), http.StatusBadRequest},
		{"not found", &service.NotFoundError{Entity: service.EntityDriver, ID: "d-1"}, http.StatusNotFound},
		{"repository not found", repository.ErrNotFound, http.StatusNotFound},
		{"no trip routes", service.ErrNoTripRoutes, http.StatusNotFound},
		{"already exists", service.ErrAlreadyExists, http.StatusConflict},
		{"busy", service.ErrTripRouteBusy, http.StatusConflict},
		{"routing", &service.RoutingServiceError{Op: "route", Err: errors.New("timeout")}, http.StatusBadGateway},
		{"provider", &maps.Error{Op: maps.OpGeocode, Status: maps.StatusRequestDenied}, http.StatusBadGateway},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapErrorToHTTPStatus(tt.err))
		})
	}
}

package repository

import (
	"context"
	"time"

	"ridepool/internal/domain"
)

// TripRouteRepository defines the persistence operations for trip routes.
type TripRouteRepository interface {
	// Create persists a new trip route in a single insert.
	Create(ctx context.Context, route *domain.TripRoute) error

	// GetByID retrieves a trip route by ID.
	GetByID(ctx context.Context, id string) (*domain.TripRoute, error)

	// ListByDriver returns the routes driven by driverID, newest first.
	ListByDriver(ctx context.Context, driverID string) ([]*domain.TripRoute, error)

	// ListByPassenger returns the routes that include passengerID, newest first.
	ListByPassenger(ctx context.Context, passengerID string) ([]*domain.TripRoute, error)

	// Update replaces passengers, segments and status of an existing route.
	Update(ctx context.Context, route *domain.TripRoute) error

	// UpdateStatus changes only the status of a route.
	UpdateStatus(ctx context.Context, id string, status domain.TripRouteStatus, updatedAt time.Time) error

	// Delete removes a route.
	Delete(ctx context.Context, id string) error
}

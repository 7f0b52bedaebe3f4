package service

import (
	"errors"
	"fmt"

	"ridepool/internal/repository"
)

// ErrInvalidArgument is the root of every input validation error.
var ErrInvalidArgument = errors.New("invalid argument")

var (
	// ErrInvalidPassengerCount is returned when a trip has too few or too many passengers.
	ErrInvalidPassengerCount = fmt.Errorf("%w: passenger count out of range", ErrInvalidArgument)

	// ErrDuplicatePassenger is returned when a passenger appears twice in one trip.
	ErrDuplicatePassenger = fmt.Errorf("%w: duplicate passenger", ErrInvalidArgument)

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = fmt.Errorf("%w: invalid driver id", ErrInvalidArgument)

	// ErrInvalidPassengerID is returned when passenger ID is empty.
	ErrInvalidPassengerID = fmt.Errorf("%w: invalid passenger id", ErrInvalidArgument)

	// ErrInvalidTripRouteID is returned when trip route ID is empty.
	ErrInvalidTripRouteID = fmt.Errorf("%w: invalid trip route id", ErrInvalidArgument)

	// ErrInvalidLocation is returned when a coordinate is missing or out of range.
	ErrInvalidLocation = fmt.Errorf("%w: invalid location", ErrInvalidArgument)

	// ErrInvalidAddress is returned when an address cannot be geocoded as given.
	ErrInvalidAddress = fmt.Errorf("%w: invalid address", ErrInvalidArgument)

	// ErrInvalidMaxDistance is returned for a negative or non-finite distance bound.
	ErrInvalidMaxDistance = fmt.Errorf("%w: invalid max distance", ErrInvalidArgument)

	// ErrInvalidStatus is returned for unknown trip route statuses.
	ErrInvalidStatus = fmt.Errorf("%w: invalid trip route status", ErrInvalidArgument)

	// ErrInvalidUserType is returned when listing routes for an unknown participant type.
	ErrInvalidUserType = fmt.Errorf("%w: user type must be driver or passenger", ErrInvalidArgument)

	// ErrNothingToUpdate is returned when an update carries neither passengers nor status.
	ErrNothingToUpdate = fmt.Errorf("%w: nothing to update", ErrInvalidArgument)

	// ErrInvalidParticipant is returned when name or email is missing.
	ErrInvalidParticipant = fmt.Errorf("%w: name and email are required", ErrInvalidArgument)
)

var (
	// ErrAlreadyExists is returned when registering an email twice.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNoTripRoutes is returned when a participant has no trip routes.
	ErrNoTripRoutes = errors.New("no trip routes found")

	// ErrTripRouteBusy is returned when another update holds the route lock.
	ErrTripRouteBusy = errors.New("trip route is being updated")
)

// Entity names used in NotFoundError.
const (
	EntityDriver    = "driver"
	EntityPassenger = "passenger"
	EntityTripRoute = "trip route"
)

// NotFoundError reports an id that did not resolve. It matches
// repository.ErrNotFound under errors.Is.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == repository.ErrNotFound
}

// notFound converts repository.ErrNotFound into a NotFoundError and passes
// other errors through.
func notFound(err error, entity, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return err
}

// RoutingServiceError reports a failed geocode, distance or route query.
type RoutingServiceError struct {
	Op          string
	Origin      string
	Destination string
	Err         error
}

func (e *RoutingServiceError) Error() string {
	if e.Destination == "" {
		return fmt.Sprintf("routing service %s %q: %v", e.Op, e.Origin, e.Err)
	}
	return fmt.Sprintf("routing service %s %s -> %s: %v", e.Op, e.Origin, e.Destination, e.Err)
}

func (e *RoutingServiceError) Unwrap() error {
	return e.Err
}

package domain

import (
	"encoding/json"
	"time"
)

// TripRouteStatus represents the lifecycle state of a persisted trip route.
type TripRouteStatus string

const (
	TripRouteStatusInProgress TripRouteStatus = "IN_PROGRESS"
	TripRouteStatusCompleted  TripRouteStatus = "COMPLETED"
	TripRouteStatusCancelled  TripRouteStatus = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s TripRouteStatus) Valid() bool {
	switch s {
	case TripRouteStatusInProgress, TripRouteStatusCompleted, TripRouteStatusCancelled:
		return true
	}
	return false
}

// PickupStop is a passenger to collect, with the pickup coordinate.
type PickupStop struct {
	PassengerID string
	Origin      Coordinate
}

// RouteSegment pairs a passenger with the route payload leading to their pickup.
// The final leg to the shared destination carries no passenger.
type RouteSegment struct {
	PassengerID string          `json:"passenger_id,omitempty"`
	Route       json.RawMessage `json:"route"`
}

// Itinerary is the planned visitation: pickups in order, then the final leg.
type Itinerary struct {
	Pickups     []RouteSegment
	Final       RouteSegment
	Destination Coordinate
}

// PassengerOrder returns passenger ids in visitation order.
func (it *Itinerary) PassengerOrder() []string {
	ids := make([]string, len(it.Pickups))
	for i, seg := range it.Pickups {
		ids[i] = seg.PassengerID
	}
	return ids
}

// TripRoute is a persisted itinerary for a driver and their passengers.
type TripRoute struct {
	ID           string
	DriverID     string
	PassengerIDs []string
	Destination  Address
	Segments     []RouteSegment
	FinalSegment RouteSegment
	Status       TripRouteStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ApplyItinerary replaces the route payloads with a freshly planned itinerary.
func (r *TripRoute) ApplyItinerary(it *Itinerary) {
	r.Segments = append([]RouteSegment(nil), it.Pickups...)
	r.FinalSegment = it.Final
}

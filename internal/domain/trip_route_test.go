package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"ridepool/internal/domain"
)

func TestTripRouteStatusValid(t *testing.T) {
	assert.True(t, domain.TripRouteStatusInProgress.Valid())
	assert.True(t, domain.TripRouteStatusCompleted.Valid())
	assert.True(t, domain.TripRouteStatusCancelled.Valid())
	assert.False(t, domain.TripRouteStatus("in_progress").Valid())
	assert.False(t, domain.TripRouteStatus("").Valid())
}

func TestApplyItinerary(t *testing.T) {
	it := &domain.Itinerary{
		Pickups: []domain.RouteSegment{
			{PassengerID: "p-2", Route: json.RawMessage(`{"leg":1}`)},
			{PassengerID: "p-1", Route: json.RawMessage(`{"leg":2}`)},
		},
		Final: domain.RouteSegment{Route: json.RawMessage(`{"leg":3}`)},
	}
	assert.Equal(t, []string{"p-2", "p-1"}, it.PassengerOrder())

	route := &domain.TripRoute{PassengerIDs: []string{"p-1", "p-2"}}
	route.ApplyItinerary(it)

	assert.Equal(t, it.Pickups, route.Segments)
	assert.Equal(t, it.Final, route.FinalSegment)
	assert.Equal(t, []string{"p-1", "p-2"}, route.PassengerIDs)

	// The route owns its segment slice.
	it.Pickups[0].PassengerID = "changed"
	assert.Equal(t, "p-2", route.Segments[0].PassengerID)
}

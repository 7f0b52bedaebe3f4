package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridepool/internal/domain"
	"ridepool/internal/repository"
	"ridepool/internal/service"
)

var (
	origin      = domain.Coordinate{Lat: 0, Lng: 0}
	pickupA     = domain.Coordinate{Lat: 1, Lng: 0}
	pickupB     = domain.Coordinate{Lat: 0, Lng: 1}
	pickupC     = domain.Coordinate{Lat: 1, Lng: 1}
	destination = domain.Address{Street: "Avenida Paulista", Number: "1000", Neighborhood: "Bela Vista", City: "Sao Paulo"}
	destCoord   = domain.Coordinate{Lat: 2, Lng: 2}
)

type plannerFixture struct {
	routing    *MockRoutingService
	drivers    *MockDriverRepository
	passengers *MockPassengerRepository
	planner    *service.TripPlanner
}

func newPlannerFixture() *plannerFixture {
	f := &plannerFixture{
		routing:    NewMockRoutingService(),
		drivers:    NewMockDriverRepository(),
		passengers: NewMockPassengerRepository(),
	}
	f.planner = service.NewTripPlanner(f.routing, f.drivers, f.passengers, service.DefaultPlannerConfig(), nil)
	f.routing.SetGeocode(destination, destCoord)
	return f
}

func TestPlan_SinglePassengerUsesOneRouteAndNoDistance(t *testing.T) {
	f := newPlannerFixture()

	it, err := f.planner.Plan(context.Background(), origin, []domain.PickupStop{
		{PassengerID: "p-a", Origin: pickupA},
	}, destination)
	require.NoError(t, err)

	assert.Equal(t, []string{"p-a"}, it.PassengerOrder())
	assert.Equal(t, destCoord, it.Destination)
	assert.JSONEq(t, string(RoutePayload(origin, pickupA)), string(it.Pickups[0].Route))
	assert.JSONEq(t, string(RoutePayload(pickupA, destCoord)), string(it.Final.Route))
	assert.Empty(t, it.Final.PassengerID)

	assert.Equal(t, int32(0), f.routing.DistanceCallCount)
	assert.Equal(t, int32(2), f.routing.RouteCallCount)
	assert.Equal(t, int32(1), f.routing.GeocodeCallCount)
}

func TestPlan_VisitsNearestPassengerFirst(t *testing.T) {
	f := newPlannerFixture()
	f.routing.SetDistance(origin, pickupA, 100)
	f.routing.SetDistance(origin, pickupB, 50)
	f.routing.SetDistance(pickupB, pickupA, 70)

	it, err := f.planner.Plan(context.Background(), origin, []domain.PickupStop{
		{PassengerID: "p-a", Origin: pickupA},
		{PassengerID: "p-b", Origin: pickupB},
	}, destination)
	require.NoError(t, err)

	assert.Equal(t, []string{"p-b", "p-a"}, it.PassengerOrder())
	// The final leg starts at the last pickup.
	assert.JSONEq(t, string(RoutePayload(pickupA, destCoord)), string(it.Final.Route))
	assert.Equal(t, []string{
		pairKey(origin, pickupB),
		pairKey(pickupB, pickupA),
		pairKey(pickupA, destCoord),
	}, f.routing.RouteCalls())
}

func TestPlan_TieGoesToEarlierPassenger(t *testing.T) {
	f := newPlannerFixture()
	f.routing.SetDistance(origin, pickupA, 100)
	f.routing.SetDistance(origin, pickupB, 100)
	f.routing.SetDistance(pickupA, pickupB, 10)
	f.routing.SetDistance(pickupB, pickupA, 10)

	for range 20 {
		it, err := f.planner.Plan(context.Background(), origin, []domain.PickupStop{
			{PassengerID: "p-b", Origin: pickupB},
			{PassengerID: "p-a", Origin: pickupA},
		}, destination)
		require.NoError(t, err)
		assert.Equal(t, []string{"p-b", "p-a"}, it.PassengerOrder())
	}
}

func TestPlan_ThreePassengersCallCounts(t *testing.T) {
	f := newPlannerFixture()
	f.routing.SetDistance(origin, pickupA, 300)
	f.routing.SetDistance(origin, pickupB, 200)
	f.routing.SetDistance(origin, pickupC, 100)
	f.routing.SetDistance(pickupC, pickupA, 50)
	f.routing.SetDistance(pickupC, pickupB, 60)
	f.routing.SetDistance(pickupA, pickupB, 40)

	it, err := f.planner.Plan(context.Background(), origin, []domain.PickupStop{
		{PassengerID: "p-a", Origin: pickupA},
		{PassengerID: "p-b", Origin: pickupB},
		{PassengerID: "p-c", Origin: pickupC},
	}, destination)
	require.NoError(t, err)

	assert.Equal(t, []string{"p-c", "p-a", "p-b"}, it.PassengerOrder())
	// 3 + 2 + 1 distance queries, one route per pickup plus the final leg.
	assert.Equal(t, int32(6), f.routing.DistanceCallCount)
	assert.Equal(t, int32(4), f.routing.RouteCallCount)
	assert.Equal(t, int32(1), f.routing.GeocodeCallCount)
}

func TestPlan_PassengerCountOutOfRangeMakesNoCalls(t *testing.T) {
	f := newPlannerFixture()

	four := []domain.PickupStop{
		{PassengerID: "p-1", Origin: pickupA},
		{PassengerID: "p-2", Origin: pickupB},
		{PassengerID: "p-3", Origin: pickupC},
		{PassengerID: "p-4", Origin: destCoord},
	}

	for name, stops := range map[string][]domain.PickupStop{
		"none": nil,
		"four": four,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.planner.Plan(context.Background(), origin, stops, destination)
			assert.ErrorIs(t, err, service.ErrInvalidPassengerCount)
			assert.ErrorIs(t, err, service.ErrInvalidArgument)
			assert.Equal(t, int32(0), f.routing.TotalCalls())
		})
	}
}

func TestPlan_InvalidInputsMakeNoCalls(t *testing.T) {
	tests := []struct {
		name   string
		origin domain.Coordinate
		stops  []domain.PickupStop
		dest   domain.Address
		want   error
	}{
		{
			name:   "duplicate passenger",
			origin: origin,
			stops:  []domain.PickupStop{{PassengerID: "p-a", Origin: pickupA}, {PassengerID: "p-a", Origin: pickupB}},
			dest:   destination,
			want:   service.ErrDuplicatePassenger,
		},
		{
			name:   "driver origin out of range",
			origin: domain.Coordinate{Lat: 91, Lng: 0},
			stops:  []domain.PickupStop{{PassengerID: "p-a", Origin: pickupA}},
			dest:   destination,
			want:   service.ErrInvalidLocation,
		},
		{
			name:   "pickup out of range",
			origin: origin,
			stops:  []domain.PickupStop{{PassengerID: "p-a", Origin: domain.Coordinate{Lat: 0, Lng: 181}}},
			dest:   destination,
			want:   service.ErrInvalidLocation,
		},
		{
			name:   "empty passenger id",
			origin: origin,
			stops:  []domain.PickupStop{{Origin: pickupA}},
			dest:   destination,
			want:   service.ErrInvalidPassengerID,
		},
		{
			name:   "address without city",
			origin: origin,
			stops:  []domain.PickupStop{{PassengerID: "p-a", Origin: pickupA}},
			dest:   domain.Address{Street: "Rua Augusta"},
			want:   service.ErrInvalidAddress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPlannerFixture()
			_, err := f.planner.Plan(context.Background(), tt.origin, tt.stops, tt.dest)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, service.ErrInvalidArgument)
			assert.Equal(t, int32(0), f.routing.TotalCalls())
		})
	}
}

func TestPlan_GeocodeFailureIsRoutingError(t *testing.T) {
	f := newPlannerFixture()
	f.routing.GeocodeError = ErrMockZeroResults

	it, err := f.planner.Plan(context.Background(), origin, []domain.PickupStop{
		{PassengerID: "p-a", Origin: pickupA},
	}, destination)
	require.Error(t, err)
	assert.Nil(t, it)

	var routingErr *service.RoutingServiceError
	require.True(t, errors.As(err, &routingErr))
	assert.Equal(t, "geocode", routingErr.Op)
	assert.ErrorIs(t, err, ErrMockZeroResults)
	assert.NotErrorIs(t, err, service.ErrInvalidArgument)
}

func TestPlan_DistanceFailureAbortsWithoutRoutes(t *testing.T) {
	f := newPlannerFixture()
	f.routing.DistanceError = ErrMockTimeout

	_, err := f.planner.Plan(context.Background(), origin, []domain.PickupStop{
		{PassengerID: "p-a", Origin: pickupA},
		{PassengerID: "p-b", Origin: pickupB},
	}, destination)

	var routingErr *service.RoutingServiceError
	require.ErrorAs(t, err, &routingErr)
	assert.Equal(t, "distance", routingErr.Op)
	assert.Equal(t, int32(0), f.routing.RouteCallCount)
	assert.Equal(t, int32(0), f.routing.GeocodeCallCount)
}

func TestPlanForIDs_ResolvesParticipants(t *testing.T) {
	f := newPlannerFixture()
	f.drivers.AddDriver(&domain.Driver{ID: "d-1", Origin: origin})
	f.passengers.AddPassenger(&domain.Passenger{ID: "p-a", Origin: pickupA})
	f.passengers.AddPassenger(&domain.Passenger{ID: "p-b", Origin: pickupB})
	f.routing.SetDistance(origin, pickupA, 100)
	f.routing.SetDistance(origin, pickupB, 50)
	f.routing.SetDistance(pickupB, pickupA, 70)

	it, err := f.planner.PlanForIDs(context.Background(), "d-1", []string{"p-a", "p-b"}, destination)
	require.NoError(t, err)
	assert.Equal(t, []string{"p-b", "p-a"}, it.PassengerOrder())
}

func TestPlanForIDs_UnknownIDsFailBeforeRouting(t *testing.T) {
	f := newPlannerFixture()
	f.drivers.AddDriver(&domain.Driver{ID: "d-1", Origin: origin})
	f.passengers.AddPassenger(&domain.Passenger{ID: "p-a", Origin: pickupA})

	t.Run("driver", func(t *testing.T) {
		_, err := f.planner.PlanForIDs(context.Background(), "d-missing", []string{"p-a"}, destination)

		var nf *service.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, service.EntityDriver, nf.Entity)
		assert.Equal(t, "d-missing", nf.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("passenger", func(t *testing.T) {
		_, err := f.planner.PlanForIDs(context.Background(), "d-1", []string{"p-a", "p-missing"}, destination)

		var nf *service.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, service.EntityPassenger, nf.Entity)
		assert.Equal(t, "p-missing", nf.ID)
	})

	assert.Equal(t, int32(0), f.routing.TotalCalls())
}

func TestPlanForIDs_CountCheckedBeforeLookups(t *testing.T) {
	f := newPlannerFixture()

	_, err := f.planner.PlanForIDs(context.Background(), "d-1", []string{"a", "b", "c", "d"}, destination)
	assert.ErrorIs(t, err, service.ErrInvalidPassengerCount)
	assert.Equal(t, int32(0), f.drivers.GetByIDCallCount)
	assert.Equal(t, int32(0), f.passengers.GetByIDCallCount)
	assert.Equal(t, int32(0), f.routing.TotalCalls())
}

func TestPlan_ConfigurableMaxPassengers(t *testing.T) {
	routing := NewMockRoutingService()
	routing.SetGeocode(destination, destCoord)
	planner := service.NewTripPlanner(routing, NewMockDriverRepository(), NewMockPassengerRepository(),
		service.PlannerConfig{MaxPassengers: 1}, nil)

	_, err := planner.Plan(context.Background(), origin, []domain.PickupStop{
		{PassengerID: "p-a", Origin: pickupA},
		{PassengerID: "p-b", Origin: pickupB},
	}, destination)
	assert.ErrorIs(t, err, service.ErrInvalidPassengerCount)
}

package tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridepool/internal/domain"
	"ridepool/internal/repository"
	"ridepool/internal/service"
)

func TestDriverRegister_WithOrigin(t *testing.T) {
	drivers := NewMockDriverRepository()
	routing := NewMockRoutingService()
	svc := service.NewDriverService(drivers, routing, nil)

	driver, err := svc.Register(context.Background(), service.RegisterRequest{
		Name:   "Ana",
		Email:  " Ana@Example.com ",
		Origin: &pickupA,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, driver.ID)
	assert.Equal(t, "ana@example.com", driver.Email)
	assert.Equal(t, pickupA, driver.Origin)
	assert.Equal(t, pickupA, drivers.GetDriver(driver.ID).Origin)
	assert.Equal(t, int32(0), routing.TotalCalls())
}

func TestDriverRegister_FoundByBoundedSearch(t *testing.T) {
	drivers := NewMockDriverRepository()
	passengers := NewMockPassengerRepository()
	passengers.AddPassenger(&domain.Passenger{ID: "p-1", Origin: passengerOrigin})
	routing := NewMockRoutingService()
	svc := service.NewDriverService(drivers, routing, nil)
	finder := service.NewDriverFinder(routing, drivers, passengers, 0, nil)

	driver, err := svc.Register(context.Background(), service.RegisterRequest{Name: "Rui", Email: "rui@example.com", Origin: &pickupB})
	require.NoError(t, err)
	routing.SetDistance(pickupB, passengerOrigin, 100)

	got, err := finder.FindNearest(context.Background(), service.NearestDriversRequest{PassengerID: "p-1", MaxDistance: 5000})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, driver.ID, got[0].DriverID)

	// Moving the driver out of range is visible to the next search.
	require.NoError(t, svc.UpdateLocation(context.Background(), service.UpdateLocationRequest{DriverID: driver.ID, Origin: pickupC}))
	routing.SetDistance(pickupC, passengerOrigin, 9000)

	got, err = finder.FindNearest(context.Background(), service.NearestDriversRequest{PassengerID: "p-1", MaxDistance: 5000})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDriverRegister_GeocodesAddress(t *testing.T) {
	drivers := NewMockDriverRepository()
	routing := NewMockRoutingService()
	routing.SetGeocode(destination, destCoord)
	svc := service.NewDriverService(drivers, routing, nil)

	driver, err := svc.Register(context.Background(), service.RegisterRequest{
		Name:    "Bruno",
		Email:   "bruno@example.com",
		Address: &destination,
	})
	require.NoError(t, err)
	assert.Equal(t, destCoord, driver.Origin)
	assert.Equal(t, int32(1), routing.GeocodeCallCount)
}

func TestDriverRegister_Rejections(t *testing.T) {
	drivers := NewMockDriverRepository()
	drivers.AddDriver(&domain.Driver{ID: "d-1", Email: "taken@example.com"})
	svc := service.NewDriverService(drivers, NewMockRoutingService(), nil)

	tests := []struct {
		name string
		req  service.RegisterRequest
		want error
	}{
		{"missing name", service.RegisterRequest{Email: "x@example.com", Origin: &pickupA}, service.ErrInvalidParticipant},
		{"bad email", service.RegisterRequest{Name: "X", Email: "nope", Origin: &pickupA}, service.ErrInvalidParticipant},
		{"no origin", service.RegisterRequest{Name: "X", Email: "x@example.com"}, service.ErrInvalidLocation},
		{"bad origin", service.RegisterRequest{Name: "X", Email: "x@example.com", Origin: &domain.Coordinate{Lat: 100}}, service.ErrInvalidLocation},
		{"bad address", service.RegisterRequest{Name: "X", Email: "x@example.com", Address: &domain.Address{City: "Recife"}}, service.ErrInvalidAddress},
		{"duplicate email", service.RegisterRequest{Name: "X", Email: "taken@example.com", Origin: &pickupA}, service.ErrAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, int32(0), drivers.CreateCallCount)
}

func TestDriverRegister_UniqueViolationIsAlreadyExists(t *testing.T) {
	drivers := NewMockDriverRepository()
	drivers.CreateError = repository.ErrDuplicate
	svc := service.NewDriverService(drivers, NewMockRoutingService(), nil)

	_, err := svc.Register(context.Background(), service.RegisterRequest{Name: "X", Email: "x@example.com", Origin: &pickupA})
	assert.ErrorIs(t, err, service.ErrAlreadyExists)
}

func TestDriverUpdateLocation(t *testing.T) {
	drivers := NewMockDriverRepository()
	drivers.AddDriver(&domain.Driver{ID: "d-1", Origin: origin})
	svc := service.NewDriverService(drivers, NewMockRoutingService(), nil)

	require.NoError(t, svc.UpdateLocation(context.Background(), service.UpdateLocationRequest{
		DriverID: "d-1",
		Origin:   pickupB,
	}))
	assert.Equal(t, pickupB, drivers.GetDriver("d-1").Origin)

	err := svc.UpdateLocation(context.Background(), service.UpdateLocationRequest{DriverID: "d-2", Origin: pickupB})
	var nf *service.NotFoundError
	assert.ErrorAs(t, err, &nf)

	err = svc.UpdateLocation(context.Background(), service.UpdateLocationRequest{DriverID: "d-1", Origin: domain.Coordinate{Lat: -91}})
	assert.ErrorIs(t, err, service.ErrInvalidLocation)
}

func TestPassengerRegisterAndGet(t *testing.T) {
	passengers := NewMockPassengerRepository()
	routing := NewMockRoutingService()
	routing.GeocodeError = ErrMockZeroResults
	svc := service.NewPassengerService(passengers, routing)

	p, err := svc.Register(context.Background(), service.RegisterRequest{Name: "Carla", Email: "carla@example.com", Origin: &pickupC})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Carla", got.Name)

	_, err = svc.Register(context.Background(), service.RegisterRequest{Name: "Other", Email: "carla@example.com", Origin: &pickupA})
	assert.ErrorIs(t, err, service.ErrAlreadyExists)

	_, err = svc.Register(context.Background(), service.RegisterRequest{Name: "Dan", Email: "dan@example.com", Address: &destination})
	var routingErr *service.RoutingServiceError
	assert.ErrorAs(t, err, &routingErr)

	all, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

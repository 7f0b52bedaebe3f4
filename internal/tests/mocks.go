package tests

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"ridepool/internal/domain"
	"ridepool/internal/redis"
	"ridepool/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
// GetAll returns drivers in insertion order.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver
	order   []string

	// Counters for verification
	CreateCallCount       int32
	GetByIDCallCount      int32
	UpdateOriginCallCount int32

	// Error injection
	CreateError       error
	GetAllError       error
	UpdateOriginError error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drivers[driver.ID]; !ok {
		m.order = append(m.order, driver.ID)
	}
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.AddDriver(driver)
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	atomic.AddInt32(&m.GetByIDCallCount, 1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) GetByEmail(ctx context.Context, email string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.drivers {
		if d.Email == email {
			copy := *d
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockDriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	if m.GetAllError != nil {
		return nil, m.GetAllError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Driver, 0, len(m.order))
	for _, id := range m.order {
		copy := *m.drivers[id]
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockDriverRepository) UpdateOrigin(ctx context.Context, id string, origin domain.Coordinate) error {
	atomic.AddInt32(&m.UpdateOriginCallCount, 1)
	if m.UpdateOriginError != nil {
		return m.UpdateOriginError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Origin = origin
	return nil
}

// GetDriver returns driver for test assertions.
func (m *MockDriverRepository) GetDriver(id string) *domain.Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drivers[id]
}

// ──────────────────────────────────────────────
// MOCK PASSENGER REPOSITORY
// ──────────────────────────────────────────────

// MockPassengerRepository is a mock implementation of PassengerRepository.
type MockPassengerRepository struct {
	mu         sync.RWMutex
	passengers map[string]*domain.Passenger
	order      []string

	// Counters for verification
	CreateCallCount  int32
	GetByIDCallCount int32

	// Error injection
	CreateError error
}

// NewMockPassengerRepository creates a new mock passenger repository.
func NewMockPassengerRepository() *MockPassengerRepository {
	return &MockPassengerRepository{
		passengers: make(map[string]*domain.Passenger),
	}
}

// AddPassenger adds a passenger to the mock repository.
func (m *MockPassengerRepository) AddPassenger(passenger *domain.Passenger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.passengers[passenger.ID]; !ok {
		m.order = append(m.order, passenger.ID)
	}
	m.passengers[passenger.ID] = passenger
}

func (m *MockPassengerRepository) Create(ctx context.Context, passenger *domain.Passenger) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.AddPassenger(passenger)
	return nil
}

func (m *MockPassengerRepository) GetByID(ctx context.Context, id string) (*domain.Passenger, error) {
	atomic.AddInt32(&m.GetByIDCallCount, 1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	passenger, ok := m.passengers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *passenger
	return &copy, nil
}

func (m *MockPassengerRepository) GetByEmail(ctx context.Context, email string) (*domain.Passenger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.passengers {
		if p.Email == email {
			copy := *p
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockPassengerRepository) GetAll(ctx context.Context) ([]*domain.Passenger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Passenger, 0, len(m.order))
	for _, id := range m.order {
		copy := *m.passengers[id]
		result = append(result, &copy)
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK TRIP ROUTE REPOSITORY
// ──────────────────────────────────────────────

// MockTripRouteRepository is a mock implementation of TripRouteRepository.
type MockTripRouteRepository struct {
	mu     sync.RWMutex
	routes map[string]*domain.TripRoute

	// Counters for verification
	CreateCallCount       int32
	UpdateCallCount       int32
	UpdateStatusCallCount int32
	DeleteCallCount       int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockTripRouteRepository creates a new mock trip route repository.
func NewMockTripRouteRepository() *MockTripRouteRepository {
	return &MockTripRouteRepository{
		routes: make(map[string]*domain.TripRoute),
	}
}

// AddTripRoute adds a trip route to the mock repository.
func (m *MockTripRouteRepository) AddTripRoute(route *domain.TripRoute) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[route.ID] = route
}

func (m *MockTripRouteRepository) Create(ctx context.Context, route *domain.TripRoute) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *route
	m.routes[route.ID] = &copy
	return nil
}

func (m *MockTripRouteRepository) GetByID(ctx context.Context, id string) (*domain.TripRoute, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	route, ok := m.routes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *route
	return &copy, nil
}

func (m *MockTripRouteRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.TripRoute, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.TripRoute
	for _, r := range m.routes {
		if r.DriverID == driverID {
			copy := *r
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockTripRouteRepository) ListByPassenger(ctx context.Context, passengerID string) ([]*domain.TripRoute, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.TripRoute
	for _, r := range m.routes {
		for _, id := range r.PassengerIDs {
			if id == passengerID {
				copy := *r
				result = append(result, &copy)
				break
			}
		}
	}
	return result, nil
}

func (m *MockTripRouteRepository) Update(ctx context.Context, route *domain.TripRoute) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.routes[route.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *route
	m.routes[route.ID] = &copy
	return nil
}

func (m *MockTripRouteRepository) UpdateStatus(ctx context.Context, id string, status domain.TripRouteStatus, updatedAt time.Time) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	route, ok := m.routes[id]
	if !ok {
		return repository.ErrNotFound
	}
	route.Status = status
	route.UpdatedAt = updatedAt
	return nil
}

func (m *MockTripRouteRepository) Delete(ctx context.Context, id string) error {
	atomic.AddInt32(&m.DeleteCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.routes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.routes, id)
	return nil
}

// GetTripRoute returns the stored route (for test assertions).
func (m *MockTripRouteRepository) GetTripRoute(id string) *domain.TripRoute {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.routes[id]
}

// Count returns the number of stored routes.
func (m *MockTripRouteRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.routes)
}

// ──────────────────────────────────────────────
// MOCK ROUTING SERVICE
// ──────────────────────────────────────────────

// MockRoutingService is a mock routing provider. Distances are looked up by
// "origin|destination" coordinate strings; routes echo their endpoints.
type MockRoutingService struct {
	mu        sync.RWMutex
	distances map[string]float64
	geocodes  map[string]domain.Coordinate
	routes    []string // "origin|destination" of every Route call, in call order

	// Counters for verification
	DistanceCallCount int32
	RouteCallCount    int32
	GeocodeCallCount  int32

	// Error injection
	DistanceError error
	RouteError    error
	GeocodeError  error
}

// NewMockRoutingService creates a new mock routing service.
func NewMockRoutingService() *MockRoutingService {
	return &MockRoutingService{
		distances: make(map[string]float64),
		geocodes:  make(map[string]domain.Coordinate),
	}
}

// SetDistance sets the distance from origin to destination.
func (m *MockRoutingService) SetDistance(origin, destination domain.Coordinate, meters float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.distances[pairKey(origin, destination)] = meters
}

// SetGeocode sets the coordinate an address resolves to.
func (m *MockRoutingService) SetGeocode(address domain.Address, c domain.Coordinate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.geocodes[address.Query()] = c
}

func (m *MockRoutingService) Distance(ctx context.Context, origin, destination domain.Coordinate) (float64, error) {
	atomic.AddInt32(&m.DistanceCallCount, 1)
	if m.DistanceError != nil {
		return 0, m.DistanceError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.distances[pairKey(origin, destination)]
	if !ok {
		return 0, fmt.Errorf("mock: no distance for %s", pairKey(origin, destination))
	}
	return d, nil
}

func (m *MockRoutingService) Route(ctx context.Context, origin, destination domain.Coordinate) (json.RawMessage, error) {
	atomic.AddInt32(&m.RouteCallCount, 1)
	if m.RouteError != nil {
		return nil, m.RouteError
	}
	m.mu.Lock()
	m.routes = append(m.routes, pairKey(origin, destination))
	m.mu.Unlock()
	return RoutePayload(origin, destination), nil
}

func (m *MockRoutingService) Geocode(ctx context.Context, address domain.Address) (domain.Coordinate, error) {
	atomic.AddInt32(&m.GeocodeCallCount, 1)
	if m.GeocodeError != nil {
		return domain.Coordinate{}, m.GeocodeError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.geocodes[address.Query()]
	if !ok {
		return domain.Coordinate{}, ErrMockZeroResults
	}
	return c, nil
}

// RouteCalls returns the "origin|destination" pairs passed to Route.
func (m *MockRoutingService) RouteCalls() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.routes...)
}

// TotalCalls returns the number of calls across all operations.
func (m *MockRoutingService) TotalCalls() int32 {
	return atomic.LoadInt32(&m.DistanceCallCount) +
		atomic.LoadInt32(&m.RouteCallCount) +
		atomic.LoadInt32(&m.GeocodeCallCount)
}

// RoutePayload is the payload the mock returns for a route.
func RoutePayload(origin, destination domain.Coordinate) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"from":%q,"to":%q}`, origin.String(), destination.String()))
}

func pairKey(origin, destination domain.Coordinate) string {
	return origin.String() + "|" + destination.String()
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

type mockLock struct {
	token  string
	expiry time.Time
}

// MockLockStore is a mock implementation of LockStore. Release only frees a
// lock whose token matches, like the Redis compare-and-delete.
type MockLockStore struct {
	mu     sync.Mutex
	locks  map[string]mockLock
	tokens int

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]mockLock),
	}
}

func (m *MockLockStore) AcquireRouteLock(ctx context.Context, routeID string, ttl time.Duration) (string, bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return "", false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return "", false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if held, exists := m.locks[routeID]; exists && time.Now().Before(held.expiry) {
		return "", false, nil
	}

	m.tokens++
	token := fmt.Sprintf("token-%d", m.tokens)
	m.locks[routeID] = mockLock{token: token, expiry: time.Now().Add(ttl)}
	return token, true, nil
}

func (m *MockLockStore) ReleaseRouteLock(ctx context.Context, routeID, token string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if held, exists := m.locks[routeID]; exists && held.token == token {
		delete(m.locks, routeID)
	}
	return nil
}

// IsLocked checks if a route is locked (for test assertions).
func (m *MockLockStore) IsLocked(routeID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	held, exists := m.locks[routeID]
	return exists && time.Now().Before(held.expiry)
}

// ──────────────────────────────────────────────
// MOCK NOTIFIER
// ──────────────────────────────────────────────

// MockNotifier records notifications by kind.
type MockNotifier struct {
	mu     sync.Mutex
	events []string
}

// NewMockNotifier creates a new mock notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) record(kind string, route *domain.TripRoute) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, kind+":"+route.ID)
}

func (m *MockNotifier) TripRouteCreated(ctx context.Context, route *domain.TripRoute) {
	m.record("created", route)
}

func (m *MockNotifier) PickupOrderChanged(ctx context.Context, route *domain.TripRoute) {
	m.record("recalculated", route)
}

func (m *MockNotifier) StatusChanged(ctx context.Context, route *domain.TripRoute) {
	m.record("status", route)
}

func (m *MockNotifier) TripRouteRemoved(ctx context.Context, route *domain.TripRoute) {
	m.record("removed", route)
}

// Events returns the recorded "kind:routeID" events.
func (m *MockNotifier) Events() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.events...)
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockZeroResults = errors.New("mock: ZERO_RESULTS")
	ErrMockTimeout     = errors.New("mock: operation timeout")
)

// Ensure mocks implement their interfaces.
var (
	_ repository.DriverRepository    = (*MockDriverRepository)(nil)
	_ repository.PassengerRepository = (*MockPassengerRepository)(nil)
	_ repository.TripRouteRepository = (*MockTripRouteRepository)(nil)
	_ redis.LockStoreInterface       = (*MockLockStore)(nil)
	_ redis.RoutingBackend           = (*MockRoutingService)(nil)
)

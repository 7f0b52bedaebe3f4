package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ridepool/internal/domain"
	"ridepool/internal/metrics"
	"ridepool/internal/repository"
)

const (
	// DefaultMaxPassengers is the largest group a driver picks up on one trip.
	DefaultMaxPassengers = 3

	// DefaultNearestDriversLimit caps nearest-driver results.
	DefaultNearestDriversLimit = 7
)

// Routing operation names.
const (
	opDistance = "distance"
	opRoute    = "route"
	opGeocode  = "geocode"
)

// RoutingService is the external routing provider.
type RoutingService interface {
	// Geocode resolves an address to a coordinate.
	Geocode(ctx context.Context, address domain.Address) (domain.Coordinate, error)

	// Distance returns the road distance in meters.
	Distance(ctx context.Context, origin, destination domain.Coordinate) (float64, error)

	// Route returns an opaque route payload.
	Route(ctx context.Context, origin, destination domain.Coordinate) (json.RawMessage, error)
}

// PlannerConfig holds the planner's small product bounds.
type PlannerConfig struct {
	MaxPassengers       int
	NearestDriversLimit int
}

// DefaultPlannerConfig returns the default planner configuration.
func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		MaxPassengers:       DefaultMaxPassengers,
		NearestDriversLimit: DefaultNearestDriversLimit,
	}
}

// TripPlanner sequences pickups for a driver and a small group of passengers
// heading to a shared destination. It holds no state between calls.
type TripPlanner struct {
	routing       RoutingService
	driverRepo    repository.DriverRepository
	passengerRepo repository.PassengerRepository
	cfg           PlannerConfig
	logger        *zap.Logger
}

// NewTripPlanner creates a new TripPlanner.
func NewTripPlanner(
	routing RoutingService,
	driverRepo repository.DriverRepository,
	passengerRepo repository.PassengerRepository,
	cfg PlannerConfig,
	logger *zap.Logger,
) *TripPlanner {
	if cfg.MaxPassengers <= 0 {
		cfg.MaxPassengers = DefaultMaxPassengers
	}
	if cfg.NearestDriversLimit <= 0 {
		cfg.NearestDriversLimit = DefaultNearestDriversLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TripPlanner{
		routing:       routing,
		driverRepo:    driverRepo,
		passengerRepo: passengerRepo,
		cfg:           cfg,
		logger:        logger,
	}
}

// PlanForIDs resolves the driver and passengers and plans their trip.
// Lookups fail before any routing call is made.
func (p *TripPlanner) PlanForIDs(ctx context.Context, driverID string, passengerIDs []string, destination domain.Address) (*domain.Itinerary, error) {
	if err := p.checkPassengerCount(len(passengerIDs)); err != nil {
		return nil, err
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	driver, err := p.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, notFound(err, EntityDriver, driverID)
	}

	stops := make([]domain.PickupStop, 0, len(passengerIDs))
	for _, id := range passengerIDs {
		if id == "" {
			return nil, ErrInvalidPassengerID
		}
		passenger, err := p.passengerRepo.GetByID(ctx, id)
		if err != nil {
			return nil, notFound(err, EntityPassenger, id)
		}
		stops = append(stops, domain.PickupStop{PassengerID: passenger.ID, Origin: passenger.Origin})
	}

	return p.Plan(ctx, driver.Origin, stops, destination)
}

// Plan builds the itinerary from driverOrigin through every stop to the
// geocoded destination. With several stops the next pickup is always the
// one nearest to the current point; exact ties go to the earlier stop.
// Any routing failure aborts the plan.
func (p *TripPlanner) Plan(ctx context.Context, driverOrigin domain.Coordinate, stops []domain.PickupStop, destination domain.Address) (*domain.Itinerary, error) {
	if err := p.validate(driverOrigin, stops, destination); err != nil {
		return nil, err
	}

	itinerary, err := p.plan(ctx, driverOrigin, stops, destination)
	metrics.ObservePlan(len(stops), err)
	if err != nil {
		return nil, err
	}

	p.logger.Info("trip planned",
		zap.Strings("pickup_order", itinerary.PassengerOrder()),
		zap.String("destination", itinerary.Destination.String()),
	)
	return itinerary, nil
}

func (p *TripPlanner) plan(ctx context.Context, driverOrigin domain.Coordinate, stops []domain.PickupStop, destination domain.Address) (*domain.Itinerary, error) {
	pickups := make([]domain.RouteSegment, 0, len(stops))
	current := driverOrigin

	if len(stops) == 1 {
		route, err := p.route(ctx, current, stops[0].Origin)
		if err != nil {
			return nil, err
		}
		pickups = append(pickups, domain.RouteSegment{PassengerID: stops[0].PassengerID, Route: route})
		current = stops[0].Origin
	} else {
		remaining := append([]domain.PickupStop(nil), stops...)
		for len(remaining) > 0 {
			idx, err := p.nearest(ctx, current, remaining)
			if err != nil {
				return nil, err
			}
			next := remaining[idx]

			// Only the winner's route is fetched. Fetching one per candidate
			// would turn every iteration into a full row of route calls.
			route, err := p.route(ctx, current, next.Origin)
			if err != nil {
				return nil, err
			}
			pickups = append(pickups, domain.RouteSegment{PassengerID: next.PassengerID, Route: route})

			current = next.Origin
			remaining = append(remaining[:idx], remaining[idx+1:]...)
		}
	}

	dest, err := p.geocode(ctx, destination)
	if err != nil {
		return nil, err
	}

	final, err := p.route(ctx, current, dest)
	if err != nil {
		return nil, err
	}

	return &domain.Itinerary{
		Pickups:     pickups,
		Final:       domain.RouteSegment{Route: final},
		Destination: dest,
	}, nil
}

// nearest returns the index of the candidate closest to from. Distances are
// queried concurrently into a slice indexed by candidate position, so the
// winner depends only on the values and never on completion order.
func (p *TripPlanner) nearest(ctx context.Context, from domain.Coordinate, candidates []domain.PickupStop) (int, error) {
	distances := make([]float64, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range candidates {
		g.Go(func() error {
			d, err := p.distance(gctx, from, c.Origin)
			if err != nil {
				return err
			}
			distances[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return -1, err
	}

	best := 0
	for i := 1; i < len(distances); i++ {
		if distances[i] < distances[best] {
			best = i
		}
	}
	return best, nil
}

func (p *TripPlanner) validate(driverOrigin domain.Coordinate, stops []domain.PickupStop, destination domain.Address) error {
	if err := p.checkPassengerCount(len(stops)); err != nil {
		return err
	}
	if err := driverOrigin.Validate(); err != nil {
		return fmt.Errorf("%w: driver origin %s", ErrInvalidLocation, driverOrigin)
	}

	seen := make(map[string]struct{}, len(stops))
	for _, s := range stops {
		if s.PassengerID == "" {
			return ErrInvalidPassengerID
		}
		if _, dup := seen[s.PassengerID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicatePassenger, s.PassengerID)
		}
		seen[s.PassengerID] = struct{}{}

		if err := s.Origin.Validate(); err != nil {
			return fmt.Errorf("%w: passenger %s origin %s", ErrInvalidLocation, s.PassengerID, s.Origin)
		}
	}

	if err := destination.Validate(); err != nil {
		return ErrInvalidAddress
	}
	return nil
}

func (p *TripPlanner) checkPassengerCount(n int) error {
	if n < 1 || n > p.cfg.MaxPassengers {
		return fmt.Errorf("%w: got %d, want 1 to %d", ErrInvalidPassengerCount, n, p.cfg.MaxPassengers)
	}
	return nil
}

func (p *TripPlanner) distance(ctx context.Context, from, to domain.Coordinate) (float64, error) {
	d, err := p.routing.Distance(ctx, from, to)
	if err != nil {
		return 0, p.routingError(opDistance, from.String(), to.String(), err)
	}
	return d, nil
}

func (p *TripPlanner) route(ctx context.Context, from, to domain.Coordinate) (json.RawMessage, error) {
	r, err := p.routing.Route(ctx, from, to)
	if err != nil {
		return nil, p.routingError(opRoute, from.String(), to.String(), err)
	}
	return r, nil
}

func (p *TripPlanner) geocode(ctx context.Context, address domain.Address) (domain.Coordinate, error) {
	c, err := p.routing.Geocode(ctx, address)
	if err != nil {
		return domain.Coordinate{}, p.routingError(opGeocode, address.Query(), "", err)
	}
	return c, nil
}

func (p *TripPlanner) routingError(op, origin, destination string, err error) error {
	p.logger.Warn("routing call failed",
		zap.String("op", op),
		zap.String("origin", origin),
		zap.String("destination", destination),
		zap.Error(err),
	)
	return &RoutingServiceError{Op: op, Origin: origin, Destination: destination, Err: err}
}

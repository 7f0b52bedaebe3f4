package service

import (
	"context"
	"math"
	"slices"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ridepool/internal/repository"
)

// maxConcurrentDistanceQueries bounds in-flight distance calls per search.
const maxConcurrentDistanceQueries = 8

// DriverDistance is a driver with their road distance to a passenger in meters.
type DriverDistance struct {
	DriverID string  `json:"driver_id"`
	Distance float64 `json:"distance"`
}

// NearestDriversRequest contains the parameters for a nearest-driver search.
type NearestDriversRequest struct {
	PassengerID string
	MaxDistance float64 // meters, finite; 0 means unbounded
	Limit       int     // 0 uses the configured limit
}

// DriverFinder ranks drivers by road distance to a passenger. Every driver
// in the repository is a candidate: road distance is measured between
// road-snapped points, so no straight-line radius can safely rule one out.
type DriverFinder struct {
	routing       RoutingService
	driverRepo    repository.DriverRepository
	passengerRepo repository.PassengerRepository
	limit         int
	logger        *zap.Logger
}

// NewDriverFinder creates a new DriverFinder.
func NewDriverFinder(
	routing RoutingService,
	driverRepo repository.DriverRepository,
	passengerRepo repository.PassengerRepository,
	limit int,
	logger *zap.Logger,
) *DriverFinder {
	if limit <= 0 {
		limit = DefaultNearestDriversLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DriverFinder{
		routing:       routing,
		driverRepo:    driverRepo,
		passengerRepo: passengerRepo,
		limit:         limit,
		logger:        logger,
	}
}

// FindNearest returns up to Limit drivers closest to the passenger by road
// distance, ascending. Drivers at or beyond MaxDistance are excluded.
func (f *DriverFinder) FindNearest(ctx context.Context, req NearestDriversRequest) ([]DriverDistance, error) {
	if req.PassengerID == "" {
		return nil, ErrInvalidPassengerID
	}
	if req.MaxDistance < 0 || math.IsNaN(req.MaxDistance) || math.IsInf(req.MaxDistance, 0) {
		return nil, ErrInvalidMaxDistance
	}

	limit := req.Limit
	if limit <= 0 || limit > f.limit {
		limit = f.limit
	}

	passenger, err := f.passengerRepo.GetByID(ctx, req.PassengerID)
	if err != nil {
		return nil, notFound(err, EntityPassenger, req.PassengerID)
	}

	candidates, err := f.driverRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	distances := make([]float64, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDistanceQueries)
	for i, d := range candidates {
		g.Go(func() error {
			dist, err := f.routing.Distance(gctx, d.Origin, passenger.Origin)
			if err != nil {
				f.logger.Warn("routing call failed",
					zap.String("op", opDistance),
					zap.String("driver_id", d.ID),
					zap.Error(err),
				)
				return &RoutingServiceError{
					Op:          opDistance,
					Origin:      d.Origin.String(),
					Destination: passenger.Origin.String(),
					Err:         err,
				}
			}
			distances[i] = dist
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ranked := newRankedDrivers(limit)
	for i, d := range candidates {
		if req.MaxDistance > 0 && distances[i] >= req.MaxDistance {
			continue
		}
		ranked.insert(DriverDistance{DriverID: d.ID, Distance: distances[i]})
	}

	f.logger.Debug("nearest drivers ranked",
		zap.String("passenger_id", passenger.ID),
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(ranked.items)),
	)
	return ranked.items, nil
}

// rankedDrivers keeps at most limit entries sorted ascending by distance.
// Equal distances keep insertion order.
type rankedDrivers struct {
	limit int
	items []DriverDistance
}

func newRankedDrivers(limit int) *rankedDrivers {
	return &rankedDrivers{limit: limit, items: make([]DriverDistance, 0, limit+1)}
}

func (r *rankedDrivers) insert(d DriverDistance) {
	if len(r.items) == r.limit && d.Distance >= r.items[len(r.items)-1].Distance {
		return
	}
	i := sort.Search(len(r.items), func(i int) bool {
		return r.items[i].Distance > d.Distance
	})
	r.items = slices.Insert(r.items, i, d)
	if len(r.items) > r.limit {
		r.items = r.items[:r.limit]
	}
}

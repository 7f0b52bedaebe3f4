package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ridepool/internal/domain"
	"ridepool/internal/redis"
	"ridepool/internal/repository"
)

// DefaultRouteLockTTL bounds how long a trip route update may hold its lock.
const DefaultRouteLockTTL = 30 * time.Second

// User types accepted when listing trip routes by participant.
const (
	UserTypeDriver    = "driver"
	UserTypePassenger = "passenger"
)

// TripPlannerInterface defines the planning contract used by TripRouteService.
type TripPlannerInterface interface {
	PlanForIDs(ctx context.Context, driverID string, passengerIDs []string, destination domain.Address) (*domain.Itinerary, error)
}

// Ensure TripPlanner implements TripPlannerInterface.
var _ TripPlannerInterface = (*TripPlanner)(nil)

// TripRouteService handles the trip route lifecycle.
type TripRouteService struct {
	planner   TripPlannerInterface
	routeRepo repository.TripRouteRepository
	lockStore redis.LockStoreInterface
	lockTTL   time.Duration
	notifier  Notifier
	logger    *zap.Logger
}

// NewTripRouteService creates a new TripRouteService. lockStore and
// notifier may be nil.
func NewTripRouteService(
	planner TripPlannerInterface,
	routeRepo repository.TripRouteRepository,
	lockStore redis.LockStoreInterface,
	lockTTL time.Duration,
	notifier Notifier,
	logger *zap.Logger,
) *TripRouteService {
	if lockTTL <= 0 {
		lockTTL = DefaultRouteLockTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TripRouteService{
		planner:   planner,
		routeRepo: routeRepo,
		lockStore: lockStore,
		lockTTL:   lockTTL,
		notifier:  notifier,
		logger:    logger,
	}
}

// CreateTripRouteRequest contains the parameters for creating a trip route.
type CreateTripRouteRequest struct {
	DriverID     string
	PassengerIDs []string
	Destination  domain.Address
}

// Create plans and persists a new trip route. Nothing is stored when
// planning fails.
func (s *TripRouteService) Create(ctx context.Context, req CreateTripRouteRequest) (*domain.TripRoute, error) {
	itinerary, err := s.planner.PlanForIDs(ctx, req.DriverID, req.PassengerIDs, req.Destination)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	route := &domain.TripRoute{
		ID:           uuid.New().String(),
		DriverID:     req.DriverID,
		PassengerIDs: append([]string(nil), req.PassengerIDs...),
		Destination:  req.Destination,
		Status:       domain.TripRouteStatusInProgress,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	route.ApplyItinerary(itinerary)

	if err := s.routeRepo.Create(ctx, route); err != nil {
		return nil, err
	}

	s.logger.Info("trip route created",
		zap.String("trip_route_id", route.ID),
		zap.String("driver_id", route.DriverID),
		zap.Strings("pickup_order", itinerary.PassengerOrder()),
	)
	if s.notifier != nil {
		s.notifier.TripRouteCreated(ctx, route)
	}
	return route, nil
}

// Get retrieves a trip route by ID.
func (s *TripRouteService) Get(ctx context.Context, id string) (*domain.TripRoute, error) {
	if id == "" {
		return nil, ErrInvalidTripRouteID
	}
	route, err := s.routeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, EntityTripRoute, id)
	}
	return route, nil
}

// ListByDriver returns the routes driven by driverID.
func (s *TripRouteService) ListByDriver(ctx context.Context, driverID string) ([]*domain.TripRoute, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return nonEmpty(s.routeRepo.ListByDriver(ctx, driverID))
}

// ListByPassenger returns the routes that include passengerID.
func (s *TripRouteService) ListByPassenger(ctx context.Context, passengerID string) ([]*domain.TripRoute, error) {
	if passengerID == "" {
		return nil, ErrInvalidPassengerID
	}
	return nonEmpty(s.routeRepo.ListByPassenger(ctx, passengerID))
}

// ListByUser dispatches on userType, which is "driver" or "passenger".
func (s *TripRouteService) ListByUser(ctx context.Context, userType, id string) ([]*domain.TripRoute, error) {
	switch userType {
	case UserTypeDriver:
		return s.ListByDriver(ctx, id)
	case UserTypePassenger:
		return s.ListByPassenger(ctx, id)
	default:
		return nil, ErrInvalidUserType
	}
}

func nonEmpty(routes []*domain.TripRoute, err error) ([]*domain.TripRoute, error) {
	if err != nil {
		return nil, err
	}
	if len(routes) == 0 {
		return nil, ErrNoTripRoutes
	}
	return routes, nil
}

// UpdateTripRouteRequest contains the parameters for updating a trip route.
// A nil PassengerIDs leaves the passengers untouched; a non-nil empty list
// deletes the route.
type UpdateTripRouteRequest struct {
	ID           string
	PassengerIDs *[]string
	Status       domain.TripRouteStatus
}

// UpdateMode reports what an update did.
type UpdateMode string

const (
	UpdateModeStatus       UpdateMode = "status"
	UpdateModeDeleted      UpdateMode = "deleted"
	UpdateModeRecalculated UpdateMode = "recalculated"
)

// UpdateTripRouteResult contains the result of an update. Route is nil
// when the route was deleted.
type UpdateTripRouteResult struct {
	Mode  UpdateMode
	Route *domain.TripRoute
}

// Update changes a trip route's status, deletes it, or re-plans it for a new
// passenger list keeping its driver, destination and id. Concurrent updates
// of the same route are serialized by a lock.
func (s *TripRouteService) Update(ctx context.Context, req UpdateTripRouteRequest) (*UpdateTripRouteResult, error) {
	if req.ID == "" {
		return nil, ErrInvalidTripRouteID
	}
	if req.PassengerIDs == nil && req.Status == "" {
		return nil, ErrNothingToUpdate
	}
	if req.Status != "" && !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	if s.lockStore != nil {
		token, locked, err := s.lockStore.AcquireRouteLock(ctx, req.ID, s.lockTTL)
		if err != nil {
			return nil, err
		}
		if !locked {
			return nil, ErrTripRouteBusy
		}
		defer func() {
			if err := s.lockStore.ReleaseRouteLock(context.WithoutCancel(ctx), req.ID, token); err != nil {
				s.logger.Warn("failed to release trip route lock", zap.String("trip_route_id", req.ID), zap.Error(err))
			}
		}()
	}

	route, err := s.routeRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, notFound(err, EntityTripRoute, req.ID)
	}

	switch {
	case req.PassengerIDs == nil:
		return s.updateStatus(ctx, route, req.Status)
	case len(*req.PassengerIDs) == 0:
		if err := s.routeRepo.Delete(ctx, route.ID); err != nil {
			return nil, notFound(err, EntityTripRoute, route.ID)
		}
		s.logger.Info("trip route deleted on empty passenger list", zap.String("trip_route_id", route.ID))
		if s.notifier != nil {
			s.notifier.TripRouteRemoved(ctx, route)
		}
		return &UpdateTripRouteResult{Mode: UpdateModeDeleted}, nil
	default:
		return s.replan(ctx, route, *req.PassengerIDs, req.Status)
	}
}

func (s *TripRouteService) updateStatus(ctx context.Context, route *domain.TripRoute, status domain.TripRouteStatus) (*UpdateTripRouteResult, error) {
	now := time.Now().UTC()
	if err := s.routeRepo.UpdateStatus(ctx, route.ID, status, now); err != nil {
		return nil, notFound(err, EntityTripRoute, route.ID)
	}
	route.Status = status
	route.UpdatedAt = now
	if s.notifier != nil {
		s.notifier.StatusChanged(ctx, route)
	}
	return &UpdateTripRouteResult{Mode: UpdateModeStatus, Route: route}, nil
}

func (s *TripRouteService) replan(ctx context.Context, route *domain.TripRoute, passengerIDs []string, status domain.TripRouteStatus) (*UpdateTripRouteResult, error) {
	itinerary, err := s.planner.PlanForIDs(ctx, route.DriverID, passengerIDs, route.Destination)
	if err != nil {
		return nil, err
	}

	route.PassengerIDs = append([]string(nil), passengerIDs...)
	route.ApplyItinerary(itinerary)
	if status != "" {
		route.Status = status
	}
	route.UpdatedAt = time.Now().UTC()

	if err := s.routeRepo.Update(ctx, route); err != nil {
		return nil, notFound(err, EntityTripRoute, route.ID)
	}

	s.logger.Info("trip route recalculated",
		zap.String("trip_route_id", route.ID),
		zap.Strings("pickup_order", itinerary.PassengerOrder()),
	)
	if s.notifier != nil {
		s.notifier.PickupOrderChanged(ctx, route)
	}
	return &UpdateTripRouteResult{Mode: UpdateModeRecalculated, Route: route}, nil
}

// Delete removes a trip route.
func (s *TripRouteService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidTripRouteID
	}
	route, err := s.routeRepo.GetByID(ctx, id)
	if err != nil {
		return notFound(err, EntityTripRoute, id)
	}
	if err := s.routeRepo.Delete(ctx, id); err != nil {
		return notFound(err, EntityTripRoute, id)
	}
	if s.notifier != nil {
		s.notifier.TripRouteRemoved(ctx, route)
	}
	return nil
}

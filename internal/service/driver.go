package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ridepool/internal/domain"
	"ridepool/internal/repository"
)

// DriverService handles driver operations.
type DriverService struct {
	driverRepo repository.DriverRepository
	routing    RoutingService
	logger     *zap.Logger
}

// NewDriverService creates a new DriverService.
func NewDriverService(
	driverRepo repository.DriverRepository,
	routing RoutingService,
	logger *zap.Logger,
) *DriverService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DriverService{
		driverRepo: driverRepo,
		routing:    routing,
		logger:     logger,
	}
}

// RegisterRequest contains the parameters for registering a driver or a
// passenger. When Origin is nil, Address is geocoded instead.
type RegisterRequest struct {
	Name    string
	Email   string
	Origin  *domain.Coordinate
	Address *domain.Address
}

// Register creates a new driver.
func (s *DriverService) Register(ctx context.Context, req RegisterRequest) (*domain.Driver, error) {
	name, email, err := validateParticipant(req)
	if err != nil {
		return nil, err
	}

	if _, err := s.driverRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	origin, err := resolveOrigin(ctx, s.routing, req)
	if err != nil {
		return nil, err
	}

	driver := &domain.Driver{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Origin:    origin,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.driverRepo.Create(ctx, driver); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}

	s.logger.Info("driver registered", zap.String("driver_id", driver.ID))
	return driver, nil
}

// UpdateLocationRequest contains the parameters for moving a driver's origin.
type UpdateLocationRequest struct {
	DriverID string
	Origin   domain.Coordinate
}

// UpdateLocation moves a driver's origin.
func (s *DriverService) UpdateLocation(ctx context.Context, req UpdateLocationRequest) error {
	if req.DriverID == "" {
		return ErrInvalidDriverID
	}
	if err := req.Origin.Validate(); err != nil {
		return ErrInvalidLocation
	}

	if err := s.driverRepo.UpdateOrigin(ctx, req.DriverID, req.Origin); err != nil {
		return notFound(err, EntityDriver, req.DriverID)
	}
	return nil
}

// Get retrieves a driver by ID.
func (s *DriverService) Get(ctx context.Context, id string) (*domain.Driver, error) {
	if id == "" {
		return nil, ErrInvalidDriverID
	}
	driver, err := s.driverRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, EntityDriver, id)
	}
	return driver, nil
}

// List returns every registered driver.
func (s *DriverService) List(ctx context.Context) ([]*domain.Driver, error) {
	return s.driverRepo.GetAll(ctx)
}

func validateParticipant(req RegisterRequest) (name, email string, err error) {
	name = strings.TrimSpace(req.Name)
	email = strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return "", "", ErrInvalidParticipant
	}
	return name, email, nil
}

// resolveOrigin returns the explicit origin, or geocodes the address.
func resolveOrigin(ctx context.Context, routing RoutingService, req RegisterRequest) (domain.Coordinate, error) {
	if req.Origin != nil {
		if err := req.Origin.Validate(); err != nil {
			return domain.Coordinate{}, ErrInvalidLocation
		}
		return *req.Origin, nil
	}
	if req.Address == nil {
		return domain.Coordinate{}, ErrInvalidLocation
	}
	if err := req.Address.Validate(); err != nil {
		return domain.Coordinate{}, ErrInvalidAddress
	}

	origin, err := routing.Geocode(ctx, *req.Address)
	if err != nil {
		return domain.Coordinate{}, &RoutingServiceError{Op: opGeocode, Origin: req.Address.Query(), Err: err}
	}
	return origin, nil
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"ridepool/internal/domain"
	"ridepool/internal/repository"
)

// PassengerService handles passenger operations.
type PassengerService struct {
	passengerRepo repository.PassengerRepository
	routing       RoutingService
}

// NewPassengerService creates a new PassengerService.
func NewPassengerService(passengerRepo repository.PassengerRepository, routing RoutingService) *PassengerService {
	return &PassengerService{
		passengerRepo: passengerRepo,
		routing:       routing,
	}
}

// Register creates a new passenger.
func (s *PassengerService) Register(ctx context.Context, req RegisterRequest) (*domain.Passenger, error) {
	name, email, err := validateParticipant(req)
	if err != nil {
		return nil, err
	}

	if _, err := s.passengerRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	origin, err := resolveOrigin(ctx, s.routing, req)
	if err != nil {
		return nil, err
	}

	passenger := &domain.Passenger{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Origin:    origin,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.passengerRepo.Create(ctx, passenger); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return passenger, nil
}

// Get retrieves a passenger by ID.
func (s *PassengerService) Get(ctx context.Context, id string) (*domain.Passenger, error) {
	if id == "" {
		return nil, ErrInvalidPassengerID
	}
	passenger, err := s.passengerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, EntityPassenger, id)
	}
	return passenger, nil
}

// List returns every registered passenger.
func (s *PassengerService) List(ctx context.Context) ([]*domain.Passenger, error) {
	return s.passengerRepo.GetAll(ctx)
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"ridepool/internal/domain"
	"ridepool/internal/repository"
)

const tripRouteColumns = `id, driver_id, passenger_ids, destination, segments, final_segment, status, created_at, updated_at`

// TripRouteRepository is a PostgreSQL implementation of repository.TripRouteRepository.
// Segments, the final segment and the destination are stored as JSONB.
type TripRouteRepository struct {
	q Querier
}

// NewTripRouteRepository creates a new PostgreSQL trip route repository.
func NewTripRouteRepository(db *sql.DB) *TripRouteRepository {
	return &TripRouteRepository{q: db}
}

// Create persists a new trip route.
func (r *TripRouteRepository) Create(ctx context.Context, route *domain.TripRoute) error {
	query := `
		INSERT INTO trip_routes (id, driver_id, passenger_ids, destination, segments, final_segment, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	enc, err := encodeTripRoute(route)
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx, query,
		route.ID,
		route.DriverID,
		pq.Array(route.PassengerIDs),
		enc.destination,
		enc.segments,
		enc.final,
		route.Status,
		route.CreatedAt,
		route.UpdatedAt,
	)
	return mapError(err)
}

// GetByID retrieves a trip route by ID.
func (r *TripRouteRepository) GetByID(ctx context.Context, id string) (*domain.TripRoute, error) {
	query := `SELECT ` + tripRouteColumns + ` FROM trip_routes WHERE id = $1`
	return scanTripRoute(r.q.QueryRowContext(ctx, query, id))
}

// ListByDriver returns the routes driven by driverID, newest first.
func (r *TripRouteRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.TripRoute, error) {
	query := `SELECT ` + tripRouteColumns + ` FROM trip_routes WHERE driver_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, driverID)
}

// ListByPassenger returns the routes that include passengerID, newest first.
func (r *TripRouteRepository) ListByPassenger(ctx context.Context, passengerID string) ([]*domain.TripRoute, error) {
	query := `SELECT ` + tripRouteColumns + ` FROM trip_routes WHERE $1 = ANY(passenger_ids) ORDER BY created_at DESC`
	return r.list(ctx, query, passengerID)
}

func (r *TripRouteRepository) list(ctx context.Context, query string, arg any) ([]*domain.TripRoute, error) {
	rows, err := r.q.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []*domain.TripRoute
	for rows.Next() {
		route, err := scanTripRoute(rows)
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	return routes, rows.Err()
}

// Update replaces passengers, segments and status of an existing route.
func (r *TripRouteRepository) Update(ctx context.Context, route *domain.TripRoute) error {
	query := `
		UPDATE trip_routes
		SET passenger_ids = $1, segments = $2, final_segment = $3, status = $4, updated_at = $5
		WHERE id = $6
	`

	enc, err := encodeTripRoute(route)
	if err != nil {
		return err
	}

	result, err := r.q.ExecContext(ctx, query,
		pq.Array(route.PassengerIDs),
		enc.segments,
		enc.final,
		route.Status,
		route.UpdatedAt,
		route.ID,
	)
	if err != nil {
		return err
	}
	return expectAffected(result)
}

// UpdateStatus changes only the status of a route.
func (r *TripRouteRepository) UpdateStatus(ctx context.Context, id string, status domain.TripRouteStatus, updatedAt time.Time) error {
	result, err := r.q.ExecContext(ctx, `UPDATE trip_routes SET status = $1, updated_at = $2 WHERE id = $3`, status, updatedAt, id)
	if err != nil {
		return err
	}
	return expectAffected(result)
}

// Delete removes a route.
func (r *TripRouteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM trip_routes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectAffected(result)
}

type encodedTripRoute struct {
	destination []byte
	segments    []byte
	final       []byte
}

func encodeTripRoute(route *domain.TripRoute) (*encodedTripRoute, error) {
	var (
		enc encodedTripRoute
		err error
	)
	if enc.destination, err = json.Marshal(route.Destination); err != nil {
		return nil, fmt.Errorf("encode destination: %w", err)
	}
	segments := route.Segments
	if segments == nil {
		segments = []domain.RouteSegment{}
	}
	if enc.segments, err = json.Marshal(segments); err != nil {
		return nil, fmt.Errorf("encode segments: %w", err)
	}
	if enc.final, err = json.Marshal(route.FinalSegment); err != nil {
		return nil, fmt.Errorf("encode final segment: %w", err)
	}
	return &enc, nil
}

func scanTripRoute(row rowScanner) (*domain.TripRoute, error) {
	var route domain.TripRoute
	var passengerIDs pq.StringArray
	var destination, segments, final []byte
	err := row.Scan(
		&route.ID,
		&route.DriverID,
		&passengerIDs,
		&destination,
		&segments,
		&final,
		&route.Status,
		&route.CreatedAt,
		&route.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}

	route.PassengerIDs = []string(passengerIDs)
	if err := json.Unmarshal(destination, &route.Destination); err != nil {
		return nil, fmt.Errorf("decode destination of trip route %s: %w", route.ID, err)
	}
	if err := json.Unmarshal(segments, &route.Segments); err != nil {
		return nil, fmt.Errorf("decode segments of trip route %s: %w", route.ID, err)
	}
	if err := json.Unmarshal(final, &route.FinalSegment); err != nil {
		return nil, fmt.Errorf("decode final segment of trip route %s: %w", route.ID, err)
	}
	return &route, nil
}

// Ensure repositories implement their interfaces.
var (
	_ repository.TripRouteRepository = (*TripRouteRepository)(nil)
	_ repository.DriverRepository    = (*DriverRepository)(nil)
	_ repository.PassengerRepository = (*PassengerRepository)(nil)
)

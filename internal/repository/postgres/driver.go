package postgres

import (
	"context"
	"database/sql"

	"ridepool/internal/domain"
)

const driverColumns = `id, COALESCE(name, ''), email, origin_lat, origin_lng, created_at`

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// Create adds a new driver.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `INSERT INTO drivers (id, name, email, origin_lat, origin_lng, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.ExecContext(ctx, query,
		driver.ID, driver.Name, driver.Email, driver.Origin.Lat, driver.Origin.Lng, driver.CreatedAt)
	return mapError(err)
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	return r.getOne(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = $1`, id)
}

// GetByEmail retrieves a driver by email.
func (r *DriverRepository) GetByEmail(ctx context.Context, email string) (*domain.Driver, error) {
	return r.getOne(ctx, `SELECT `+driverColumns+` FROM drivers WHERE email = $1`, email)
}

func (r *DriverRepository) getOne(ctx context.Context, query string, arg any) (*domain.Driver, error) {
	var driver domain.Driver
	err := r.q.QueryRowContext(ctx, query, arg).Scan(
		&driver.ID,
		&driver.Name,
		&driver.Email,
		&driver.Origin.Lat,
		&driver.Origin.Lng,
		&driver.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &driver, nil
}

// GetAll retrieves all drivers.
func (r *DriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+driverColumns+` FROM drivers ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		var driver domain.Driver
		if err := rows.Scan(&driver.ID, &driver.Name, &driver.Email, &driver.Origin.Lat, &driver.Origin.Lng, &driver.CreatedAt); err != nil {
			return nil, err
		}
		drivers = append(drivers, &driver)
	}
	return drivers, rows.Err()
}

// UpdateOrigin moves the driver's starting position.
func (r *DriverRepository) UpdateOrigin(ctx context.Context, id string, origin domain.Coordinate) error {
	query := `UPDATE drivers SET origin_lat = $1, origin_lng = $2 WHERE id = $3`

	result, err := r.q.ExecContext(ctx, query, origin.Lat, origin.Lng, id)
	if err != nil {
		return err
	}
	return expectAffected(result)
}

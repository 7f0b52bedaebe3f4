package postgres

import (
	"context"
	"database/sql"

	"ridepool/internal/domain"
)

const passengerColumns = `id, name, email, origin_lat, origin_lng, created_at`

// PassengerRepository implements repository.PassengerRepository using PostgreSQL.
type PassengerRepository struct {
	db *sql.DB
}

// NewPassengerRepository creates a new PassengerRepository.
func NewPassengerRepository(db *sql.DB) *PassengerRepository {
	return &PassengerRepository{db: db}
}

// Create adds a new passenger.
func (r *PassengerRepository) Create(ctx context.Context, p *domain.Passenger) error {
	query := `INSERT INTO passengers (id, name, email, origin_lat, origin_lng, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, p.ID, p.Name, p.Email, p.Origin.Lat, p.Origin.Lng, p.CreatedAt)
	return mapError(err)
}

// GetByID retrieves a passenger by ID.
func (r *PassengerRepository) GetByID(ctx context.Context, id string) (*domain.Passenger, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+passengerColumns+` FROM passengers WHERE id = $1`, id)
	return scanPassenger(row)
}

// GetByEmail retrieves a passenger by email.
func (r *PassengerRepository) GetByEmail(ctx context.Context, email string) (*domain.Passenger, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+passengerColumns+` FROM passengers WHERE email = $1`, email)
	return scanPassenger(row)
}

// GetAll retrieves all passengers.
func (r *PassengerRepository) GetAll(ctx context.Context) ([]*domain.Passenger, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+passengerColumns+` FROM passengers ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var passengers []*domain.Passenger
	for rows.Next() {
		p, err := scanPassenger(rows)
		if err != nil {
			return nil, err
		}
		passengers = append(passengers, p)
	}
	return passengers, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPassenger(row rowScanner) (*domain.Passenger, error) {
	var p domain.Passenger
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Origin.Lat, &p.Origin.Lng, &p.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

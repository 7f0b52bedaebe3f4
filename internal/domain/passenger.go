package domain

import "time"

// Passenger represents a rider waiting to be picked up.
type Passenger struct {
	ID        string
	Name      string
	Email     string
	Origin    Coordinate // Pickup point.
	CreatedAt time.Time
}

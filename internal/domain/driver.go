package domain

import "time"

// Driver represents a driver offering seats on a pooled trip.
type Driver struct {
	ID        string
	Name      string
	Email     string
	Origin    Coordinate // Current starting position.
	CreatedAt time.Time
}

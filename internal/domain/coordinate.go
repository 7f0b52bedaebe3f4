package domain

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrInvalidCoordinate is returned when a coordinate is not a finite lat/lng pair in range.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrInvalidAddress is returned when an address lacks the fields needed for geocoding.
	ErrInvalidAddress = errors.New("invalid address")
)

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate checks that both components are finite and in range.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) {
		return ErrInvalidCoordinate
	}
	if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
		return ErrInvalidCoordinate
	}
	return nil
}

// String renders the coordinate as "lat,lng", the form routing providers accept.
func (c Coordinate) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}

// Address is a structured postal address.
type Address struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
}

// Validate requires at least a street and a city.
func (a Address) Validate() error {
	if strings.TrimSpace(a.Street) == "" || strings.TrimSpace(a.City) == "" {
		return ErrInvalidAddress
	}
	return nil
}

// Query renders the address as a single comma-separated geocoding query.
// Empty parts are skipped.
func (a Address) Query() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Street, a.Number, a.Neighborhood, a.City} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ",")
}

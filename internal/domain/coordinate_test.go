package domain_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"ridepool/internal/domain"
)

func TestCoordinateValidate(t *testing.T) {
	tests := []struct {
		name    string
		c       domain.Coordinate
		wantErr bool
	}{
		{"origin", domain.Coordinate{}, false},
		{"bounds", domain.Coordinate{Lat: -90, Lng: 180}, false},
		{"lat too high", domain.Coordinate{Lat: 90.0001}, true},
		{"lng too low", domain.Coordinate{Lng: -180.5}, true},
		{"nan", domain.Coordinate{Lat: math.NaN()}, true},
		{"inf", domain.Coordinate{Lng: math.Inf(1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidCoordinate)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCoordinateString(t *testing.T) {
	assert.Equal(t, "-23.5505,-46.6333", domain.Coordinate{Lat: -23.5505, Lng: -46.6333}.String())
	assert.Equal(t, "1,0", domain.Coordinate{Lat: 1}.String())
}

func TestAddress(t *testing.T) {
	addr := domain.Address{Street: " Rua Augusta ", Number: "500", City: "Sao Paulo"}
	assert.NoError(t, addr.Validate())
	assert.Equal(t, "Rua Augusta,500,Sao Paulo", addr.Query())

	assert.ErrorIs(t, domain.Address{Street: "Rua Augusta"}.Validate(), domain.ErrInvalidAddress)
	assert.ErrorIs(t, domain.Address{City: "  ", Street: "x"}.Validate(), domain.ErrInvalidAddress)
}

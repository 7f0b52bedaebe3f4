package handler

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ridepool/internal/domain"
	"ridepool/internal/service"
)

// PassengerHandler handles HTTP requests for passengers.
type PassengerHandler struct {
	passengerService *service.PassengerService
	driverFinder     *service.DriverFinder
}

// NewPassengerHandler creates a new PassengerHandler.
func NewPassengerHandler(passengerService *service.PassengerService, driverFinder *service.DriverFinder) *PassengerHandler {
	return &PassengerHandler{
		passengerService: passengerService,
		driverFinder:     driverFinder,
	}
}

// NearestDriversResponse is the HTTP response for a nearest-driver search.
type NearestDriversResponse struct {
	PassengerID string                   `json:"passenger_id"`
	Drivers     []service.DriverDistance `json:"drivers"`
}

func passengerResponse(p *domain.Passenger) ParticipantResponse {
	return ParticipantResponse{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Origin:    p.Origin,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

// Register handles POST /v1/passengers
func (h *PassengerHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	passenger, err := h.passengerService.Register(c.Request.Context(), req.toService())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, passengerResponse(passenger))
}

// GetAll handles GET /v1/passengers
func (h *PassengerHandler) GetAll(c *gin.Context) {
	passengers, err := h.passengerService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]ParticipantResponse, 0, len(passengers))
	for _, p := range passengers {
		response = append(response, passengerResponse(p))
	}

	c.JSON(http.StatusOK, response)
}

// Get handles GET /v1/passengers/:id
func (h *PassengerHandler) Get(c *gin.Context) {
	passenger, err := h.passengerService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, passengerResponse(passenger))
}

// NearestDrivers handles GET /v1/passengers/:id/nearest-drivers
func (h *PassengerHandler) NearestDrivers(c *gin.Context) {
	var maxDistanceKm float64
	if v := c.Query("max_distance_km"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "max_distance_km must be a finite number"})
			return
		}
		maxDistanceKm = f
	}

	var limit int
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be an integer"})
			return
		}
		limit = n
	}

	passengerID := c.Param("id")
	drivers, err := h.driverFinder.FindNearest(c.Request.Context(), service.NearestDriversRequest{
		PassengerID: passengerID,
		MaxDistance: maxDistanceKm * 1000,
		Limit:       limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, NearestDriversResponse{PassengerID: passengerID, Drivers: drivers})
}

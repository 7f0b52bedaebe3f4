package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ridepool/internal/domain"
	"ridepool/internal/service"
)

// DriverHandler handles HTTP requests for drivers.
type DriverHandler struct {
	driverService *service.DriverService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverService *service.DriverService) *DriverHandler {
	return &DriverHandler{driverService: driverService}
}

// RegisterRequest is the HTTP request body for driver and passenger
// registration. Either origin or address must be given.
type RegisterRequest struct {
	Name    string             `json:"name"`
	Email   string             `json:"email"`
	Origin  *domain.Coordinate `json:"origin"`
	Address *domain.Address    `json:"address"`
}

func (r RegisterRequest) toService() service.RegisterRequest {
	return service.RegisterRequest{
		Name:    r.Name,
		Email:   r.Email,
		Origin:  r.Origin,
		Address: r.Address,
	}
}

// UpdateLocationRequest is the HTTP request body for moving a driver.
type UpdateLocationRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// ParticipantResponse is the HTTP response for driver and passenger data.
type ParticipantResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Origin    domain.Coordinate `json:"origin"`
	CreatedAt string            `json:"created_at"`
}

func driverResponse(d *domain.Driver) ParticipantResponse {
	return ParticipantResponse{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		Origin:    d.Origin,
		CreatedAt: d.CreatedAt.Format(time.RFC3339),
	}
}

// Register handles POST /v1/drivers
func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.driverService.Register(c.Request.Context(), req.toService())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, driverResponse(driver))
}

// GetAll handles GET /v1/drivers
func (h *DriverHandler) GetAll(c *gin.Context) {
	drivers, err := h.driverService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]ParticipantResponse, 0, len(drivers))
	for _, d := range drivers {
		response = append(response, driverResponse(d))
	}

	c.JSON(http.StatusOK, response)
}

// Get handles GET /v1/drivers/:id
func (h *DriverHandler) Get(c *gin.Context) {
	driver, err := h.driverService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, driverResponse(driver))
}

// UpdateLocation handles PUT /v1/drivers/:id/location
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Lat == nil || req.Lng == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "lat and lng are required"})
		return
	}

	err := h.driverService.UpdateLocation(c.Request.Context(), service.UpdateLocationRequest{
		DriverID: c.Param("id"),
		Origin:   domain.Coordinate{Lat: *req.Lat, Lng: *req.Lng},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ridepool/internal/domain"
	"ridepool/internal/service"
)

// TripRouteHandler handles HTTP requests for trip routes.
type TripRouteHandler struct {
	routeService *service.TripRouteService
}

// NewTripRouteHandler creates a new TripRouteHandler.
func NewTripRouteHandler(routeService *service.TripRouteService) *TripRouteHandler {
	return &TripRouteHandler{routeService: routeService}
}

// CreateTripRouteRequest is the HTTP request body for planning a trip route.
type CreateTripRouteRequest struct {
	DriverID     string         `json:"driver_id"`
	PassengerIDs []string       `json:"passenger_ids"`
	Destination  domain.Address `json:"destination"`
}

// UpdateTripRouteRequest is the HTTP request body for updating a trip route.
// An explicit empty passenger_ids deletes the route.
type UpdateTripRouteRequest struct {
	PassengerIDs *[]string `json:"passenger_ids"`
	Status       string    `json:"status"`
}

// TripRouteResponse is the HTTP response for trip route data.
type TripRouteResponse struct {
	ID           string                `json:"id"`
	DriverID     string                `json:"driver_id"`
	PassengerIDs []string              `json:"passenger_ids"`
	Destination  domain.Address        `json:"destination"`
	Segments     []domain.RouteSegment `json:"segments"`
	FinalSegment domain.RouteSegment   `json:"final_segment"`
	Status       string                `json:"status"`
	CreatedAt    string                `json:"created_at"`
	UpdatedAt    string                `json:"updated_at"`
}

// UpdateTripRouteResponse is the HTTP response for an update.
type UpdateTripRouteResponse struct {
	Mode  string             `json:"mode"`
	Route *TripRouteResponse `json:"route,omitempty"`
}

func tripRouteResponse(r *domain.TripRoute) *TripRouteResponse {
	return &TripRouteResponse{
		ID:           r.ID,
		DriverID:     r.DriverID,
		PassengerIDs: r.PassengerIDs,
		Destination:  r.Destination,
		Segments:     r.Segments,
		FinalSegment: r.FinalSegment,
		Status:       string(r.Status),
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    r.UpdatedAt.Format(time.RFC3339),
	}
}

// Create handles POST /v1/routes
func (h *TripRouteHandler) Create(c *gin.Context) {
	var req CreateTripRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	route, err := h.routeService.Create(c.Request.Context(), service.CreateTripRouteRequest{
		DriverID:     req.DriverID,
		PassengerIDs: req.PassengerIDs,
		Destination:  req.Destination,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, tripRouteResponse(route))
}

// Get handles GET /v1/routes/:id
func (h *TripRouteHandler) Get(c *gin.Context) {
	route, err := h.routeService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tripRouteResponse(route))
}

// ListByUser handles GET /v1/routes/users/:userType/:id
func (h *TripRouteHandler) ListByUser(c *gin.Context) {
	routes, err := h.routeService.ListByUser(c.Request.Context(), c.Param("userType"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]*TripRouteResponse, 0, len(routes))
	for _, r := range routes {
		response = append(response, tripRouteResponse(r))
	}

	c.JSON(http.StatusOK, response)
}

// Update handles PUT /v1/routes/:id
func (h *TripRouteHandler) Update(c *gin.Context) {
	var req UpdateTripRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.routeService.Update(c.Request.Context(), service.UpdateTripRouteRequest{
		ID:           c.Param("id"),
		PassengerIDs: req.PassengerIDs,
		Status:       domain.TripRouteStatus(req.Status),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response := UpdateTripRouteResponse{Mode: string(result.Mode)}
	if result.Route != nil {
		response.Route = tripRouteResponse(result.Route)
	}
	c.JSON(http.StatusOK, response)
}

// Delete handles DELETE /v1/routes/:id
func (h *TripRouteHandler) Delete(c *gin.Context) {
	if err := h.routeService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ridecab/service-ride/internal/application"
	"github.com/ridecab/service-ride/internal/platform/response"
)

// SearchRequest is the body of a location search.
type SearchRequest struct {
	Query string `json:"query"`
}

// RideHandler serves the data the rider map and search box read.
type RideHandler struct {
	fleet  *application.FleetService
	places *application.PlaceService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(fleet *application.FleetService, places *application.PlaceService) *RideHandler {
	return &RideHandler{fleet: fleet, places: places}
}

// RegisterRoutes registers the vehicle and search routes.
func (h *RideHandler) RegisterRoutes(r *gin.RouterGroup) {
	api := r.Group("/api")
	{
		api.GET("/cars", h.ListCars)
		api.POST("/search", h.Search)
	}
}

// ListCars handles GET /api/cars.
func (h *RideHandler) ListCars(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	response.Success(c, h.fleet.ListCars(c.Request.Context()))
}

// Search handles POST /api/search.
func (h *RideHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	response.Success(c, h.places.Search(c.Request.Context(), req.Query))
}

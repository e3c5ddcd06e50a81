package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ridecab/service-ride/internal/application"
	"github.com/ridecab/service-ride/internal/platform/auth"
	"github.com/ridecab/service-ride/internal/platform/middleware"
	"github.com/ridecab/service-ride/internal/platform/response"
)

// StatsHandler exposes the ride-booked counters.
type StatsHandler struct {
	ledger *application.RideLedger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(ledger *application.RideLedger) *StatsHandler {
	return &StatsHandler{ledger: ledger}
}

// RegisterRoutes registers the stats routes behind token auth.
func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	stats := r.Group("/api/v1/stats")
	stats.Use(middleware.AuthMiddleware(jwtManager))
	{
		stats.GET("/rides", h.RideStats)
	}
}

// RideStats handles GET /api/v1/stats/rides.
func (h *StatsHandler) RideStats(c *gin.Context) {
	response.Success(c, h.ledger.Stats(c.Request.Context()))
}

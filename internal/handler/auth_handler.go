package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ridecab/service-ride/internal/application"
	"github.com/ridecab/service-ride/internal/platform/response"
)

// AuthHandler handles rider account requests.
type AuthHandler struct {
	service *application.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service *application.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterRoutes registers the account routes.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	api := r.Group("/api")
	{
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
		api.GET("/verify", h.Verify)
	}
}

// Register handles POST /api/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req application.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Email and password required")
		return
	}

	result, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req application.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Email and password required")
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Verify handles GET /api/verify.
func (h *AuthHandler) Verify(c *gin.Context) {
	user, err := h.service.Verify(c.Request.Context(), c.GetHeader("Authorization"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"user": user})
}

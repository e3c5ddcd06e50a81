package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ridecab/service-ride/internal/platform/auth"
	"github.com/ridecab/service-ride/internal/platform/response"
)

const claimsKey = "auth_claims"

// AuthMiddleware rejects requests without a valid bearer token and stores the
// token claims on the context.
func AuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "No token provided")
			c.Abort()
			return
		}

		claims, err := jwtManager.Validate(header)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				response.Unauthorized(c, "Token expired")
			} else {
				response.Unauthorized(c, "Invalid token")
			}
			c.Abort()
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// GetClaims returns the claims stored by AuthMiddleware.
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

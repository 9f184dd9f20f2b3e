package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"standy/internal/auth"
)

// Context keys set by JWTAuth.
const (
	ContextUserID = "user_id"
	ContextClaims = "jwt_claims"
)

// JWTAuth validates the Authorization bearer token and stores the user ID on
// the request context.
func JWTAuth(authService *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"status": false,
					"msg":    "Authorization token is required",
					"obj":    nil,
				})
			}

			claims, err := authService.ParseToken(c.Request().Context(), strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"status": false,
					"msg":    "Invalid or expired token",
					"obj":    nil,
				})
			}

			c.Set(ContextUserID, claims.Subject)
			c.Set(ContextClaims, claims)
			return next(c)
		}
	}
}

// CORS configures CORS headers.
func CORS() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("Access-Control-Allow-Origin", "*")
			c.Response().Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Response().Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key")
			if c.Request().Method == "OPTIONS" {
				return c.NoContent(http.StatusOK)
			}
			return next(c)
		}
	}
}

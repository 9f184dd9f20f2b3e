package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"standy/internal/auth"
	"standy/internal/handler/api"
	"standy/internal/middleware"
	"standy/internal/payment"
	"standy/internal/repository"
)

// Setup configures all routes for the Echo server.
func Setup(
	e *echo.Echo,
	db *gorm.DB,
	authService *auth.Service,
	gateway payment.Gateway,
	deduper middleware.SubmissionDeduper,
	logger *zap.Logger,
) {
	// Global middleware
	e.Use(echomw.Recover())
	e.Use(middleware.CORS())

	repos := &api.Repos{
		User:    repository.NewUserRepository(db),
		Payment: repository.NewPaymentRepository(db),
		Plan:    repository.NewPlanRepository(db),
	}

	authHandler := api.NewAuthHandler(authService, logger)
	userHandler := api.NewUserHandler(repos, authService, logger)
	paymentHandler := api.NewPaymentHandler(repos, gateway, deduper, logger)

	// Public auth endpoints
	authGroup := e.Group("/api/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/forgot-password", authHandler.ForgotPassword)
	authGroup.POST("/reset-password", authHandler.ResetPassword)
	authGroup.GET("/verify", authHandler.Verify)

	// Everything below requires a valid token.
	apiGroup := e.Group("/api")
	apiGroup.Use(middleware.JWTAuth(authService))

	apiGroup.POST("/auth/logout", authHandler.Logout)
	apiGroup.POST("/auth/change-password", authHandler.ChangePassword)

	apiGroup.GET("/profile", userHandler.Profile)
	apiGroup.PATCH("/profile", userHandler.UpdateProfile)
	apiGroup.POST("/account/delete", userHandler.DeleteAccount)
	apiGroup.GET("/plans", userHandler.Plans)

	apiGroup.POST("/payment", paymentHandler.Charge)
	apiGroup.GET("/payments", paymentHandler.History)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
}

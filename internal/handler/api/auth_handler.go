package api

import (
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"standy/internal/auth"
	"standy/internal/middleware"
	"standy/internal/models"
)

// AuthHandler exposes registration, sign in/out and the password flows.
type AuthHandler struct {
	service *auth.Service
	logger  *zap.Logger
}

func NewAuthHandler(service *auth.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "Invalid request body")
	}

	user, err := h.service.Register(&req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken),
			errors.Is(err, auth.ErrWeakPassword),
			errors.Is(err, auth.ErrInvalidEmail):
			return errorResponse(c, http.StatusBadRequest, err.Error())
		}
		h.logger.Error("Registration failed", zap.Error(err))
		return internalError(c)
	}

	return successResponse(c, "Account created, check your email to verify", map[string]interface{}{
		"id":    user.ID,
		"email": user.Email,
		"login": user.Login,
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "Invalid request body")
	}

	token, user, err := h.service.Login(&req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return errorResponse(c, http.StatusUnauthorized, "Invalid email or password")
		}
		h.logger.Error("Login failed", zap.Error(err))
		return internalError(c)
	}

	return successResponse(c, "Signed in", map[string]interface{}{
		"token":    token,
		"id":       user.ID,
		"email":    user.Email,
		"login":    user.Login,
		"verified": user.Verified,
	})
}

// Logout handles POST /api/auth/logout (auth required). The token is
// revoked until its natural expiry.
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, _ := c.Get(middleware.ContextClaims).(*jwt.StandardClaims)
	if claims == nil {
		return errorResponse(c, http.StatusUnauthorized, "Not signed in")
	}
	if err := h.service.Logout(c.Request().Context(), claims); err != nil {
		h.logger.Warn("Token revocation failed", zap.Error(err))
	}
	return successResponse(c, "Signed out", nil)
}

// ForgotPassword handles POST /api/auth/forgot-password. Always answers
// success so the endpoint cannot probe registered emails.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req models.ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := h.service.ForgotPassword(req.Email); err != nil {
		h.logger.Error("Forgot-password failed", zap.Error(err))
		return internalError(c)
	}
	return successResponse(c, "If that address is registered, a reset link was sent", nil)
}

// ResetPassword handles POST /api/auth/reset-password.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req models.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := h.service.ResetPassword(&req); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrWeakPassword):
			return errorResponse(c, http.StatusBadRequest, err.Error())
		}
		h.logger.Error("Password reset failed", zap.Error(err))
		return internalError(c)
	}
	return successResponse(c, "Password updated", nil)
}

// Verify handles GET /api/auth/verify?email=...&token=... (email link).
func (h *AuthHandler) Verify(c echo.Context) error {
	email := c.QueryParam("email")
	token := c.QueryParam("token")
	if err := h.service.VerifyEmail(email, token); err != nil {
		return errorResponse(c, http.StatusBadRequest, "Invalid or expired verification link")
	}
	return successResponse(c, "Email verified", nil)
}

// ChangePassword handles POST /api/auth/change-password (auth required).
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req models.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := h.service.ChangePassword(userID(c), req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			return errorResponse(c, http.StatusUnauthorized, "Current password is incorrect")
		case errors.Is(err, auth.ErrWeakPassword):
			return errorResponse(c, http.StatusBadRequest, err.Error())
		}
		h.logger.Error("Change-password failed", zap.Error(err))
		return internalError(c)
	}
	return successResponse(c, "Password changed", nil)
}

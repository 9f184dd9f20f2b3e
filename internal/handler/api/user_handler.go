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

// UserHandler serves the profile and dashboard endpoints.
type UserHandler struct {
	repos       *Repos
	authService Authenticator
	logger      *zap.Logger
}

func NewUserHandler(repos *Repos, authService Authenticator, logger *zap.Logger) *UserHandler {
	return &UserHandler{repos: repos, authService: authService, logger: logger}
}

// Profile handles GET /api/profile.
func (h *UserHandler) Profile(c echo.Context) error {
	user, err := h.repos.User.FindByID(userID(c))
	if err != nil {
		h.logger.Error("Failed to load profile", zap.Error(err))
		return internalError(c)
	}
	return successResponse(c, "Successful", user)
}

// UpdateProfile handles PATCH /api/profile. Only the fields present in the
// body are touched.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req models.ProfileUpdateRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "Invalid request body")
	}

	updates := map[string]interface{}{}
	set := func(column string, v *string) {
		if v != nil {
			updates[column] = *v
		}
	}
	set("name", req.Name)
	set("surname", req.Surname)
	set("phone", req.Phone)
	set("address", req.Address)
	set("city", req.City)
	set("country", req.Country)
	set("zip_code", req.ZipCode)
	set("identity_number", req.IdentityNumber)

	if len(updates) == 0 {
		return errorResponse(c, http.StatusBadRequest, "Nothing to update")
	}
	if err := h.repos.User.Update(userID(c), updates); err != nil {
		h.logger.Error("Profile update failed", zap.Error(err))
		return internalError(c)
	}
	return successResponse(c, "Profile updated", nil)
}

// DeleteAccount handles POST /api/account/delete. The password is required
// again; this removes the account and its payment history.
func (h *UserHandler) DeleteAccount(c echo.Context) error {
	var req models.DeleteAccountRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "Invalid request body")
	}

	uid := userID(c)
	if err := h.authService.CheckPassword(uid, req.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return errorResponse(c, http.StatusUnauthorized, "Password is incorrect")
		}
		h.logger.Error("Account deletion check failed", zap.Error(err))
		return internalError(c)
	}

	if err := h.repos.Payment.DeleteByUserID(uid); err != nil {
		h.logger.Error("Failed to delete payment history", zap.String("user_id", uid), zap.Error(err))
		return internalError(c)
	}
	if err := h.repos.User.Delete(uid); err != nil {
		h.logger.Error("Failed to delete user", zap.String("user_id", uid), zap.Error(err))
		return internalError(c)
	}

	// The deleted account's token must stop working immediately.
	if claims, ok := c.Get(middleware.ContextClaims).(*jwt.StandardClaims); ok {
		if err := h.authService.Logout(c.Request().Context(), claims); err != nil {
			h.logger.Warn("Failed to revoke token after account deletion",
				zap.String("user_id", uid), zap.Error(err))
		}
	}

	h.logger.Info("Account deleted", zap.String("user_id", uid))
	return successResponse(c, "Account deleted", nil)
}

// Plans handles GET /api/plans: the purchasable subscription tiers.
func (h *UserHandler) Plans(c echo.Context) error {
	plans, err := h.repos.Plan.FindActive()
	if err != nil {
		h.logger.Error("Failed to list plans", zap.Error(err))
		return internalError(c)
	}
	return successResponse(c, "Successful", map[string]interface{}{
		"plans": plans,
	})
}

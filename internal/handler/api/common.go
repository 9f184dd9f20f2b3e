package api

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"

	"standy/internal/middleware"
	"standy/internal/models"
)

// Store interfaces cover exactly what the handlers call; the repository
// types satisfy them.
type UserStore interface {
	FindByID(id string) (*models.User, error)
	Update(id string, updates map[string]interface{}) error
	Delete(id string) error
}

type PaymentStore interface {
	Create(record *models.PaymentRecord) error
	FindByUserID(userID string, limit int) ([]models.PaymentRecord, error)
	FindBySubmissionID(submissionID string) (*models.PaymentRecord, error)
	DeleteByUserID(userID string) error
}

type PlanStore interface {
	FindByID(id string) (*models.Plan, error)
	FindActive() ([]models.Plan, error)
}

// Authenticator covers the auth service operations the profile handlers
// call; auth.Service satisfies it.
type Authenticator interface {
	CheckPassword(userID, password string) error
	Logout(ctx context.Context, claims *jwt.StandardClaims) error
}

// Repos bundles the stores needed by API handlers.
type Repos struct {
	User    UserStore
	Payment PaymentStore
	Plan    PlanStore
}

// Response helpers: every endpoint answers with the same envelope.
func successResponse(c echo.Context, msg string, obj interface{}) error {
	return c.JSON(http.StatusOK, models.APIResponse{
		Status: true,
		Msg:    msg,
		Obj:    obj,
	})
}

func errorResponse(c echo.Context, code int, msg string) error {
	return c.JSON(code, models.APIResponse{
		Status: false,
		Msg:    msg,
		Obj:    nil,
	})
}

// internalError hides the failure detail behind a generic message; the cause
// is logged by the caller.
func internalError(c echo.Context) error {
	return errorResponse(c, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}

// userID reads the authenticated user set by the JWT middleware.
func userID(c echo.Context) string {
	id, _ := c.Get(middleware.ContextUserID).(string)
	return id
}

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"standy/internal/card"
	"standy/internal/middleware"
	"standy/internal/models"
	"standy/internal/payment"
	"standy/internal/pkg/utils"
)

// PaymentHandler owns the card submission flow: local validation, buyer
// context assembly, idempotent gateway submission, history recording.
type PaymentHandler struct {
	repos   *Repos
	gateway payment.Gateway
	deduper middleware.SubmissionDeduper
	logger  *zap.Logger
	now     func() time.Time
}

func NewPaymentHandler(repos *Repos, gateway payment.Gateway, deduper middleware.SubmissionDeduper, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		repos:   repos,
		gateway: gateway,
		deduper: deduper,
		logger:  logger,
		now:     time.Now,
	}
}

// Charge handles POST /api/payment. Validation happens before anything
// leaves the process; an invalid form never reaches the gateway.
func (h *PaymentHandler) Charge(c echo.Context) error {
	var req models.ChargeFormRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "Invalid request body")
	}

	form := &card.Form{
		CardNumber: req.CardNumber,
		ExpiryDate: req.ExpiryDate,
		CVV:        req.CVV,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Name:       req.Name,
	}
	if err := card.Validate(form, h.now()); err != nil {
		return errorResponse(c, http.StatusBadRequest, err.Error())
	}

	user, err := h.repos.User.FindByID(userID(c))
	if err != nil {
		h.logger.Error("Failed to load user for payment", zap.Error(err))
		return internalError(c)
	}

	plan, err := h.repos.Plan.FindByID(req.PlanID)
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "Unknown plan")
	}
	if !plan.Active {
		return errorResponse(c, http.StatusBadRequest, "Plan is no longer available")
	}

	// One attempt per idempotency token. Replays (double click, second tab,
	// retry after timeout) are rejected instead of charging twice.
	submissionID := strings.TrimSpace(c.Request().Header.Get("Idempotency-Key"))
	if submissionID == "" {
		submissionID = utils.GenerateUUID()
	}
	duplicate, err := h.deduper.Seen(c.Request().Context(), submissionID)
	if err != nil {
		h.logger.Warn("Submission dedup check failed", zap.Error(err))
	} else if duplicate {
		// Echo the recorded outcome when the first attempt already finished.
		var obj interface{}
		if prior, err := h.repos.Payment.FindBySubmissionID(submissionID); err == nil {
			obj = map[string]interface{}{
				"status":        prior.Status,
				"message":       prior.Message,
				"submission_id": prior.SubmissionID,
			}
		}
		return c.JSON(http.StatusConflict, models.APIResponse{
			Status: false,
			Msg:    "This payment was already submitted",
			Obj:    obj,
		})
	}

	chargeReq := h.buildChargeRequest(form, req.Installment, user, plan, c.RealIP())

	result, err := h.gateway.Charge(c.Request().Context(), chargeReq)
	if err != nil {
		h.logger.Error("Gateway charge failed unexpectedly",
			zap.String("provider", h.gateway.Name()), zap.Error(err))
		return internalError(c)
	}

	record := &models.PaymentRecord{
		UserID:       user.ID,
		PlanID:       plan.ID,
		Provider:     h.gateway.Name(),
		SubmissionID: submissionID,
		Amount:       form.Amount,
		Currency:     form.Currency,
		CardLast4:    last4(chargeReq.Card.Number),
		Status:       result.Status,
		Message:      result.Message,
		CreatedAt:    h.now(),
	}
	if err := h.repos.Payment.Create(record); err != nil {
		h.logger.Error("Failed to record payment attempt",
			zap.String("submission_id", submissionID), zap.Error(err))
	}

	if !result.Success() {
		return errorResponse(c, http.StatusBadRequest, result.Message)
	}

	if err := h.activateSubscription(user.ID, plan); err != nil {
		// The charge went through; the subscription fix-up is an ops issue,
		// not a payment failure.
		h.logger.Error("Failed to activate subscription after payment",
			zap.String("user_id", user.ID), zap.String("plan_id", plan.ID), zap.Error(err))
	}

	return successResponse(c, "Payment processed successfully", map[string]interface{}{
		"status":        result.Status,
		"message":       result.Message,
		"submission_id": submissionID,
		"plan":          plan.ID,
	})
}

// buildChargeRequest maps the validated form plus the user's profile into
// the gateway-agnostic request. Buyer identity and IP come from the real
// profile and request, never placeholders.
func (h *PaymentHandler) buildChargeRequest(form *card.Form, installment int, user *models.User, plan *models.Plan, clientIP string) *payment.ChargeRequest {
	month, year := splitExpiry(form.ExpiryDate)
	contactName := strings.TrimSpace(user.Name + " " + user.Surname)
	addr := payment.Address{
		ContactName: contactName,
		City:        user.City,
		Country:     user.Country,
		Line:        user.Address,
		ZipCode:     user.ZipCode,
	}

	return &payment.ChargeRequest{
		Card: payment.Card{
			HolderName: form.Name,
			Number:     card.DigitsOnly(form.CardNumber),
			Month:      month,
			Year:       year,
			CVV:        form.CVV,
		},
		Amount:      form.Amount,
		Currency:    form.Currency,
		Installment: installment,
		Buyer: payment.Buyer{
			ID:               user.ID,
			Name:             user.Name,
			Surname:          user.Surname,
			Phone:            user.Phone,
			Email:            user.Email,
			IdentityNumber:   user.IdentityNumber,
			Address:          user.Address,
			City:             user.City,
			Country:          user.Country,
			ZipCode:          user.ZipCode,
			IP:               clientIP,
			Login:            user.Login,
			RegistrationDate: user.RegisteredAt.Format(time.RFC3339),
			LastLoginDate:    user.LastLoginAt.Format(time.RFC3339),
		},
		Shipping: addr,
		Billing:  addr,
		Basket: []payment.BasketItem{
			{
				ID:       plan.ID,
				Name:     plan.Name,
				Category: plan.Category,
				ItemType: plan.ItemType,
				Price:    form.Amount,
			},
		},
	}
}

func (h *PaymentHandler) activateSubscription(uid string, plan *models.Plan) error {
	exp := h.now().AddDate(0, 0, plan.DurationDays)
	return h.repos.User.Update(uid, map[string]interface{}{
		"subscription":     plan.ID,
		"subscription_exp": exp,
	})
}

// History handles GET /api/payments: the caller's own submission history.
func (h *PaymentHandler) History(c echo.Context) error {
	records, err := h.repos.Payment.FindByUserID(userID(c), 50)
	if err != nil {
		h.logger.Error("Failed to list payment history", zap.Error(err))
		return internalError(c)
	}
	return successResponse(c, "Successful", map[string]interface{}{
		"payments": records,
	})
}

func splitExpiry(expiry string) (month, year string) {
	parts := strings.SplitN(expiry, "/", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return parts[0], parts[1]
}

func last4(digits string) string {
	if len(digits) < 4 {
		return ""
	}
	return digits[len(digits)-4:]
}

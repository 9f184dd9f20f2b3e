package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"standy/internal/middleware"
	"standy/internal/models"
	"standy/internal/payment"
)

// --- fakes ---

type fakeGateway struct {
	calls   int
	result  *payment.Result
	lastReq *payment.ChargeRequest
}

func (g *fakeGateway) Name() string { return "fake" }

func (g *fakeGateway) Charge(_ context.Context, req *payment.ChargeRequest) (*payment.Result, error) {
	g.calls++
	g.lastReq = req
	return g.result, nil
}

type fakeUserStore struct {
	user    *models.User
	updates map[string]interface{}
	deleted bool
}

func (s *fakeUserStore) FindByID(id string) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	u := *s.user
	return &u, nil
}

func (s *fakeUserStore) Update(id string, updates map[string]interface{}) error {
	s.updates = updates
	return nil
}

func (s *fakeUserStore) Delete(id string) error {
	s.deleted = true
	return nil
}

type fakePaymentStore struct {
	records []*models.PaymentRecord
}

func (s *fakePaymentStore) Create(record *models.PaymentRecord) error {
	s.records = append(s.records, record)
	return nil
}

func (s *fakePaymentStore) FindBySubmissionID(submissionID string) (*models.PaymentRecord, error) {
	for _, r := range s.records {
		if r.SubmissionID == submissionID {
			rec := *r
			return &rec, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakePaymentStore) FindByUserID(userID string, limit int) ([]models.PaymentRecord, error) {
	var out []models.PaymentRecord
	for _, r := range s.records {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *fakePaymentStore) DeleteByUserID(userID string) error {
	s.records = nil
	return nil
}

type fakePlanStore struct {
	plans map[string]*models.Plan
}

func (s *fakePlanStore) FindByID(id string) (*models.Plan, error) {
	p, ok := s.plans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (s *fakePlanStore) FindActive() ([]models.Plan, error) {
	var out []models.Plan
	for _, p := range s.plans {
		if p.Active {
			out = append(out, *p)
		}
	}
	return out, nil
}

type memDeduper struct {
	seen map[string]bool
}

func (d *memDeduper) Seen(_ context.Context, token string) (bool, error) {
	if d.seen[token] {
		return true, nil
	}
	d.seen[token] = true
	return false, nil
}

// --- fixture ---

type paymentFixture struct {
	handler  *PaymentHandler
	gateway  *fakeGateway
	users    *fakeUserStore
	payments *fakePaymentStore
}

func newPaymentFixture(result *payment.Result) *paymentFixture {
	gw := &fakeGateway{result: result}
	users := &fakeUserStore{user: &models.User{
		ID:             "u1",
		Email:          "jane@example.com",
		Login:          "janedoe",
		Name:           "Jane",
		Surname:        "Doe",
		Phone:          "+905350000000",
		Address:        "Bagdat Cad. 1",
		City:           "Istanbul",
		Country:        "Turkey",
		ZipCode:        "34732",
		IdentityNumber: "11111111110",
		RegisteredAt:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		LastLoginAt:    time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC),
	}}
	payments := &fakePaymentStore{}
	plans := &fakePlanStore{plans: map[string]*models.Plan{
		"standy-premium": {
			ID: "standy-premium", Name: "Standy Premium", Category: "Subscription",
			ItemType: "VIRTUAL", Price: "100.00", Currency: "TRY",
			DurationDays: 30, Active: true,
		},
		"standy-legacy": {
			ID: "standy-legacy", Name: "Standy Legacy", Category: "Subscription",
			ItemType: "VIRTUAL", Price: "50.00", Currency: "TRY",
			DurationDays: 30, Active: false,
		},
	}}

	h := NewPaymentHandler(
		&Repos{User: users, Payment: payments, Plan: plans},
		gw,
		&memDeduper{seen: map[string]bool{}},
		zap.NewNop(),
	)
	h.now = func() time.Time {
		return time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)
	}
	return &paymentFixture{handler: h, gateway: gw, users: users, payments: payments}
}

func chargeBody(overrides map[string]interface{}) string {
	body := map[string]interface{}{
		"cardNumber": "4508 0345 0803 4509",
		"expiryDate": "12/30",
		"cvv":        "123",
		"amount":     "100.00",
		"currency":   "TRY",
		"name":       "Jane Doe",
		"plan_id":    "standy-premium",
	}
	for k, v := range overrides {
		body[k] = v
	}
	b, _ := json.Marshal(body)
	return string(b)
}

func doCharge(t *testing.T, h *PaymentHandler, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/payment", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.ContextUserID, "u1")
	require.NoError(t, h.Charge(c))
	return rec
}

// --- scenarios ---

func TestCharge_Success(t *testing.T) {
	fix := newPaymentFixture(&payment.Result{Status: payment.StatusSuccess, Message: "Approved"})

	rec := doCharge(t, fix.handler, chargeBody(nil), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, fix.gateway.calls)

	// The gateway saw normalized card data and real buyer context.
	req := fix.gateway.lastReq
	require.NotNil(t, req)
	assert.Equal(t, "4508034508034509", req.Card.Number)
	assert.Equal(t, "12", req.Card.Month)
	assert.Equal(t, "30", req.Card.Year)
	assert.Equal(t, "janedoe", req.Buyer.Login)
	assert.Equal(t, "11111111110", req.Buyer.IdentityNumber)
	require.Len(t, req.Basket, 1)
	assert.Equal(t, "Standy Premium", req.Basket[0].Name)

	// History recorded with masked card only.
	require.Len(t, fix.payments.records, 1)
	assert.Equal(t, "4509", fix.payments.records[0].CardLast4)
	assert.Equal(t, payment.StatusSuccess, fix.payments.records[0].Status)

	// Subscription activated for 30 days.
	require.NotNil(t, fix.users.updates)
	assert.Equal(t, "standy-premium", fix.users.updates["subscription"])
}

func TestCharge_ExpiredCard_NoOutboundCall(t *testing.T) {
	fix := newPaymentFixture(&payment.Result{Status: payment.StatusSuccess})

	rec := doCharge(t, fix.handler, chargeBody(map[string]interface{}{
		"expiryDate": "12/24",
	}), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, fix.gateway.calls, "validation failure must never reach the gateway")
	assert.Empty(t, fix.payments.records)

	var resp models.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid or expired card date", resp.Msg)
}

func TestCharge_ValidationOrder(t *testing.T) {
	fix := newPaymentFixture(&payment.Result{Status: payment.StatusSuccess})

	// Bad card number wins over bad CVV.
	rec := doCharge(t, fix.handler, chargeBody(map[string]interface{}{
		"cardNumber": "1234",
		"cvv":        "1",
	}), nil)

	var resp models.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid card number", resp.Msg)
	assert.Equal(t, 0, fix.gateway.calls)
}

func TestCharge_Declined(t *testing.T) {
	fix := newPaymentFixture(&payment.Result{Status: payment.StatusError, Message: "Declined"})

	rec := doCharge(t, fix.handler, chargeBody(nil), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, fix.gateway.calls)

	// Failures are recorded too, and the subscription stays untouched.
	require.Len(t, fix.payments.records, 1)
	assert.Equal(t, payment.StatusError, fix.payments.records[0].Status)
	assert.Equal(t, "Declined", fix.payments.records[0].Message)
	assert.Nil(t, fix.users.updates)
}

func TestCharge_DuplicateSubmission(t *testing.T) {
	fix := newPaymentFixture(&payment.Result{Status: payment.StatusSuccess, Message: "Approved"})
	headers := map[string]string{"Idempotency-Key": "idem-123"}

	rec := doCharge(t, fix.handler, chargeBody(nil), headers)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doCharge(t, fix.handler, chargeBody(nil), headers)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 1, fix.gateway.calls, "replayed token must not charge twice")

	// The reply carries the first attempt's recorded outcome.
	var resp models.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	prior, ok := resp.Obj.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, payment.StatusSuccess, prior["status"])
	assert.Equal(t, "idem-123", prior["submission_id"])
}

func TestCharge_UnknownPlan(t *testing.T) {
	fix := newPaymentFixture(&payment.Result{Status: payment.StatusSuccess})

	rec := doCharge(t, fix.handler, chargeBody(map[string]interface{}{
		"plan_id": "nope",
	}), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, fix.gateway.calls)
}

func TestCharge_InactivePlan(t *testing.T) {
	fix := newPaymentFixture(&payment.Result{Status: payment.StatusSuccess})

	rec := doCharge(t, fix.handler, chargeBody(map[string]interface{}{
		"plan_id": "standy-legacy",
	}), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, fix.gateway.calls)
}

func TestHistory(t *testing.T) {
	fix := newPaymentFixture(&payment.Result{Status: payment.StatusSuccess, Message: "Approved"})
	doCharge(t, fix.handler, chargeBody(nil), nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/payments", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.ContextUserID, "u1")
	require.NoError(t, fix.handler.History(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "4509"))
	assert.False(t, strings.Contains(rec.Body.String(), "4508034508034509"),
		"full PAN must never appear in history")
}

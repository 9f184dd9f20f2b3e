package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"

	"standy/internal/pkg/httpclient"
)

// SipayConfig carries the Sipay merchant credentials and endpoints. All of it
// comes from the environment; nothing is compiled in.
type SipayConfig struct {
	MerchantKey string
	AppKey      string
	AppSecret   string
	MerchantID  string
	URL         string
	ReturnURL   string
	CancelURL   string
}

// SipayGateway implements the Gateway interface for Sipay card provisioning.
// Sipay takes a flat multipart form and reports success through a
// provider-specific status field.
type SipayGateway struct {
	cfg    SipayConfig
	client *httpclient.Client
	logger *zap.Logger
	now    func() time.Time
}

func NewSipayGateway(cfg SipayConfig, logger *zap.Logger) *SipayGateway {
	return &SipayGateway{
		cfg:    cfg,
		client: httpclient.New().WithTimeout(30 * time.Second),
		logger: logger,
		now:    time.Now,
	}
}

func (s *SipayGateway) Name() string {
	return "sipay"
}

// WithClock overrides the timestamp source. Tests use it to pin invoice_id
// and timestamp.
func (s *SipayGateway) WithClock(now func() time.Time) *SipayGateway {
	s.now = now
	return s
}

// BuildForm maps a ChargeRequest onto Sipay's flat field set. It never
// mutates req; with a fixed now the output is identical across calls,
// invoice_id included.
func (s *SipayGateway) BuildForm(req *ChargeRequest, now time.Time) map[string]string {
	installment := req.Installment
	if installment < 1 {
		installment = 1
	}
	return map[string]string{
		"merchant_key":     s.cfg.MerchantKey,
		"app_key":          s.cfg.AppKey,
		"app_secret":       s.cfg.AppSecret,
		"merchant_id":      s.cfg.MerchantID,
		"invoice_id":       "INV" + strconv.FormatInt(now.UnixMilli(), 10),
		"total":            minorUnits(req.Amount),
		"currency_code":    req.Currency,
		"cc_holder_name":   req.Card.HolderName,
		"cc_no":            req.Card.Number,
		"expiry_month":     req.Card.Month,
		"expiry_year":      "20" + req.Card.Year,
		"cvv":              req.Card.CVV,
		"installment":      strconv.Itoa(installment),
		"payment_method":   "1",
		"transaction_type": "Auth",
		"timestamp":        now.Format("2006-01-02 15:04:05"),
		"user_login":       req.Buyer.Login,
		"return_url":       s.cfg.ReturnURL,
		"cancel_url":       s.cfg.CancelURL,
	}
}

// minorUnits converts a decimal amount string to an integer count of minor
// currency units (amount x 100, rounded).
func minorUnits(amount string) string {
	v, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return "0"
	}
	return strconv.FormatInt(int64(math.Round(v*100)), 10)
}

// Charge submits the form once and folds Sipay's response into the canonical
// Result. No retry: a resubmission is a new, independent submission.
func (s *SipayGateway) Charge(ctx context.Context, req *ChargeRequest) (*Result, error) {
	form := s.BuildForm(req, s.now())

	s.logger.Info("Submitting payment to Sipay",
		zap.String("invoice_id", form["invoice_id"]),
		zap.String("total", form["total"]),
		zap.String("currency", form["currency_code"]),
		zap.String("cc_no", MaskCardNumber(form["cc_no"])),
		zap.String("cvv", "***"),
		zap.String("user_login", form["user_login"]))

	resp, err := s.client.Request().
		SetContext(ctx).
		SetMultipartFormData(form).
		Post(s.cfg.URL)
	if err != nil {
		s.logger.Error("Sipay request failed", zap.Error(err))
		return errResult("", nil), nil
	}

	body := resp.Body()
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		s.logger.Error("Sipay returned non-JSON response",
			zap.Int("http_status", resp.StatusCode()))
		return errResult("", body), nil
	}

	status, _ := payload["status"].(string)
	sipayStatus := stringField(payload, "sipay_status")

	if resp.IsSuccess() && (status == StatusSuccess || sipayStatus == "1") {
		message, _ := payload["status_description"].(string)
		if message == "" {
			message = "Payment processed successfully"
		}
		return &Result{Status: StatusSuccess, Message: message, Raw: body}, nil
	}

	message, _ := payload["error"].(string)
	if message == "" {
		message, _ = payload["status_description"].(string)
	}
	s.logger.Warn("Sipay rejected payment",
		zap.Int("http_status", resp.StatusCode()),
		zap.String("sipay_status", sipayStatus))
	return errResult(message, body), nil
}

// stringField reads a field that Sipay serializes inconsistently as either a
// string or a number.
func stringField(payload map[string]interface{}, key string) string {
	switch v := payload[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	}
	return ""
}

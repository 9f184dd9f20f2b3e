package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"standy/internal/pkg/httpclient"
)

const iyzicoAuthPath = "/payment/auth"

// IyzicoConfig carries the iyzico API credentials and base URI.
type IyzicoConfig struct {
	APIKey    string
	SecretKey string
	BaseURI   string
}

// Wire shapes for iyzico's payment/auth call. Prices are fixed two-decimal
// strings, not minor units; that difference from Sipay is deliberate and
// must not be "fixed".
type iyzicoCard struct {
	CardHolderName string `json:"cardHolderName"`
	CardNumber     string `json:"cardNumber"`
	ExpireMonth    string `json:"expireMonth"`
	ExpireYear     string `json:"expireYear"`
	CVC            string `json:"cvc"`
	RegisterCard   int    `json:"registerCard"`
}

type iyzicoBuyer struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Surname             string `json:"surname"`
	GSMNumber           string `json:"gsmNumber,omitempty"`
	Email               string `json:"email"`
	IdentityNumber      string `json:"identityNumber"`
	LastLoginDate       string `json:"lastLoginDate,omitempty"`
	RegistrationDate    string `json:"registrationDate,omitempty"`
	RegistrationAddress string `json:"registrationAddress"`
	IP                  string `json:"ip"`
	City                string `json:"city"`
	Country             string `json:"country"`
	ZipCode             string `json:"zipCode,omitempty"`
}

type iyzicoAddress struct {
	ContactName string `json:"contactName"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Address     string `json:"address"`
	ZipCode     string `json:"zipCode,omitempty"`
}

type iyzicoBasketItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category1 string `json:"category1"`
	ItemType  string `json:"itemType"`
	Price     string `json:"price"`
}

type iyzicoPaymentRequest struct {
	Locale          string             `json:"locale"`
	ConversationID  string             `json:"conversationId"`
	Price           string             `json:"price"`
	PaidPrice       string             `json:"paidPrice"`
	Currency        string             `json:"currency"`
	Installments    int                `json:"installments"`
	BasketID        string             `json:"basketId"`
	PaymentChannel  string             `json:"paymentChannel"`
	PaymentGroup    string             `json:"paymentGroup"`
	PaymentCard     iyzicoCard         `json:"paymentCard"`
	Buyer           iyzicoBuyer        `json:"buyer"`
	ShippingAddress iyzicoAddress      `json:"shippingAddress"`
	BillingAddress  iyzicoAddress      `json:"billingAddress"`
	BasketItems     []iyzicoBasketItem `json:"basketItems"`
}

// IyzicoGateway implements the Gateway interface for iyzico's non-3DS
// payment auth call.
type IyzicoGateway struct {
	cfg       IyzicoConfig
	client    *httpclient.Client
	logger    *zap.Logger
	now       func() time.Time
	randomKey func() string
}

func NewIyzicoGateway(cfg IyzicoConfig, logger *zap.Logger) *IyzicoGateway {
	return &IyzicoGateway{
		cfg:    cfg,
		client: httpclient.New().WithTimeout(30 * time.Second),
		logger: logger,
		now:    time.Now,
		randomKey: func() string {
			return uuid.New().String()
		},
	}
}

func (g *IyzicoGateway) Name() string {
	return "iyzico"
}

// WithClock overrides the timestamp source used for conversation/basket IDs.
func (g *IyzicoGateway) WithClock(now func() time.Time) *IyzicoGateway {
	g.now = now
	return g
}

// BuildRequest maps a ChargeRequest onto iyzico's nested payment shape.
// Pure: req is not mutated and a fixed now yields byte-identical JSON.
func (g *IyzicoGateway) BuildRequest(req *ChargeRequest, now time.Time) *iyzicoPaymentRequest {
	millis := strconv.FormatInt(now.UnixMilli(), 10)
	price := fixedPrice(req.Amount)
	installments := req.Installment
	if installments < 1 {
		installments = 1
	}

	items := make([]iyzicoBasketItem, 0, len(req.Basket))
	for _, it := range req.Basket {
		items = append(items, iyzicoBasketItem{
			ID:        it.ID,
			Name:      it.Name,
			Category1: it.Category,
			ItemType:  it.ItemType,
			Price:     fixedPrice(it.Price),
		})
	}

	month := req.Card.Month
	if len(month) == 1 {
		month = "0" + month
	}

	return &iyzicoPaymentRequest{
		Locale:         "TR",
		ConversationID: millis,
		Price:          price,
		PaidPrice:      price,
		Currency:       req.Currency,
		Installments:   installments,
		BasketID:       "B" + millis,
		PaymentChannel: "WEB",
		PaymentGroup:   "PRODUCT",
		PaymentCard: iyzicoCard{
			CardHolderName: req.Card.HolderName,
			CardNumber:     req.Card.Number,
			ExpireMonth:    month,
			ExpireYear:     "20" + req.Card.Year,
			CVC:            req.Card.CVV,
			RegisterCard:   0,
		},
		Buyer: iyzicoBuyer{
			ID:                  req.Buyer.ID,
			Name:                req.Buyer.Name,
			Surname:             req.Buyer.Surname,
			GSMNumber:           req.Buyer.Phone,
			Email:               req.Buyer.Email,
			IdentityNumber:      req.Buyer.IdentityNumber,
			LastLoginDate:       req.Buyer.LastLoginDate,
			RegistrationDate:    req.Buyer.RegistrationDate,
			RegistrationAddress: req.Buyer.Address,
			IP:                  req.Buyer.IP,
			City:                req.Buyer.City,
			Country:             req.Buyer.Country,
			ZipCode:             req.Buyer.ZipCode,
		},
		ShippingAddress: iyzicoAddress{
			ContactName: req.Shipping.ContactName,
			City:        req.Shipping.City,
			Country:     req.Shipping.Country,
			Address:     req.Shipping.Line,
			ZipCode:     req.Shipping.ZipCode,
		},
		BillingAddress: iyzicoAddress{
			ContactName: req.Billing.ContactName,
			City:        req.Billing.City,
			Country:     req.Billing.Country,
			Address:     req.Billing.Line,
			ZipCode:     req.Billing.ZipCode,
		},
		BasketItems: items,
	}
}

// fixedPrice renders a decimal amount with exactly two decimals.
func fixedPrice(amount string) string {
	v, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return "0.00"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// authorization computes iyzico's IYZWSv2 header: an HMAC-SHA256 over
// randomKey + request path + body, keyed with the secret key.
func (g *IyzicoGateway) authorization(randomKey string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(g.cfg.SecretKey))
	mac.Write([]byte(randomKey))
	mac.Write([]byte(iyzicoAuthPath))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	auth := "apiKey:" + g.cfg.APIKey +
		"&randomKey:" + randomKey +
		"&signature:" + signature
	return "IYZWSv2 " + base64.StdEncoding.EncodeToString([]byte(auth))
}

// Charge submits the payment once and folds iyzico's result object into the
// canonical Result.
func (g *IyzicoGateway) Charge(ctx context.Context, req *ChargeRequest) (*Result, error) {
	wire := g.BuildRequest(req, g.now())
	body, err := json.Marshal(wire)
	if err != nil {
		return nil, err
	}

	g.logger.Info("Submitting payment to iyzico",
		zap.String("conversation_id", wire.ConversationID),
		zap.String("basket_id", wire.BasketID),
		zap.String("price", wire.Price),
		zap.String("currency", wire.Currency),
		zap.String("card_number", MaskCardNumber(wire.PaymentCard.CardNumber)),
		zap.String("cvc", "***"))

	randomKey := g.randomKey()
	resp, err := g.client.Request().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", g.authorization(randomKey, body)).
		SetHeader("x-iyzi-rnd", randomKey).
		SetBody(body).
		Post(g.cfg.BaseURI + iyzicoAuthPath)
	if err != nil {
		g.logger.Error("iyzico request failed", zap.Error(err))
		return errResult("", nil), nil
	}

	raw := resp.Body()
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		g.logger.Error("iyzico returned non-JSON response",
			zap.Int("http_status", resp.StatusCode()))
		return errResult("", raw), nil
	}

	status, _ := payload["status"].(string)
	if resp.IsSuccess() && status == StatusSuccess {
		if paymentID := stringField(payload, "paymentId"); paymentID != "" {
			g.logger.Info("iyzico payment authorized", zap.String("payment_id", paymentID))
		}
		return &Result{
			Status:  StatusSuccess,
			Message: "Payment processed successfully",
			Raw:     raw,
		}, nil
	}

	message, _ := payload["errorMessage"].(string)
	if message == "" {
		message = status
	}
	g.logger.Warn("iyzico rejected payment",
		zap.Int("http_status", resp.StatusCode()),
		zap.String("error_code", stringField(payload, "errorCode")))
	return errResult(message, raw), nil
}

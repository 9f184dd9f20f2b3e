package payment

import (
	"context"
	"encoding/json"
	"strings"
)

// Canonical result statuses. Every gateway response, whatever its shape,
// collapses into one of these.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the canonical outcome of one submission attempt. Raw keeps the
// provider payload for server-side logging and is never shown to the user.
type Result struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Raw     json.RawMessage `json:"-"`
}

func (r *Result) Success() bool {
	return r.Status == StatusSuccess
}

// Card holds the already-normalized card fields: Number is digits only,
// Month and Year are the raw two-digit strings from the MM/YY input.
type Card struct {
	HolderName string
	Number     string
	Month      string
	Year       string
	CVV        string
}

// Buyer carries the cardholder context sourced from the authenticated user's
// profile and the inbound request, never from constants.
type Buyer struct {
	ID               string
	Name             string
	Surname          string
	Phone            string
	Email            string
	IdentityNumber   string
	Address          string
	City             string
	Country          string
	ZipCode          string
	IP               string
	Login            string
	RegistrationDate string
	LastLoginDate    string
}

// Address is a shipping or billing address block.
type Address struct {
	ContactName string
	City        string
	Country     string
	Line        string
	ZipCode     string
}

// BasketItem is one purchasable line of the submission.
type BasketItem struct {
	ID       string
	Name     string
	Category string
	ItemType string // PHYSICAL or VIRTUAL
	Price    string // decimal string
}

// ChargeRequest is the gateway-agnostic input to a submission. Builders map
// it to each provider's wire shape without mutating it.
type ChargeRequest struct {
	Card        Card
	Amount      string
	Currency    string
	Installment int
	Buyer       Buyer
	Shipping    Address
	Billing     Address
	Basket      []BasketItem
}

// Gateway is implemented by each payment provider integration. Charge
// performs exactly one outbound call and never retries; transport and
// provider-reported failures both come back as canonical error Results, so a
// non-nil error means the request could not even be constructed.
type Gateway interface {
	Name() string
	Charge(ctx context.Context, req *ChargeRequest) (*Result, error)
}

// MaskCardNumber keeps only the last four digits for logging.
func MaskCardNumber(number string) string {
	if len(number) <= 4 {
		return "****"
	}
	return "****" + number[len(number)-4:]
}

// errResult builds a canonical error Result, falling back to a generic
// message when the provider gave nothing usable.
func errResult(message string, raw []byte) *Result {
	message = strings.TrimSpace(message)
	if message == "" {
		message = "Payment failed. Please try again."
	}
	return &Result{Status: StatusError, Message: message, Raw: raw}
}

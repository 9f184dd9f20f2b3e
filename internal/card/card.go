package card

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Validation messages are fixed strings: the front end shows them verbatim
// and the check order below determines which one wins.
var (
	ErrCardNumber = errors.New("Invalid card number")
	ErrExpiry     = errors.New("Invalid or expired card date")
	ErrCVV        = errors.New("Invalid CVV (must be 3 digits)")
	ErrAmount     = errors.New("Amount must be greater than 0")
	ErrHolderName = errors.New("Please enter a valid cardholder name")
)

var cvvPattern = regexp.MustCompile(`^\d{3}$`)

// Form carries the raw card-entry fields exactly as the client submits them.
// CardNumber may be display-formatted ("4508 0345 0803 4509"), ExpiryDate is
// "MM/YY".
type Form struct {
	CardNumber string `json:"cardNumber"`
	ExpiryDate string `json:"expiryDate"`
	CVV        string `json:"cvv"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	Name       string `json:"name"`
}

// DigitsOnly strips every non-digit rune.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCardNumber groups the digits of input into runs of 4 separated by a
// single space. The grouped string is for display; DigitsOnly of it is what
// goes on the wire.
func FormatCardNumber(input string) string {
	digits := DigitsOnly(input)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatExpiry inserts "/" after the second digit and caps the result at
// 5 characters (MM/YY).
func FormatExpiry(input string) string {
	digits := DigitsOnly(input)
	if len(digits) <= 2 {
		return digits
	}
	if len(digits) > 4 {
		digits = digits[:4]
	}
	return digits[:2] + "/" + digits[2:]
}

// ValidCardNumber reports whether digits is a 16-digit string passing the
// Luhn mod-10 check.
func ValidCardNumber(digits string) bool {
	if len(digits) != 16 {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// ValidExpiry reports whether month/year (two-digit year) name a month that
// is not already past, compared against now.
func ValidExpiry(month, year int, now time.Time) bool {
	if month < 1 || month > 12 {
		return false
	}
	curYear := now.Year() % 100
	curMonth := int(now.Month())
	if year < curYear {
		return false
	}
	if year == curYear && month < curMonth {
		return false
	}
	return true
}

// ValidCVV accepts exactly three digits.
func ValidCVV(cvv string) bool {
	return cvvPattern.MatchString(cvv)
}

// ValidAmount accepts decimal strings strictly greater than zero.
func ValidAmount(amount string) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	return err == nil && v > 0
}

// ValidHolderName requires at least 3 non-space characters at the edges.
func ValidHolderName(name string) bool {
	return len(strings.TrimSpace(name)) >= 3
}

// splitExpiry parses "MM/YY" into its numeric parts. ok is false when either
// part is missing or non-numeric, or when the year is not two-digit (a
// four-digit year would otherwise reach the builders as "20" + "2030").
func splitExpiry(expiry string) (month, year int, ok bool) {
	parts := strings.SplitN(expiry, "/", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	y, err := strconv.Atoi(parts[1])
	if err != nil || y < 0 || y > 99 {
		return 0, 0, false
	}
	return m, y, true
}

// Validate runs every rule against the form and returns the first failure.
// The order is fixed (card number, expiry, CVV, amount, holder name) so the
// surfaced message is deterministic.
func Validate(f *Form, now time.Time) error {
	if !ValidCardNumber(DigitsOnly(f.CardNumber)) {
		return ErrCardNumber
	}
	month, year, ok := splitExpiry(f.ExpiryDate)
	if !ok || !ValidExpiry(month, year, now) {
		return ErrExpiry
	}
	if !ValidCVV(f.CVV) {
		return ErrCVV
	}
	if !ValidAmount(f.Amount) {
		return ErrAmount
	}
	if !ValidHolderName(f.Name) {
		return ErrHolderName
	}
	return nil
}

package card

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCardNumber(t *testing.T) {
	assert.Equal(t, "4508 0345 0803 4509", FormatCardNumber("4508034508034509"))
	assert.Equal(t, "4508 0345 0803 4509", FormatCardNumber("4508-0345-0803-4509"))
	assert.Equal(t, "4508 03", FormatCardNumber("450803"))
	assert.Equal(t, "", FormatCardNumber("abc"))
}

func TestFormatExpiry(t *testing.T) {
	assert.Equal(t, "12/25", FormatExpiry("1225"))
	assert.Equal(t, "12/25", FormatExpiry("12/25"))
	assert.Equal(t, "12", FormatExpiry("12"))
	assert.Equal(t, "1", FormatExpiry("1"))
	// Extra digits beyond MM/YY are dropped.
	assert.Equal(t, "12/25", FormatExpiry("122567"))
}

func TestValidCardNumber(t *testing.T) {
	assert.True(t, ValidCardNumber("4532015112830366"))
	assert.False(t, ValidCardNumber("4532015112830367"))
	assert.True(t, ValidCardNumber("4508034508034509"))
	assert.False(t, ValidCardNumber("450803450803450"))   // 15 digits
	assert.False(t, ValidCardNumber("45080345080345091")) // 17 digits
	assert.False(t, ValidCardNumber("4508a34508034509"))
	assert.False(t, ValidCardNumber(""))
}

func TestValidExpiry(t *testing.T) {
	now := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)

	assert.False(t, ValidExpiry(13, 30, now))
	assert.False(t, ValidExpiry(0, 30, now))
	assert.False(t, ValidExpiry(12, 24, now)) // expired last month
	assert.True(t, ValidExpiry(1, 25, now))   // current month is still valid
	assert.True(t, ValidExpiry(12, 25, now))
	assert.True(t, ValidExpiry(6, 30, now))
}

func TestValidCVV(t *testing.T) {
	assert.True(t, ValidCVV("123"))
	assert.True(t, ValidCVV("000"))
	assert.False(t, ValidCVV("12"))
	assert.False(t, ValidCVV("1234"))
	assert.False(t, ValidCVV("12a"))
}

func TestValidAmount(t *testing.T) {
	assert.True(t, ValidAmount("100.00"))
	assert.True(t, ValidAmount("0.01"))
	assert.False(t, ValidAmount("0"))
	assert.False(t, ValidAmount("-5"))
	assert.False(t, ValidAmount("abc"))
	assert.False(t, ValidAmount(""))
}

func TestValidHolderName(t *testing.T) {
	assert.True(t, ValidHolderName("Jane Doe"))
	assert.False(t, ValidHolderName("Jo"))
	assert.False(t, ValidHolderName("   a   "))
}

func validForm() *Form {
	return &Form{
		CardNumber: "4508 0345 0803 4509",
		ExpiryDate: "12/30",
		CVV:        "123",
		Amount:     "100.00",
		Currency:   "TRY",
		Name:       "Jane Doe",
	}
}

func TestValidate_OK(t *testing.T) {
	now := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, Validate(validForm(), now))
}

// The rules short-circuit in a fixed order; the earliest failing field owns
// the message even when several fields are bad.
func TestValidate_Order(t *testing.T) {
	now := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)

	f := validForm()
	f.CardNumber = "1111 1111 1111 1111"
	f.CVV = "1"
	assert.ErrorIs(t, Validate(f, now), ErrCardNumber)

	f = validForm()
	f.ExpiryDate = "12/24"
	f.Amount = "0"
	assert.ErrorIs(t, Validate(f, now), ErrExpiry)

	f = validForm()
	f.ExpiryDate = "1230" // missing separator
	assert.ErrorIs(t, Validate(f, now), ErrExpiry)

	// A four-digit year bypassing the input formatter is still rejected.
	f = validForm()
	f.ExpiryDate = "12/2030"
	assert.ErrorIs(t, Validate(f, now), ErrExpiry)

	f = validForm()
	f.CVV = "12"
	f.Name = ""
	assert.ErrorIs(t, Validate(f, now), ErrCVV)

	f = validForm()
	f.Amount = "-1"
	assert.ErrorIs(t, Validate(f, now), ErrAmount)

	f = validForm()
	f.Name = "JD"
	assert.ErrorIs(t, Validate(f, now), ErrHolderName)
}

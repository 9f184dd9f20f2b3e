package models

// APIResponse is the standard envelope for every API endpoint.
type APIResponse struct {
	Status bool        `json:"status"`
	Msg    string      `json:"msg"`
	Obj    interface{} `json:"obj"`
}

// --- Auth payloads ---

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Login    string `json:"login"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type DeleteAccountRequest struct {
	Password string `json:"password"`
}

// --- Profile payloads ---

// ProfileUpdateRequest carries the editable profile fields. Pointers
// distinguish "not sent" from "clear this field".
type ProfileUpdateRequest struct {
	Name           *string `json:"name,omitempty"`
	Surname        *string `json:"surname,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Address        *string `json:"address,omitempty"`
	City           *string `json:"city,omitempty"`
	Country        *string `json:"country,omitempty"`
	ZipCode        *string `json:"zip_code,omitempty"`
	IdentityNumber *string `json:"identity_number,omitempty"`
}

// --- Payment payloads ---

// ChargeFormRequest is the inbound card form: the raw fields the client
// submits, plus the plan being purchased.
type ChargeFormRequest struct {
	CardNumber  string `json:"cardNumber"`
	ExpiryDate  string `json:"expiryDate"` // MM/YY
	CVV         string `json:"cvv"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Name        string `json:"name"`
	PlanID      string `json:"plan_id"`
	Installment int    `json:"installment,omitempty"`
}

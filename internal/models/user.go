package models

import "time"

// User maps to the `users` table. One row per account; the profile fields
// double as the default buyer context for payment submissions.
type User struct {
	ID           string `gorm:"column:id;primaryKey;size:36" json:"id"`
	Email        string `gorm:"column:email;size:255;uniqueIndex" json:"email"`
	PasswordHash string `gorm:"column:password_hash;size:100" json:"-"`
	Login        string `gorm:"column:login;size:100;uniqueIndex" json:"login"`

	Name           string `gorm:"column:name;size:100" json:"name"`
	Surname        string `gorm:"column:surname;size:100" json:"surname"`
	Phone          string `gorm:"column:phone;size:30" json:"phone"`
	Address        string `gorm:"column:address;size:500" json:"address"`
	City           string `gorm:"column:city;size:100" json:"city"`
	Country        string `gorm:"column:country;size:100" json:"country"`
	ZipCode        string `gorm:"column:zip_code;size:20" json:"zip_code"`
	IdentityNumber string `gorm:"column:identity_number;size:30" json:"identity_number"`

	Verified      bool       `gorm:"column:verified;default:false" json:"verified"`
	VerifyToken   string     `gorm:"column:verify_token;size:64" json:"-"`
	ResetToken    string     `gorm:"column:reset_token;size:64" json:"-"`
	ResetTokenExp *time.Time `gorm:"column:reset_token_exp" json:"-"`

	Subscription    string     `gorm:"column:subscription;size:100" json:"subscription"`
	SubscriptionExp *time.Time `gorm:"column:subscription_exp" json:"subscription_exp"`

	RegisteredAt time.Time `gorm:"column:registered_at" json:"registered_at"`
	LastLoginAt  time.Time `gorm:"column:last_login_at" json:"last_login_at"`
}

func (User) TableName() string {
	return "users"
}

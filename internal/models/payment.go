package models

import "time"

// PaymentRecord maps to the `payment_records` table: one row per submission
// attempt, success or failure. Only the last four card digits are ever
// stored; the full PAN and CVV never touch the database.
type PaymentRecord struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID       string    `gorm:"column:user_id;size:36;index" json:"user_id"`
	PlanID       string    `gorm:"column:plan_id;size:100" json:"plan_id"`
	Provider     string    `gorm:"column:provider;size:50" json:"provider"`
	SubmissionID string    `gorm:"column:submission_id;size:100;index" json:"submission_id"`
	Amount       string    `gorm:"column:amount;size:50" json:"amount"`
	Currency     string    `gorm:"column:currency;size:10" json:"currency"`
	CardLast4    string    `gorm:"column:card_last4;size:4" json:"card_last4"`
	Status       string    `gorm:"column:status;size:20" json:"status"` // success or error
	Message      string    `gorm:"column:message;size:500" json:"message"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (PaymentRecord) TableName() string {
	return "payment_records"
}

package repository

import (
	"time"

	"gorm.io/gorm"

	"standy/internal/models"
)

// PaymentRepository handles payment history database operations.
type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create records one submission attempt.
func (r *PaymentRepository) Create(record *models.PaymentRecord) error {
	return r.db.Create(record).Error
}

// FindByUserID returns a user's payment history, newest first.
func (r *PaymentRepository) FindByUserID(userID string, limit int) ([]models.PaymentRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var records []models.PaymentRecord
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// FindBySubmissionID returns a single record by its idempotency token.
func (r *PaymentRepository) FindBySubmissionID(submissionID string) (*models.PaymentRecord, error) {
	var record models.PaymentRecord
	if err := r.db.Where("submission_id = ?", submissionID).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteByUserID removes a user's whole history (account deletion).
func (r *PaymentRepository) DeleteByUserID(userID string) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.PaymentRecord{}).Error
}

// DeleteStaleErrors prunes failed attempts older than cutoff.
func (r *PaymentRepository) DeleteStaleErrors(cutoff time.Time) (int64, error) {
	res := r.db.Where("status = ? AND created_at < ?", "error", cutoff).
		Delete(&models.PaymentRecord{})
	return res.RowsAffected, res.Error
}

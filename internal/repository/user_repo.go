package repository

import (
	"time"

	"gorm.io/gorm"

	"standy/internal/models"
)

// UserRepository handles all user database operations.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID finds a user by ID.
func (r *UserRepository) FindByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email.
func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user.
func (r *UserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// Update patches user fields.
func (r *UserRepository) Update(id string, updates map[string]interface{}) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
}

// Delete removes a user row.
func (r *UserRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.User{}).Error
}

// TouchLastLogin stamps the last successful sign-in.
func (r *UserRepository) TouchLastLogin(id string, at time.Time) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).
		Update("last_login_at", at).Error
}

// FindExpiredSubscriptions returns users whose paid subscription has lapsed.
func (r *UserRepository) FindExpiredSubscriptions(now time.Time) ([]models.User, error) {
	var users []models.User
	err := r.db.
		Where("subscription <> '' AND subscription_exp IS NOT NULL AND subscription_exp < ?", now).
		Find(&users).Error
	return users, err
}

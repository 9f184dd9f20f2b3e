package repository

import (
	"gorm.io/gorm"

	"standy/internal/models"
)

// PlanRepository handles subscription plan database operations.
type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// FindActive returns all purchasable plans.
func (r *PlanRepository) FindActive() ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.Where("active = ?", true).Order("price").Find(&plans).Error
	return plans, err
}

// FindByID returns a plan by ID.
func (r *PlanRepository) FindByID(id string) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.Where("id = ?", id).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// Create inserts a plan. Used by seeding.
func (r *PlanRepository) Create(plan *models.Plan) error {
	return r.db.Create(plan).Error
}

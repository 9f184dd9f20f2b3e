package bootstrap

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"standy/internal/models"
)

// MigrateAndSeed ensures required tables exist and inserts the default plan
// catalogue when it is empty.
func MigrateAndSeed(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Plan{},
		&models.PaymentRecord{},
	); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	if err := seedPlans(db); err != nil {
		return fmt.Errorf("seed plans failed: %w", err)
	}
	return nil
}

func seedPlans(db *gorm.DB) error {
	defaults := []models.Plan{
		{
			ID:           "standy-premium",
			Name:         "Standy Premium",
			Category:     "Subscription",
			ItemType:     "VIRTUAL",
			Price:        "100.00",
			Currency:     "TRY",
			DurationDays: 30,
			Active:       true,
		},
		{
			ID:           "standy-premium-annual",
			Name:         "Standy Premium Annual",
			Category:     "Subscription",
			ItemType:     "VIRTUAL",
			Price:        "960.00",
			Currency:     "TRY",
			DurationDays: 365,
			Active:       true,
		},
	}

	for _, plan := range defaults {
		var existing models.Plan
		err := db.Where("id = ?", plan.ID).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.Create(&plan).Error; err != nil {
			return err
		}
	}
	return nil
}

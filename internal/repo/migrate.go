package repo

import (
	"fmt"

	"time-tracker/internal/model"

	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Project{},
		&model.WorkDay{},
		&model.TimeEntry{},
		&model.AiUsageLog{},
		&model.AiSummary{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

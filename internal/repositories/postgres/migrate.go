package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-quiz-service/internal/models"
)

// Migrate creates or updates the schema. The users table is only managed when
// users are stored locally.
func Migrate(db *gorm.DB, withUsers bool) error {
	tables := []interface{}{
		&models.Course{},
		&models.Quiz{},
		&models.Question{},
		&models.Submission{},
		&models.Grade{},
	}
	if withUsers {
		tables = append([]interface{}{&models.User{}}, tables...)
	}

	if err := db.AutoMigrate(tables...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/progress-engine/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.Models()...); err != nil {
		return err
	}
	return EnsureProgressIndexes(db)
}

// EnsureProgressIndexes adds the partial indexes AutoMigrate cannot express.
// Both Postgres and SQLite accept this syntax.
func EnsureProgressIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_challenge_run_active
		ON challenge_run(user_id, lesson_id, challenge_id)
		WHERE is_completed = false;
	`).Error; err != nil {
		return fmt.Errorf("create idx_challenge_run_active: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_exercise_response_pending
		ON exercise_response(submitted_at)
		WHERE reviewed = false;
	`).Error; err != nil {
		return fmt.Errorf("create idx_exercise_response_pending: %w", err)
	}
	return nil
}

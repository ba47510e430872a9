package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuizAttempt is append-only; every attempt is kept.
type QuizAttempt struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index:idx_quiz_attempt_user_lesson,priority:1" json:"user_id"`
	LessonID     uuid.UUID      `gorm:"type:uuid;not null;index:idx_quiz_attempt_user_lesson,priority:2;index" json:"lesson_id"`
	QuizID       string         `gorm:"column:quiz_id;not null" json:"quiz_id"`
	ScorePercent int            `gorm:"column:score_percent;not null" json:"score"`
	Passed       bool           `gorm:"column:passed;not null" json:"passed"`
	Answers      datatypes.JSON `gorm:"column:answers" json:"answers"`
	PointsEarned int            `gorm:"column:points_earned;not null" json:"points_earned"`
	AttemptedAt  time.Time      `gorm:"column:attempted_at;not null;index" json:"attempted_at"`
}

func (QuizAttempt) TableName() string { return "quiz_attempt" }

func (a *QuizAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LessonProgress is derived state, one row per (user, lesson). Only the
// progress aggregator writes it.
type LessonProgress struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID  `gorm:"type:uuid;not null;index:idx_lesson_progress_key,unique,priority:1" json:"user_id"`
	LessonID           uuid.UUID  `gorm:"type:uuid;not null;index:idx_lesson_progress_key,unique,priority:2;index" json:"lesson_id"`
	TheoryCompleted    bool       `gorm:"column:theory_completed;not null;default:false" json:"theory_completed"`
	ExercisesCompleted bool       `gorm:"column:exercises_completed;not null;default:false" json:"exercises_completed"`
	ChallengeCompleted bool       `gorm:"column:challenge_completed;not null;default:false" json:"challenge_completed"`
	QuizCompleted      bool       `gorm:"column:quiz_completed;not null;default:false" json:"quiz_completed"`
	QuizPassed         bool       `gorm:"column:quiz_passed;not null;default:false" json:"quiz_passed"`
	CompletionPercent  int        `gorm:"column:completion_percentage;not null;default:0" json:"completion_percentage"`
	IsCompleted        bool       `gorm:"column:is_completed;not null;default:false;index" json:"is_completed"`
	StartedAt          time.Time  `gorm:"column:started_at;not null;index" json:"started_at"`
	CompletedAt        *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	LastActivityAt     time.Time  `gorm:"column:last_activity_at;not null" json:"last_activity_at"`
}

func (LessonProgress) TableName() string { return "lesson_progress" }

func (p *LessonProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ZeroProgress is what callers see before any activity was recorded.
func ZeroProgress(userID, lessonID uuid.UUID) *LessonProgress {
	return &LessonProgress{UserID: userID, LessonID: lessonID}
}

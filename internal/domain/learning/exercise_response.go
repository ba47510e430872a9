package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExerciseResponse is unique per (user, lesson, exercise). Re-submission
// rewrites the text in place and keeps the review fields.
type ExerciseResponse struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index:idx_exercise_response_key,unique,priority:1" json:"user_id"`
	LessonID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_exercise_response_key,unique,priority:2;index" json:"lesson_id"`
	ExerciseID      string     `gorm:"column:exercise_id;not null;index:idx_exercise_response_key,unique,priority:3" json:"exercise_id"`
	ResponseText    string     `gorm:"column:response_text;type:text;not null" json:"response_text"`
	SubmittedAt     time.Time  `gorm:"column:submitted_at;not null;index" json:"submitted_at"`
	Reviewed        bool       `gorm:"column:reviewed;not null;default:false" json:"reviewed"`
	ReviewerComment *string    `gorm:"column:reviewer_comment;type:text" json:"reviewer_comment,omitempty"`
	ReviewedAt      *time.Time `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	ReviewedBy      *uuid.UUID `gorm:"type:uuid;column:reviewed_by" json:"reviewed_by,omitempty"`
	CreatedAt       time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null" json:"updated_at"`
}

func (ExerciseResponse) TableName() string { return "exercise_response" }

func (r *ExerciseResponse) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TimeActivity accumulates time on task per (user, lesson).
type TimeActivity struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index:idx_time_activity_key,unique,priority:1" json:"user_id"`
	LessonID       uuid.UUID `gorm:"type:uuid;not null;index:idx_time_activity_key,unique,priority:2;index" json:"lesson_id"`
	TotalMinutes   int       `gorm:"column:total_minutes;not null;default:0" json:"total_minutes"`
	TotalPoints    int       `gorm:"column:total_points;not null;default:0" json:"total_points"`
	StartedAt      time.Time `gorm:"column:started_at;not null" json:"started_at"`
	LastActivityAt time.Time `gorm:"column:last_activity_at;not null" json:"last_activity_at"`
}

func (TimeActivity) TableName() string { return "time_activity" }

func (a *TimeActivity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

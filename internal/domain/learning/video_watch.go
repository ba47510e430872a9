package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VideoWatch accumulates watch time per (user, lesson, file).
type VideoWatch struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index:idx_video_watch_key,unique,priority:1" json:"user_id"`
	LessonID     uuid.UUID `gorm:"type:uuid;not null;index:idx_video_watch_key,unique,priority:2;index" json:"lesson_id"`
	FileID       uuid.UUID `gorm:"type:uuid;not null;index:idx_video_watch_key,unique,priority:3;index" json:"file_id"`
	FileName     string    `gorm:"column:file_name" json:"file_name"`
	TotalMinutes int       `gorm:"column:total_minutes;not null;default:0" json:"total_minutes"`
	TotalPoints  int       `gorm:"column:total_points;not null;default:0" json:"total_points"`
	LastUpdated  time.Time `gorm:"column:last_updated;not null" json:"last_updated"`
}

func (VideoWatch) TableName() string { return "video_watch" }

func (v *VideoWatch) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

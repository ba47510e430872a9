package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LessonFile is an uploaded attachment. Only the metadata is visible here.
type LessonFile struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LessonID     uuid.UUID `gorm:"type:uuid;not null;index;column:lesson_id" json:"lesson_id"`
	OriginalName string    `gorm:"not null;column:original_name" json:"original_name"`
	MimeType     string    `gorm:"column:mime_type" json:"mime_type"`
	Section      string    `gorm:"column:section" json:"section,omitempty"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (LessonFile) TableName() string { return "lesson_file" }

func (f *LessonFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

func (f *LessonFile) IsVideo() bool {
	return f != nil && strings.HasPrefix(strings.ToLower(f.MimeType), "video/")
}

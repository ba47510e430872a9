package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FileActionKind string

const (
	FileActionView     FileActionKind = "view"
	FileActionDownload FileActionKind = "download"
)

// FileAction is an append-only view/download log entry. It carries no points.
type FileAction struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	LessonID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"lesson_id"`
	FileID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"file_id"`
	Action    FileActionKind `gorm:"column:action;not null" json:"action"`
	FileName  string         `gorm:"column:file_name" json:"file_name"`
	MimeType  string         `gorm:"column:mime_type" json:"mime_type"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
}

func (FileAction) TableName() string { return "file_action" }

func (a *FileAction) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/progress-engine/internal/domain"
	"github.com/yungbote/progress-engine/internal/platform/dbctx"
	"github.com/yungbote/progress-engine/internal/platform/logger"
)

type LessonFileRepo interface {
	Create(dbc dbctx.Context, files []*types.LessonFile) ([]*types.LessonFile, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LessonFile, error)
	ListByLesson(dbc dbctx.Context, lessonID uuid.UUID) ([]*types.LessonFile, error)
}

type lessonFileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonFileRepo(db *gorm.DB, baseLog *logger.Logger) LessonFileRepo {
	return &lessonFileRepo{db: db, log: baseLog.With("repo", "LessonFileRepo")}
}

func (r *lessonFileRepo) Create(dbc dbctx.Context, files []*types.LessonFile) ([]*types.LessonFile, error) {
	if len(files) == 0 {
		return []*types.LessonFile{}, nil
	}
	if err := dbc.DB(r.db).Create(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

func (r *lessonFileRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LessonFile, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.LessonFile
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *lessonFileRepo) ListByLesson(dbc dbctx.Context, lessonID uuid.UUID) ([]*types.LessonFile, error) {
	out := []*types.LessonFile{}
	if lessonID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("lesson_id = ?", lessonID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

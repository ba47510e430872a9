package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/progress-engine/internal/domain"
	"github.com/yungbote/progress-engine/internal/platform/dbctx"
	"github.com/yungbote/progress-engine/internal/platform/logger"
)

type FileActionRepo interface {
	Create(dbc dbctx.Context, action *types.FileAction) (*types.FileAction, error)
	ListByFile(dbc dbctx.Context, fileID uuid.UUID) ([]*types.FileAction, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID, action types.FileActionKind) (int64, error)
	DeleteByLesson(dbc dbctx.Context, lessonID uuid.UUID) (int64, error)
}

type fileActionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFileActionRepo(db *gorm.DB, baseLog *logger.Logger) FileActionRepo {
	return &fileActionRepo{db: db, log: baseLog.With("repo", "FileActionRepo")}
}

func (r *fileActionRepo) Create(dbc dbctx.Context, action *types.FileAction) (*types.FileAction, error) {
	if action == nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Create(action).Error; err != nil {
		return nil, err
	}
	return action, nil
}

func (r *fileActionRepo) ListByFile(dbc dbctx.Context, fileID uuid.UUID) ([]*types.FileAction, error) {
	out := []*types.FileAction{}
	if fileID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("file_id = ?", fileID).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *fileActionRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID, action types.FileActionKind) (int64, error) {
	var n int64
	if userID == uuid.Nil {
		return 0, nil
	}
	err := dbc.DB(r.db).Model(&types.FileAction{}).
		Where("user_id = ? AND action = ?", userID, action).
		Count(&n).Error
	return n, err
}

func (r *fileActionRepo) DeleteByLesson(dbc dbctx.Context, lessonID uuid.UUID) (int64, error) {
	if lessonID == uuid.Nil {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("lesson_id = ?", lessonID).Delete(&types.FileAction{})
	return res.RowsAffected, res.Error
}

package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/progress-engine/internal/domain"
	"github.com/yungbote/progress-engine/internal/platform/dbctx"
	"github.com/yungbote/progress-engine/internal/platform/logger"
)

type VideoWatchRepo interface {
	Accumulate(dbc dbctx.Context, row *types.VideoWatch) (*types.VideoWatch, error)
	Get(dbc dbctx.Context, userID, lessonID, fileID uuid.UUID) (*types.VideoWatch, error)
	ListByFile(dbc dbctx.Context, fileID uuid.UUID) ([]*types.VideoWatch, error)
	CountByUserAndLesson(dbc dbctx.Context, userID, lessonID uuid.UUID) (int64, error)
	SumPointsByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	SumMinutesByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	SumPoints(dbc dbctx.Context) (int64, error)
	DeleteByLesson(dbc dbctx.Context, lessonID uuid.UUID) (int64, error)
}

type videoWatchRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVideoWatchRepo(db *gorm.DB, baseLog *logger.Logger) VideoWatchRepo {
	return &videoWatchRepo{db: db, log: baseLog.With("repo", "VideoWatchRepo")}
}

// Accumulate treats row.TotalMinutes/TotalPoints as the increment for this
// call and returns the stored totals.
func (r *videoWatchRepo) Accumulate(dbc dbctx.Context, row *types.VideoWatch) (*types.VideoWatch, error) {
	if row == nil || row.UserID == uuid.Nil || row.LessonID == uuid.Nil || row.FileID == uuid.Nil {
		return nil, nil
	}
	if row.LastUpdated.IsZero() {
		row.LastUpdated = time.Now().UTC()
	}
	if err := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}, {Name: "file_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"total_minutes": gorm.Expr("video_watch.total_minutes + excluded.total_minutes"),
				"total_points":  gorm.Expr("video_watch.total_points + excluded.total_points"),
				"file_name":     gorm.Expr("excluded.file_name"),
				"last_updated":  gorm.Expr("excluded.last_updated"),
			}),
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.Get(dbc, row.UserID, row.LessonID, row.FileID)
}

func (r *videoWatchRepo) Get(dbc dbctx.Context, userID, lessonID, fileID uuid.UUID) (*types.VideoWatch, error) {
	var row types.VideoWatch
	if err := dbc.DB(r.db).
		Where("user_id = ? AND lesson_id = ? AND file_id = ?", userID, lessonID, fileID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *videoWatchRepo) ListByFile(dbc dbctx.Context, fileID uuid.UUID) ([]*types.VideoWatch, error) {
	out := []*types.VideoWatch{}
	if fileID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("file_id = ?", fileID).
		Order("last_updated DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *videoWatchRepo) SumPointsByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	return sumColumn(dbc.DB(r.db).Model(&types.VideoWatch{}).Where("user_id = ?", userID), "total_points")
}

func (r *videoWatchRepo) SumMinutesByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	return sumColumn(dbc.DB(r.db).Model(&types.VideoWatch{}).Where("user_id = ?", userID), "total_minutes")
}

func (r *videoWatchRepo) SumPoints(dbc dbctx.Context) (int64, error) {
	return sumColumn(dbc.DB(r.db).Model(&types.VideoWatch{}), "total_points")
}

func (r *videoWatchRepo) DeleteByLesson(dbc dbctx.Context, lessonID uuid.UUID) (int64, error) {
	if lessonID == uuid.Nil {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("lesson_id = ?", lessonID).Delete(&types.VideoWatch{})
	return res.RowsAffected, res.Error
}

func (r *videoWatchRepo) CountByUserAndLesson(dbc dbctx.Context, userID, lessonID uuid.UUID) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).
		Model(&types.VideoWatch{}).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

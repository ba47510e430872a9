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

type TimeActivityRepo interface {
	Accumulate(dbc dbctx.Context, userID, lessonID uuid.UUID, minutes, points int, at time.Time) (*types.TimeActivity, error)
	Get(dbc dbctx.Context, userID, lessonID uuid.UUID) (*types.TimeActivity, error)
	SumPointsByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	SumMinutesByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	SumPoints(dbc dbctx.Context) (int64, error)
	DeleteByLesson(dbc dbctx.Context, lessonID uuid.UUID) (int64, error)
}

type timeActivityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTimeActivityRepo(db *gorm.DB, baseLog *logger.Logger) TimeActivityRepo {
	return &timeActivityRepo{db: db, log: baseLog.With("repo", "TimeActivityRepo")}
}

// Accumulate adds minutes and points to the (user, lesson) row in a single
// statement, creating it on first use.
func (r *timeActivityRepo) Accumulate(dbc dbctx.Context, userID, lessonID uuid.UUID, minutes, points int, at time.Time) (*types.TimeActivity, error) {
	if userID == uuid.Nil || lessonID == uuid.Nil {
		return nil, nil
	}
	row := &types.TimeActivity{
		UserID:         userID,
		LessonID:       lessonID,
		TotalMinutes:   minutes,
		TotalPoints:    points,
		StartedAt:      at,
		LastActivityAt: at,
	}
	if err := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"total_minutes":    gorm.Expr("time_activity.total_minutes + excluded.total_minutes"),
				"total_points":     gorm.Expr("time_activity.total_points + excluded.total_points"),
				"last_activity_at": gorm.Expr("excluded.last_activity_at"),
			}),
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.Get(dbc, userID, lessonID)
}

func (r *timeActivityRepo) Get(dbc dbctx.Context, userID, lessonID uuid.UUID) (*types.TimeActivity, error) {
	var row types.TimeActivity
	if err := dbc.DB(r.db).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *timeActivityRepo) SumPointsByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	return sumColumn(dbc.DB(r.db).Model(&types.TimeActivity{}).Where("user_id = ?", userID), "total_points")
}

func (r *timeActivityRepo) SumMinutesByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	return sumColumn(dbc.DB(r.db).Model(&types.TimeActivity{}).Where("user_id = ?", userID), "total_minutes")
}

func (r *timeActivityRepo) SumPoints(dbc dbctx.Context) (int64, error) {
	return sumColumn(dbc.DB(r.db).Model(&types.TimeActivity{}), "total_points")
}

func (r *timeActivityRepo) DeleteByLesson(dbc dbctx.Context, lessonID uuid.UUID) (int64, error) {
	if lessonID == uuid.Nil {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("lesson_id = ?", lessonID).Delete(&types.TimeActivity{})
	return res.RowsAffected, res.Error
}

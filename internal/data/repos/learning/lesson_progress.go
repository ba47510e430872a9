package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/progress-engine/internal/domain"
	"github.com/yungbote/progress-engine/internal/platform/dbctx"
	"github.com/yungbote/progress-engine/internal/platform/logger"
)

// LessonParticipation is one row of the per-lesson participation rollup.
type LessonParticipation struct {
	LessonID      uuid.UUID
	Students      int64
	AvgCompletion float64
}

type LessonProgressRepo interface {
	Get(dbc dbctx.Context, userID, lessonID uuid.UUID) (*types.LessonProgress, error)
	Create(dbc dbctx.Context, row *types.LessonProgress) error
	Save(dbc dbctx.Context, row *types.LessonProgress) error
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.LessonProgress, error)
	ListByLesson(dbc dbctx.Context, lessonID uuid.UUID) ([]*types.LessonProgress, error)
	CountDistinctUsers(dbc dbctx.Context) (int64, error)
	CountActiveSince(dbc dbctx.Context, since time.Time) (int64, error)
	TopLessons(dbc dbctx.Context, limit int) ([]LessonParticipation, error)
	DeleteByLesson(dbc dbctx.Context, lessonID uuid.UUID) (int64, error)
	DeleteByUserAndLesson(dbc dbctx.Context, userID, lessonID uuid.UUID) (int64, error)
}

type lessonProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonProgressRepo(db *gorm.DB, baseLog *logger.Logger) LessonProgressRepo {
	return &lessonProgressRepo{db: db, log: baseLog.With("repo", "LessonProgressRepo")}
}

func (r *lessonProgressRepo) Get(dbc dbctx.Context, userID, lessonID uuid.UUID) (*types.LessonProgress, error) {
	if userID == uuid.Nil || lessonID == uuid.Nil {
		return nil, nil
	}
	var row types.LessonProgress
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

func (r *lessonProgressRepo) Create(dbc dbctx.Context, row *types.LessonProgress) error {
	if row == nil {
		return nil
	}
	return dbc.DB(r.db).Create(row).Error
}

func (r *lessonProgressRepo) Save(dbc dbctx.Context, row *types.LessonProgress) error {
	if row == nil || row.ID == uuid.Nil {
		return nil
	}
	return dbc.DB(r.db).Save(row).Error
}

func (r *lessonProgressRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.LessonProgress, error) {
	out := []*types.LessonProgress{}
	if userID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("last_activity_at DESC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *lessonProgressRepo) ListByLesson(dbc dbctx.Context, lessonID uuid.UUID) ([]*types.LessonProgress, error) {
	if lessonID == uuid.Nil {
		return []*types.LessonProgress{}, nil
	}
	return collectInBatches[types.LessonProgress](dbc.DB(r.db).Where("lesson_id = ?", lessonID))
}

func (r *lessonProgressRepo) CountDistinctUsers(dbc dbctx.Context) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).
		Model(&types.LessonProgress{}).
		Distinct("user_id").
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *lessonProgressRepo) CountActiveSince(dbc dbctx.Context, since time.Time) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).
		Model(&types.LessonProgress{}).
		Where("last_activity_at >= ?", since).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// TopLessons ranks lessons by participant count, ties by lesson id.
func (r *lessonProgressRepo) TopLessons(dbc dbctx.Context, limit int) ([]LessonParticipation, error) {
	out := []LessonParticipation{}
	q := dbc.DB(r.db).
		Model(&types.LessonProgress{}).
		Select("lesson_id, COUNT(*) AS students, AVG(completion_percentage) AS avg_completion").
		Group("lesson_id").
		Order("students DESC, lesson_id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *lessonProgressRepo) DeleteByLesson(dbc dbctx.Context, lessonID uuid.UUID) (int64, error) {
	if lessonID == uuid.Nil {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("lesson_id = ?", lessonID).Delete(&types.LessonProgress{})
	return res.RowsAffected, res.Error
}

func (r *lessonProgressRepo) DeleteByUserAndLesson(dbc dbctx.Context, userID, lessonID uuid.UUID) (int64, error) {
	if userID == uuid.Nil || lessonID == uuid.Nil {
		return 0, nil
	}
	res := dbc.DB(r.db).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Delete(&types.LessonProgress{})
	return res.RowsAffected, res.Error
}

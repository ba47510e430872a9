package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/progress-engine/internal/domain"
	"github.com/yungbote/progress-engine/internal/platform/dbctx"
	"github.com/yungbote/progress-engine/internal/platform/logger"
)

type QuizAttemptRepo interface {
	Create(dbc dbctx.Context, attempt *types.QuizAttempt) (*types.QuizAttempt, error)
	ListByUserAndLesson(dbc dbctx.Context, userID, lessonID uuid.UUID) ([]*types.QuizAttempt, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.QuizAttempt, error)
	ListByLesson(dbc dbctx.Context, lessonID uuid.UUID) ([]*types.QuizAttempt, error)
	HasPassed(dbc dbctx.Context, userID, lessonID uuid.UUID) (bool, error)
	CountByUserAndLesson(dbc dbctx.Context, userID, lessonID uuid.UUID) (int64, error)
	SumPoints(dbc dbctx.Context) (int64, error)
	DeleteByLesson(dbc dbctx.Context, lessonID uuid.UUID) (int64, error)
}

type quizAttemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizAttemptRepo(db *gorm.DB, baseLog *logger.Logger) QuizAttemptRepo {
	return &quizAttemptRepo{db: db, log: baseLog.With("repo", "QuizAttemptRepo")}
}

func (r *quizAttemptRepo) Create(dbc dbctx.Context, attempt *types.QuizAttempt) (*types.QuizAttempt, error) {
	if attempt == nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Create(attempt).Error; err != nil {
		return nil, err
	}
	return attempt, nil
}

// ListByUserAndLesson returns attempts newest first.
func (r *quizAttemptRepo) ListByUserAndLesson(dbc dbctx.Context, userID, lessonID uuid.UUID) ([]*types.QuizAttempt, error) {
	out := []*types.QuizAttempt{}
	if userID == uuid.Nil || lessonID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Order("attempted_at DESC, id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *quizAttemptRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.QuizAttempt, error) {
	out := []*types.QuizAttempt{}
	if userID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("attempted_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *quizAttemptRepo) ListByLesson(dbc dbctx.Context, lessonID uuid.UUID) ([]*types.QuizAttempt, error) {
	if lessonID == uuid.Nil {
		return []*types.QuizAttempt{}, nil
	}
	return collectInBatches[types.QuizAttempt](dbc.DB(r.db).Where("lesson_id = ?", lessonID))
}

func (r *quizAttemptRepo) HasPassed(dbc dbctx.Context, userID, lessonID uuid.UUID) (bool, error) {
	var n int64
	if err := dbc.DB(r.db).
		Model(&types.QuizAttempt{}).
		Where("user_id = ? AND lesson_id = ? AND passed = ?", userID, lessonID, true).
		Limit(1).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *quizAttemptRepo) SumPoints(dbc dbctx.Context) (int64, error) {
	return sumColumn(dbc.DB(r.db).Model(&types.QuizAttempt{}), "points_earned")
}

func (r *quizAttemptRepo) DeleteByLesson(dbc dbctx.Context, lessonID uuid.UUID) (int64, error) {
	if lessonID == uuid.Nil {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("lesson_id = ?", lessonID).Delete(&types.QuizAttempt{})
	return res.RowsAffected, res.Error
}

func (r *quizAttemptRepo) CountByUserAndLesson(dbc dbctx.Context, userID, lessonID uuid.UUID) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).
		Model(&types.QuizAttempt{}).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/progress-engine/internal/domain"
	"github.com/yungbote/progress-engine/internal/platform/dbctx"
	"github.com/yungbote/progress-engine/internal/platform/logger"
)

type ChallengeRunRepo interface {
	Create(dbc dbctx.Context, run *types.ChallengeRun) (*types.ChallengeRun, error)
	SaveActive(dbc dbctx.Context, run *types.ChallengeRun) (bool, error)
	GetActive(dbc dbctx.Context, userID, lessonID uuid.UUID, challengeID string) (*types.ChallengeRun, error)
	ListByKey(dbc dbctx.Context, userID, lessonID uuid.UUID, challengeID string) ([]*types.ChallengeRun, error)
	CountByKey(dbc dbctx.Context, userID, lessonID uuid.UUID, challengeID string) (int64, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.ChallengeRun, error)
	ListByLesson(dbc dbctx.Context, lessonID uuid.UUID) ([]*types.ChallengeRun, error)
	AnyCompleted(dbc dbctx.Context, userID, lessonID uuid.UUID) (bool, error)
	CountByUserAndLesson(dbc dbctx.Context, userID, lessonID uuid.UUID) (int64, error)
	SumPoints(dbc dbctx.Context) (int64, error)
	DeleteByLesson(dbc dbctx.Context, lessonID uuid.UUID) (int64, error)
}

type challengeRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChallengeRunRepo(db *gorm.DB, baseLog *logger.Logger) ChallengeRunRepo {
	return &challengeRunRepo{db: db, log: baseLog.With("repo", "ChallengeRunRepo")}
}

func (r *challengeRunRepo) Create(dbc dbctx.Context, run *types.ChallengeRun) (*types.ChallengeRun, error) {
	if run == nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

// SaveActive writes every column of run only while the stored row is still
// open. It reports false when the row was closed or removed underneath.
func (r *challengeRunRepo) SaveActive(dbc dbctx.Context, run *types.ChallengeRun) (bool, error) {
	if run == nil || run.ID == uuid.Nil {
		return false, nil
	}
	res := dbc.DB(r.db).
		Model(&types.ChallengeRun{}).
		Where("id = ? AND is_completed = ?", run.ID, false).
		Select("*").
		Omit("id").
		Updates(run)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *challengeRunRepo) GetActive(dbc dbctx.Context, userID, lessonID uuid.UUID, challengeID string) (*types.ChallengeRun, error) {
	var row types.ChallengeRun
	if err := dbc.DB(r.db).
		Where("user_id = ? AND lesson_id = ? AND challenge_id = ? AND is_completed = ?", userID, lessonID, challengeID, false).
		Order("attempt_number DESC").
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

// ListByKey returns every run for the key, newest first.
func (r *challengeRunRepo) ListByKey(dbc dbctx.Context, userID, lessonID uuid.UUID, challengeID string) ([]*types.ChallengeRun, error) {
	out := []*types.ChallengeRun{}
	if err := dbc.DB(r.db).
		Where("user_id = ? AND lesson_id = ? AND challenge_id = ?", userID, lessonID, challengeID).
		Order("attempt_number DESC, started_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *challengeRunRepo) CountByKey(dbc dbctx.Context, userID, lessonID uuid.UUID, challengeID string) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).
		Model(&types.ChallengeRun{}).
		Where("user_id = ? AND lesson_id = ? AND challenge_id = ?", userID, lessonID, challengeID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *challengeRunRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.ChallengeRun, error) {
	out := []*types.ChallengeRun{}
	if userID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("started_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *challengeRunRepo) ListByLesson(dbc dbctx.Context, lessonID uuid.UUID) ([]*types.ChallengeRun, error) {
	if lessonID == uuid.Nil {
		return []*types.ChallengeRun{}, nil
	}
	return collectInBatches[types.ChallengeRun](dbc.DB(r.db).Where("lesson_id = ?", lessonID))
}

func (r *challengeRunRepo) AnyCompleted(dbc dbctx.Context, userID, lessonID uuid.UUID) (bool, error) {
	var n int64
	if err := dbc.DB(r.db).
		Model(&types.ChallengeRun{}).
		Where("user_id = ? AND lesson_id = ? AND is_completed = ?", userID, lessonID, true).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *challengeRunRepo) SumPoints(dbc dbctx.Context) (int64, error) {
	return sumColumn(dbc.DB(r.db).Model(&types.ChallengeRun{}), "points_earned")
}

func (r *challengeRunRepo) DeleteByLesson(dbc dbctx.Context, lessonID uuid.UUID) (int64, error) {
	if lessonID == uuid.Nil {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("lesson_id = ?", lessonID).Delete(&types.ChallengeRun{})
	return res.RowsAffected, res.Error
}

func (r *challengeRunRepo) CountByUserAndLesson(dbc dbctx.Context, userID, lessonID uuid.UUID) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).
		Model(&types.ChallengeRun{}).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

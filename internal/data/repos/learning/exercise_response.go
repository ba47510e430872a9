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

type ExerciseResponseRepo interface {
	Upsert(dbc dbctx.Context, row *types.ExerciseResponse) (*types.ExerciseResponse, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ExerciseResponse, error)
	GetByKey(dbc dbctx.Context, userID, lessonID uuid.UUID, exerciseID string) (*types.ExerciseResponse, error)
	ListByUserAndLesson(dbc dbctx.Context, userID, lessonID uuid.UUID) ([]*types.ExerciseResponse, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.ExerciseResponse, error)
	ListByLesson(dbc dbctx.Context, lessonID uuid.UUID) ([]*types.ExerciseResponse, error)
	ListPending(dbc dbctx.Context, limit int) ([]*types.ExerciseResponse, error)
	CountDistinctExercises(dbc dbctx.Context, userID, lessonID uuid.UUID, exerciseIDs []string) (int64, error)
	Count(dbc dbctx.Context) (int64, error)
	CountPending(dbc dbctx.Context) (int64, error)
	MarkReviewed(dbc dbctx.Context, id uuid.UUID, reviewerID uuid.UUID, comment string, at time.Time) (bool, error)
	DeleteByLesson(dbc dbctx.Context, lessonID uuid.UUID) (int64, error)
	DeleteByUserAndLesson(dbc dbctx.Context, userID, lessonID uuid.UUID) (int64, error)
}

type exerciseResponseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExerciseResponseRepo(db *gorm.DB, baseLog *logger.Logger) ExerciseResponseRepo {
	return &exerciseResponseRepo{db: db, log: baseLog.With("repo", "ExerciseResponseRepo")}
}

// Upsert inserts the response or rewrites text and submitted_at in place.
// Review fields are never touched here.
func (r *exerciseResponseRepo) Upsert(dbc dbctx.Context, row *types.ExerciseResponse) (*types.ExerciseResponse, error) {
	if row == nil || row.UserID == uuid.Nil || row.LessonID == uuid.Nil || row.ExerciseID == "" {
		return nil, nil
	}
	if err := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}, {Name: "exercise_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"response_text", "submitted_at", "updated_at",
			}),
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.GetByKey(dbc, row.UserID, row.LessonID, row.ExerciseID)
}

func (r *exerciseResponseRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ExerciseResponse, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.ExerciseResponse
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *exerciseResponseRepo) GetByKey(dbc dbctx.Context, userID, lessonID uuid.UUID, exerciseID string) (*types.ExerciseResponse, error) {
	var row types.ExerciseResponse
	if err := dbc.DB(r.db).
		Where("user_id = ? AND lesson_id = ? AND exercise_id = ?", userID, lessonID, exerciseID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *exerciseResponseRepo) ListByUserAndLesson(dbc dbctx.Context, userID, lessonID uuid.UUID) ([]*types.ExerciseResponse, error) {
	out := []*types.ExerciseResponse{}
	if userID == uuid.Nil || lessonID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Order("submitted_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *exerciseResponseRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.ExerciseResponse, error) {
	out := []*types.ExerciseResponse{}
	if userID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("submitted_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *exerciseResponseRepo) ListByLesson(dbc dbctx.Context, lessonID uuid.UUID) ([]*types.ExerciseResponse, error) {
	if lessonID == uuid.Nil {
		return []*types.ExerciseResponse{}, nil
	}
	return collectInBatches[types.ExerciseResponse](dbc.DB(r.db).Where("lesson_id = ?", lessonID))
}

// ListPending returns unreviewed responses, newest first.
func (r *exerciseResponseRepo) ListPending(dbc dbctx.Context, limit int) ([]*types.ExerciseResponse, error) {
	out := []*types.ExerciseResponse{}
	q := dbc.DB(r.db).
		Where("reviewed = ?", false).
		Order("submitted_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CountDistinctExercises counts answered exercises. A non-empty exerciseIDs
// restricts the count to those ids.
func (r *exerciseResponseRepo) CountDistinctExercises(dbc dbctx.Context, userID, lessonID uuid.UUID, exerciseIDs []string) (int64, error) {
	var n int64
	q := dbc.DB(r.db).
		Model(&types.ExerciseResponse{}).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID)
	if len(exerciseIDs) > 0 {
		q = q.Where("exercise_id IN ?", exerciseIDs)
	}
	if err := q.Distinct("exercise_id").Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *exerciseResponseRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).Model(&types.ExerciseResponse{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *exerciseResponseRepo) CountPending(dbc dbctx.Context) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).
		Model(&types.ExerciseResponse{}).
		Where("reviewed = ?", false).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *exerciseResponseRepo) MarkReviewed(dbc dbctx.Context, id uuid.UUID, reviewerID uuid.UUID, comment string, at time.Time) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	updates := map[string]any{
		"reviewed":    true,
		"reviewed_at": at,
		"updated_at":  at,
	}
	if comment != "" {
		updates["reviewer_comment"] = comment
	}
	if reviewerID != uuid.Nil {
		updates["reviewed_by"] = reviewerID
	}
	res := dbc.DB(r.db).
		Model(&types.ExerciseResponse{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *exerciseResponseRepo) DeleteByLesson(dbc dbctx.Context, lessonID uuid.UUID) (int64, error) {
	if lessonID == uuid.Nil {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("lesson_id = ?", lessonID).Delete(&types.ExerciseResponse{})
	return res.RowsAffected, res.Error
}

func (r *exerciseResponseRepo) DeleteByUserAndLesson(dbc dbctx.Context, userID, lessonID uuid.UUID) (int64, error) {
	if userID == uuid.Nil || lessonID == uuid.Nil {
		return 0, nil
	}
	res := dbc.DB(r.db).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Delete(&types.ExerciseResponse{})
	return res.RowsAffected, res.Error
}

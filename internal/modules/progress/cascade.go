package progress

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/yungbote/progress-engine/internal/data/aggregates"
	domainagg "github.com/yungbote/progress-engine/internal/domain/aggregates"
	"github.com/yungbote/progress-engine/internal/platform/dbctx"
)

const (
	CollectionProgress          = "lesson_progress"
	CollectionExerciseResponses = "exercise_responses"
	CollectionQuizAttempts      = "quiz_attempts"
	CollectionChallengeRuns     = "challenge_runs"
	CollectionTimeActivity      = "time_activity"
	CollectionVideoWatch        = "video_watch"
	CollectionFileActions       = "file_actions"
)

// DeleteLesson removes every ledger and progress record of a lesson. Each
// collection is deleted on its own; a failure in one does not stop the rest.
// The counts of the collections that succeeded are returned alongside the
// joined errors.
func (u Usecases) DeleteLesson(ctx context.Context, lessonID uuid.UUID) (map[string]int64, error) {
	const op = "Progress.DeleteLesson"
	if lessonID == uuid.Nil {
		return nil, domainagg.Validation(op, "lesson id is required")
	}
	dbc := dbctx.New(ctx)
	r := u.deps.Repos
	steps := []struct {
		name string
		del  func(dbctx.Context, uuid.UUID) (int64, error)
	}{
		{CollectionProgress, r.Progress.DeleteByLesson},
		{CollectionExerciseResponses, r.ExerciseResponses.DeleteByLesson},
		{CollectionQuizAttempts, r.QuizAttempts.DeleteByLesson},
		{CollectionChallengeRuns, r.ChallengeRuns.DeleteByLesson},
		{CollectionTimeActivity, r.TimeActivity.DeleteByLesson},
		{CollectionVideoWatch, r.VideoWatch.DeleteByLesson},
		{CollectionFileActions, r.FileActions.DeleteByLesson},
	}

	counts := make(map[string]int64, len(steps))
	var errs []error
	for _, step := range steps {
		n, err := step.del(dbc, lessonID)
		if err != nil {
			u.deps.Log.Warn("cascade delete failed", "collection", step.name, "lesson_id", lessonID, "error", err)
			errs = append(errs, aggregates.MapError(op, err, "collection", step.name, "lesson_id", lessonID.String()))
			continue
		}
		counts[step.name] = n
	}
	u.deps.Log.Info("lesson records deleted", "lesson_id", lessonID, "counts", counts, "failed", len(errs))
	return counts, errors.Join(errs...)
}

// ResetUserLesson clears a user's exercise responses and progress row for a
// lesson. Quiz attempts, challenge runs and time/video totals are kept.
func (u Usecases) ResetUserLesson(ctx context.Context, userID, lessonID uuid.UUID) (map[string]int64, error) {
	const op = "Progress.ResetUserLesson"
	if userID == uuid.Nil || lessonID == uuid.Nil {
		return nil, domainagg.Validation(op, "user id and lesson id are required")
	}
	counts := map[string]int64{}
	err := u.write(ctx, op, "", userID, lessonID, func(dbc dbctx.Context) error {
		n, err := u.deps.Repos.ExerciseResponses.DeleteByUserAndLesson(dbc, userID, lessonID)
		if err != nil {
			return err
		}
		counts[CollectionExerciseResponses] = n
		n, err = u.deps.Repos.Progress.DeleteByUserAndLesson(dbc, userID, lessonID)
		if err != nil {
			return err
		}
		counts[CollectionProgress] = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

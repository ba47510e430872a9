package progress

import (
	"context"
	"math"

	"github.com/google/uuid"

	types "github.com/yungbote/progress-engine/internal/domain"
	"github.com/yungbote/progress-engine/internal/domain/learning"
	"github.com/yungbote/progress-engine/internal/platform/dbctx"
)

// RecomputeProgress rebuilds the progress row for (user, lesson) from the ledger.
func (u Usecases) RecomputeProgress(ctx context.Context, userID, lessonID uuid.UUID) (*types.LessonProgress, error) {
	const op = "Progress.RecomputeProgress"
	var out *types.LessonProgress
	var completedNow bool
	err := u.write(ctx, op, "", userID, lessonID, func(dbc dbctx.Context) error {
		_, sections, err := u.loadLesson(dbc, op, lessonID)
		if err != nil {
			return err
		}
		out, completedNow, err = u.recompute(dbc, userID, lessonID, sections, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	u.afterRecompute(out, completedNow)
	return out, nil
}

// GetProgress returns the stored row, or a zero row when the user has no
// activity on the lesson. It never writes.
func (u Usecases) GetProgress(ctx context.Context, userID, lessonID uuid.UUID) (*types.LessonProgress, error) {
	const op = "Progress.GetProgress"
	row, err := u.deps.Repos.Progress.Get(dbctx.New(ctx), userID, lessonID)
	if err != nil {
		return nil, readErr(op, err, keyPairs(userID, lessonID)...)
	}
	if row == nil {
		return learning.ZeroProgress(userID, lessonID), nil
	}
	return row, nil
}

func (u Usecases) ListProgressForUser(ctx context.Context, userID uuid.UUID) ([]*types.LessonProgress, error) {
	const op = "Progress.ListProgressForUser"
	rows, err := u.deps.Repos.Progress.ListByUser(dbctx.New(ctx), userID)
	if err != nil {
		return nil, readErr(op, err, "user_id", userID.String())
	}
	return rows, nil
}

// recompute is the only writer of completion fields. It must run inside the
// caller's locked transaction. The second result reports a transition to
// completed on this call. touch marks the call as new learner activity; an
// existing row keeps its LastActivityAt otherwise.
func (u Usecases) recompute(dbc dbctx.Context, userID, lessonID uuid.UUID, sections types.LessonSections, touch bool) (*types.LessonProgress, bool, error) {
	total, done := 0, 0

	theoryDone := false
	if sections.HasTheory() {
		total++
		switch u.deps.Theory {
		case TheoryActivityBased:
			seen, err := u.hasActivity(dbc, userID, lessonID)
			if err != nil {
				return nil, false, err
			}
			theoryDone = seen
		default:
			theoryDone = true
		}
		if theoryDone {
			done++
		}
	}

	exercisesDone := false
	if sections.HasExercises() {
		total++
		ids := make([]string, 0, len(sections.Exercises))
		for _, ex := range sections.Exercises {
			ids = append(ids, ex.ID)
		}
		n, err := u.deps.Repos.ExerciseResponses.CountDistinctExercises(dbc, userID, lessonID, ids)
		if err != nil {
			return nil, false, err
		}
		exercisesDone = n >= int64(len(sections.Exercises))
		if exercisesDone {
			done++
		}
	}

	challengeDone := false
	if sections.HasChallenge() {
		total++
		ok, err := u.deps.Repos.ChallengeRuns.AnyCompleted(dbc, userID, lessonID)
		if err != nil {
			return nil, false, err
		}
		challengeDone = ok
		if challengeDone {
			done++
		}
	}

	quizDone := false
	if sections.HasQuiz() {
		total++
		ok, err := u.deps.Repos.QuizAttempts.HasPassed(dbc, userID, lessonID)
		if err != nil {
			return nil, false, err
		}
		quizDone = ok
		if quizDone {
			done++
		}
	}

	now := u.now()
	row, err := u.deps.Repos.Progress.Get(dbc, userID, lessonID)
	if err != nil {
		return nil, false, err
	}
	created := row == nil
	if created {
		row = &types.LessonProgress{UserID: userID, LessonID: lessonID, StartedAt: now}
	}

	percent := completionPercent(done, total)
	isCompleted := percent >= 100
	completedNow := isCompleted && !row.IsCompleted
	if completedNow {
		row.CompletedAt = &now
	}

	row.TheoryCompleted = theoryDone
	row.ExercisesCompleted = exercisesDone
	row.ChallengeCompleted = challengeDone
	row.QuizCompleted = quizDone
	row.QuizPassed = quizDone
	row.CompletionPercent = percent
	row.IsCompleted = isCompleted
	if touch || created {
		row.LastActivityAt = now
	}

	if created {
		err = u.deps.Repos.Progress.Create(dbc, row)
	} else {
		err = u.deps.Repos.Progress.Save(dbc, row)
	}
	if err != nil {
		return nil, false, err
	}
	return row, completedNow, nil
}

func (u Usecases) afterRecompute(row *types.LessonProgress, completedNow bool) {
	if row == nil || !completedNow {
		return
	}
	u.deps.Metrics.IncLessonCompleted()
	u.deps.Log.Info("lesson completed", "user_id", row.UserID, "lesson_id", row.LessonID)
}

// completionPercent rounds half away from zero; zero sections means 0%.
func completionPercent(done, total int) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(100 * float64(done) / float64(total)))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func (u Usecases) hasActivity(dbc dbctx.Context, userID, lessonID uuid.UUID) (bool, error) {
	if n, err := u.deps.Repos.ExerciseResponses.CountDistinctExercises(dbc, userID, lessonID, nil); err != nil || n > 0 {
		return n > 0, err
	}
	if n, err := u.deps.Repos.QuizAttempts.CountByUserAndLesson(dbc, userID, lessonID); err != nil || n > 0 {
		return n > 0, err
	}
	if n, err := u.deps.Repos.ChallengeRuns.CountByUserAndLesson(dbc, userID, lessonID); err != nil || n > 0 {
		return n > 0, err
	}
	if n, err := u.deps.Repos.VideoWatch.CountByUserAndLesson(dbc, userID, lessonID); err != nil || n > 0 {
		return n > 0, err
	}
	ta, err := u.deps.Repos.TimeActivity.Get(dbc, userID, lessonID)
	if err != nil {
		return false, err
	}
	return ta != nil && ta.TotalMinutes > 0, nil
}

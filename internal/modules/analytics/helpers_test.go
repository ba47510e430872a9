package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/progress-engine/internal/data/repos"
	"github.com/yungbote/progress-engine/internal/data/repos/testutil"
	types "github.com/yungbote/progress-engine/internal/domain"
)

// Monday.
var testNow = time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

type fixture struct {
	ctx context.Context
	db  *gorm.DB
	svc Usecases
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	svc := New(UsecasesDeps{
		Log:   log,
		Repos: repos.NewSet(db, log),
		Now:   func() time.Time { return testNow },
	})
	return &fixture{ctx: context.Background(), db: db, svc: svc}
}

func (f *fixture) create(t *testing.T, rows ...any) {
	t.Helper()
	for _, row := range rows {
		require.NoError(t, f.db.WithContext(f.ctx).Create(row).Error)
	}
}

func (f *fixture) user(t *testing.T, name string) *types.User {
	t.Helper()
	return testutil.SeedUser(t, f.ctx, f.db, name, false)
}

func (f *fixture) lesson(t *testing.T, title string) *types.Lesson {
	t.Helper()
	spec := testutil.FullLesson()
	spec.Title = title
	return testutil.SeedLesson(t, f.ctx, f.db, spec)
}

func at(days int, hour int) time.Time {
	return time.Date(2024, 3, 4+days, hour, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func progressRow(userID, lessonID uuid.UUID, percent int, started time.Time, completed *time.Time) *types.LessonProgress {
	return &types.LessonProgress{
		UserID:            userID,
		LessonID:          lessonID,
		TheoryCompleted:   true,
		CompletionPercent: percent,
		IsCompleted:       completed != nil,
		StartedAt:         started,
		CompletedAt:       completed,
		LastActivityAt:    started,
	}
}

func quizRow(userID, lessonID uuid.UUID, score, points int, passed bool, when time.Time) *types.QuizAttempt {
	return &types.QuizAttempt{
		UserID:       userID,
		LessonID:     lessonID,
		QuizID:       "q1",
		ScorePercent: score,
		Passed:       passed,
		PointsEarned: points,
		AttemptedAt:  when,
	}
}

func runRow(userID, lessonID uuid.UUID, attempt, points int, started time.Time, completed *time.Time) *types.ChallengeRun {
	return &types.ChallengeRun{
		UserID:        userID,
		LessonID:      lessonID,
		ChallengeID:   "ch1",
		AttemptNumber: attempt,
		CurrentDay:    1,
		IsCompleted:   completed != nil,
		StartedAt:     started,
		CompletedAt:   completed,
		PointsEarned:  points,
	}
}

func responseRow(userID, lessonID uuid.UUID, exerciseID string, reviewed bool, when time.Time) *types.ExerciseResponse {
	return &types.ExerciseResponse{
		UserID:       userID,
		LessonID:     lessonID,
		ExerciseID:   exerciseID,
		ResponseText: "answer " + exerciseID,
		SubmittedAt:  when,
		Reviewed:     reviewed,
	}
}

package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/progress-engine/internal/data/repos/testutil"
	types "github.com/yungbote/progress-engine/internal/domain"
	domainagg "github.com/yungbote/progress-engine/internal/domain/aggregates"
)

func TestGetOverview_EmptyStore(t *testing.T) {
	f := newFixture(t)

	out, err := f.svc.GetOverview(f.ctx)
	require.NoError(t, err)
	assert.False(t, out.Partial())
	assert.Zero(t, out.TotalLessons)
	assert.Zero(t, out.Points)
	assert.Empty(t, out.TopLessons)
	assert.Empty(t, out.PendingDetails)
}

func seedOverview(t *testing.T, f *fixture) (*types.User, *types.Lesson, *types.Lesson) {
	t.Helper()
	alice, bob := f.user(t, "alice"), f.user(t, "bob")
	testutil.SeedUser(t, f.ctx, f.db, "admin", true)
	popular, quiet := f.lesson(t, "Popular"), f.lesson(t, "Quiet")
	testutil.SeedLesson(t, f.ctx, f.db, testutil.LessonSpec{Title: "Hidden", Inactive: true})
	file := testutil.SeedLessonFile(t, f.ctx, f.db, popular.ID, "clip.mp4", "video/mp4")

	stale := progressRow(bob.ID, quiet.ID, 0, at(-20, 8), nil)
	f.create(t,
		progressRow(alice.ID, popular.ID, 100, at(-2, 8), ptr(at(-1, 8))),
		progressRow(bob.ID, popular.ID, 50, at(-2, 8), nil),
		stale,
		responseRow(alice.ID, popular.ID, "ex1", true, at(-2, 9)),
		responseRow(bob.ID, popular.ID, "ex1", false, at(-2, 10)),
		responseRow(bob.ID, popular.ID, "ex2", false, at(-1, 10)),
		quizRow(alice.ID, popular.ID, 80, 100, true, at(-1, 9)),
		runRow(alice.ID, popular.ID, 1, 80, at(-5, 9), ptr(at(-2, 9))),
		&types.TimeActivity{UserID: alice.ID, LessonID: popular.ID, TotalMinutes: 8, TotalPoints: 8, StartedAt: at(-2, 8), LastActivityAt: at(-2, 9)},
		&types.VideoWatch{UserID: bob.ID, LessonID: popular.ID, FileID: file.ID, TotalMinutes: 6, TotalPoints: 60, LastUpdated: at(-1, 8)},
	)
	return bob, popular, quiet
}

func TestGetOverview_Totals(t *testing.T) {
	f := newFixture(t)
	bob, popular, quiet := seedOverview(t, f)

	out, err := f.svc.GetOverview(f.ctx)
	require.NoError(t, err)
	assert.False(t, out.Partial(), "errors: %v", out.Errors)

	assert.EqualValues(t, 2, out.TotalLessons)
	assert.EqualValues(t, 2, out.TotalStudents)
	assert.EqualValues(t, 3, out.TotalResponses)
	assert.EqualValues(t, 2, out.PendingReviews)
	assert.EqualValues(t, 2, out.ActiveStudents)
	assert.EqualValues(t, 2, out.RecentActivity)
	assert.Equal(t, PointsBySource{Total: 248, Challenges: 80, Quizzes: 100, Time: 8, Videos: 60}, out.Points)

	require.Len(t, out.TopLessons, 2)
	assert.Equal(t, popular.ID, out.TopLessons[0].LessonID)
	assert.Equal(t, "Popular", out.TopLessons[0].Title)
	assert.EqualValues(t, 2, out.TopLessons[0].Students)
	assert.InDelta(t, 75.0, out.TopLessons[0].AvgCompletion, 1e-9)
	assert.Equal(t, quiet.ID, out.TopLessons[1].LessonID)

	require.Len(t, out.PendingDetails, 2)
	first := out.PendingDetails[0]
	assert.Equal(t, bob.ID, first.UserID)
	assert.Equal(t, "Student bob", first.UserName)
	assert.Equal(t, "Popular", first.LessonTitle)
	assert.Equal(t, "ex2", first.ExerciseID)
	assert.Equal(t, "Exercise ex2", first.ExerciseTitle)
}

func TestGetOverview_IsolatesFailedMetric(t *testing.T) {
	f := newFixture(t)
	seedOverview(t, f)
	require.NoError(t, f.db.Migrator().DropTable(&types.QuizAttempt{}))

	out, err := f.svc.GetOverview(f.ctx)
	require.NoError(t, err)
	require.True(t, out.Partial())

	assert.Contains(t, out.Errors, MetricPointsQuiz)
	assert.Contains(t, out.Errors, MetricPointsTotal)
	assert.Len(t, out.Errors, 2)
	assert.Zero(t, out.Points.Quizzes)
	assert.Zero(t, out.Points.Total)

	assert.EqualValues(t, 80, out.Points.Challenges)
	assert.EqualValues(t, 60, out.Points.Videos)
	assert.EqualValues(t, 3, out.TotalResponses)
	assert.Len(t, out.TopLessons, 2)
}

func TestGetOverview_CancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(f.ctx)
	cancel()

	_, err := f.svc.GetOverview(ctx)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeStoreUnavailable))
}

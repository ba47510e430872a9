package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	types "github.com/yungbote/progress-engine/internal/domain"
	domainagg "github.com/yungbote/progress-engine/internal/domain/aggregates"
)

func TestGetLessonAnalytics_UnknownLesson(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetLessonAnalytics(f.ctx, uuid.New())
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound))

	_, err = f.svc.GetLessonAnalytics(f.ctx, uuid.Nil)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation))
}

func TestGetLessonAnalytics_EmptyLessonIsZero(t *testing.T) {
	f := newFixture(t)
	lesson := f.lesson(t, "Empty")

	out, err := f.svc.GetLessonAnalytics(f.ctx, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, "Empty", out.LessonTitle)
	assert.Equal(t, LessonStatistics{}, out.Statistics)
	assert.Empty(t, out.QuizLeaderboard)
	assert.Empty(t, out.ChallengeLeaderboard)
	assert.Empty(t, out.ProgressTimeline)
	assert.Empty(t, out.Students)
}

func TestGetLessonAnalytics_Statistics(t *testing.T) {
	f := newFixture(t)
	lesson := f.lesson(t, "Breathing")
	other := f.lesson(t, "Other")
	alice, bob, carol := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")
	ghost := uuid.New()

	finished := f.runWithNotes(alice.ID, lesson.ID, 80, ptr(at(-2, 9)), "done", "")
	f.create(t,
		progressRow(alice.ID, lesson.ID, 50, at(-3, 8), nil),
		progressRow(bob.ID, lesson.ID, 100, at(-3, 9), ptr(at(-2, 12))),
		progressRow(carol.ID, lesson.ID, 0, at(-1, 8), nil),
		responseRow(alice.ID, lesson.ID, "ex1", true, at(-3, 10)),
		responseRow(alice.ID, lesson.ID, "ex2", false, at(-3, 11)),
		responseRow(bob.ID, lesson.ID, "ex1", false, at(-2, 10)),
		quizRow(alice.ID, lesson.ID, 80, 100, true, at(-2, 10)),
		quizRow(bob.ID, lesson.ID, 40, 40, false, at(-2, 11)),
		quizRow(bob.ID, other.ID, 100, 120, true, at(-2, 12)),
		finished,
		runRow(bob.ID, lesson.ID, 1, 20, at(-2, 8), nil),
		runRow(ghost, lesson.ID, 1, 10, at(-1, 8), nil),
	)

	out, err := f.svc.GetLessonAnalytics(f.ctx, lesson.ID)
	require.NoError(t, err)

	s := out.Statistics
	assert.Equal(t, 3, s.TotalStudents)
	assert.Equal(t, 1, s.CompletedStudents)
	assert.InDelta(t, 50.0, s.AvgCompletion, 1e-9)
	assert.Equal(t, 3, s.TotalResponses)
	assert.Equal(t, 1, s.ReviewedResponses)
	assert.Equal(t, 2, s.PendingResponses)
	assert.Equal(t, 2, s.QuizAttempts)
	assert.Equal(t, 1, s.QuizPassed)
	assert.InDelta(t, 50.0, s.QuizPassRate, 1e-9)
	assert.InDelta(t, 60.0, s.QuizAvgScore, 1e-9)
	assert.InDelta(t, 70.0, s.QuizAvgPoints, 1e-9)
	assert.Equal(t, 140, s.QuizTotalPoints)
	assert.Equal(t, 3, s.ChallengeUsers)
	assert.Equal(t, 3, s.ChallengeAttempts)
	assert.Equal(t, 1, s.ChallengeCompleted)
	assert.InDelta(t, 33.33, s.ChallengeRate, 1e-9)
	assert.Equal(t, 1, s.ChallengeNotes)
	assert.Equal(t, 110, s.ChallengePoints)
	assert.InDelta(t, 36.67, s.ChallengeAvgPoints, 1e-9)

	require.Len(t, out.QuizLeaderboard, 2)
	assert.Equal(t, alice.ID, out.QuizLeaderboard[0].UserID)
	assert.Equal(t, "Student alice", out.QuizLeaderboard[0].UserName)
	assert.Equal(t, 40, out.QuizLeaderboard[1].TotalPoints)

	require.Len(t, out.ChallengeLeaderboard, 3)
	assert.Equal(t, alice.ID, out.ChallengeLeaderboard[0].UserID)
	assert.Equal(t, ghost.String(), out.ChallengeLeaderboard[2].UserName)

	assert.Equal(t, []TimelineBucket{
		{Date: "2024-03-01", Started: 2, Completed: 1},
		{Date: "2024-03-03", Started: 1},
	}, out.ProgressTimeline)

	require.Len(t, out.Students, 3)
	assert.Equal(t, bob.ID, out.Students[0].UserID)
	assert.Equal(t, carol.ID, out.Students[2].UserID)
}

func (f *fixture) runWithNotes(userID, lessonID uuid.UUID, points int, completed *time.Time, notes ...string) *types.ChallengeRun {
	run := runRow(userID, lessonID, 1, points, at(-3, 7), completed)
	var days []int
	var daily []types.DailyNote
	for i, n := range notes {
		days = append(days, i+1)
		daily = append(daily, types.DailyNote{Day: i + 1, Note: n, CompletedAt: at(-3+i, 7)})
	}
	run.CompletedDays = datatypes.NewJSONType(days)
	run.DailyNotes = datatypes.NewJSONType(daily)
	return run
}

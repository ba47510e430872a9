package progress

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/progress-engine/internal/data/repos/testutil"
	types "github.com/yungbote/progress-engine/internal/domain"
	domainagg "github.com/yungbote/progress-engine/internal/domain/aggregates"
	"github.com/yungbote/progress-engine/internal/domain/learning"
)

func TestCheckIn_CompletesRunOnce(t *testing.T) {
	f := newFixture(t, TheoryAlwaysComplete)
	u := f.user(t, "alice")
	l := f.lesson(t, testutil.FullLesson())
	in := func(day int, note string) learning.ChallengeCheckIn {
		return learning.ChallengeCheckIn{UserID: u.ID, LessonID: l.ID, ChallengeID: "ch1", Day: day, Note: note, Completed: true}
	}

	run, err := f.svc.CheckIn(f.ctx, in(1, "first"))
	require.NoError(t, err)
	assert.Equal(t, 1, run.AttemptNumber)
	assert.Equal(t, []int{1}, run.Days())
	assert.Equal(t, 10, run.PointsEarned)
	assert.Equal(t, 2, run.CurrentDay)

	run, err = f.svc.CheckIn(f.ctx, in(1, "first, edited"))
	require.NoError(t, err)
	assert.Equal(t, []int{1}, run.Days())
	assert.Equal(t, 10, run.PointsEarned)
	require.Len(t, run.Notes(), 1)
	assert.Equal(t, "first, edited", run.Notes()[0].Note)

	run, err = f.svc.CheckIn(f.ctx, in(2, ""))
	require.NoError(t, err)
	assert.False(t, run.IsCompleted)
	assert.Equal(t, 20, run.PointsEarned)

	f.clock.Advance(24 * time.Hour)
	run, err = f.svc.CheckIn(f.ctx, in(3, "done"))
	require.NoError(t, err)
	assert.True(t, run.IsCompleted)
	require.NotNil(t, run.CompletedAt)
	assert.Equal(t, 3*10+50, run.PointsEarned)
	firstRunID := run.ID

	assert.Equal(t, int64(1), f.count(t, &types.ChallengeRun{}, "is_completed = ?", true))

	next, err := f.svc.CheckIn(f.ctx, in(1, "again"))
	require.NoError(t, err)
	assert.NotEqual(t, firstRunID, next.ID)
	assert.Equal(t, 2, next.AttemptNumber)
	assert.False(t, next.IsCompleted)
	assert.Equal(t, int64(1), f.count(t, &types.ChallengeRun{}, "is_completed = ?", true))
}

func TestCheckIn_Rejections(t *testing.T) {
	f := newFixture(t, TheoryAlwaysComplete)
	u := f.user(t, "bob")
	l := f.lesson(t, testutil.FullLesson())
	noChallenge := f.lesson(t, testutil.LessonSpec{TheoryBlocks: 1})

	_, err := f.svc.CheckIn(f.ctx, learning.ChallengeCheckIn{UserID: u.ID, LessonID: l.ID, ChallengeID: "ch1", Day: 4, Completed: true})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeConflict), "%v", err)

	_, err = f.svc.CheckIn(f.ctx, learning.ChallengeCheckIn{UserID: u.ID, LessonID: l.ID, ChallengeID: "ch1", Day: 0, Completed: true})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeConflict), "%v", err)

	_, err = f.svc.CheckIn(f.ctx, learning.ChallengeCheckIn{UserID: u.ID, LessonID: l.ID, ChallengeID: "other", Day: 1})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound), "%v", err)

	_, err = f.svc.CheckIn(f.ctx, learning.ChallengeCheckIn{UserID: u.ID, LessonID: noChallenge.ID, ChallengeID: "ch1", Day: 1})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound), "%v", err)

	assert.Zero(t, f.count(t, &types.ChallengeRun{}, ""))
}

func TestCheckIn_DefaultDuration(t *testing.T) {
	f := newFixture(t, TheoryAlwaysComplete)
	u := f.user(t, "cat")
	l := f.lesson(t, testutil.LessonSpec{Challenge: &types.ChallengeConfig{ID: "week"}})

	var run *types.ChallengeRun
	var err error
	for day := 1; day <= 7; day++ {
		run, err = f.svc.CheckIn(f.ctx, learning.ChallengeCheckIn{UserID: u.ID, LessonID: l.ID, ChallengeID: "week", Day: day, Completed: true})
		require.NoError(t, err)
	}
	assert.True(t, run.IsCompleted)
	assert.Equal(t, 7*10+50, run.PointsEarned)
}

func TestCheckIn_ConcurrentSameDay(t *testing.T) {
	f := newFixture(t, TheoryAlwaysComplete)
	u := f.user(t, "dan")
	l := f.lesson(t, testutil.FullLesson())

	var wg sync.WaitGroup
	errs := make(chan error, 6)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CheckIn(f.ctx, learning.ChallengeCheckIn{UserID: u.ID, LessonID: l.ID, ChallengeID: "ch1", Day: 2, Completed: true})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	hist, err := f.svc.GetHistory(f.ctx, u.ID, l.ID, "ch1")
	require.NoError(t, err)
	require.Len(t, hist.Runs, 1)
	assert.Equal(t, []int{2}, hist.Runs[0].Days())
	assert.Equal(t, 10, hist.Runs[0].PointsEarned)
}

func TestGetActiveOrLastRunAndHistory(t *testing.T) {
	f := newFixture(t, TheoryAlwaysComplete)
	u := f.user(t, "eve")
	l := f.lesson(t, testutil.FullLesson())

	status, err := f.svc.GetActiveOrLastRun(f.ctx, u.ID, l.ID, "ch1")
	require.NoError(t, err)
	assert.Nil(t, status.Run)
	assert.Equal(t, 0, status.TotalAttempts)
	assert.Equal(t, 1, status.NextAttemptNumber)
	assert.Equal(t, 3, status.DurationDays)

	for day := 1; day <= 3; day++ {
		_, err = f.svc.CheckIn(f.ctx, learning.ChallengeCheckIn{UserID: u.ID, LessonID: l.ID, ChallengeID: "ch1", Day: day, Completed: true})
		require.NoError(t, err)
	}

	status, err = f.svc.GetActiveOrLastRun(f.ctx, u.ID, l.ID, "ch1")
	require.NoError(t, err)
	require.NotNil(t, status.Run)
	assert.True(t, status.Run.IsCompleted)
	assert.Equal(t, 2, status.NextAttemptNumber)
	assert.Equal(t, 80, status.TotalPoints)

	f.clock.Advance(time.Hour)
	_, err = f.svc.CheckIn(f.ctx, learning.ChallengeCheckIn{UserID: u.ID, LessonID: l.ID, ChallengeID: "ch1", Day: 1, Completed: true})
	require.NoError(t, err)

	status, err = f.svc.GetActiveOrLastRun(f.ctx, u.ID, l.ID, "ch1")
	require.NoError(t, err)
	require.NotNil(t, status.Run)
	assert.False(t, status.Run.IsCompleted)
	assert.Equal(t, 2, status.Run.AttemptNumber)
	assert.Equal(t, 2, status.NextAttemptNumber)

	hist, err := f.svc.GetHistory(f.ctx, u.ID, l.ID, "ch1")
	require.NoError(t, err)
	require.Len(t, hist.Runs, 2)
	assert.Equal(t, 2, hist.Runs[0].AttemptNumber)
	assert.Equal(t, 1, hist.Runs[1].AttemptNumber)
	assert.Equal(t, 2, hist.TotalAttempts)
	assert.Equal(t, 80, hist.TotalPoints)
}

func TestGetHistory_UnknownLessonOrChallenge(t *testing.T) {
	f := newFixture(t, TheoryAlwaysComplete)
	u := f.user(t, "gus")
	l := f.lesson(t, testutil.FullLesson())
	noChallenge := f.lesson(t, testutil.LessonSpec{TheoryBlocks: 1})

	_, err := f.svc.GetHistory(f.ctx, u.ID, uuid.New(), "ch1")
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound), "%v", err)

	_, err = f.svc.GetHistory(f.ctx, u.ID, l.ID, "other")
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound), "%v", err)

	_, err = f.svc.GetHistory(f.ctx, u.ID, noChallenge.ID, "ch1")
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound), "%v", err)

	hist, err := f.svc.GetHistory(f.ctx, u.ID, l.ID, "ch1")
	require.NoError(t, err)
	assert.Empty(t, hist.Runs)
	assert.Zero(t, hist.TotalAttempts)
}

func TestListChallengeNotes(t *testing.T) {
	f := newFixture(t, TheoryAlwaysComplete)
	alice := f.user(t, "alice")
	l := f.lesson(t, testutil.FullLesson())

	_, err := f.svc.CheckIn(f.ctx, learning.ChallengeCheckIn{UserID: alice.ID, LessonID: l.ID, ChallengeID: "ch1", Day: 1, Note: "felt great", Completed: true})
	require.NoError(t, err)
	f.clock.Advance(time.Hour)
	_, err = f.svc.CheckIn(f.ctx, learning.ChallengeCheckIn{UserID: alice.ID, LessonID: l.ID, ChallengeID: "ch1", Day: 2, Completed: true})
	require.NoError(t, err)

	// A student missing from the directory keeps the raw id.
	stranger := testutil.SeedUser(t, f.ctx, f.db, "stranger", false)
	_, err = f.svc.CheckIn(f.ctx, learning.ChallengeCheckIn{UserID: stranger.ID, LessonID: l.ID, ChallengeID: "ch1", Day: 1, Note: "hard"})
	require.NoError(t, err)
	require.NoError(t, f.db.Delete(&types.User{}, "id = ?", stranger.ID).Error)

	notes, err := f.svc.ListChallengeNotes(f.ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "hard", notes[0].Note)
	assert.Equal(t, stranger.ID.String(), notes[0].UserName)
	assert.Equal(t, "felt great", notes[1].Note)
	assert.Equal(t, alice.FullName, notes[1].UserName)
}

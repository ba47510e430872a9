package learning

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/progress-engine/internal/data/repos/testutil"
	types "github.com/yungbote/progress-engine/internal/domain"
	"github.com/yungbote/progress-engine/internal/platform/dbctx"
)

func TestLessonProgressRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.WithTx(ctx, tx)
	repo := NewLessonProgressRepo(db, testutil.Logger(t))

	u1 := testutil.SeedUser(t, ctx, tx, "lp1", false)
	u2 := testutil.SeedUser(t, ctx, tx, "lp2", false)
	a := testutil.SeedLesson(t, ctx, tx, testutil.FullLesson())
	b := testutil.SeedLesson(t, ctx, tx, testutil.FullLesson())

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	seed := func(userID, lessonID uuid.UUID, pct int, last time.Time) {
		row := &types.LessonProgress{UserID: userID, LessonID: lessonID, CompletionPercent: pct, StartedAt: last, LastActivityAt: last}
		require.NoError(t, repo.Create(dbc, row))
	}
	seed(u1.ID, a.ID, 50, now)
	seed(u2.ID, a.ID, 100, now.AddDate(0, 0, -10))
	seed(u1.ID, b.ID, 25, now)

	got, err := repo.Get(dbc, u1.ID, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	got.CompletionPercent = 75
	require.NoError(t, repo.Save(dbc, got))

	again, err := repo.Get(dbc, u1.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 75, again.CompletionPercent)

	top, err := repo.TopLessons(dbc, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, a.ID, top[0].LessonID)
	assert.EqualValues(t, 2, top[0].Students)
	assert.InDelta(t, 87.5, top[0].AvgCompletion, 0.001)

	users, err := repo.CountDistinctUsers(dbc)
	require.NoError(t, err)
	assert.EqualValues(t, 2, users)

	recent, err := repo.CountActiveSince(dbc, now.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.EqualValues(t, 2, recent)

	n, err := repo.DeleteByUserAndLesson(dbc, u1.ID, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	missing, err := repo.Get(dbc, u1.ID, a.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	rows, err := repo.ListByUser(dbc, u1.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

package learning

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/progress-engine/internal/data/repos/testutil"
	types "github.com/yungbote/progress-engine/internal/domain"
	"github.com/yungbote/progress-engine/internal/platform/dbctx"
)

func TestTimeActivityRepo_Accumulate(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.WithTx(ctx, tx)
	repo := NewTimeActivityRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "time-user", false)
	lesson := testutil.SeedLesson(t, ctx, tx, testutil.FullLesson())

	t0 := time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC)
	row, err := repo.Accumulate(dbc, u.ID, lesson.ID, 5, 5, t0)
	require.NoError(t, err)
	assert.Equal(t, 5, row.TotalMinutes)

	row, err = repo.Accumulate(dbc, u.ID, lesson.ID, 3, 3, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 8, row.TotalMinutes)
	assert.Equal(t, 8, row.TotalPoints)
	assert.True(t, row.StartedAt.Equal(t0))

	sum, err := repo.SumPointsByUser(dbc, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 8, sum)
}

func TestVideoWatchRepo_Accumulate(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.WithTx(ctx, tx)
	repo := NewVideoWatchRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "video-user", false)
	lesson := testutil.SeedLesson(t, ctx, tx, testutil.FullLesson())
	file := testutil.SeedLessonFile(t, ctx, tx, lesson.ID, "intro.mp4", "video/mp4")

	for _, minutes := range []int{2, 4} {
		_, err := repo.Accumulate(dbc, &types.VideoWatch{
			UserID: u.ID, LessonID: lesson.ID, FileID: file.ID, FileName: file.OriginalName,
			TotalMinutes: minutes, TotalPoints: minutes * 10,
		})
		require.NoError(t, err)
	}

	row, err := repo.Get(dbc, u.ID, lesson.ID, file.ID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, 6, row.TotalMinutes)
	assert.Equal(t, 60, row.TotalPoints)

	rows, err := repo.ListByFile(dbc, file.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	n, err := repo.DeleteByLesson(dbc, lesson.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/progress-engine/internal/data/repos/testutil"
	"github.com/yungbote/progress-engine/internal/platform/dbctx"
)

func TestLessonRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.WithTx(ctx, tx)
	repo := NewLessonRepo(db, testutil.Logger(t))

	full := testutil.SeedLesson(t, ctx, tx, testutil.FullLesson())
	testutil.SeedLesson(t, ctx, tx, testutil.LessonSpec{Title: "Hidden", Inactive: true})

	got, err := repo.GetByID(dbc, full.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	sections, err := got.Sections()
	require.NoError(t, err)
	assert.True(t, sections.HasTheory())
	assert.True(t, sections.HasExercises())
	assert.True(t, sections.HasExercise("ex2"))
	assert.False(t, sections.HasExercise("ex9"))
	require.NotNil(t, sections.Challenge)
	assert.Equal(t, 3, sections.Challenge.DurationDays)
	require.NotNil(t, sections.Quiz)
	assert.Equal(t, "q1", sections.Quiz.ID)

	missing, err := repo.GetByID(dbc, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	active, err := repo.CountActive(dbc)
	require.NoError(t, err)
	assert.EqualValues(t, 1, active)

	list, err := repo.ListActive(dbc)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, full.ID, list[0].ID)
}

func TestLessonFileRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.WithTx(ctx, tx)
	repo := NewLessonFileRepo(db, testutil.Logger(t))

	lesson := testutil.SeedLesson(t, ctx, tx, testutil.FullLesson())
	video := testutil.SeedLessonFile(t, ctx, tx, lesson.ID, "intro.mp4", "video/mp4")
	testutil.SeedLessonFile(t, ctx, tx, lesson.ID, "notes.pdf", "application/pdf")

	got, err := repo.GetByID(dbc, video.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsVideo())

	files, err := repo.ListByLesson(dbc, lesson.ID)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

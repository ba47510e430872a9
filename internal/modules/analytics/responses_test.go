package analytics

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/progress-engine/internal/data/repos/testutil"
	types "github.com/yungbote/progress-engine/internal/domain"
	domainagg "github.com/yungbote/progress-engine/internal/domain/aggregates"
)

func TestListLessonResponses(t *testing.T) {
	f := newFixture(t)
	lesson := f.lesson(t, "Essays")
	alice := f.user(t, "alice")
	ghost := uuid.New()

	f.create(t,
		responseRow(alice.ID, lesson.ID, "ex1", true, at(-2, 9)),
		responseRow(ghost, lesson.ID, "unknown", false, at(-1, 9)),
	)

	out, err := f.svc.ListLessonResponses(f.ctx, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, "Essays", out.LessonTitle)
	require.Equal(t, 2, out.TotalResponses)

	newest := out.Responses[0]
	assert.Equal(t, ghost, newest.UserID)
	assert.Equal(t, ghost.String(), newest.UserName)
	assert.Equal(t, "unknown", newest.ExerciseTitle)

	oldest := out.Responses[1]
	assert.Equal(t, "Student alice", oldest.UserName)
	assert.Equal(t, "Exercise ex1", oldest.ExerciseTitle)
	assert.True(t, oldest.Reviewed)
}

func TestListLessonResponses_UnknownLesson(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ListLessonResponses(f.ctx, uuid.New())
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound))
}

func TestGetFileAnalytics(t *testing.T) {
	f := newFixture(t)
	lesson := f.lesson(t, "Media")
	alice, bob := f.user(t, "alice"), f.user(t, "bob")
	video := testutil.SeedLessonFile(t, f.ctx, f.db, lesson.ID, "clip.mp4", "video/mp4")
	pdf := testutil.SeedLessonFile(t, f.ctx, f.db, lesson.ID, "notes.pdf", "application/pdf")

	action := func(userID, fileID uuid.UUID, kind types.FileActionKind, day int) *types.FileAction {
		return &types.FileAction{UserID: userID, LessonID: lesson.ID, FileID: fileID, Action: kind, CreatedAt: at(day, 9)}
	}
	f.create(t,
		action(alice.ID, video.ID, types.FileActionView, -3),
		action(bob.ID, video.ID, types.FileActionView, -2),
		action(alice.ID, video.ID, types.FileActionView, -1),
		action(alice.ID, video.ID, types.FileActionDownload, -1),
		action(bob.ID, pdf.ID, types.FileActionDownload, -1),
		&types.VideoWatch{UserID: alice.ID, LessonID: lesson.ID, FileID: video.ID, TotalMinutes: 6, TotalPoints: 60, LastUpdated: at(-1, 9)},
		&types.VideoWatch{UserID: bob.ID, LessonID: lesson.ID, FileID: video.ID, TotalMinutes: 3, TotalPoints: 30, LastUpdated: at(-2, 9)},
	)

	out, err := f.svc.GetFileAnalytics(f.ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, FileStatistics{TotalViews: 3, TotalDownloads: 1, UniqueViewers: 2, UniqueDownloaders: 1}, out.Statistics)
	require.Len(t, out.UserActions, 2)
	assert.Equal(t, alice.ID, out.UserActions[0].UserID)
	assert.Equal(t, "Student alice", out.UserActions[0].UserName)
	assert.Equal(t, 2, out.UserActions[0].Views)
	assert.Equal(t, 1, out.UserActions[0].Downloads)
	assert.True(t, out.UserActions[0].LastAction.Equal(at(-1, 9)))
	require.NotNil(t, out.Video)
	assert.Equal(t, VideoStats{TotalMinutes: 9, TotalPoints: 90, UniqueWatchers: 2, AvgMinutes: 4.5}, *out.Video)

	doc, err := f.svc.GetFileAnalytics(f.ctx, pdf.ID)
	require.NoError(t, err)
	assert.Nil(t, doc.Video)
	assert.Equal(t, 1, doc.Statistics.TotalDownloads)

	_, err = f.svc.GetFileAnalytics(f.ctx, uuid.New())
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound))
}

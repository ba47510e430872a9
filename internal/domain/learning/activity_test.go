package learning

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/progress-engine/internal/domain/aggregates"
)

func TestValidate(t *testing.T) {
	u, l := uuid.New(), uuid.New()

	cases := []struct {
		name string
		in   Activity
		code aggregates.ErrorCode
	}{
		{"exercise ok", ExerciseSubmission{UserID: u, LessonID: l, ExerciseID: "ex-1", Text: "answer"}, ""},
		{"exercise missing lesson", ExerciseSubmission{UserID: u, ExerciseID: "ex-1", Text: "answer"}, aggregates.CodeValidation},
		{"exercise empty text", ExerciseSubmission{UserID: u, LessonID: l, ExerciseID: "ex-1"}, aggregates.CodeValidation},
		{"quiz ok", QuizSubmission{UserID: u, LessonID: l, QuizID: "q", ScorePercent: 80, Answers: json.RawMessage(`[1,2]`)}, ""},
		{"quiz no answers", QuizSubmission{UserID: u, LessonID: l, QuizID: "q", ScorePercent: 0}, ""},
		{"quiz score over 100", QuizSubmission{UserID: u, LessonID: l, QuizID: "q", ScorePercent: 101}, aggregates.CodeConflict},
		{"quiz answers object", QuizSubmission{UserID: u, LessonID: l, QuizID: "q", ScorePercent: 50, Answers: json.RawMessage(`{"a":1}`)}, aggregates.CodeConflict},
		{"checkin day zero", ChallengeCheckIn{UserID: u, LessonID: l, ChallengeID: "c", Day: 0}, aggregates.CodeConflict},
		{"time zero minutes", TimeSample{UserID: u, LessonID: l}, aggregates.CodeValidation},
		{"video missing file", VideoSample{UserID: u, LessonID: l, Minutes: 3}, aggregates.CodeValidation},
		{"file bad action", FileEvent{UserID: u, LessonID: l, FileID: uuid.New(), Action: "share"}, aggregates.CodeConflict},
		{"file ok", FileEvent{UserID: u, LessonID: l, FileID: uuid.New(), Action: FileActionDownload}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate("Test.Validate", tc.in)
			if tc.code == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tc.code, aggregates.CodeOf(err))
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	assert.True(t, aggregates.IsCode(Validate("Test.Validate", nil), aggregates.CodeValidation))
}

func TestChallengeRunDaysAndNotes(t *testing.T) {
	run := &ChallengeRun{}
	assert.True(t, run.MarkDay(3))
	assert.True(t, run.MarkDay(1))
	assert.False(t, run.MarkDay(3))
	assert.Equal(t, []int{1, 3}, run.Days())

	run.PutNote(2, "first", fixedTime)
	run.PutNote(2, "second", fixedTime)
	run.PutNote(1, "one", fixedTime)
	notes := run.Notes()
	require.Len(t, notes, 2)
	assert.Equal(t, 1, notes[0].Day)
	assert.Equal(t, "second", notes[1].Note)
}

var fixedTime = mustTime("2026-03-01T10:00:00Z")

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

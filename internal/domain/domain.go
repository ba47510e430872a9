package domain

import (
	"github.com/yungbote/progress-engine/internal/domain/catalog"
	"github.com/yungbote/progress-engine/internal/domain/learning"
	"github.com/yungbote/progress-engine/internal/domain/user"
)

const (
	FileActionView     = learning.FileActionView
	FileActionDownload = learning.FileActionDownload
)

type User = user.User

type Lesson = catalog.Lesson
type LessonFile = catalog.LessonFile
type LessonSections = catalog.Sections
type ChallengeConfig = catalog.ChallengeConfig
type QuizConfig = catalog.QuizConfig
type Exercise = catalog.Exercise
type TheoryBlock = catalog.TheoryBlock

type ExerciseResponse = learning.ExerciseResponse
type QuizAttempt = learning.QuizAttempt
type ChallengeRun = learning.ChallengeRun
type DailyNote = learning.DailyNote
type TimeActivity = learning.TimeActivity
type VideoWatch = learning.VideoWatch
type FileAction = learning.FileAction
type FileActionKind = learning.FileActionKind
type LessonProgress = learning.LessonProgress

// Models lists every table owned or read by the engine, in migration order.
func Models() []any {
	return []any{
		&User{},
		&Lesson{},
		&LessonFile{},
		&ExerciseResponse{},
		&QuizAttempt{},
		&ChallengeRun{},
		&TimeActivity{},
		&VideoWatch{},
		&FileAction{},
		&LessonProgress{},
	}
}

package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/progress-engine/internal/data/repos/catalog"
	"github.com/yungbote/progress-engine/internal/data/repos/learning"
	"github.com/yungbote/progress-engine/internal/data/repos/user"
	"github.com/yungbote/progress-engine/internal/platform/logger"
)

type UserRepo = user.UserRepo

type LessonRepo = catalog.LessonRepo
type LessonFileRepo = catalog.LessonFileRepo

type ExerciseResponseRepo = learning.ExerciseResponseRepo
type QuizAttemptRepo = learning.QuizAttemptRepo
type ChallengeRunRepo = learning.ChallengeRunRepo
type TimeActivityRepo = learning.TimeActivityRepo
type VideoWatchRepo = learning.VideoWatchRepo
type FileActionRepo = learning.FileActionRepo
type LessonProgressRepo = learning.LessonProgressRepo
type LessonParticipation = learning.LessonParticipation

// Set is every repository the engine uses, built over one store handle.
type Set struct {
	Users             UserRepo
	Lessons           LessonRepo
	LessonFiles       LessonFileRepo
	ExerciseResponses ExerciseResponseRepo
	QuizAttempts      QuizAttemptRepo
	ChallengeRuns     ChallengeRunRepo
	TimeActivity      TimeActivityRepo
	VideoWatch        VideoWatchRepo
	FileActions       FileActionRepo
	Progress          LessonProgressRepo
}

func NewSet(db *gorm.DB, log *logger.Logger) Set {
	return Set{
		Users:             user.NewUserRepo(db, log),
		Lessons:           catalog.NewLessonRepo(db, log),
		LessonFiles:       catalog.NewLessonFileRepo(db, log),
		ExerciseResponses: learning.NewExerciseResponseRepo(db, log),
		QuizAttempts:      learning.NewQuizAttemptRepo(db, log),
		ChallengeRuns:     learning.NewChallengeRunRepo(db, log),
		TimeActivity:      learning.NewTimeActivityRepo(db, log),
		VideoWatch:        learning.NewVideoWatchRepo(db, log),
		FileActions:       learning.NewFileActionRepo(db, log),
		Progress:          learning.NewLessonProgressRepo(db, log),
	}
}

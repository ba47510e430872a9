// Package progress owns the write side of the engine: the activity ledger,
// the per-lesson progress aggregator, the challenge tracker and cascades.
package progress

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/progress-engine/internal/data/aggregates"
	"github.com/yungbote/progress-engine/internal/data/repos"
	types "github.com/yungbote/progress-engine/internal/domain"
	"github.com/yungbote/progress-engine/internal/domain/learning"
	"github.com/yungbote/progress-engine/internal/modules/progress/scoring"
	"github.com/yungbote/progress-engine/internal/observability"
	"github.com/yungbote/progress-engine/internal/platform/logger"
)

// TheoryPolicy decides when the theory section of a lesson counts as done.
type TheoryPolicy string

const (
	// TheoryAlwaysComplete counts theory as read whenever the lesson has it.
	TheoryAlwaysComplete TheoryPolicy = "always_complete"
	// TheoryActivityBased marks theory read once any activity exists for the lesson.
	TheoryActivityBased TheoryPolicy = "activity_based"
)

func ParseTheoryPolicy(raw string) (TheoryPolicy, bool) {
	switch TheoryPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", TheoryAlwaysComplete:
		return TheoryAlwaysComplete, true
	case TheoryActivityBased:
		return TheoryActivityBased, true
	default:
		return TheoryAlwaysComplete, false
	}
}

type Ledger interface {
	RecordExerciseResponse(ctx context.Context, in learning.ExerciseSubmission) (ExerciseResult, error)
	RecordQuizAttempt(ctx context.Context, in learning.QuizSubmission) (QuizResult, error)
	RecordTimeActivity(ctx context.Context, in learning.TimeSample) (AccumulatorResult, error)
	RecordVideoWatch(ctx context.Context, in learning.VideoSample) (AccumulatorResult, error)
	RecordFileAction(ctx context.Context, in learning.FileEvent) (*types.FileAction, error)
	ListExerciseResponses(ctx context.Context, userID, lessonID uuid.UUID) ([]*types.ExerciseResponse, error)
	ListQuizAttempts(ctx context.Context, userID, lessonID uuid.UUID) (QuizAttempts, error)
	GetTimeActivity(ctx context.Context, userID, lessonID uuid.UUID) (*types.TimeActivity, error)
	ReviewExerciseResponse(ctx context.Context, responseID, reviewerID uuid.UUID, comment string) (*types.ExerciseResponse, error)
}

type Aggregator interface {
	RecomputeProgress(ctx context.Context, userID, lessonID uuid.UUID) (*types.LessonProgress, error)
	GetProgress(ctx context.Context, userID, lessonID uuid.UUID) (*types.LessonProgress, error)
	ListProgressForUser(ctx context.Context, userID uuid.UUID) ([]*types.LessonProgress, error)
}

type ChallengeTracker interface {
	CheckIn(ctx context.Context, in learning.ChallengeCheckIn) (*types.ChallengeRun, error)
	GetActiveOrLastRun(ctx context.Context, userID, lessonID uuid.UUID, challengeID string) (ChallengeStatus, error)
	GetHistory(ctx context.Context, userID, lessonID uuid.UUID, challengeID string) (ChallengeHistory, error)
	ListChallengeNotes(ctx context.Context, lessonID uuid.UUID) ([]ChallengeNote, error)
}

type CascadeManager interface {
	DeleteLesson(ctx context.Context, lessonID uuid.UUID) (map[string]int64, error)
	ResetUserLesson(ctx context.Context, userID, lessonID uuid.UUID) (map[string]int64, error)
}

type Service interface {
	Ledger
	Aggregator
	ChallengeTracker
	CascadeManager
}

type UsecasesDeps struct {
	DB      *gorm.DB
	Log     *logger.Logger
	Repos   repos.Set
	Writer  *aggregates.Writer
	Metrics *observability.Metrics

	Rates  scoring.Rates
	Theory TheoryPolicy
	Now    func() time.Time
}

type Usecases struct {
	deps UsecasesDeps
}

var _ Service = Usecases{}

func New(deps UsecasesDeps) Usecases {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	deps.Log = deps.Log.With("module", "progress")
	if deps.Writer == nil {
		deps.Writer = aggregates.NewWriter(aggregates.BaseDeps{
			DB:    deps.DB,
			Log:   deps.Log,
			Hooks: aggregates.NewObservabilityHooks(deps.Metrics),
		})
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if p, ok := ParseTheoryPolicy(string(deps.Theory)); ok {
		deps.Theory = p
	} else {
		deps.Log.Warn("unknown theory policy, using default", "policy", deps.Theory, "default", TheoryAlwaysComplete)
		deps.Theory = TheoryAlwaysComplete
	}
	deps.Rates = deps.Rates.Normalize()
	return Usecases{deps: deps}
}

func (u Usecases) WithLog(log *logger.Logger) Usecases {
	u.deps.Log = log
	return u
}

func (u Usecases) now() time.Time {
	return u.deps.Now().UTC()
}

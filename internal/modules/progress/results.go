package progress

import (
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/progress-engine/internal/domain"
)

type ExerciseResult struct {
	ID          uuid.UUID `json:"id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type QuizResult struct {
	ID           uuid.UUID `json:"id"`
	PointsEarned int       `json:"points_earned"`
}

// AccumulatorResult reports the stored totals after a time or video sample
// and the points this sample added.
type AccumulatorResult struct {
	TotalMinutes int `json:"total_minutes"`
	TotalPoints  int `json:"total_points"`
	PointsEarned int `json:"points_earned"`
}

type QuizAttempts struct {
	Attempts      []*types.QuizAttempt `json:"attempts"`
	TotalAttempts int                  `json:"total_attempts"`
	BestScore     int                  `json:"best_score"`
	TotalPoints   int                  `json:"total_points"`
}

type ChallengeStatus struct {
	Run               *types.ChallengeRun `json:"run,omitempty"`
	TotalAttempts     int                 `json:"total_attempts"`
	TotalPoints       int                 `json:"total_points"`
	NextAttemptNumber int                 `json:"attempt_number"`
	DurationDays      int                 `json:"duration_days"`
}

type ChallengeHistory struct {
	Runs          []*types.ChallengeRun `json:"attempts"`
	TotalAttempts int                   `json:"total_attempts"`
	TotalPoints   int                   `json:"total_points"`
}

type ChallengeNote struct {
	UserID        uuid.UUID `json:"user_id"`
	UserName      string    `json:"user_name"`
	AttemptNumber int       `json:"attempt_number"`
	Day           int       `json:"day"`
	Note          string    `json:"note"`
	CompletedAt   time.Time `json:"completed_at"`
}

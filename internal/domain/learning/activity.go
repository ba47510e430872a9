package learning

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/yungbote/progress-engine/internal/domain/aggregates"
)

type ActivityKind string

const (
	KindExercise  ActivityKind = "exercise"
	KindQuiz      ActivityKind = "quiz"
	KindChallenge ActivityKind = "challenge"
	KindTime      ActivityKind = "time"
	KindVideo     ActivityKind = "video"
	KindFile      ActivityKind = "file"
)

// Activity is one client signal entering the ledger. Each kind has its own
// struct with explicit fields; Validate checks it before any store access.
type Activity interface {
	Kind() ActivityKind
	Owner() (userID, lessonID uuid.UUID)
}

type ExerciseSubmission struct {
	UserID     uuid.UUID `json:"user_id" validate:"required"`
	LessonID   uuid.UUID `json:"lesson_id" validate:"required"`
	ExerciseID string    `json:"exercise_id" validate:"required,max=128"`
	Text       string    `json:"response_text" validate:"required,max=20000"`
}

type QuizSubmission struct {
	UserID       uuid.UUID       `json:"user_id" validate:"required"`
	LessonID     uuid.UUID       `json:"lesson_id" validate:"required"`
	QuizID       string          `json:"quiz_id" validate:"required,max=128"`
	ScorePercent int             `json:"score" validate:"gte=0,lte=100"`
	Passed       bool            `json:"passed"`
	Answers      json.RawMessage `json:"answers" validate:"json_array"`
}

type ChallengeCheckIn struct {
	UserID      uuid.UUID `json:"user_id" validate:"required"`
	LessonID    uuid.UUID `json:"lesson_id" validate:"required"`
	ChallengeID string    `json:"challenge_id" validate:"required,max=128"`
	Day         int       `json:"day" validate:"gte=1"`
	Note        string    `json:"note" validate:"max=5000"`
	Completed   bool      `json:"completed"`
}

type TimeSample struct {
	UserID   uuid.UUID `json:"user_id" validate:"required"`
	LessonID uuid.UUID `json:"lesson_id" validate:"required"`
	Minutes  int       `json:"minutes_spent" validate:"gt=0,lte=1440"`
}

type VideoSample struct {
	UserID   uuid.UUID `json:"user_id" validate:"required"`
	LessonID uuid.UUID `json:"lesson_id" validate:"required"`
	FileID   uuid.UUID `json:"file_id" validate:"required"`
	Minutes  int       `json:"minutes_watched" validate:"gt=0,lte=1440"`
}

type FileEvent struct {
	UserID   uuid.UUID      `json:"user_id" validate:"required"`
	LessonID uuid.UUID      `json:"lesson_id" validate:"required"`
	FileID   uuid.UUID      `json:"file_id" validate:"required"`
	Action   FileActionKind `json:"action" validate:"oneof=view download"`
}

func (ExerciseSubmission) Kind() ActivityKind { return KindExercise }
func (QuizSubmission) Kind() ActivityKind     { return KindQuiz }
func (ChallengeCheckIn) Kind() ActivityKind   { return KindChallenge }
func (TimeSample) Kind() ActivityKind         { return KindTime }
func (VideoSample) Kind() ActivityKind        { return KindVideo }
func (FileEvent) Kind() ActivityKind          { return KindFile }

func (a ExerciseSubmission) Owner() (uuid.UUID, uuid.UUID) { return a.UserID, a.LessonID }
func (a QuizSubmission) Owner() (uuid.UUID, uuid.UUID)     { return a.UserID, a.LessonID }
func (a ChallengeCheckIn) Owner() (uuid.UUID, uuid.UUID)   { return a.UserID, a.LessonID }
func (a TimeSample) Owner() (uuid.UUID, uuid.UUID)         { return a.UserID, a.LessonID }
func (a VideoSample) Owner() (uuid.UUID, uuid.UUID)        { return a.UserID, a.LessonID }
func (a FileEvent) Owner() (uuid.UUID, uuid.UUID)          { return a.UserID, a.LessonID }

var activityValidate *validator.Validate

func init() {
	activityValidate = validator.New()
	_ = activityValidate.RegisterValidation("json_array", validateJSONArray)
}

// validateJSONArray accepts an absent payload or a JSON array.
func validateJSONArray(fl validator.FieldLevel) bool {
	raw, ok := fl.Field().Interface().(json.RawMessage)
	if !ok {
		return false
	}
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return true
	}
	var arr []json.RawMessage
	return json.Unmarshal([]byte(s), &arr) == nil
}

// Fields whose failures describe a payload the ledger refuses to persist,
// rather than a missing or oversized input.
var conflictFields = map[string]bool{
	"ScorePercent": true,
	"Answers":      true,
	"Action":       true,
	"Day":          true,
}

// Validate checks an activity. Missing or oversized fields are validation
// errors. Out-of-range scores and days, malformed answers and unknown file
// actions are conflicts.
func Validate(op string, a Activity) error {
	if a == nil {
		return aggregates.Validation(op, "activity is required")
	}
	err := activityValidate.Struct(a)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return aggregates.Wrap(aggregates.CodeValidation, op, err)
	}
	fe := verrs[0]
	code := aggregates.CodeValidation
	if conflictFields[fe.Field()] {
		code = aggregates.CodeConflict
	}
	return aggregates.NewError(code, op, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()), err).
		WithKeys("kind", string(a.Kind()))
}

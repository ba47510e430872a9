package catalog

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Lesson is owned by the authoring service. The engine reads which sections
// exist and the scoring parameters attached to the challenge and quiz.
type Lesson struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title    string    `gorm:"not null;column:title" json:"title"`
	Module   string    `gorm:"column:module" json:"module,omitempty"`
	Order    int       `gorm:"column:order_index;not null;default:0" json:"order"`
	IsActive bool      `gorm:"not null;column:is_active;index" json:"is_active"`

	Theory    datatypes.JSON `gorm:"column:theory" json:"theory,omitempty"`
	Exercises datatypes.JSON `gorm:"column:exercises" json:"exercises,omitempty"`
	Challenge datatypes.JSON `gorm:"column:challenge" json:"challenge,omitempty"`
	Quiz      datatypes.JSON `gorm:"column:quiz" json:"quiz,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Lesson) TableName() string { return "lesson" }

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

type TheoryBlock struct {
	ID      string `json:"id,omitempty"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Order   int    `json:"order"`
}

type Exercise struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Instructions string `json:"instructions,omitempty"`
	Order        int    `json:"order"`
}

// ChallengeConfig carries the multi-day challenge definition. Zero scoring
// fields mean "use the engine default".
type ChallengeConfig struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	DurationDays int    `json:"duration_days,omitempty"`
	PointsPerDay int    `json:"points_per_day,omitempty"`
	BonusPoints  *int   `json:"bonus_points,omitempty"`
}

type QuizConfig struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	PassingScore     int    `json:"passing_score,omitempty"`
	PointsPerPercent *int   `json:"points_per_percent,omitempty"`
	BonusPoints      *int   `json:"bonus_points,omitempty"`
}

// Sections is the decoded section set of a lesson.
type Sections struct {
	Theory    []TheoryBlock
	Exercises []Exercise
	Challenge *ChallengeConfig
	Quiz      *QuizConfig
}

func (s Sections) HasTheory() bool    { return len(s.Theory) > 0 }
func (s Sections) HasExercises() bool { return len(s.Exercises) > 0 }
func (s Sections) HasChallenge() bool { return s.Challenge != nil }
func (s Sections) HasQuiz() bool      { return s.Quiz != nil }

func (s Sections) HasExercise(id string) bool {
	for _, ex := range s.Exercises {
		if ex.ID == id {
			return true
		}
	}
	return false
}

// Sections decodes the JSON section columns. Absent, empty or null columns
// decode to a missing section.
func (l *Lesson) Sections() (Sections, error) {
	var out Sections
	if l == nil {
		return out, nil
	}
	if err := decodeSection(l.Theory, &out.Theory); err != nil {
		return out, err
	}
	if err := decodeSection(l.Exercises, &out.Exercises); err != nil {
		return out, err
	}
	if err := decodeSection(l.Challenge, &out.Challenge); err != nil {
		return out, err
	}
	if err := decodeSection(l.Quiz, &out.Quiz); err != nil {
		return out, err
	}
	return out, nil
}

func decodeSection(raw datatypes.JSON, dst any) error {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil
	}
	return json.Unmarshal([]byte(s), dst)
}

// MustJSON is used by seeders and tests to fill section columns.
func MustJSON(v any) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return datatypes.JSON(b)
}

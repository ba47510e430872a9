package learning

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DailyNote struct {
	Day         int       `json:"day"`
	Note        string    `json:"note"`
	CompletedAt time.Time `json:"completed_at"`
}

// ChallengeRun is one attempt cycle through a multi-day challenge. A run is
// active while IsCompleted is false; at most one run per
// (user, lesson, challenge) is active.
type ChallengeRun struct {
	ID            uuid.UUID                       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID                       `gorm:"type:uuid;not null;index:idx_challenge_run_key,priority:1" json:"user_id"`
	LessonID      uuid.UUID                       `gorm:"type:uuid;not null;index:idx_challenge_run_key,priority:2;index" json:"lesson_id"`
	ChallengeID   string                          `gorm:"column:challenge_id;not null;index:idx_challenge_run_key,priority:3" json:"challenge_id"`
	AttemptNumber int                             `gorm:"column:attempt_number;not null" json:"attempt_number"`
	CurrentDay    int                             `gorm:"column:current_day;not null;default:1" json:"current_day"`
	CompletedDays datatypes.JSONType[[]int]       `gorm:"column:completed_days" json:"completed_days"`
	DailyNotes    datatypes.JSONType[[]DailyNote] `gorm:"column:daily_notes" json:"daily_notes"`
	IsCompleted   bool                            `gorm:"column:is_completed;not null;default:false" json:"is_completed"`
	StartedAt     time.Time                       `gorm:"column:started_at;not null" json:"started_at"`
	CompletedAt   *time.Time                      `gorm:"column:completed_at;index" json:"completed_at,omitempty"`
	PointsEarned  int                             `gorm:"column:points_earned;not null;default:0" json:"points_earned"`
	UpdatedAt     time.Time                       `gorm:"not null" json:"updated_at"`
}

func (ChallengeRun) TableName() string { return "challenge_run" }

func (r *ChallengeRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r *ChallengeRun) Days() []int {
	return r.CompletedDays.Data()
}

func (r *ChallengeRun) Notes() []DailyNote {
	return r.DailyNotes.Data()
}

func (r *ChallengeRun) HasDay(day int) bool {
	for _, d := range r.Days() {
		if d == day {
			return true
		}
	}
	return false
}

// MarkDay adds day to the completed set. The set only grows.
func (r *ChallengeRun) MarkDay(day int) bool {
	if r.HasDay(day) {
		return false
	}
	days := append(append([]int(nil), r.Days()...), day)
	sort.Ints(days)
	r.CompletedDays = datatypes.NewJSONType(days)
	return true
}

// PutNote stores the note for a day; the last write per day wins.
func (r *ChallengeRun) PutNote(day int, note string, at time.Time) {
	notes := append([]DailyNote(nil), r.Notes()...)
	for i := range notes {
		if notes[i].Day == day {
			notes[i] = DailyNote{Day: day, Note: note, CompletedAt: at}
			r.DailyNotes = datatypes.NewJSONType(notes)
			return
		}
	}
	notes = append(notes, DailyNote{Day: day, Note: note, CompletedAt: at})
	sort.Slice(notes, func(i, j int) bool { return notes[i].Day < notes[j].Day })
	r.DailyNotes = datatypes.NewJSONType(notes)
}

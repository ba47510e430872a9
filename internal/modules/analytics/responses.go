package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	domainagg "github.com/yungbote/progress-engine/internal/domain/aggregates"
	"github.com/yungbote/progress-engine/internal/platform/dbctx"
)

type ResponseView struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	UserName        string     `json:"user_name"`
	ExerciseID      string     `json:"exercise_id"`
	ExerciseTitle   string     `json:"exercise_title"`
	ResponseText    string     `json:"response_text"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	Reviewed        bool       `json:"reviewed"`
	ReviewerComment *string    `json:"admin_comment,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy      *uuid.UUID `json:"reviewed_by,omitempty"`
}

type LessonResponses struct {
	LessonID       uuid.UUID      `json:"lesson_id"`
	LessonTitle    string         `json:"lesson_title"`
	TotalResponses int            `json:"total_responses"`
	Responses      []ResponseView `json:"responses"`
}

// ListLessonResponses is the review queue for one lesson, newest first.
func (u Usecases) ListLessonResponses(ctx context.Context, lessonID uuid.UUID) (out *LessonResponses, err error) {
	const op = "Analytics.ListLessonResponses"
	start := time.Now()
	defer func() { u.observe("responses", start, err) }()

	if lessonID == uuid.Nil {
		return nil, domainagg.Validation(op, "lesson_id is required")
	}
	dbc := dbctx.New(ctx)
	keys := []string{"lesson_id", lessonID.String()}

	lesson, err := u.deps.Repos.Lessons.GetByID(dbc, lessonID)
	if err != nil {
		return nil, storeErr(op, err, keys...)
	}
	if lesson == nil {
		return nil, domainagg.NotFound(op, "lesson").WithKeys(keys...)
	}
	rows, err := u.deps.Repos.ExerciseResponses.ListByLesson(dbc, lessonID)
	if err != nil {
		return nil, storeErr(op, err, keys...)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].SubmittedAt.Equal(rows[j].SubmittedAt) {
			return rows[i].SubmittedAt.After(rows[j].SubmittedAt)
		}
		return rows[i].ID.String() < rows[j].ID.String()
	})

	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.UserID)
	}
	names := u.displayNames(dbc, ids)
	labels := labelsOf(lesson)

	out = &LessonResponses{
		LessonID:       lesson.ID,
		LessonTitle:    labels.title,
		TotalResponses: len(rows),
		Responses:      make([]ResponseView, 0, len(rows)),
	}
	for _, r := range rows {
		title := labels.exercises[r.ExerciseID]
		if title == "" {
			title = r.ExerciseID
		}
		out.Responses = append(out.Responses, ResponseView{
			ID:              r.ID,
			UserID:          r.UserID,
			UserName:        nameOr(names, r.UserID),
			ExerciseID:      r.ExerciseID,
			ExerciseTitle:   title,
			ResponseText:    r.ResponseText,
			SubmittedAt:     r.SubmittedAt,
			Reviewed:        r.Reviewed,
			ReviewerComment: r.ReviewerComment,
			ReviewedAt:      r.ReviewedAt,
			ReviewedBy:      r.ReviewedBy,
		})
	}
	return out, nil
}

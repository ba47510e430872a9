package progress

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/progress-engine/internal/data/aggregates"
	types "github.com/yungbote/progress-engine/internal/domain"
	domainagg "github.com/yungbote/progress-engine/internal/domain/aggregates"
	"github.com/yungbote/progress-engine/internal/domain/learning"
	"github.com/yungbote/progress-engine/internal/platform/dbctx"
)

func (u Usecases) loadLesson(dbc dbctx.Context, op string, lessonID uuid.UUID) (*types.Lesson, types.LessonSections, error) {
	lesson, err := u.deps.Repos.Lessons.GetByID(dbc, lessonID)
	if err != nil {
		return nil, types.LessonSections{}, err
	}
	if lesson == nil {
		return nil, types.LessonSections{}, domainagg.NotFound(op, "lesson").WithKeys("lesson_id", lessonID.String())
	}
	sections, err := lesson.Sections()
	if err != nil {
		return nil, types.LessonSections{}, domainagg.NewError(domainagg.CodeInternal, op, "decode lesson sections", err).
			WithKeys("lesson_id", lessonID.String())
	}
	return lesson, sections, nil
}

// loadFile resolves a file and checks it belongs to the lesson.
func (u Usecases) loadFile(dbc dbctx.Context, op string, lessonID, fileID uuid.UUID) (*types.LessonFile, error) {
	file, err := u.deps.Repos.LessonFiles.GetByID(dbc, fileID)
	if err != nil {
		return nil, err
	}
	if file == nil || file.LessonID != lessonID {
		return nil, domainagg.NotFound(op, "file").WithKeys("file_id", fileID.String(), "lesson_id", lessonID.String())
	}
	return file, nil
}

// write runs fn as one locked transaction for the activity owner and counts
// the outcome per activity kind.
func (u Usecases) write(ctx context.Context, op string, kind learning.ActivityKind, userID, lessonID uuid.UUID, fn func(dbc dbctx.Context) error) error {
	err := u.deps.Writer.Write(ctx, op, aggregates.Key{UserID: userID, LessonID: lessonID}, fn)
	if kind != "" {
		u.deps.Metrics.IncLedgerWrite(string(kind), writeStatus(err))
	}
	return err
}

func writeStatus(err error) string {
	if err == nil {
		return "success"
	}
	if code := domainagg.CodeOf(err); code != "" {
		return string(code)
	}
	return "failure"
}

// readErr maps a read-path failure the same way the writer maps write failures.
func readErr(op string, err error, keys ...string) error {
	return aggregates.MapError(op, err, keys...)
}

func keyPairs(userID, lessonID uuid.UUID) []string {
	return []string{"user_id", userID.String(), "lesson_id", lessonID.String()}
}

func challengeMatches(cfg *types.ChallengeConfig, challengeID string) bool {
	if cfg == nil {
		return false
	}
	id := strings.TrimSpace(cfg.ID)
	return id == "" || id == strings.TrimSpace(challengeID)
}

func quizMatches(cfg *types.QuizConfig, quizID string) bool {
	if cfg == nil {
		return false
	}
	id := strings.TrimSpace(cfg.ID)
	return id == "" || id == strings.TrimSpace(quizID)
}

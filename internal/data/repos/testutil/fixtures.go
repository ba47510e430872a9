package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/progress-engine/internal/domain"
	"github.com/yungbote/progress-engine/internal/domain/catalog"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, username string, isAdmin bool) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Username: username,
		FullName: "Student " + username,
		IsAdmin:  isAdmin,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// LessonSpec describes which sections a seeded lesson has.
type LessonSpec struct {
	Title        string
	TheoryBlocks int
	ExerciseIDs  []string
	Challenge    *types.ChallengeConfig
	Quiz         *types.QuizConfig
	Inactive     bool
}

func SeedLesson(tb testing.TB, ctx context.Context, tx *gorm.DB, spec LessonSpec) *types.Lesson {
	tb.Helper()
	title := spec.Title
	if title == "" {
		title = "Lesson"
	}
	l := &types.Lesson{
		ID:       uuid.New(),
		Title:    title,
		IsActive: !spec.Inactive,
	}
	if spec.TheoryBlocks > 0 {
		blocks := make([]types.TheoryBlock, 0, spec.TheoryBlocks)
		for i := 0; i < spec.TheoryBlocks; i++ {
			blocks = append(blocks, types.TheoryBlock{Title: fmt.Sprintf("Block %d", i+1), Content: "text", Order: i})
		}
		l.Theory = catalog.MustJSON(blocks)
	}
	if len(spec.ExerciseIDs) > 0 {
		exercises := make([]types.Exercise, 0, len(spec.ExerciseIDs))
		for i, id := range spec.ExerciseIDs {
			exercises = append(exercises, types.Exercise{ID: id, Title: "Exercise " + id, Order: i})
		}
		l.Exercises = catalog.MustJSON(exercises)
	}
	if spec.Challenge != nil {
		l.Challenge = catalog.MustJSON(spec.Challenge)
	}
	if spec.Quiz != nil {
		l.Quiz = catalog.MustJSON(spec.Quiz)
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return l
}

// FullLesson has every section: two theory blocks, exercises ex1 and ex2,
// a 3-day challenge and a quiz.
func FullLesson() LessonSpec {
	return LessonSpec{
		Title:        "Full lesson",
		TheoryBlocks: 2,
		ExerciseIDs:  []string{"ex1", "ex2"},
		Challenge:    &types.ChallengeConfig{ID: "ch1", Title: "Challenge", DurationDays: 3},
		Quiz:         &types.QuizConfig{ID: "q1", Title: "Quiz"},
	}
}

func SeedLessonFile(tb testing.TB, ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, name, mimeType string) *types.LessonFile {
	tb.Helper()
	f := &types.LessonFile{
		ID:           uuid.New(),
		LessonID:     lessonID,
		OriginalName: name,
		MimeType:     mimeType,
	}
	if err := tx.WithContext(ctx).Create(f).Error; err != nil {
		tb.Fatalf("seed lesson file: %v", err)
	}
	return f
}

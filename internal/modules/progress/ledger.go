package progress

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/progress-engine/internal/domain"
	domainagg "github.com/yungbote/progress-engine/internal/domain/aggregates"
	"github.com/yungbote/progress-engine/internal/domain/learning"
	"github.com/yungbote/progress-engine/internal/modules/progress/scoring"
	"github.com/yungbote/progress-engine/internal/platform/dbctx"
)

// RecordExerciseResponse upserts the response for (user, lesson, exercise).
// A re-submission rewrites the text and keeps any review already attached.
func (u Usecases) RecordExerciseResponse(ctx context.Context, in learning.ExerciseSubmission) (ExerciseResult, error) {
	const op = "Progress.RecordExerciseResponse"
	if err := learning.Validate(op, in); err != nil {
		return ExerciseResult{}, err
	}
	var out ExerciseResult
	var row *types.LessonProgress
	var completedNow bool
	err := u.write(ctx, op, in.Kind(), in.UserID, in.LessonID, func(dbc dbctx.Context) error {
		_, sections, err := u.loadLesson(dbc, op, in.LessonID)
		if err != nil {
			return err
		}
		if !sections.HasExercise(in.ExerciseID) {
			return domainagg.NotFound(op, "exercise").WithKeys("exercise_id", in.ExerciseID)
		}
		saved, err := u.deps.Repos.ExerciseResponses.Upsert(dbc, &types.ExerciseResponse{
			UserID:       in.UserID,
			LessonID:     in.LessonID,
			ExerciseID:   in.ExerciseID,
			ResponseText: in.Text,
			SubmittedAt:  u.now(),
		})
		if err != nil {
			return err
		}
		out = ExerciseResult{ID: saved.ID, SubmittedAt: saved.SubmittedAt}
		row, completedNow, err = u.recompute(dbc, in.UserID, in.LessonID, sections, true)
		return err
	})
	if err != nil {
		return ExerciseResult{}, err
	}
	u.afterRecompute(row, completedNow)
	return out, nil
}

// RecordQuizAttempt appends an attempt; every attempt is kept.
func (u Usecases) RecordQuizAttempt(ctx context.Context, in learning.QuizSubmission) (QuizResult, error) {
	const op = "Progress.RecordQuizAttempt"
	if err := learning.Validate(op, in); err != nil {
		return QuizResult{}, err
	}
	var out QuizResult
	var row *types.LessonProgress
	var completedNow bool
	err := u.write(ctx, op, in.Kind(), in.UserID, in.LessonID, func(dbc dbctx.Context) error {
		_, sections, err := u.loadLesson(dbc, op, in.LessonID)
		if err != nil {
			return err
		}
		if !quizMatches(sections.Quiz, in.QuizID) {
			return domainagg.NotFound(op, "quiz").WithKeys("quiz_id", in.QuizID)
		}
		points := scoring.QuizPoints(in.ScorePercent, in.Passed, u.deps.Rates.Quiz(sections.Quiz))
		attempt, err := u.deps.Repos.QuizAttempts.Create(dbc, &types.QuizAttempt{
			UserID:       in.UserID,
			LessonID:     in.LessonID,
			QuizID:       in.QuizID,
			ScorePercent: in.ScorePercent,
			Passed:       in.Passed,
			Answers:      answersJSON(in.Answers),
			PointsEarned: points,
			AttemptedAt:  u.now(),
		})
		if err != nil {
			return err
		}
		out = QuizResult{ID: attempt.ID, PointsEarned: attempt.PointsEarned}
		row, completedNow, err = u.recompute(dbc, in.UserID, in.LessonID, sections, true)
		return err
	})
	if err != nil {
		return QuizResult{}, err
	}
	u.deps.Metrics.AddPoints("quiz", out.PointsEarned)
	u.afterRecompute(row, completedNow)
	return out, nil
}

// RecordTimeActivity adds minutes to the (user, lesson) accumulator.
func (u Usecases) RecordTimeActivity(ctx context.Context, in learning.TimeSample) (AccumulatorResult, error) {
	const op = "Progress.RecordTimeActivity"
	if err := learning.Validate(op, in); err != nil {
		return AccumulatorResult{}, err
	}
	var out AccumulatorResult
	var row *types.LessonProgress
	var completedNow bool
	err := u.write(ctx, op, in.Kind(), in.UserID, in.LessonID, func(dbc dbctx.Context) error {
		_, sections, err := u.loadLesson(dbc, op, in.LessonID)
		if err != nil {
			return err
		}
		points := scoring.TimePoints(in.Minutes)
		acc, err := u.deps.Repos.TimeActivity.Accumulate(dbc, in.UserID, in.LessonID, in.Minutes, points, u.now())
		if err != nil {
			return err
		}
		out = AccumulatorResult{TotalMinutes: acc.TotalMinutes, TotalPoints: acc.TotalPoints, PointsEarned: points}
		row, completedNow, err = u.recompute(dbc, in.UserID, in.LessonID, sections, true)
		return err
	})
	if err != nil {
		return AccumulatorResult{}, err
	}
	u.deps.Metrics.AddPoints("time", out.PointsEarned)
	u.afterRecompute(row, completedNow)
	return out, nil
}

// RecordVideoWatch adds watch minutes to the (user, lesson, file) accumulator.
// Only video files accrue watch time.
func (u Usecases) RecordVideoWatch(ctx context.Context, in learning.VideoSample) (AccumulatorResult, error) {
	const op = "Progress.RecordVideoWatch"
	if err := learning.Validate(op, in); err != nil {
		return AccumulatorResult{}, err
	}
	var out AccumulatorResult
	var row *types.LessonProgress
	var completedNow bool
	err := u.write(ctx, op, in.Kind(), in.UserID, in.LessonID, func(dbc dbctx.Context) error {
		_, sections, err := u.loadLesson(dbc, op, in.LessonID)
		if err != nil {
			return err
		}
		file, err := u.loadFile(dbc, op, in.LessonID, in.FileID)
		if err != nil {
			return err
		}
		if !file.IsVideo() {
			return domainagg.Conflict(op, "file is not a video").WithKeys("file_id", in.FileID.String(), "mime_type", file.MimeType)
		}
		points := scoring.VideoPoints(in.Minutes)
		acc, err := u.deps.Repos.VideoWatch.Accumulate(dbc, &types.VideoWatch{
			UserID:       in.UserID,
			LessonID:     in.LessonID,
			FileID:       in.FileID,
			FileName:     file.OriginalName,
			TotalMinutes: in.Minutes,
			TotalPoints:  points,
			LastUpdated:  u.now(),
		})
		if err != nil {
			return err
		}
		out = AccumulatorResult{TotalMinutes: acc.TotalMinutes, TotalPoints: acc.TotalPoints, PointsEarned: points}
		row, completedNow, err = u.recompute(dbc, in.UserID, in.LessonID, sections, true)
		return err
	})
	if err != nil {
		return AccumulatorResult{}, err
	}
	u.deps.Metrics.AddPoints("video", out.PointsEarned)
	u.afterRecompute(row, completedNow)
	return out, nil
}

// RecordFileAction logs a view or download. It awards nothing and does not
// touch progress.
func (u Usecases) RecordFileAction(ctx context.Context, in learning.FileEvent) (*types.FileAction, error) {
	const op = "Progress.RecordFileAction"
	if err := learning.Validate(op, in); err != nil {
		return nil, err
	}
	var out *types.FileAction
	err := u.write(ctx, op, in.Kind(), in.UserID, in.LessonID, func(dbc dbctx.Context) error {
		file, err := u.loadFile(dbc, op, in.LessonID, in.FileID)
		if err != nil {
			return err
		}
		out, err = u.deps.Repos.FileActions.Create(dbc, &types.FileAction{
			UserID:    in.UserID,
			LessonID:  in.LessonID,
			FileID:    in.FileID,
			Action:    in.Action,
			FileName:  file.OriginalName,
			MimeType:  file.MimeType,
			CreatedAt: u.now(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u Usecases) ListExerciseResponses(ctx context.Context, userID, lessonID uuid.UUID) ([]*types.ExerciseResponse, error) {
	const op = "Progress.ListExerciseResponses"
	rows, err := u.deps.Repos.ExerciseResponses.ListByUserAndLesson(dbctx.New(ctx), userID, lessonID)
	if err != nil {
		return nil, readErr(op, err, keyPairs(userID, lessonID)...)
	}
	return rows, nil
}

// ListQuizAttempts returns attempts newest first with the best score and the
// points summed over every attempt.
func (u Usecases) ListQuizAttempts(ctx context.Context, userID, lessonID uuid.UUID) (QuizAttempts, error) {
	const op = "Progress.ListQuizAttempts"
	rows, err := u.deps.Repos.QuizAttempts.ListByUserAndLesson(dbctx.New(ctx), userID, lessonID)
	if err != nil {
		return QuizAttempts{}, readErr(op, err, keyPairs(userID, lessonID)...)
	}
	out := QuizAttempts{Attempts: rows, TotalAttempts: len(rows)}
	for _, a := range rows {
		if a.ScorePercent > out.BestScore {
			out.BestScore = a.ScorePercent
		}
		out.TotalPoints += a.PointsEarned
	}
	return out, nil
}

// GetTimeActivity returns a zero accumulator when nothing was recorded.
func (u Usecases) GetTimeActivity(ctx context.Context, userID, lessonID uuid.UUID) (*types.TimeActivity, error) {
	const op = "Progress.GetTimeActivity"
	row, err := u.deps.Repos.TimeActivity.Get(dbctx.New(ctx), userID, lessonID)
	if err != nil {
		return nil, readErr(op, err, keyPairs(userID, lessonID)...)
	}
	if row == nil {
		return &types.TimeActivity{UserID: userID, LessonID: lessonID}, nil
	}
	return row, nil
}

func (u Usecases) ReviewExerciseResponse(ctx context.Context, responseID, reviewerID uuid.UUID, comment string) (*types.ExerciseResponse, error) {
	const op = "Progress.ReviewExerciseResponse"
	if responseID == uuid.Nil {
		return nil, domainagg.Validation(op, "response id is required")
	}
	if len(comment) > 5000 {
		return nil, domainagg.Validation(op, "comment too long")
	}
	var out *types.ExerciseResponse
	err := u.write(ctx, op, "", uuid.Nil, uuid.Nil, func(dbc dbctx.Context) error {
		ok, err := u.deps.Repos.ExerciseResponses.MarkReviewed(dbc, responseID, reviewerID, strings.TrimSpace(comment), u.now())
		if err != nil {
			return err
		}
		if !ok {
			return domainagg.NotFound(op, "exercise response").WithKeys("response_id", responseID.String())
		}
		out, err = u.deps.Repos.ExerciseResponses.GetByID(dbc, responseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func answersJSON(raw []byte) datatypes.JSON {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(s)
}

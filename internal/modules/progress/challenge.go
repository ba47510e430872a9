package progress

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/progress-engine/internal/data/aggregates"
	types "github.com/yungbote/progress-engine/internal/domain"
	domainagg "github.com/yungbote/progress-engine/internal/domain/aggregates"
	"github.com/yungbote/progress-engine/internal/domain/learning"
	"github.com/yungbote/progress-engine/internal/modules/progress/scoring"
	"github.com/yungbote/progress-engine/internal/platform/dbctx"
)

// CheckIn records a day of a multi-day challenge.
//
// Without an active run a new run is opened with the next attempt number.
// The note for the day is replaced, the day joins the completed set when
// Completed is set, and the run closes once the set covers the challenge
// duration. Points are recomputed from the completed set on every call.
func (u Usecases) CheckIn(ctx context.Context, in learning.ChallengeCheckIn) (*types.ChallengeRun, error) {
	const op = "Progress.CheckIn"
	if err := learning.Validate(op, in); err != nil {
		return nil, err
	}
	var out *types.ChallengeRun
	var row *types.LessonProgress
	var completedNow, runClosed bool
	err := u.write(ctx, op, in.Kind(), in.UserID, in.LessonID, func(dbc dbctx.Context) error {
		_, sections, err := u.loadLesson(dbc, op, in.LessonID)
		if err != nil {
			return err
		}
		if !challengeMatches(sections.Challenge, in.ChallengeID) {
			return domainagg.NotFound(op, "challenge").WithKeys("challenge_id", in.ChallengeID)
		}
		rates := u.deps.Rates.Challenge(sections.Challenge)
		if in.Day < 1 || in.Day > rates.DurationDays {
			return domainagg.Conflict(op, fmt.Sprintf("day %d outside [1, %d]", in.Day, rates.DurationDays)).
				WithKeys("challenge_id", in.ChallengeID)
		}

		now := u.now()
		run, err := u.deps.Repos.ChallengeRuns.GetActive(dbc, in.UserID, in.LessonID, in.ChallengeID)
		if err != nil {
			return err
		}
		created := run == nil
		if created {
			prior, err := u.deps.Repos.ChallengeRuns.CountByKey(dbc, in.UserID, in.LessonID, in.ChallengeID)
			if err != nil {
				return err
			}
			run = &types.ChallengeRun{
				UserID:        in.UserID,
				LessonID:      in.LessonID,
				ChallengeID:   in.ChallengeID,
				AttemptNumber: int(prior) + 1,
				StartedAt:     now,
			}
		}

		run.PutNote(in.Day, in.Note, now)
		if in.Completed {
			run.MarkDay(in.Day)
		}
		runClosed = applyRunState(run, rates, now)

		if created {
			if _, err := u.deps.Repos.ChallengeRuns.Create(dbc, run); err != nil {
				return err
			}
		} else {
			saved, err := u.deps.Repos.ChallengeRuns.SaveActive(dbc, run)
			if err != nil {
				return err
			}
			if err := aggregates.RequireCASSuccess(saved, "challenge run closed concurrently"); err != nil {
				return err
			}
		}
		out = run
		row, completedNow, err = u.recompute(dbc, in.UserID, in.LessonID, sections, true)
		return err
	})
	if err != nil {
		return nil, err
	}
	if runClosed {
		u.deps.Metrics.AddPoints("challenge", out.PointsEarned)
		u.deps.Log.Info("challenge run completed",
			"user_id", out.UserID, "lesson_id", out.LessonID, "attempt", out.AttemptNumber, "points", out.PointsEarned)
	}
	u.afterRecompute(row, completedNow)
	return out, nil
}

// applyRunState derives current day, completion and points from the completed
// set. It reports whether the run closed on this call.
func applyRunState(run *types.ChallengeRun, rates scoring.ChallengeRates, now time.Time) bool {
	days := run.Days()
	run.CurrentDay = 1
	if len(days) > 0 {
		run.CurrentDay = days[len(days)-1] + 1
	}
	closed := false
	if !run.IsCompleted && len(days) >= rates.DurationDays {
		run.IsCompleted = true
		run.CompletedAt = &now
		closed = true
	}
	run.PointsEarned = scoring.ChallengePoints(len(days), run.IsCompleted, rates)
	run.UpdatedAt = now
	return closed
}

// GetActiveOrLastRun returns the active run, or the newest closed one.
func (u Usecases) GetActiveOrLastRun(ctx context.Context, userID, lessonID uuid.UUID, challengeID string) (ChallengeStatus, error) {
	const op = "Progress.GetActiveOrLastRun"
	dbc := dbctx.New(ctx)
	_, sections, err := u.loadLesson(dbc, op, lessonID)
	if err != nil {
		return ChallengeStatus{}, readErr(op, err, keyPairs(userID, lessonID)...)
	}
	if !challengeMatches(sections.Challenge, challengeID) {
		return ChallengeStatus{}, domainagg.NotFound(op, "challenge").WithKeys("challenge_id", challengeID)
	}
	runs, err := u.deps.Repos.ChallengeRuns.ListByKey(dbc, userID, lessonID, challengeID)
	if err != nil {
		return ChallengeStatus{}, readErr(op, err, keyPairs(userID, lessonID)...)
	}

	out := ChallengeStatus{
		TotalAttempts:     len(runs),
		TotalPoints:       completedPoints(runs),
		NextAttemptNumber: len(runs) + 1,
		DurationDays:      u.deps.Rates.Challenge(sections.Challenge).DurationDays,
	}
	for _, r := range runs {
		if !r.IsCompleted {
			out.Run = r
			out.NextAttemptNumber = r.AttemptNumber
			break
		}
	}
	if out.Run == nil && len(runs) > 0 {
		out.Run = runs[0]
	}
	return out, nil
}

// GetHistory lists every run newest first. TotalPoints counts closed runs only.
func (u Usecases) GetHistory(ctx context.Context, userID, lessonID uuid.UUID, challengeID string) (ChallengeHistory, error) {
	const op = "Progress.GetHistory"
	dbc := dbctx.New(ctx)
	_, sections, err := u.loadLesson(dbc, op, lessonID)
	if err != nil {
		return ChallengeHistory{}, readErr(op, err, keyPairs(userID, lessonID)...)
	}
	if !challengeMatches(sections.Challenge, challengeID) {
		return ChallengeHistory{}, domainagg.NotFound(op, "challenge").WithKeys("challenge_id", challengeID)
	}
	runs, err := u.deps.Repos.ChallengeRuns.ListByKey(dbc, userID, lessonID, challengeID)
	if err != nil {
		return ChallengeHistory{}, readErr(op, err, keyPairs(userID, lessonID)...)
	}
	return ChallengeHistory{
		Runs:          runs,
		TotalAttempts: len(runs),
		TotalPoints:   completedPoints(runs),
	}, nil
}

// ListChallengeNotes collects non-empty daily notes for a lesson, newest
// first, with student names resolved where the directory knows them.
func (u Usecases) ListChallengeNotes(ctx context.Context, lessonID uuid.UUID) ([]ChallengeNote, error) {
	const op = "Progress.ListChallengeNotes"
	dbc := dbctx.New(ctx)
	if _, _, err := u.loadLesson(dbc, op, lessonID); err != nil {
		return nil, readErr(op, err, "lesson_id", lessonID.String())
	}
	runs, err := u.deps.Repos.ChallengeRuns.ListByLesson(dbc, lessonID)
	if err != nil {
		return nil, readErr(op, err, "lesson_id", lessonID.String())
	}

	userIDs := make([]uuid.UUID, 0, len(runs))
	out := []ChallengeNote{}
	for _, r := range runs {
		userIDs = append(userIDs, r.UserID)
		for _, n := range r.Notes() {
			if strings.TrimSpace(n.Note) == "" {
				continue
			}
			out = append(out, ChallengeNote{
				UserID:        r.UserID,
				AttemptNumber: r.AttemptNumber,
				Day:           n.Day,
				Note:          n.Note,
				CompletedAt:   n.CompletedAt,
			})
		}
	}

	names := u.displayNames(dbc, userIDs)
	for i := range out {
		out[i].UserName = nameOr(names, out[i].UserID)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CompletedAt.Equal(out[j].CompletedAt) {
			return out[i].CompletedAt.After(out[j].CompletedAt)
		}
		return out[i].Day > out[j].Day
	})
	return out, nil
}

func completedPoints(runs []*types.ChallengeRun) int {
	total := 0
	for _, r := range runs {
		if r.IsCompleted {
			total += r.PointsEarned
		}
	}
	return total
}

// displayNames is best effort; a directory failure leaves raw ids in place.
func (u Usecases) displayNames(dbc dbctx.Context, ids []uuid.UUID) map[uuid.UUID]string {
	out := map[uuid.UUID]string{}
	if len(ids) == 0 || u.deps.Repos.Users == nil {
		return out
	}
	users, err := u.deps.Repos.Users.GetByIDs(dbc, ids)
	if err != nil {
		u.deps.Log.Warn("user directory lookup failed", "error", err, "count", len(ids))
		return out
	}
	for _, usr := range users {
		out[usr.ID] = usr.DisplayName()
	}
	return out
}

func nameOr(names map[uuid.UUID]string, id uuid.UUID) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return id.String()
}

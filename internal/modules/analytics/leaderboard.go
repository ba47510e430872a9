package analytics

import (
	"sort"

	"github.com/google/uuid"

	types "github.com/yungbote/progress-engine/internal/domain"
)

type QuizLeader struct {
	UserID      uuid.UUID `json:"user_id"`
	UserName    string    `json:"user_name"`
	TotalPoints int       `json:"total_points"`
	Attempts    int       `json:"attempts"`
	Passed      int       `json:"passed"`
	BestScore   int       `json:"best_score"`
}

type ChallengeLeader struct {
	UserID      uuid.UUID `json:"user_id"`
	UserName    string    `json:"user_name"`
	TotalPoints int       `json:"total_points"`
	Attempts    int       `json:"attempts"`
	Completed   int       `json:"completed"`
}

// rankByPoints orders entries by points, highest first, and keeps the top
// limit. Equal totals keep their input order, so callers feed entries in
// order of first appearance.
func rankByPoints[T any](entries []T, points func(T) int, limit int) []T {
	sort.SliceStable(entries, func(i, j int) bool {
		return points(entries[i]) > points(entries[j])
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// quizLeaderboard groups attempts by user. Attempts must be in record order
// (attempted_at, id) for ties to resolve by first appearance.
func quizLeaderboard(attempts []*types.QuizAttempt, limit int) []QuizLeader {
	idx := map[uuid.UUID]int{}
	var out []QuizLeader
	for _, a := range attempts {
		i, ok := idx[a.UserID]
		if !ok {
			i = len(out)
			idx[a.UserID] = i
			out = append(out, QuizLeader{UserID: a.UserID})
		}
		e := &out[i]
		e.TotalPoints += a.PointsEarned
		e.Attempts++
		if a.Passed {
			e.Passed++
		}
		if a.ScorePercent > e.BestScore {
			e.BestScore = a.ScorePercent
		}
	}
	return rankByPoints(out, func(e QuizLeader) int { return e.TotalPoints }, limit)
}

// challengeLeaderboard groups runs by user; runs must be in (started_at, id) order.
func challengeLeaderboard(runs []*types.ChallengeRun, limit int) []ChallengeLeader {
	idx := map[uuid.UUID]int{}
	var out []ChallengeLeader
	for _, r := range runs {
		i, ok := idx[r.UserID]
		if !ok {
			i = len(out)
			idx[r.UserID] = i
			out = append(out, ChallengeLeader{UserID: r.UserID})
		}
		e := &out[i]
		e.TotalPoints += r.PointsEarned
		e.Attempts++
		if r.IsCompleted {
			e.Completed++
		}
	}
	return rankByPoints(out, func(e ChallengeLeader) int { return e.TotalPoints }, limit)
}

func sortAttempts(rows []*types.QuizAttempt) {
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].AttemptedAt.Equal(rows[j].AttemptedAt) {
			return rows[i].AttemptedAt.Before(rows[j].AttemptedAt)
		}
		return rows[i].ID.String() < rows[j].ID.String()
	})
}

func sortRuns(rows []*types.ChallengeRun) {
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].StartedAt.Equal(rows[j].StartedAt) {
			return rows[i].StartedAt.Before(rows[j].StartedAt)
		}
		return rows[i].ID.String() < rows[j].ID.String()
	})
}

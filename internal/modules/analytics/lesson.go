package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/progress-engine/internal/domain"
	domainagg "github.com/yungbote/progress-engine/internal/domain/aggregates"
	"github.com/yungbote/progress-engine/internal/platform/dbctx"
)

type LessonStatistics struct {
	TotalStudents      int     `json:"total_students"`
	CompletedStudents  int     `json:"completed_students"`
	AvgCompletion      float64 `json:"avg_completion"`
	TotalResponses     int     `json:"total_responses"`
	ReviewedResponses  int     `json:"reviewed_responses"`
	PendingResponses   int     `json:"pending_responses"`
	QuizAttempts       int     `json:"quiz_attempts"`
	QuizPassed         int     `json:"quiz_passed"`
	QuizPassRate       float64 `json:"quiz_pass_rate"`
	QuizAvgScore       float64 `json:"quiz_avg_score"`
	QuizAvgPoints      float64 `json:"quiz_avg_points"`
	QuizTotalPoints    int     `json:"quiz_total_points"`
	ChallengeUsers     int     `json:"challenge_users"`
	ChallengeAttempts  int     `json:"challenge_attempts"`
	ChallengeCompleted int     `json:"challenge_completed"`
	ChallengeRate      float64 `json:"challenge_completion_rate"`
	ChallengeNotes     int     `json:"challenge_notes"`
	ChallengePoints    int     `json:"challenge_total_points"`
	ChallengeAvgPoints float64 `json:"challenge_avg_points"`
}

type TimelineBucket struct {
	Date      string `json:"date"`
	Started   int    `json:"started"`
	Completed int    `json:"completed"`
}

type StudentProgress struct {
	UserID            uuid.UUID  `json:"user_id"`
	UserName          string     `json:"user_name"`
	CompletionPercent int        `json:"completion_percentage"`
	IsCompleted       bool       `json:"is_completed"`
	StartedAt         time.Time  `json:"started_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	LastActivityAt    time.Time  `json:"last_activity_at"`
}

type LessonAnalytics struct {
	LessonID             uuid.UUID         `json:"lesson_id"`
	LessonTitle          string            `json:"lesson_title"`
	Statistics           LessonStatistics  `json:"statistics"`
	QuizLeaderboard      []QuizLeader      `json:"quiz_leaderboard"`
	ChallengeLeaderboard []ChallengeLeader `json:"challenge_leaderboard"`
	ProgressTimeline     []TimelineBucket  `json:"progress_timeline"`
	Students             []StudentProgress `json:"students"`
}

// GetLessonAnalytics builds the per-lesson report. An unknown lesson is
// NotFound; a lesson nobody has touched yields zeros.
func (u Usecases) GetLessonAnalytics(ctx context.Context, lessonID uuid.UUID) (out *LessonAnalytics, err error) {
	const op = "Analytics.GetLessonAnalytics"
	start := time.Now()
	defer func() { u.observe("lesson", start, err) }()

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
	progress, err := u.deps.Repos.Progress.ListByLesson(dbc, lessonID)
	if err != nil {
		return nil, storeErr(op, err, keys...)
	}
	responses, err := u.deps.Repos.ExerciseResponses.ListByLesson(dbc, lessonID)
	if err != nil {
		return nil, storeErr(op, err, keys...)
	}
	attempts, err := u.deps.Repos.QuizAttempts.ListByLesson(dbc, lessonID)
	if err != nil {
		return nil, storeErr(op, err, keys...)
	}
	runs, err := u.deps.Repos.ChallengeRuns.ListByLesson(dbc, lessonID)
	if err != nil {
		return nil, storeErr(op, err, keys...)
	}
	sortAttempts(attempts)
	sortRuns(runs)

	out = &LessonAnalytics{
		LessonID:    lesson.ID,
		LessonTitle: lesson.Title,
		Statistics:  lessonStatistics(progress, responses, attempts, runs),
	}
	out.ProgressTimeline = progressTimeline(progress)

	ids := make([]uuid.UUID, 0, len(progress)+len(attempts)+len(runs))
	for _, p := range progress {
		ids = append(ids, p.UserID)
	}
	for _, a := range attempts {
		ids = append(ids, a.UserID)
	}
	for _, r := range runs {
		ids = append(ids, r.UserID)
	}
	names := u.displayNames(dbc, ids)

	out.QuizLeaderboard = quizLeaderboard(attempts, LeaderboardSize)
	for i := range out.QuizLeaderboard {
		out.QuizLeaderboard[i].UserName = nameOr(names, out.QuizLeaderboard[i].UserID)
	}
	out.ChallengeLeaderboard = challengeLeaderboard(runs, LeaderboardSize)
	for i := range out.ChallengeLeaderboard {
		out.ChallengeLeaderboard[i].UserName = nameOr(names, out.ChallengeLeaderboard[i].UserID)
	}

	out.Students = make([]StudentProgress, 0, len(progress))
	for _, p := range progress {
		out.Students = append(out.Students, StudentProgress{
			UserID:            p.UserID,
			UserName:          nameOr(names, p.UserID),
			CompletionPercent: p.CompletionPercent,
			IsCompleted:       p.IsCompleted,
			StartedAt:         p.StartedAt,
			CompletedAt:       p.CompletedAt,
			LastActivityAt:    p.LastActivityAt,
		})
	}
	sort.SliceStable(out.Students, func(i, j int) bool {
		if out.Students[i].CompletionPercent != out.Students[j].CompletionPercent {
			return out.Students[i].CompletionPercent > out.Students[j].CompletionPercent
		}
		return out.Students[i].UserID.String() < out.Students[j].UserID.String()
	})
	if out.QuizLeaderboard == nil {
		out.QuizLeaderboard = []QuizLeader{}
	}
	if out.ChallengeLeaderboard == nil {
		out.ChallengeLeaderboard = []ChallengeLeader{}
	}
	return out, nil
}

func lessonStatistics(
	progress []*types.LessonProgress,
	responses []*types.ExerciseResponse,
	attempts []*types.QuizAttempt,
	runs []*types.ChallengeRun,
) LessonStatistics {
	var s LessonStatistics

	students := map[uuid.UUID]struct{}{}
	var completionSum float64
	for _, p := range progress {
		students[p.UserID] = struct{}{}
		completionSum += float64(p.CompletionPercent)
		if p.IsCompleted {
			s.CompletedStudents++
		}
	}
	s.TotalStudents = len(students)
	s.AvgCompletion = avg(completionSum, len(progress))

	s.TotalResponses = len(responses)
	for _, r := range responses {
		if r.Reviewed {
			s.ReviewedResponses++
		}
	}
	s.PendingResponses = s.TotalResponses - s.ReviewedResponses

	var scoreSum float64
	for _, a := range attempts {
		s.QuizAttempts++
		if a.Passed {
			s.QuizPassed++
		}
		scoreSum += float64(a.ScorePercent)
		s.QuizTotalPoints += a.PointsEarned
	}
	s.QuizPassRate = rate(s.QuizPassed, s.QuizAttempts)
	s.QuizAvgScore = avg(scoreSum, s.QuizAttempts)
	s.QuizAvgPoints = avg(float64(s.QuizTotalPoints), s.QuizAttempts)

	challengers := map[uuid.UUID]struct{}{}
	for _, r := range runs {
		challengers[r.UserID] = struct{}{}
		s.ChallengeAttempts++
		if r.IsCompleted {
			s.ChallengeCompleted++
		}
		for _, n := range r.Notes() {
			if n.Note != "" {
				s.ChallengeNotes++
			}
		}
		s.ChallengePoints += r.PointsEarned
	}
	s.ChallengeUsers = len(challengers)
	s.ChallengeRate = rate(s.ChallengeCompleted, s.ChallengeAttempts)
	s.ChallengeAvgPoints = avg(float64(s.ChallengePoints), s.ChallengeAttempts)
	return s
}

// progressTimeline buckets progress rows by the UTC date they started on.
// A completion is counted in the bucket of its start date.
func progressTimeline(progress []*types.LessonProgress) []TimelineBucket {
	idx := map[string]int{}
	out := []TimelineBucket{}
	for _, p := range progress {
		if p.StartedAt.IsZero() {
			continue
		}
		key := p.StartedAt.UTC().Format(time.DateOnly)
		i, ok := idx[key]
		if !ok {
			i = len(out)
			idx[key] = i
			out = append(out, TimelineBucket{Date: key})
		}
		out[i].Started++
		if p.IsCompleted {
			out[i].Completed++
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/progress-engine/internal/domain"
	domainagg "github.com/yungbote/progress-engine/internal/domain/aggregates"
	"github.com/yungbote/progress-engine/internal/modules/progress/scoring"
	"github.com/yungbote/progress-engine/internal/platform/dbctx"
)

type PointsBreakdown struct {
	Challenges   int64 `json:"challenges"`
	Quizzes      int64 `json:"quizzes"`
	Time         int64 `json:"time"`
	TimeMinutes  int64 `json:"time_minutes"`
	Videos       int64 `json:"videos"`
	VideoMinutes int64 `json:"video_minutes"`
}

type LessonCounts struct {
	Total             int64 `json:"total"`
	Completed         int   `json:"completed"`
	InProgress        int   `json:"in_progress"`
	CompletionPercent int   `json:"completion_percentage"`
}

type ActivityCounts struct {
	Challenges       int   `json:"total_challenges"`
	Quizzes          int   `json:"total_quizzes"`
	Exercises        int   `json:"total_exercises"`
	RecentChallenges int   `json:"recent_challenges"`
	RecentQuizzes    int   `json:"recent_quizzes"`
	RecentExercises  int   `json:"recent_exercises"`
	FileViews        int64 `json:"file_views"`
	FileDownloads    int64 `json:"file_downloads"`
}

type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Earned      bool   `json:"earned"`
}

type ChartDay struct {
	Date     string `json:"date"`
	Weekday  string `json:"day_name"`
	Activity int    `json:"activity"`
}

type RecentEvent struct {
	Kind     string    `json:"type"`
	LessonID uuid.UUID `json:"lesson_id"`
	Title    string    `json:"title"`
	Points   int       `json:"points,omitempty"`
	At       time.Time `json:"date"`
}

type StudentDashboard struct {
	UserID       uuid.UUID       `json:"user_id"`
	TotalPoints  int64           `json:"total_points"`
	Level        scoring.Level   `json:"level"`
	Points       PointsBreakdown `json:"points_breakdown"`
	Lessons      LessonCounts    `json:"lessons"`
	Activity     ActivityCounts  `json:"activity"`
	Achievements []Achievement   `json:"achievements"`
	Earned       int             `json:"total_achievements"`
	Chart        []ChartDay      `json:"activity_chart"`
	RecentEvents []RecentEvent   `json:"recent_achievements"`
}

// activitySnapshot is everything the badge predicates look at.
type activitySnapshot struct {
	completedLessons    int
	completedChallenges int
	totalPoints         int64
	recentActivity      int
}

type achievementRule struct {
	Achievement
	earned func(activitySnapshot) bool
}

var achievementCatalogue = []achievementRule{
	{Achievement{ID: "first_lesson", Title: "Первый шаг", Description: "Завершен первый урок", Icon: "🎯"},
		func(s activitySnapshot) bool { return s.completedLessons >= 1 }},
	{Achievement{ID: "five_lessons", Title: "Упорный ученик", Description: "Завершено 5 уроков", Icon: "📚"},
		func(s activitySnapshot) bool { return s.completedLessons >= 5 }},
	{Achievement{ID: "ten_lessons", Title: "Знаток", Description: "Завершено 10 уроков", Icon: "🏆"},
		func(s activitySnapshot) bool { return s.completedLessons >= 10 }},
	{Achievement{ID: "first_challenge", Title: "Принял вызов", Description: "Завершен первый челлендж", Icon: "⚡"},
		func(s activitySnapshot) bool { return s.completedChallenges >= 1 }},
	{Achievement{ID: "hundred_points", Title: "Сотня", Description: "Заработано 100 баллов", Icon: "💯"},
		func(s activitySnapshot) bool { return s.totalPoints >= 100 }},
	{Achievement{ID: "five_hundred_points", Title: "Коллекционер", Description: "Заработано 500 баллов", Icon: "💎"},
		func(s activitySnapshot) bool { return s.totalPoints >= 500 }},
	{Achievement{ID: "thousand_points", Title: "Легенда", Description: "Заработано 1000 баллов", Icon: "👑"},
		func(s activitySnapshot) bool { return s.totalPoints >= 1000 }},
	{Achievement{ID: "active_learner", Title: "Активный ученик", Description: "5+ активностей за неделю", Icon: "🔥"},
		func(s activitySnapshot) bool { return s.recentActivity >= 5 }},
}

func achievements(s activitySnapshot) ([]Achievement, int) {
	out := make([]Achievement, 0, len(achievementCatalogue))
	earned := 0
	for _, rule := range achievementCatalogue {
		a := rule.Achievement
		a.Earned = rule.earned(s)
		if a.Earned {
			earned++
		}
		out = append(out, a)
	}
	return out, earned
}

var weekdayNames = [...]string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}

// GetStudentDashboard summarizes one student's points, level, badges and
// recent activity. A student with no activity gets zeros and level 1.
func (u Usecases) GetStudentDashboard(ctx context.Context, userID uuid.UUID) (out *StudentDashboard, err error) {
	const op = "Analytics.GetStudentDashboard"
	start := time.Now()
	defer func() { u.observe("dashboard", start, err) }()

	if userID == uuid.Nil {
		return nil, domainagg.Validation(op, "user_id is required")
	}
	dbc := dbctx.New(ctx)
	keys := []string{"user_id", userID.String()}
	r := u.deps.Repos

	totalLessons, err := r.Lessons.CountActive(dbc)
	if err != nil {
		return nil, storeErr(op, err, keys...)
	}
	progress, err := r.Progress.ListByUser(dbc, userID)
	if err != nil {
		return nil, storeErr(op, err, keys...)
	}
	runs, err := r.ChallengeRuns.ListByUser(dbc, userID)
	if err != nil {
		return nil, storeErr(op, err, keys...)
	}
	attempts, err := r.QuizAttempts.ListByUser(dbc, userID)
	if err != nil {
		return nil, storeErr(op, err, keys...)
	}
	responses, err := r.ExerciseResponses.ListByUser(dbc, userID)
	if err != nil {
		return nil, storeErr(op, err, keys...)
	}

	out = &StudentDashboard{UserID: userID}
	p := &out.Points
	for _, fn := range []struct {
		dst *int64
		get func(dbctx.Context, uuid.UUID) (int64, error)
	}{
		{&p.Time, r.TimeActivity.SumPointsByUser},
		{&p.TimeMinutes, r.TimeActivity.SumMinutesByUser},
		{&p.Videos, r.VideoWatch.SumPointsByUser},
		{&p.VideoMinutes, r.VideoWatch.SumMinutesByUser},
	} {
		if *fn.dst, err = fn.get(dbc, userID); err != nil {
			return nil, storeErr(op, err, keys...)
		}
	}
	if out.Activity.FileViews, err = r.FileActions.CountByUser(dbc, userID, types.FileActionView); err != nil {
		return nil, storeErr(op, err, keys...)
	}
	if out.Activity.FileDownloads, err = r.FileActions.CountByUser(dbc, userID, types.FileActionDownload); err != nil {
		return nil, storeErr(op, err, keys...)
	}

	completedChallenges := 0
	for _, run := range runs {
		p.Challenges += int64(run.PointsEarned)
		if run.IsCompleted {
			completedChallenges++
		}
	}
	for _, a := range attempts {
		p.Quizzes += int64(a.PointsEarned)
	}
	out.TotalPoints = p.Challenges + p.Quizzes + p.Time + p.Videos
	out.Level = scoring.LevelFor(int(out.TotalPoints))

	completed := 0
	for _, row := range progress {
		if row.IsCompleted {
			completed++
		}
	}
	out.Lessons = LessonCounts{
		Total:      totalLessons,
		Completed:  completed,
		InProgress: len(progress) - completed,
	}
	if totalLessons > 0 {
		out.Lessons.CompletionPercent = min(100, int(int64(completed)*100/totalLessons))
	}

	now := u.now()
	events := activityEvents(runs, attempts, responses)
	windowStart := startOfDay(now).AddDate(0, 0, -(ActivityWindowDays - 1))
	out.Activity.Challenges = len(runs)
	out.Activity.Quizzes = len(attempts)
	out.Activity.Exercises = len(responses)
	for _, e := range events {
		if e.at.Before(windowStart) {
			continue
		}
		switch e.kind {
		case "challenge":
			out.Activity.RecentChallenges++
		case "quiz":
			out.Activity.RecentQuizzes++
		case "exercise":
			out.Activity.RecentExercises++
		}
	}
	out.Chart = activityChart(events, now)

	recent := 0
	for _, d := range out.Chart {
		recent += d.Activity
	}
	out.Achievements, out.Earned = achievements(activitySnapshot{
		completedLessons:    completed,
		completedChallenges: completedChallenges,
		totalPoints:         out.TotalPoints,
		recentActivity:      recent,
	})

	out.RecentEvents = u.recentEvents(dbc, progress, runs)
	return out, nil
}

type activityEvent struct {
	kind string
	at   time.Time
}

// activityEvents flattens challenge completions, quiz attempts and exercise
// submissions into timestamped events.
func activityEvents(runs []*types.ChallengeRun, attempts []*types.QuizAttempt, responses []*types.ExerciseResponse) []activityEvent {
	out := make([]activityEvent, 0, len(runs)+len(attempts)+len(responses))
	for _, r := range runs {
		if r.CompletedAt != nil {
			out = append(out, activityEvent{kind: "challenge", at: r.CompletedAt.UTC()})
		}
	}
	for _, a := range attempts {
		out = append(out, activityEvent{kind: "quiz", at: a.AttemptedAt.UTC()})
	}
	for _, r := range responses {
		out = append(out, activityEvent{kind: "exercise", at: r.SubmittedAt.UTC()})
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// activityChart counts events per UTC calendar day over the trailing window
// ending today, oldest day first.
func activityChart(events []activityEvent, now time.Time) []ChartDay {
	today := startOfDay(now)
	first := today.AddDate(0, 0, -(ActivityWindowDays - 1))
	out := make([]ChartDay, ActivityWindowDays)
	for i := range out {
		day := first.AddDate(0, 0, i)
		out[i] = ChartDay{Date: day.Format("02.01"), Weekday: weekdayNames[day.Weekday()]}
	}
	for _, e := range events {
		if e.at.Before(first) {
			continue
		}
		i := int(e.at.Sub(first) / (24 * time.Hour))
		if i >= 0 && i < len(out) {
			out[i].Activity++
		}
	}
	return out
}

// recentEvents merges lesson completions and completed challenge runs and
// keeps the newest few. Titles fall back to the raw lesson id.
func (u Usecases) recentEvents(dbc dbctx.Context, progress []*types.LessonProgress, runs []*types.ChallengeRun) []RecentEvent {
	out := []RecentEvent{}
	var lessonIDs []uuid.UUID
	for _, p := range progress {
		if p.IsCompleted && p.CompletedAt != nil {
			out = append(out, RecentEvent{Kind: "lesson", LessonID: p.LessonID, At: *p.CompletedAt})
			lessonIDs = append(lessonIDs, p.LessonID)
		}
	}
	for _, r := range runs {
		if r.IsCompleted && r.CompletedAt != nil {
			out = append(out, RecentEvent{Kind: "challenge", LessonID: r.LessonID, Points: r.PointsEarned, At: *r.CompletedAt})
			lessonIDs = append(lessonIDs, r.LessonID)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.After(out[j].At) })
	if len(out) > RecentEventsSize {
		out = out[:RecentEventsSize]
	}
	titles := u.lessonTitles(dbc, lessonIDs)
	for i := range out {
		out[i].Title = nameOr(titles, out[i].LessonID)
	}
	return out
}

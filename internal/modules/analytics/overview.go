package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	types "github.com/yungbote/progress-engine/internal/domain"
	"github.com/yungbote/progress-engine/internal/platform/dbctx"
)

const overviewParallelism = 4

// Overview metric names. They key Overview.Errors.
const (
	MetricTotalLessons    = "total_lessons"
	MetricTotalStudents   = "total_students"
	MetricTotalResponses  = "total_responses"
	MetricPendingReviews  = "pending_reviews"
	MetricActiveStudents  = "active_students"
	MetricRecentActivity  = "recent_activity_7days"
	MetricPointsChallenge = "points.challenges"
	MetricPointsQuiz      = "points.quizzes"
	MetricPointsTime      = "points.time"
	MetricPointsVideo     = "points.videos"
	MetricPointsTotal     = "points.total"
	MetricTopLessons      = "top_lessons"
	MetricPendingDetails  = "pending_review_details"
)

type PointsBySource struct {
	Total      int64 `json:"total"`
	Challenges int64 `json:"challenges"`
	Quizzes    int64 `json:"quizzes"`
	Time       int64 `json:"time"`
	Videos     int64 `json:"videos"`
}

type TopLesson struct {
	LessonID      uuid.UUID `json:"lesson_id"`
	Title         string    `json:"title"`
	Students      int64     `json:"students"`
	AvgCompletion float64   `json:"avg_completion"`
}

type PendingReview struct {
	ResponseID    uuid.UUID `json:"response_id"`
	UserID        uuid.UUID `json:"user_id"`
	UserName      string    `json:"user_name"`
	LessonID      uuid.UUID `json:"lesson_id"`
	LessonTitle   string    `json:"lesson_title"`
	ExerciseID    string    `json:"exercise_id"`
	ExerciseTitle string    `json:"exercise_title"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// Overview is the system-wide admin report. A metric that could not be
// computed stays zero and is listed in Errors.
type Overview struct {
	TotalLessons   int64             `json:"total_lessons"`
	TotalStudents  int64             `json:"total_students"`
	TotalResponses int64             `json:"total_responses"`
	PendingReviews int64             `json:"pending_reviews"`
	ActiveStudents int64             `json:"active_students"`
	RecentActivity int64             `json:"recent_activity_7days"`
	Points         PointsBySource    `json:"points"`
	TopLessons     []TopLesson       `json:"top_lessons"`
	PendingDetails []PendingReview   `json:"pending_review_details"`
	Errors         map[string]string `json:"errors,omitempty"`
}

func (o *Overview) Partial() bool {
	return len(o.Errors) > 0
}

type overviewBuilder struct {
	u   Usecases
	mu  sync.Mutex
	out *Overview
}

func (b *overviewBuilder) fail(metric string, err error) {
	b.u.deps.Log.Warn("overview metric failed", "metric", metric, "error", err)
	b.u.deps.Metrics.IncAnalyticsMetricFailure(metric)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.out.Errors == nil {
		b.out.Errors = map[string]string{}
	}
	b.out.Errors[metric] = err.Error()
}

func (b *overviewBuilder) failed(metric string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.out.Errors[metric]
	return ok
}

// count runs one scalar metric. Failures are recorded and never abort the group.
func (b *overviewBuilder) count(g *errgroup.Group, ctx context.Context, metric string, dst *int64, fn func(dbctx.Context) (int64, error)) {
	g.Go(func() error {
		n, err := fn(dbctx.New(ctx))
		if err != nil {
			b.fail(metric, storeErr("Analytics.GetOverview", err, "metric", metric))
			return nil
		}
		*dst = n
		return nil
	})
}

// GetOverview computes the system report. Sub-metrics run concurrently and
// fail independently; the call itself only errors when ctx is done.
func (u Usecases) GetOverview(ctx context.Context) (out *Overview, err error) {
	start := time.Now()
	defer func() {
		if err == nil && out.Partial() {
			u.deps.Metrics.ObserveAnalytics("overview", "partial", time.Since(start))
			return
		}
		u.observe("overview", start, err)
	}()

	r := u.deps.Repos
	b := &overviewBuilder{u: u, out: &Overview{TopLessons: []TopLesson{}, PendingDetails: []PendingReview{}}}
	o := b.out
	since := u.now().AddDate(0, 0, -ActivityWindowDays)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(overviewParallelism)

	b.count(g, gctx, MetricTotalLessons, &o.TotalLessons, r.Lessons.CountActive)
	b.count(g, gctx, MetricTotalStudents, &o.TotalStudents, r.Users.CountStudents)
	b.count(g, gctx, MetricTotalResponses, &o.TotalResponses, r.ExerciseResponses.Count)
	b.count(g, gctx, MetricPendingReviews, &o.PendingReviews, r.ExerciseResponses.CountPending)
	b.count(g, gctx, MetricActiveStudents, &o.ActiveStudents, r.Progress.CountDistinctUsers)
	b.count(g, gctx, MetricRecentActivity, &o.RecentActivity, func(dbc dbctx.Context) (int64, error) {
		return r.Progress.CountActiveSince(dbc, since)
	})
	b.count(g, gctx, MetricPointsChallenge, &o.Points.Challenges, r.ChallengeRuns.SumPoints)
	b.count(g, gctx, MetricPointsQuiz, &o.Points.Quizzes, r.QuizAttempts.SumPoints)
	b.count(g, gctx, MetricPointsTime, &o.Points.Time, r.TimeActivity.SumPoints)
	b.count(g, gctx, MetricPointsVideo, &o.Points.Videos, r.VideoWatch.SumPoints)

	g.Go(func() error {
		top, err := u.topLessons(dbctx.New(gctx))
		if err != nil {
			b.fail(MetricTopLessons, err)
			return nil
		}
		o.TopLessons = top
		return nil
	})
	g.Go(func() error {
		pending, err := u.pendingDetails(dbctx.New(gctx))
		if err != nil {
			b.fail(MetricPendingDetails, err)
			return nil
		}
		o.PendingDetails = pending
		return nil
	})

	_ = g.Wait()
	if ctx.Err() != nil {
		return nil, storeErr("Analytics.GetOverview", ctx.Err())
	}

	sourcesOK := true
	for _, m := range []string{MetricPointsChallenge, MetricPointsQuiz, MetricPointsTime, MetricPointsVideo} {
		if b.failed(m) {
			sourcesOK = false
		}
	}
	if sourcesOK {
		o.Points.Total = o.Points.Challenges + o.Points.Quizzes + o.Points.Time + o.Points.Videos
	} else {
		o.Errors[MetricPointsTotal] = "one or more point sources failed"
	}
	return o, nil
}

func (u Usecases) topLessons(dbc dbctx.Context) ([]TopLesson, error) {
	const op = "Analytics.topLessons"
	rows, err := u.deps.Repos.Progress.TopLessons(dbc, TopLessonsSize)
	if err != nil {
		return nil, storeErr(op, err)
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.LessonID)
	}
	titles := u.lessonTitles(dbc, ids)
	out := make([]TopLesson, 0, len(rows))
	for _, row := range rows {
		out = append(out, TopLesson{
			LessonID:      row.LessonID,
			Title:         nameOr(titles, row.LessonID),
			Students:      row.Students,
			AvgCompletion: round2(row.AvgCompletion),
		})
	}
	return out, nil
}

func (u Usecases) pendingDetails(dbc dbctx.Context) ([]PendingReview, error) {
	const op = "Analytics.pendingDetails"
	rows, err := u.deps.Repos.ExerciseResponses.ListPending(dbc, PendingReviewsSize)
	if err != nil {
		return nil, storeErr(op, err)
	}
	userIDs := make([]uuid.UUID, 0, len(rows))
	lessonIDs := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		userIDs = append(userIDs, r.UserID)
		lessonIDs = append(lessonIDs, r.LessonID)
	}
	names := u.displayNames(dbc, userIDs)
	lessons := u.lessonsByID(dbc, lessonIDs)

	out := make([]PendingReview, 0, len(rows))
	for _, r := range rows {
		item := PendingReview{
			ResponseID:    r.ID,
			UserID:        r.UserID,
			UserName:      nameOr(names, r.UserID),
			LessonID:      r.LessonID,
			LessonTitle:   r.LessonID.String(),
			ExerciseID:    r.ExerciseID,
			ExerciseTitle: r.ExerciseID,
			SubmittedAt:   r.SubmittedAt,
		}
		if l, ok := lessons[r.LessonID]; ok {
			item.LessonTitle = l.title
			if t, ok := l.exercises[r.ExerciseID]; ok && t != "" {
				item.ExerciseTitle = t
			}
		}
		out = append(out, item)
	}
	return out, nil
}

type lessonLabels struct {
	title     string
	exercises map[string]string
}

// lessonsByID resolves lesson and exercise titles best effort.
func (u Usecases) lessonsByID(dbc dbctx.Context, ids []uuid.UUID) map[uuid.UUID]lessonLabels {
	out := map[uuid.UUID]lessonLabels{}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out
	}
	lessons, err := u.deps.Repos.Lessons.GetByIDs(dbc, ids)
	if err != nil {
		u.deps.Log.Warn("lesson catalogue lookup failed", "error", err, "count", len(ids))
		return out
	}
	for _, l := range lessons {
		out[l.ID] = labelsOf(l)
	}
	return out
}

func (u Usecases) lessonTitles(dbc dbctx.Context, ids []uuid.UUID) map[uuid.UUID]string {
	out := map[uuid.UUID]string{}
	for id, l := range u.lessonsByID(dbc, ids) {
		out[id] = l.title
	}
	return out
}

func labelsOf(l *types.Lesson) lessonLabels {
	labels := lessonLabels{title: l.Title, exercises: map[string]string{}}
	if labels.title == "" {
		labels.title = l.ID.String()
	}
	sections, err := l.Sections()
	if err != nil {
		return labels
	}
	for _, ex := range sections.Exercises {
		labels.exercises[ex.ID] = ex.Title
	}
	return labels
}

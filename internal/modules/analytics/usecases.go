// Package analytics builds read-only reports over the ledger and progress
// tables. Reports take no locks and tolerate empty inputs.
package analytics

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/progress-engine/internal/data/aggregates"
	"github.com/yungbote/progress-engine/internal/data/repos"
	domainagg "github.com/yungbote/progress-engine/internal/domain/aggregates"
	"github.com/yungbote/progress-engine/internal/observability"
	"github.com/yungbote/progress-engine/internal/platform/dbctx"
	"github.com/yungbote/progress-engine/internal/platform/logger"
)

const (
	LeaderboardSize    = 10
	TopLessonsSize     = 5
	PendingReviewsSize = 15
	RecentEventsSize   = 5
	ActivityWindowDays = 7
)

type Service interface {
	GetLessonAnalytics(ctx context.Context, lessonID uuid.UUID) (*LessonAnalytics, error)
	GetOverview(ctx context.Context) (*Overview, error)
	GetStudentDashboard(ctx context.Context, userID uuid.UUID) (*StudentDashboard, error)
	ListLessonResponses(ctx context.Context, lessonID uuid.UUID) (*LessonResponses, error)
	GetFileAnalytics(ctx context.Context, fileID uuid.UUID) (*FileAnalytics, error)
}

type UsecasesDeps struct {
	Log     *logger.Logger
	Repos   repos.Set
	Metrics *observability.Metrics
	Now     func() time.Time
}

type Usecases struct {
	deps UsecasesDeps
}

var _ Service = Usecases{}

func New(deps UsecasesDeps) Usecases {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	deps.Log = deps.Log.With("module", "analytics")
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return Usecases{deps: deps}
}

func (u Usecases) now() time.Time {
	return u.deps.Now().UTC()
}

// observe records report latency and outcome.
func (u Usecases) observe(report string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = string(domainagg.CodeOf(err))
		if status == "" {
			status = "failure"
		}
	}
	u.deps.Metrics.ObserveAnalytics(report, status, time.Since(start))
}

func storeErr(op string, err error, keys ...string) error {
	return aggregates.MapError(op, err, keys...)
}

// displayNames resolves user names best effort. Unknown ids are absent from
// the map and callers fall back to the raw id.
func (u Usecases) displayNames(dbc dbctx.Context, ids []uuid.UUID) map[uuid.UUID]string {
	out := map[uuid.UUID]string{}
	if len(ids) == 0 || u.deps.Repos.Users == nil {
		return out
	}
	users, err := u.deps.Repos.Users.GetByIDs(dbc, uniqueIDs(ids))
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

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func avg(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return round2(sum / float64(n))
}

func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(100 * float64(part) / float64(total))
}

package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/progress-engine/internal/data/repos"
	"github.com/yungbote/progress-engine/internal/data/repos/testutil"
	types "github.com/yungbote/progress-engine/internal/domain"
	"github.com/yungbote/progress-engine/internal/modules/progress/scoring"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	ctx   context.Context
	db    *gorm.DB
	clock *testClock
	svc   Usecases
	repos repos.Set
}

func newFixture(t *testing.T, policy TheoryPolicy) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	clock := newTestClock()
	set := repos.NewSet(db, log)
	svc := New(UsecasesDeps{
		DB:     db,
		Log:    log,
		Repos:  set,
		Rates:  scoring.DefaultRates(),
		Theory: policy,
		Now:    clock.Now,
	})
	return &fixture{ctx: context.Background(), db: db, clock: clock, svc: svc, repos: set}
}

func (f *fixture) user(t *testing.T, name string) *types.User {
	t.Helper()
	return testutil.SeedUser(t, f.ctx, f.db, name, false)
}

func (f *fixture) lesson(t *testing.T, spec testutil.LessonSpec) *types.Lesson {
	t.Helper()
	return testutil.SeedLesson(t, f.ctx, f.db, spec)
}

func (f *fixture) count(t *testing.T, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	q := f.db.Model(model)
	if where != "" {
		q = q.Where(where, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

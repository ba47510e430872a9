package aggregates

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/progress-engine/internal/domain/aggregates"
	"github.com/yungbote/progress-engine/internal/platform/dbctx"
	"github.com/yungbote/progress-engine/internal/platform/keylock"
	"github.com/yungbote/progress-engine/internal/platform/logger"
)

type BaseDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Runner TxRunner
	Hooks  Hooks
	Locker keylock.Locker
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.Locker == nil {
		d.Locker = keylock.NewLocal()
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return d
}

// Key identifies the progress record a write owns. A zero LessonID means the
// write is not scoped to one record and takes no lock.
type Key struct {
	UserID   uuid.UUID
	LessonID uuid.UUID
}

func (k Key) lockKey() string {
	if k.UserID == uuid.Nil || k.LessonID == uuid.Nil {
		return ""
	}
	return keylock.ProgressKey(k.UserID, k.LessonID)
}

func (k Key) pairs() []string {
	out := make([]string, 0, 4)
	if k.UserID != uuid.Nil {
		out = append(out, "user_id", k.UserID.String())
	}
	if k.LessonID != uuid.Nil {
		out = append(out, "lesson_id", k.LessonID.String())
	}
	return out
}

// Writer serializes writes per key and runs each one in a transaction.
type Writer struct {
	deps BaseDeps
}

func NewWriter(deps BaseDeps) *Writer {
	return &Writer{deps: deps.withDefaults()}
}

// Write runs fn under the key lock inside one transaction. Partial writes are
// rolled back; the returned error is always coded.
func (w *Writer) Write(ctx context.Context, op string, key Key, fn func(dbc dbctx.Context) error) error {
	return executeWrite(ctx, w.deps, op, key, fn)
}

func executeWrite(ctx context.Context, deps BaseDeps, op string, key Key, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}

	var err error
	release := func() {}
	if lk := key.lockKey(); lk != "" {
		release, err = deps.Locker.Lock(ctx, lk)
	}
	if err == nil {
		err = deps.Runner.InTx(ctx, fn)
		release()
	}
	mapped := MapError(op, err, key.pairs()...)

	status := "success"
	if mapped != nil {
		status = aggregateErrorStatus(mapped)
		if domainagg.IsCode(mapped, domainagg.CodeConflict) {
			deps.Hooks.IncConflict(op)
		}
		if domainagg.IsCode(mapped, domainagg.CodeStoreUnavailable) || domainagg.IsCode(mapped, domainagg.CodeInternal) {
			deps.Log.Warn("aggregate write failed", "op", op, "status", status, "error", mapped)
		}
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	code := strings.TrimSpace(string(domainagg.CodeOf(err)))
	if code == "" {
		return "failure"
	}
	return code
}

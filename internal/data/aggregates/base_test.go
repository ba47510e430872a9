package aggregates

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/progress-engine/internal/data/repos/testutil"
	types "github.com/yungbote/progress-engine/internal/domain"
	domainagg "github.com/yungbote/progress-engine/internal/domain/aggregates"
	"github.com/yungbote/progress-engine/internal/platform/dbctx"
)

func TestExecuteWriteObservesSuccessStatus(t *testing.T) {
	hooks := &spyHooks{}

	err := executeWrite(context.Background(), BaseDeps{
		Runner: spyTxRunner{},
		Hooks:  hooks,
	}, "aggregate.test.success", Key{}, func(_ dbctx.Context) error { return nil })
	require.NoError(t, err)
	require.Len(t, hooks.Operations, 1)
	assert.Equal(t, "success", hooks.Operations[0].Status)
	assert.Empty(t, hooks.Conflicts)
}

func TestExecuteWriteTracksConflicts(t *testing.T) {
	hooks := &spyHooks{}
	key := Key{UserID: uuid.New(), LessonID: uuid.New()}

	err := executeWrite(context.Background(), BaseDeps{
		Runner: spyTxRunner{},
		Hooks:  hooks,
	}, "aggregate.test.conflict", key, func(_ dbctx.Context) error {
		return ConflictError("day already recorded")
	})
	require.Error(t, err)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeConflict))
	assert.Equal(t, []string{"aggregate.test.conflict"}, hooks.Conflicts)
	require.Len(t, hooks.Operations, 1)
	assert.Equal(t, string(domainagg.CodeConflict), hooks.Operations[0].Status)

	var coded *domainagg.Error
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, key.UserID.String(), coded.Keys["user_id"])
	assert.Equal(t, key.LessonID.String(), coded.Keys["lesson_id"])
}

func TestExecuteWriteLockFailureSkipsTx(t *testing.T) {
	hooks := &spyHooks{}
	runner := &countingRunner{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := executeWrite(ctx, BaseDeps{
		Runner: runner,
		Hooks:  hooks,
	}, "aggregate.test.cancelled", Key{UserID: uuid.New(), LessonID: uuid.New()}, func(_ dbctx.Context) error { return nil })
	require.Error(t, err)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeStoreUnavailable))
	assert.Zero(t, runner.calls.Load())
}

func TestWriterSerializesSameKey(t *testing.T) {
	w := NewWriter(BaseDeps{Runner: spyTxRunner{}})
	key := Key{UserID: uuid.New(), LessonID: uuid.New()}

	var inFlight, maxInFlight atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = w.Write(context.Background(), "aggregate.test.serial", key, func(_ dbctx.Context) error {
				n := inFlight.Add(1)
				for {
					cur := maxInFlight.Load()
					if n <= cur || maxInFlight.CompareAndSwap(cur, n) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				inFlight.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInFlight.Load())
}

func TestWriterRollsBackOnError(t *testing.T) {
	db := testutil.DB(t)
	w := NewWriter(BaseDeps{DB: db})
	ctx := context.Background()
	boom := errors.New("boom")

	err := w.Write(ctx, "aggregate.test.rollback", Key{}, func(dbc dbctx.Context) error {
		if err := dbc.DB(db).Create(&types.User{Username: "rolled-back"}).Error; err != nil {
			return err
		}
		return boom
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&types.User{}).Where("username = ?", "rolled-back").Count(&count).Error)
	assert.Zero(t, count)
}

type spyTxRunner struct{}

func (spyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(dbctx.Context{Ctx: ctx})
}

type countingRunner struct {
	calls atomic.Int32
}

func (r *countingRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.calls.Add(1)
	return fn(dbctx.Context{Ctx: ctx})
}

type spyHooks struct {
	mu         sync.Mutex
	Operations []spyOperation
	Conflicts  []string
}

type spyOperation struct {
	Name   string
	Status string
}

func (h *spyHooks) ObserveOperation(name, status string, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Operations = append(h.Operations, spyOperation{Name: name, Status: status})
}

func (h *spyHooks) IncConflict(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Conflicts = append(h.Conflicts, name)
}

package aggregates

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainagg "github.com/yungbote/progress-engine/internal/domain/aggregates"
)

func TestRequireCASSuccess(t *testing.T) {
	assert.NoError(t, RequireCASSuccess(true, "ok"))

	err := RequireCASSuccess(false, "stale run")
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, domainagg.CodeConflict, domainagg.CodeOf(MapError("Test.Op", err)))
}

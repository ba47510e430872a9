package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/progress-engine/internal/platform/authtoken"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "cli-secret")
	id := uuid.New()

	out, err := run(t, "token", id.String(), "--admin")
	require.NoError(t, err)

	v, err := authtoken.NewVerifier("cli-secret", 0)
	require.NoError(t, err)
	rd, err := v.Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, id, rd.UserID)
	assert.True(t, rd.IsAdmin)
}

func TestCommandsRejectBadIDs(t *testing.T) {
	_, err := run(t, "lesson", "nope")
	assert.ErrorContains(t, err, "not a uuid")

	_, err = run(t, "delete-lesson", uuid.NewString())
	assert.ErrorContains(t, err, "--yes")
}

func TestOverviewCommand_SQLite(t *testing.T) {
	t.Setenv("PROGRESS_CONFIG_FILE", "")
	t.Setenv("THEORY_POLICY", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "cli.db"))

	out, err := run(t, "overview")
	require.NoError(t, err)
	assert.Contains(t, out, `"total_lessons": 0`)
}

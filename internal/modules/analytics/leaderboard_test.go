package analytics

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/progress-engine/internal/domain"
)

func TestQuizLeaderboard_TiesKeepFirstAppearance(t *testing.T) {
	lesson := uuid.New()
	low, tieA, tieB := uuid.New(), uuid.New(), uuid.New()
	attempts := []*types.QuizAttempt{
		quizRow(low, lesson, 30, 30, false, at(0, 1)),
		quizRow(tieA, lesson, 50, 50, false, at(0, 2)),
		quizRow(tieB, lesson, 50, 50, false, at(0, 3)),
	}

	board := quizLeaderboard(attempts, LeaderboardSize)
	require.Len(t, board, 3)
	assert.Equal(t, []uuid.UUID{tieA, tieB, low}, []uuid.UUID{board[0].UserID, board[1].UserID, board[2].UserID})
	assert.Equal(t, []int{50, 50, 30}, []int{board[0].TotalPoints, board[1].TotalPoints, board[2].TotalPoints})

	again := quizLeaderboard(attempts, LeaderboardSize)
	assert.Equal(t, board, again)
}

func TestQuizLeaderboard_GroupsPerUser(t *testing.T) {
	lesson, user := uuid.New(), uuid.New()
	board := quizLeaderboard([]*types.QuizAttempt{
		quizRow(user, lesson, 40, 40, false, at(0, 1)),
		quizRow(user, lesson, 90, 110, true, at(0, 2)),
	}, LeaderboardSize)

	require.Len(t, board, 1)
	assert.Equal(t, QuizLeader{UserID: user, TotalPoints: 150, Attempts: 2, Passed: 1, BestScore: 90}, board[0])
}

func TestQuizLeaderboard_TruncatesAndHandlesEmpty(t *testing.T) {
	assert.Empty(t, quizLeaderboard(nil, LeaderboardSize))

	lesson := uuid.New()
	var attempts []*types.QuizAttempt
	for i := 0; i < 15; i++ {
		attempts = append(attempts, quizRow(uuid.New(), lesson, i, i, false, at(0, 1)))
	}
	board := quizLeaderboard(attempts, LeaderboardSize)
	require.Len(t, board, LeaderboardSize)
	assert.Equal(t, 14, board[0].TotalPoints)
	assert.Equal(t, 5, board[LeaderboardSize-1].TotalPoints)
}

func TestChallengeLeaderboard(t *testing.T) {
	lesson := uuid.New()
	a, b := uuid.New(), uuid.New()
	board := challengeLeaderboard([]*types.ChallengeRun{
		runRow(a, lesson, 1, 20, at(-3, 1), nil),
		runRow(b, lesson, 1, 80, at(-3, 2), ptr(at(-1, 1))),
		runRow(a, lesson, 2, 80, at(-2, 1), ptr(at(0, 1))),
	}, LeaderboardSize)

	require.Len(t, board, 2)
	assert.Equal(t, ChallengeLeader{UserID: a, TotalPoints: 100, Attempts: 2, Completed: 1}, board[0])
	assert.Equal(t, ChallengeLeader{UserID: b, TotalPoints: 80, Attempts: 1, Completed: 1}, board[1])
}

func TestSortAttempts_OrdersByTimeThenID(t *testing.T) {
	lesson := uuid.New()
	first := quizRow(uuid.New(), lesson, 10, 10, false, at(0, 1))
	second := quizRow(uuid.New(), lesson, 10, 10, false, at(0, 2))
	rows := []*types.QuizAttempt{second, first}
	sortAttempts(rows)
	assert.Equal(t, first, rows[0])
}

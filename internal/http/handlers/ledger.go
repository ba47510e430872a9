package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/progress-engine/internal/domain/learning"
	"github.com/yungbote/progress-engine/internal/http/response"
	"github.com/yungbote/progress-engine/internal/modules/progress"
)

type LedgerHandler struct {
	ledger progress.Ledger
}

func NewLedgerHandler(ledger progress.Ledger) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

type exerciseRequest struct {
	ResponseText string `json:"response_text"`
}

// POST /api/lessons/:id/exercises/:exerciseId/response
func (h *LedgerHandler) SubmitExercise(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	lessonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req exerciseRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.ledger.RecordExerciseResponse(c.Request.Context(), learning.ExerciseSubmission{
		UserID:     rd.UserID,
		LessonID:   lessonID,
		ExerciseID: c.Param("exerciseId"),
		Text:       req.ResponseText,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/lessons/:id/exercises/responses
func (h *LedgerHandler) ListExercises(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	lessonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	rows, err := h.ledger.ListExerciseResponses(c.Request.Context(), rd.UserID, lessonID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"responses": rows})
}

type quizRequest struct {
	QuizID  string          `json:"quiz_id"`
	Score   int             `json:"score"`
	Passed  bool            `json:"passed"`
	Answers json.RawMessage `json:"answers"`
}

// POST /api/lessons/:id/quiz/attempts
func (h *LedgerHandler) SubmitQuiz(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	lessonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req quizRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.ledger.RecordQuizAttempt(c.Request.Context(), learning.QuizSubmission{
		UserID:       rd.UserID,
		LessonID:     lessonID,
		QuizID:       req.QuizID,
		ScorePercent: req.Score,
		Passed:       req.Passed,
		Answers:      req.Answers,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/lessons/:id/quiz/attempts
func (h *LedgerHandler) ListQuiz(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	lessonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	out, err := h.ledger.ListQuizAttempts(c.Request.Context(), rd.UserID, lessonID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

type timeRequest struct {
	MinutesSpent int `json:"minutes_spent"`
}

// POST /api/lessons/:id/time
func (h *LedgerHandler) TrackTime(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	lessonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req timeRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.ledger.RecordTimeActivity(c.Request.Context(), learning.TimeSample{
		UserID:   rd.UserID,
		LessonID: lessonID,
		Minutes:  req.MinutesSpent,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/lessons/:id/time
func (h *LedgerHandler) GetTime(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	lessonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	out, err := h.ledger.GetTimeActivity(c.Request.Context(), rd.UserID, lessonID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

type videoRequest struct {
	MinutesWatched int `json:"minutes_watched"`
}

// POST /api/lessons/:id/files/:fileId/watch
func (h *LedgerHandler) TrackVideo(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	lessonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	fileID, ok := uuidParam(c, "fileId")
	if !ok {
		return
	}
	var req videoRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.ledger.RecordVideoWatch(c.Request.Context(), learning.VideoSample{
		UserID:   rd.UserID,
		LessonID: lessonID,
		FileID:   fileID,
		Minutes:  req.MinutesWatched,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

type fileActionRequest struct {
	Action string `json:"action"`
}

// POST /api/lessons/:id/files/:fileId/actions
func (h *LedgerHandler) TrackFileAction(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	lessonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	fileID, ok := uuidParam(c, "fileId")
	if !ok {
		return
	}
	var req fileActionRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.ledger.RecordFileAction(c.Request.Context(), learning.FileEvent{
		UserID:   rd.UserID,
		LessonID: lessonID,
		FileID:   fileID,
		Action:   learning.FileActionKind(req.Action),
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, out)
}

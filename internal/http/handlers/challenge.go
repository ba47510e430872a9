package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/progress-engine/internal/domain/learning"
	"github.com/yungbote/progress-engine/internal/http/response"
	"github.com/yungbote/progress-engine/internal/modules/progress"
)

type ChallengeHandler struct {
	tracker progress.ChallengeTracker
}

func NewChallengeHandler(tracker progress.ChallengeTracker) *ChallengeHandler {
	return &ChallengeHandler{tracker: tracker}
}

type checkInRequest struct {
	Day       int    `json:"day"`
	Note      string `json:"note"`
	Completed bool   `json:"completed"`
}

// POST /api/lessons/:id/challenges/:challengeId/checkin
func (h *ChallengeHandler) CheckIn(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	lessonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req checkInRequest
	if !bindJSON(c, &req) {
		return
	}
	run, err := h.tracker.CheckIn(c.Request.Context(), learning.ChallengeCheckIn{
		UserID:      rd.UserID,
		LessonID:    lessonID,
		ChallengeID: c.Param("challengeId"),
		Day:         req.Day,
		Note:        req.Note,
		Completed:   req.Completed,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, run)
}

// GET /api/lessons/:id/challenges/:challengeId
func (h *ChallengeHandler) Status(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	lessonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	out, err := h.tracker.GetActiveOrLastRun(c.Request.Context(), rd.UserID, lessonID, c.Param("challengeId"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/lessons/:id/challenges/:challengeId/history
func (h *ChallengeHandler) History(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	lessonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	out, err := h.tracker.GetHistory(c.Request.Context(), rd.UserID, lessonID, c.Param("challengeId"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

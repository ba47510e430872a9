package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/progress-engine/internal/http/response"
	"github.com/yungbote/progress-engine/internal/modules/analytics"
	"github.com/yungbote/progress-engine/internal/modules/progress"
)

type ProgressHandler struct {
	progress  progress.Aggregator
	dashboard analytics.Service
}

func NewProgressHandler(p progress.Aggregator, dashboard analytics.Service) *ProgressHandler {
	return &ProgressHandler{progress: p, dashboard: dashboard}
}

// GET /api/lessons/:id/progress
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	lessonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	out, err := h.progress.GetProgress(c.Request.Context(), rd.UserID, lessonID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/lessons/:id/progress/recompute
func (h *ProgressHandler) Recompute(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	lessonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	out, err := h.progress.RecomputeProgress(c.Request.Context(), rd.UserID, lessonID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/progress
func (h *ProgressHandler) ListMine(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	rows, err := h.progress.ListProgressForUser(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"progress": rows})
}

// GET /api/dashboard
func (h *ProgressHandler) Dashboard(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	out, err := h.dashboard.GetStudentDashboard(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

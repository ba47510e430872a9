package handlers

import (
	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/progress-engine/internal/domain/aggregates"
	"github.com/yungbote/progress-engine/internal/http/response"
	"github.com/yungbote/progress-engine/internal/modules/analytics"
	"github.com/yungbote/progress-engine/internal/modules/progress"
)

// AdminHandler serves the reports and maintenance routes. The router puts it
// behind RequireAdmin.
type AdminHandler struct {
	reports  analytics.Service
	progress progress.Service
}

func NewAdminHandler(reports analytics.Service, p progress.Service) *AdminHandler {
	return &AdminHandler{reports: reports, progress: p}
}

// GET /api/admin/overview
func (h *AdminHandler) Overview(c *gin.Context) {
	out, err := h.reports.GetOverview(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/admin/lessons/:id/analytics
func (h *AdminHandler) LessonAnalytics(c *gin.Context) {
	lessonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	out, err := h.reports.GetLessonAnalytics(c.Request.Context(), lessonID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/admin/lessons/:id/responses
func (h *AdminHandler) LessonResponses(c *gin.Context) {
	lessonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	out, err := h.reports.ListLessonResponses(c.Request.Context(), lessonID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/admin/lessons/:id/challenge-notes
func (h *AdminHandler) ChallengeNotes(c *gin.Context) {
	lessonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	notes, err := h.progress.ListChallengeNotes(c.Request.Context(), lessonID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"lesson_id": lessonID, "notes": notes, "total_notes": len(notes)})
}

// GET /api/admin/files/:id/analytics
func (h *AdminHandler) FileAnalytics(c *gin.Context) {
	fileID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	out, err := h.reports.GetFileAnalytics(c.Request.Context(), fileID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

type reviewRequest struct {
	Comment string `json:"comment"`
}

// PUT /api/admin/responses/:id/review
func (h *AdminHandler) ReviewResponse(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	responseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req reviewRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.progress.ReviewExerciseResponse(c.Request.Context(), responseID, rd.UserID, req.Comment)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

// DELETE /api/admin/lessons/:id
// Counts are returned even when some collections failed.
func (h *AdminHandler) DeleteLesson(c *gin.Context) {
	lessonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	counts, err := h.progress.DeleteLesson(c.Request.Context(), lessonID)
	if err != nil {
		c.JSON(response.StatusFor(domainagg.CodeOf(err)), gin.H{"deleted": counts, "error": err.Error()})
		return
	}
	response.RespondOK(c, gin.H{"deleted": counts})
}

// POST /api/admin/users/:userId/lessons/:id/reset
func (h *AdminHandler) ResetUserLesson(c *gin.Context) {
	userID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}
	lessonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	counts, err := h.progress.ResetUserLesson(c.Request.Context(), userID, lessonID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": counts})
}

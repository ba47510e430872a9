package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/progress-engine/internal/http/handlers"
	httpMW "github.com/yungbote/progress-engine/internal/http/middleware"
	"github.com/yungbote/progress-engine/internal/observability"
	"github.com/yungbote/progress-engine/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	AuthMiddleware *httpMW.AuthMiddleware
	CORSOrigins    []string
	// TraceService enables otelgin spans under this service name when set.
	TraceService string

	LedgerHandler    *httpH.LedgerHandler
	ProgressHandler  *httpH.ProgressHandler
	ChallengeHandler *httpH.ChallengeHandler
	AdminHandler     *httpH.AdminHandler
	HealthHandler    *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TraceService != "" {
		r.Use(otelgin.Middleware(cfg.TraceService))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}

	// Activity ledger
	if h := cfg.LedgerHandler; h != nil {
		api.POST("/lessons/:id/exercises/:exerciseId/response", h.SubmitExercise)
		api.GET("/lessons/:id/exercises/responses", h.ListExercises)
		api.POST("/lessons/:id/quiz/attempts", h.SubmitQuiz)
		api.GET("/lessons/:id/quiz/attempts", h.ListQuiz)
		api.POST("/lessons/:id/time", h.TrackTime)
		api.GET("/lessons/:id/time", h.GetTime)
		api.POST("/lessons/:id/files/:fileId/watch", h.TrackVideo)
		api.POST("/lessons/:id/files/:fileId/actions", h.TrackFileAction)
	}

	// Progress
	if h := cfg.ProgressHandler; h != nil {
		api.GET("/lessons/:id/progress", h.GetProgress)
		api.POST("/lessons/:id/progress/recompute", h.Recompute)
		api.GET("/progress", h.ListMine)
		api.GET("/dashboard", h.Dashboard)
	}

	// Challenges
	if h := cfg.ChallengeHandler; h != nil {
		api.POST("/lessons/:id/challenges/:challengeId/checkin", h.CheckIn)
		api.GET("/lessons/:id/challenges/:challengeId", h.Status)
		api.GET("/lessons/:id/challenges/:challengeId/history", h.History)
	}

	// Admin
	if h := cfg.AdminHandler; h != nil {
		admin := api.Group("/admin")
		if cfg.AuthMiddleware != nil {
			admin.Use(cfg.AuthMiddleware.RequireAdmin())
		}
		admin.GET("/overview", h.Overview)
		admin.GET("/lessons/:id/analytics", h.LessonAnalytics)
		admin.GET("/lessons/:id/responses", h.LessonResponses)
		admin.GET("/lessons/:id/challenge-notes", h.ChallengeNotes)
		admin.GET("/files/:id/analytics", h.FileAnalytics)
		admin.PUT("/responses/:id/review", h.ReviewResponse)
		admin.DELETE("/lessons/:id", h.DeleteLesson)
		admin.POST("/users/:userId/lessons/:id/reset", h.ResetUserLesson)
	}

	return r
}

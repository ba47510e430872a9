package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/progress-engine/internal/http/response"
	"github.com/yungbote/progress-engine/internal/platform/apierr"
	"github.com/yungbote/progress-engine/internal/platform/authtoken"
	"github.com/yungbote/progress-engine/internal/platform/ctxutil"
	"github.com/yungbote/progress-engine/internal/platform/logger"
)

type AuthMiddleware struct {
	log      *logger.Logger
	verifier *authtoken.Verifier
}

func NewAuthMiddleware(log *logger.Logger, verifier *authtoken.Verifier) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("Middleware", "AuthMiddleware"), verifier: verifier}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearer(c)
		if tokenString == "" {
			abort(c, apierr.Unauthorized("missing or invalid token"))
			return
		}
		rd, err := am.verifier.Verify(tokenString)
		if err != nil {
			am.log.Debug("token rejected", "error", err)
			abort(c, apierr.Unauthorized(err.Error()))
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		if rd == nil || !rd.IsAdmin {
			abort(c, apierr.Forbidden("admin role required"))
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, err *apierr.Error) {
	response.RespondErr(c, err)
	c.Abort()
}

func extractBearer(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vladimiradmaev/diabetes-companion/internal/domain"
	apperrors "github.com/vladimiradmaev/diabetes-companion/internal/errors"
	"github.com/vladimiradmaev/diabetes-companion/internal/interfaces"
	"github.com/vladimiradmaev/diabetes-companion/internal/logger"
)

const (
	userKey  = "user"
	tokenKey = "token"
)

// RequireAuth resolves the bearer token to a user and stores it in the context
func RequireAuth(identity interfaces.IdentityServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			writeError(c, apperrors.NewPermissionError("authorization token required"))
			return
		}

		user, err := identity.CurrentUser(c.Request.Context(), token)
		if err != nil {
			writeError(c, err)
			return
		}

		c.Set(userKey, user)
		c.Set(tokenKey, token)
		c.Next()
	}
}

func currentUser(c *gin.Context) *domain.User {
	return c.MustGet(userKey).(*domain.User)
}

// requestLogger logs every request with its status and latency
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}

// writeError responds with the status and public message of err. Server side
// failures are logged with their internal details.
func writeError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= 500 {
		apperrors.NewHandler(logger.GetLogger()).Handle(c.Request.Context(), err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": apperrors.PublicMessage(err)})
}

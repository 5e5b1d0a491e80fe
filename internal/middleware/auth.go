package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"hospital-management-server/internal/config"
	"hospital-management-server/internal/models"
	"hospital-management-server/internal/session"
	"hospital-management-server/internal/utils"
)

const sessionKey = "session"

// AuthMiddleware validates the bearer token and resolves it into an owned
// Session for the request. Requests whose token resolves to Anonymous are
// rejected.
func AuthMiddleware(cfg *config.Config, manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1], cfg.ServiceKey)
		if err != nil {
			utils.Unauthorized(c, "Invalid token: "+err.Error())
			c.Abort()
			return
		}

		sess := manager.NewSession()
		if err := sess.Initialize(c.Request.Context(), claims.AccountID); err != nil {
			utils.Unauthorized(c, "Session resolution failed: "+err.Error())
			c.Abort()
			return
		}
		if !sess.Authenticated() {
			utils.Unauthorized(c, "No profile for this session")
			c.Abort()
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

// RoleAuthMiddleware creates a middleware for role-based authorization.
// It should be used *after* AuthMiddleware.
func RoleAuthMiddleware(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := SessionFromContext(c)
		if !ok {
			utils.InternalServerError(c, "Session not found in context. AuthMiddleware might be missing.")
			c.Abort()
			return
		}

		role := sess.CurrentProfile().Role
		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}

		utils.Forbidden(c, "You do not have permission to access this resource.")
		c.Abort()
	}
}

// SessionFromContext returns the request's resolved Session.
func SessionFromContext(c *gin.Context) (*session.Session, bool) {
	value, exists := c.Get(sessionKey)
	if !exists {
		return nil, false
	}
	sess, ok := value.(*session.Session)
	return sess, ok
}

// ProfileFromContext returns the authenticated profile for the request.
func ProfileFromContext(c *gin.Context) (*models.Profile, bool) {
	sess, ok := SessionFromContext(c)
	if !ok || !sess.Authenticated() {
		return nil, false
	}
	return sess.CurrentProfile(), true
}

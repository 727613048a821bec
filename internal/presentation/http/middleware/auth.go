package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/entity"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/enum"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/repository"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/presentation/http/dto/response"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/apperror"
)

// Context keys set by AuthMiddleware.
const (
	ContextUsername = "username"
	ContextRole     = "role"
	ContextSession  = "session"
)

// TokenValidator turns a bearer token into the session it belongs to.
type TokenValidator interface {
	ValidateToken(token string) (*entity.Session, error)
}

// AuthMiddleware creates a bearer token authentication middleware. A token
// is only good while the session it was issued for is still stored.
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		session, err := validator.ValidateToken(parts[1])
		if err != nil {
			if apperror.IsAppError(err) {
				response.Error(c, err)
			} else {
				response.Unauthorized(c, "Invalid or expired token")
			}
			c.Abort()
			return
		}

		c.Set(ContextUsername, session.Username)
		c.Set(ContextRole, session.Role)
		c.Set(ContextSession, session)
		c.Request = c.Request.WithContext(repository.WithActor(c.Request.Context(), session.Username))

		c.Next()
	}
}

// RequireRole lets through users ranked at least min.
func RequireRole(min enum.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get(ContextRole)
		if !ok {
			response.Forbidden(c, "Access denied")
			c.Abort()
			return
		}

		userRole, ok := role.(enum.Role)
		if !ok || !userRole.Valid() {
			response.Forbidden(c, "Access denied")
			c.Abort()
			return
		}

		if !userRole.AtLeast(min) {
			response.Forbidden(c, "Insufficient role privileges")
			c.Abort()
			return
		}

		c.Next()
	}
}

// SessionFrom returns the session AuthMiddleware stored on c.
func SessionFrom(c *gin.Context) *entity.Session {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil
	}
	s, _ := v.(*entity.Session)
	return s
}

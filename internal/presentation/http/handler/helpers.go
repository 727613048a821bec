package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/entity"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/presentation/http/middleware"
)

// GetUsername extracts the signed-in username from the Gin context
func GetUsername(c *gin.Context) string {
	return c.GetString(middleware.ContextUsername)
}

// GetSession extracts the signed-in session from the Gin context
func GetSession(c *gin.Context) *entity.Session {
	return middleware.SessionFrom(c)
}

// bindError is the message shown for a body that does not parse.
func bindError(err error) string {
	return "Invalid request: " + err.Error()
}

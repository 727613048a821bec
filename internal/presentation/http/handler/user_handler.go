package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/application/service"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/presentation/http/dto/response"
)

// UserHandler serves the owner's users and activity pages.
type UserHandler struct {
	userService     *service.UserService
	activityService *service.ActivityLogService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService, activityService *service.ActivityLogService) *UserHandler {
	return &UserHandler{userService: userService, activityService: activityService}
}

// List returns every user with its badge.
func (h *UserHandler) List(c *gin.Context) {
	response.OK(c, "Users retrieved successfully", h.userService.ListUsers(c.Request.Context()))
}

// Logs returns the activity log.
func (h *UserHandler) Logs(c *gin.Context) {
	response.OK(c, "Activity logs retrieved successfully", h.activityService.List(c.Request.Context()))
}

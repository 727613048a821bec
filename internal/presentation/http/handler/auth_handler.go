package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/application/service"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/enum"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/presentation/http/dto/request"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/presentation/http/dto/response"
)

// TerminalCloser tears down the reception terminal of a cashier.
type TerminalCloser interface {
	Close(username string)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *service.AuthService
	terminals   TerminalCloser
}

// NewAuthHandler creates a new auth handler. terminals may be nil.
func NewAuthHandler(authService *service.AuthService, terminals TerminalCloser) *AuthHandler {
	return &AuthHandler{authService: authService, terminals: terminals}
}

// Login handles user login
// @Summary Login
// @Description Check credentials against the users sheet and store the session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Login credentials"
// @Success 200 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	output, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Login successful", gin.H{
		"user":         output.Session.Display(),
		"role":         output.Session.Role,
		"landing_page": output.LandingPage,
		"access_token": output.AccessToken,
		"token_type":   "Bearer",
	})
}

// Logout handles user logout
// @Summary Logout
// @Description Clear the stored session; every issued token stops working
// @Tags auth
// @Security BearerAuth
// @Success 200 {object} response.APIResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	username := GetUsername(c)
	if err := h.authService.Logout(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	if h.terminals != nil && username != "" {
		h.terminals.Close(username)
	}
	response.OK(c, "Logged out successfully", nil)
}

// Me returns the signed-in user.
func (h *AuthHandler) Me(c *gin.Context) {
	session := GetSession(c)
	if session == nil {
		response.Unauthorized(c, "Not signed in")
		return
	}
	response.OK(c, "Current user retrieved", gin.H{
		"user":         session.Display(),
		"role":         session.Role,
		"landing_page": session.Role.LandingPage(),
	})
}

// CheckAccess decides whether the user signed in at this terminal may open
// a page. It needs no token: the answer for an anonymous terminal is a
// redirect to the login page.
func (h *AuthHandler) CheckAccess(c *gin.Context) {
	var req request.AccessRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "role is required")
		return
	}

	current, err := h.authService.Current()
	if err != nil {
		response.Error(c, err)
		return
	}

	decision, err := h.authService.CheckPageAccess(c.Request.Context(), enum.ParseRole(req.Role))
	if err != nil {
		response.Error(c, err)
		return
	}
	if decision.LoggedOut && current != nil && h.terminals != nil {
		h.terminals.Close(current.Username)
	}
	response.OK(c, "Access checked", decision)
}

package service

import (
	"context"
	"strings"

	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/entity"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/enum"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/repository"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/apperror"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/utils"
	"go.uber.org/zap"
)

// Access messages shown when a page check fails.
const (
	MsgInvalidRole  = "Invalid user role detected!"
	MsgAccessDenied = "Access denied! You do not have permission to access this page."
)

// AuthService handles authentication-related operations
type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	jwtManager  *utils.JWTManager
	activity    *ActivityLogService
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	jwtManager *utils.JWTManager,
	activity *ActivityLogService,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		jwtManager:  jwtManager,
		activity:    activity,
	}
}

// LoginOutput represents the login output
type LoginOutput struct {
	Session     *entity.Session
	LandingPage string
	AccessToken string
}

// Login checks credentials with the users sheet and stores the session.
// On failure the stored session is left alone.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginOutput, error) {
	username = strings.TrimSpace(username)
	var fieldErrors []apperror.FieldError
	if username == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "username", Message: "Username is required"})
	}
	if password == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "password", Message: "Password is required"})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	session, err := s.userRepo.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	if err := s.sessionRepo.Save(session); err != nil {
		zap.S().Errorw("save session", "username", session.Username, "error", err)
		return nil, apperror.ErrInternalServer
	}

	token, err := s.jwtManager.GenerateAccessToken(session.Username, session.Role.String())
	if err != nil {
		return nil, err
	}

	s.activity.Record(repository.WithActor(ctx, session.Username), "User logged in")

	return &LoginOutput{
		Session:     session,
		LandingPage: session.Role.LandingPage(),
		AccessToken: token,
	}, nil
}

// Logout clears the stored session, which revokes every issued token.
func (s *AuthService) Logout(ctx context.Context) error {
	current, err := s.sessionRepo.Get()
	if err != nil {
		return err
	}
	if err := s.sessionRepo.Delete(); err != nil {
		return err
	}
	if current != nil {
		s.activity.Record(repository.WithActor(ctx, current.Username), "User logged out")
	}
	return nil
}

// Current returns the signed-in session, or nil when anonymous.
func (s *AuthService) Current() (*entity.Session, error) {
	return s.sessionRepo.Get()
}

// AccessDecision is the outcome of a page check.
type AccessDecision struct {
	Allowed   bool   `json:"allowed"`
	Redirect  string `json:"redirect,omitempty"`
	LoggedOut bool   `json:"logged_out,omitempty"`
	Message   string `json:"message,omitempty"`
}

// CheckPageAccess decides whether the signed-in user may open a page that
// needs required. An unknown role on either side signs the user out.
func (s *AuthService) CheckPageAccess(ctx context.Context, required enum.Role) (*AccessDecision, error) {
	current, err := s.sessionRepo.Get()
	if err != nil {
		return nil, err
	}
	if current == nil {
		return &AccessDecision{Redirect: enum.DefaultLandingPage}, nil
	}

	if !current.Role.Valid() || !required.Valid() {
		if err := s.Logout(ctx); err != nil {
			return nil, err
		}
		return &AccessDecision{
			Redirect:  enum.DefaultLandingPage,
			LoggedOut: true,
			Message:   MsgInvalidRole,
		}, nil
	}

	if !current.Role.AtLeast(required) {
		return &AccessDecision{
			Redirect: current.Role.LandingPage(),
			Message:  MsgAccessDenied,
		}, nil
	}
	return &AccessDecision{Allowed: true}, nil
}

// ValidateToken accepts a token only while it belongs to the stored session.
func (s *AuthService) ValidateToken(token string) (*entity.Session, error) {
	claims, err := s.jwtManager.ValidateAccessToken(token)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}

	current, err := s.sessionRepo.Get()
	if err != nil {
		return nil, err
	}
	if current == nil || current.Username != claims.Username || current.Role.String() != claims.Role {
		return nil, apperror.ErrSessionEnded
	}
	return current, nil
}

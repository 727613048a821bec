package repository

import (
	"context"

	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/entity"
)

// UserRepository defines the user operations of the remote sheet
type UserRepository interface {
	// Login returns the matching user, apperror.ErrInvalidCredentials or a transport error.
	Login(ctx context.Context, username, password string) (*entity.Session, error)
	List(ctx context.Context) []entity.User
}

// ActivityLogRepository defines the audit sheet operations
type ActivityLogRepository interface {
	// Add records action for the actor in ctx. Failures are logged, never returned.
	Add(ctx context.Context, action string)
	List(ctx context.Context) []entity.ActivityLog
}

// SessionRepository persists the single signed-in session of this terminal
type SessionRepository interface {
	// Get returns nil, nil when nobody is signed in.
	Get() (*entity.Session, error)
	Save(session *entity.Session) error
	Delete() error
}

package entity

import (
	"strings"

	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/enum"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/apperror"
)

// MinPasswordLength is the shortest password the users sheet accepts.
const MinPasswordLength = 6

// User is one row of the users sheet. Passwords never leave the process.
type User struct {
	UserID   string    `json:"user_id,omitempty"`
	Username string    `json:"username"`
	Password string    `json:"-"`
	Role     enum.Role `json:"role"`
}

// Session is the signed-in user of this terminal.
type Session struct {
	Username string    `json:"username"`
	Role     enum.Role `json:"role"`
}

// UserDisplay is the header badge for a user.
type UserDisplay struct {
	Initial  string `json:"initial"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Color    string `json:"color"`
}

// UserFromRecord builds a User from a decoded sheet row.
func UserFromRecord(rec map[string]interface{}) User {
	return User{
		UserID:   cellString(rec, "user_id", "userId", "id"),
		Username: cellString(rec, "username"),
		Password: cellString(rec, "password"),
		Role:     enum.ParseRole(cellString(rec, "role")),
	}
}

// Validate checks a user record before it is written.
func (u *User) Validate() []apperror.FieldError {
	var errs []apperror.FieldError
	if strings.TrimSpace(u.Username) == "" {
		errs = append(errs, apperror.FieldError{Field: "username", Message: "Username is required"})
	}
	if len(u.Password) < MinPasswordLength {
		errs = append(errs, apperror.FieldError{Field: "password", Message: "Password must be at least 6 characters"})
	}
	if !u.Role.Valid() {
		errs = append(errs, apperror.FieldError{Field: "role", Message: "Valid role is required"})
	}
	return errs
}

// Display builds the badge for u.
func (u *User) Display() UserDisplay {
	initial := "?"
	if name := strings.TrimSpace(u.Username); name != "" {
		initial = strings.ToUpper(string([]rune(name)[0]))
	}
	return UserDisplay{
		Initial:  initial,
		Username: u.Username,
		Role:     u.Role.DisplayName(),
		Color:    u.Role.Color(),
	}
}

// Display builds the badge for the signed-in user.
func (s *Session) Display() UserDisplay {
	u := User{Username: s.Username, Role: s.Role}
	return u.Display()
}

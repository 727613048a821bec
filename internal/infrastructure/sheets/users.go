package sheets

import (
	"context"
	"net/url"
	"strings"

	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/entity"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/enum"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/repository"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/apperror"
)

var _ repository.UserRepository = (*UserStore)(nil)

// UserStore is the users sheet.
type UserStore struct {
	c *Client
}

// Login checks credentials against the users sheet.
func (s *UserStore) Login(ctx context.Context, username, password string) (*entity.Session, error) {
	c := s.c
	env, err := c.get(ctx, "login", c.timeouts.Read, url.Values{
		"username": {username},
		"password": {password},
	})
	if err != nil {
		return nil, apperror.ErrLoginNetwork
	}
	if !env.ok() {
		if msg := env.str("error", "message"); msg != "" {
			return nil, apperror.New(apperror.KindUnauthorized, msg)
		}
		return nil, apperror.ErrInvalidCredentials
	}

	user := env.object("user")
	name := strings.TrimSpace(user.str("username"))
	if name == "" {
		name = strings.TrimSpace(username)
	}
	return &entity.Session{
		Username: name,
		Role:     enum.ParseRole(user.str("role")),
	}, nil
}

// List returns every user row. Failures yield an empty list.
func (s *UserStore) List(ctx context.Context) []entity.User {
	c := s.c
	env, err := c.get(ctx, "getUsers", c.timeouts.Lookup, nil)
	if err == nil && !env.ok() {
		err = apperror.NewBackendError(env.str("error"), env.str("message"), apperror.KindBackend)
	}
	if err != nil {
		c.log.Warnw("load users failed", "error", err)
		return []entity.User{}
	}

	rows := env.records("users", "data")
	users := make([]entity.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, entity.UserFromRecord(row))
	}
	return users
}

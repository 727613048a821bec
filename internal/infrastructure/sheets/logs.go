package sheets

import (
	"context"
	"strings"

	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/entity"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/repository"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/apperror"
)

var _ repository.ActivityLogRepository = (*LogStore)(nil)

// LogStore is the audit sheet.
type LogStore struct {
	c *Client
}

// Add appends an audit row. An empty action does nothing.
func (s *LogStore) Add(ctx context.Context, action string) {
	action = strings.TrimSpace(action)
	if action == "" {
		return
	}

	user := repository.ActorFrom(ctx, "system")
	env, err := s.c.post(ctx, "addLog", s.c.timeouts.Log, map[string]interface{}{
		"user":       user,
		"log_action": action,
	})
	if err == nil && !env.ok() {
		err = apperror.NewBackendError(env.str("error"), env.str("message"), apperror.KindBackend)
	}
	if err != nil {
		s.c.log.Warnw("activity log not recorded", "user", user, "action", action, "error", err)
	}
}

// List returns the audit rows. Failures yield an empty list.
func (s *LogStore) List(ctx context.Context) []entity.ActivityLog {
	env, err := s.c.post(ctx, "getLogs", s.c.timeouts.Lookup, nil)
	if err == nil && !env.ok() {
		err = apperror.NewBackendError(env.str("error"), env.str("message"), apperror.KindBackend)
	}
	if err != nil {
		s.c.log.Warnw("load logs failed", "error", err)
		return []entity.ActivityLog{}
	}

	rows := env.records("logs", "data")
	logs := make([]entity.ActivityLog, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, entity.ActivityLogFromRecord(row))
	}
	return logs
}

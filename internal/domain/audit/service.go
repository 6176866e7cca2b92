package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Service struct {
	activity ActivityLogRepository
	system   SystemLogRepository
}

func NewService(activity ActivityLogRepository, system SystemLogRepository) *Service {
	return &Service{activity: activity, system: system}
}

// RecordActivity appends a user-attributed entry to the audit trail. It is
// best-effort: a failed write is logged and never surfaces to the caller,
// so the operation being audited cannot fail because of it.
func (s *Service) RecordActivity(ctx context.Context, userID uuid.UUID, action, detail string) {
	entry := &ActivityLog{UserID: userID, Action: action}
	if detail != "" {
		entry.Detail = &detail
	}
	if err := s.activity.Create(ctx, entry); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Str("action", action).
			Msg("failed to write activity log")
	}
}

// RecordSystem appends an operator-facing event, same best-effort contract
// as RecordActivity.
func (s *Service) RecordSystem(ctx context.Context, level LogLevel, source, message string, extra *string) {
	if !level.Valid() {
		level = LevelInfo
	}
	entry := &SystemLog{Level: level, Source: source, Message: message, Context: extra}
	if err := s.system.Create(ctx, entry); err != nil {
		log.Warn().Err(err).Str("source", source).Msg("failed to write system log")
	}
}

// ListActivity returns audit trail entries, optionally filtered by user,
// action and time window.
func (s *Service) ListActivity(ctx context.Context, filters map[string]string, limit, offset int) ([]*ActivityLog, int, error) {
	params := map[string]string{}
	for _, k := range []string{"user", "action", "from", "to"} {
		if v, ok := filters[k]; ok && v != "" {
			params[k] = v
		}
	}
	if u, ok := params["user"]; ok {
		if _, err := uuid.Parse(u); err != nil {
			return nil, 0, fmt.Errorf("%w: invalid user filter", ErrValidation)
		}
	}
	return s.activity.Search(ctx, params, limit, offset)
}

// ListSystem returns system log entries, optionally filtered by level,
// source and time window.
func (s *Service) ListSystem(ctx context.Context, filters map[string]string, limit, offset int) ([]*SystemLog, int, error) {
	params := map[string]string{}
	for _, k := range []string{"level", "source", "from", "to"} {
		if v, ok := filters[k]; ok && v != "" {
			params[k] = v
		}
	}
	if l, ok := params["level"]; ok && !LogLevel(l).Valid() {
		return nil, 0, fmt.Errorf("%w: unknown level %q", ErrValidation, l)
	}
	return s.system.Search(ctx, params, limit, offset)
}

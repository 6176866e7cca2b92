package audit

import "context"

type ActivityLogRepository interface {
	Create(ctx context.Context, entry *ActivityLog) error
	// Search filters on "user", "action", "from" and "to" params, newest
	// first.
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*ActivityLog, int, error)
}

type SystemLogRepository interface {
	Create(ctx context.Context, entry *SystemLog) error
	// Search filters on "level", "source", "from" and "to" params, newest
	// first.
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*SystemLog, int, error)
}

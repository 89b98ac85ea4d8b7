package out

import (
	"context"

	"tally/internal/modules/tracker/domain"
)

// SessionStore is the persistent keyed store for sessions. Put upserts by ID
// and must reject a live (active/paused) session while another live session
// exists, and any session whose timestamp is already taken by a different
// session.
type SessionStore interface {
	GetAllSessions(ctx context.Context) ([]domain.Session, error)
	GetSession(ctx context.Context, id string) (domain.Session, error)
	PutSession(ctx context.Context, session domain.Session) error
}

// TagStore persists tags keyed by name. Put must reject a color already held
// by a different tag.
type TagStore interface {
	GetTag(ctx context.Context, name string) (domain.Tag, error)
	GetAllTags(ctx context.Context) ([]domain.Tag, error)
	PutTag(ctx context.Context, tag domain.Tag) error
	DeleteTag(ctx context.Context, name string) error
}

// ConfigStore is a small key/value store for app bookkeeping entries.
type ConfigStore interface {
	GetConfig(ctx context.Context, key string) (string, error)
	PutConfig(ctx context.Context, key, value string) error
}

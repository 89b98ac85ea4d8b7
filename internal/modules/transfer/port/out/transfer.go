package out

import (
	"context"

	trackerdomain "tally/internal/modules/tracker/domain"
)

// SessionStore is the slice of the Record Store the importer and exporter
// need. The same store adapter that serves the tracker module satisfies it.
type SessionStore interface {
	GetAllSessions(ctx context.Context) ([]trackerdomain.Session, error)
	PutSession(ctx context.Context, session trackerdomain.Session) error
}

type TagStore interface {
	GetTag(ctx context.Context, name string) (trackerdomain.Tag, error)
	GetAllTags(ctx context.Context) ([]trackerdomain.Tag, error)
	PutTag(ctx context.Context, tag trackerdomain.Tag) error
}

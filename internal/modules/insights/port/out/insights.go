package out

import (
	"context"

	trackerdomain "tally/internal/modules/tracker/domain"
)

// SessionSource is the read-only slice of the Record Store analytics needs.
type SessionSource interface {
	GetAllSessions(ctx context.Context) ([]trackerdomain.Session, error)
}

package in

import (
	"context"

	"tally/internal/modules/tracker/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.SessionOutput, error)
	Pause(ctx context.Context) (dto.SessionOutput, error)
	Resume(ctx context.Context) (dto.SessionOutput, error)
	Stop(ctx context.Context, input dto.StopInput) (dto.SessionOutput, error)
	Abort(ctx context.Context) (dto.SessionOutput, error)
	GetActive(ctx context.Context) (dto.SessionOutput, error)
	GetSession(ctx context.Context, sessionID string) (dto.SessionOutput, error)
	ListSessions(ctx context.Context) ([]dto.SessionOutput, error)
	ListTags(ctx context.Context) ([]dto.TagOutput, error)
	CreateTag(ctx context.Context, name string) (dto.TagOutput, error)
	DeleteTag(ctx context.Context, name string) error
	SeedDefaults(ctx context.Context) error
}

package in

import (
	"context"

	trackerdto "tally/internal/modules/tracker/dto"
	trackerin "tally/internal/modules/tracker/port/in"
)

type CLIHandler struct {
	usecase trackerin.Usecase
}

func NewCLIHandler(usecase trackerin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, title, tagName string) (trackerdto.SessionOutput, error) {
	return h.usecase.Start(ctx, trackerdto.StartInput{Title: title, TagName: tagName})
}

func (h CLIHandler) Pause(ctx context.Context) (trackerdto.SessionOutput, error) {
	return h.usecase.Pause(ctx)
}

func (h CLIHandler) Resume(ctx context.Context) (trackerdto.SessionOutput, error) {
	return h.usecase.Resume(ctx)
}

func (h CLIHandler) Stop(ctx context.Context, rating float64, comment string) (trackerdto.SessionOutput, error) {
	return h.usecase.Stop(ctx, trackerdto.StopInput{Rating: rating, Comment: comment})
}

func (h CLIHandler) Abort(ctx context.Context) (trackerdto.SessionOutput, error) {
	return h.usecase.Abort(ctx)
}

func (h CLIHandler) GetActive(ctx context.Context) (trackerdto.SessionOutput, error) {
	return h.usecase.GetActive(ctx)
}

func (h CLIHandler) GetSession(ctx context.Context, sessionID string) (trackerdto.SessionOutput, error) {
	return h.usecase.GetSession(ctx, sessionID)
}

func (h CLIHandler) ListSessions(ctx context.Context) ([]trackerdto.SessionOutput, error) {
	return h.usecase.ListSessions(ctx)
}

func (h CLIHandler) ListTags(ctx context.Context) ([]trackerdto.TagOutput, error) {
	return h.usecase.ListTags(ctx)
}

func (h CLIHandler) CreateTag(ctx context.Context, name string) (trackerdto.TagOutput, error) {
	return h.usecase.CreateTag(ctx, name)
}

func (h CLIHandler) DeleteTag(ctx context.Context, name string) error {
	return h.usecase.DeleteTag(ctx, name)
}

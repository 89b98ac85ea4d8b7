package usecase

import (
	"context"

	"tally/internal/modules/tracker/domain"
	"tally/internal/modules/tracker/dto"
	trackerin "tally/internal/modules/tracker/port/in"
	"tally/internal/modules/tracker/service"
)

type Interactor struct {
	svc *service.TrackerService
}

func NewInteractor(svc *service.TrackerService) trackerin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Start(ctx context.Context, input dto.StartInput) (dto.SessionOutput, error) {
	session, err := i.svc.Start(ctx, input.Title, input.TagName)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	return sessionOutput(session), nil
}

func (i *Interactor) Pause(ctx context.Context) (dto.SessionOutput, error) {
	session, err := i.svc.Pause(ctx)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	return sessionOutput(session), nil
}

func (i *Interactor) Resume(ctx context.Context) (dto.SessionOutput, error) {
	session, err := i.svc.Resume(ctx)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	return sessionOutput(session), nil
}

func (i *Interactor) Stop(ctx context.Context, input dto.StopInput) (dto.SessionOutput, error) {
	session, err := i.svc.Stop(ctx, input.Rating, input.Comment)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	return sessionOutput(session), nil
}

func (i *Interactor) Abort(ctx context.Context) (dto.SessionOutput, error) {
	session, err := i.svc.Abort(ctx)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	return sessionOutput(session), nil
}

func (i *Interactor) GetActive(ctx context.Context) (dto.SessionOutput, error) {
	session, err := i.svc.GetActive(ctx)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	return sessionOutput(session), nil
}

func (i *Interactor) GetSession(ctx context.Context, sessionID string) (dto.SessionOutput, error) {
	session, err := i.svc.GetSession(ctx, sessionID)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	return sessionOutput(session), nil
}

func (i *Interactor) ListSessions(ctx context.Context) ([]dto.SessionOutput, error) {
	sessions, err := i.svc.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SessionOutput, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, sessionOutput(session))
	}
	return out, nil
}

func (i *Interactor) ListTags(ctx context.Context) ([]dto.TagOutput, error) {
	tags, err := i.svc.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TagOutput, 0, len(tags))
	for _, tag := range tags {
		out = append(out, tagOutput(tag))
	}
	return out, nil
}

func (i *Interactor) CreateTag(ctx context.Context, name string) (dto.TagOutput, error) {
	tag, err := i.svc.CreateTag(ctx, name)
	if err != nil {
		return dto.TagOutput{}, err
	}
	return tagOutput(tag), nil
}

func (i *Interactor) DeleteTag(ctx context.Context, name string) error {
	return i.svc.DeleteTag(ctx, name)
}

func (i *Interactor) SeedDefaults(ctx context.Context) error {
	return i.svc.SeedDefaults(ctx)
}

func sessionOutput(session domain.Session) dto.SessionOutput {
	out := dto.SessionOutput{
		ID:         session.ID,
		Title:      session.Title,
		DurationMS: session.DurationMS,
		Rating:     session.Rating,
		Comment:    session.Comment,
		Timestamp:  session.Timestamp,
		State:      string(session.State),
	}
	if session.Tag != nil {
		tag := tagOutput(*session.Tag)
		out.Tag = &tag
	}
	return out
}

func tagOutput(tag domain.Tag) dto.TagOutput {
	return dto.TagOutput{
		Name:           tag.Name,
		Color:          tag.Color,
		DateCreated:    tag.DateCreated,
		DateLastUsed:   tag.DateLastUsed,
		TotalInstances: tag.TotalInstances,
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tally/internal/modules/tracker/domain"
	trackerout "tally/internal/modules/tracker/port/out"
	"tally/internal/platform/clock"
	apperrors "tally/internal/platform/errors"
	"tally/internal/platform/id"
)

const seededConfigKey = "default_tags_seeded"

type TrackerService struct {
	clock    clock.Clock
	idGen    id.Generator
	sessions trackerout.SessionStore
	tags     trackerout.TagStore
	config   trackerout.ConfigStore
}

func NewTrackerService(clock clock.Clock, idGen id.Generator, sessions trackerout.SessionStore, tags trackerout.TagStore, config trackerout.ConfigStore) *TrackerService {
	return &TrackerService{clock: clock, idGen: idGen, sessions: sessions, tags: tags, config: config}
}

func (s *TrackerService) Start(ctx context.Context, title, tagName string) (domain.Session, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Session{}, fmt.Errorf("%w: title is required", apperrors.ErrInvalidInput)
	}
	if _, err := s.live(ctx); err == nil {
		return domain.Session{}, apperrors.ErrActiveSessionExists
	} else if !errors.Is(err, apperrors.ErrNoActiveSession) {
		return domain.Session{}, err
	}

	var snapshot *domain.Tag
	if name := strings.TrimSpace(tagName); name != "" {
		tag, err := s.tags.GetTag(ctx, name)
		if err != nil {
			return domain.Session{}, fmt.Errorf("resolve tag %q: %w", name, err)
		}
		snapshot = &tag
	}

	now := s.clock.Now().UnixMilli()
	session := domain.Session{
		ID:             s.idGen.New(),
		Title:          title,
		Timestamp:      now,
		State:          domain.StateActive,
		Tag:            snapshot,
		StateChangedAt: now,
	}
	if err := s.sessions.PutSession(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func (s *TrackerService) Pause(ctx context.Context) (domain.Session, error) {
	session, err := s.live(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	if session.State != domain.StateActive {
		return domain.Session{}, fmt.Errorf("%w: session is already paused", apperrors.ErrInvalidInput)
	}
	now := s.clock.Now().UnixMilli()
	session.DurationMS += now - session.StateChangedAt
	session.State = domain.StatePaused
	session.StateChangedAt = now
	if err := s.sessions.PutSession(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func (s *TrackerService) Resume(ctx context.Context) (domain.Session, error) {
	session, err := s.live(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	if session.State != domain.StatePaused {
		return domain.Session{}, fmt.Errorf("%w: session is not paused", apperrors.ErrInvalidInput)
	}
	session.State = domain.StateActive
	session.StateChangedAt = s.clock.Now().UnixMilli()
	if err := s.sessions.PutSession(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// Stop finalizes the live session as completed and bumps the live tag's
// usage counter. The session's embedded tag snapshot is left untouched.
func (s *TrackerService) Stop(ctx context.Context, rating float64, comment string) (domain.Session, error) {
	if rating < 0 || rating > 5 {
		return domain.Session{}, fmt.Errorf("%w: rating must be within [0,5]", apperrors.ErrInvalidInput)
	}
	session, err := s.finalize(ctx, domain.StateCompleted)
	if err != nil {
		return domain.Session{}, err
	}
	session.Rating = rating
	session.Comment = strings.TrimSpace(comment)
	if err := s.sessions.PutSession(ctx, session); err != nil {
		return domain.Session{}, err
	}
	if session.Tag != nil {
		if err := s.bumpTagUsage(ctx, session.Tag.Name); err != nil {
			return domain.Session{}, err
		}
	}
	return session, nil
}

func (s *TrackerService) Abort(ctx context.Context) (domain.Session, error) {
	session, err := s.finalize(ctx, domain.StateAborted)
	if err != nil {
		return domain.Session{}, err
	}
	if err := s.sessions.PutSession(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func (s *TrackerService) GetActive(ctx context.Context) (domain.Session, error) {
	return s.live(ctx)
}

func (s *TrackerService) GetSession(ctx context.Context, sessionID string) (domain.Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return domain.Session{}, fmt.Errorf("%w: session id is required", apperrors.ErrInvalidInput)
	}
	return s.sessions.GetSession(ctx, sessionID)
}

func (s *TrackerService) ListSessions(ctx context.Context) ([]domain.Session, error) {
	return s.sessions.GetAllSessions(ctx)
}

func (s *TrackerService) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return s.tags.GetAllTags(ctx)
}

func (s *TrackerService) CreateTag(ctx context.Context, name string) (domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Tag{}, fmt.Errorf("%w: tag name is required", apperrors.ErrInvalidInput)
	}
	existing, err := s.tags.GetAllTags(ctx)
	if err != nil {
		return domain.Tag{}, err
	}
	used := make(map[string]bool, len(existing))
	for _, tag := range existing {
		if tag.Name == name {
			return domain.Tag{}, fmt.Errorf("%w: tag %q already exists", apperrors.ErrInvalidInput, name)
		}
		used[tag.Color] = true
	}
	if len(existing) >= domain.MaxTags {
		return domain.Tag{}, fmt.Errorf("%w: cannot create %q", apperrors.ErrTagLimitReached, name)
	}
	color, ok := domain.NextFreeColor(used)
	if !ok {
		return domain.Tag{}, fmt.Errorf("%w: cannot create %q", apperrors.ErrTagLimitReached, name)
	}
	now := s.clock.Now().UnixMilli()
	tag := domain.Tag{Name: name, Color: color, DateCreated: now, DateLastUsed: now}
	if err := s.tags.PutTag(ctx, tag); err != nil {
		return domain.Tag{}, err
	}
	return tag, nil
}

func (s *TrackerService) DeleteTag(ctx context.Context, name string) error {
	return s.tags.DeleteTag(ctx, strings.TrimSpace(name))
}

// SeedDefaults creates the default tags on the reserved palette colors once
// per store, guarded by a config flag.
func (s *TrackerService) SeedDefaults(ctx context.Context) error {
	if _, err := s.config.GetConfig(ctx, seededConfigKey); err == nil {
		return nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	now := s.clock.Now().UnixMilli()
	for i, name := range domain.DefaultTagNames {
		tag := domain.Tag{Name: name, Color: domain.Palette[i], DateCreated: now, DateLastUsed: now}
		if err := s.tags.PutTag(ctx, tag); err != nil {
			return fmt.Errorf("seed default tag %q: %w", name, err)
		}
	}
	return s.config.PutConfig(ctx, seededConfigKey, "1")
}

func (s *TrackerService) live(ctx context.Context) (domain.Session, error) {
	sessions, err := s.sessions.GetAllSessions(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	for _, session := range sessions {
		if session.State.Live() {
			return session, nil
		}
	}
	return domain.Session{}, apperrors.ErrNoActiveSession
}

func (s *TrackerService) finalize(ctx context.Context, state domain.SessionState) (domain.Session, error) {
	session, err := s.live(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	now := s.clock.Now().UnixMilli()
	if session.State == domain.StateActive {
		session.DurationMS += now - session.StateChangedAt
	}
	session.State = state
	session.StateChangedAt = now
	return session, nil
}

func (s *TrackerService) bumpTagUsage(ctx context.Context, name string) error {
	tag, err := s.tags.GetTag(ctx, name)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil // tag deleted while the session ran
		}
		return err
	}
	tag.TotalInstances++
	tag.DateLastUsed = s.clock.Now().UnixMilli()
	return s.tags.PutTag(ctx, tag)
}

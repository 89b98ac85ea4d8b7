package out

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"tally/internal/modules/tracker/domain"
	apperrors "tally/internal/platform/errors"
)

// MemoryStore keeps the full Record Store in process memory while enforcing
// the same invariants as the SQLite adapter. Dry-run imports layer one over a
// snapshot of the real store so nothing is persisted.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	tags     map[string]domain.Tag
	config   map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]domain.Session),
		tags:     make(map[string]domain.Tag),
		config:   make(map[string]string),
	}
}

// Preload seeds the store with existing records, bypassing invariant checks.
// Used to snapshot a persistent store before a dry run.
func (m *MemoryStore) Preload(sessions []domain.Session, tags []domain.Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, session := range sessions {
		m.sessions[session.ID] = session
	}
	for _, tag := range tags {
		m.tags[tag.Name] = tag
	}
}

func (m *MemoryStore) GetAllSessions(_ context.Context) ([]domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sessions := make([]domain.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, session)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Timestamp < sessions[j].Timestamp })
	return sessions, nil
}

func (m *MemoryStore) GetSession(_ context.Context, id string) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return domain.Session{}, fmt.Errorf("session %q: %w", id, apperrors.ErrNotFound)
	}
	return session, nil
}

func (m *MemoryStore) PutSession(_ context.Context, session domain.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.sessions {
		if existing.ID == session.ID {
			continue
		}
		if session.State.Live() && existing.State.Live() {
			return apperrors.ErrActiveSessionExists
		}
		if existing.Timestamp == session.Timestamp {
			return fmt.Errorf("timestamp %d: %w", session.Timestamp, apperrors.ErrDuplicateTimestamp)
		}
	}
	m.sessions[session.ID] = session
	return nil
}

func (m *MemoryStore) GetTag(_ context.Context, name string) (domain.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tag, ok := m.tags[name]
	if !ok {
		return domain.Tag{}, fmt.Errorf("tag %q: %w", name, apperrors.ErrNotFound)
	}
	return tag, nil
}

func (m *MemoryStore) GetAllTags(_ context.Context) ([]domain.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tags := make([]domain.Tag, 0, len(m.tags))
	for _, tag := range m.tags {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].DateCreated != tags[j].DateCreated {
			return tags[i].DateCreated < tags[j].DateCreated
		}
		return tags[i].Name < tags[j].Name
	})
	return tags, nil
}

func (m *MemoryStore) PutTag(_ context.Context, tag domain.Tag) error {
	if err := tag.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tags {
		if existing.Name != tag.Name && existing.Color == tag.Color {
			return fmt.Errorf("color %s: %w", tag.Color, apperrors.ErrColorTaken)
		}
	}
	m.tags[tag.Name] = tag
	return nil
}

func (m *MemoryStore) DeleteTag(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tags[name]; !ok {
		return fmt.Errorf("tag %q: %w", name, apperrors.ErrNotFound)
	}
	delete(m.tags, name)
	return nil
}

func (m *MemoryStore) GetConfig(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.config[key]
	if !ok {
		return "", fmt.Errorf("config %q: %w", key, apperrors.ErrNotFound)
	}
	return value, nil
}

func (m *MemoryStore) PutConfig(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config[key] = value
	return nil
}

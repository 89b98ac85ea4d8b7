package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tally/internal/modules/tracker/domain"
	apperrors "tally/internal/platform/errors"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the persistent Record Store backing sessions, tags and
// config entries. A single *sql.DB handle gives read-after-write consistency
// within one process, but the tag reconciler must still work off its returned
// map rather than re-reading (see transfer/service).
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  duration_ms INTEGER NOT NULL,
  rating REAL NOT NULL,
  comment TEXT NOT NULL,
  timestamp_ms INTEGER NOT NULL UNIQUE,
  state TEXT NOT NULL,
  state_changed_at INTEGER NOT NULL,
  tag_name TEXT,
  tag_color TEXT,
  tag_created_at INTEGER,
  tag_last_used_at INTEGER,
  tag_instances INTEGER
);
CREATE TABLE IF NOT EXISTS tags (
  name TEXT PRIMARY KEY,
  color TEXT NOT NULL UNIQUE,
  created_at INTEGER NOT NULL,
  last_used_at INTEGER NOT NULL,
  total_instances INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS config (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetAllSessions(ctx context.Context) ([]domain.Session, error) {
	const query = `
SELECT id, title, duration_ms, rating, comment, timestamp_ms, state, state_changed_at,
       tag_name, tag_color, tag_created_at, tag_last_used_at, tag_instances
FROM sessions ORDER BY timestamp_ms ASC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (domain.Session, error) {
	const query = `
SELECT id, title, duration_ms, rating, comment, timestamp_ms, state, state_changed_at,
       tag_name, tag_color, tag_created_at, tag_last_used_at, tag_instances
FROM sessions WHERE id = ?`
	row := s.db.QueryRowContext(ctx, query, id)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, fmt.Errorf("session %q: %w", id, apperrors.ErrNotFound)
	}
	return session, err
}

// PutSession upserts by ID. It rejects a live session while another live
// session exists, and a timestamp already held by a different session.
func (s *SQLiteStore) PutSession(ctx context.Context, session domain.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put session: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if session.State.Live() {
		var liveCount int
		const liveQuery = `SELECT COUNT(*) FROM sessions WHERE state IN ('active', 'paused') AND id != ?`
		if err := tx.QueryRowContext(ctx, liveQuery, session.ID).Scan(&liveCount); err != nil {
			return fmt.Errorf("check live sessions: %w", err)
		}
		if liveCount > 0 {
			return apperrors.ErrActiveSessionExists
		}
	}

	const stmt = `
INSERT INTO sessions (id, title, duration_ms, rating, comment, timestamp_ms, state, state_changed_at,
                      tag_name, tag_color, tag_created_at, tag_last_used_at, tag_instances)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  title=excluded.title,
  duration_ms=excluded.duration_ms,
  rating=excluded.rating,
  comment=excluded.comment,
  timestamp_ms=excluded.timestamp_ms,
  state=excluded.state,
  state_changed_at=excluded.state_changed_at,
  tag_name=excluded.tag_name,
  tag_color=excluded.tag_color,
  tag_created_at=excluded.tag_created_at,
  tag_last_used_at=excluded.tag_last_used_at,
  tag_instances=excluded.tag_instances;
`
	var tagName, tagColor sql.NullString
	var tagCreated, tagLastUsed, tagInstances sql.NullInt64
	if session.Tag != nil {
		tagName = sql.NullString{String: session.Tag.Name, Valid: true}
		tagColor = sql.NullString{String: session.Tag.Color, Valid: true}
		tagCreated = sql.NullInt64{Int64: session.Tag.DateCreated, Valid: true}
		tagLastUsed = sql.NullInt64{Int64: session.Tag.DateLastUsed, Valid: true}
		tagInstances = sql.NullInt64{Int64: int64(session.Tag.TotalInstances), Valid: true}
	}
	_, err = tx.ExecContext(ctx, stmt,
		session.ID,
		session.Title,
		session.DurationMS,
		session.Rating,
		session.Comment,
		session.Timestamp,
		string(session.State),
		session.StateChangedAt,
		tagName, tagColor, tagCreated, tagLastUsed, tagInstances,
	)
	if err != nil {
		if strings.Contains(err.Error(), "sessions.timestamp_ms") {
			return fmt.Errorf("timestamp %d: %w", session.Timestamp, apperrors.ErrDuplicateTimestamp)
		}
		return fmt.Errorf("put session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit put session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetTag(ctx context.Context, name string) (domain.Tag, error) {
	const query = `SELECT name, color, created_at, last_used_at, total_instances FROM tags WHERE name = ?`
	var tag domain.Tag
	err := s.db.QueryRowContext(ctx, query, name).
		Scan(&tag.Name, &tag.Color, &tag.DateCreated, &tag.DateLastUsed, &tag.TotalInstances)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Tag{}, fmt.Errorf("tag %q: %w", name, apperrors.ErrNotFound)
	}
	if err != nil {
		return domain.Tag{}, fmt.Errorf("get tag: %w", err)
	}
	return tag, nil
}

func (s *SQLiteStore) GetAllTags(ctx context.Context) ([]domain.Tag, error) {
	const query = `SELECT name, color, created_at, last_used_at, total_instances FROM tags ORDER BY created_at ASC, name ASC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	var tags []domain.Tag
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.Name, &tag.Color, &tag.DateCreated, &tag.DateLastUsed, &tag.TotalInstances); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return tags, nil
}

// PutTag upserts by name. A color held by a different tag is rejected.
func (s *SQLiteStore) PutTag(ctx context.Context, tag domain.Tag) error {
	if err := tag.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	const stmt = `
INSERT INTO tags (name, color, created_at, last_used_at, total_instances)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
  color=excluded.color,
  created_at=excluded.created_at,
  last_used_at=excluded.last_used_at,
  total_instances=excluded.total_instances;
`
	_, err := s.db.ExecContext(ctx, stmt, tag.Name, tag.Color, tag.DateCreated, tag.DateLastUsed, tag.TotalInstances)
	if err != nil {
		if strings.Contains(err.Error(), "tags.color") {
			return fmt.Errorf("color %s: %w", tag.Color, apperrors.ErrColorTaken)
		}
		return fmt.Errorf("put tag: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteTag(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete tag result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("tag %q: %w", name, apperrors.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("config %q: %w", key, apperrors.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get config: %w", err)
	}
	return value, nil
}

func (s *SQLiteStore) PutConfig(ctx context.Context, key, value string) error {
	const stmt = `INSERT INTO config (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value`
	if _, err := s.db.ExecContext(ctx, stmt, key, value); err != nil {
		return fmt.Errorf("put config: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (domain.Session, error) {
	var session domain.Session
	var state string
	var tagName, tagColor sql.NullString
	var tagCreated, tagLastUsed, tagInstances sql.NullInt64
	err := row.Scan(
		&session.ID,
		&session.Title,
		&session.DurationMS,
		&session.Rating,
		&session.Comment,
		&session.Timestamp,
		&state,
		&session.StateChangedAt,
		&tagName, &tagColor, &tagCreated, &tagLastUsed, &tagInstances,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Session{}, err
		}
		return domain.Session{}, fmt.Errorf("scan session: %w", err)
	}
	session.State = domain.SessionState(state)
	if tagName.Valid {
		session.Tag = &domain.Tag{
			Name:           tagName.String,
			Color:          tagColor.String,
			DateCreated:    tagCreated.Int64,
			DateLastUsed:   tagLastUsed.Int64,
			TotalInstances: int(tagInstances.Int64),
		}
	}
	return session, nil
}

package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	trackerdomain "tally/internal/modules/tracker/domain"
	"tally/internal/modules/transfer/domain"
	transferout "tally/internal/modules/transfer/port/out"
	"tally/internal/platform/clock"
	"tally/internal/platform/id"
)

type TransferService struct {
	clock    clock.Clock
	idGen    id.Generator
	sessions transferout.SessionStore
	tags     transferout.TagStore
	loc      *time.Location
}

func NewTransferService(clock clock.Clock, idGen id.Generator, sessions transferout.SessionStore, tags transferout.TagStore, loc *time.Location) *TransferService {
	if loc == nil {
		loc = time.Local
	}
	return &TransferService{clock: clock, idGen: idGen, sessions: sessions, tags: tags, loc: loc}
}

// Validate checks a CSV file without touching storage.
func (s *TransferService) Validate(content string) domain.ValidationReport {
	return domain.ValidateContent(content, s.loc)
}

// Import runs the full pipeline: validate, snapshot existing timestamps,
// reconcile tags, then persist row by row. A structurally invalid file or a
// tag-limit overflow stops the whole import before any session is written; a
// single row's write failure only costs that row.
func (s *TransferService) Import(ctx context.Context, content string) (domain.ImportOutcome, error) {
	report := s.Validate(content)
	if !report.Valid {
		outcome := domain.ImportOutcome{RowsSeen: report.SessionCount, Warnings: report.Warnings}
		for _, rowErr := range report.Errors {
			outcome.Failed = append(outcome.Failed, domain.RowFailure{Row: rowErr.Row, Reason: rowErr.Message})
		}
		return outcome, nil
	}

	existing, err := s.sessions.GetAllSessions(ctx)
	if err != nil {
		return domain.ImportOutcome{}, fmt.Errorf("load sessions: %w", err)
	}
	existingTimestamps := make(map[int64]bool, len(existing))
	for _, session := range existing {
		existingTimestamps[session.Timestamp] = true
	}

	rows := domain.Parse(content)
	dataRows := rows[1:]

	result, err := s.reconcileTags(ctx, distinctTagNames(dataRows))
	if err != nil {
		return domain.ImportOutcome{}, err
	}

	outcome := domain.ImportOutcome{RowsSeen: len(dataRows), CreatedTags: result.created}
	for i, row := range dataRows {
		rowNum := i + 2 // header is row 1

		state, err := trackerdomain.ParseState(strings.TrimSpace(row[domain.ColState]))
		if err != nil || state.Live() {
			outcome.Failed = append(outcome.Failed, domain.RowFailure{Row: rowNum, Reason: fmt.Sprintf("state %q cannot be imported", row[domain.ColState])})
			continue
		}

		timestamp, err := domain.ParseTimestamp(row[domain.ColDate], row[domain.ColTime], s.loc)
		if err != nil {
			outcome.Failed = append(outcome.Failed, domain.RowFailure{Row: rowNum, Reason: err.Error()})
			continue
		}

		title := strings.TrimSpace(row[domain.ColTitle])
		if existingTimestamps[timestamp] {
			outcome.Duplicates = append(outcome.Duplicates, domain.DuplicateRow{Row: rowNum, Timestamp: timestamp, Title: title})
			continue
		}

		var tag *trackerdomain.Tag
		if name := strings.TrimSpace(row[domain.ColTag]); name != "" {
			if resolved, ok := result.tags[name]; ok {
				tag = &resolved
			} else if looked, err := s.tags.GetTag(ctx, name); err == nil {
				// Last-resort single lookup for a name that slipped past
				// extraction; see the warning path below when even that
				// misses.
				tag = &looked
			} else {
				outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("row %d: tag %q not found, imported untagged", rowNum, name))
			}
		}

		seconds, _ := strconv.ParseFloat(row[domain.ColDuration], 64)
		rating, _ := strconv.ParseFloat(row[domain.ColRating], 64)
		session := trackerdomain.Session{
			ID:             s.idGen.New(),
			Title:          title,
			DurationMS:     int64(seconds * 1000),
			Rating:         rating,
			Comment:        strings.TrimSpace(row[domain.ColComment]),
			Timestamp:      timestamp,
			State:          state,
			Tag:            tag,
			StateChangedAt: timestamp,
		}
		if err := s.sessions.PutSession(ctx, session); err != nil {
			outcome.Failed = append(outcome.Failed, domain.RowFailure{Row: rowNum, Reason: err.Error()})
			continue
		}
		outcome.Succeeded++
	}
	return outcome, nil
}

// Export renders every settled session in the always-quoted wire format,
// ordered by timestamp. Live sessions are skipped and counted; a running
// stopwatch has no settled duration to carry across devices.
func (s *TransferService) Export(ctx context.Context) (content string, exported, skippedLive int, err error) {
	sessions, err := s.sessions.GetAllSessions(ctx)
	if err != nil {
		return "", 0, 0, fmt.Errorf("load sessions: %w", err)
	}

	var b strings.Builder
	b.WriteString(domain.FormatRow(domain.Header))
	b.WriteByte('\n')
	for _, session := range sessions {
		if session.State.Live() {
			skippedLive++
			continue
		}
		date, clockStr := domain.FormatTimestamp(session.Timestamp, s.loc)
		tagName := ""
		if session.Tag != nil {
			tagName = session.Tag.Name
		}
		b.WriteString(domain.FormatRow([]string{
			date,
			clockStr,
			session.Title,
			strconv.FormatInt(session.DurationMS/1000, 10),
			strconv.FormatFloat(session.Rating, 'f', -1, 64),
			session.Comment,
			tagName,
			string(session.State),
		}))
		b.WriteByte('\n')
		exported++
	}
	return b.String(), exported, skippedLive, nil
}

// distinctTagNames extracts trimmed, non-empty tag names in first-appearance
// order across all data rows.
func distinctTagNames(rows [][]string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, row := range rows {
		if len(row) != len(domain.Header) {
			continue
		}
		name := strings.TrimSpace(row[domain.ColTag])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

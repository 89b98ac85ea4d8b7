package domain_test

import (
	"strings"
	"testing"

	"tally/internal/modules/tracker/domain"
)

func validSession() domain.Session {
	return domain.Session{
		ID:        "s-1",
		Title:     "Morning workout",
		Rating:    4,
		Timestamp: 1769504400000,
		State:     domain.StateCompleted,
	}
}

func TestSessionValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		mutate  func(*domain.Session)
		wantErr string
	}{
		{"valid", func(*domain.Session) {}, ""},
		{"missing id", func(s *domain.Session) { s.ID = "" }, "id is required"},
		{"blank title", func(s *domain.Session) { s.Title = "   " }, "title is required"},
		{"negative duration", func(s *domain.Session) { s.DurationMS = -1 }, "duration"},
		{"rating too high", func(s *domain.Session) { s.Rating = 5.5 }, "rating"},
		{"rating negative", func(s *domain.Session) { s.Rating = -0.1 }, "rating"},
		{"bad state", func(s *domain.Session) { s.State = "running" }, "unknown session state"},
		{"bad embedded tag", func(s *domain.Session) { s.Tag = &domain.Tag{Name: "x"} }, "tag color"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := validSession()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid session, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestStateLive(t *testing.T) {
	t.Parallel()
	live := map[domain.SessionState]bool{
		domain.StateActive:     true,
		domain.StatePaused:     true,
		domain.StateNotStarted: false,
		domain.StateCompleted:  false,
		domain.StateAborted:    false,
	}
	for state, want := range live {
		if state.Live() != want {
			t.Fatalf("state %s: expected Live()=%t", state, want)
		}
	}
}

func TestParseState(t *testing.T) {
	t.Parallel()
	if _, err := domain.ParseState("completed"); err != nil {
		t.Fatalf("completed should parse: %v", err)
	}
	if _, err := domain.ParseState("Completed"); err == nil {
		t.Fatalf("states are case-sensitive")
	}
}

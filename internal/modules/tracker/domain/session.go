package domain

import (
	"fmt"
	"strings"
)

type SessionState string

const (
	StateNotStarted SessionState = "not_started"
	StateActive     SessionState = "active"
	StatePaused     SessionState = "paused"
	StateCompleted  SessionState = "completed"
	StateAborted    SessionState = "aborted"
)

func ParseState(raw string) (SessionState, error) {
	state := SessionState(raw)
	if err := state.Validate(); err != nil {
		return "", err
	}
	return state, nil
}

func (s SessionState) Validate() error {
	switch s {
	case StateNotStarted, StateActive, StatePaused, StateCompleted, StateAborted:
		return nil
	default:
		return fmt.Errorf("unknown session state: %q", s)
	}
}

// Live reports whether the state occupies the single running-session slot.
// At most one live session may exist in the store at any time.
func (s SessionState) Live() bool {
	return s == StateActive || s == StatePaused
}

// Session is one tracked unit of time. Timestamp marks the session start and
// doubles as the store-wide de-duplication key: no two sessions may share one.
type Session struct {
	ID         string
	Title      string
	DurationMS int64
	Rating     float64
	Comment    string
	Timestamp  int64 // session start, Unix epoch milliseconds
	State      SessionState

	// Tag is a value copy taken at assignment time. Later renames or
	// recolors of the live tag record must not change it.
	Tag *Tag

	// StateChangedAt is the last state transition instant (epoch ms), used
	// to accumulate elapsed time across pause/resume. Not part of the CSV
	// wire format.
	StateChangedAt int64
}

func (s Session) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("session title is required")
	}
	if s.DurationMS < 0 {
		return fmt.Errorf("session duration must be non-negative")
	}
	if s.Rating < 0 || s.Rating > 5 {
		return fmt.Errorf("session rating must be within [0,5]")
	}
	if s.Tag != nil {
		if err := s.Tag.Validate(); err != nil {
			return err
		}
	}
	return s.State.Validate()
}

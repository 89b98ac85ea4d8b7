package domain

import (
	"strings"
	"testing"
	"time"
)

const validHeader = "Date,Time,Title,Duration (seconds),Rating,Comment,Tag,State"

func validateUTC(content string) ValidationReport {
	return ValidateContent(content, time.UTC)
}

func TestValidateEmptyContent(t *testing.T) {
	t.Parallel()
	for _, content := range []string{"", "   \n \n"} {
		report := validateUTC(content)
		if report.Valid || len(report.Errors) != 1 || report.SessionCount != 0 {
			t.Errorf("ValidateContent(%q) = %+v, want single error and zero count", content, report)
		}
	}
}

func TestValidateHeaderRejection(t *testing.T) {
	t.Parallel()
	// "Duration" without "(seconds)" is a different contract.
	report := validateUTC("Date,Time,Title,Duration,Rating,Comment,Tag,State\n27/01/2026,09:00:00,Run,3600,4,,fitness,completed")
	if report.Valid {
		t.Fatal("mismatched header accepted")
	}
	for _, err := range report.Errors {
		if err.Row != 1 {
			t.Errorf("data rows evaluated despite header mismatch: %+v", err)
		}
	}
}

func TestValidateHeaderColumnCount(t *testing.T) {
	t.Parallel()
	report := validateUTC("Date,Time,Title\n27/01/2026,09:00:00,Run")
	if report.Valid || len(report.Errors) != 1 || report.Errors[0].Row != 1 {
		t.Errorf("short header report = %+v", report)
	}
}

func TestValidateAccumulatesAcrossRows(t *testing.T) {
	t.Parallel()
	content := strings.Join([]string{
		validHeader,
		"27/01/2026,09:00:00,Run,3600,4,,fitness,completed", // fine
		"31/02/2026,09:00:00,Bad date,3600,4,,,completed",   // impossible date
		"27/01/2026,09:00:00,,3600,4,,,completed",           // empty title
		"28/01/2026,09:00:00,Short row,3600",                // cell count
		"29/01/2026,09:00:00,Bad rating,3600,9,,,completed", // rating range
		"30/01/2026,09:00:00,Bad state,3600,4,,,imaginary",  // unknown state
	}, "\n")
	report := validateUTC(content)
	if report.Valid {
		t.Fatal("invalid rows accepted")
	}
	if report.SessionCount != 6 {
		t.Errorf("SessionCount = %d, want 6", report.SessionCount)
	}
	if len(report.Errors) != 5 {
		t.Errorf("errors = %d (%v), want 5", len(report.Errors), report.Errors)
	}
	// First data row is row 2.
	if report.Errors[0].Row != 3 {
		t.Errorf("first error row = %d, want 3", report.Errors[0].Row)
	}
}

func TestValidateRejectsLiveStates(t *testing.T) {
	t.Parallel()
	for _, state := range []string{"active", "paused"} {
		content := validHeader + "\n27/01/2026,09:00:00,Run,3600,4,,," + state
		report := validateUTC(content)
		if report.Valid {
			t.Errorf("state %q accepted", state)
		}
	}
}

func TestValidateRejectsNonFiniteNumbers(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		row  string
	}{
		{"duration NaN", "27/01/2026,09:00:00,Run,NaN,4,,,completed"},
		{"duration infinite", "27/01/2026,09:00:00,Run,Inf,4,,,completed"},
		{"duration negative", "27/01/2026,09:00:00,Run,-1,4,,,completed"},
		{"rating NaN", "27/01/2026,09:00:00,Run,3600,NaN,,,completed"},
		{"rating text", "27/01/2026,09:00:00,Run,3600,great,,,completed"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if report := validateUTC(validHeader + "\n" + tt.row); report.Valid {
				t.Errorf("row accepted: %s", tt.row)
			}
		})
	}
}

func TestValidateCleanFile(t *testing.T) {
	t.Parallel()
	content := strings.Join([]string{
		validHeader,
		`"27/01/2026","09:00:00","Morning workout","3600","4","Great cardio","fitness","completed"`,
		"28/01/2026,10:30:00,Reading,1800,3.5,,Study,aborted",
		"29/01/2026,08:00:00,Planning,900,0,,,not_started",
	}, "\n")
	report := validateUTC(content)
	if !report.Valid {
		t.Fatalf("clean file rejected: %v", report.Errors)
	}
	if report.SessionCount != 3 {
		t.Errorf("SessionCount = %d, want 3", report.SessionCount)
	}
}

func TestValidateDoesNotCheckTagExistence(t *testing.T) {
	t.Parallel()
	report := validateUTC(validHeader + "\n27/01/2026,09:00:00,Run,3600,4,,never-seen-tag,completed")
	if !report.Valid {
		t.Errorf("unknown tag treated as validation error: %v", report.Errors)
	}
}

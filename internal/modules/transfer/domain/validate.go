package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	trackerdomain "tally/internal/modules/tracker/domain"
)

// RowError pins a validation failure to its source row. Row numbers are
// 1-indexed with the header as row 1; row 0 marks file-level problems.
type RowError struct {
	Row     int
	Message string
}

func (e RowError) String() string {
	if e.Row == 0 {
		return e.Message
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// ValidationReport is the outcome of checking a CSV file without touching
// storage. SessionCount is the number of data rows seen, valid or not.
type ValidationReport struct {
	Valid        bool
	Errors       []RowError
	Warnings     []string
	SessionCount int
}

// ValidateContent checks header shape and per-row field constraints. A header
// mismatch short-circuits; data-row errors accumulate so the user sees every
// problem in one pass. Tag existence is deliberately not checked, missing
// tags are created during import rather than rejected.
func ValidateContent(content string, loc *time.Location) ValidationReport {
	var report ValidationReport
	if strings.TrimSpace(content) == "" {
		report.Errors = append(report.Errors, RowError{Row: 0, Message: "file is empty"})
		return report
	}

	rows := Parse(content)
	header := rows[0]
	if len(header) != len(Header) {
		report.Errors = append(report.Errors, RowError{
			Row:     1,
			Message: fmt.Sprintf("header has %d columns, want %d", len(header), len(Header)),
		})
		return report
	}
	for i, want := range Header {
		if header[i] != want {
			report.Errors = append(report.Errors, RowError{
				Row:     1,
				Message: fmt.Sprintf("header column %d is %q, want %q", i+1, header[i], want),
			})
		}
	}
	if len(report.Errors) > 0 {
		return report
	}

	for i, row := range rows[1:] {
		rowNum := i + 2
		report.SessionCount++
		if len(row) != len(Header) {
			report.Errors = append(report.Errors, RowError{
				Row:     rowNum,
				Message: fmt.Sprintf("has %d cells, want %d", len(row), len(Header)),
			})
			continue
		}
		report.Errors = append(report.Errors, validateRow(rowNum, row, loc)...)
	}

	report.Valid = len(report.Errors) == 0
	return report
}

func validateRow(rowNum int, row []string, loc *time.Location) []RowError {
	var errs []RowError
	fail := func(format string, args ...any) {
		errs = append(errs, RowError{Row: rowNum, Message: fmt.Sprintf(format, args...)})
	}

	if row[ColDate] == "" {
		fail("date is empty")
	}
	if row[ColTime] == "" {
		fail("time is empty")
	}
	if strings.TrimSpace(row[ColTitle]) == "" {
		fail("title is empty")
	}
	if duration, err := strconv.ParseFloat(row[ColDuration], 64); err != nil || math.IsInf(duration, 0) || math.IsNaN(duration) {
		fail("duration %q is not a number", row[ColDuration])
	} else if duration < 0 {
		fail("duration %q is negative", row[ColDuration])
	}
	if rating, err := strconv.ParseFloat(row[ColRating], 64); err != nil || math.IsInf(rating, 0) || math.IsNaN(rating) {
		fail("rating %q is not a number", row[ColRating])
	} else if rating < 0 || rating > 5 {
		fail("rating %q is outside [0,5]", row[ColRating])
	}

	state, err := trackerdomain.ParseState(strings.TrimSpace(row[ColState]))
	if err != nil {
		fail("unknown state %q", row[ColState])
	} else if state.Live() {
		fail("state %q cannot be imported", state)
	}

	if row[ColDate] != "" && row[ColTime] != "" {
		if _, err := ParseTimestamp(row[ColDate], row[ColTime], loc); err != nil {
			fail("%v", err)
		}
	}
	return errs
}

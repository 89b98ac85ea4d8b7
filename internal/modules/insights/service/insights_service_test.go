package service

import (
	"context"
	"errors"
	"testing"
	"time"

	trackerdomain "tally/internal/modules/tracker/domain"
	apperrors "tally/internal/platform/errors"
)

type staticSource struct {
	sessions []trackerdomain.Session
}

func (s staticSource) GetAllSessions(context.Context) ([]trackerdomain.Session, error) {
	return s.sessions, nil
}

func deepTag() *trackerdomain.Tag {
	return &trackerdomain.Tag{Name: "deep", Color: "#767676", DateCreated: 1, DateLastUsed: 1}
}

func completedAt(day int, hour int, durationMS int64, tag *trackerdomain.Tag) trackerdomain.Session {
	ts := time.Date(2026, time.January, day, hour, 0, 0, 0, time.UTC).UnixMilli()
	return trackerdomain.Session{
		ID: time.UnixMilli(ts).Format("s-02-15"), Title: "w", DurationMS: durationMS,
		Timestamp: ts, State: trackerdomain.StateCompleted, StateChangedAt: ts, Tag: tag,
	}
}

func TestTagReportBasics(t *testing.T) {
	t.Parallel()
	tag := deepTag()
	source := staticSource{sessions: []trackerdomain.Session{
		completedAt(1, 9, 3_600_000, tag),
		completedAt(1, 14, 1_800_000, tag),
		completedAt(2, 9, 7_200_000, tag),
		completedAt(2, 11, 1_000_000, nil), // other work, not this tag
	}}
	svc := NewInsightsService(source, time.UTC)

	report, err := svc.TagReport(context.Background(), "deep", 0, false, 4)
	if err != nil {
		t.Fatalf("TagReport: %v", err)
	}
	if report.DaysTracked != 2 || len(report.Days) != 2 {
		t.Fatalf("days = %d/%d, want 2/2", report.DaysTracked, len(report.Days))
	}
	if report.Days[0].TotalMS != 5_400_000 {
		t.Errorf("day 1 total = %v, want sessions summed", report.Days[0].TotalMS)
	}
	if report.Stats.Count != 2 || report.Stats.Mean != 6_300_000 {
		t.Errorf("stats = %+v", report.Stats)
	}
	if len(report.ZScores) != 2 || len(report.Percentiles) != 2 {
		t.Errorf("derived series misaligned: %d z, %d pct", len(report.ZScores), len(report.Percentiles))
	}
}

func TestTagReportIgnoresUnfinishedSessions(t *testing.T) {
	t.Parallel()
	tag := deepTag()
	aborted := completedAt(1, 9, 3_600_000, tag)
	aborted.State = trackerdomain.StateAborted
	source := staticSource{sessions: []trackerdomain.Session{
		aborted,
		completedAt(2, 9, 1_800_000, tag),
	}}
	svc := NewInsightsService(source, time.UTC)

	report, err := svc.TagReport(context.Background(), "deep", 0, false, 4)
	if err != nil {
		t.Fatalf("TagReport: %v", err)
	}
	if report.DaysTracked != 1 {
		t.Errorf("aborted session counted: %+v", report.Days)
	}
}

func TestTagReportCompletenessFilter(t *testing.T) {
	t.Parallel()
	tag := deepTag()
	// Day 1 is sparse overall (only the tagged half hour); days 2 and 3
	// carry heavy untagged activity too.
	source := staticSource{sessions: []trackerdomain.Session{
		completedAt(1, 9, 1_800_000, tag),
		completedAt(2, 9, 1_800_000, tag),
		completedAt(2, 11, 20_000_000, nil),
		completedAt(3, 9, 1_800_000, tag),
		completedAt(3, 11, 30_000_000, nil),
	}}
	svc := NewInsightsService(source, time.UTC)

	report, err := svc.TagReport(context.Background(), "deep", 50, false, 4)
	if err != nil {
		t.Fatalf("TagReport: %v", err)
	}
	if report.FilteredDays != 1 || len(report.Days) != 2 {
		t.Fatalf("filtered = %d, kept = %d", report.FilteredDays, len(report.Days))
	}
	for _, day := range report.Days {
		if day.Day == "2026-01-01" {
			t.Error("sparse day survived the completeness filter")
		}
	}
}

func TestTagReportOutlierRemoval(t *testing.T) {
	t.Parallel()
	tag := deepTag()
	source := staticSource{sessions: []trackerdomain.Session{
		completedAt(1, 9, 60, tag),
		completedAt(2, 9, 65, tag),
		completedAt(3, 9, 62, tag),
		completedAt(4, 9, 58, tag),
		completedAt(5, 9, 500, tag),
	}}
	svc := NewInsightsService(source, time.UTC)

	report, err := svc.TagReport(context.Background(), "deep", 0, true, 4)
	if err != nil {
		t.Fatalf("TagReport: %v", err)
	}
	if report.RemovedOutliers != 1 || len(report.Days) != 4 {
		t.Errorf("removed = %d, kept = %d", report.RemovedOutliers, len(report.Days))
	}
}

func TestTagReportNoData(t *testing.T) {
	t.Parallel()
	svc := NewInsightsService(staticSource{}, time.UTC)
	report, err := svc.TagReport(context.Background(), "deep", 0, false, 4)
	if err != nil {
		t.Fatalf("TagReport on empty store: %v", err)
	}
	if report.Stats.Count != 0 || report.Stats.Mode != nil || len(report.Days) != 0 {
		t.Errorf("empty report = %+v", report)
	}
}

func TestTagReportInputValidation(t *testing.T) {
	t.Parallel()
	svc := NewInsightsService(staticSource{}, time.UTC)
	tests := []struct {
		name          string
		tag           string
		minPercentile float64
		buckets       int
	}{
		{"empty tag", "  ", 0, 4},
		{"percentile above 100", "deep", 101, 4},
		{"negative percentile", "deep", -1, 4},
		{"zero buckets", "deep", 0, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.TagReport(context.Background(), tt.tag, tt.minPercentile, false, tt.buckets)
			if !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tally/internal/modules/insights/domain"
	insightsout "tally/internal/modules/insights/port/out"
	trackerdomain "tally/internal/modules/tracker/domain"
	apperrors "tally/internal/platform/errors"
)

// TagReport is the assembled analytics view for one tag: the surviving days
// with their derived scores, descriptive statistics over those days, and the
// z-score distribution.
type TagReport struct {
	TagName         string
	Days            []domain.DayTotal
	ZScores         []float64
	Percentiles     []float64
	Stats           domain.Statistics
	Histogram       []domain.Bucket
	DaysTracked     int
	FilteredDays    int
	RemovedOutliers int
}

type InsightsService struct {
	sessions insightsout.SessionSource
	loc      *time.Location
}

func NewInsightsService(sessions insightsout.SessionSource, loc *time.Location) *InsightsService {
	if loc == nil {
		loc = time.Local
	}
	return &InsightsService{sessions: sessions, loc: loc}
}

// TagReport computes daily analytics for one tag over completed sessions.
// Sessions are loaded once; every derivation below works off that snapshot.
func (s *InsightsService) TagReport(ctx context.Context, tagName string, minPercentile float64, excludeOutliers bool, buckets int) (TagReport, error) {
	tagName = strings.TrimSpace(tagName)
	if tagName == "" {
		return TagReport{}, fmt.Errorf("%w: tag name is required", apperrors.ErrInvalidInput)
	}
	if minPercentile < 0 || minPercentile > 100 {
		return TagReport{}, fmt.Errorf("%w: minimum percentile must be within [0,100]", apperrors.ErrInvalidInput)
	}
	if buckets < 1 {
		return TagReport{}, fmt.Errorf("%w: at least one histogram bucket is required", apperrors.ErrInvalidInput)
	}

	all, err := s.sessions.GetAllSessions(ctx)
	if err != nil {
		return TagReport{}, fmt.Errorf("load sessions: %w", err)
	}
	var completed, tagged []trackerdomain.Session
	for _, session := range all {
		if session.State != trackerdomain.StateCompleted {
			continue
		}
		completed = append(completed, session)
		if session.Tag != nil && session.Tag.Name == tagName {
			tagged = append(tagged, session)
		}
	}

	report := TagReport{TagName: tagName}
	tagDays := domain.GroupByDay(tagged, s.loc)
	report.DaysTracked = len(tagDays)

	// Cross-tag day totals measure how complete each day's tracking was;
	// sparse days drop out before tag statistics are computed.
	if minPercentile > 0 {
		allDays := domain.GroupByDay(completed, s.loc)
		kept := domain.CompleteDays(allDays, minPercentile)
		filtered := tagDays[:0]
		for _, day := range tagDays {
			if kept[day.Day] {
				filtered = append(filtered, day)
			}
		}
		report.FilteredDays = len(tagDays) - len(filtered)
		tagDays = filtered
	}

	if excludeOutliers {
		tagDays, report.RemovedOutliers = domain.RemoveOutliers(tagDays)
	}

	values := make([]float64, len(tagDays))
	for i, day := range tagDays {
		values[i] = day.TotalMS
	}
	report.Days = tagDays
	report.Stats = domain.CalculateStatistics(values)
	report.ZScores = domain.ZScores(values)
	report.Histogram = domain.Histogram(report.ZScores, buckets)
	report.Percentiles = make([]float64, len(values))
	for i, v := range values {
		report.Percentiles[i] = domain.PercentileOfValue(values, v)
	}
	return report, nil
}

package domain

import (
	"math"
	"sort"
	"time"

	trackerdomain "tally/internal/modules/tracker/domain"
)

// DayTotal is one calendar day's summed duration. Day keys are formatted as
// YYYY-MM-DD so lexicographic order is chronological order regardless of the
// ambient locale.
type DayTotal struct {
	Day     string
	TotalMS float64
}

// DayKey derives the calendar-day bucket for an instant in the given zone.
func DayKey(epochMS int64, loc *time.Location) string {
	return time.UnixMilli(epochMS).In(loc).Format("2006-01-02")
}

// GroupByDay sums session durations per calendar day, returned in
// chronological order.
func GroupByDay(sessions []trackerdomain.Session, loc *time.Location) []DayTotal {
	totals := make(map[string]float64)
	for _, session := range sessions {
		totals[DayKey(session.Timestamp, loc)] += float64(session.DurationMS)
	}
	days := make([]DayTotal, 0, len(totals))
	for day, total := range totals {
		days = append(days, DayTotal{Day: day, TotalMS: total})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day < days[j].Day })
	return days
}

// CompleteDays ranks days by their cross-tag total duration ascending and
// keeps those whose rank percentile is at least minPercentile. A threshold of
// zero keeps everything. The returned set filters tag-specific days so that
// sparsely tracked days do not skew a tag's statistics.
func CompleteDays(allDays []DayTotal, minPercentile float64) map[string]bool {
	kept := make(map[string]bool, len(allDays))
	if minPercentile <= 0 {
		for _, day := range allDays {
			kept[day.Day] = true
		}
		return kept
	}
	ranked := append([]DayTotal(nil), allDays...)
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].TotalMS < ranked[j].TotalMS })
	n := float64(len(ranked))
	for i, day := range ranked {
		percentile := 100 * float64(i+1) / n
		if percentile >= minPercentile {
			kept[day.Day] = true
		}
	}
	return kept
}

// RemoveOutliers drops days outside [Q1-1.5*IQR, Q3+1.5*IQR], with quartiles
// read at floor(n*0.25) and floor(n*0.75) of the sorted durations. Below four
// points the bounds degenerate but the call still filters rather than fail.
func RemoveOutliers(days []DayTotal) (kept []DayTotal, removed int) {
	if len(days) == 0 {
		return nil, 0
	}
	sorted := make([]float64, len(days))
	for i, day := range days {
		sorted[i] = day.TotalMS
	}
	sort.Float64s(sorted)

	q1 := sorted[int(math.Floor(float64(len(sorted))*0.25))]
	q3 := sorted[int(math.Floor(float64(len(sorted))*0.75))]
	iqr := q3 - q1
	lower, upper := q1-1.5*iqr, q3+1.5*iqr

	kept = make([]DayTotal, 0, len(days))
	for _, day := range days {
		if day.TotalMS < lower || day.TotalMS > upper {
			removed++
			continue
		}
		kept = append(kept, day)
	}
	return kept, removed
}

package usecase

import (
	"context"

	"tally/internal/modules/insights/dto"
	insightsin "tally/internal/modules/insights/port/in"
	"tally/internal/modules/insights/service"
)

type Interactor struct {
	svc *service.InsightsService
}

func NewInteractor(svc *service.InsightsService) insightsin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) TagReport(ctx context.Context, input dto.ReportInput) (dto.TagReport, error) {
	report, err := i.svc.TagReport(ctx, input.TagName, input.MinPercentile, input.ExcludeOutliers, input.Buckets)
	if err != nil {
		return dto.TagReport{}, err
	}

	out := dto.TagReport{
		TagName: report.TagName,
		Stats: dto.Statistics{
			Count:    report.Stats.Count,
			Sum:      report.Stats.Sum,
			Mean:     report.Stats.Mean,
			Median:   report.Stats.Median,
			Mode:     report.Stats.Mode,
			Variance: report.Stats.Variance,
			StdDev:   report.Stats.StdDev,
			Min:      report.Stats.Min,
			Max:      report.Stats.Max,
		},
		DaysTracked:     report.DaysTracked,
		FilteredDays:    report.FilteredDays,
		RemovedOutliers: report.RemovedOutliers,
	}
	for i, day := range report.Days {
		out.Days = append(out.Days, dto.DayEntry{
			Day:        day.Day,
			TotalMS:    day.TotalMS,
			ZScore:     report.ZScores[i],
			Percentile: report.Percentiles[i],
		})
	}
	for _, bucket := range report.Histogram {
		out.Histogram = append(out.Histogram, dto.HistogramBucket{Lower: bucket.Lower, Upper: bucket.Upper, Count: bucket.Count})
	}
	return out, nil
}

package in

import (
	"context"

	"tally/internal/modules/insights/dto"
)

type Usecase interface {
	TagReport(ctx context.Context, input dto.ReportInput) (dto.TagReport, error)
}

package in

import (
	"context"

	insightsdto "tally/internal/modules/insights/dto"
	insightsin "tally/internal/modules/insights/port/in"
)

type CLIHandler struct {
	usecase insightsin.Usecase
}

func NewCLIHandler(usecase insightsin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) TagReport(ctx context.Context, input insightsdto.ReportInput) (insightsdto.TagReport, error) {
	return h.usecase.TagReport(ctx, input)
}

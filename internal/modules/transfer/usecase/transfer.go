package usecase

import (
	"context"

	"tally/internal/modules/transfer/domain"
	"tally/internal/modules/transfer/dto"
	transferin "tally/internal/modules/transfer/port/in"
	"tally/internal/modules/transfer/service"
)

type Interactor struct {
	svc *service.TransferService
}

func NewInteractor(svc *service.TransferService) transferin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Validate(_ context.Context, content string) (dto.ValidationOutput, error) {
	report := i.svc.Validate(content)
	out := dto.ValidationOutput{
		Valid:        report.Valid,
		Warnings:     report.Warnings,
		SessionCount: report.SessionCount,
	}
	for _, rowErr := range report.Errors {
		out.Errors = append(out.Errors, dto.RowFailure{Row: rowErr.Row, Reason: rowErr.Message})
	}
	return out, nil
}

func (i *Interactor) Import(ctx context.Context, content string) (dto.ImportOutcome, error) {
	outcome, err := i.svc.Import(ctx, content)
	if err != nil {
		return dto.ImportOutcome{}, err
	}
	return importOutcome(outcome), nil
}

func (i *Interactor) Export(ctx context.Context) (dto.ExportOutput, error) {
	content, exported, skipped, err := i.svc.Export(ctx)
	if err != nil {
		return dto.ExportOutput{}, err
	}
	return dto.ExportOutput{Content: content, Exported: exported, SkippedLive: skipped}, nil
}

func importOutcome(outcome domain.ImportOutcome) dto.ImportOutcome {
	out := dto.ImportOutcome{
		RowsSeen:    outcome.RowsSeen,
		Succeeded:   outcome.Succeeded,
		CreatedTags: outcome.CreatedTags,
		Warnings:    outcome.Warnings,
	}
	for _, failure := range outcome.Failed {
		out.Failed = append(out.Failed, dto.RowFailure{Row: failure.Row, Reason: failure.Reason})
	}
	for _, duplicate := range outcome.Duplicates {
		out.Duplicates = append(out.Duplicates, dto.DuplicateRow{Row: duplicate.Row, Timestamp: duplicate.Timestamp, Title: duplicate.Title})
	}
	return out
}

package in

import (
	"context"

	"tally/internal/modules/transfer/dto"
)

type Usecase interface {
	Validate(ctx context.Context, content string) (dto.ValidationOutput, error)
	Import(ctx context.Context, content string) (dto.ImportOutcome, error)
	Export(ctx context.Context) (dto.ExportOutput, error)
}

package in

import (
	"context"

	transferdto "tally/internal/modules/transfer/dto"
	transferin "tally/internal/modules/transfer/port/in"
)

type CLIHandler struct {
	usecase transferin.Usecase
}

func NewCLIHandler(usecase transferin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Validate(ctx context.Context, content string) (transferdto.ValidationOutput, error) {
	return h.usecase.Validate(ctx, content)
}

func (h CLIHandler) Import(ctx context.Context, content string) (transferdto.ImportOutcome, error) {
	return h.usecase.Import(ctx, content)
}

func (h CLIHandler) Export(ctx context.Context) (transferdto.ExportOutput, error) {
	return h.usecase.Export(ctx)
}

package in

import (
	"context"

	"tally/internal/modules/plugin/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.PluginInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
	ListCommands(ctx context.Context, pluginName string) ([]dto.CommandInfo, error)
	Report(ctx context.Context, input dto.ExecuteInput) (dto.ExecuteOutput, error)
	Export(ctx context.Context, input dto.ExecuteInput) (dto.ExecuteOutput, error)
	PrepareTTY(ctx context.Context, input dto.TTYPrepareInput) (dto.TTYPrepareOutput, error)
}

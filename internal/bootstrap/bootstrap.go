package bootstrap

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	insightsinadapter "tally/internal/modules/insights/adapter/in"
	insightsin "tally/internal/modules/insights/port/in"
	insightsservice "tally/internal/modules/insights/service"
	insightsusecase "tally/internal/modules/insights/usecase"
	plugininadapter "tally/internal/modules/plugin/adapter/in"
	pluginoutadapter "tally/internal/modules/plugin/adapter/out"
	pluginin "tally/internal/modules/plugin/port/in"
	pluginservice "tally/internal/modules/plugin/service"
	pluginusecase "tally/internal/modules/plugin/usecase"
	trackerinadapter "tally/internal/modules/tracker/adapter/in"
	trackeroutadapter "tally/internal/modules/tracker/adapter/out"
	trackerin "tally/internal/modules/tracker/port/in"
	trackerservice "tally/internal/modules/tracker/service"
	trackerusecase "tally/internal/modules/tracker/usecase"
	transferinadapter "tally/internal/modules/transfer/adapter/in"
	transferdto "tally/internal/modules/transfer/dto"
	transferin "tally/internal/modules/transfer/port/in"
	transferservice "tally/internal/modules/transfer/service"
	transferusecase "tally/internal/modules/transfer/usecase"
	"tally/internal/platform/clock"
	"tally/internal/platform/config"
	"tally/internal/platform/id"
	uiapp "tally/internal/ui/app"
)

type App struct {
	TrackerCLI  trackerinadapter.CLIHandler
	TransferCLI transferinadapter.CLIHandler
	InsightsCLI insightsinadapter.CLIHandler
	PluginCLI   plugininadapter.CLIHandler

	TrackerUC  trackerin.Usecase
	TransferUC transferin.Usecase
	InsightsUC insightsin.Usecase
	PluginUC   pluginin.Usecase

	// retained for dry-run snapshots
	store *trackeroutadapter.SQLiteStore
	clk   clock.Clock
	ids   id.Generator
	cfg   config.Config
}

func New(cfg config.Config) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	clk := clock.SystemClock{Location: loc}
	ids := id.UUID{}

	store, err := trackeroutadapter.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	trackerSvc := trackerservice.NewTrackerService(clk, ids, store, store, store)
	trackerUC := trackerusecase.NewInteractor(trackerSvc)
	if err := trackerUC.SeedDefaults(context.Background()); err != nil {
		return nil, fmt.Errorf("seed defaults: %w", err)
	}

	transferSvc := transferservice.NewTransferService(clk, ids, store, store, loc)
	transferUC := transferusecase.NewInteractor(transferSvc)

	insightsSvc := insightsservice.NewInsightsService(store, loc)
	insightsUC := insightsusecase.NewInteractor(insightsSvc)

	pluginSvc := pluginservice.NewPluginService(
		pluginoutadapter.NewFileManifestStore(cfg.DataDir),
		pluginoutadapter.NewGRPCHost(),
		insightsUC,
		transferUC,
	)
	pluginSvc.ReportBuckets = cfg.Settings.HistogramBuckets
	pluginUC := pluginusecase.NewInteractor(pluginSvc)

	return &App{
		TrackerCLI:  trackerinadapter.NewCLIHandler(trackerUC),
		TransferCLI: transferinadapter.NewCLIHandler(transferUC),
		InsightsCLI: insightsinadapter.NewCLIHandler(insightsUC),
		PluginCLI:   plugininadapter.NewCLIHandler(pluginUC),
		TrackerUC:   trackerUC,
		TransferUC:  transferUC,
		InsightsUC:  insightsUC,
		PluginUC:    pluginUC,
		store:       store,
		clk:         clk,
		ids:         ids,
		cfg:         cfg,
	}, nil
}

// Settings exposes the resolved user settings.
func (a *App) Settings() config.Settings {
	return a.cfg.Settings
}

// Close releases the backing store.
func (a *App) Close() error {
	return a.store.Close()
}

// NewWatchImporter returns a directory watcher that feeds dropped CSV files
// into the import pipeline.
func (a *App) NewWatchImporter() *transferinadapter.WatchImporter {
	return transferinadapter.NewWatchImporter(a.TransferUC)
}

// DryRunImport runs a full import against an in-memory copy of the current
// store, reporting what a real import would do without persisting anything.
func (a *App) DryRunImport(ctx context.Context, content string) (transferdto.ImportOutcome, error) {
	sessions, err := a.store.GetAllSessions(ctx)
	if err != nil {
		return transferdto.ImportOutcome{}, fmt.Errorf("snapshot sessions: %w", err)
	}
	tags, err := a.store.GetAllTags(ctx)
	if err != nil {
		return transferdto.ImportOutcome{}, fmt.Errorf("snapshot tags: %w", err)
	}

	scratch := trackeroutadapter.NewMemoryStore()
	scratch.Preload(sessions, tags)

	loc, err := a.cfg.Location()
	if err != nil {
		return transferdto.ImportOutcome{}, err
	}
	svc := transferservice.NewTransferService(a.clk, a.ids, scratch, scratch, loc)
	return transferusecase.NewInteractor(svc).Import(ctx, content)
}

func RunTUI(dataDir string, app *App) error {
	model := uiapp.NewModel(dataDir, app.TrackerUC, app.TransferUC, app.InsightsUC, app.PluginUC)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

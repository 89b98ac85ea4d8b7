package in

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	transferdto "tally/internal/modules/transfer/dto"
	transferin "tally/internal/modules/transfer/port/in"
)

// WatchImporter imports every CSV file dropped into a directory. Other
// devices can sync exports into the watched folder and have them land in the
// store without a manual import step.
type WatchImporter struct {
	usecase transferin.Usecase

	// OnOutcome receives the result of each attempted import. Optional.
	OnOutcome func(path string, outcome transferdto.ImportOutcome, err error)
}

func NewWatchImporter(usecase transferin.Usecase) *WatchImporter {
	return &WatchImporter{usecase: usecase}
}

// Watch blocks until ctx is cancelled, importing each .csv file created or
// written under dir. Import failures are reported through OnOutcome and do
// not stop the watcher.
func (w *WatchImporter) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".csv") {
				continue
			}
			w.importFile(ctx, event.Name)

		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			// Watcher errors are non-fatal; keep watching.
		}
	}
}

func (w *WatchImporter) importFile(ctx context.Context, path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		w.report(path, transferdto.ImportOutcome{}, err)
		return
	}
	outcome, err := w.usecase.Import(ctx, string(content))
	w.report(path, outcome, err)
}

func (w *WatchImporter) report(path string, outcome transferdto.ImportOutcome, err error) {
	if w.OnOutcome != nil {
		w.OnOutcome(path, outcome, err)
	}
}

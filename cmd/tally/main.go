package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tally/internal/bootstrap"
	insightsdto "tally/internal/modules/insights/dto"
	plugindto "tally/internal/modules/plugin/dto"
	transferdto "tally/internal/modules/transfer/dto"
	"tally/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultDataDir() string {
	if dir := os.Getenv("TALLY_DATA_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".tally")
}

func newRootCmd() *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:           "tally",
		Short:         "Personal time tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(), "data directory")

	root.AddCommand(newTUICmd(&dataDir))
	root.AddCommand(newStartCmd(&dataDir))
	root.AddCommand(newPauseCmd(&dataDir))
	root.AddCommand(newResumeCmd(&dataDir))
	root.AddCommand(newStopCmd(&dataDir))
	root.AddCommand(newAbortCmd(&dataDir))
	root.AddCommand(newStatusCmd(&dataDir))
	root.AddCommand(newSessionsCmd(&dataDir))
	root.AddCommand(newSessionCmd(&dataDir))
	root.AddCommand(newTagCmd(&dataDir))
	root.AddCommand(newImportCmd(&dataDir))
	root.AddCommand(newExportCmd(&dataDir))
	root.AddCommand(newStatsCmd(&dataDir))
	root.AddCommand(newPluginCmd(&dataDir))
	return root
}

func loadApp(dataDir string) (*bootstrap.App, error) {
	cfg, err := config.New(dataDir)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg)
}

func newTUICmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run tally terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			return bootstrap.RunTUI(*dataDir, app)
		},
	}
}

func newStartCmd(dataDir *string) *cobra.Command {
	var tagName string
	start := &cobra.Command{
		Use:   "start <title>",
		Short: "Start a new session",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.TrackerCLI.Start(context.Background(), strings.Join(args, " "), tagName)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "started %q", out.Title)
			if out.Tag != nil {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), " tag=%s", out.Tag.Name)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
	start.Flags().StringVar(&tagName, "tag", "", "tag name")
	return start
}

func newPauseCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause the live session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.TrackerCLI.Pause(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "paused %q at %s\n", out.Title, formatDurationMS(out.DurationMS))
			return nil
		},
	}
}

func newResumeCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume the paused session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.TrackerCLI.Resume(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "resumed %q\n", out.Title)
			return nil
		},
	}
}

func newStopCmd(dataDir *string) *cobra.Command {
	var rating float64
	var comment string
	stop := &cobra.Command{
		Use:   "stop",
		Short: "Stop the live session and record it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.TrackerCLI.Stop(context.Background(), rating, comment)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "completed %q duration=%s rating=%.1f\n",
				out.Title, formatDurationMS(out.DurationMS), out.Rating)
			return nil
		},
	}
	stop.Flags().Float64Var(&rating, "rating", 0, "session rating (0-5)")
	stop.Flags().StringVar(&comment, "comment", "", "session comment")
	return stop
}

func newAbortCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "abort",
		Short: "Abort the live session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.TrackerCLI.Abort(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "aborted %q\n", out.Title)
			return nil
		},
	}
}

func newStatusCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the live session, if any",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.TrackerCLI.GetActive(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %q elapsed=%s", out.State, out.Title, formatDurationMS(out.DurationMS))
			if out.Tag != nil {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), " tag=%s", out.Tag.Name)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}

func newSessionsCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List recorded sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			sessions, err := app.TrackerCLI.ListSessions(context.Background())
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
				return nil
			}
			for _, s := range sessions {
				tag := "-"
				if s.Tag != nil {
					tag = s.Tag.Name
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s\n",
					time.UnixMilli(s.Timestamp).Format("02/01/2006 15:04"),
					s.State, formatDurationMS(s.DurationMS), tag, s.Title)
			}
			return nil
		},
	}
}

func newSessionCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "session <id>",
		Short: "Show one session in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			s, err := app.TrackerCLI.GetSession(context.Background(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "id: %s\n", s.ID)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "title: %s\n", s.Title)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "when: %s\n", time.UnixMilli(s.Timestamp).Format("02/01/2006 15:04:05"))
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "state: %s\n", s.State)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "duration: %s\n", formatDurationMS(s.DurationMS))
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "rating: %.1f\n", s.Rating)
			if s.Tag != nil {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "tag: %s (%s)\n", s.Tag.Name, s.Tag.Color)
			}
			if s.Comment != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "comment: %s\n", s.Comment)
			}
			return nil
		},
	}
}

func newTagCmd(dataDir *string) *cobra.Command {
	tag := &cobra.Command{Use: "tag", Short: "Tag management"}

	tag.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tags",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			tags, err := app.TrackerCLI.ListTags(context.Background())
			if err != nil {
				return err
			}
			if len(tags) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no tags")
				return nil
			}
			for _, t := range tags {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tsessions=%d\n", t.Name, t.Color, t.TotalInstances)
			}
			return nil
		},
	})

	tag.AddCommand(&cobra.Command{
		Use:   "new <name>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			t, err := app.TrackerCLI.CreateTag(context.Background(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created tag %s with color %s\n", t.Name, t.Color)
			return nil
		},
	})

	tag.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a tag (recorded sessions keep their snapshot)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.TrackerCLI.DeleteTag(context.Background(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted tag %s\n", args[0])
			return nil
		},
	})

	return tag
}

func newImportCmd(dataDir *string) *cobra.Command {
	var dryRun, validateOnly, watch bool
	importCmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import sessions from a CSV export",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer app.Close()

			if watch {
				return runWatch(cmd, app, args)
			}
			if len(args) != 1 {
				return fmt.Errorf("a CSV file is required")
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			content := string(raw)

			if validateOnly {
				report, err := app.TransferCLI.Validate(context.Background(), content)
				if err != nil {
					return err
				}
				printValidation(cmd, report)
				if !report.Valid {
					return fmt.Errorf("validation failed")
				}
				return nil
			}

			var outcome transferdto.ImportOutcome
			if dryRun {
				outcome, err = app.DryRunImport(context.Background(), content)
			} else {
				outcome, err = app.TransferCLI.Import(context.Background(), content)
			}
			if err != nil {
				return err
			}
			printOutcome(cmd, args[0], outcome, dryRun)
			return nil
		},
	}
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would happen without writing")
	importCmd.Flags().BoolVar(&validateOnly, "validate", false, "validate the file without importing")
	importCmd.Flags().BoolVar(&watch, "watch", false, "watch a directory and import dropped CSV files")
	return importCmd
}

func runWatch(cmd *cobra.Command, app *bootstrap.App, args []string) error {
	dir := app.Settings().WatchDir
	if len(args) == 1 {
		dir = args[0]
	}
	if dir == "" {
		dir = "."
	}
	watcher := app.NewWatchImporter()
	watcher.OnOutcome = func(path string, outcome transferdto.ImportOutcome, err error) {
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
			return
		}
		printOutcome(cmd, path, outcome, false)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "watching %s for CSV files (ctrl+c to stop)\n", dir)
	return watcher.Watch(ctx, dir)
}

func printValidation(cmd *cobra.Command, report transferdto.ValidationOutput) {
	if report.Valid {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "valid: %d sessions\n", report.SessionCount)
	} else {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "invalid: %d errors\n", len(report.Errors))
		for _, e := range report.Errors {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  row %d: %s\n", e.Row, e.Reason)
		}
	}
	for _, w := range report.Warnings {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  warning: %s\n", w)
	}
}

func printOutcome(cmd *cobra.Command, path string, outcome transferdto.ImportOutcome, dryRun bool) {
	verb := "imported"
	if dryRun {
		verb = "would import"
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %d of %d rows (%d duplicates skipped)\n",
		path, verb, outcome.Succeeded, outcome.RowsSeen, len(outcome.Duplicates))
	if len(outcome.CreatedTags) > 0 {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  new tags: %s\n", strings.Join(outcome.CreatedTags, ", "))
	}
	for _, f := range outcome.Failed {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  row %d failed: %s\n", f.Row, f.Reason)
	}
	for _, w := range outcome.Warnings {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  warning: %s\n", w)
	}
}

func newExportCmd(dataDir *string) *cobra.Command {
	var outPath string
	export := &cobra.Command{
		Use:   "export",
		Short: "Export recorded sessions to CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.TransferCLI.Export(context.Background())
			if err != nil {
				return err
			}
			if outPath == "" {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), out.Content)
				return nil
			}
			if err := os.WriteFile(outPath, []byte(out.Content), 0o644); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d sessions to %s", out.Exported, outPath)
			if out.SkippedLive > 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), " (%d live skipped)", out.SkippedLive)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
	export.Flags().StringVarP(&outPath, "output", "o", "", "write to file instead of stdout")
	return export
}

func newStatsCmd(dataDir *string) *cobra.Command {
	var tagName string
	var minPercentile float64
	var excludeOutliers bool
	var buckets int

	stats := &cobra.Command{
		Use:   "stats --tag <name>",
		Short: "Show daily statistics for a tag",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(tagName) == "" {
				return fmt.Errorf("--tag is required")
			}
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer app.Close()

			if !cmd.Flags().Changed("min-percentile") {
				minPercentile = app.Settings().DefaultMinPercentile
			}
			if !cmd.Flags().Changed("buckets") {
				buckets = app.Settings().HistogramBuckets
			}
			report, err := app.InsightsCLI.TagReport(context.Background(), insightsdto.ReportInput{
				TagName:         tagName,
				MinPercentile:   minPercentile,
				ExcludeOutliers: excludeOutliers,
				Buckets:         buckets,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "tag: %s\n", report.TagName)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "days tracked=%d filtered=%d outliers removed=%d\n",
				report.DaysTracked, report.FilteredDays, report.RemovedOutliers)
			s := report.Stats
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "count=%d total=%s mean=%s median=%s stddev=%s min=%s max=%s\n",
				s.Count, formatDurationMS(int64(s.Sum)), formatDurationMS(int64(s.Mean)),
				formatDurationMS(int64(s.Median)), formatDurationMS(int64(s.StdDev)),
				formatDurationMS(int64(s.Min)), formatDurationMS(int64(s.Max)))
			if s.Mode != nil {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "mode bucket midpoint=%s\n", formatDurationMS(int64(*s.Mode)))
			}
			for _, b := range report.Histogram {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  z %+.2f..%+.2f  %s\n", b.Lower, b.Upper, strings.Repeat("#", b.Count))
			}
			for _, d := range report.Days {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  z=%+.2f  p%.0f\n",
					d.Day, formatDurationMS(int64(d.TotalMS)), d.ZScore, d.Percentile)
			}
			return nil
		},
	}
	stats.Flags().StringVar(&tagName, "tag", "", "tag name")
	stats.Flags().Float64Var(&minPercentile, "min-percentile", 0, "drop days below this completeness percentile (0-100)")
	stats.Flags().BoolVar(&excludeOutliers, "exclude-outliers", false, "drop days outside 1.5x IQR")
	stats.Flags().IntVar(&buckets, "buckets", 10, "histogram bucket count")
	return stats
}

func newPluginCmd(dataDir *string) *cobra.Command {
	plugin := &cobra.Command{Use: "plugin", Short: "Plugin operations"}

	plugin.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List plugin manifests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			plugins, err := app.PluginCLI.List(context.Background())
			if err != nil {
				return err
			}
			if len(plugins) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins configured")
				return nil
			}
			for _, p := range plugins {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s@%s enabled=%t binary=%s\n", p.Name, p.Version, p.Enabled, p.Binary)
			}
			return nil
		},
	})

	plugin.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Validate plugin checksums and lifecycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			results, err := app.PluginCLI.Doctor(context.Background())
			if err != nil {
				return err
			}
			if len(results) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins configured")
				return nil
			}
			for _, r := range results {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s checksum=%t binary=%t lifecycle=%t", r.Name, r.ChecksumValid, r.BinaryReachable, r.LifecycleOK)
				if r.Error != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%q", r.Error)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	})

	var commandPluginName string
	commandsCmd := &cobra.Command{
		Use:   "commands --plugin <name>",
		Short: "List commands exposed by a plugin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(commandPluginName) == "" {
				return fmt.Errorf("--plugin is required")
			}
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			commands, err := app.PluginCLI.ListCommands(context.Background(), commandPluginName)
			if err != nil {
				return err
			}
			if len(commands) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no commands")
				return nil
			}
			for _, item := range commands {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s kind=%s timeout_ms=%d title=%q\n", item.ID, item.Kind, item.TimeoutMS, item.Title)
			}
			return nil
		},
	}
	commandsCmd.Flags().StringVar(&commandPluginName, "plugin", "", "plugin name")
	plugin.AddCommand(commandsCmd)

	var reportPluginName, reportCommandID, reportInputJSON, reportTagName string
	reportCmd := &cobra.Command{
		Use:   "report --plugin <name> --command <id> --tag <name>",
		Short: "Execute a report-capability plugin command over a tag's statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(reportPluginName) == "" || strings.TrimSpace(reportCommandID) == "" || strings.TrimSpace(reportTagName) == "" {
				return fmt.Errorf("--plugin, --command, and --tag are required")
			}
			if err := validateJSONInput(reportInputJSON); err != nil {
				return err
			}
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.PluginCLI.Report(context.Background(), plugindto.ExecuteInput{
				PluginName: reportPluginName,
				CommandID:  reportCommandID,
				InputJSON:  reportInputJSON,
				TagName:    reportTagName,
				DataDir:    *dataDir,
				Cwd:        *dataDir,
			})
			if err != nil {
				return err
			}
			printExecuteOutput(cmd, out)
			return nil
		},
	}
	reportCmd.Flags().StringVar(&reportPluginName, "plugin", "", "plugin name")
	reportCmd.Flags().StringVar(&reportCommandID, "command", "", "command id")
	reportCmd.Flags().StringVar(&reportInputJSON, "input-json", "", "JSON input payload")
	reportCmd.Flags().StringVar(&reportTagName, "tag", "", "tag name")
	plugin.AddCommand(reportCmd)

	var exportPluginName, exportCommandID, exportInputJSON string
	exportCmd := &cobra.Command{
		Use:   "export --plugin <name> --command <id>",
		Short: "Execute an export-capability plugin command over the CSV export",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(exportPluginName) == "" || strings.TrimSpace(exportCommandID) == "" {
				return fmt.Errorf("--plugin and --command are required")
			}
			if err := validateJSONInput(exportInputJSON); err != nil {
				return err
			}
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.PluginCLI.Export(context.Background(), plugindto.ExecuteInput{
				PluginName: exportPluginName,
				CommandID:  exportCommandID,
				InputJSON:  exportInputJSON,
				DataDir:    *dataDir,
				Cwd:        *dataDir,
			})
			if err != nil {
				return err
			}
			printExecuteOutput(cmd, out)
			return nil
		},
	}
	exportCmd.Flags().StringVar(&exportPluginName, "plugin", "", "plugin name")
	exportCmd.Flags().StringVar(&exportCommandID, "command", "", "command id")
	exportCmd.Flags().StringVar(&exportInputJSON, "input-json", "", "JSON input payload")
	plugin.AddCommand(exportCmd)

	var ttyPluginName, ttyCommandID, ttyInputJSON, ttyTagName string
	ttyCmd := &cobra.Command{
		Use:   "tty --plugin <name> --command <id>",
		Short: "Prepare and run a fullscreen tty plugin command",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(ttyPluginName) == "" || strings.TrimSpace(ttyCommandID) == "" {
				return fmt.Errorf("--plugin and --command are required")
			}
			if err := validateJSONInput(ttyInputJSON); err != nil {
				return err
			}
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			plan, err := app.PluginCLI.PrepareTTY(context.Background(), plugindto.TTYPrepareInput{
				PluginName: ttyPluginName,
				CommandID:  ttyCommandID,
				InputJSON:  ttyInputJSON,
				TagName:    ttyTagName,
				DataDir:    *dataDir,
				Cwd:        *dataDir,
			})
			if err != nil {
				return err
			}
			return runTTYPlan(plan)
		},
	}
	ttyCmd.Flags().StringVar(&ttyPluginName, "plugin", "", "plugin name")
	ttyCmd.Flags().StringVar(&ttyCommandID, "command", "", "command id")
	ttyCmd.Flags().StringVar(&ttyInputJSON, "input-json", "", "JSON input payload")
	ttyCmd.Flags().StringVar(&ttyTagName, "tag", "", "optional tag name")
	plugin.AddCommand(ttyCmd)

	return plugin
}

func printExecuteOutput(cmd *cobra.Command, out plugindto.ExecuteOutput) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "plugin=%s command=%s exit=%d\n", out.PluginName, out.CommandID, out.ExitCode)
	if strings.TrimSpace(out.Stdout) != "" {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Stdout)
	}
	if strings.TrimSpace(out.Stderr) != "" {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), out.Stderr)
	}
	if strings.TrimSpace(out.OutputJSON) != "" {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.OutputJSON)
	}
}

func validateJSONInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	if !json.Valid([]byte(input)) {
		return fmt.Errorf("--input-json must be valid JSON")
	}
	return nil
}

func runTTYPlan(plan plugindto.TTYPrepareOutput) error {
	if len(plan.Argv) == 0 {
		return fmt.Errorf("plugin tty plan has empty argv")
	}
	cmd := exec.Command(plan.Argv[0], plan.Argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if plan.Cwd != "" {
		cmd.Dir = plan.Cwd
	}
	env := os.Environ()
	for key, value := range plan.Env {
		env = append(env, key+"="+value)
	}
	cmd.Env = env
	return cmd.Run()
}

func formatDurationMS(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	h := int(d.Hours())
	mi := int(d.Minutes()) % 60
	sec := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, mi, sec)
	}
	return fmt.Sprintf("%dm%02ds", mi, sec)
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quill/internal/diag"
	"quill/internal/diagfmt"
	"quill/internal/driver"
	"quill/internal/project"
	"quill/internal/ui"
)

var diagCmd = &cobra.Command{
	Use:   "diag [flags] [file.qs|directory ...]",
	Short: "Check quill sources and print diagnostics",
	Long: `Load, parse and resolve quill programs and print their diagnostics.
Without arguments the main file of the enclosing quill.toml project is checked.
A directory with quill.toml contributes its main file, any other directory
every .qs file below it.`,
	RunE: runDiag,
}

func init() {
	diagCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	diagCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	diagCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	diagCmd.Flags().String("ui", "auto", "progress UI mode (auto|on|off)")
	diagCmd.Flags().Bool("disk-cache", false, "skip unchanged clean programs using the persistent cache")
	diagCmd.Flags().Int("jobs", 0, "max parallel loaders (0=auto)")
	diagCmd.Flags().Bool("legacy", false, "enable the legacy shadowing check of non-strict namespaces")
}

// diagSettings collects the flags of one diag run.
type diagSettings struct {
	format    string
	withNotes bool
	pathMode  diagfmt.PathMode
	ui        uiMode
	diskCache bool
	timings   bool
	quiet     bool
	color     bool
}

func readDiagSettings(cmd *cobra.Command) (diagSettings, error) {
	var (
		s   diagSettings
		err error
	)
	if s.format, err = cmd.Flags().GetString("format"); err != nil {
		return s, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch s.format {
	case "pretty", "json", "short":
	default:
		return s, fmt.Errorf("unknown format: %s", s.format)
	}
	if s.withNotes, err = cmd.Flags().GetBool("with-notes"); err != nil {
		return s, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return s, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	if fullPath {
		s.pathMode = diagfmt.PathModeAbsolute
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return s, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if s.ui, err = readUIMode(uiValue); err != nil {
		return s, err
	}
	if s.diskCache, err = cmd.Flags().GetBool("disk-cache"); err != nil {
		return s, fmt.Errorf("failed to get disk-cache flag: %w", err)
	}
	if s.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return s, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if s.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return s, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if s.color, err = useColor(cmd, os.Stdout); err != nil {
		return s, err
	}
	return s, nil
}

// driverOptions layers manifest settings under explicit flags.
func driverOptions(cmd *cobra.Command, manifest *project.Manifest) (driver.Options, error) {
	opts := driver.Options{Logger: logger}
	if manifest != nil {
		opts.Legacy = manifest.Config.Build.Legacy
		opts.MaxDiagnostics = manifest.Config.Build.MaxDiagnostics
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return opts, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if maxDiagnostics > 0 {
		opts.MaxDiagnostics = maxDiagnostics
	}
	if f := cmd.Flags().Lookup("legacy"); f != nil && f.Changed {
		if opts.Legacy, err = cmd.Flags().GetBool("legacy"); err != nil {
			return opts, fmt.Errorf("failed to get legacy flag: %w", err)
		}
	}
	if f := cmd.Flags().Lookup("jobs"); f != nil {
		if opts.Jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
			return opts, fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	return opts, nil
}

// runDiag executes the "diag" command and returns errFailed when any
// program has error diagnostics.
func runDiag(cmd *cobra.Command, args []string) error {
	settings, err := readDiagSettings(cmd)
	if err != nil {
		return err
	}
	entries, manifest, err := driver.Entries(args)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no .qs files found")
	}
	opts, err := driverOptions(cmd, manifest)
	if err != nil {
		return err
	}
	if settings.diskCache {
		dc, err := driver.OpenDiskCache("quill")
		if err != nil {
			return fmt.Errorf("failed to open disk cache: %w", err)
		}
		opts.DiskCache = dc
	}

	var results []*driver.Result
	if settings.format == "pretty" && !settings.quiet && shouldUseTUI(settings.ui) {
		results, err = checkWithUI(cmd.Context(), "quill diag", entries, opts)
	} else {
		results, err = checkAll(cmd.Context(), driver.NewSession(opts), entries)
	}
	if err != nil {
		return fmt.Errorf("diagnosis failed: %w", err)
	}

	failed, err := renderResults(cmd.OutOrStdout(), cmd.ErrOrStderr(), results, settings)
	if err != nil {
		return err
	}
	if failed {
		return errFailed
	}
	return nil
}

// checkAll checks entries one after another over one session so shared
// libraries are resolved once.
func checkAll(ctx context.Context, session *driver.Session, entries []string) ([]*driver.Result, error) {
	results := make([]*driver.Result, 0, len(entries))
	for _, entry := range entries {
		res, err := session.Check(ctx, entry)
		if err != nil {
			return results, err
		}
		logger.Debug("checked",
			zap.String("entry", entry),
			zap.Int("libraries", len(res.Libraries)),
			zap.Int("reused", res.Reused),
			zap.Bool("disk_cache", res.FromDiskCache),
			zap.Int("diagnostics", res.Bag.Len()),
		)
		results = append(results, res)
	}
	return results, nil
}

// renderResults prints the diagnostics of every result as one sorted list.
func renderResults(out, errOut io.Writer, results []*driver.Result, s diagSettings) (failed bool, err error) {
	if len(results) == 0 {
		return false, nil
	}
	fs := results[0].FileSet
	bag := diag.NewBag(0)
	for _, res := range results {
		if res.HasErrors() {
			failed = true
		}
		if s.timings && s.format == "json" {
			driver.AppendTimingDiagnostic(res)
		}
		bag.Merge(res.Bag)
	}
	bag.Sort()
	bag.Dedup()

	switch s.format {
	case "pretty":
		err = diagfmt.Pretty(out, bag, fs, diagfmt.PrettyOpts{
			Color:     s.color,
			PathMode:  s.pathMode,
			ShowNotes: s.withNotes,
		})
	case "short":
		err = diagfmt.Short(out, bag, fs, s.pathMode)
	case "json":
		err = diagfmt.JSON(out, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         s.pathMode,
			IncludeNotes:     s.withNotes,
		})
	}
	if err != nil {
		return failed, fmt.Errorf("failed to format diagnostics: %w", err)
	}

	if s.timings && s.format != "json" {
		for _, res := range results {
			fmt.Fprintf(errOut, "%s: %s\n", res.Entry, res.Timer.Summary())
		}
	}
	if !s.quiet && s.format == "pretty" && bag.Len() == 0 {
		fmt.Fprintf(errOut, "no issues in %d %s\n", len(results), plural(len(results), "program", "programs"))
	}
	return failed, nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	}
	return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

func shouldUseTUI(mode uiMode) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	}
	return isTerminal(os.Stdout)
}

type checkOutcome struct {
	results []*driver.Result
	err     error
}

// checkWithUI runs the checks in the background while the progress model
// renders their events.
func checkWithUI(ctx context.Context, title string, entries []string, opts driver.Options) ([]*driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		results, err := checkAll(ctx, driver.NewSession(opts), entries)
		outcomeCh <- checkOutcome{results: results, err: err}
		close(events)
	}()

	program := tea.NewProgram(ui.NewProgressModel(title, entries, events), tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	// модель больше не читает канал (в том числе после ctrl+c)
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}

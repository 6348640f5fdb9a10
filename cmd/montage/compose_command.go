package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"montage/internal/config"
	"montage/internal/deps"
	"montage/internal/pipeline"
	"montage/internal/preflight"
	"montage/internal/services"
)

// selectionFlags are shared by compose, query, and stats.
type selectionFlags struct {
	records  string
	filter   string
	sort     string
	keyField string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.records, "in", "", "Record store: .json, .yaml, .db, or postgres:// DSN")
	cmd.Flags().StringVar(&f.filter, "filter", "", "Comma-separated predicates, e.g. instrument_family_str=bass,pitch=>60")
	cmd.Flags().StringVar(&f.sort, "sort", "", "Comma-separated sort keys, e.g. pitch=desc,instrument_family_str=asc")
	cmd.Flags().StringVar(&f.keyField, "key-field", "", "Record field naming each sample file")
}

func (f *selectionFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("in") {
		cfg.Paths.Records = f.records
	}
	if flags.Changed("filter") {
		cfg.Query.Filters = splitFlagList(f.filter)
	}
	if flags.Changed("sort") {
		cfg.Query.Sort = splitFlagList(f.sort)
	}
	if flags.Changed("key-field") {
		cfg.Query.KeyField = f.keyField
	}
}

type composeFlags struct {
	selection selectionFlags

	audioPattern string
	output       string
	manifest     string
	maxSeconds   int
	clipStart    int
	clipDuration int
	fadeIn       int
	fadeOut      int
	overlap      int
	padStart     int
	padEnd       int
	fadeCurve    string
	workers      int

	dryRun     bool
	skipChecks bool
	noProgress bool
}

func (f *composeFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	f.selection.apply(cmd, cfg)
	flags := cmd.Flags()
	if flags.Changed("audio") {
		cfg.Paths.AudioPattern = f.audioPattern
	}
	if flags.Changed("out") {
		cfg.Paths.Output = f.output
	}
	if flags.Changed("manifest") {
		cfg.Paths.Manifest = f.manifest
	}
	ints := []struct {
		name   string
		target *int
		value  int
	}{
		{"max", &cfg.Timing.MaxDurationSeconds, f.maxSeconds},
		{"cstart", &cfg.Timing.ClipStartMs, f.clipStart},
		{"cdur", &cfg.Timing.ClipDurationMs, f.clipDuration},
		{"fadein", &cfg.Timing.FadeInMs, f.fadeIn},
		{"fadeout", &cfg.Timing.FadeOutMs, f.fadeOut},
		{"overlap", &cfg.Timing.OverlapMs, f.overlap},
		{"pstart", &cfg.Timing.PadStartMs, f.padStart},
		{"pend", &cfg.Timing.PadEndMs, f.padEnd},
		{"workers", &cfg.Audio.DecodeWorkers, f.workers},
	}
	for _, item := range ints {
		if flags.Changed(item.name) {
			*item.target = item.value
		}
	}
	if flags.Changed("fade-curve") {
		cfg.Audio.FadeCurve = f.fadeCurve
	}
	return finalizeOverrides(cfg)
}

func newComposeCommand(ctx *commandContext) *cobra.Command {
	var flags composeFlags

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Build the montage audio track and manifest",
		Long: `Select records, trim the selection to the duration budget, and crossfade
one clip per sample onto a single track. The manifest maps each sample key to
its start offset and length in milliseconds. Pass --manifest "" to skip it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.configCopy()
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}
			logger, err := ctx.logger(cfg)
			if err != nil {
				return err
			}

			if !flags.dryRun {
				if !flags.skipChecks {
					if failed, ok := preflight.FirstFailure(preflight.RunAll(cmd.Context(), cfg)); ok {
						return services.Wrap(services.ErrValidation, "preflight", failed.Name, failed.Detail, nil)
					}
				}
				// Codec binaries are checked even with --skip-checks; a missing
				// ffmpeg would otherwise fail only after every sample is decoded.
				if missing := deps.Missing(preflight.CheckSystemDeps(cfg)); len(missing) > 0 {
					return services.Wrap(services.ErrExternalTool, "preflight", missing[0].Name, missing[0].Detail, nil)
				}
			}

			out := cmd.OutOrStdout()
			reporter := newProgressReporter(cmd.ErrOrStderr(), logger, !flags.noProgress)
			summary, err := pipeline.Run(cmd.Context(), pipeline.Options{
				Config:   cfg,
				Logger:   logger,
				Progress: reporter.Report,
				DryRun:   flags.dryRun,
			})
			reporter.Finish()
			if err != nil {
				return err
			}
			printComposeSummary(out, cfg, summary, flags.dryRun)
			return nil
		},
	}

	flags.selection.register(cmd)
	cmd.Flags().StringVar(&flags.audioPattern, "audio", "", "Sample file pattern with one %s for the key")
	cmd.Flags().StringVar(&flags.output, "out", "", "Output audio file; the extension picks the container")
	cmd.Flags().StringVar(&flags.manifest, "manifest", "", "Output manifest JSON file; empty skips it")
	cmd.Flags().IntVar(&flags.maxSeconds, "max", 0, "Maximum duration in seconds")
	cmd.Flags().IntVar(&flags.clipStart, "cstart", 0, "Clip start within each sample in milliseconds")
	cmd.Flags().IntVar(&flags.clipDuration, "cdur", 0, "Clip duration in milliseconds")
	cmd.Flags().IntVar(&flags.fadeIn, "fadein", 0, "Fade-in length in milliseconds")
	cmd.Flags().IntVar(&flags.fadeOut, "fadeout", 0, "Fade-out length in milliseconds")
	cmd.Flags().IntVar(&flags.overlap, "overlap", 0, "Overlap between consecutive clips in milliseconds")
	cmd.Flags().IntVar(&flags.padStart, "pstart", 0, "Silence before the first clip in milliseconds")
	cmd.Flags().IntVar(&flags.padEnd, "pend", 0, "Silence after the last clip in milliseconds")
	cmd.Flags().StringVar(&flags.fadeCurve, "fade-curve", "", "Fade curve: linear, smoothstep, or decibel")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Parallel sample decoders (0 = one per CPU)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Report the plan without decoding or writing")
	cmd.Flags().BoolVar(&flags.skipChecks, "skip-checks", false, "Skip preflight checks")
	cmd.Flags().BoolVar(&flags.noProgress, "no-progress", false, "Disable the terminal progress bar")

	return cmd
}

func printComposeSummary(out io.Writer, cfg *config.Config, summary *pipeline.Summary, dryRun bool) {
	if len(cfg.Query.Filters) > 0 {
		fmt.Fprintf(out, "Found %d records after filtering.\n", summary.Matched)
	}
	if summary.Matched == 0 {
		fmt.Fprintln(out, "Nothing to compose.")
		return
	}
	plan := summary.Plan
	fmt.Fprintf(out, "Total time: %s\n", formatClock(plan.RequestedSpanMs))
	if plan.Trimmed() {
		fmt.Fprintf(out, "Duration is too long. Trimming to %d clips\n", plan.Count)
	}
	if plan.Empty() {
		fmt.Fprintln(out, "Duration budget is too short for a single clip.")
		return
	}
	if plan.Trimmed() {
		fmt.Fprintf(out, "New total time: %s\n", formatClock(plan.SpanMs))
	}
	fmt.Fprintf(out, "Clips: %d\n", plan.Count)
	if dryRun {
		fmt.Fprintf(out, "Dry run: would write %s\n", cfg.Paths.Output)
		return
	}
	if summary.Written {
		fmt.Fprintf(out, "Wrote to %s (%s)\n", summary.OutputPath, humanize.IBytes(uint64(max(summary.OutputBytes, 0))))
		if summary.ManifestPath != "" {
			fmt.Fprintf(out, "Wrote to %s\n", summary.ManifestPath)
		}
	}
}

// formatClock renders milliseconds as HH:MM:SS, truncating fractions.
func formatClock(ms int) string {
	d := time.Duration(max(ms, 0)) * time.Millisecond
	hours := int(d / time.Hour)
	minutes := int(d%time.Hour) / int(time.Minute)
	seconds := int(d%time.Minute) / int(time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

func splitFlagList(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return []string{value}
}

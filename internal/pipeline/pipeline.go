package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"montage/internal/audio"
	"montage/internal/config"
	"montage/internal/fileutil"
	"montage/internal/logging"
	"montage/internal/manifest"
	"montage/internal/query"
	"montage/internal/record"
	"montage/internal/recordstore"
	"montage/internal/services"
	"montage/internal/timeline"
)

// Stage names used in log context.
const (
	StageLoad   = "load"
	StageQuery  = "query"
	StageExport = "export"
)

// Options configures a single run.
type Options struct {
	Config *config.Config
	Logger *slog.Logger
	// Progress receives a report after each placed clip.
	Progress func(timeline.Progress)
	// DryRun stops after the budget check; nothing is decoded or written.
	DryRun bool
	// Source overrides the codec built from Config for sample decoding.
	Source timeline.Source
}

// Summary describes what a run did.
type Summary struct {
	RunID        string
	Loaded       int
	Matched      int
	Plan         timeline.Plan
	Written      bool
	OutputPath   string
	OutputBytes  int64
	ManifestPath string
	Elapsed      time.Duration
}

// Run executes the whole pipeline. Zero matching records is not an error: the
// summary reports nothing written.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "run", "no configuration", nil)
	}
	started := time.Now()
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	base := logging.NewComponentLogger(opts.Logger, "pipeline")
	summary := &Summary{RunID: runID}

	params, err := Params(cfg)
	if err != nil {
		return nil, err
	}
	q, err := Query(cfg)
	if err != nil {
		return nil, err
	}

	loadCtx := services.WithStage(ctx, StageLoad)
	records, err := recordstore.Load(loadCtx, cfg.Paths.Records)
	if err != nil {
		return nil, err
	}
	summary.Loaded = len(records)
	logging.WithContext(loadCtx, base).Info("loaded records",
		logging.Int("records", len(records)),
		logging.String("source", cfg.Paths.Records))

	queryCtx := services.WithStage(ctx, StageQuery)
	matched, err := selectRecords(records, q, cfg.Query.KeyField)
	if err != nil {
		return nil, err
	}
	summary.Matched = len(matched)
	logging.WithContext(queryCtx, base).Info(fmt.Sprintf("found %d records", len(matched)),
		logging.Int("filters", len(q.Filters)),
		logging.Int("sort_keys", len(q.Sorts)))

	plan, err := timeline.BuildPlan(matched, params)
	if err != nil {
		return nil, err
	}
	summary.Plan = plan
	budgetLog := logging.WithContext(services.WithStage(ctx, timeline.StageBudget), base)
	if plan.Trimmed() {
		budgetLog.Info(fmt.Sprintf("trimming to %d clips", plan.Count),
			logging.Int("requested", plan.Requested),
			logging.Int("requested_span_ms", plan.RequestedSpanMs),
			logging.Int("max_duration_ms", params.MaxDurationMs))
	}
	if plan.Empty() {
		budgetLog.Info("no records to compose; nothing written")
		summary.Elapsed = time.Since(started)
		return summary, nil
	}
	budgetLog.Info("timeline planned",
		logging.Int("clips", plan.Count),
		logging.Int("span_ms", plan.SpanMs),
		logging.Int("canvas_ms", plan.CanvasMs))
	if opts.DryRun {
		summary.Elapsed = time.Since(started)
		return summary, nil
	}

	lock, err := fileutil.AcquireLock(ctx, cfg.Paths.Output)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, StageExport, "lock output", cfg.Paths.Output, err)
	}
	defer func() {
		if relErr := lock.Release(); relErr != nil {
			logging.WarnWithContext(base, "failed to release output lock", "lock_release",
				logging.Error(relErr),
				logging.String(logging.FieldImpact, "stale lock file left beside the output"))
		}
	}()

	codec, err := NewCodec(cfg)
	if err != nil {
		return nil, err
	}
	source := opts.Source
	if source == nil {
		source = codec
	}
	compositor := timeline.New(source, opts.Logger)
	compositor.Progress = opts.Progress
	result, err := compositor.ComposePlan(ctx, plan, params)
	if err != nil {
		return nil, err
	}

	exportCtx := services.WithStage(ctx, StageExport)
	if err := export(exportCtx, codec, cfg, result); err != nil {
		return nil, err
	}
	summary.Written = true
	summary.OutputPath = cfg.Paths.Output
	summary.ManifestPath = cfg.Paths.Manifest
	if info, statErr := os.Stat(cfg.Paths.Output); statErr == nil {
		summary.OutputBytes = info.Size()
	}
	summary.Elapsed = time.Since(started)

	attrs := []logging.Attr{
		logging.String("output", cfg.Paths.Output),
		logging.String("size", humanize.IBytes(uint64(summary.OutputBytes))),
		logging.Int("clips", result.Manifest.Len()),
		logging.Duration("total_time", summary.Elapsed),
	}
	if cfg.Paths.Manifest != "" {
		attrs = append(attrs, logging.String("manifest", cfg.Paths.Manifest))
	}
	logging.WithContext(exportCtx, base).Info("montage written", logging.Args(attrs...)...)
	return summary, nil
}

// Select checks that every record carries keyField, then runs q. The query
// and stats commands use it to show exactly the records a compose would use.
func Select(records []record.Record, q query.Query, keyField string) ([]record.Record, error) {
	return selectRecords(records, q, keyField)
}

func selectRecords(records []record.Record, q query.Query, keyField string) ([]record.Record, error) {
	if keyField != "" {
		if err := query.RequireFields(records, keyField); err != nil {
			return nil, err
		}
	}
	return q.Run(records)
}

type exporter interface {
	Export(ctx context.Context, path string, buf *audio.Buffer) error
}

func export(ctx context.Context, codec exporter, cfg *config.Config, result *timeline.Result) error {
	var group fileutil.Group
	defer group.Discard()

	audioFile, err := group.Stage(cfg.Paths.Output)
	if err != nil {
		return services.Wrap(services.ErrValidation, StageExport, "stage output", cfg.Paths.Output, err)
	}
	if err := codec.Export(ctx, audioFile.TempPath(), result.Canvas); err != nil {
		return err
	}

	if cfg.Paths.Manifest != "" {
		manifestFile, err := group.Stage(cfg.Paths.Manifest)
		if err != nil {
			return services.Wrap(services.ErrValidation, StageExport, "stage manifest", cfg.Paths.Manifest, err)
		}
		if err := writeManifest(manifestFile.TempPath(), result.Manifest); err != nil {
			return services.Wrap(services.ErrValidation, StageExport, "write manifest", cfg.Paths.Manifest, err)
		}
	}

	if err := group.Commit(); err != nil {
		return services.Wrap(services.ErrValidation, StageExport, "commit outputs", "", err)
	}
	return nil
}

func writeManifest(path string, m *manifest.Manifest) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := m.Write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

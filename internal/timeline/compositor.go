package timeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"montage/internal/audio"
	"montage/internal/logging"
	"montage/internal/manifest"
	"montage/internal/record"
	"montage/internal/services"
)

// Stage names stamped into the logging context.
const (
	StageInit   = "init"
	StageBudget = "budget"
	StageCanvas = "canvas"
	StagePlace  = "place"
)

// Source decodes the sample for a key. Returned buffers are converted to the
// canvas format when they differ.
type Source interface {
	Load(ctx context.Context, key string) (*audio.Buffer, error)
}

// Progress is reported after each clip is placed.
type Progress struct {
	Placed  int
	Total   int
	Percent float64
	Key     string
}

// Result is the composed canvas and its manifest. Empty results carry neither.
type Result struct {
	Plan     Plan
	Canvas   *audio.Buffer
	Manifest *manifest.Manifest
	Elapsed  time.Duration
}

// Empty reports whether the run placed nothing.
func (r *Result) Empty() bool { return r == nil || r.Canvas == nil }

// Compositor places clips from Source onto a canvas.
type Compositor struct {
	Source   Source
	Logger   *slog.Logger
	Progress func(Progress)
}

// New returns a compositor reading samples from source.
func New(source Source, logger *slog.Logger) *Compositor {
	return &Compositor{Source: source, Logger: logging.NewComponentLogger(logger, "timeline")}
}

type prepared struct {
	clip     *audio.Buffer
	lengthMs int
}

// Compose runs the budget check and placement loop over records in their
// given order. Zero records, or a budget too small for a single clip, return
// an empty result without error.
func (c *Compositor) Compose(ctx context.Context, records []record.Record, p Params) (*Result, error) {
	plan, err := BuildPlan(records, p)
	if err != nil {
		return nil, err
	}
	if plan.Trimmed() {
		c.logger(services.WithStage(ctx, StageBudget)).Info("trimming to fit duration budget",
			logging.Int("requested", plan.Requested),
			logging.Int("clips", plan.Count),
			logging.Int("max_duration_ms", p.MaxDurationMs))
	}
	return c.ComposePlan(ctx, plan, p)
}

// ComposePlan places every item of an already budgeted plan.
func (c *Compositor) ComposePlan(ctx context.Context, plan Plan, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if c.Source == nil {
		return nil, services.Wrap(services.ErrConfiguration, StageInit, "compose", "no sample source", nil)
	}
	started := time.Now()
	if plan.Empty() {
		c.logger(services.WithStage(ctx, StageBudget)).Info("no records to place")
		return &Result{Plan: plan, Elapsed: time.Since(started)}, nil
	}

	canvasCtx := services.WithStage(ctx, StageCanvas)
	canvas := audio.NewSilent(p.Format, plan.CanvasMs)
	c.logger(canvasCtx).Debug("canvas allocated",
		logging.Int("duration_ms", plan.CanvasMs),
		logging.String("format", p.Format.String()),
		logging.Int("clips", len(plan.Items)))

	placeCtx := services.WithStage(ctx, StagePlace)
	m, err := c.place(placeCtx, canvas, plan.Items, p)
	if err != nil {
		return nil, err
	}
	return &Result{Plan: plan, Canvas: canvas, Manifest: m, Elapsed: time.Since(started)}, nil
}

// place decodes ahead on p.Workers goroutines while the calling goroutine
// overlays clips strictly in item order. At most 2*workers prepared clips are
// held at once.
func (c *Compositor) place(ctx context.Context, canvas *audio.Buffer, items []Item, p Params) (*manifest.Manifest, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := p.workers()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers + 1)

	slots := make(chan struct{}, 2*workers)
	ready := make([]chan prepared, len(items))
	for i := range ready {
		ready[i] = make(chan prepared, 1)
	}

	g.Go(func() error {
		for i, item := range items {
			select {
			case slots <- struct{}{}:
			case <-gctx.Done():
				return nil
			}
			g.Go(func() error {
				clip, err := c.prepare(gctx, item, p)
				if err != nil {
					return err
				}
				ready[i] <- clip
				return nil
			})
		}
		return nil
	})

	abort := func() error {
		cancel()
		if err := g.Wait(); err != nil {
			return err
		}
		return ctx.Err()
	}

	m := manifest.New()
	cursor := p.PadStartMs
	for i, item := range items {
		var clip prepared
		select {
		case clip = <-ready[i]:
		case <-gctx.Done():
			return nil, abort()
		}
		<-slots

		if err := canvas.Overlay(clip.clip, cursor); err != nil {
			_ = abort()
			return nil, services.Wrap(services.ErrDecode, StagePlace, "overlay", item.Key, err)
		}
		if err := m.Add(manifest.Placement{Key: item.Key, OffsetMs: cursor, DurationMs: clip.lengthMs}); err != nil {
			_ = abort()
			return nil, err
		}
		cursor += Advance(clip.lengthMs, p.EffectiveOverlapMs())
		c.report(i+1, len(items), item.Key)
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return m, nil
}

// Advance is how far the cursor moves after a clip of lengthMs. The overlap
// is capped at half the clip so consecutive clips never fully coincide.
func Advance(lengthMs, overlapMs int) int {
	return lengthMs - min(overlapMs, lengthMs/2)
}

func (c *Compositor) prepare(ctx context.Context, item Item, p Params) (prepared, error) {
	if err := ctx.Err(); err != nil {
		return prepared{}, err
	}
	ctx = services.WithRecordKey(ctx, item.Key)
	buf, err := c.Source.Load(ctx, item.Key)
	if err != nil {
		return prepared{}, err
	}
	if buf.Format != p.Format {
		buf, err = audio.Reformat(buf, p.Format)
		if err != nil {
			return prepared{}, services.Wrap(services.ErrDecode, StagePlace, "normalize", item.Key, err)
		}
	}

	clip := buf.Slice(p.ClipStartMs, p.ClipStartMs+p.ClipDurationMs)
	length := clip.DurationMs()
	if length == 0 {
		logging.WarnWithContext(c.logger(ctx), "sample shorter than clip start", "clip_empty",
			logging.Int("source_ms", buf.DurationMs()),
			logging.Int("clip_start_ms", p.ClipStartMs),
			logging.String(logging.FieldErrorHint, fmt.Sprintf("lower the clip start below %dms", buf.DurationMs())),
			logging.String(logging.FieldImpact, "clip placed with zero duration"))
		return prepared{clip: clip}, nil
	}
	clip.FadeIn(min(length, p.FadeInMs), p.Curve)
	clip.FadeOut(min(length, p.FadeOutMs), p.Curve)
	return prepared{clip: clip, lengthMs: length}, nil
}

func (c *Compositor) report(placed, total int, key string) {
	if c.Progress == nil {
		return
	}
	c.Progress(Progress{
		Placed:  placed,
		Total:   total,
		Percent: float64(placed) * 100 / float64(total),
		Key:     key,
	})
}

func (c *Compositor) logger(ctx context.Context) *slog.Logger {
	return logging.WithContext(ctx, c.Logger)
}

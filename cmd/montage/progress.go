package main

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"montage/internal/logging"
	"montage/internal/timeline"
)

// progressReporter draws a bar when w is a terminal and falls back to
// sampled log lines otherwise.
type progressReporter struct {
	mu      sync.Mutex
	w       io.Writer
	useBar  bool
	bar     *progressbar.ProgressBar
	sampler *logging.ProgressSampler
	logger  *slog.Logger
}

func newProgressReporter(w io.Writer, logger *slog.Logger, allowBar bool) *progressReporter {
	return &progressReporter{
		w:       w,
		useBar:  allowBar && isTerminal(w),
		sampler: logging.NewProgressSampler(10),
		logger:  logging.NewComponentLogger(logger, "progress"),
	}
}

// Report is safe to pass as a timeline progress callback.
func (p *progressReporter) Report(update timeline.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.useBar {
		if p.bar == nil {
			p.bar = progressbar.NewOptions(update.Total,
				progressbar.OptionSetWriter(p.w),
				progressbar.OptionSetDescription("placing clips"),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionThrottle(100*time.Millisecond),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = p.bar.Set(update.Placed)
		return
	}
	if p.sampler.ShouldLog(update.Percent, timeline.StagePlace, update.Key) {
		p.logger.Info("placing clips",
			logging.String(logging.FieldStage, timeline.StagePlace),
			logging.Int("placed", update.Placed),
			logging.Int("total", update.Total),
			logging.Float64("percent", update.Percent))
	}
}

func (p *progressReporter) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

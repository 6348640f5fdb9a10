package logging

import "strings"

// ProgressSampler thins per-clip placement updates down to one log line per
// completion bucket. When stderr is not a terminal the compose command routes
// every placed clip through it, so a montage of thousands of clips logs about
// a dozen lines.
type ProgressSampler struct {
	step    float64
	stage   string
	emitted int
}

// NewProgressSampler returns a sampler that logs each time completion enters
// a new bucket of step percent. Steps <= 0 fall back to 5%.
func NewProgressSampler(step float64) *ProgressSampler {
	if step <= 0 {
		step = 5
	}
	return &ProgressSampler{step: step, emitted: -1}
}

// ShouldLog reports whether the update for stage at percent completion gets a
// log line. Entering a new stage always does and restarts bucket counting. A
// negative percent means unknown progress. The clip key is not compared.
func (s *ProgressSampler) ShouldLog(percent float64, stage, key string) bool {
	if s == nil {
		return true
	}
	emit := false
	if stage = strings.TrimSpace(stage); stage != "" && stage != s.stage {
		s.stage = stage
		s.emitted = -1
		emit = true
	}
	if percent < 0 {
		return emit
	}
	if bucket := int(min(percent, 100) / s.step); bucket > s.emitted {
		s.emitted = bucket
		return true
	}
	return emit
}

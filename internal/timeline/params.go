package timeline

import (
	"fmt"

	"montage/internal/audio"
	"montage/internal/services"
)

// Params holds every timing and format setting for one composition. All
// durations are milliseconds.
type Params struct {
	MaxDurationMs  int
	ClipStartMs    int
	ClipDurationMs int
	FadeInMs       int
	FadeOutMs      int
	OverlapMs      int
	PadStartMs     int
	PadEndMs       int

	Format audio.Format
	Curve  audio.Curve

	// KeyField names the record field holding the sample identifier. Empty
	// uses the record's store key.
	KeyField string

	// Workers bounds concurrent decodes. Values below 1 mean one.
	Workers int
}

// Validate reports the first invalid setting as a configuration error.
func (p Params) Validate() error {
	if p.MaxDurationMs <= 0 {
		return invalid("max duration must be positive, got %dms", p.MaxDurationMs)
	}
	if p.ClipDurationMs <= 0 {
		return invalid("clip duration must be positive, got %dms", p.ClipDurationMs)
	}
	nonNegative := []struct {
		name  string
		value int
	}{
		{"overlap", p.OverlapMs},
		{"clip start", p.ClipStartMs},
		{"fade in", p.FadeInMs},
		{"fade out", p.FadeOutMs},
		{"start padding", p.PadStartMs},
		{"end padding", p.PadEndMs},
	}
	for _, field := range nonNegative {
		if field.value < 0 {
			return invalid("%s must be >= 0, got %dms", field.name, field.value)
		}
	}
	if err := p.Format.Validate(); err != nil {
		return services.Wrap(services.ErrConfiguration, StageInit, "validate params", "", err)
	}
	if _, err := audio.ParseCurve(string(p.Curve)); err != nil {
		return services.Wrap(services.ErrConfiguration, StageInit, "validate params", "", err)
	}
	return nil
}

// EffectiveOverlapMs is the overlap actually used between full-length clips:
// the requested overlap capped at half the clip duration. Larger requests are
// clamped rather than rejected.
func (p Params) EffectiveOverlapMs() int {
	return min(max(p.OverlapMs, 0), p.ClipDurationMs/2)
}

func (p Params) workers() int {
	return max(p.Workers, 1)
}

func invalid(format string, args ...any) error {
	return services.Wrap(services.ErrConfiguration, StageInit, "validate params", fmt.Sprintf(format, args...), nil)
}

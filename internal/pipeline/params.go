package pipeline

import (
	"strings"

	"montage/internal/audio"
	"montage/internal/config"
	"montage/internal/query"
	"montage/internal/services"
	"montage/internal/timeline"
)

// Params converts the timing and audio sections of cfg into compositor
// parameters. The maximum duration is given in seconds in cfg.
func Params(cfg *config.Config) (timeline.Params, error) {
	curve, err := audio.ParseCurve(cfg.Audio.FadeCurve)
	if err != nil {
		return timeline.Params{}, services.Wrap(services.ErrConfiguration, "config", "fade curve", "", err)
	}
	p := timeline.Params{
		MaxDurationMs:  cfg.Timing.MaxDurationSeconds * 1000,
		ClipStartMs:    cfg.Timing.ClipStartMs,
		ClipDurationMs: cfg.Timing.ClipDurationMs,
		FadeInMs:       cfg.Timing.FadeInMs,
		FadeOutMs:      cfg.Timing.FadeOutMs,
		OverlapMs:      cfg.Timing.OverlapMs,
		PadStartMs:     cfg.Timing.PadStartMs,
		PadEndMs:       cfg.Timing.PadEndMs,
		Format:         CanvasFormat(cfg),
		Curve:          curve,
		KeyField:       cfg.Query.KeyField,
		Workers:        cfg.Audio.DecodeWorkers,
	}
	return p, p.Validate()
}

// CanvasFormat is the output sample format configured in cfg.
func CanvasFormat(cfg *config.Config) audio.Format {
	return audio.Format{
		SampleRate: cfg.Audio.SampleRate,
		Channels:   cfg.Audio.Channels,
		BitDepth:   cfg.Audio.BitDepth,
	}
}

// Query parses the filter and sort lists of cfg.
func Query(cfg *config.Config) (query.Query, error) {
	return query.Parse(strings.Join(cfg.Query.Filters, ","), strings.Join(cfg.Query.Sort, ","))
}

// NewCodec builds the sample codec described by cfg.
func NewCodec(cfg *config.Config) (*audio.Codec, error) {
	return audio.NewCodec(cfg.Paths.AudioPattern, CanvasFormat(cfg), audio.FFmpeg{
		FFmpegBinary:  cfg.Audio.FFmpegBinary,
		FFprobeBinary: cfg.Audio.FFprobeBinary,
	})
}

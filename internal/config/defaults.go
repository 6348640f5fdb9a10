package config

const (
	defaultRecords        = "downloads/nsynth-test/examples.json"
	defaultAudioPattern   = "downloads/nsynth-test/audio/%s.wav"
	defaultOutput         = "output/examples.mp3"
	defaultManifest       = "output/examples.json"
	defaultKeyField       = "note_str"
	defaultMaxSeconds     = 6000
	defaultClipDurationMs = 250
	defaultFadeInMs       = 10
	defaultFadeOutMs      = 125
	defaultPadMs          = 200
	defaultSampleRate     = 44100
	defaultChannels       = 2
	defaultBitDepth       = 16
	defaultFadeCurve      = "linear"
	defaultFFmpegBinary   = "ffmpeg"
	defaultFFprobeBinary  = "ffprobe"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"

	envRecords      = "MONTAGE_RECORDS"
	envAudioPattern = "MONTAGE_AUDIO_PATTERN"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Records:      defaultRecords,
			AudioPattern: defaultAudioPattern,
			Output:       defaultOutput,
			Manifest:     defaultManifest,
		},
		Query: Query{
			KeyField: defaultKeyField,
		},
		Timing: Timing{
			MaxDurationSeconds: defaultMaxSeconds,
			ClipDurationMs:     defaultClipDurationMs,
			FadeInMs:           defaultFadeInMs,
			FadeOutMs:          defaultFadeOutMs,
			PadStartMs:         defaultPadMs,
			PadEndMs:           defaultPadMs,
		},
		Audio: Audio{
			SampleRate:    defaultSampleRate,
			Channels:      defaultChannels,
			BitDepth:      defaultBitDepth,
			FadeCurve:     defaultFadeCurve,
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"montage/internal/audio"
	"montage/internal/config"
)

// Note is a minimal NSynth-style record fixture.
type Note struct {
	Instrument string
	Family     string
	Pitch      int
	Velocity   int
	Qualities  []string
}

// Key is the NSynth note_str identifier, e.g. guitar_acoustic_010-060-050.
func (n Note) Key() string {
	return fmt.Sprintf("%s-%03d-%03d", n.Instrument, n.Pitch, n.Velocity)
}

func (n Note) fields() map[string]any {
	qualities := n.Qualities
	if qualities == nil {
		qualities = []string{}
	}
	return map[string]any{
		"note_str":              n.Key(),
		"instrument_str":        n.Instrument,
		"instrument_family_str": n.Family,
		"pitch":                 n.Pitch,
		"velocity":              n.Velocity,
		"qualities_str":         qualities,
	}
}

// WriteRecords writes notes to cfg.Paths.Records in the NSynth examples.json
// layout.
func WriteRecords(t testing.TB, cfg *config.Config, notes ...Note) {
	t.Helper()

	store := make(map[string]map[string]any, len(notes))
	for _, n := range notes {
		store[n.Key()] = n.fields()
	}
	payload, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		t.Fatalf("encode records: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Paths.Records), 0o755); err != nil {
		t.Fatalf("mkdir records dir: %v", err)
	}
	if err := os.WriteFile(cfg.Paths.Records, payload, 0o644); err != nil {
		t.Fatalf("write records: %v", err)
	}
}

// WriteSamples writes a constant tone of durationMs for every note, in the
// canvas format configured by cfg.
func WriteSamples(t testing.TB, cfg *config.Config, durationMs int, value int32, notes ...Note) {
	t.Helper()

	format := audio.Format{SampleRate: cfg.Audio.SampleRate, Channels: cfg.Audio.Channels, BitDepth: cfg.Audio.BitDepth}
	for _, n := range notes {
		path := strings.Replace(cfg.Paths.AudioPattern, "%s", n.Key(), 1)
		WriteWAV(t, path, Tone(format, durationMs, value))
	}
}

// Package manifest records where each sample landed on the composed timeline.
//
// The serialized form is a flat JSON object mapping record key to a two-element
// array of [offsetMs, durationMs], written in placement order.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"montage/internal/services"
)

// ErrDuplicateKey is returned when a key is placed twice.
var ErrDuplicateKey = errors.New("duplicate manifest key")

// Placement is one clip's position on the canvas.
type Placement struct {
	Key        string
	OffsetMs   int
	DurationMs int
}

// EndMs is the first millisecond after the clip.
func (p Placement) EndMs() int {
	return p.OffsetMs + p.DurationMs
}

// Manifest is an insertion-ordered set of placements keyed by record key.
type Manifest struct {
	entries []Placement
	index   map[string]int
}

// New returns an empty manifest.
func New() *Manifest {
	return &Manifest{index: make(map[string]int)}
}

// Add appends a placement. Keys must be unique.
func (m *Manifest) Add(p Placement) error {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if _, exists := m.index[p.Key]; exists {
		return services.Wrap(services.ErrConfiguration, "manifest", "add", p.Key, ErrDuplicateKey)
	}
	m.index[p.Key] = len(m.entries)
	m.entries = append(m.entries, p)
	return nil
}

// Entries returns placements in insertion order.
func (m *Manifest) Entries() []Placement {
	return slices.Clone(m.entries)
}

// Len returns the number of placements.
func (m *Manifest) Len() int {
	return len(m.entries)
}

// Lookup finds the placement for key.
func (m *Manifest) Lookup(key string) (Placement, bool) {
	i, ok := m.index[key]
	if !ok {
		return Placement{}, false
	}
	return m.entries[i], true
}

// EndMs returns the latest end offset of any placement.
func (m *Manifest) EndMs() int {
	end := 0
	for _, p := range m.entries {
		end = max(end, p.EndMs())
	}
	return end
}

// MarshalJSON writes {"key": [offsetMs, durationMs], ...} in insertion order.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range m.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":[%d,%d]", p.OffsetMs, p.DurationMs)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a manifest object, keeping document order.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}

// Write serializes the manifest followed by a newline.
func (m *Manifest) Write(w io.Writer) error {
	data, err := m.MarshalJSON()
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// Decode parses a manifest document. Object order becomes placement order.
func Decode(r io.Reader) (*Manifest, error) {
	dec := json.NewDecoder(r)
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	m := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("manifest key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("manifest key: unexpected token %v", tok)
		}
		var pair []int
		if err := dec.Decode(&pair); err != nil {
			return nil, fmt.Errorf("manifest entry %s: %w", key, err)
		}
		if len(pair) != 2 {
			return nil, fmt.Errorf("manifest entry %s: expected [offset, duration], got %d values", key, len(pair))
		}
		if err := m.Add(Placement{Key: key, OffsetMs: pair[0], DurationMs: pair[1]}); err != nil {
			return nil, err
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return m, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("manifest: expected %q, got %v", want, tok)
	}
	return nil
}

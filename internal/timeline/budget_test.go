package timeline_test

import (
	"fmt"
	"slices"
	"testing"

	"montage/internal/record"
	"montage/internal/services"
	"montage/internal/timeline"
)

func TestSpan(t *testing.T) {
	tests := []struct {
		count, clip, overlap, want int
	}{
		{0, 250, 50, 0},
		{1, 250, 50, 250},
		{4, 250, 50, 850},
		{10, 250, 50, 2050},
		{3, 250, 0, 750},
	}
	for _, tt := range tests {
		if got := timeline.Span(tt.count, tt.clip, tt.overlap); got != tt.want {
			t.Fatalf("Span(%d, %d, %d) = %d, want %d", tt.count, tt.clip, tt.overlap, got, tt.want)
		}
	}
}

func TestCheckBudget(t *testing.T) {
	p := params()
	p.MaxDurationMs = 1000
	p.PadStartMs = 200
	p.PadEndMs = 200

	tests := []struct {
		name      string
		count     int
		max       int
		wantCount int
		wantSpan  int
	}{
		{name: "truncates to four", count: 10, max: 1000, wantCount: 4, wantSpan: 850},
		{name: "fits untouched", count: 3, max: 1000, wantCount: 3, wantSpan: 650},
		{name: "exact fit", count: 4, max: 850, wantCount: 4, wantSpan: 850},
		{name: "too small for one clip", count: 5, max: 100, wantCount: 0, wantSpan: 0},
		{name: "no records", count: 0, max: 1000, wantCount: 0, wantSpan: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p.MaxDurationMs = tt.max
			b := timeline.CheckBudget(tt.count, p)
			if b.Count != tt.wantCount || b.SpanMs != tt.wantSpan {
				t.Fatalf("budget = %+v, want count %d span %d", b, tt.wantCount, tt.wantSpan)
			}
			if b.Trimmed() != (tt.wantCount < tt.count) {
				t.Fatalf("Trimmed() = %v", b.Trimmed())
			}
			wantCanvas := 0
			if tt.wantCount > 0 {
				wantCanvas = tt.wantSpan + 400
			}
			if b.CanvasMs != wantCanvas {
				t.Fatalf("CanvasMs = %d, want %d", b.CanvasMs, wantCanvas)
			}
		})
	}
}

func TestBuildPlanKeepsLeadingRecords(t *testing.T) {
	p := params()
	p.MaxDurationMs = 1000
	records := noteRecords(10)
	// Reverse so truncation must follow the given order, not key order.
	slices.Reverse(records)

	plan, err := timeline.BuildPlan(records, p)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	want := []string{"note-09", "note-08", "note-07", "note-06"}
	if !slices.Equal(plan.Keys(), want) {
		t.Fatalf("keys = %v, want %v", plan.Keys(), want)
	}
	if plan.SpanMs != 850 {
		t.Fatalf("span = %d, want 850", plan.SpanMs)
	}
}

func TestBuildPlanKeyField(t *testing.T) {
	p := params()
	p.KeyField = "note_str"
	records := []record.Record{
		{Key: "0", Fields: map[string]record.Value{"note_str": record.String("keyboard_001-060-100")}},
		{Key: "1", Fields: map[string]record.Value{"note_str": record.String("keyboard_001-061-100")}},
	}
	plan, err := timeline.BuildPlan(records, p)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if !slices.Equal(plan.Keys(), []string{"keyboard_001-060-100", "keyboard_001-061-100"}) {
		t.Fatalf("keys = %v", plan.Keys())
	}

	bad := []struct {
		name   string
		fields map[string]record.Value
	}{
		{name: "missing", fields: map[string]record.Value{"pitch": record.Number(60)}},
		{name: "list", fields: map[string]record.Value{"note_str": record.List("a")}},
		{name: "blank", fields: map[string]record.Value{"note_str": record.String("")}},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			_, err := timeline.BuildPlan([]record.Record{{Key: "x", Fields: tt.fields}}, p)
			if !services.IsConfiguration(err) {
				t.Fatalf("expected configuration error, got %v", err)
			}
		})
	}

	dup := []record.Record{
		{Key: "a", Fields: map[string]record.Value{"note_str": record.String("same")}},
		{Key: "b", Fields: map[string]record.Value{"note_str": record.String("same")}},
	}
	if _, err := timeline.BuildPlan(dup, p); !services.IsConfiguration(err) {
		t.Fatalf("expected duplicate sample key to fail, got %v", err)
	}
}

func TestCheckBudgetClampsOverlapToHalfClip(t *testing.T) {
	tests := []struct {
		name      string
		overlap   int
		max       int
		wantCount int
		wantSpan  int
		wantFull  int
	}{
		// effective overlap 125: 10*250 - 9*125
		{name: "overlap above half", overlap: 200, max: 60_000, wantCount: 10, wantSpan: 1375, wantFull: 1375},
		{name: "overlap equals clip", overlap: 250, max: 60_000, wantCount: 10, wantSpan: 1375, wantFull: 1375},
		{name: "overlap beyond clip", overlap: 900, max: 60_000, wantCount: 10, wantSpan: 1375, wantFull: 1375},
		// (1000 - 125) / (250 - 125) = 7
		{name: "trim uses clamped overlap", overlap: 200, max: 1000, wantCount: 7, wantSpan: 1000, wantFull: 1375},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := params()
			p.OverlapMs = tt.overlap
			p.MaxDurationMs = tt.max
			if err := p.Validate(); err != nil {
				t.Fatalf("overlap %d should be clamped, not rejected: %v", tt.overlap, err)
			}
			if got := p.EffectiveOverlapMs(); got != 125 {
				t.Fatalf("EffectiveOverlapMs() = %d, want 125", got)
			}
			b := timeline.CheckBudget(10, p)
			if b.Count != tt.wantCount || b.SpanMs != tt.wantSpan || b.RequestedSpanMs != tt.wantFull {
				t.Fatalf("budget = %+v, want count %d span %d requested span %d", b, tt.wantCount, tt.wantSpan, tt.wantFull)
			}
		})
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*timeline.Params)
	}{
		{name: "zero max", mutate: func(p *timeline.Params) { p.MaxDurationMs = 0 }},
		{name: "zero clip", mutate: func(p *timeline.Params) { p.ClipDurationMs = 0 }},
		{name: "negative overlap", mutate: func(p *timeline.Params) { p.OverlapMs = -1 }},
		{name: "negative clip start", mutate: func(p *timeline.Params) { p.ClipStartMs = -5 }},
		{name: "negative fade in", mutate: func(p *timeline.Params) { p.FadeInMs = -1 }},
		{name: "negative fade out", mutate: func(p *timeline.Params) { p.FadeOutMs = -1 }},
		{name: "negative pad start", mutate: func(p *timeline.Params) { p.PadStartMs = -1 }},
		{name: "negative pad end", mutate: func(p *timeline.Params) { p.PadEndMs = -1 }},
		{name: "bad bit depth", mutate: func(p *timeline.Params) { p.Format.BitDepth = 12 }},
		{name: "bad curve", mutate: func(p *timeline.Params) { p.Curve = "exponential" }},
	}
	if err := params().Validate(); err != nil {
		t.Fatalf("baseline params invalid: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := params()
			tt.mutate(&p)
			err := p.Validate()
			if !services.IsConfiguration(err) {
				t.Fatalf("expected configuration error, got %v", err)
			}
		})
	}
}

func noteRecords(n int) []record.Record {
	records := make([]record.Record, n)
	for i := range records {
		key := fmt.Sprintf("note-%02d", i)
		records[i] = record.Record{Key: key, Fields: map[string]record.Value{"pitch": record.Number(float64(40 + i))}}
	}
	return records
}

package timeline

import (
	"fmt"

	"montage/internal/record"
	"montage/internal/services"
)

// Span is the untrimmed timeline length for count clips of clipMs joined with
// overlapMs of crossfade. It excludes padding.
func Span(count, clipMs, overlapMs int) int {
	if count <= 0 {
		return 0
	}
	return count*clipMs - (count-1)*overlapMs
}

// Budget is the outcome of fitting a clip count into the maximum duration.
type Budget struct {
	Requested int
	// RequestedSpanMs is the span all requested clips would have needed.
	RequestedSpanMs int
	Count           int
	SpanMs          int
	CanvasMs        int
}

// Trimmed reports whether records were dropped from the tail.
func (b Budget) Trimmed() bool { return b.Count < b.Requested }

// CheckBudget fits count clips into p.MaxDurationMs using the effective
// overlap. When the span is too long the count becomes
// floor((max - overlap) / (clip - overlap)), clamped to [0, count].
func CheckBudget(count int, p Params) Budget {
	overlap := p.EffectiveOverlapMs()
	b := Budget{Requested: count, Count: count}
	b.RequestedSpanMs = Span(count, p.ClipDurationMs, overlap)
	if b.RequestedSpanMs > p.MaxDurationMs {
		target := (p.MaxDurationMs - overlap) / (p.ClipDurationMs - overlap)
		b.Count = min(max(target, 0), count)
	}
	b.SpanMs = Span(b.Count, p.ClipDurationMs, overlap)
	if b.Count > 0 {
		b.CanvasMs = b.SpanMs + p.PadStartMs + p.PadEndMs
	}
	return b
}

// Item is one record scheduled for placement.
type Item struct {
	Key    string
	Record record.Record
}

// Plan is the budgeted list of items, computed without touching audio.
type Plan struct {
	Budget
	Items []Item
}

// Empty reports whether nothing will be placed.
func (p Plan) Empty() bool { return len(p.Items) == 0 }

// Keys returns the sample keys in placement order.
func (p Plan) Keys() []string {
	keys := make([]string, len(p.Items))
	for i, item := range p.Items {
		keys[i] = item.Key
	}
	return keys
}

// BuildPlan validates params, resolves sample keys, and truncates records to
// the budget. Record order is preserved.
func BuildPlan(records []record.Record, p Params) (Plan, error) {
	if err := p.Validate(); err != nil {
		return Plan{}, err
	}
	budget := CheckBudget(len(records), p)
	items := make([]Item, 0, budget.Count)
	seen := make(map[string]string, budget.Count)
	for _, rec := range records[:budget.Count] {
		key, err := sampleKey(rec, p.KeyField)
		if err != nil {
			return Plan{}, err
		}
		if prev, dup := seen[key]; dup {
			return Plan{}, services.Wrap(services.ErrConfiguration, StageBudget, "resolve keys",
				fmt.Sprintf("records %s and %s share sample key %q", prev, rec.Key, key), nil)
		}
		seen[key] = rec.Key
		items = append(items, Item{Key: key, Record: rec})
	}
	return Plan{Budget: budget, Items: items}, nil
}

func sampleKey(rec record.Record, field string) (string, error) {
	if field == "" {
		return rec.Key, nil
	}
	v, ok := rec.Field(field)
	if !ok {
		return "", services.Wrap(services.ErrConfiguration, StageBudget, "resolve keys",
			fmt.Sprintf("record %s has no key field %q", rec.Key, field), nil)
	}
	if v.Kind() == record.KindList || v.Text() == "" {
		return "", services.Wrap(services.ErrConfiguration, StageBudget, "resolve keys",
			fmt.Sprintf("record %s key field %q is not a scalar identifier", rec.Key, field), nil)
	}
	return v.Text(), nil
}

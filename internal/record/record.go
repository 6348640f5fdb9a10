package record

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Record is one sample's metadata, identified by its store key.
type Record struct {
	Key    string
	Fields map[string]Value
}

// Field returns the named field value.
func (r Record) Field(name string) (Value, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// FieldNames returns the record's field names in sorted order.
func (r Record) FieldNames() []string {
	return slices.Sorted(maps.Keys(r.Fields))
}

// FromMap builds a record from a decoded field map.
func FromMap(key string, raw map[string]any) (Record, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Record{}, fmt.Errorf("record key is empty")
	}
	fields := make(map[string]Value, len(raw))
	for name, value := range raw {
		v, err := FromAny(value)
		if err != nil {
			return Record{}, fmt.Errorf("record %s field %s: %w", key, name, err)
		}
		fields[name] = v
	}
	return Record{Key: key, Fields: fields}, nil
}

// FromStore converts a key -> field map store into records in canonical order.
func FromStore(store map[string]map[string]any) ([]Record, error) {
	records := make([]Record, 0, len(store))
	for key, fields := range store {
		rec, err := FromMap(key, fields)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return Canonicalize(records), nil
}

// Canonicalize returns a copy of records sorted by key so that downstream
// filtering and sorting never depend on map iteration order.
func Canonicalize(records []Record) []Record {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b Record) int {
		return strings.Compare(a.Key, b.Key)
	})
	return out
}

// Keys returns the record keys in slice order.
func Keys(records []Record) []string {
	keys := make([]string, len(records))
	for i, rec := range records {
		keys[i] = rec.Key
	}
	return keys
}

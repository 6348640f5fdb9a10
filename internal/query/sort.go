package query

import (
	"slices"
	"strings"

	"montage/internal/record"
	"montage/internal/services"
)

// Direction is a sort order.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortKey orders records by one field.
type SortKey struct {
	Field     string
	Direction Direction
}

func (k SortKey) String() string {
	return k.Field + "=" + string(k.Direction)
}

// ParseSortKey parses "field=asc" or "field=desc". A bare field sorts ascending.
func ParseSortKey(spec string) (SortKey, error) {
	field, dir, found := strings.Cut(strings.TrimSpace(spec), "=")
	field = strings.TrimSpace(field)
	if field == "" {
		return SortKey{}, malformed(spec, "expected field=asc|desc")
	}
	key := SortKey{Field: field, Direction: Ascending}
	if !found {
		return key, nil
	}
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "", "asc", "ascending":
	case "desc", "descending":
		key.Direction = Descending
	default:
		return SortKey{}, malformed(spec, "direction must be asc or desc")
	}
	return key, nil
}

// ParseSortKeys parses a comma-separated list of sort keys.
func ParseSortKeys(spec string) ([]SortKey, error) {
	parts := splitList(spec)
	keys := make([]SortKey, 0, len(parts))
	for _, part := range parts {
		k, err := ParseSortKey(part)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// Sort returns a stably sorted copy of records. The first key is the most
// significant; later keys only break ties left by earlier ones.
func Sort(records []record.Record, keys []SortKey) ([]record.Record, error) {
	out := slices.Clone(records)
	if len(keys) == 0 {
		return out, nil
	}
	for _, k := range keys {
		for _, rec := range out {
			if _, ok := rec.Field(k.Field); !ok {
				return nil, services.Wrap(services.ErrConfiguration, "query", "sort", k.String(), unknownField(k.Field, rec.Key))
			}
		}
	}
	slices.SortStableFunc(out, func(a, b record.Record) int {
		for _, k := range keys {
			c := record.Compare(a.Fields[k.Field], b.Fields[k.Field])
			if k.Direction == Descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
	return out, nil
}

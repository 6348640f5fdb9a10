package query

import (
	"slices"

	"montage/internal/record"
	"montage/internal/services"
)

// Query is a filter list followed by a sort specification.
type Query struct {
	Filters []Predicate
	Sorts   []SortKey
}

// Parse builds a Query from comma-separated filter and sort text.
func Parse(filterSpec, sortSpec string) (Query, error) {
	filters, err := ParseFilters(filterSpec)
	if err != nil {
		return Query{}, services.Wrap(services.ErrConfiguration, "query", "parse filters", "", err)
	}
	sorts, err := ParseSortKeys(sortSpec)
	if err != nil {
		return Query{}, services.Wrap(services.ErrConfiguration, "query", "parse sort", "", err)
	}
	return Query{Filters: filters, Sorts: sorts}, nil
}

// Fields returns every field the query references, in first-use order.
func (q Query) Fields() []string {
	var fields []string
	add := func(name string) {
		if !slices.Contains(fields, name) {
			fields = append(fields, name)
		}
	}
	for _, p := range q.Filters {
		add(p.Field)
	}
	for _, k := range q.Sorts {
		add(k.Field)
	}
	return fields
}

// Validate checks that every referenced field exists on every record. It runs
// before filtering so a bad field fails even when an earlier predicate would
// have emptied the set.
func (q Query) Validate(records []record.Record) error {
	return RequireFields(records, q.Fields()...)
}

// RequireFields reports a configuration error for the first record missing any
// of the named fields.
func RequireFields(records []record.Record, fields ...string) error {
	for _, field := range fields {
		for _, rec := range records {
			if _, ok := rec.Field(field); !ok {
				return services.Wrap(services.ErrConfiguration, "query", "validate", "", unknownField(field, rec.Key))
			}
		}
	}
	return nil
}

// Run canonicalizes records by key, then filters, then sorts. An empty result
// is not an error.
func (q Query) Run(records []record.Record) ([]record.Record, error) {
	canonical := record.Canonicalize(records)
	if err := q.Validate(canonical); err != nil {
		return nil, err
	}
	filtered, err := Filter(canonical, q.Filters)
	if err != nil {
		return nil, err
	}
	return Sort(filtered, q.Sorts)
}

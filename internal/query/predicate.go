package query

import (
	"cmp"
	"errors"
	"fmt"
	"strings"

	"montage/internal/record"
	"montage/internal/services"
)

// Operator is a filter comparison.
type Operator string

const (
	OpEqual   Operator = "="
	OpLess    Operator = "<"
	OpGreater Operator = ">"
)

var (
	// ErrMalformedPredicate marks filter or sort text that cannot be parsed.
	ErrMalformedPredicate = errors.New("malformed predicate")
	// ErrUnknownField marks a predicate or sort key naming a field a record lacks.
	ErrUnknownField = errors.New("unknown field")
)

// Predicate is a single filter condition.
type Predicate struct {
	Field   string
	Op      Operator
	Operand string
}

// String renders the predicate in the same form ParsePredicate accepts.
func (p Predicate) String() string {
	if p.Op == OpEqual || p.Op == "" {
		return p.Field + "=" + p.Operand
	}
	return p.Field + "=" + string(p.Op) + p.Operand
}

// ParsePredicate parses "field=value" where value may carry a "<" or ">" prefix.
func ParsePredicate(spec string) (Predicate, error) {
	field, value, found := strings.Cut(strings.TrimSpace(spec), "=")
	field = strings.TrimSpace(field)
	if !found || field == "" {
		return Predicate{}, malformed(spec, "expected field=value")
	}
	value = strings.TrimSpace(value)
	p := Predicate{Field: field, Op: OpEqual, Operand: value}
	switch {
	case strings.HasPrefix(value, "<"):
		p.Op = OpLess
		p.Operand = strings.TrimSpace(value[1:])
	case strings.HasPrefix(value, ">"):
		p.Op = OpGreater
		p.Operand = strings.TrimSpace(value[1:])
	}
	if p.Op != OpEqual && p.Operand == "" {
		return Predicate{}, malformed(spec, "ordering comparison needs an operand")
	}
	return p, nil
}

// ParseFilters parses a comma-separated predicate list. Blank input yields no
// predicates.
func ParseFilters(spec string) ([]Predicate, error) {
	parts := splitList(spec)
	preds := make([]Predicate, 0, len(parts))
	for _, part := range parts {
		p, err := ParsePredicate(part)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return preds, nil
}

// Match reports whether rec satisfies p.
func Match(rec record.Record, p Predicate) (bool, error) {
	v, ok := rec.Field(p.Field)
	if !ok {
		return false, unknownField(p.Field, rec.Key)
	}
	if v.Kind() == record.KindList {
		if p.Op != OpEqual && p.Op != "" {
			return false, malformed(p.String(), "list fields only support membership")
		}
		return v.Contains(p.Operand), nil
	}

	c := compareOperand(v.Text(), p.Operand)
	switch p.Op {
	case OpLess:
		return c < 0, nil
	case OpGreater:
		return c > 0, nil
	default:
		return c == 0, nil
	}
}

// compareOperand compares a stored scalar against an operand. Both sides are
// compared numerically only when both parse as numbers.
func compareOperand(stored, operand string) int {
	left, leftOK := record.ParseNumber(stored)
	right, rightOK := record.ParseNumber(operand)
	if leftOK && rightOK {
		return cmp.Compare(left, right)
	}
	return strings.Compare(stored, operand)
}

// Filter applies predicates in order as a logical AND. Relative order is
// preserved and the input slice is never modified.
func Filter(records []record.Record, preds []Predicate) ([]record.Record, error) {
	out := records
	for _, p := range preds {
		kept := make([]record.Record, 0, len(out))
		for _, rec := range out {
			ok, err := Match(rec, p)
			if err != nil {
				return nil, services.Wrap(services.ErrConfiguration, "query", "filter", p.String(), err)
			}
			if ok {
				kept = append(kept, rec)
			}
		}
		out = kept
	}
	if len(preds) == 0 {
		out = append([]record.Record(nil), records...)
	}
	return out, nil
}

func splitList(spec string) []string {
	var parts []string
	for _, part := range strings.Split(spec, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

func malformed(spec, reason string) error {
	return fmt.Errorf("%w: %q: %s", ErrMalformedPredicate, strings.TrimSpace(spec), reason)
}

func unknownField(field, key string) error {
	return fmt.Errorf("%w: %q missing from record %s", ErrUnknownField, field, key)
}

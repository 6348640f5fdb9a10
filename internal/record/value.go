package record

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindNumber
	KindString
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	default:
		return "invalid"
	}
}

// ErrUnsupportedValue is returned when a decoded field cannot be represented as
// a string, number, or list of scalars.
var ErrUnsupportedValue = errors.New("unsupported field value")

// Value is a metadata field value: a string, a number, or a list of strings.
type Value struct {
	kind Kind
	text string
	num  float64
	list []string
}

// String builds a string value.
func String(s string) Value {
	return Value{kind: KindString, text: s}
}

// Number builds a numeric value using the shortest literal that round-trips.
func Number(f float64) Value {
	return Value{kind: KindNumber, text: strconv.FormatFloat(f, 'f', -1, 64), num: f}
}

// NumberLiteral builds a numeric value that keeps the literal text, e.g. "0.50".
func NumberLiteral(literal string) (Value, error) {
	f, ok := ParseNumber(literal)
	if !ok {
		return Value{}, fmt.Errorf("%w: %q is not a number", ErrUnsupportedValue, literal)
	}
	return Value{kind: KindNumber, text: strings.TrimSpace(literal), num: f}, nil
}

// List builds a list value. The items are copied.
func List(items ...string) Value {
	return Value{kind: KindList, list: slices.Clone(items)}
}

// ParseNumber reports whether s is a numeric literal and returns its value.
// NaN is rejected so numeric ordering stays total.
func ParseNumber(s string) (float64, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v holds one of the three variants.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// Text returns the scalar text of v: the string itself or the number literal.
// Lists render as their items joined by ", ".
func (v Value) Text() string {
	if v.kind == KindList {
		return strings.Join(v.list, ", ")
	}
	return v.text
}

// Float returns the numeric value when v is a number.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Items returns a copy of the list items, or nil for scalars.
func (v Value) Items() []string {
	if v.kind != KindList {
		return nil
	}
	return slices.Clone(v.list)
}

// Contains reports whether a list value holds item, comparing as strings.
func (v Value) Contains(item string) bool {
	if v.kind != KindList {
		return false
	}
	return slices.Contains(v.list, item)
}

// Equal reports whether two values hold the same variant and content.
func (v Value) Equal(other Value) bool {
	return Compare(v, other) == 0
}

// Compare orders two values natively: numbers numerically, strings by byte
// order, lists element-wise and then by length. Values of different kinds
// order number < string < list.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		return cmp.Compare(a.kind, b.kind)
	}
	switch a.kind {
	case KindNumber:
		return cmp.Compare(a.num, b.num)
	case KindString:
		return strings.Compare(a.text, b.text)
	case KindList:
		return slices.Compare(a.list, b.list)
	default:
		return 0
	}
}

// FromAny converts a decoded JSON or YAML value into a Value. Numbers may be
// json.Number, float64, or any Go integer type. List items must be scalars and
// are stored as their text.
func FromAny(raw any) (Value, error) {
	switch val := raw.(type) {
	case string:
		return String(val), nil
	case json.Number:
		return NumberLiteral(val.String())
	case float64:
		return Number(val), nil
	case float32:
		return Number(float64(val)), nil
	case int:
		return Value{kind: KindNumber, text: strconv.Itoa(val), num: float64(val)}, nil
	case int64:
		return Value{kind: KindNumber, text: strconv.FormatInt(val, 10), num: float64(val)}, nil
	case uint64:
		return Value{kind: KindNumber, text: strconv.FormatUint(val, 10), num: float64(val)}, nil
	case bool:
		return String(strconv.FormatBool(val)), nil
	case []string:
		return List(val...), nil
	case []any:
		items := make([]string, 0, len(val))
		for i, item := range val {
			scalar, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("list item %d: %w", i, err)
			}
			if scalar.kind == KindList {
				return Value{}, fmt.Errorf("%w: nested list at item %d", ErrUnsupportedValue, i)
			}
			items = append(items, scalar.text)
		}
		return Value{kind: KindList, list: items}, nil
	case nil:
		return Value{}, fmt.Errorf("%w: null", ErrUnsupportedValue)
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, raw)
	}
}

// MarshalJSON encodes numbers as bare literals, strings as JSON strings, and
// lists as arrays of strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return []byte(v.text), nil
	case KindString:
		return json.Marshal(v.text)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	default:
		return nil, fmt.Errorf("%w: invalid value", ErrUnsupportedValue)
	}
}

// UnmarshalJSON decodes a JSON scalar or array, preserving number literals.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

package record

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestFromAny(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		wantKind Kind
		wantText string
	}{
		{"string", "guitar", KindString, "guitar"},
		{"json number keeps literal", json.Number("0.50"), KindNumber, "0.50"},
		{"float", 69.0, KindNumber, "69"},
		{"int", 127, KindNumber, "127"},
		{"int64", int64(-3), KindNumber, "-3"},
		{"bool", true, KindString, "true"},
		{"list", []any{"bright", "percussive"}, KindList, "bright, percussive"},
		{"mixed list", []any{"a", json.Number("1")}, KindList, "a, 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := FromAny(tt.raw)
			if err != nil {
				t.Fatalf("FromAny(%v) returned error: %v", tt.raw, err)
			}
			if v.Kind() != tt.wantKind {
				t.Errorf("Kind = %s, want %s", v.Kind(), tt.wantKind)
			}
			if v.Text() != tt.wantText {
				t.Errorf("Text = %q, want %q", v.Text(), tt.wantText)
			}
		})
	}
}

func TestFromAnyRejectsUnsupported(t *testing.T) {
	for _, raw := range []any{nil, map[string]any{"a": 1}, []any{[]any{"nested"}}} {
		if _, err := FromAny(raw); !errors.Is(err, ErrUnsupportedValue) {
			t.Errorf("FromAny(%v) error = %v, want ErrUnsupportedValue", raw, err)
		}
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"10", 10, true},
		{" 9 ", 9, true},
		{"-2.5", -2.5, true},
		{"1e3", 1000, true},
		{"", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"10a", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("ParseNumber(%q) = %v,%v want %v,%v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"numbers numeric", Number(9), Number(10), -1},
		{"strings lexicographic", String("10"), String("9"), -1},
		{"equal strings", String("bass"), String("bass"), 0},
		{"lists elementwise", List("a", "b"), List("a", "c"), -1},
		{"list prefix shorter first", List("a"), List("a", "b"), -1},
		{"number before string", Number(100), String("1"), -1},
		{"string before list", String("z"), List("a"), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare = %d, want %d", got, tt.want)
			}
			if got := Compare(tt.b, tt.a); got != -tt.want {
				t.Errorf("reverse Compare = %d, want %d", got, -tt.want)
			}
		})
	}
}

func TestValueJSON(t *testing.T) {
	in := `{"pitch":60,"velocity":"0.50","qualities_str":["dark"],"scale":0.50}`
	var fields map[string]Value
	if err := json.Unmarshal([]byte(in), &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if fields["pitch"].Kind() != KindNumber {
		t.Fatalf("pitch kind = %s", fields["pitch"].Kind())
	}
	if fields["velocity"].Kind() != KindString {
		t.Fatalf("quoted number should stay a string, got %s", fields["velocity"].Kind())
	}
	if fields["scale"].Text() != "0.50" {
		t.Fatalf("number literal not preserved: %q", fields["scale"].Text())
	}
	if !fields["qualities_str"].Contains("dark") {
		t.Fatalf("expected list to contain dark")
	}

	out, err := json.Marshal(fields["scale"])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "0.50" {
		t.Fatalf("marshal = %s, want 0.50", out)
	}
	out, err = json.Marshal(List())
	if err != nil {
		t.Fatalf("marshal empty list: %v", err)
	}
	if string(out) != "[]" {
		t.Fatalf("empty list = %s, want []", out)
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	v := List("a", "b")
	items := v.Items()
	items[0] = "z"
	if v.Items()[0] != "a" {
		t.Fatal("Items must not expose internal storage")
	}
	if String("x").Items() != nil {
		t.Fatal("scalar Items should be nil")
	}
}

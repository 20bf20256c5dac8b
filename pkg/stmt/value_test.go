package stmt

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestOf(t *testing.T) {
	ts := time.Date(2024, 3, 7, 9, 5, 1, 0, time.UTC)

	tests := []struct {
		name    string
		in      any
		kind    Kind
		literal string
	}{
		{"nil", nil, KindNull, "NULL"},
		{"int", 42, KindNumber, "42"},
		{"negative int64", int64(-7), KindNumber, "-7"},
		{"uint8", uint8(3), KindNumber, "3"},
		{"float", 2.25, KindNumber, "2.25"},
		{"bool true", true, KindBool, "1"},
		{"bool false", false, KindBool, "0"},
		{"string", "foo", KindText, "'foo'"},
		{"bytes", []byte("bar"), KindText, "'bar'"},
		{"time", ts, KindText, "'2024-03-07 09:05:01'"},
		{"value passthrough", Int(5), KindNumber, "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Of(tt.in)
			if err != nil {
				t.Fatalf("Of(%v) failed: %v", tt.in, err)
			}
			if v.Kind() != tt.kind {
				t.Errorf("Expected kind %s, got %s", tt.kind, v.Kind())
			}
			if v.Literal() != tt.literal {
				t.Errorf("Expected literal %s, got %s", tt.literal, v.Literal())
			}
		})
	}
}

func TestOf_Unsupported(t *testing.T) {
	_, err := Of(struct{}{})
	if !errors.Is(err, ErrUnsupportedValue) {
		t.Errorf("Expected ErrUnsupportedValue, got %v", err)
	}
}

func TestOf_NonFiniteFloat(t *testing.T) {
	for _, in := range []any{math.NaN(), math.Inf(1), math.Inf(-1), float32(math.Inf(1))} {
		if _, err := Of(in); !errors.Is(err, ErrUnsupportedValue) {
			t.Errorf("Of(%v): expected ErrUnsupportedValue, got %v", in, err)
		}
	}

	if v, err := Of(math.MaxFloat64); err != nil || v.Kind() != KindNumber {
		t.Errorf("Expected MaxFloat64 accepted, got %v, %v", v, err)
	}
}

func TestValue_Int64(t *testing.T) {
	if i, ok := Text("12").Int64(); !ok || i != 12 {
		t.Errorf("Text(12).Int64() = %d, %v", i, ok)
	}
	if _, ok := Text("abc").Int64(); ok {
		t.Error("Text(abc).Int64() must fail")
	}
	if _, ok := Null().Int64(); ok {
		t.Error("Null().Int64() must fail")
	}
	if i, ok := Float(3).Int64(); !ok || i != 3 {
		t.Errorf("Float(3).Int64() = %d, %v", i, ok)
	}
}

func TestValue_Comparable(t *testing.T) {
	if Int(3) != MustOf(3) {
		t.Error("equal values must compare equal")
	}
	if Text("1") == Int(1) {
		t.Error("values with different kinds must differ")
	}
	var zero Value
	if !zero.IsNull() {
		t.Error("zero Value must be NULL")
	}
}

func TestFieldMap(t *testing.T) {
	m := NewFieldMap(F("a", 1), F("b", 2), F("c", 3))
	m.Delete("b")
	m.Set("d", Int(4))

	keys := m.Keys()
	want := []string{"a", "c", "d"}
	if len(keys) != len(want) {
		t.Fatalf("Expected %d keys, got %d", len(want), len(keys))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key %d: expected %s, got %s", i, want[i], keys[i])
		}
	}

	clone := m.Clone()
	clone.Set("a", Int(100))
	if v, _ := m.Get("a"); v != Int(1) {
		t.Error("Clone must not share storage")
	}

	var zero FieldMap
	zero.Set("x", Text("y"))
	if zero.Len() != 1 {
		t.Error("zero FieldMap must be usable")
	}

	m.Merge(NewFieldMap(F("a", 9), F("e", 5)))
	if got := m.String(); got != "{a: 9, c: 3, d: 4, e: 5}" {
		t.Errorf("unexpected merge result %s", got)
	}
}

package journal

import (
	"testing"
)

func TestEncodeValue_SortedKeys(t *testing.T) {
	got, err := EncodeValue(map[string]any{
		"zebra": "z",
		"apple": "a",
		"mango": "m",
	})
	if err != nil {
		t.Fatalf("EncodeValue() failed: %v", err)
	}
	want := `{"apple":"a","mango":"m","zebra":"z"}`
	if got != want {
		t.Errorf("EncodeValue() = %q, want %q", got, want)
	}
}

func TestEncodeValue_Scalars(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"string", "hello", `"hello"`},
		{"bool_true", true, "true"},
		{"bool_false", false, "false"},
		{"int", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"uint64", uint64(9), "9"},
		{"nested", map[string]any{"a": []any{1, "x"}}, `{"a":[1,"x"]}`},
		{"empty_object", map[string]any{}, `{}`},
		{"empty_array", []any{}, `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeValue(tt.value)
			if err != nil {
				t.Fatalf("EncodeValue(%v) failed: %v", tt.value, err)
			}
			if got != tt.want {
				t.Errorf("EncodeValue(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestEncodeValue_NoHTMLEscaping(t *testing.T) {
	got, err := EncodeValue("<a> & </a>")
	if err != nil {
		t.Fatalf("EncodeValue() failed: %v", err)
	}
	want := `"<a> & </a>"`
	if got != want {
		t.Errorf("EncodeValue() = %q, want %q", got, want)
	}
}

func TestEncodeValue_NFCNormalization(t *testing.T) {
	// "é" as combining sequence (e + U+0301) must normalize to the
	// precomposed form (U+00E9).
	decomposed := "é"
	precomposed := "é"

	got1, err := EncodeValue(decomposed)
	if err != nil {
		t.Fatalf("EncodeValue(decomposed) failed: %v", err)
	}
	got2, err := EncodeValue(precomposed)
	if err != nil {
		t.Fatalf("EncodeValue(precomposed) failed: %v", err)
	}
	if got1 != got2 {
		t.Errorf("NFC forms differ: %q vs %q", got1, got2)
	}
}

func TestEncodeValue_FloatsForbidden(t *testing.T) {
	if _, err := EncodeValue(3.14); err == nil {
		t.Error("EncodeValue(float) should fail")
	}
	if _, err := EncodeValue(map[string]any{"x": float64(1)}); err == nil {
		t.Error("EncodeValue(nested float) should fail")
	}
}

func TestEncodeValue_NullForbidden(t *testing.T) {
	if _, err := EncodeValue(nil); err == nil {
		t.Error("EncodeValue(nil) should fail")
	}
	if _, err := EncodeValue([]any{nil}); err == nil {
		t.Error("EncodeValue with nil element should fail")
	}
}

func TestEncodeValue_Deterministic(t *testing.T) {
	value := map[string]any{
		"phase":   "playing",
		"level":   3,
		"flags":   []any{"a", "b"},
		"nested":  map[string]any{"z": true, "a": false},
		"caption": "café",
	}

	first, err := EncodeValue(value)
	if err != nil {
		t.Fatalf("EncodeValue() failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		got, err := EncodeValue(value)
		if err != nil {
			t.Fatalf("EncodeValue() failed on iteration %d: %v", i, err)
		}
		if got != first {
			t.Fatalf("iteration %d produced %q, want %q", i, got, first)
		}
	}
}

package utils

import (
	"testing"
)

func TestToFloat64(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected float64
		ok       bool
	}{
		// Float types
		{"float64", float64(3.14), 3.14, true},
		{"float32", float32(2.5), 2.5, true},

		// Signed integers
		{"int", int(42), 42, true},
		{"int8", int8(8), 8, true},
		{"int16", int16(16), 16, true},
		{"int32", int32(32), 32, true},
		{"int64", int64(64), 64, true},

		// Unsigned integers
		{"uint", uint(100), 100, true},
		{"uint8", uint8(8), 8, true},
		{"uint16", uint16(16), 16, true},
		{"uint32", uint32(32), 32, true},
		{"uint64", uint64(64), 64, true},

		// Negative numbers
		{"negative int", int(-42), -42, true},
		{"negative float64", float64(-3.14), -3.14, true},

		// Zero values
		{"zero int", int(0), 0, true},
		{"zero float64", float64(0), 0, true},

		// Invalid types
		{"string", "hello", 0, false},
		{"bool true", true, 0, false},
		{"bool false", false, 0, false},
		{"nil", nil, 0, false},
		{"slice", []int{1, 2, 3}, 0, false},
		{"map", map[string]int{"a": 1}, 0, false},
		{"struct", struct{ X int }{X: 1}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := ToFloat64(tt.input)

			if ok != tt.ok {
				t.Errorf("ToFloat64(%v) ok = %v, want %v", tt.input, ok, tt.ok)
			}

			if result != tt.expected {
				t.Errorf("ToFloat64(%v) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestToObservation(t *testing.T) {
	obs, err := ToObservation([]interface{}{1, 2.0, int64(3), float32(4.5)})
	if err != nil {
		t.Fatalf("ToObservation failed: %v", err)
	}

	expected := []float64{1, 2, 3, 4.5}
	if len(obs) != len(expected) {
		t.Fatalf("Expected %d components, got %d", len(expected), len(obs))
	}
	for i := range expected {
		if obs[i] != expected[i] {
			t.Errorf("Component %d = %v, want %v", i, obs[i], expected[i])
		}
	}
}

func TestToObservation_RejectsNonNumeric(t *testing.T) {
	tests := []struct {
		name  string
		input []interface{}
	}{
		{"string component", []interface{}{1.0, "oops", 3.0}},
		{"nil component", []interface{}{1.0, nil}},
		{"bool component", []interface{}{true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ToObservation(tt.input); err == nil {
				t.Error("Expected an error for a non-numeric component")
			}
		})
	}
}

func TestToObservation_Empty(t *testing.T) {
	obs, err := ToObservation(nil)
	if err != nil {
		t.Fatalf("ToObservation failed: %v", err)
	}
	if len(obs) != 0 {
		t.Errorf("Expected an empty observation, got %v", obs)
	}
}

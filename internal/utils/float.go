// Package utils provides small numeric conversion helpers shared by the
// service layer.
package utils

import (
	"fmt"
)

// ToFloat64 converts various numeric types to float64.
// Returns the converted value and true if successful, or 0 and false if conversion fails.
// Supports: float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64
func ToFloat64(v interface{}) (float64, bool) {
	if v == nil {
		return 0, false
	}

	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}

// ToObservation converts a slice of arbitrary numeric values into a float64
// vector. Unlike a best-effort conversion, every component must be numeric:
// an observation with a missing or non-numeric component would silently
// change the stream's dimensionality, so it is rejected instead.
func ToObservation(values []interface{}) ([]float64, error) {
	obs := make([]float64, len(values))
	for i, v := range values {
		f, ok := ToFloat64(v)
		if !ok {
			return nil, fmt.Errorf("component %d is not numeric: %T", i, v)
		}
		obs[i] = f
	}
	return obs, nil
}

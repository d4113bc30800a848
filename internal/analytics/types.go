// Package analytics provides common types and utilities shared by the
// streaming analytics packages (projection, density, drift).
package analytics

import (
	"math"
)

// Observation represents a single multivariate observation from a stream.
// Every observation fed to a detector must have the same length.
type Observation []float64

// Clone returns a copy of the observation so callers may reuse their buffer.
func (o Observation) Clone() Observation {
	c := make(Observation, len(o))
	copy(c, o)
	return c
}

// Matrix is an ordered collection of equal-length observations (rows).
type Matrix [][]float64

// Column extracts column j from the matrix as a new slice.
func (m Matrix) Column(j int) []float64 {
	col := make([]float64, len(m))
	for i, row := range m {
		col[i] = row[j]
	}
	return col
}

// Clone returns a deep copy of the matrix.
func (m Matrix) Clone() Matrix {
	c := make(Matrix, len(m))
	for i, row := range m {
		r := make([]float64, len(row))
		copy(r, row)
		c[i] = r
	}
	return c
}

// Mean calculates the mean of all values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev calculates the sample standard deviation (n-1 divisor)
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

// MinMax returns the smallest and largest value in the slice.
func MinMax(values []float64) (min, max float64) {
	if len(values) == 0 {
		return 0, 0
	}
	min, max = values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

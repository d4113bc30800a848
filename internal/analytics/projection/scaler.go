package projection

import (
	"fmt"
	"math"
)

// Scaler standardizes observations to zero mean and unit variance, column by
// column. It is fit once on a reference window and then applied to every
// incoming observation until the next refit.
type Scaler struct {
	mean  []float64
	scale []float64
	dim   int
}

// NewScaler creates an unfitted Scaler.
func NewScaler() *Scaler {
	return &Scaler{}
}

// Fit computes per-column mean and standard deviation from the given rows.
// Columns with zero variance keep a scale of 1 so transforms stay finite.
func (s *Scaler) Fit(rows [][]float64) error {
	if len(rows) == 0 {
		return fmt.Errorf("scaler: cannot fit on empty data")
	}
	dim := len(rows[0])
	mean := make([]float64, dim)
	scale := make([]float64, dim)

	for j := 0; j < dim; j++ {
		var sum float64
		for _, row := range rows {
			sum += row[j]
		}
		mean[j] = sum / float64(len(rows))
	}

	for j := 0; j < dim; j++ {
		var sumSq float64
		for _, row := range rows {
			diff := row[j] - mean[j]
			sumSq += diff * diff
		}
		sd := math.Sqrt(sumSq / float64(len(rows)))
		if sd == 0 {
			sd = 1
		}
		scale[j] = sd
	}

	s.mean = mean
	s.scale = scale
	s.dim = dim
	return nil
}

// Fitted reports whether Fit has been called.
func (s *Scaler) Fitted() bool {
	return s.dim > 0
}

// TransformRow standardizes a single observation.
func (s *Scaler) TransformRow(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.mean[j]) / s.scale[j]
	}
	return out
}

// Transform standardizes every row, returning a new matrix.
func (s *Scaler) Transform(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = s.TransformRow(row)
	}
	return out
}

// InverseTransformRow maps a standardized observation back to raw units.
func (s *Scaler) InverseTransformRow(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = v*s.scale[j] + s.mean[j]
	}
	return out
}

// InverseTransform maps every standardized row back to raw units.
func (s *Scaler) InverseTransform(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = s.InverseTransformRow(row)
	}
	return out
}

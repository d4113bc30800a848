// Package projection provides the dimensionality-reduction layer used by the
// drift detectors: a principal-component basis fit on a reference window and
// an online standard scaler.
package projection

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PCA holds a principal-component basis derived from a reference window.
// The basis is immutable after Fit; both reference and test windows must be
// projected through the same fitted instance.
type PCA struct {
	mean       []float64
	components *mat.Dense // dim x numPCs, columns ordered by decreasing variance
	numPCs     int
	dim        int
}

// NewPCA creates an unfitted PCA.
func NewPCA() *PCA {
	return &PCA{}
}

// Fit computes the principal components of rows and keeps the minimal number
// of leading components whose cumulative explained variance reaches
// evThreshold (in (0, 1]).
func (p *PCA) Fit(rows [][]float64, evThreshold float64) error {
	if len(rows) < 2 {
		return fmt.Errorf("pca: need at least 2 rows, got %d", len(rows))
	}
	if evThreshold <= 0 || evThreshold > 1 {
		return fmt.Errorf("pca: explained-variance threshold must be in (0, 1], got %v", evThreshold)
	}

	n := len(rows)
	dim := len(rows[0])

	mean := make([]float64, dim)
	for j := 0; j < dim; j++ {
		var sum float64
		for _, row := range rows {
			sum += row[j]
		}
		mean[j] = sum / float64(n)
	}

	if totalVariance(rows, mean) == 0 {
		// Degenerate window: every observation is identical. Keep a single
		// arbitrary direction so projections stay well-defined (all zero).
		components := mat.NewDense(dim, 1, nil)
		components.Set(0, 0, 1)
		p.mean = mean
		p.components = components
		p.numPCs = 1
		p.dim = dim
		return nil
	}

	data := mat.NewDense(n, dim, nil)
	for i, row := range rows {
		data.SetRow(i, row)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		return fmt.Errorf("pca: decomposition failed")
	}

	var vectors mat.Dense
	pc.VectorsTo(&vectors)
	variances := pc.VarsTo(nil)

	var total float64
	for _, v := range variances {
		total += v
	}

	numPCs := len(variances)
	cumulative := 0.0
	for i, v := range variances {
		cumulative += v / total
		if cumulative >= evThreshold {
			numPCs = i + 1
			break
		}
	}

	components := mat.NewDense(dim, numPCs, nil)
	components.Copy(vectors.Slice(0, dim, 0, numPCs))

	p.mean = mean
	p.components = components
	p.numPCs = numPCs
	p.dim = dim
	return nil
}

func totalVariance(rows [][]float64, mean []float64) float64 {
	var total float64
	for _, row := range rows {
		for j, v := range row {
			d := v - mean[j]
			total += d * d
		}
	}
	return total
}

// Fitted reports whether Fit has been called.
func (p *PCA) Fitted() bool {
	return p.numPCs > 0
}

// NumComponents returns the number of principal components retained by Fit.
func (p *PCA) NumComponents() int {
	return p.numPCs
}

// Dim returns the input dimensionality the basis was fit on.
func (p *PCA) Dim() int {
	return p.dim
}

// TransformRow projects a single observation onto the fitted basis.
func (p *PCA) TransformRow(row []float64) []float64 {
	centered := make([]float64, p.dim)
	for j := range centered {
		centered[j] = row[j] - p.mean[j]
	}
	out := make([]float64, p.numPCs)
	for k := 0; k < p.numPCs; k++ {
		var dot float64
		for j := 0; j < p.dim; j++ {
			dot += centered[j] * p.components.At(j, k)
		}
		out[k] = dot
	}
	return out
}

// Transform projects every row onto the fitted basis.
func (p *PCA) Transform(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = p.TransformRow(row)
	}
	return out
}

// Package density provides the one-dimensional density estimators backing the
// divergence calculations: a kernel density estimator with Epanechnikov
// kernel and a probability-mass normalized histogram.
package density

import (
	"fmt"
	"math"

	"github.com/driftwatch/driftwatch/internal/analytics"
)

// EpsilonDensity is the floor applied to density estimates before they are
// log-transformed or fed into a divergence. Without it a point outside a
// kernel's support produces a zero density and the KL/log-likelihood scores
// blow up to Inf/NaN; with it a vanishing density saturates the divergence
// at a large finite value instead.
const EpsilonDensity = 1e-12

// KDE is a kernel density estimate of a 1-D sample using the Epanechnikov
// kernel and the Silverman bandwidth rule. The estimate is reusable: it can
// score arbitrary points against the sample it was built from.
type KDE struct {
	sample    []float64
	bandwidth float64
	self      []float64 // density evaluated at the original sample points
}

// NewKDE builds a kernel density estimate over sample. The bandwidth is
// 1.06 * stdev(sample) * n^(-1/5); a zero-variance sample degenerates the
// bandwidth to zero and is rejected.
func NewKDE(sample []float64) (*KDE, error) {
	if len(sample) < 2 {
		return nil, fmt.Errorf("kde: need at least 2 points, got %d", len(sample))
	}
	sd := analytics.StdDev(sample)
	if sd == 0 {
		return nil, fmt.Errorf("kde: sample has zero variance, bandwidth would degenerate")
	}
	bandwidth := 1.06 * sd * math.Pow(float64(len(sample)), -1.0/5.0)

	owned := make([]float64, len(sample))
	copy(owned, sample)

	k := &KDE{sample: owned, bandwidth: bandwidth}
	k.self = k.Score(owned)
	return k, nil
}

// epanechnikov evaluates the Epanechnikov kernel at u: 0.75*(1-u^2) inside
// [-1, 1], zero outside.
func epanechnikov(u float64) float64 {
	if math.Abs(u) > 1 {
		return 0
	}
	return 0.75 * (1 - u*u)
}

// Bandwidth returns the Silverman bandwidth used by the estimate.
func (k *KDE) Bandwidth() float64 {
	return k.bandwidth
}

// Density evaluates the estimated density at a single point.
func (k *KDE) Density(x float64) float64 {
	var sum float64
	for _, xj := range k.sample {
		sum += epanechnikov((x - xj) / k.bandwidth)
	}
	return sum / (float64(len(k.sample)) * k.bandwidth)
}

// Score evaluates the estimated density at each point.
func (k *KDE) Score(points []float64) []float64 {
	out := make([]float64, len(points))
	for i, x := range points {
		out[i] = k.Density(x)
	}
	return out
}

// LogScore evaluates the log-density at each point, flooring the density at
// EpsilonDensity so the result is always finite.
func (k *KDE) LogScore(points []float64) []float64 {
	out := make([]float64, len(points))
	for i, x := range points {
		d := k.Density(x)
		if d < EpsilonDensity {
			d = EpsilonDensity
		}
		out[i] = math.Log(d)
	}
	return out
}

// SelfDensity returns the density evaluated at the original sample points,
// computed once at construction.
func (k *KDE) SelfDensity() []float64 {
	return k.self
}

// Len returns the size of the underlying sample.
func (k *KDE) Len() int {
	return len(k.sample)
}

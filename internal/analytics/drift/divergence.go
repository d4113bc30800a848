package drift

import (
	"fmt"
	"math"

	"github.com/driftwatch/driftwatch/internal/analytics/density"
)

// componentDensity carries the per-component inputs a divergence may need:
// the raw projections of both windows and whichever density representations
// the configured backend produced.
type componentDensity struct {
	refProjection  []float64
	testProjection []float64
	refKDE         *density.KDE
	testKDE        *density.KDE
	refHist        *density.Histogram
	testHist       *density.Histogram
}

// divergence scores the distance between reference and test distributions of
// a single principal-component dimension. Implementations form a closed set
// selected once at construction.
type divergence interface {
	score(cd componentDensity) (float64, error)
}

// newDivergence returns the estimator for the given metric.
func newDivergence(metric Metric) (divergence, error) {
	switch metric {
	case MetricKL:
		return klDivergence{}, nil
	case MetricLLH:
		return llhDivergence{}, nil
	case MetricIntersection:
		return intersectionDivergence{}, nil
	default:
		return nil, fmt.Errorf("drift: unknown divergence metric %q", metric)
	}
}

// klDivergence is a modified Kullback-Leibler divergence: both kernel
// densities are evaluated over the concatenation of the two projections and
// the larger of the two KL directions is returned.
type klDivergence struct{}

func (klDivergence) score(cd componentDensity) (float64, error) {
	if cd.refKDE == nil || cd.testKDE == nil {
		return 0, fmt.Errorf("drift: kl divergence requires kernel densities for both windows")
	}

	points := make([]float64, 0, len(cd.refProjection)+len(cd.testProjection))
	points = append(points, cd.refProjection...)
	points = append(points, cd.testProjection...)

	refEstimates := cd.refKDE.Score(points)
	testEstimates := cd.testKDE.Score(points)

	forward := relativeEntropy(refEstimates, testEstimates)
	backward := relativeEntropy(testEstimates, refEstimates)
	return math.Max(forward, backward), nil
}

// relativeEntropy computes sum(p*log(p/q)) after flooring both estimates at
// EpsilonDensity and normalizing each to a probability distribution. The
// floor keeps vanishing densities from producing Inf or NaN; a point far
// outside one window's support saturates the divergence instead.
func relativeEntropy(p, q []float64) float64 {
	var pSum, qSum float64
	pf := make([]float64, len(p))
	qf := make([]float64, len(q))
	for i := range p {
		pf[i] = math.Max(p[i], density.EpsilonDensity)
		qf[i] = math.Max(q[i], density.EpsilonDensity)
		pSum += pf[i]
		qSum += qf[i]
	}

	var kl float64
	for i := range pf {
		pi := pf[i] / pSum
		qi := qf[i] / qSum
		kl += pi * math.Log(pi/qi)
	}
	return kl
}

// llhDivergence compares the normalized log-likelihood of the reference
// sample under its own kernel density against the normalized log-likelihood
// of the test sample scored under that same reference density. The reference
// total is normalized by the test sample length and vice versa; the
// asymmetry follows the published formulation.
type llhDivergence struct{}

func (llhDivergence) score(cd componentDensity) (float64, error) {
	if cd.refKDE == nil {
		return 0, fmt.Errorf("drift: llh divergence requires a reference kernel density")
	}

	var totalRef float64
	for _, d := range cd.refKDE.SelfDensity() {
		if d < density.EpsilonDensity {
			d = density.EpsilonDensity
		}
		totalRef += math.Log(d)
	}

	var totalTest float64
	for _, logd := range cd.refKDE.LogScore(cd.testProjection) {
		totalTest += logd
	}

	refLen := float64(cd.refKDE.Len())
	testLen := float64(len(cd.testProjection))
	return math.Abs(totalTest/refLen - totalRef/testLen), nil
}

// intersectionDivergence is one minus the histogram intersection over
// aligned bins: 0 for identical distributions, 1 for disjoint support.
type intersectionDivergence struct{}

func (intersectionDivergence) score(cd componentDensity) (float64, error) {
	if cd.refHist == nil || cd.testHist == nil {
		return 0, fmt.Errorf("drift: intersection divergence requires histograms for both windows")
	}
	refProbs := cd.refHist.Probabilities()
	testProbs := cd.testHist.Probabilities()
	if len(refProbs) != len(testProbs) {
		return 0, fmt.Errorf("drift: histogram bin counts differ: %d vs %d", len(refProbs), len(testProbs))
	}

	var intersection float64
	for i := range refProbs {
		intersection += math.Min(refProbs[i], testProbs[i])
	}
	return 1 - intersection, nil
}

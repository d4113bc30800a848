package density

import (
	"fmt"
)

// Histogram is a binned density estimate of a 1-D sample with externally
// supplied bin range. Probabilities are mass-normalized (they sum to 1, they
// are not divided by the bin width): the intersection divergence compares
// per-bin probability mass, not probability density.
type Histogram struct {
	edges []float64
	probs []float64
}

// NewHistogram bins sample into bins equal-width buckets spanning
// [lower, upper]. The range is supplied by the caller so that two samples
// being compared share it. Values outside the range are not counted; values
// equal to upper land in the last bin.
func NewHistogram(sample []float64, bins int, lower, upper float64) (*Histogram, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("histogram: bin count must be positive, got %d", bins)
	}
	if upper < lower {
		return nil, fmt.Errorf("histogram: invalid range [%v, %v]", lower, upper)
	}

	edges := make([]float64, bins+1)
	width := (upper - lower) / float64(bins)
	for i := 0; i <= bins; i++ {
		edges[i] = lower + float64(i)*width
	}
	edges[bins] = upper

	counts := make([]float64, bins)
	var total float64
	for _, v := range sample {
		if v < lower || v > upper {
			continue
		}
		var idx int
		if width > 0 {
			idx = int((v - lower) / width)
		}
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
		total++
	}

	probs := make([]float64, bins)
	if total > 0 {
		for i, c := range counts {
			probs[i] = c / total
		}
	}

	return &Histogram{edges: edges, probs: probs}, nil
}

// Edges returns the bin edges (length bins+1).
func (h *Histogram) Edges() []float64 {
	return h.edges
}

// Probabilities returns the per-bin probability mass (length bins, sums to 1
// for a non-empty in-range sample).
func (h *Histogram) Probabilities() []float64 {
	return h.probs
}

// Bins returns the number of bins.
func (h *Histogram) Bins() int {
	return len(h.probs)
}

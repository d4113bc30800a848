// Package drift provides streaming drift detection for multivariate data.
// Detectors consume one observation at a time and expose a drift state that
// callers read after each update.
package drift

import (
	"fmt"
)

// DriftState represents a detector's current drift status.
type DriftState string

const (
	DriftNone     DriftState = ""        // no drift
	DriftWarning  DriftState = "warning" // elevated divergence, not yet confirmed
	DriftDetected DriftState = "drift"   // drift confirmed
)

// Metric selects the divergence estimator used to compare the reference and
// test distributions.
type Metric string

const (
	// MetricKL is a modified (symmetrized) Kullback-Leibler divergence over
	// kernel density estimates with an Epanechnikov kernel.
	MetricKL Metric = "kl"
	// MetricLLH is the absolute difference in normalized log-likelihood of
	// the two windows under the reference kernel density.
	MetricLLH Metric = "llh"
	// MetricIntersection is one minus the histogram intersection of the two
	// windows. Discontinuous but cheap; use when efficiency matters.
	MetricIntersection Metric = "intersection"
)

// Config holds configuration for the PCA-CD detector. All fields are fixed at
// construction.
type Config struct {
	// WindowSize is the size of the reference and test windows. Required.
	WindowSize int

	// EVThreshold is the cumulative explained variance required when
	// selecting the number of principal components. In (0, 1].
	EVThreshold float64

	// Delta is the minimum change magnitude for the embedded Page-Hinkley
	// test.
	Delta float64

	// Metric is the divergence estimator to use.
	Metric Metric

	// SamplePeriod is the fraction of the window size between divergence
	// evaluations. Evaluation happens every min(100, round(SamplePeriod *
	// WindowSize)) observations. In (0, 1].
	SamplePeriod float64

	// OnlineScaling standardizes observations against the reference window
	// before PCA.
	OnlineScaling bool

	// TrackState retains a snapshot of the Page-Hinkley test whenever drift
	// is detected.
	TrackState bool
}

// DefaultConfig returns the default detector configuration for the given
// window size.
func DefaultConfig(windowSize int) Config {
	return Config{
		WindowSize:   windowSize,
		EVThreshold:  0.99,
		Delta:        0.1,
		Metric:       MetricKL,
		SamplePeriod: 0.05,
	}
}

// Validate checks the configuration, returning an error describing the first
// invalid field.
func (c Config) Validate() error {
	if c.WindowSize <= 0 {
		return fmt.Errorf("drift: window size must be positive, got %d", c.WindowSize)
	}
	if c.EVThreshold <= 0 || c.EVThreshold > 1 {
		return fmt.Errorf("drift: explained-variance threshold must be in (0, 1], got %v", c.EVThreshold)
	}
	if c.SamplePeriod <= 0 || c.SamplePeriod > 1 {
		return fmt.Errorf("drift: sample period must be in (0, 1], got %v", c.SamplePeriod)
	}
	switch c.Metric {
	case MetricKL, MetricLLH, MetricIntersection:
	default:
		return fmt.Errorf("drift: unknown divergence metric %q", c.Metric)
	}
	return nil
}

// StreamingDetector is the interface implemented by all streaming drift
// detectors.
type StreamingDetector interface {
	// Name returns the algorithm name.
	Name() string
	// Update feeds one observation to the detector.
	Update(obs []float64) error
	// State returns the drift status after the most recent update.
	State() DriftState
}

// DetectorFactory builds a detector from a configuration.
type DetectorFactory func(cfg Config) (StreamingDetector, error)

// Registry holds available drift detectors
var detectorRegistry = make(map[string]DetectorFactory)

// RegisterDetector adds a detector factory to the registry
func RegisterDetector(name string, factory DetectorFactory) {
	detectorRegistry[name] = factory
}

// NewDetector builds a registered detector by name
func NewDetector(name string, cfg Config) (StreamingDetector, error) {
	factory, ok := detectorRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown drift detector: %s", name)
	}
	return factory(cfg)
}

// ListDetectors returns list of available detector names
func ListDetectors() []string {
	names := make([]string, 0, len(detectorRegistry))
	for name := range detectorRegistry {
		names = append(names, name)
	}
	return names
}

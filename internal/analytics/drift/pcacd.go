package drift

import (
	"fmt"
	"math"

	"github.com/driftwatch/driftwatch/internal/analytics"
	"github.com/driftwatch/driftwatch/internal/analytics/density"
	"github.com/driftwatch/driftwatch/internal/analytics/projection"
)

// phase is the explicit state of the detector's two-phase lifecycle.
type phase int

const (
	// phaseFilling buffers observations into the reference window and then
	// the test window until both hold WindowSize rows.
	phaseFilling phase = iota
	// phaseMonitoring slides the test window and periodically evaluates the
	// divergence between the two windows.
	phaseMonitoring
)

// referenceDensity is one entry of the reference density map: the density
// representation of one principal component of the reference window, built
// once per epoch. Exactly one field is set, depending on the backend.
type referenceDensity struct {
	kde  *density.KDE
	hist *density.Histogram
}

// PCACD detects distributional drift in a multivariate stream by comparing a
// fixed reference window against a sliding test window on a shared
// principal-component basis (PCA-CD).
//
// Both windows are projected through a basis fit on the reference window.
// Every step observations the configured divergence is computed per component
// and the maximum is fed to an embedded Page-Hinkley test, which decides
// adaptively whether the divergence is large enough to declare drift. On
// drift the test window becomes the next reference window and the cycle
// restarts.
//
// PCACD is not safe for concurrent use: Update mutates all window,
// projection and density state in place and must be externally serialized.
// Use one instance per independent stream.
//
// Ref. Qahtan, A., Wang, S. A PCA-Based Change Detection Framework for
// Multidimensional Data Streams. KDD '15, 935-44.
// https://doi.org/10.1145/2783258.2783359
type PCACD struct {
	cfg         Config
	step        int     // observations between divergence evaluations
	phThreshold float64 // Page-Hinkley alarm threshold, scaled to the window
	bins        int     // histogram bin count, floor(sqrt(window size))

	phase      phase
	dim        int // established by the first observation
	samples    int // observations ever seen
	monitorIdx int // observations seen in the monitoring phase this epoch
	state      DriftState

	scaler *projection.Scaler
	pca    *projection.PCA
	numPCs int

	refWindow      analytics.Matrix
	testWindow     analytics.Matrix
	refProjection  analytics.Matrix
	testProjection analytics.Matrix
	refDensity     map[string]referenceDensity

	divergence   divergence
	driftMonitor *PageHinkley
	changeScores []float64
	tracker      []PageHinkleySnapshot
}

func init() {
	RegisterDetector("pca_cd", func(cfg Config) (StreamingDetector, error) {
		return NewPCACD(cfg)
	})
}

// NewPCACD creates a PCA-CD detector. Configuration errors are reported here,
// not at the first update.
func NewPCACD(cfg Config) (*PCACD, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	div, err := newDivergence(cfg.Metric)
	if err != nil {
		return nil, err
	}

	step := int(math.Round(cfg.SamplePeriod * float64(cfg.WindowSize)))
	if step > 100 {
		step = 100
	}
	if step < 1 {
		step = 1
	}
	phThreshold := math.Round(0.01 * float64(cfg.WindowSize))

	p := &PCACD{
		cfg:          cfg,
		step:         step,
		phThreshold:  phThreshold,
		bins:         int(math.Floor(math.Sqrt(float64(cfg.WindowSize)))),
		phase:        phaseFilling,
		divergence:   div,
		driftMonitor: NewPageHinkley(cfg.Delta, phThreshold, 0),
		changeScores: []float64{0},
	}
	if cfg.OnlineScaling {
		p.scaler = projection.NewScaler()
	}
	return p, nil
}

// Name returns the algorithm name.
func (p *PCACD) Name() string {
	return "pca_cd"
}

// Update feeds one observation to the detector. The observation's length must
// match the dimensionality established by the first observation; a mismatch
// is rejected without mutating any state. Read the drift status with State
// after each call.
func (p *PCACD) Update(obs []float64) error {
	if p.dim == 0 {
		if len(obs) == 0 {
			return fmt.Errorf("drift: empty observation")
		}
		p.dim = len(obs)
	} else if len(obs) != p.dim {
		return fmt.Errorf("drift: observation has %d dimensions, expected %d", len(obs), p.dim)
	}

	owned := analytics.Observation(obs).Clone()

	var err error
	switch p.phase {
	case phaseFilling:
		err = p.advanceFilling(owned)
	case phaseMonitoring:
		err = p.advanceMonitoring(owned)
	}
	if err != nil {
		return err
	}

	p.samples++
	return nil
}

// advanceFilling buffers the observation into whichever window is still
// short. A post-drift call instead swaps the test window into the reference
// window and consumes the observation without buffering it. Once the test
// window is full, the epoch is fit and monitoring begins.
func (p *PCACD) advanceFilling(obs []float64) error {
	switch {
	case p.state == DriftDetected:
		ref := p.testWindow
		if p.cfg.OnlineScaling {
			// The scaler will be refit on this window at the next epoch fit,
			// so undo the previous epoch's scaling first.
			ref = p.scaler.InverseTransform(ref)
		}
		p.refWindow = ref
		p.testWindow = nil
		p.monitorIdx = 0
		p.state = DriftNone
		p.driftMonitor.Reset()
	case len(p.refWindow) < p.cfg.WindowSize:
		p.refWindow = append(p.refWindow, obs)
	case len(p.testWindow) < p.cfg.WindowSize:
		p.testWindow = append(p.testWindow, obs)
	}

	if len(p.testWindow) == p.cfg.WindowSize {
		return p.fitEpoch()
	}
	return nil
}

// fitEpoch fits the scaler and the principal-component basis on the reference
// window, projects both windows, builds the reference density map, and
// transitions to monitoring.
func (p *PCACD) fitEpoch() error {
	if p.cfg.OnlineScaling {
		if err := p.scaler.Fit(p.refWindow); err != nil {
			return err
		}
		p.refWindow = p.scaler.Transform(p.refWindow)
		p.testWindow = p.scaler.Transform(p.testWindow)
	}

	p.pca = projection.NewPCA()
	if err := p.pca.Fit(p.refWindow, p.cfg.EVThreshold); err != nil {
		return fmt.Errorf("drift: fitting principal components: %w", err)
	}
	p.numPCs = p.pca.NumComponents()
	p.refProjection = p.pca.Transform(p.refWindow)
	p.testProjection = p.pca.Transform(p.testWindow)

	p.refDensity = make(map[string]referenceDensity, p.numPCs)
	for i := 0; i < p.numPCs; i++ {
		refCol := p.refProjection.Column(i)

		if p.cfg.Metric == MetricIntersection {
			lower, upper := p.combinedRange(i)
			hist, err := density.NewHistogram(refCol, p.bins, lower, upper)
			if err != nil {
				return fmt.Errorf("drift: building reference histogram for %s: %w", pcKey(i), err)
			}
			p.refDensity[pcKey(i)] = referenceDensity{hist: hist}
			continue
		}

		kde, err := density.NewKDE(refCol)
		if err != nil {
			return fmt.Errorf("drift: building reference density for %s: %w", pcKey(i), err)
		}
		p.refDensity[pcKey(i)] = referenceDensity{kde: kde}
	}

	p.phase = phaseMonitoring
	p.monitorIdx = 0
	return nil
}

// advanceMonitoring slides the test window and projection by one observation
// and, every step observations, evaluates the divergence. The first
// monitoring observation of an epoch (index 0) never triggers an evaluation.
func (p *PCACD) advanceMonitoring(obs []float64) error {
	if p.cfg.OnlineScaling {
		obs = p.scaler.TransformRow(obs)
	}

	p.testWindow = append(p.testWindow[1:], obs)
	p.testProjection = append(p.testProjection[1:], p.pca.TransformRow(obs))

	idx := p.monitorIdx
	p.monitorIdx++
	if idx == 0 || idx%p.step != 0 {
		return nil
	}
	return p.evaluate()
}

// evaluate rebuilds the test density map, computes the per-component
// divergence, and feeds the maximum into the Page-Hinkley test.
func (p *PCACD) evaluate() error {
	changeScore := math.Inf(-1)

	for i := 0; i < p.numPCs; i++ {
		cd := componentDensity{
			refProjection:  p.refProjection.Column(i),
			testProjection: p.testProjection.Column(i),
		}
		ref := p.refDensity[pcKey(i)]

		switch p.cfg.Metric {
		case MetricIntersection:
			// The test histogram is rebuilt over the combined range every
			// tick; the reference histogram keeps the edges from the epoch
			// fit.
			lower, upper := p.combinedRange(i)
			hist, err := density.NewHistogram(cd.testProjection, p.bins, lower, upper)
			if err != nil {
				return fmt.Errorf("drift: building test histogram for %s: %w", pcKey(i), err)
			}
			cd.refHist = ref.hist
			cd.testHist = hist
		case MetricKL:
			kde, err := density.NewKDE(cd.testProjection)
			if err != nil {
				return fmt.Errorf("drift: building test density for %s: %w", pcKey(i), err)
			}
			cd.refKDE = ref.kde
			cd.testKDE = kde
		case MetricLLH:
			// No test density needed: the test points are re-scored against
			// the reference kernel.
			cd.refKDE = ref.kde
		}

		score, err := p.divergence.score(cd)
		if err != nil {
			return err
		}
		if score > changeScore {
			changeScore = score
		}
	}

	p.changeScores = append(p.changeScores, changeScore)
	p.driftMonitor.Update(changeScore, p.samples)

	if p.driftMonitor.State() == DriftDetected {
		p.phase = phaseFilling
		p.state = DriftDetected
		if p.cfg.TrackState {
			p.tracker = append(p.tracker, p.driftMonitor.Snapshot())
		}
	}
	return nil
}

// combinedRange returns the min and max of component i across both
// projections, so histograms of the two windows share a bin range.
func (p *PCACD) combinedRange(i int) (lower, upper float64) {
	refMin, refMax := analytics.MinMax(p.refProjection.Column(i))
	testMin, testMax := analytics.MinMax(p.testProjection.Column(i))
	return math.Min(refMin, testMin), math.Max(refMax, testMax)
}

func pcKey(i int) string {
	return fmt.Sprintf("PC%d", i+1)
}

// State returns the drift status after the most recent update.
func (p *PCACD) State() DriftState {
	return p.state
}

// NumPCs returns the number of principal components in use for the current
// epoch, or 0 before the first epoch is fit.
func (p *PCACD) NumPCs() int {
	return p.numPCs
}

// Samples returns the number of observations the detector has ever seen.
func (p *PCACD) Samples() int {
	return p.samples
}

// Step returns the number of observations between divergence evaluations.
func (p *PCACD) Step() int {
	return p.step
}

// ChangeScores returns the history of change scores, one per evaluation tick,
// seeded with an initial 0.
func (p *PCACD) ChangeScores() []float64 {
	return p.changeScores
}

// Tracker returns the retained Page-Hinkley snapshots, one per detected
// drift. Empty unless TrackState is set.
func (p *PCACD) Tracker() []PageHinkleySnapshot {
	return p.tracker
}

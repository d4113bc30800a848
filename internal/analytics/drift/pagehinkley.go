package drift

// PageHinkley is a sequential change-point test over a scalar stream. It
// tracks the cumulative deviation of each value from the running mean; when
// the cumulative sum rises more than Threshold above its historical minimum,
// drift is declared.
//
// Ref. Page, E. S. Continuous Inspection Schemes. Biometrika 41, 1954.
type PageHinkley struct {
	delta     float64 // minimum change magnitude
	threshold float64 // alarm threshold
	burnIn    int     // updates to observe before alarms are allowed

	samples int
	mean    float64
	sum     float64
	minSum  float64
	maxSum  float64
	state   DriftState

	ids         []int
	values      []float64
	sums        []float64
	differences []float64
	drifts      []bool
}

// PageHinkleySnapshot is a copy of the test's accumulated trace, taken when
// drift fires and state tracking is enabled.
type PageHinkleySnapshot struct {
	IDs         []int     `json:"ids"`
	Values      []float64 `json:"values"`
	Sums        []float64 `json:"sums"`
	Differences []float64 `json:"differences"`
	Drifts      []bool    `json:"drifts"`
}

// NewPageHinkley creates a Page-Hinkley test. delta is the minimum change
// magnitude, threshold the alarm level, burnIn the number of updates to
// suppress alarms for (0 disables warm-up suppression).
func NewPageHinkley(delta, threshold float64, burnIn int) *PageHinkley {
	return &PageHinkley{
		delta:     delta,
		threshold: threshold,
		burnIn:    burnIn,
	}
}

// Update feeds one value into the test. id identifies the observation that
// produced the value and is retained in the trace.
func (ph *PageHinkley) Update(value float64, id int) {
	if ph.state == DriftDetected {
		ph.Reset()
	}

	ph.samples++
	ph.mean += (value - ph.mean) / float64(ph.samples)
	ph.sum += value - ph.mean - ph.delta
	if ph.sum < ph.minSum {
		ph.minSum = ph.sum
	}
	if ph.sum > ph.maxSum {
		ph.maxSum = ph.sum
	}

	difference := ph.sum - ph.minSum
	drift := ph.samples > ph.burnIn && difference > ph.threshold
	if drift {
		ph.state = DriftDetected
	}

	ph.ids = append(ph.ids, id)
	ph.values = append(ph.values, value)
	ph.sums = append(ph.sums, ph.sum)
	ph.differences = append(ph.differences, difference)
	ph.drifts = append(ph.drifts, drift)
}

// State returns the test's drift status after the most recent update.
func (ph *PageHinkley) State() DriftState {
	return ph.state
}

// Reset clears all cumulative statistics and the trace.
func (ph *PageHinkley) Reset() {
	ph.samples = 0
	ph.mean = 0
	ph.sum = 0
	ph.minSum = 0
	ph.maxSum = 0
	ph.state = DriftNone
	ph.ids = nil
	ph.values = nil
	ph.sums = nil
	ph.differences = nil
	ph.drifts = nil
}

// Snapshot copies the accumulated trace since the last reset.
func (ph *PageHinkley) Snapshot() PageHinkleySnapshot {
	snap := PageHinkleySnapshot{
		IDs:         make([]int, len(ph.ids)),
		Values:      make([]float64, len(ph.values)),
		Sums:        make([]float64, len(ph.sums)),
		Differences: make([]float64, len(ph.differences)),
		Drifts:      make([]bool, len(ph.drifts)),
	}
	copy(snap.IDs, ph.ids)
	copy(snap.Values, ph.values)
	copy(snap.Sums, ph.sums)
	copy(snap.Differences, ph.differences)
	copy(snap.Drifts, ph.drifts)
	return snap
}

package drift

import (
	"math"
	"math/rand"
	"testing"
)

// noisyStream produces dims-dimensional observations centered on mean with
// the given noise, deterministically from rng.
func noisyStream(n, dims int, mean, noise float64, rng *rand.Rand) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		obs := make([]float64, dims)
		for j := range obs {
			obs[j] = mean + rng.NormFloat64()*noise
		}
		out[i] = obs
	}
	return out
}

// constantStream produces n copies of the same observation.
func constantStream(n int, obs []float64) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		row := make([]float64, len(obs))
		copy(row, obs)
		out[i] = row
	}
	return out
}

func feed(t *testing.T, det *PCACD, stream [][]float64) {
	t.Helper()
	for i, obs := range stream {
		if err := det.Update(obs); err != nil {
			t.Fatalf("Update failed at observation %d: %v", i, err)
		}
	}
}

func TestNewPCACD_ConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default is valid", func(c *Config) {}, false},
		{"zero window size", func(c *Config) { c.WindowSize = 0 }, true},
		{"negative window size", func(c *Config) { c.WindowSize = -5 }, true},
		{"ev threshold zero", func(c *Config) { c.EVThreshold = 0 }, true},
		{"ev threshold above one", func(c *Config) { c.EVThreshold = 1.01 }, true},
		{"ev threshold exactly one", func(c *Config) { c.EVThreshold = 1 }, false},
		{"sample period zero", func(c *Config) { c.SamplePeriod = 0 }, true},
		{"sample period above one", func(c *Config) { c.SamplePeriod = 2 }, true},
		{"unknown metric", func(c *Config) { c.Metric = "banana" }, true},
		{"llh metric", func(c *Config) { c.Metric = MetricLLH }, false},
		{"intersection metric", func(c *Config) { c.Metric = MetricIntersection }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(100)
			tt.mutate(&cfg)
			_, err := NewPCACD(cfg)
			if tt.wantErr && err == nil {
				t.Error("Expected construction error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected construction error: %v", err)
			}
		})
	}
}

func TestPCACD_StepComputation(t *testing.T) {
	det, err := NewPCACD(DefaultConfig(1000))
	if err != nil {
		t.Fatalf("NewPCACD failed: %v", err)
	}
	// min(100, round(0.05 * 1000)) = 50
	if det.Step() != 50 {
		t.Errorf("Expected step 50, got %d", det.Step())
	}

	big, err := NewPCACD(DefaultConfig(10000))
	if err != nil {
		t.Fatalf("NewPCACD failed: %v", err)
	}
	// round(0.05 * 10000) = 500, capped at 100
	if big.Step() != 100 {
		t.Errorf("Expected step capped at 100, got %d", big.Step())
	}
}

func TestPCACD_ShapeErrorLeavesStateUntouched(t *testing.T) {
	det, err := NewPCACD(DefaultConfig(10))
	if err != nil {
		t.Fatalf("NewPCACD failed: %v", err)
	}

	if err := det.Update([]float64{1, 2, 3}); err != nil {
		t.Fatalf("First update failed: %v", err)
	}

	before := det.Samples()
	if err := det.Update([]float64{1, 2}); err == nil {
		t.Fatal("Expected dimensionality error")
	}
	if det.Samples() != before {
		t.Errorf("Sample counter advanced on a rejected observation: %d -> %d", before, det.Samples())
	}
	if len(det.refWindow) != 1 {
		t.Errorf("Reference window mutated on a rejected observation: %d rows", len(det.refWindow))
	}
}

func TestPCACD_EmptyObservation(t *testing.T) {
	det, _ := NewPCACD(DefaultConfig(10))
	if err := det.Update(nil); err == nil {
		t.Error("Expected error for empty observation")
	}
}

func TestPCACD_EpochFitAfterBothWindowsFill(t *testing.T) {
	const windowSize = 50
	cfg := DefaultConfig(windowSize)
	det, err := NewPCACD(cfg)
	if err != nil {
		t.Fatalf("NewPCACD failed: %v", err)
	}

	rng := rand.New(rand.NewSource(21))
	stream := noisyStream(2*windowSize, 3, 0, 1, rng)

	for i, obs := range stream {
		if err := det.Update(obs); err != nil {
			t.Fatalf("Update failed at observation %d: %v", i, err)
		}
		if i < 2*windowSize-1 && det.NumPCs() != 0 {
			t.Fatalf("Basis fit before both windows were full, at observation %d", i)
		}
	}

	if det.NumPCs() < 1 || det.NumPCs() > 3 {
		t.Errorf("Expected 1 <= NumPCs <= 3, got %d", det.NumPCs())
	}
	if det.phase != phaseMonitoring {
		t.Error("Expected detector to be monitoring after both windows filled")
	}
	if got := len(det.refWindow); got != windowSize {
		t.Errorf("Expected reference window of %d rows, got %d", windowSize, got)
	}
	if got := len(det.testProjection); got != windowSize {
		t.Errorf("Expected test projection of %d rows, got %d", windowSize, got)
	}
}

func TestPCACD_EvaluationCadence(t *testing.T) {
	const windowSize = 40
	cfg := DefaultConfig(windowSize)
	cfg.Metric = MetricIntersection
	cfg.SamplePeriod = 0.1 // step = 4
	det, err := NewPCACD(cfg)
	if err != nil {
		t.Fatalf("NewPCACD failed: %v", err)
	}
	if det.Step() != 4 {
		t.Fatalf("Expected step 4, got %d", det.Step())
	}

	rng := rand.New(rand.NewSource(22))
	feed(t, det, noisyStream(2*windowSize, 2, 0, 1, rng))

	// Change scores are seeded with one 0 entry; no evaluations yet.
	if got := len(det.ChangeScores()); got != 1 {
		t.Fatalf("Expected only the seed score after filling, got %d", got)
	}

	// The first monitoring observation (index 0) must not trigger a tick.
	feed(t, det, noisyStream(1, 2, 0, 1, rng))
	if got := len(det.ChangeScores()); got != 1 {
		t.Errorf("Evaluation fired on the first monitoring observation")
	}

	// Indices 1..9 contain ticks at 4 and 8.
	feed(t, det, noisyStream(9, 2, 0, 1, rng))
	if got := len(det.ChangeScores()); got != 3 {
		t.Errorf("Expected 2 evaluations after 10 monitoring observations, got %d", got-1)
	}
}

func TestPCACD_Deterministic(t *testing.T) {
	cfg := DefaultConfig(30)
	cfg.Metric = MetricIntersection

	rng := rand.New(rand.NewSource(23))
	stream := noisyStream(150, 2, 0, 1, rng)
	for i := 90; i < len(stream); i++ {
		for j := range stream[i] {
			stream[i][j] += 6
		}
	}

	run := func() ([]float64, []DriftState) {
		det, err := NewPCACD(cfg)
		if err != nil {
			t.Fatalf("NewPCACD failed: %v", err)
		}
		states := make([]DriftState, 0, len(stream))
		for i, obs := range stream {
			if err := det.Update(obs); err != nil {
				t.Fatalf("Update failed at observation %d: %v", i, err)
			}
			states = append(states, det.State())
		}
		return det.ChangeScores(), states
	}

	scores1, states1 := run()
	scores2, states2 := run()

	if len(scores1) != len(scores2) {
		t.Fatalf("Score history lengths differ: %d vs %d", len(scores1), len(scores2))
	}
	for i := range scores1 {
		if scores1[i] != scores2[i] {
			t.Errorf("Score %d differs: %v vs %v", i, scores1[i], scores2[i])
		}
	}
	for i := range states1 {
		if states1[i] != states2[i] {
			t.Errorf("State at observation %d differs: %q vs %q", i, states1[i], states2[i])
		}
	}
}

func TestPCACD_IntersectionScoresBounded(t *testing.T) {
	cfg := DefaultConfig(40)
	cfg.Metric = MetricIntersection
	det, err := NewPCACD(cfg)
	if err != nil {
		t.Fatalf("NewPCACD failed: %v", err)
	}

	rng := rand.New(rand.NewSource(24))
	feed(t, det, noisyStream(200, 3, 0, 1, rng))

	for i, score := range det.ChangeScores() {
		if score < 0 || score > 1 {
			t.Errorf("Score %d out of [0, 1]: %v", i, score)
		}
	}
}

func TestPCACD_KLScoresNonnegative(t *testing.T) {
	cfg := DefaultConfig(40)
	det, err := NewPCACD(cfg)
	if err != nil {
		t.Fatalf("NewPCACD failed: %v", err)
	}

	rng := rand.New(rand.NewSource(25))
	feed(t, det, noisyStream(200, 3, 0, 1, rng))

	if len(det.ChangeScores()) < 2 {
		t.Fatal("Expected at least one evaluation")
	}
	for i, score := range det.ChangeScores() {
		if score < 0 || math.IsNaN(score) || math.IsInf(score, 0) {
			t.Errorf("Score %d invalid: %v", i, score)
		}
	}
}

func TestPCACD_DriftAndWindowReplacement(t *testing.T) {
	const windowSize = 100
	cfg := DefaultConfig(windowSize)
	cfg.Metric = MetricIntersection
	cfg.TrackState = true
	det, err := NewPCACD(cfg)
	if err != nil {
		t.Fatalf("NewPCACD failed: %v", err)
	}

	// 200 observations from the base distribution: fills both windows with
	// no distribution shift, so no drift may fire.
	feed(t, det, constantStream(2*windowSize, []float64{0, 0, 0}))
	if det.State() != DriftNone {
		t.Fatal("Drift fired with no distribution change")
	}

	// Stream a visibly shifted distribution; drift must fire within the
	// next 100 observations.
	driftAt := -1
	shifted := constantStream(windowSize, []float64{10, 10, 10})
	for i, obs := range shifted {
		if err := det.Update(obs); err != nil {
			t.Fatalf("Update failed at shifted observation %d: %v", i, err)
		}
		if det.State() == DriftDetected {
			driftAt = i
			break
		}
	}
	if driftAt == -1 {
		t.Fatal("Expected drift before observation 300")
	}

	if len(det.Tracker()) != 1 {
		t.Errorf("Expected one tracked snapshot, got %d", len(det.Tracker()))
	}

	// The next update swaps the test window into the reference window.
	wantRef := det.testWindow.Clone()
	feed(t, det, constantStream(1, []float64{10, 10, 10}))
	if det.State() != DriftNone {
		t.Error("Expected drift state cleared by the post-drift update")
	}
	if len(det.refWindow) != windowSize {
		t.Fatalf("Expected replaced reference window of %d rows, got %d", windowSize, len(det.refWindow))
	}
	for i := range wantRef {
		for j := range wantRef[i] {
			if det.refWindow[i][j] != wantRef[i][j] {
				t.Fatalf("Reference window row %d differs from the pre-drift test window", i)
			}
		}
	}

	// The replaced reference window is dominated by shifted values.
	var sum float64
	var count int
	for _, row := range det.refWindow {
		for _, v := range row {
			sum += v
			count++
		}
	}
	if mean := sum / float64(count); mean < 5 {
		t.Errorf("Expected reference window to match the shifted distribution, mean %v", mean)
	}
}

func TestPCACD_OnlineScalingWindowReplacement(t *testing.T) {
	const windowSize = 60
	cfg := DefaultConfig(windowSize)
	cfg.Metric = MetricIntersection
	cfg.OnlineScaling = true
	det, err := NewPCACD(cfg)
	if err != nil {
		t.Fatalf("NewPCACD failed: %v", err)
	}

	feed(t, det, constantStream(2*windowSize, []float64{1, 2}))
	if det.State() != DriftNone {
		t.Fatal("Drift fired with no distribution change")
	}

	shifted := constantStream(windowSize, []float64{9, 10})
	for i, obs := range shifted {
		if err := det.Update(obs); err != nil {
			t.Fatalf("Update failed at shifted observation %d: %v", i, err)
		}
		if det.State() == DriftDetected {
			break
		}
	}
	if det.State() != DriftDetected {
		t.Fatal("Expected drift under online scaling")
	}

	// After the swap the reference window holds raw (unscaled) values, so
	// its shifted rows sit near 10, not near a z-score.
	feed(t, det, constantStream(1, []float64{9, 10}))
	var maxVal float64
	for _, row := range det.refWindow {
		for _, v := range row {
			if v > maxVal {
				maxVal = v
			}
		}
	}
	if maxVal < 5 {
		t.Errorf("Expected raw shifted values in the replaced reference window, max %v", maxVal)
	}
}

func TestPCACD_RegistryFactory(t *testing.T) {
	det, err := NewDetector("pca_cd", DefaultConfig(50))
	if err != nil {
		t.Fatalf("NewDetector failed: %v", err)
	}
	if det.Name() != "pca_cd" {
		t.Errorf("Expected name pca_cd, got %s", det.Name())
	}

	if _, err := NewDetector("nope", DefaultConfig(50)); err == nil {
		t.Error("Expected error for unregistered detector")
	}

	found := false
	for _, name := range ListDetectors() {
		if name == "pca_cd" {
			found = true
		}
	}
	if !found {
		t.Error("Expected pca_cd in the detector registry")
	}
}

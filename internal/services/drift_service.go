package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/driftwatch/driftwatch/internal/analytics/drift"
	"github.com/driftwatch/driftwatch/internal/logging"
	"github.com/driftwatch/driftwatch/internal/utils"
)

// DriftService manages drift detectors, one per independent stream. A
// detector's Update is not reentrant, so the service serializes observations
// per stream while letting unrelated streams proceed concurrently.
type DriftService struct {
	logger *logging.Logger

	mu      sync.RWMutex
	streams map[string]*streamState
}

// streamState holds one stream's detector and its accumulated drift events.
type streamState struct {
	mu       sync.Mutex
	detector *drift.PCACD
	events   []DriftEvent
}

// DriftEvent records a single detected drift on a stream.
type DriftEvent struct {
	ID          string    `json:"id"`
	StreamID    string    `json:"stream_id"`
	SampleIndex int       `json:"sample_index"`
	ChangeScore float64   `json:"change_score"`
	NumPCs      int       `json:"num_pcs"`
	DetectedAt  time.Time `json:"detected_at"`
}

// DriftReport is the per-observation result returned to callers.
type DriftReport struct {
	StreamID    string           `json:"stream_id"`
	SampleIndex int              `json:"sample_index"`
	State       drift.DriftState `json:"state"`
	NumPCs      int              `json:"num_pcs"`
	ChangeScore float64          `json:"change_score"`
}

// NewDriftService creates a new DriftService
func NewDriftService(logger *logging.Logger) *DriftService {
	return &DriftService{
		logger:  logger,
		streams: make(map[string]*streamState),
	}
}

// CreateStream registers a new stream with its own detector. Registering an
// existing stream ID is an error.
func (s *DriftService) CreateStream(streamID string, cfg drift.Config) error {
	if streamID == "" {
		return NewServiceError("INVALID_STREAM", "stream id must not be empty")
	}

	detector, err := drift.NewPCACD(cfg)
	if err != nil {
		return &ServiceError{
			Code:    "INVALID_CONFIG",
			Message: err.Error(),
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.streams[streamID]; exists {
		return NewServiceErrorWithDetails("INVALID_STREAM", "stream already exists",
			map[string]interface{}{"stream_id": streamID})
	}
	s.streams[streamID] = &streamState{detector: detector}

	s.logger.Info("Stream registered",
		"stream_id", streamID,
		"window_size", cfg.WindowSize,
		"divergence_metric", string(cfg.Metric))
	return nil
}

// RemoveStream drops a stream and its detector state.
func (s *DriftService) RemoveStream(streamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.streams[streamID]; !exists {
		return NewServiceError("UNKNOWN_STREAM", "stream not found: "+streamID)
	}
	delete(s.streams, streamID)
	return nil
}

// Observe feeds one observation to a stream's detector and reports its state.
// On drift a DriftEvent is recorded and logged.
func (s *DriftService) Observe(ctx context.Context, streamID string, values []interface{}) (*DriftReport, error) {
	stream, err := s.stream(streamID)
	if err != nil {
		return nil, err
	}

	obs, err := utils.ToObservation(values)
	if err != nil {
		return nil, &ServiceError{
			Code:    "INVALID_OBSERVATION",
			Message: err.Error(),
			Details: map[string]interface{}{"stream_id": streamID},
		}
	}

	stream.mu.Lock()
	defer stream.mu.Unlock()

	if err := stream.detector.Update(obs); err != nil {
		return nil, &ServiceError{
			Code:    "DETECTOR_FAILED",
			Message: err.Error(),
			Details: map[string]interface{}{"stream_id": streamID},
		}
	}

	scores := stream.detector.ChangeScores()
	report := &DriftReport{
		StreamID:    streamID,
		SampleIndex: stream.detector.Samples() - 1,
		State:       stream.detector.State(),
		NumPCs:      stream.detector.NumPCs(),
		ChangeScore: scores[len(scores)-1],
	}

	if report.State == drift.DriftDetected {
		event := DriftEvent{
			ID:          uuid.New().String(),
			StreamID:    streamID,
			SampleIndex: report.SampleIndex,
			ChangeScore: report.ChangeScore,
			NumPCs:      report.NumPCs,
			DetectedAt:  time.Now().UTC(),
		}
		stream.events = append(stream.events, event)

		s.logger.Info("Drift detected",
			"stream_id", streamID,
			"event_id", event.ID,
			"sample_index", event.SampleIndex,
			"change_score", event.ChangeScore,
			"num_pcs", event.NumPCs)
	}

	return report, nil
}

// Events returns a copy of the drift events recorded for a stream.
func (s *DriftService) Events(streamID string) ([]DriftEvent, error) {
	stream, err := s.stream(streamID)
	if err != nil {
		return nil, err
	}

	stream.mu.Lock()
	defer stream.mu.Unlock()
	events := make([]DriftEvent, len(stream.events))
	copy(events, stream.events)
	return events, nil
}

// ListStreams returns the registered stream IDs.
func (s *DriftService) ListStreams() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.streams))
	for id := range s.streams {
		ids = append(ids, id)
	}
	return ids
}

func (s *DriftService) stream(streamID string) (*streamState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stream, ok := s.streams[streamID]
	if !ok {
		return nil, NewServiceError("UNKNOWN_STREAM", "stream not found: "+streamID)
	}
	return stream, nil
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"gate_access/internal/domain"
	"gate_access/internal/vision"
)

// CameraEventService ingests recognition events posted by standalone ANPR
// cameras. Their plate text goes through the same normalization gate as
// frames from the local pipeline before reaching the pending slot.
type CameraEventService struct {
	state     *RecognitionState
	extractor *vision.PlateExtractor
}

func NewCameraEventService(state *RecognitionState, extractor *vision.PlateExtractor) *CameraEventService {
	return &CameraEventService{state: state, extractor: extractor}
}

// HandleCameraEvent parses one queue message body and publishes the plate
// when it passes the grammar. Text failing the grammar is dropped silently;
// a malformed body is an error so the caller can dead-letter it.
func (s *CameraEventService) HandleCameraEvent(ctx context.Context, body string) error {
	var event domain.CameraEvent
	if err := json.Unmarshal([]byte(body), &event); err != nil {
		return fmt.Errorf("unmarshaling camera event: %w", err)
	}
	if event.Plate == "" {
		return fmt.Errorf("camera event from %s has no plate", event.CameraID)
	}

	cleaned := vision.NormalizePlate(event.Plate)
	if !s.extractor.Accepts(cleaned) {
		log.Printf("CameraEventService: dropping plate %q from camera %s (grammar mismatch)", event.Plate, event.CameraID)
		return nil
	}

	// Events arriving while recognition is off must not sit in the slot and
	// surface as a fresh decision after a later re-enable.
	if !s.state.RecognitionEnabled() {
		log.Printf("CameraEventService: dropping plate %s from camera %s (recognition disabled)", cleaned, event.CameraID)
		return nil
	}

	s.state.Publish(cleaned)
	log.Printf("CameraEventService: published plate %s from camera %s", cleaned, event.CameraID)
	return nil
}

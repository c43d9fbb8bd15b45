package service

import (
	"context"
	"testing"

	"gate_access/internal/vision"
)

func newCameraEventService(t *testing.T) (*CameraEventService, *RecognitionState) {
	t.Helper()
	state := newTestState(&fakeDevice{})
	extractor, err := vision.NewPlateExtractor(&stubReader{}, `^[A-Z]{3}\d{4}$`)
	if err != nil {
		t.Fatalf("building extractor: %v", err)
	}
	return NewCameraEventService(state, extractor), state
}

func TestHandleCameraEventPublishesNormalizedPlate(t *testing.T) {
	svc, state := newCameraEventService(t)
	state.EnableRecognition()

	body := `{"camera_id":"gate-north","plate":"XYZ 9876","event_time":"2026-08-30T08:15:00Z"}`
	if err := svc.HandleCameraEvent(context.Background(), body); err != nil {
		t.Fatalf("handle: %v", err)
	}

	plate, ok := state.Consume()
	if !ok || plate != "XYZ9876" {
		t.Fatalf("expected published plate XYZ9876, got %q (ok=%v)", plate, ok)
	}
}

func TestHandleCameraEventDropsGrammarMismatch(t *testing.T) {
	svc, state := newCameraEventService(t)
	state.EnableRecognition()

	body := `{"camera_id":"gate-north","plate":"XY9876"}`
	if err := svc.HandleCameraEvent(context.Background(), body); err != nil {
		t.Fatalf("grammar mismatch should be dropped, not an error: %v", err)
	}
	if plate, ok := state.Consume(); ok {
		t.Fatalf("expected empty slot after dropped event, got %q", plate)
	}
}

func TestHandleCameraEventDroppedWhileRecognitionDisabled(t *testing.T) {
	svc, state := newCameraEventService(t)

	body := `{"camera_id":"gate-north","plate":"XYZ9876"}`
	if err := svc.HandleCameraEvent(context.Background(), body); err != nil {
		t.Fatalf("handle: %v", err)
	}

	// The event must not linger and decide a car that passed hours earlier.
	state.EnableRecognition()
	if plate, ok := state.Consume(); ok {
		t.Fatalf("plate %q received while recognition was disabled surfaced after re-enable", plate)
	}
}

func TestHandleCameraEventMalformedBody(t *testing.T) {
	svc, _ := newCameraEventService(t)

	if err := svc.HandleCameraEvent(context.Background(), `{not json`); err == nil {
		t.Fatal("expected error for malformed body")
	}
	if err := svc.HandleCameraEvent(context.Background(), `{"camera_id":"gate-north"}`); err == nil {
		t.Fatal("expected error for event without plate")
	}
}

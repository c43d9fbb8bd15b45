package service

import (
	"context"
	"sync"
	"testing"

	"gate_access/internal/camera"
)

// fakeDevice implements camera.Device without a real camera.
type fakeDevice struct {
	mu        sync.Mutex
	opened    bool
	closed    bool
	openErr   error
	frames    [][]byte
	openCalls int
}

func (d *fakeDevice) Open(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.openCalls++
	if d.openErr != nil {
		return d.openErr
	}
	d.opened = true
	d.closed = false
	return nil
}

func (d *fakeDevice) ReadFrame() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || !d.opened || len(d.frames) == 0 {
		return nil, camera.ErrDeviceClosed
	}
	frame := d.frames[0]
	d.frames = d.frames[1:]
	return frame, nil
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.opened = false
	return nil
}

func newTestState(dev *fakeDevice) *RecognitionState {
	return NewRecognitionState(func() camera.Device { return dev })
}

func TestConsumeRequiresRecognitionEnabled(t *testing.T) {
	state := newTestState(&fakeDevice{})

	state.Publish("ABC1234")
	if _, ok := state.Consume(); ok {
		t.Fatal("expected no consume while recognition is disabled")
	}

	state.EnableRecognition()
	plate, ok := state.Consume()
	if !ok || plate != "ABC1234" {
		t.Fatalf("expected ABC1234, got %q (ok=%v)", plate, ok)
	}
}

func TestConsumeClearsSlot(t *testing.T) {
	state := newTestState(&fakeDevice{})
	state.EnableRecognition()

	state.Publish("ABC1234")
	if _, ok := state.Consume(); !ok {
		t.Fatal("expected first consume to succeed")
	}
	if plate, ok := state.Consume(); ok {
		t.Fatalf("expected second consume to be empty, got %q", plate)
	}
}

func TestPublishLastWriterWins(t *testing.T) {
	state := newTestState(&fakeDevice{})
	state.EnableRecognition()

	state.Publish("AAA1111")
	state.Publish("BBB2222")

	plate, ok := state.Consume()
	if !ok || plate != "BBB2222" {
		t.Fatalf("expected BBB2222, got %q (ok=%v)", plate, ok)
	}
	if _, ok := state.Consume(); ok {
		t.Fatal("expected slot to hold only one plate")
	}
}

func TestEnableCaptureIdempotent(t *testing.T) {
	dev := &fakeDevice{}
	state := newTestState(dev)

	if err := state.EnableCapture(context.Background()); err != nil {
		t.Fatalf("enable capture: %v", err)
	}
	if err := state.EnableCapture(context.Background()); err != nil {
		t.Fatalf("second enable capture: %v", err)
	}
	if dev.openCalls != 1 {
		t.Fatalf("expected 1 device open, got %d", dev.openCalls)
	}
	if !state.CaptureEnabled() {
		t.Fatal("expected capture enabled")
	}
}

func TestEnableCaptureOpenFailure(t *testing.T) {
	dev := &fakeDevice{openErr: camera.ErrDeviceClosed}
	state := newTestState(dev)

	if err := state.EnableCapture(context.Background()); err == nil {
		t.Fatal("expected open error")
	}
	if state.CaptureEnabled() {
		t.Fatal("capture must stay disabled when the device fails to open")
	}
}

func TestDisableCaptureReleasesDevice(t *testing.T) {
	dev := &fakeDevice{}
	state := newTestState(dev)

	if err := state.EnableCapture(context.Background()); err != nil {
		t.Fatalf("enable capture: %v", err)
	}
	state.DisableCapture()

	if !dev.closed {
		t.Fatal("expected device to be closed")
	}
	if state.CaptureEnabled() {
		t.Fatal("expected capture disabled")
	}
	if state.ActiveDevice() != nil {
		t.Fatal("expected no active device after disable")
	}

	// Safe to call again when already disabled.
	state.DisableCapture()
}

func TestRecognitionToggleIndependentOfCapture(t *testing.T) {
	state := newTestState(&fakeDevice{})

	state.EnableRecognition()
	if state.CaptureEnabled() {
		t.Fatal("recognition toggle must not touch capture")
	}
	if !state.RecognitionEnabled() {
		t.Fatal("expected recognition enabled")
	}

	state.DisableRecognition()
	if state.RecognitionEnabled() {
		t.Fatal("expected recognition disabled")
	}
}

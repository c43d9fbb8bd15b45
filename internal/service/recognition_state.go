package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"gate_access/internal/camera"
)

// RecognitionState owns every piece of mutable shared state in the
// recognition core: the two activation flags, the single-slot pending-plate
// buffer and the capture device handle. All access goes through its
// methods; the mutex makes Consume an indivisible check-and-clear so a
// plate is never dropped or delivered twice.
type RecognitionState struct {
	newDevice func() camera.Device

	mu                 sync.Mutex
	captureEnabled     bool
	recognitionEnabled bool
	pendingPlate       string
	device             camera.Device
}

func NewRecognitionState(newDevice func() camera.Device) *RecognitionState {
	return &RecognitionState{newDevice: newDevice}
}

// EnableCapture opens the capture device if it is not already open.
// Idempotent; on open failure the flag stays down.
func (s *RecognitionState) EnableCapture(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.captureEnabled && s.device != nil {
		return nil
	}

	if s.device == nil {
		dev := s.newDevice()
		if err := dev.Open(ctx); err != nil {
			return fmt.Errorf("opening capture device: %w", err)
		}
		s.device = dev
	}
	s.captureEnabled = true
	log.Println("RecognitionState: capture enabled")
	return nil
}

// DisableCapture releases the capture device. Safe to call when already
// disabled. The frame loop observes the closed device as end of stream.
func (s *RecognitionState) DisableCapture() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.captureEnabled = false
	if s.device != nil {
		if err := s.device.Close(); err != nil {
			log.Printf("RecognitionState: error closing capture device: %v", err)
		}
		s.device = nil
	}
	log.Println("RecognitionState: capture disabled")
}

func (s *RecognitionState) EnableRecognition() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recognitionEnabled = true
	log.Println("RecognitionState: plate recognition enabled")
}

func (s *RecognitionState) DisableRecognition() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recognitionEnabled = false
	log.Println("RecognitionState: plate recognition disabled")
}

func (s *RecognitionState) CaptureEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.captureEnabled
}

func (s *RecognitionState) RecognitionEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recognitionEnabled
}

// ActiveDevice returns the device handle while capture is enabled, or nil.
// The caller reads frames outside the lock; a concurrent DisableCapture
// closes the device and the read reports ErrDeviceClosed.
func (s *RecognitionState) ActiveDevice() camera.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.captureEnabled {
		return nil
	}
	return s.device
}

// Publish overwrites the pending slot unconditionally. Last writer wins;
// there is no queue, a plate recognized while another is pending replaces
// it.
func (s *RecognitionState) Publish(plate string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingPlate = plate
}

// Consume atomically reads and clears the pending slot. It reports nothing
// when recognition is disabled or no plate is pending.
func (s *RecognitionState) Consume() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.recognitionEnabled || s.pendingPlate == "" {
		return "", false
	}
	plate := s.pendingPlate
	s.pendingPlate = ""
	return plate, true
}

package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"gate_access/internal/vision"
)

type stubClassifier struct {
	regions []image.Rectangle
	err     error
	calls   int
}

func (s *stubClassifier) DetectMultiScale(ctx context.Context, gray *image.Gray, scaleFactor float64, minNeighbors int) ([]image.Rectangle, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.regions, nil
}

type stubReader struct {
	texts []string
	err   error
}

func (s *stubReader) ReadText(ctx context.Context, imageJPEG []byte) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.texts, nil
}

func testFrameJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 120, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 120; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encoding test frame: %v", err)
	}
	return buf.Bytes()
}

func newTestPipeline(t *testing.T, dev *fakeDevice, classifier *stubClassifier, reader *stubReader) (*FramePipeline, *RecognitionState) {
	t.Helper()
	state := newTestState(dev)
	detector := vision.NewPlateDetector(classifier, vision.DetectorConfig{})
	extractor, err := vision.NewPlateExtractor(reader, `^[A-Z]{3}\d{4}$`)
	if err != nil {
		t.Fatalf("building extractor: %v", err)
	}
	return NewFramePipeline(state, detector, extractor), state
}

func TestStreamEmitsFramesAndStopsOnReadFailure(t *testing.T) {
	frame := testFrameJPEG(t)
	dev := &fakeDevice{frames: [][]byte{frame, frame, frame}}
	pipeline, state := newTestPipeline(t, dev, &stubClassifier{}, &stubReader{})

	if err := state.EnableCapture(context.Background()); err != nil {
		t.Fatalf("enable capture: %v", err)
	}

	emitted := 0
	err := pipeline.Stream(context.Background(), func(frameJPEG []byte) error {
		emitted++
		return nil
	})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if emitted != 3 {
		t.Fatalf("expected 3 emitted frames before the device ran out, got %d", emitted)
	}
}

func TestStreamPublishesRecognizedPlate(t *testing.T) {
	frame := testFrameJPEG(t)
	dev := &fakeDevice{frames: [][]byte{frame}}
	classifier := &stubClassifier{regions: []image.Rectangle{image.Rect(5, 5, 110, 70)}}
	reader := &stubReader{texts: []string{"A B-C!1234"}}
	pipeline, state := newTestPipeline(t, dev, classifier, reader)

	if err := state.EnableCapture(context.Background()); err != nil {
		t.Fatalf("enable capture: %v", err)
	}
	state.EnableRecognition()

	if err := pipeline.Stream(context.Background(), func([]byte) error { return nil }); err != nil {
		t.Fatalf("stream: %v", err)
	}

	plate, ok := state.Consume()
	if !ok || plate != "ABC1234" {
		t.Fatalf("expected published plate ABC1234, got %q (ok=%v)", plate, ok)
	}
}

func TestStreamSkipsDetectionWhileRecognitionDisabled(t *testing.T) {
	frame := testFrameJPEG(t)
	dev := &fakeDevice{frames: [][]byte{frame, frame}}
	classifier := &stubClassifier{}
	pipeline, state := newTestPipeline(t, dev, classifier, &stubReader{})

	if err := state.EnableCapture(context.Background()); err != nil {
		t.Fatalf("enable capture: %v", err)
	}

	if err := pipeline.Stream(context.Background(), func([]byte) error { return nil }); err != nil {
		t.Fatalf("stream: %v", err)
	}
	if classifier.calls != 0 {
		t.Fatalf("detector must not run while recognition is disabled, got %d calls", classifier.calls)
	}
}

func TestStreamReturnsImmediatelyWhenCaptureDisabled(t *testing.T) {
	dev := &fakeDevice{frames: [][]byte{testFrameJPEG(t)}}
	pipeline, _ := newTestPipeline(t, dev, &stubClassifier{}, &stubReader{})

	emitted := 0
	if err := pipeline.Stream(context.Background(), func([]byte) error { emitted++; return nil }); err != nil {
		t.Fatalf("stream: %v", err)
	}
	if emitted != 0 {
		t.Fatalf("expected no frames without capture enabled, got %d", emitted)
	}
}

func TestStreamStopsWhenViewerDisconnects(t *testing.T) {
	frame := testFrameJPEG(t)
	dev := &fakeDevice{frames: [][]byte{frame, frame, frame}}
	pipeline, state := newTestPipeline(t, dev, &stubClassifier{}, &stubReader{})

	if err := state.EnableCapture(context.Background()); err != nil {
		t.Fatalf("enable capture: %v", err)
	}

	emitted := 0
	err := pipeline.Stream(context.Background(), func([]byte) error {
		emitted++
		return errors.New("client gone")
	})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if emitted != 1 {
		t.Fatalf("expected the loop to stop after the first failed emit, got %d", emitted)
	}
}

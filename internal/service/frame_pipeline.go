package service

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"log"

	"gate_access/internal/vision"
)

// FramePipeline pulls frames from the capture device, runs plate detection
// and extraction while recognition is enabled, publishes recognized text to
// the pending slot and emits annotated JPEG frames to the viewer. One
// pipeline run serves one streaming connection.
type FramePipeline struct {
	state     *RecognitionState
	detector  *vision.PlateDetector
	extractor *vision.PlateExtractor
}

func NewFramePipeline(state *RecognitionState, detector *vision.PlateDetector, extractor *vision.PlateExtractor) *FramePipeline {
	return &FramePipeline{
		state:     state,
		detector:  detector,
		extractor: extractor,
	}
}

// Stream runs the pull loop until capture is disabled, the device fails, the
// context ends or emit returns an error. A read failure terminates the loop
// rather than retrying: a dropped camera is a hard stop that requires an
// explicit re-enable.
func (p *FramePipeline) Stream(ctx context.Context, emit func(frameJPEG []byte) error) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// Flag check before every read closes the race with DisableCapture.
		dev := p.state.ActiveDevice()
		if dev == nil {
			return nil
		}

		frameJPEG, err := dev.ReadFrame()
		if err != nil {
			if p.state.CaptureEnabled() {
				log.Printf("FramePipeline: capture read failed, stream ended: %v", err)
			}
			return nil
		}

		if p.state.RecognitionEnabled() {
			if annotated := p.processFrame(ctx, frameJPEG); annotated != nil {
				frameJPEG = annotated
			}
		}

		if err := emit(frameJPEG); err != nil {
			return nil
		}
	}
}

// processFrame runs detection and extraction on one frame and returns the
// annotated encoding, or nil when the frame should be streamed untouched.
func (p *FramePipeline) processFrame(ctx context.Context, frameJPEG []byte) []byte {
	frame, err := jpeg.Decode(bytes.NewReader(frameJPEG))
	if err != nil {
		log.Printf("FramePipeline: skipping undecodable frame: %v", err)
		return nil
	}

	candidates, err := p.detector.Detect(ctx, frame)
	if err != nil {
		log.Printf("FramePipeline: detection failed: %v", err)
		return nil
	}
	if len(candidates) == 0 {
		return nil
	}

	annotations := make([]vision.Annotation, 0, len(candidates))
	recognized := ""
	for _, c := range candidates {
		text, err := p.extractor.Extract(ctx, c.Image)
		if err != nil {
			log.Printf("FramePipeline: extraction failed: %v", err)
			text = ""
		}
		annotations = append(annotations, vision.Annotation{Bounds: c.Bounds, Text: text})
		if text != "" {
			// Several readable candidates in one frame: the last one wins,
			// consistent with the single-slot buffer.
			recognized = text
		}
	}

	if recognized != "" {
		p.state.Publish(recognized)
	}

	return encodeAnnotated(frame, annotations)
}

func encodeAnnotated(frame image.Image, annotations []vision.Annotation) []byte {
	annotated := vision.Annotate(frame, annotations)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, annotated, &jpeg.Options{Quality: 80}); err != nil {
		log.Printf("FramePipeline: encoding annotated frame failed: %v", err)
		return nil
	}
	return buf.Bytes()
}

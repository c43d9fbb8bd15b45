package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"regexp"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// TextRecognizer is the narrow interface to the text-recognition engine.
// Results come back in engine order; the extractor only uses the first.
type TextRecognizer interface {
	ReadText(ctx context.Context, imageJPEG []byte) ([]string, error)
}

// RekognitionReader implements TextRecognizer with AWS Rekognition
// DetectText, keeping LINE detections only.
type RekognitionReader struct {
	client *rekognition.Client
}

func NewRekognitionReader(client *rekognition.Client) *RekognitionReader {
	return &RekognitionReader{client: client}
}

func (r *RekognitionReader) ReadText(ctx context.Context, imageJPEG []byte) ([]string, error) {
	if r.client == nil {
		return nil, fmt.Errorf("rekognition client not configured")
	}

	result, err := r.client.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: imageJPEG},
	})
	if err != nil {
		return nil, fmt.Errorf("rekognition DetectText: %w", err)
	}

	var texts []string
	for _, td := range result.TextDetections {
		if td.Type != types.TextTypesLine || td.DetectedText == nil {
			continue
		}
		texts = append(texts, *td.DetectedText)
	}
	return texts, nil
}

// PlateExtractor turns a candidate sub-image into accepted plate text.
// Better to recognize nothing than to decide on corrupted text, so any
// result not matching the plate grammar is discarded outright.
type PlateExtractor struct {
	reader  TextRecognizer
	pattern *regexp.Regexp
}

func NewPlateExtractor(reader TextRecognizer, pattern string) (*PlateExtractor, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling plate pattern %q: %w", pattern, err)
	}
	return &PlateExtractor{reader: reader, pattern: re}, nil
}

// Extract runs the recognition engine on the sub-image and returns
// normalized plate text, or "" when nothing acceptable was read. Engine
// failures are returned as errors.
func (e *PlateExtractor) Extract(ctx context.Context, sub image.Image) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, sub, &jpeg.Options{Quality: 90}); err != nil {
		return "", fmt.Errorf("encoding candidate: %w", err)
	}

	texts, err := e.reader.ReadText(ctx, buf.Bytes())
	if err != nil {
		return "", err
	}
	if len(texts) == 0 {
		return "", nil
	}

	cleaned := NormalizePlate(texts[0])
	if !e.pattern.MatchString(cleaned) {
		return "", nil
	}
	return cleaned, nil
}

// Accepts reports whether already-normalized text matches the plate
// grammar. Used by the camera-event path, which receives plate text that
// never went through Extract.
func (e *PlateExtractor) Accepts(text string) bool {
	return e.pattern.MatchString(text)
}

// NormalizePlate strips every rune that is not an ASCII letter or digit.
func NormalizePlate(raw string) string {
	out := make([]rune, 0, len(raw))
	for _, r := range raw {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			out = append(out, r)
		}
	}
	return string(out)
}

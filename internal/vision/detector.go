package vision

import (
	"context"
	"fmt"
	"image"
	"image/draw"
)

// RegionClassifier is the narrow interface to the pretrained plate-region
// classifier. Implementations receive a single-channel frame and the two
// cascade sensitivity parameters and return candidate bounding boxes in
// classifier-defined order.
type RegionClassifier interface {
	DetectMultiScale(ctx context.Context, gray *image.Gray, scaleFactor float64, minNeighbors int) ([]image.Rectangle, error)
}

// Candidate is a plate-region candidate: its bounds in the source frame and
// the cropped sub-image.
type Candidate struct {
	Bounds image.Rectangle
	Image  image.Image
}

type DetectorConfig struct {
	ScaleFactor  float64
	MinNeighbors int
	// MinArea suppresses noise detections; candidates with a smaller
	// bounding-box area are discarded.
	MinArea int
}

// PlateDetector finds plate-region candidates in a frame.
type PlateDetector struct {
	classifier RegionClassifier
	cfg        DetectorConfig
}

func NewPlateDetector(classifier RegionClassifier, cfg DetectorConfig) *PlateDetector {
	if cfg.ScaleFactor == 0 {
		cfg.ScaleFactor = 1.1
	}
	if cfg.MinNeighbors == 0 {
		cfg.MinNeighbors = 4
	}
	if cfg.MinArea == 0 {
		cfg.MinArea = 500
	}
	return &PlateDetector{classifier: classifier, cfg: cfg}
}

// Detect converts the frame to grayscale, runs the region classifier and
// returns the candidates passing the minimum-area filter. No side effects.
func (d *PlateDetector) Detect(ctx context.Context, frame image.Image) ([]Candidate, error) {
	gray := Grayscale(frame)

	regions, err := d.classifier.DetectMultiScale(ctx, gray, d.cfg.ScaleFactor, d.cfg.MinNeighbors)
	if err != nil {
		return nil, fmt.Errorf("region classifier: %w", err)
	}

	var candidates []Candidate
	for _, r := range regions {
		r = r.Intersect(frame.Bounds())
		if r.Dx()*r.Dy() <= d.cfg.MinArea {
			continue
		}
		candidates = append(candidates, Candidate{
			Bounds: r,
			Image:  crop(frame, r),
		})
	}
	return candidates, nil
}

// Grayscale renders the frame into a single-channel image.
func Grayscale(src image.Image) *image.Gray {
	bounds := src.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, src, bounds.Min, draw.Src)
	return gray
}

func crop(src image.Image, r image.Rectangle) image.Image {
	type subImager interface {
		SubImage(r image.Rectangle) image.Image
	}
	if s, ok := src.(subImager); ok {
		return s.SubImage(r)
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), src, r.Min, draw.Src)
	return dst
}

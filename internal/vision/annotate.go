package vision

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var annotationColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}

// Annotation is a candidate's bounds plus recognized text, if any.
type Annotation struct {
	Bounds image.Rectangle
	Text   string
}

// Annotate draws the bounding boxes and recognized text onto a copy of the
// frame for operator display.
func Annotate(frame image.Image, annotations []Annotation) *image.RGBA {
	bounds := frame.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, frame, bounds.Min, draw.Src)

	for _, a := range annotations {
		drawRect(dst, a.Bounds, 2)
		if a.Text != "" {
			drawLabel(dst, a.Text, a.Bounds.Min.X, a.Bounds.Min.Y-25)
		}
	}
	return dst
}

func drawRect(img *image.RGBA, r image.Rectangle, thickness int) {
	for t := 0; t < thickness; t++ {
		for x := r.Min.X - t; x <= r.Max.X+t; x++ {
			img.Set(x, r.Min.Y-t, annotationColor)
			img.Set(x, r.Max.Y+t, annotationColor)
		}
		for y := r.Min.Y - t; y <= r.Max.Y+t; y++ {
			img.Set(r.Min.X-t, y, annotationColor)
			img.Set(r.Max.X+t, y, annotationColor)
		}
	}
}

func drawLabel(img *image.RGBA, text string, x, y int) {
	if y < 0 {
		y = basicfont.Face7x13.Height
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(annotationColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

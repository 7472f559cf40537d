// Package compose renders a computed layout plan onto a pixel canvas.
//
// The compositor is the only part of the collage core that touches pixels.
// It allocates a canvas sized to the plan, paints the background, draws a
// border ring around every content rectangle, and resamples each source
// image into its rectangle with Lanczos interpolation. Encoding the canvas
// to a file is the codec package's job.
package compose

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/fourup/pkg/collage/layout"
)

// Options holds the fixed rendering parameters.
type Options struct {
	Metrics    layout.Metrics
	Background color.NRGBA
	Border     color.NRGBA
}

// Render composes the images into a single canvas according to the plan.
// imgs must be indexed like plan: position i holds the image for plan[i].
//
// The canvas height is the lowest content edge plus one trailing border and
// padding, so the bottom margin mirrors the top. Each image is resampled
// (not merely scaled) to its exact content rectangle; aspect distortion
// from the subtraction rule is at most a pixel and intentional.
func Render(plan layout.Plan, imgs []image.Image, opts Options) *image.NRGBA {
	m := opts.Metrics
	canvas := imaging.New(m.TotalWidth, m.CanvasHeight(plan), opts.Background)

	b := m.Border
	for i, r := range plan {
		if b > 0 {
			ring := image.Rect(r.X-b, r.Y-b, r.Right()+b, r.Bottom()+b)
			draw.Draw(canvas, ring, image.NewUniform(opts.Border), image.Point{}, draw.Src)
		}
		resized := imaging.Resize(imgs[i], r.W, r.H, imaging.Lanczos)
		canvas = imaging.Paste(canvas, resized, image.Pt(r.X, r.Y))
	}
	return canvas
}

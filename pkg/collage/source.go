package collage

import (
	"image"

	"github.com/matzehuels/fourup/pkg/errors"
)

// Source is one decoded input image together with its intrinsic dimensions.
// Sources are immutable after creation; the engine only reads dimensions
// and later resamples the pixels, never mutating them.
type Source struct {
	name string
	img  image.Image
	w, h int
}

// NewSource wraps a decoded image. name identifies the source in logs and
// errors (a path, URL, or upload field name).
//
// Dimensions are validated here rather than at layout time: a zero-height
// image has no aspect ratio, and rejecting it up front keeps the geometry
// solvers free of error paths.
func NewSource(name string, img image.Image) (*Source, error) {
	if img == nil {
		return nil, errors.New(errors.ErrCodeInvalidImage, "nil image: %s", name)
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidImage,
			"image %s has invalid dimensions %dx%d", name, w, h)
	}
	return &Source{name: name, img: img, w: w, h: h}, nil
}

// Name returns the identifier the source was created with.
func (s *Source) Name() string { return s.name }

// Image returns the decoded pixel data.
func (s *Source) Image() image.Image { return s.img }

// Width returns the intrinsic pixel width.
func (s *Source) Width() int { return s.w }

// Height returns the intrinsic pixel height.
func (s *Source) Height() int { return s.h }

// Ratio returns the aspect ratio, width over height. Always positive for a
// constructed Source.
func (s *Source) Ratio() float64 { return float64(s.w) / float64(s.h) }

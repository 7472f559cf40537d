package collage

import (
	"fmt"
	"image/color"
	"strconv"

	"github.com/matzehuels/fourup/pkg/codec"
	"github.com/matzehuels/fourup/pkg/collage/layout"
	"github.com/matzehuels/fourup/pkg/errors"
)

// Default sizing and color parameters, used by DefaultParams and the CLI
// flag defaults.
const (
	DefaultTotalWidth  = 900
	DefaultPadding     = 4
	DefaultBorderWidth = 2
)

var (
	// DefaultBackground is a light neutral gray.
	DefaultBackground = color.NRGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}

	// DefaultBorderColor is white, a classic print-frame stroke.
	DefaultBorderColor = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Params holds the configuration fixed for the lifetime of a Builder.
type Params struct {
	// TotalWidth is the output canvas width in pixels.
	TotalWidth int

	// Padding is the gap between adjacent image borders and between a
	// border and the canvas edge.
	Padding int

	// BorderWidth is the stroke thickness drawn around each image.
	BorderWidth int

	// Background fills the canvas before any image is drawn.
	Background color.NRGBA

	// BorderColor is the stroke color around each image.
	BorderColor color.NRGBA

	// Quality is the JPEG quality (1–100); 0 selects codec.DefaultQuality.
	Quality int
}

// DefaultParams returns the standard configuration.
func DefaultParams() Params {
	return Params{
		TotalWidth:  DefaultTotalWidth,
		Padding:     DefaultPadding,
		BorderWidth: DefaultBorderWidth,
		Background:  DefaultBackground,
		BorderColor: DefaultBorderColor,
		Quality:     codec.DefaultQuality,
	}
}

// Metrics returns the geometry subset of the parameters.
func (p Params) Metrics() layout.Metrics {
	return layout.Metrics{
		TotalWidth: p.TotalWidth,
		Padding:    p.Padding,
		Border:     p.BorderWidth,
	}
}

// Validate checks the parameters for internal consistency. It guards the
// obvious misconfigurations; whether TotalWidth leaves room for positive
// rectangles also depends on the ratios and stays a caller responsibility.
func (p Params) Validate() error {
	if p.TotalWidth <= 0 {
		return errors.New(errors.ErrCodeInvalidSize, "total width must be positive, got %d", p.TotalWidth)
	}
	if p.Padding < 0 {
		return errors.New(errors.ErrCodeInvalidSize, "padding cannot be negative, got %d", p.Padding)
	}
	if p.BorderWidth < 0 {
		return errors.New(errors.ErrCodeInvalidSize, "border width cannot be negative, got %d", p.BorderWidth)
	}
	if minWidth := 4*p.Padding + 6*p.BorderWidth + 4; p.TotalWidth < minWidth {
		return errors.New(errors.ErrCodeInvalidSize,
			"total width %d leaves no room for images (need at least %d)", p.TotalWidth, minWidth)
	}
	if p.Quality < 0 || p.Quality > 100 {
		return errors.New(errors.ErrCodeInvalidSize, "quality must be 0–100, got %d", p.Quality)
	}
	return nil
}

// ParseHexColor parses "#RRGGBB" or "#RGB" into an opaque color.
func ParseHexColor(s string) (color.NRGBA, error) {
	if err := errors.ValidateHexColor(s); err != nil {
		return color.NRGBA{}, err
	}

	digits := s[1:]
	if len(digits) == 3 {
		digits = string([]byte{
			digits[0], digits[0],
			digits[1], digits[1],
			digits[2], digits[2],
		})
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return color.NRGBA{}, errors.Wrap(errors.ErrCodeInvalidColor, err, "parse color %s", s)
	}
	return color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}, nil
}

// FormatHexColor renders a color as "#rrggbb" for JSON output and logs.
func FormatHexColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

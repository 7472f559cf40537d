// Package pipeline provides the core collage pipeline for fourup.
//
// This package implements the complete fetch → decode → layout → compose →
// encode pipeline that can be used by CLI, server, and batch components. By
// centralizing this logic, we ensure consistent behavior across all entry
// points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of five stages:
//
//  1. Fetch: Read source images from local paths or download them over HTTP
//  2. Decode: Sniff the image format and decode the pixel data
//  3. Layout: Sort by aspect ratio, pick an arrangement, solve exact geometry
//  4. Compose: Paint the canvas, borders, and resampled images
//  5. Encode: Produce the final JPEG bytes and optionally write them
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, logger)
//	opts := pipeline.Options{
//	    Sources: []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"},
//	    Output:  "collage.jpg",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Arrangement, result.Width, result.Height)
package pipeline

import (
	"image"
	"io"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fourup/pkg/collage"
	"github.com/matzehuels/fourup/pkg/collage/layout"
	"github.com/matzehuels/fourup/pkg/errors"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the collage pipeline.
// This struct supports JSON serialization for server requests.
type Options struct {
	// Sources are the input image references, local paths or http(s) URLs,
	// in the order given by the user. Extras beyond the first four decoded
	// images are ignored.
	Sources []string `json:"sources"`

	// Output is the destination path for the JPEG. Empty means the encoded
	// bytes are returned in the Result but not written anywhere.
	Output string `json:"output,omitempty"`

	// Geometry and appearance. Zero values select the collage defaults;
	// Padding and BorderWidth accept -1 to mean none at all.
	TotalWidth  int    `json:"total_width,omitempty"`
	Padding     int    `json:"padding,omitempty"`
	BorderWidth int    `json:"border_width,omitempty"`
	Background  string `json:"background,omitempty"`
	BorderColor string `json:"border_color,omitempty"`
	Quality     int    `json:"quality,omitempty"`

	// Lenient restores the historical silent no-op when fewer than four
	// sources survive decoding.
	Lenient bool `json:"lenient,omitempty"`

	// Seed makes the arrangement coin flip reproducible. Zero draws from
	// the process-wide random source.
	Seed uint64 `json:"seed,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if len(o.Sources) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "at least one source is required")
	}
	for _, ref := range o.Sources {
		if err := errors.ValidateSourceRef(ref); err != nil {
			return err
		}
	}
	if o.Output != "" {
		if err := errors.ValidateOutputPath(o.Output); err != nil {
			return err
		}
	}

	params, err := o.Params()
	if err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return err
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// Params resolves the options into collage parameters, applying defaults
// for anything unset and parsing the hex color strings.
func (o *Options) Params() (collage.Params, error) {
	p := collage.DefaultParams()
	if o.TotalWidth != 0 {
		p.TotalWidth = o.TotalWidth
	}
	switch {
	case o.Padding > 0:
		p.Padding = o.Padding
	case o.Padding < 0:
		p.Padding = 0
	}
	switch {
	case o.BorderWidth > 0:
		p.BorderWidth = o.BorderWidth
	case o.BorderWidth < 0:
		p.BorderWidth = 0
	}
	if o.Quality != 0 {
		p.Quality = o.Quality
	}
	if o.Background != "" {
		c, err := collage.ParseHexColor(o.Background)
		if err != nil {
			return collage.Params{}, err
		}
		p.Background = c
	}
	if o.BorderColor != "" {
		c, err := collage.ParseHexColor(o.BorderColor)
		if err != nil {
			return collage.Params{}, err
		}
		p.BorderColor = c
	}
	return p, nil
}

// Coin returns the arrangement coin flip for this run. A seeded run gets a
// deterministic generator; an unseeded run draws from the process-wide
// source.
func (o *Options) Coin() func() bool {
	if o.Seed == 0 {
		return func() bool { return rand.IntN(2) == 0 }
	}
	rng := rand.New(rand.NewPCG(o.Seed, 0))
	return func() bool { return rng.IntN(2) == 0 }
}

// =============================================================================
// Result - Pipeline Outputs
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Canvas is the composed image, nil when the run was skipped.
	Canvas *image.NRGBA

	// Data is the encoded JPEG, nil when the run was skipped.
	Data []byte

	// Plan holds the solved rectangles, indexed like Sorted.
	Plan layout.Plan

	// Arrangement is the chosen layout decision.
	Arrangement layout.Decision

	// Sorted lists the participating source references in ratio order,
	// matching Plan indices.
	Sorted []string

	// Dropped lists sources that failed to fetch or decode.
	Dropped []string

	// Skipped is true when a lenient run had too few sources and produced
	// nothing.
	Skipped bool

	// Width and Height are the canvas dimensions in pixels.
	Width  int
	Height int

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks cache hits for remote sources.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	SourceCount int
	FetchTime   time.Duration
	DecodeTime  time.Duration
	LayoutTime  time.Duration
	ComposeTime time.Duration
	EncodeTime  time.Duration
}

// CacheInfo tracks cache hits for remote source fetches.
type CacheInfo struct {
	SourceHits   int // Remote sources served from cache
	SourceMisses int // Remote sources downloaded
}

package collage

import (
	"image"
	"math/rand/v2"

	"github.com/matzehuels/fourup/pkg/codec"
	"github.com/matzehuels/fourup/pkg/collage/compose"
	"github.com/matzehuels/fourup/pkg/collage/layout"
	"github.com/matzehuels/fourup/pkg/errors"
)

// MinSources is the number of sources a build requires. The engine is
// defined for exactly four images; extras beyond the first four are
// ignored.
const MinSources = 4

// Builder accumulates sources and composes them into a collage.
//
// A Builder owns its sources from Add until the end of a build attempt and
// releases them unconditionally afterwards, so it is single-use per batch.
// It is not safe for concurrent use; separate goroutines should use
// separate Builders (they share no state).
type Builder struct {
	params  Params
	lenient bool
	coin    func() bool
	sources []*Source
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLenient restores the historical behavior of treating a build with
// fewer than four sources as a silent no-op instead of an error.
func WithLenient() BuilderOption {
	return func(b *Builder) { b.lenient = true }
}

// WithCoin replaces the arrangement coin flip, normally a process-wide
// uniform random bit. Tests and seeded runs use this for reproducibility.
func WithCoin(coin func() bool) BuilderOption {
	return func(b *Builder) { b.coin = coin }
}

// NewBuilder creates a Builder with the given parameters.
func NewBuilder(params Params, opts ...BuilderOption) *Builder {
	b := &Builder{
		params: params,
		coin:   func() bool { return rand.IntN(2) == 0 },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Add appends a source to the builder. A nil source is rejected with an
// INVALID_IMAGE error; everything else was validated by NewSource.
func (b *Builder) Add(src *Source) error {
	if src == nil {
		return errors.New(errors.ErrCodeInvalidImage, "nil source")
	}
	b.sources = append(b.sources, src)
	return nil
}

// Len returns the number of sources added so far.
func (b *Builder) Len() int { return len(b.sources) }

// Release drops all held sources so their pixel buffers can be collected.
// It is idempotent and called automatically at the end of every build
// attempt.
func (b *Builder) Release() { b.sources = nil }

// Result carries the outcome of a successful composition.
type Result struct {
	Canvas   *image.NRGBA
	Plan     layout.Plan
	Decision layout.Decision

	// Sorted lists the source names in ratio order, matching Plan indices.
	Sorted []string

	// Skipped is true when a lenient build had too few sources and
	// produced nothing.
	Skipped bool
}

// Compose sorts, classifies, solves and renders the held sources.
//
// With fewer than four sources the strict default returns an
// INSUFFICIENT_IMAGES error; a lenient Builder returns a Result with
// Skipped set and no canvas. Either way all sources are released before
// returning.
func (b *Builder) Compose() (*Result, error) {
	defer b.Release()

	if len(b.sources) < MinSources {
		if b.lenient {
			return &Result{Skipped: true}, nil
		}
		return nil, errors.New(errors.ErrCodeInsufficientImages,
			"need %d images, have %d", MinSources, len(b.sources))
	}

	sorted := make([]*Source, MinSources)
	copy(sorted, b.sources[:MinSources])
	SortByRatio(sorted)

	var ratios [4]float64
	for i, s := range sorted {
		ratios[i] = s.Ratio()
	}

	decision := layout.Classify(ratios, b.coin())
	if decision.DropWidest {
		sorted = sorted[:MinSources-1]
	}

	rs := make([]float64, len(sorted))
	imgs := make([]image.Image, len(sorted))
	names := make([]string, len(sorted))
	for i, s := range sorted {
		rs[i] = s.Ratio()
		imgs[i] = s.Image()
		names[i] = s.Name()
	}

	plan := layout.Solve(decision, rs, b.params.Metrics())
	canvas := compose.Render(plan, imgs, compose.Options{
		Metrics:    b.params.Metrics(),
		Background: b.params.Background,
		Border:     b.params.BorderColor,
	})

	return &Result{
		Canvas:   canvas,
		Plan:     plan,
		Decision: decision,
		Sorted:   names,
	}, nil
}

// Build composes the sources and writes the collage to dst as JPEG,
// overwriting any existing file. A lenient build with too few sources
// writes nothing and returns nil.
func (b *Builder) Build(dst string) error {
	if err := errors.ValidateOutputPath(dst); err != nil {
		b.Release()
		return err
	}

	res, err := b.Compose()
	if err != nil {
		return err
	}
	if res.Skipped {
		return nil
	}
	return codec.WriteJPEG(dst, res.Canvas, b.params.Quality)
}

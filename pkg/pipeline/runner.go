package pipeline

import (
	"bytes"
	"context"
	"image"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fourup/pkg/cache"
	"github.com/matzehuels/fourup/pkg/codec"
	"github.com/matzehuels/fourup/pkg/collage"
	"github.com/matzehuels/fourup/pkg/collage/compose"
	"github.com/matzehuels/fourup/pkg/collage/layout"
	"github.com/matzehuels/fourup/pkg/errors"
	"github.com/matzehuels/fourup/pkg/httputil"
	"github.com/matzehuels/fourup/pkg/observability"
)

// Runner encapsulates pipeline execution with source caching.
// Both CLI and server can use this to avoid duplicating fetch logic.
//
// The Runner is stateless except for the cache, fetcher, and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache   cache.Cache
	Fetcher *httputil.Fetcher
	Logger  *log.Logger
}

// NewRunner creates a runner with the given cache.
// If cache is nil, a NullCache is used (remote sources are refetched every
// run). If logger is nil, the runner stays silent.
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{
		Cache:   c,
		Fetcher: httputil.NewFetcher(c),
		Logger:  logger,
	}
}

// Execute runs the complete fetch → decode → layout → compose → encode
// pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Fetch
	fetchStart := time.Now()
	raws := r.fetchSources(ctx, opts, result)
	result.Stats.FetchTime = time.Since(fetchStart)

	// Stage 2: Decode
	decodeStart := time.Now()
	sources := r.decodeSources(ctx, opts, raws, result)
	result.Stats.DecodeTime = time.Since(decodeStart)
	result.Stats.SourceCount = len(sources)

	opts.Logger.Info("loaded sources",
		"decoded", len(sources),
		"dropped", len(result.Dropped),
		"cache_hits", result.CacheInfo.SourceHits,
		"duration", result.Stats.FetchTime+result.Stats.DecodeTime)

	if len(sources) < collage.MinSources {
		if opts.Lenient {
			opts.Logger.Warn("not enough images, skipping",
				"have", len(sources), "need", collage.MinSources)
			result.Skipped = true
			return result, nil
		}
		return nil, errors.New(errors.ErrCodeInsufficientImages,
			"need %d images, have %d", collage.MinSources, len(sources))
	}

	params, err := opts.Params()
	if err != nil {
		return nil, err
	}

	// Stage 3: Layout
	layoutStart := time.Now()
	sorted := sources[:collage.MinSources]
	collage.SortByRatio(sorted)

	var ratios [4]float64
	for i, s := range sorted {
		ratios[i] = s.Ratio()
	}

	observability.Pipeline().OnLayoutStart(ctx, len(sorted))
	decision := layout.Classify(ratios, opts.Coin()())
	if decision.DropWidest {
		sorted = sorted[:collage.MinSources-1]
	}

	rs := make([]float64, len(sorted))
	imgs := make([]image.Image, len(sorted))
	for i, s := range sorted {
		rs[i] = s.Ratio()
		imgs[i] = s.Image()
		result.Sorted = append(result.Sorted, s.Name())
	}

	metrics := params.Metrics()
	result.Plan = layout.Solve(decision, rs, metrics)
	result.Arrangement = decision
	result.Width = metrics.TotalWidth
	result.Height = metrics.CanvasHeight(result.Plan)
	result.Stats.LayoutTime = time.Since(layoutStart)
	observability.Pipeline().OnLayoutComplete(ctx, decision.Kind.String(), result.Stats.LayoutTime, nil)

	opts.Logger.Info("computed layout",
		"arrangement", decision.Kind,
		"images", len(sorted),
		"duration", result.Stats.LayoutTime)

	// Stage 4: Compose
	composeStart := time.Now()
	observability.Pipeline().OnComposeStart(ctx, result.Width, result.Height)
	result.Canvas = compose.Render(result.Plan, imgs, compose.Options{
		Metrics:    metrics,
		Background: params.Background,
		Border:     params.BorderColor,
	})
	result.Stats.ComposeTime = time.Since(composeStart)
	observability.Pipeline().OnComposeComplete(ctx, result.Width, result.Height, result.Stats.ComposeTime, nil)

	opts.Logger.Info("composed canvas",
		"width", result.Width,
		"height", result.Height,
		"duration", result.Stats.ComposeTime)

	// Stage 5: Encode
	encodeStart := time.Now()
	var buf bytes.Buffer
	if err := codec.EncodeJPEG(&buf, result.Canvas, params.Quality); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encoding collage")
	}
	result.Data = buf.Bytes()

	if opts.Output != "" {
		if err := codec.WriteFile(opts.Output, result.Data); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "writing %q", opts.Output)
		}
	}
	result.Stats.EncodeTime = time.Since(encodeStart)

	if opts.Output != "" {
		opts.Logger.Info("wrote collage",
			"path", opts.Output,
			"bytes", len(result.Data),
			"duration", result.Stats.EncodeTime)
	}

	return result, nil
}

// rawSource pairs a source reference with its undecoded bytes.
type rawSource struct {
	ref  string
	data []byte
}

// fetchSources loads the bytes of every source, from disk or over HTTP.
// Sources that fail to load are recorded in result.Dropped; the batch
// proceeds with the rest.
func (r *Runner) fetchSources(ctx context.Context, opts Options, result *Result) []rawSource {
	raws := make([]rawSource, 0, len(opts.Sources))
	for _, ref := range opts.Sources {
		var data []byte
		var err error
		if errors.IsRemoteRef(ref) {
			var hit bool
			data, hit, err = r.Fetcher.FetchWithCacheInfo(ctx, ref)
			if err == nil {
				if hit {
					result.CacheInfo.SourceHits++
				} else {
					result.CacheInfo.SourceMisses++
				}
			}
		} else {
			data, err = os.ReadFile(ref)
		}
		if err != nil {
			opts.Logger.Warn("dropping source", "ref", ref, "error", err)
			result.Dropped = append(result.Dropped, ref)
			continue
		}
		raws = append(raws, rawSource{ref: ref, data: data})
	}
	return raws
}

// decodeSources decodes raw bytes into collage sources. Bytes that fail to
// decode are recorded in result.Dropped; the batch proceeds with the rest.
func (r *Runner) decodeSources(ctx context.Context, opts Options, raws []rawSource, result *Result) []*collage.Source {
	sources := make([]*collage.Source, 0, len(raws))
	for _, raw := range raws {
		start := time.Now()
		observability.Pipeline().OnDecodeStart(ctx, raw.ref)
		img, format, err := codec.Decode(raw.data, raw.ref)
		observability.Pipeline().OnDecodeComplete(ctx, raw.ref, format, time.Since(start), err)
		if err != nil {
			opts.Logger.Warn("dropping source", "ref", raw.ref, "error", err)
			result.Dropped = append(result.Dropped, raw.ref)
			continue
		}

		src, err := collage.NewSource(raw.ref, img)
		if err != nil {
			opts.Logger.Warn("dropping source", "ref", raw.ref, "error", err)
			result.Dropped = append(result.Dropped, raw.ref)
			continue
		}
		sources = append(sources, src)
	}
	return sources
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

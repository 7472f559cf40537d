// Package collage assembles four decoded images into a single fixed-width
// collage.
//
// The package owns the boundary surface described by the layout engine:
// sources are added one at a time, sorted ascending by aspect ratio, run
// through the arrangement classifier, solved into a pixel plan, and handed
// to the compositor. Image buffers are owned by the Builder between Add and
// the end of Build and released explicitly on every build path, success or
// not, so a Builder is single-use per batch of sources.
//
// Decoding files into sources and fetching remote inputs live elsewhere
// (pkg/codec, pkg/pipeline); this package deals only in already-decoded
// images.
package collage

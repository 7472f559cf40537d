// Package layout selects and computes pixel-exact rectangle arrangements
// for four-image collages.
//
// The package has two halves:
//
//   - Classify inspects four aspect ratios (sorted ascending) and picks one
//     of five named arrangements. One arrangement drops the widest image and
//     lays out the remaining three.
//   - Solve turns the chosen arrangement into a Plan: one content rectangle
//     per image, packed into a fixed total width with consistent padding and
//     per-image borders.
//
// # Geometry
//
// All arrangements reduce to the same law: N images sharing a row (or
// column) of fixed span S with padding p and border b satisfy
//
//	Σ (ratio_i · h) + (N-1)·(p + 2b) = S
//
// which is solved for the shared height h. Every primary dimension is
// rounded to whole pixels before dependent dimensions are derived from it,
// and the last element of every row or column is sized by subtraction from
// the remaining span rather than from its ratio. The subtraction rule is
// what guarantees rows pack to the total width exactly, with rounding drift
// absorbed by the final element instead of accumulating into gaps or
// overlaps.
//
// Plans are pure data; nothing in this package reads pixels or draws.
package layout

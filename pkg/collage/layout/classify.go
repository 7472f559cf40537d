package layout

// Kind identifies one of the five collage arrangements.
type Kind int

const (
	// Grid2x2 is the general case: two rows of two images each.
	Grid2x2 Kind = iota

	// TallMiddle places one tall image left, two stacked images in the
	// middle column, and one image right at full height.
	TallMiddle

	// TallRight stacks three images in a left column sharing one width,
	// with a single tall image spanning the full height on the right.
	TallRight

	// WideRows stacks all four images as full-width rows.
	WideRows

	// TriptychRow drops the widest image and lays the remaining three in
	// a single row.
	TriptychRow
)

// String returns the arrangement name used in logs and JSON output.
func (k Kind) String() string {
	switch k {
	case Grid2x2:
		return "grid2x2"
	case TallMiddle:
		return "tall-middle"
	case TallRight:
		return "tall-right"
	case WideRows:
		return "wide-rows"
	case TriptychRow:
		return "triptych"
	}
	return "unknown"
}

// Decision is the outcome of classification: which arrangement to solve,
// and whether the widest image must be dropped first.
type Decision struct {
	Kind       Kind
	DropWidest bool
}

// Ratio thresholds for classification. Tuned so each arrangement is only
// chosen when the proportions it targets actually exist in the set.
const (
	allWideFloor = 2.0 // every image wider than this: stack full-width rows
	tallTrioCeil = 0.8 // three images narrower than this: drop the widest
	tallOneCeil  = 1.0 // narrowest at most this ...
	tallOneGap   = 1.2 // ... while the next is wider than this: one tall image
	tallPairCeil = 1.0 // two narrow candidates at most this ...
	tallPairWide = 1.3 // ... with the third wider than this: stacked middle pair
)

// Classify picks an arrangement for four aspect ratios sorted ascending.
//
// The rules are evaluated in this exact order, first match wins:
//
//  1. r0 > 2.0              → WideRows
//  2. r2 < 0.8              → TriptychRow (drop the widest image)
//  3. r0 ≤ 1.0 and r1 > 1.2 → TallRight
//  4. r1 ≤ 1.0 and r2 > 1.3 → TallMiddle, but only when coin is true
//  5. otherwise             → Grid2x2
//
// The coin is a single uniform flip drawn by the caller. Rule 4 is
// deliberately probabilistic: half the qualifying sets fall through to the
// default grid so repeated runs vary visually. Given the same ratios and
// the same coin, the result is deterministic. Every input matches exactly
// one rule; there is no error path.
func Classify(ratios [4]float64, coin bool) Decision {
	switch {
	case ratios[0] > allWideFloor:
		return Decision{Kind: WideRows}
	case ratios[2] < tallTrioCeil:
		return Decision{Kind: TriptychRow, DropWidest: true}
	case ratios[0] <= tallOneCeil && ratios[1] > tallOneGap:
		return Decision{Kind: TallRight}
	case ratios[1] <= tallPairCeil && ratios[2] > tallPairWide && coin:
		return Decision{Kind: TallMiddle}
	default:
		return Decision{Kind: Grid2x2}
	}
}

package layout

import "math"

// Solve computes the plan for a decision over sorted ratios.
//
// For TriptychRow the caller must have dropped the widest image already, so
// ratios has three entries; every other arrangement takes four. Indices in
// the returned plan match positions in ratios.
func Solve(d Decision, ratios []float64, m Metrics) Plan {
	switch d.Kind {
	case TallMiddle:
		return solveTallMiddle(ratios, m)
	case TallRight:
		return solveTallRight(ratios, m)
	case WideRows:
		return solveWideRows(ratios, m)
	case TriptychRow:
		return solveTriptychRow(ratios, m)
	default:
		return solveGrid2x2(ratios, m)
	}
}

// round converts a computed dimension to whole pixels. Primary dimensions
// are rounded before anything is derived from them so that dependent values
// see the pixel grid, not fractional intermediates.
func round(v float64) int {
	return int(math.Round(v))
}

// solveGrid2x2 lays two rows of two: images 1 and 2 on top, 3 and 0 below.
// Each row solves its own shared height; the second image of each row is
// sized by subtraction.
func solveGrid2x2(r []float64, m Metrics) Plan {
	edge, gap := m.Edge(), m.Gap()
	span := m.Span(2)

	hTop := round(float64(span) / (r[1] + r[2]))
	w1 := round(r[1] * float64(hTop))
	w2 := span - w1

	hBot := round(float64(span) / (r[3] + r[0]))
	w3 := round(r[3] * float64(hBot))
	w0 := span - w3

	yBot := edge + hTop + gap

	plan := make(Plan, 4)
	plan[1] = Rect{X: edge, Y: edge, W: w1, H: hTop}
	plan[2] = Rect{X: edge + w1 + gap, Y: edge, W: w2, H: hTop}
	plan[3] = Rect{X: edge, Y: yBot, W: w3, H: hBot}
	plan[0] = Rect{X: edge + w3 + gap, Y: yBot, W: w0, H: hBot}
	return plan
}

// solveTallMiddle lays three columns: image 1 left at full height, images 3
// and 2 stacked in the middle, image 0 right at full height.
//
// The stacked pair acts as one column whose effective ratio is the harmonic
// combination 1/(1/r3 + 1/r2): both share a width, so their heights add as
// reciprocals. The full height h1 is solved across the three columns, the
// middle width follows from the combined ratio, and the split between the
// stacked heights leaves image 2 to absorb the rounding remainder. Image 0
// takes whatever width is left in the span.
func solveTallMiddle(r []float64, m Metrics) Plan {
	edge, gap := m.Edge(), m.Gap()
	span := m.Span(3)

	rMid := 1 / (1/r[3] + 1/r[2])
	h1 := round(float64(span) / (r[1] + rMid + r[0]))

	w1 := round(r[1] * float64(h1))
	wMid := round(rMid * float64(h1))
	w0 := span - w1 - wMid

	h3 := round(float64(wMid) / r[3])
	h2 := (h1 - gap) - h3

	xMid := edge + w1 + gap

	plan := make(Plan, 4)
	plan[1] = Rect{X: edge, Y: edge, W: w1, H: h1}
	plan[3] = Rect{X: xMid, Y: edge, W: wMid, H: h3}
	plan[2] = Rect{X: xMid, Y: edge + h3 + gap, W: wMid, H: h2}
	plan[0] = Rect{X: xMid + wMid + gap, Y: edge, W: w0, H: h1}
	return plan
}

// solveTallRight stacks images 1, 3 and 2 in a left column sharing one
// width, with image 0 spanning the combined height on the right.
//
// Images 3 and 2 are not independently ratio-correct in width: they inherit
// the column width and only their heights vary. The overall height h0 is
// solved first from the column's combined ratio 1/(1/r1 + 1/r3 + 1/r2),
// then the stacked heights top-down, with image 2 sized by subtraction.
// Image 0 takes the remaining width.
func solveTallRight(r []float64, m Metrics) Plan {
	edge, gap := m.Edge(), m.Gap()
	span := m.Span(2)

	rCol := 1 / (1/r[1] + 1/r[3] + 1/r[2])
	h0 := round(float64(span) / (rCol + r[0]))

	wCol := round(rCol * float64(h0))
	w0 := span - wCol

	h1 := round(float64(wCol) / r[1])
	h3 := round(float64(wCol) / r[3])
	h2 := (h0 - 2*gap) - h1 - h3

	plan := make(Plan, 4)
	plan[1] = Rect{X: edge, Y: edge, W: wCol, H: h1}
	plan[3] = Rect{X: edge, Y: edge + h1 + gap, W: wCol, H: h3}
	plan[2] = Rect{X: edge, Y: edge + h1 + gap + h3 + gap, W: wCol, H: h2}
	plan[0] = Rect{X: edge + wCol + gap, Y: edge, W: w0, H: h0}
	return plan
}

// solveWideRows stacks all four images as full-width rows, ordered 1, 3, 2,
// 0 top to bottom. Every row spans the full width alone, so each height is
// derived independently and no shared solve or subtraction is needed.
func solveWideRows(r []float64, m Metrics) Plan {
	edge, gap := m.Edge(), m.Gap()
	wRow := m.Span(1)

	plan := make(Plan, 4)
	y := edge
	for _, i := range [4]int{1, 3, 2, 0} {
		h := round(float64(wRow) / r[i])
		plan[i] = Rect{X: edge, Y: y, W: wRow, H: h}
		y += h + gap
	}
	return plan
}

// solveTriptychRow lays three images in one row, ordered 1, 2, 0 left to
// right, sharing a height solved from the ratio sum. Image 0 is last in the
// row and is sized by subtraction.
func solveTriptychRow(r []float64, m Metrics) Plan {
	edge, gap := m.Edge(), m.Gap()
	span := m.Span(3)

	h := round(float64(span) / (r[0] + r[1] + r[2]))
	w1 := round(r[1] * float64(h))
	w2 := round(r[2] * float64(h))
	w0 := span - w1 - w2

	x2 := edge + w1 + gap

	plan := make(Plan, 3)
	plan[1] = Rect{X: edge, Y: edge, W: w1, H: h}
	plan[2] = Rect{X: x2, Y: edge, W: w2, H: h}
	plan[0] = Rect{X: x2 + w2 + gap, Y: edge, W: w0, H: h}
	return plan
}

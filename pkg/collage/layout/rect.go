package layout

// Rect is a content rectangle in canvas pixels. It covers the image itself;
// the border stroke is drawn in the Border-wide ring immediately outside it.
type Rect struct {
	X, Y, W, H int
}

// Right returns the x coordinate one past the right content edge.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the y coordinate one past the bottom content edge.
func (r Rect) Bottom() int { return r.Y + r.H }

// Plan maps sorted-image positions to content rectangles. A plan holds
// exactly four rectangles, or three for the triptych arrangement. Index 0
// is always the narrowest image of the sorted set.
type Plan []Rect

// Bottom returns the lowest content edge across all rectangles. The canvas
// height is Bottom plus the trailing border and padding.
func (p Plan) Bottom() int {
	maxY := 0
	for _, r := range p {
		if b := r.Bottom(); b > maxY {
			maxY = b
		}
	}
	return maxY
}

// Metrics holds the fixed sizing parameters shared by every arrangement.
//
// TotalWidth is the output canvas width. Padding is the gap between
// adjacent image borders and between a border and the canvas edge. Border
// is the stroke thickness drawn around each image, inside the padding gap.
// TotalWidth must be large enough that every computed rectangle stays
// positive; that is a caller precondition, not something the solvers check.
type Metrics struct {
	TotalWidth int
	Padding    int
	Border     int
}

// Edge returns the distance from the canvas edge to the nearest content
// edge: one padding plus one border.
func (m Metrics) Edge() int { return m.Padding + m.Border }

// Gap returns the distance between two adjacent content edges: one padding
// plus two borders, one for each neighbour.
func (m Metrics) Gap() int { return m.Padding + 2*m.Border }

// Span returns the pixels available for n image widths laid across the
// canvas: the total width minus both canvas margins and the n-1 gaps.
func (m Metrics) Span(n int) int {
	return m.TotalWidth - 2*m.Edge() - (n-1)*m.Gap()
}

// CanvasHeight returns the output height for a computed plan: the lowest
// content edge plus the trailing border and padding.
func (m Metrics) CanvasHeight(p Plan) int {
	return p.Bottom() + m.Edge()
}

package collage

import "slices"

// compareRatio orders sources ascending by aspect ratio. A plain named
// function rather than a closure so the comparison is reusable and shows up
// by name in profiles. Order between equal ratios is unspecified.
func compareRatio(a, b *Source) int {
	switch {
	case a.Ratio() < b.Ratio():
		return -1
	case a.Ratio() > b.Ratio():
		return 1
	default:
		return 0
	}
}

// SortByRatio orders sources ascending by aspect ratio in place: index 0
// ends up the narrowest image, the last index the widest. Sorting an
// already sorted slice is a no-op.
func SortByRatio(sources []*Source) {
	slices.SortFunc(sources, compareRatio)
}

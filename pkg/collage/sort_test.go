package collage

import (
	"math"
	"testing"
)

// sourceWithRatio builds a source whose w/h ratio approximates r.
func sourceWithRatio(t *testing.T, name string, r float64) *Source {
	t.Helper()
	const h = 1000
	src, err := NewSource(name, testImage(int(math.Round(r*h)), h))
	if err != nil {
		t.Fatalf("sourceWithRatio(%v): %v", r, err)
	}
	return src
}

func TestSortByRatio(t *testing.T) {
	ratios := []float64{2.5, 0.6, 1.4, 1.0}
	sources := make([]*Source, len(ratios))
	for i, r := range ratios {
		sources[i] = sourceWithRatio(t, "img", r)
	}

	// Every permutation must land in the same non-decreasing order.
	perms := [][]int{
		{0, 1, 2, 3}, {3, 2, 1, 0}, {1, 3, 0, 2}, {2, 0, 3, 1},
	}
	for _, perm := range perms {
		in := make([]*Source, len(perm))
		for i, p := range perm {
			in[i] = sources[p]
		}
		SortByRatio(in)
		for i := 1; i < len(in); i++ {
			if in[i-1].Ratio() > in[i].Ratio() {
				t.Errorf("perm %v: ratio %v before %v", perm, in[i-1].Ratio(), in[i].Ratio())
			}
		}
	}
}

func TestSortByRatioIdempotent(t *testing.T) {
	in := []*Source{
		sourceWithRatio(t, "a", 0.6),
		sourceWithRatio(t, "b", 1.0),
		sourceWithRatio(t, "c", 1.4),
		sourceWithRatio(t, "d", 2.5),
	}
	SortByRatio(in)
	first := make([]*Source, len(in))
	copy(first, in)
	SortByRatio(in)
	for i := range in {
		if in[i] != first[i] {
			t.Fatalf("re-sort changed order at %d", i)
		}
	}
}

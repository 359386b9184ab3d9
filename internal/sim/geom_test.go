package sim

import (
	"math"
	"testing"
)

func TestRaySegmentIntersection(t *testing.T) {
	testCases := []struct {
		name     string
		origin   Point
		dir      Point
		seg      Segment
		maxRange float64
		wantDist float64
		wantOK   bool
	}{
		{"head_on", Point{0, 0}, Point{1, 0}, Segment{Point{5, -1}, Point{5, 1}}, 100, 5, true},
		{"behind_origin", Point{0, 0}, Point{1, 0}, Segment{Point{-5, -1}, Point{-5, 1}}, 100, 0, false},
		{"beyond_max_range", Point{0, 0}, Point{1, 0}, Segment{Point{50, -1}, Point{50, 1}}, 10, 0, false},
		{"exactly_at_max_range", Point{0, 0}, Point{1, 0}, Segment{Point{10, -1}, Point{10, 1}}, 10, 10, true},
		{"parallel", Point{0, 0}, Point{1, 0}, Segment{Point{0, 1}, Point{10, 1}}, 100, 0, false},
		{"misses_segment_extent", Point{0, 0}, Point{1, 0}, Segment{Point{5, 1}, Point{5, 3}}, 100, 0, false},
		{"diagonal", Point{0, 0}, Point{math.Sqrt2 / 2, math.Sqrt2 / 2}, Segment{Point{0, 2}, Point{2, 0}}, 100, math.Sqrt2, true},
		{"touches_endpoint", Point{0, 0}, Point{1, 0}, Segment{Point{5, 0}, Point{5, 2}}, 100, 5, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dist, _, ok := raySegmentIntersection(tc.origin, tc.dir, tc.seg, tc.maxRange)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && math.Abs(dist-tc.wantDist) > 1e-9 {
				t.Errorf("dist = %f, want %f", dist, tc.wantDist)
			}
		})
	}
}

func TestSegmentsIntersect(t *testing.T) {
	testCases := []struct {
		name string
		a    Segment
		b    Segment
		want bool
	}{
		{"crossing", Segment{Point{0, 0}, Point{2, 2}}, Segment{Point{0, 2}, Point{2, 0}}, true},
		{"disjoint", Segment{Point{0, 0}, Point{1, 0}}, Segment{Point{0, 1}, Point{1, 1}}, false},
		{"shared_endpoint", Segment{Point{0, 0}, Point{1, 1}}, Segment{Point{1, 1}, Point{2, 0}}, true},
		{"collinear_overlap", Segment{Point{0, 0}, Point{2, 0}}, Segment{Point{1, 0}, Point{3, 0}}, true},
		{"collinear_disjoint", Segment{Point{0, 0}, Point{1, 0}}, Segment{Point{2, 0}, Point{3, 0}}, false},
		{"t_touch", Segment{Point{0, 0}, Point{2, 0}}, Segment{Point{1, 0}, Point{1, 1}}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := segmentsIntersect(tc.a, tc.b); got != tc.want {
				t.Errorf("segmentsIntersect = %v, want %v", got, tc.want)
			}
			// Intersection tests must be symmetric.
			if got := segmentsIntersect(tc.b, tc.a); got != tc.want {
				t.Errorf("segmentsIntersect (swapped) = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPointSegmentDistance(t *testing.T) {
	testCases := []struct {
		name     string
		p        Point
		seg      Segment
		wantDist float64
		wantFrac float64
	}{
		{"perpendicular_midpoint", Point{5, 3}, Segment{Point{0, 0}, Point{10, 0}}, 3, 0.5},
		{"before_start", Point{-2, 0}, Segment{Point{0, 0}, Point{10, 0}}, 2, 0},
		{"past_end", Point{13, 4}, Segment{Point{0, 0}, Point{10, 0}}, 5, 1},
		{"on_segment", Point{7, 0}, Segment{Point{0, 0}, Point{10, 0}}, 0, 0.7},
		{"degenerate_segment", Point{3, 4}, Segment{Point{0, 0}, Point{0, 0}}, 5, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dist, frac := pointSegmentDistance(tc.p, tc.seg)
			if math.Abs(dist-tc.wantDist) > 1e-9 {
				t.Errorf("dist = %f, want %f", dist, tc.wantDist)
			}
			if math.Abs(frac-tc.wantFrac) > 1e-9 {
				t.Errorf("frac = %f, want %f", frac, tc.wantFrac)
			}
		})
	}
}

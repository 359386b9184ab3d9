package sim

import "math"

// Point is a 2D position or direction vector in map coordinates.
// The map uses screen conventions: x grows rightwards, y grows downwards.
type Point struct {
	X float64
	Y float64
}

// Segment is a directed line segment from A to B.
type Segment struct {
	A Point
	B Point
}

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p scaled by s.
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Norm returns the Euclidean length of p treated as a vector.
func (p Point) Norm() float64 { return math.Hypot(p.X, p.Y) }

// cross returns the 2D cross product (z component) of a and b.
func cross(a, b Point) float64 { return a.X*b.Y - a.Y*b.X }

// dot returns the dot product of a and b.
func dot(a, b Point) float64 { return a.X*b.X + a.Y*b.Y }

// unitVector returns the unit vector for the given heading angle.
func unitVector(heading float64) Point {
	return Point{math.Cos(heading), math.Sin(heading)}
}

// raySegmentIntersection intersects the ray (origin, dir) with seg.
// dir must be a unit vector. Returns the distance along the ray and the hit
// point. ok is false when the ray misses the segment, the segment is parallel
// to the ray, or the hit lies further than maxRange.
func raySegmentIntersection(origin, dir Point, seg Segment, maxRange float64) (dist float64, hit Point, ok bool) {
	s := seg.B.Sub(seg.A)
	denom := cross(dir, s)
	if math.Abs(denom) < 1e-9 {
		return 0, Point{}, false
	}

	qp := seg.A.Sub(origin)
	t := cross(qp, s) / denom
	u := cross(qp, dir) / denom
	if t < 0 || t > maxRange || u < 0 || u > 1 {
		return 0, Point{}, false
	}
	return t, origin.Add(dir.Scale(t)), true
}

// segmentsIntersect reports whether the two segments properly intersect,
// including touching endpoints.
func segmentsIntersect(a, b Segment) bool {
	d1 := cross(b.B.Sub(b.A), a.A.Sub(b.A))
	d2 := cross(b.B.Sub(b.A), a.B.Sub(b.A))
	d3 := cross(a.B.Sub(a.A), b.A.Sub(a.A))
	d4 := cross(a.B.Sub(a.A), b.B.Sub(a.A))

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// Collinear touches count as intersections: a car nicking the very end
	// of the finish gate still crossed it.
	if d1 == 0 && onSegment(b, a.A) {
		return true
	}
	if d2 == 0 && onSegment(b, a.B) {
		return true
	}
	if d3 == 0 && onSegment(a, b.A) {
		return true
	}
	if d4 == 0 && onSegment(a, b.B) {
		return true
	}
	return false
}

// onSegment reports whether p lies within the bounding box of seg. Callers
// must already know p is collinear with seg.
func onSegment(seg Segment, p Point) bool {
	return math.Min(seg.A.X, seg.B.X) <= p.X && p.X <= math.Max(seg.A.X, seg.B.X) &&
		math.Min(seg.A.Y, seg.B.Y) <= p.Y && p.Y <= math.Max(seg.A.Y, seg.B.Y)
}

// pointSegmentDistance returns the distance from p to the closest point on
// seg, and the fraction along seg (clamped to [0,1]) where that point lies.
func pointSegmentDistance(p Point, seg Segment) (dist, frac float64) {
	d := seg.B.Sub(seg.A)
	lenSq := dot(d, d)
	if lenSq == 0 {
		return p.Dist(seg.A), 0
	}
	t := dot(p.Sub(seg.A), d) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	closest := seg.A.Add(d.Scale(t))
	return p.Dist(closest), t
}

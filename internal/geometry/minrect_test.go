package geometry

import (
	"math"
	"testing"
)

func containsCorner(q Quad, p Point, tol float64) bool {
	for _, c := range q {
		if approxPoint(c, p, tol) {
			return true
		}
	}
	return false
}

func TestMinAreaRect_AxisAligned(t *testing.T) {
	pts := []Point{{0, 0}, {10, 0}, {10, 4}, {0, 4}, {5, 2}, {3, 1}}
	r := MinAreaRect(pts)

	for _, want := range []Point{{0, 0}, {10, 0}, {10, 4}, {0, 4}} {
		if !containsCorner(r, want, 1e-9) {
			t.Errorf("corner %v missing from %v", want, r)
		}
	}
}

func TestMinAreaRect_Rotated(t *testing.T) {
	// A 20x6 rectangle rotated by 30 degrees about (50, 50).
	theta := math.Pi / 6
	c, s := math.Cos(theta), math.Sin(theta)
	rot := func(x, y float64) Point {
		return Point{X: 50 + x*c - y*s, Y: 50 + x*s + y*c}
	}
	corners := []Point{rot(-10, -3), rot(10, -3), rot(10, 3), rot(-10, 3)}
	pts := append([]Point{rot(0, 0), rot(5, 1), rot(-7, -2)}, corners...)

	r := MinAreaRect(pts)
	for _, want := range corners {
		if !containsCorner(r, want, 1e-6) {
			t.Errorf("corner %v missing from %v", want, r)
		}
	}

	area := PolygonArea(r[:])
	if math.Abs(area-120) > 1e-6 {
		t.Errorf("area: got %.6f, want 120", area)
	}
}

func TestMinAreaRect_Degenerate(t *testing.T) {
	if r := MinAreaRect(nil); r != (Quad{}) {
		t.Errorf("empty input: got %v", r)
	}

	single := MinAreaRect([]Point{{3, 4}, {3, 4}})
	for _, p := range single {
		if p != (Point{3, 4}) {
			t.Errorf("single point: got %v", single)
		}
	}

	seg := MinAreaRect([]Point{{0, 0}, {5, 5}, {2, 2}})
	if PolygonArea(seg[:]) != 0 {
		t.Errorf("collinear input should give zero area, got %v", seg)
	}
}

func TestConvexHull_DropsInterior(t *testing.T) {
	pts := []Point{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {2, 2}, {1, 3}, {2, 0}}
	hull := ConvexHull(pts)
	if len(hull) != 4 {
		t.Fatalf("hull size: got %d (%v), want 4", len(hull), hull)
	}
	if a := PolygonArea(hull); a != 16 {
		t.Errorf("hull area: got %v, want 16", a)
	}
}


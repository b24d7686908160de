package geometry

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrBadShape is returned when a box array is not exactly 2x4xn.
	ErrBadShape = errors.New("box array must have shape (2,4,n)")

	// ErrSingular is returned when a homography cannot be inverted or fitted.
	ErrSingular = errors.New("singular homography")
)

// Point represents a 2D point in pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Quad is one box: four corners in top-left, top-right, bottom-right,
// bottom-left order.
type Quad [4]Point

// Height is the distance between the top-left and bottom-left corners.
func (q Quad) Height() float64 {
	return q[3].Dist(q[0])
}

// Width is the distance between the top-left and top-right corners.
func (q Quad) Width() float64 {
	return q[1].Dist(q[0])
}

// Boxes is an ordered set of quads, the Go form of a 2x4xn box array.
type Boxes []Quad

// Clone returns a copy of b that shares no memory with it.
func (b Boxes) Clone() Boxes {
	if b == nil {
		return nil
	}
	out := make(Boxes, len(b))
	copy(out, b)
	return out
}

// Array returns b as a 2x4xn nested slice: a[coord][corner][box].
//
// Coordinate 0 is X and coordinate 1 is Y. An empty set yields two rows of
// four empty slices, so the (2,4,0) shape survives JSON round trips.
func (b Boxes) Array() [][][]float64 {
	a := make([][][]float64, 2)
	for c := range a {
		a[c] = make([][]float64, 4)
		for k := range a[c] {
			a[c][k] = make([]float64, len(b))
		}
	}
	for i, q := range b {
		for k, p := range q {
			a[0][k][i] = p.X
			a[1][k][i] = p.Y
		}
	}
	return a
}

// BoxesFromArray converts a 2x4xn nested slice into Boxes.
//
// Returns ErrBadShape (wrapped with the offending dimensions) unless the outer
// dimension is 2, every coordinate row has 4 corners, and every corner row has
// the same length n.
func BoxesFromArray(a [][][]float64) (Boxes, error) {
	if len(a) != 2 {
		return nil, fmt.Errorf("%w: got %d coordinates", ErrBadShape, len(a))
	}
	n := -1
	for c := range a {
		if len(a[c]) != 4 {
			return nil, fmt.Errorf("%w: coordinate %d has %d corners", ErrBadShape, c, len(a[c]))
		}
		for k := range a[c] {
			if n < 0 {
				n = len(a[c][k])
			}
			if len(a[c][k]) != n {
				return nil, fmt.Errorf("%w: ragged box count (%d vs %d)", ErrBadShape, len(a[c][k]), n)
			}
		}
	}

	b := make(Boxes, n)
	for i := range b {
		for k := 0; k < 4; k++ {
			b[i][k] = Point{X: a[0][k][i], Y: a[1][k][i]}
		}
	}
	return b, nil
}

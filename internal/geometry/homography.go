package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// PerspectiveEpsilon is added to the homogeneous coordinate before the
// perspective division so near-degenerate transforms stay finite.
const PerspectiveEpsilon = 1e-16

// Homography is a 3x3 projective transform in row-major order.
type Homography [3][3]float64

// Identity returns the identity homography.
func Identity() Homography {
	return Homography{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Mul returns h * o, the transform that applies o first and then h.
func (h Homography) Mul(o Homography) Homography {
	var out Homography
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var s float64
			for k := 0; k < 3; k++ {
				s += h[i][k] * o[k][j]
			}
			out[i][j] = s
		}
	}
	return out
}

// Apply maps a single point through h with an epsilon-guarded division.
func (h Homography) Apply(p Point) Point {
	x := h[0][0]*p.X + h[0][1]*p.Y + h[0][2]
	y := h[1][0]*p.X + h[1][1]*p.Y + h[1][2]
	w := h[2][0]*p.X + h[2][1]*p.Y + h[2][2] + PerspectiveEpsilon
	return Point{X: x / w, Y: y / w}
}

// Inverse returns the inverse transform.
//
// Returns ErrSingular when the determinant vanishes relative to the scale of
// the matrix entries. Ill-conditioned but invertible matrices are accepted.
func (h Homography) Inverse() (Homography, error) {
	m := h.dense()

	scale := mat.Norm(m, math.Inf(1))
	if scale == 0 || math.Abs(mat.Det(m)) <= 1e-12*scale*scale*scale {
		return Homography{}, ErrSingular
	}

	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return Homography{}, fmt.Errorf("%w: %v", ErrSingular, err)
		}
	}
	return homographyFromDense(&inv), nil
}

// Normalized returns h scaled so that h[2][2] == 1. If h[2][2] is zero, h is
// returned unchanged.
func (h Homography) Normalized() Homography {
	if h[2][2] == 0 {
		return h
	}
	s := h[2][2]
	for i := range h {
		for j := range h[i] {
			h[i][j] /= s
		}
	}
	return h
}

func (h Homography) dense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		h[0][0], h[0][1], h[0][2],
		h[1][0], h[1][1], h[1][2],
		h[2][0], h[2][1], h[2][2],
	})
}

func homographyFromDense(m mat.Matrix) Homography {
	var h Homography
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			h[i][j] = m.At(i, j)
		}
	}
	return h
}

// TransformPoints applies h to every corner of every box.
//
// Each corner gets a homogeneous coordinate of 1; when offset is non-nil it is
// added to the corner before transforming. The result is divided by the third
// homogeneous coordinate plus PerspectiveEpsilon. Corner order is preserved and
// the input is not modified.
func TransformPoints(b Boxes, h Homography, offset *Point) Boxes {
	out := make(Boxes, len(b))
	for i, q := range b {
		for k, p := range q {
			if offset != nil {
				p = Point{X: p.X + offset.X, Y: p.Y + offset.Y}
			}
			out[i][k] = h.Apply(p)
		}
	}
	return out
}

// FitHomography estimates the homography mapping src[i] to dst[i] with the
// normalized direct linear transform.
//
// At least four correspondences are required. Returns ErrSingular when the
// points are degenerate (for example all collinear).
func FitHomography(src, dst []Point) (Homography, error) {
	if len(src) != len(dst) {
		return Homography{}, fmt.Errorf("correspondence count mismatch: %d vs %d", len(src), len(dst))
	}
	n := len(src)
	if n < 4 {
		return Homography{}, fmt.Errorf("need at least 4 correspondences, got %d", n)
	}

	ts, ok := normalizingTransform(src)
	if !ok {
		return Homography{}, ErrSingular
	}
	td, ok := normalizingTransform(dst)
	if !ok {
		return Homography{}, ErrSingular
	}

	a := mat.NewDense(2*n, 9, nil)
	for i := 0; i < n; i++ {
		s := ts.Apply(src[i])
		d := td.Apply(dst[i])
		a.SetRow(2*i, []float64{-s.X, -s.Y, -1, 0, 0, 0, d.X * s.X, d.X * s.Y, d.X})
		a.SetRow(2*i+1, []float64{0, 0, 0, -s.X, -s.Y, -1, d.Y * s.X, d.Y * s.Y, d.Y})
	}

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDFullV) {
		return Homography{}, fmt.Errorf("%w: SVD did not converge", ErrSingular)
	}
	var v mat.Dense
	svd.VTo(&v)

	var hn Homography
	for k := 0; k < 9; k++ {
		hn[k/3][k%3] = v.At(k, 8)
	}

	tdInv, err := td.Inverse()
	if err != nil {
		return Homography{}, err
	}
	h := tdInv.Mul(hn).Mul(ts)
	if math.Abs(h[2][2]) < 1e-12 {
		return Homography{}, ErrSingular
	}
	h = h.Normalized()
	if _, err := h.Inverse(); err != nil {
		return Homography{}, err
	}
	return h, nil
}

// normalizingTransform returns the similarity that moves the centroid of pts to
// the origin and scales their mean distance to sqrt(2).
func normalizingTransform(pts []Point) (Homography, bool) {
	var cx, cy float64
	for _, p := range pts {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(len(pts))
	cy /= float64(len(pts))

	var d float64
	for _, p := range pts {
		d += math.Hypot(p.X-cx, p.Y-cy)
	}
	d /= float64(len(pts))
	if d < 1e-12 {
		return Homography{}, false
	}
	s := math.Sqrt2 / d
	return Homography{{s, 0, -s * cx}, {0, s, -s * cy}, {0, 0, 1}}, true
}

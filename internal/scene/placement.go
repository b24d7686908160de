package scene

import (
	"image"
	"math"

	"github.com/golang/geo/r3"

	"github.com/ironsheep/synthtext-mcp/internal/geometry"
)

const (
	occupied = 255
	free     = 0
)

// PlacementMask lays out the candidate's plane as a frontal-parallel canvas.
//
// The returned mask is in frontal coordinates with 0 marking pixels that map
// back into the candidate segment and 255 everywhere else, including a border
// of pad pixels. hinv maps frontal coordinates into the image and h is its
// inverse. ok is false when the segment yields no usable canvas: too few
// points, a degenerate fit, a canvas outside the size limits, or fewer free
// pixels than MinPlacementPixels.
func (f *PlaneFinder) PlacementMask(xyz *PointCloud, seg *LabelMap, cand Candidate, pad int) (mask *image.Gray, h, hinv geometry.Homography, ok bool) {
	var pix []geometry.Point
	var pts []r3.Vector
	for y := 0; y < seg.Height; y++ {
		for x := 0; x < seg.Width; x++ {
			if seg.At(x, y) == cand.Label && xyz.Valid(x, y) {
				pix = append(pix, geometry.Point{X: float64(x), Y: float64(y)})
				pts = append(pts, xyz.At(x, y))
			}
		}
	}
	count := len(pix)
	pix = strideSample(pix, f.cfg.MaxSamplePoints)
	pts = strideSample(pts, f.cfg.MaxSamplePoints)
	if len(pts) < 4 {
		return nil, h, hinv, false
	}

	e1, e2, ok := planeBasis(cand.Plane.Normal())
	if !ok {
		return nil, h, hinv, false
	}

	// In-plane coordinates of every sampled point.
	ab := make([]geometry.Point, len(pts))
	minA, minB := math.Inf(1), math.Inf(1)
	maxA, maxB := math.Inf(-1), math.Inf(-1)
	for i, p := range pts {
		q := p.Sub(cand.Plane.Normal().Mul(cand.Plane.Distance(p)))
		a, b := q.Dot(e1), q.Dot(e2)
		ab[i] = geometry.Point{X: a, Y: b}
		minA, maxA = math.Min(minA, a), math.Max(maxA, a)
		minB, maxB = math.Min(minB, b), math.Max(maxB, b)
	}

	// Match the image's pixel density: the segment covers count pixels, so
	// its in-plane area should cover about as many frontal pixels.
	hullArea := geometry.PolygonArea(geometry.ConvexHull(ab))
	if hullArea <= 0 {
		return nil, h, hinv, false
	}
	s := math.Sqrt(float64(count) / hullArea)

	width := int(math.Ceil(s*(maxA-minA))) + 2*pad + 1
	height := int(math.Ceil(s*(maxB-minB))) + 2*pad + 1
	limit := f.cfg.MaxFrontalScale * float64(max(seg.Width, seg.Height))
	if float64(width) > limit || float64(height) > limit || width <= 2*pad+1 || height <= 2*pad+1 {
		return nil, h, hinv, false
	}

	frontal := make([]geometry.Point, len(ab))
	for i, p := range ab {
		frontal[i] = geometry.Point{
			X: s*(p.X-minA) + float64(pad),
			Y: s*(p.Y-minB) + float64(pad),
		}
	}

	hinv, err := geometry.FitHomography(frontal, pix)
	if err != nil {
		return nil, h, hinv, false
	}
	h, err = hinv.Inverse()
	if err != nil {
		return nil, h, hinv, false
	}

	mask = image.NewGray(image.Rect(0, 0, width, height))
	nfree := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*mask.Stride + x
			mask.Pix[i] = occupied
			if x < pad || y < pad || x >= width-pad || y >= height-pad {
				continue
			}
			p := hinv.Apply(geometry.Point{X: float64(x), Y: float64(y)})
			u, v := int(math.Round(p.X)), int(math.Round(p.Y))
			if u < 0 || v < 0 || u >= seg.Width || v >= seg.Height || seg.At(u, v) != cand.Label {
				continue
			}
			mask.Pix[i] = free
			nfree++
		}
	}
	if nfree < f.cfg.MinPlacementPixels {
		return nil, h, hinv, false
	}
	return mask, h, hinv, true
}

// planeBasis returns in-plane unit axes for normal n, which must face the
// camera. e1 follows the camera's right direction and e2 its down direction,
// whichever projects onto the plane more strongly anchors the frame, and the
// other axis completes it so that e1 x e2 = -n. The canvas then keeps the
// image's orientation: text laid out along e1 reads left to right and e2 points
// down the image, for walls and floors alike.
func planeBasis(n r3.Vector) (e1, e2 r3.Vector, ok bool) {
	right := r3.Vector{X: 1, Y: 0, Z: 0}
	down := r3.Vector{X: 0, Y: 1, Z: 0}
	pr := right.Sub(n.Mul(right.Dot(n)))
	pd := down.Sub(n.Mul(down.Dot(n)))

	switch {
	case pr.Norm() >= pd.Norm() && pr.Norm() > 1e-6:
		e1 = pr.Normalize()
		e2 = e1.Cross(n).Normalize()
	case pd.Norm() > 1e-6:
		e2 = pd.Normalize()
		e1 = n.Cross(e2).Normalize()
	default:
		return e1, e2, false
	}
	return e1, e2, true
}

package scene

import (
	"math"
	"math/rand"
	"sort"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/synthtext-mcp/internal/config"
)

// PlaneFinder discovers planar segments in an organized point cloud and fits
// text placement geometry onto them.
type PlaneFinder struct {
	cfg config.SceneConfig
}

// NewPlaneFinder returns a PlaneFinder using cfg.
func NewPlaneFinder(cfg config.SceneConfig) *PlaneFinder {
	return &PlaneFinder{cfg: cfg}
}

// FindRegions fits a plane to every sufficiently large segment and returns the
// segments that are planar and face the camera.
//
// Labels are processed in the given order, so the output order is stable. The
// plane fit is RANSAC over a subsample of the segment followed by a PCA refit
// on the inliers. A segment is dropped when too few of its points agree with
// the plane or when the plane is seen at a grazing angle.
func (f *PlaneFinder) FindRegions(xyz *PointCloud, seg *LabelMap, area map[int]int, labels []int) []Candidate {
	var out []Candidate
	for _, label := range labels {
		if area[label] < f.cfg.MinRegionArea {
			continue
		}
		pts := f.samplePoints(xyz, seg, label)
		if len(pts) < 3 {
			continue
		}
		plane, ok := f.fitPlane(pts, int64(label))
		if !ok {
			continue
		}
		out = append(out, Candidate{Label: label, Plane: plane})
	}
	return out
}

// samplePoints returns up to MaxSamplePoints valid points of a segment, taken
// at a regular stride so the sample covers the whole segment.
func (f *PlaneFinder) samplePoints(xyz *PointCloud, seg *LabelMap, label int) []r3.Vector {
	var all []r3.Vector
	for y := 0; y < seg.Height; y++ {
		for x := 0; x < seg.Width; x++ {
			if seg.At(x, y) == label && xyz.Valid(x, y) {
				all = append(all, xyz.At(x, y))
			}
		}
	}
	return strideSample(all, f.cfg.MaxSamplePoints)
}

func strideSample[T any](all []T, limit int) []T {
	if limit <= 0 || len(all) <= limit {
		return all
	}
	step := float64(len(all)) / float64(limit)
	out := make([]T, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, all[int(float64(i)*step)])
	}
	return out
}

func (f *PlaneFinder) fitPlane(pts []r3.Vector, seed int64) (Plane, bool) {
	zs := make([]float64, len(pts))
	for i, p := range pts {
		zs[i] = p.Z
	}
	sort.Float64s(zs)
	thresh := f.cfg.InlierThreshold * zs[len(zs)/2]

	//nolint:gosec
	rng := rand.New(rand.NewSource(seed))

	bestCount := 0
	var bestNormal r3.Vector
	var bestD float64
	for iter := 0; iter < f.cfg.RANSACIterations; iter++ {
		i, j, k := sampleThreeDistinct(rng, len(pts))
		n := pts[j].Sub(pts[i]).Cross(pts[k].Sub(pts[i]))
		if n.Norm() < 1e-12 {
			continue
		}
		n = n.Normalize()
		d := -n.Dot(pts[i])

		count := 0
		for _, p := range pts {
			if math.Abs(n.Dot(p)+d) <= thresh {
				count++
			}
		}
		if count > bestCount {
			bestCount, bestNormal, bestD = count, n, d
		}
	}

	if bestCount < 3 || float64(bestCount)/float64(len(pts)) < f.cfg.MinInlierFraction {
		return Plane{}, false
	}

	inliers := make([]r3.Vector, 0, bestCount)
	for _, p := range pts {
		if math.Abs(bestNormal.Dot(p)+bestD) <= thresh {
			inliers = append(inliers, p)
		}
	}

	normal, centroid, ok := pcaNormal(inliers)
	if !ok {
		normal, centroid = bestNormal, inliers[0]
	}
	// Face the camera, which sits at the origin.
	if normal.Dot(centroid) > 0 {
		normal = normal.Mul(-1)
	}

	cosView := math.Abs(normal.Dot(centroid)) / centroid.Norm()
	if math.Acos(math.Min(1, cosView))*180/math.Pi > f.cfg.MaxViewAngle {
		return Plane{}, false
	}

	return Plane{normal.X, normal.Y, normal.Z, -normal.Dot(centroid)}, true
}

// pcaNormal returns the least-variance direction of pts and their centroid.
func pcaNormal(pts []r3.Vector) (r3.Vector, r3.Vector, bool) {
	var c r3.Vector
	for _, p := range pts {
		c = c.Add(p)
	}
	c = c.Mul(1 / float64(len(pts)))

	var cov [6]float64 // xx, xy, xz, yy, yz, zz
	for _, p := range pts {
		d := p.Sub(c)
		cov[0] += d.X * d.X
		cov[1] += d.X * d.Y
		cov[2] += d.X * d.Z
		cov[3] += d.Y * d.Y
		cov[4] += d.Y * d.Z
		cov[5] += d.Z * d.Z
	}

	sym := mat.NewSymDense(3, []float64{
		cov[0], cov[1], cov[2],
		cov[1], cov[3], cov[4],
		cov[2], cov[4], cov[5],
	})
	var eigen mat.EigenSym
	if !eigen.Factorize(sym, true) {
		return r3.Vector{}, c, false
	}
	var vecs mat.Dense
	eigen.VectorsTo(&vecs)

	// Eigenvalues are ascending; column 0 is the normal.
	n := r3.Vector{X: vecs.At(0, 0), Y: vecs.At(1, 0), Z: vecs.At(2, 0)}
	if n.Norm() < 1e-12 {
		return r3.Vector{}, c, false
	}
	return n.Normalize(), c, true
}

func sampleThreeDistinct(rng *rand.Rand, n int) (int, int, int) {
	i := rng.Intn(n)
	j := rng.Intn(n - 1)
	if j >= i {
		j++
	}
	k := rng.Intn(n)
	for k == i || k == j {
		k = rng.Intn(n)
	}
	return i, j, k
}

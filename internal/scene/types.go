package scene

import (
	"fmt"
	"math"
	"sort"

	"github.com/golang/geo/r3"
)

// DepthMap holds per-pixel depth in scene units, row-major.
type DepthMap struct {
	Width  int
	Height int
	Depth  []float64
}

// NewDepthMap allocates a zero depth map.
func NewDepthMap(width, height int) *DepthMap {
	return &DepthMap{Width: width, Height: height, Depth: make([]float64, width*height)}
}

// At returns the depth at (x, y).
func (d *DepthMap) At(x, y int) float64 { return d.Depth[y*d.Width+x] }

// Set stores the depth at (x, y).
func (d *DepthMap) Set(x, y int, v float64) { d.Depth[y*d.Width+x] = v }

// PointCloud is an organized point cloud: one camera-frame point per pixel.
// Pixels without valid depth hold a point with Z <= 0.
type PointCloud struct {
	Width  int
	Height int
	Points []r3.Vector
}

// At returns the point for pixel (x, y).
func (p *PointCloud) At(x, y int) r3.Vector { return p.Points[y*p.Width+x] }

// Valid reports whether the point for pixel (x, y) has usable depth.
func (p *PointCloud) Valid(x, y int) bool {
	v := p.At(x, y)
	return v.Z > 0 && !math.IsInf(v.Z, 0) && !math.IsNaN(v.X+v.Y+v.Z)
}

// LabelMap holds a per-pixel segmentation label, row-major. Label 0 is
// background and never forms a region.
type LabelMap struct {
	Width  int
	Height int
	Labels []int
}

// NewLabelMap allocates an all-background label map.
func NewLabelMap(width, height int) *LabelMap {
	return &LabelMap{Width: width, Height: height, Labels: make([]int, width*height)}
}

// At returns the label at (x, y).
func (l *LabelMap) At(x, y int) int { return l.Labels[y*l.Width+x] }

// Set stores the label at (x, y).
func (l *LabelMap) Set(x, y, label int) { l.Labels[y*l.Width+x] = label }

// Areas counts pixels per label and returns the non-background labels in
// ascending order.
func (l *LabelMap) Areas() (map[int]int, []int) {
	area := make(map[int]int)
	for _, v := range l.Labels {
		if v != 0 {
			area[v]++
		}
	}
	labels := make([]int, 0, len(area))
	for k := range area {
		labels = append(labels, k)
	}
	sort.Ints(labels)
	return area, labels
}

// Plane holds coefficients (a, b, c, d) of a*x + b*y + c*z + d = 0 with a
// unit-length normal (a, b, c).
type Plane [4]float64

// Normal returns the plane normal.
func (p Plane) Normal() r3.Vector { return r3.Vector{X: p[0], Y: p[1], Z: p[2]} }

// Distance returns the signed distance of pt from the plane.
func (p Plane) Distance(pt r3.Vector) float64 {
	return p.Normal().Dot(pt) + p[3]
}

// Candidate is a segment that a plane fits well enough to carry text.
type Candidate struct {
	Label int
	Plane Plane
}

// CheckSize returns an error unless every map is width x height.
func CheckSize(width, height int, depth *DepthMap, seg *LabelMap) error {
	if depth.Width != width || depth.Height != height {
		return fmt.Errorf("depth map is %dx%d, image is %dx%d", depth.Width, depth.Height, width, height)
	}
	if seg.Width != width || seg.Height != height {
		return fmt.Errorf("segmentation is %dx%d, image is %dx%d", seg.Width, seg.Height, width, height)
	}
	return nil
}

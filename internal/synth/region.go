package synth

import (
	"image"

	"github.com/ironsheep/synthtext-mcp/internal/geometry"
	"github.com/ironsheep/synthtext-mcp/internal/scene"
)

// PlacementPad is the occupied border, in canvas pixels, around every
// placement mask.
const PlacementPad = 2

// Region is a planar surface ready for text placement. All fields are set
// together by PlanRegions and are read-only afterwards.
type Region struct {
	Label     int
	Plane     scene.Plane
	PlaceMask *image.Gray         // Canvas mask, 0 = free
	H         geometry.Homography // Image to canvas
	Hinv      geometry.Homography // Canvas to image
}

// PlanRegions asks finder for the placement geometry of every candidate and
// keeps the ones that have it, in candidate order.
func PlanRegions(finder RegionFinder, xyz *scene.PointCloud, seg *scene.LabelMap, cands []scene.Candidate) []Region {
	var out []Region
	for _, c := range cands {
		mask, h, hinv, ok := finder.PlacementMask(xyz, seg, c, PlacementPad)
		if !ok {
			continue
		}
		out = append(out, Region{
			Label:     c.Label,
			Plane:     c.Plane,
			PlaceMask: mask,
			H:         h,
			Hinv:      hinv,
		})
	}
	return out
}

// cloneMask returns a deep copy of m.
func cloneMask(m *image.Gray) *image.Gray {
	out := image.NewGray(m.Rect)
	for y := m.Rect.Min.Y; y < m.Rect.Max.Y; y++ {
		copy(out.Pix[out.PixOffset(m.Rect.Min.X, y):out.PixOffset(m.Rect.Max.X, y)],
			m.Pix[m.PixOffset(m.Rect.Min.X, y):m.PixOffset(m.Rect.Max.X, y)])
	}
	return out
}

// claim marks every pixel covered by glyphs as occupied in collision.
func claim(collision, glyphs *image.Gray) {
	r := collision.Rect.Intersect(glyphs.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if glyphs.Pix[glyphs.PixOffset(x, y)] > 0 {
				collision.Pix[collision.PixOffset(x, y)] = 255
			}
		}
	}
}

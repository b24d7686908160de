package synth

import (
	"context"
	"image"

	"github.com/ironsheep/synthtext-mcp/internal/geometry"
	"github.com/ironsheep/synthtext-mcp/internal/scene"
)

// Projector back-projects a depth map into camera-frame points.
type Projector interface {
	DepthToXYZ(d *scene.DepthMap) *scene.PointCloud
}

// RegionFinder discovers planar surfaces and unrolls them into placement
// canvases.
type RegionFinder interface {
	// FindRegions returns the labels whose segments are planar enough to
	// carry text, with their plane coefficients.
	FindRegions(xyz *scene.PointCloud, seg *scene.LabelMap, area map[int]int, labels []int) []scene.Candidate

	// PlacementMask returns the candidate's placement mask (0 = free) with a
	// border of pad occupied pixels, the image-to-canvas homography h and the
	// canvas-to-image homography hinv. ok is false when no usable canvas
	// exists.
	PlacementMask(xyz *scene.PointCloud, seg *scene.LabelMap, cand scene.Candidate, pad int) (mask *image.Gray, h, hinv geometry.Homography, ok bool)
}

// Glyphs is one rendered block of text on a region's canvas.
type Glyphs struct {
	Mask   *image.Gray    // Glyph coverage, same bounds as the collision mask
	Boxes  geometry.Boxes // One box per non-whitespace rune, canvas coordinates
	Text   string
	Curved bool // Laid out on a curved baseline
}

// GlyphRenderer lays text out on the free pixels of a collision mask.
//
// Render returns nil, nil when the text does not fit. It should return
// ctx.Err() once ctx is done.
type GlyphRenderer interface {
	Render(ctx context.Context, collision *image.Gray) (*Glyphs, error)
}

// Colorizer blends glyph masks (image-sized alpha) into img.
//
// minHeights holds the smallest character height of each mask in pixels.
// Implementations must return a new image and leave img untouched.
type Colorizer interface {
	Colorize(img *image.NRGBA, masks []*image.Gray, minHeights []float64) (*image.NRGBA, error)
}

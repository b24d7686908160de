package synth

import (
	"context"
	"image"
	"image/color"
	"unicode"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/synthtext-mcp/internal/config"
	"github.com/ironsheep/synthtext-mcp/internal/geometry"
	"github.com/ironsheep/synthtext-mcp/internal/random"
	"github.com/ironsheep/synthtext-mcp/internal/scene"
)

const (
	testWidth  = 100
	testHeight = 80
	charWidth  = 10
)

// stubFinder reports n frontal regions covering the whole image, with identity
// homographies. Labels listed in reject have no placement geometry.
type stubFinder struct {
	n      int
	reject map[int]bool
}

func (f *stubFinder) FindRegions(*scene.PointCloud, *scene.LabelMap, map[int]int, []int) []scene.Candidate {
	out := make([]scene.Candidate, f.n)
	for i := range out {
		out[i] = scene.Candidate{Label: i + 1, Plane: scene.Plane{0, 0, -1, 1}}
	}
	return out
}

func (f *stubFinder) PlacementMask(_ *scene.PointCloud, _ *scene.LabelMap, c scene.Candidate, _ int) (*image.Gray, geometry.Homography, geometry.Homography, bool) {
	if f.reject[c.Label] {
		return nil, geometry.Homography{}, geometry.Homography{}, false
	}
	return image.NewGray(image.Rect(0, 0, testWidth, testHeight)), geometry.Identity(), geometry.Identity(), true
}

// stubGlyphs places text as a row of charWidth x height boxes at the first
// free spot of the collision mask, cycling through heights per call.
type stubGlyphs struct {
	text     string
	heights  []float64
	err      error
	extraBox bool
	block    bool

	calls int
	seen  []*image.Gray
}

func (s *stubGlyphs) Render(ctx context.Context, collision *image.Gray) (*Glyphs, error) {
	s.seen = append(s.seen, cloneMask(collision))
	s.calls++
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}

	n := 0
	for _, r := range s.text {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	h := int(s.heights[(s.calls-1)%len(s.heights)])
	w := n * charWidth

	x0, y0, ok := findFree(collision, w, h)
	if !ok {
		return nil, nil
	}

	mask := image.NewGray(collision.Rect)
	boxes := make(geometry.Boxes, 0, n+1)
	for i := 0; i < n; i++ {
		l := float64(x0 + i*charWidth)
		t := float64(y0)
		boxes = append(boxes, geometry.Quad{
			{X: l, Y: t}, {X: l + charWidth, Y: t},
			{X: l + charWidth, Y: t + float64(h)}, {X: l, Y: t + float64(h)},
		})
	}
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			mask.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	if s.extraBox {
		boxes = append(boxes, boxes[0])
	}
	return &Glyphs{Mask: mask, Boxes: boxes, Text: s.text}, nil
}

func findFree(m *image.Gray, w, h int) (int, int, bool) {
	b := m.Bounds()
	for y := b.Min.Y; y+h <= b.Max.Y; y++ {
		for x := b.Min.X; x+w <= b.Max.X; x++ {
			if rectFree(m, x, y, w, h) {
				return x, y, true
			}
		}
	}
	return 0, 0, false
}

func rectFree(m *image.Gray, x0, y0, w, h int) bool {
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			if m.GrayAt(x, y).Y != 0 {
				return false
			}
		}
	}
	return true
}

// stubColorizer darkens the image under each mask.
type stubColorizer struct{}

func (stubColorizer) Colorize(img *image.NRGBA, masks []*image.Gray, _ []float64) (*image.NRGBA, error) {
	out := imaging.Clone(img)
	for _, m := range masks {
		b := m.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				a := uint32(m.GrayAt(x, y).Y)
				c := out.NRGBAAt(x, y)
				c.R = uint8(uint32(c.R) * (255 - a) / 255)
				c.G = uint8(uint32(c.G) * (255 - a) / 255)
				c.B = uint8(uint32(c.B) * (255 - a) / 255)
				out.SetNRGBA(x, y, c)
			}
		}
	}
	return out, nil
}

// scriptedSource replays uniform draws and behaves like random.Fixed
// otherwise.
type scriptedSource struct {
	random.Fixed
	floats []float64
	i      int
}

func (s *scriptedSource) Float64() float64 {
	v := s.floats[s.i%len(s.floats)]
	s.i++
	return v
}

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.MaxTime = 0
	cfg.Debug = true
	return cfg
}

// createTestInputs returns a uniform gray image with matching depth and
// segmentation maps.
func createTestInputs() (*image.NRGBA, *scene.DepthMap, *scene.LabelMap) {
	img := image.NewNRGBA(image.Rect(0, 0, testWidth, testHeight))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	return img, scene.NewDepthMap(testWidth, testHeight), scene.NewLabelMap(testWidth, testHeight)
}

func newTestRenderer(cfg config.Config, finder RegionFinder, glyphs GlyphRenderer, opts ...Option) (*Renderer, error) {
	return New(cfg, Deps{
		Projector: scene.PinholeProjector{},
		Finder:    finder,
		Glyphs:    glyphs,
		Colorizer: stubColorizer{},
	}, opts...)
}

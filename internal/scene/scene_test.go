package scene

import (
	"fmt"
	"math"
	"testing"

	"github.com/ironsheep/synthtext-mcp/internal/config"
	"github.com/ironsheep/synthtext-mcp/internal/geometry"
)

// createPlaneScene builds a width x height scene with constant depth z and a
// rectangular segment labelled 1 spanning [x0,x1) x [y0,y1).
func createPlaneScene(width, height int, z float64, x0, y0, x1, y1 int) (*DepthMap, *LabelMap) {
	d := NewDepthMap(width, height)
	seg := NewLabelMap(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			d.Set(x, y, z)
			if x >= x0 && x < x1 && y >= y0 && y < y1 {
				seg.Set(x, y, 1)
			}
		}
	}
	return d, seg
}

func testSceneConfig() config.SceneConfig {
	cfg := config.DefaultConfig().Scene
	cfg.MinRegionArea = 100
	cfg.MinPlacementPixels = 100
	return cfg
}

func TestDepthToXYZ(t *testing.T) {
	cam := Camera{Fx: 100, Fy: 100, Cx: 50, Cy: 40}
	d := NewDepthMap(101, 81)
	d.Set(50, 40, 2)
	d.Set(100, 80, 3)

	pc := cam.DepthToXYZ(d)

	if p := pc.At(50, 40); p.X != 0 || p.Y != 0 || p.Z != 2 {
		t.Errorf("principal point: got %v, want (0,0,2)", p)
	}
	p := pc.At(100, 80)
	if math.Abs(p.X-1.5) > 1e-12 || math.Abs(p.Y-1.2) > 1e-12 || p.Z != 3 {
		t.Errorf("corner: got %v, want (1.5,1.2,3)", p)
	}
	if pc.Valid(0, 0) {
		t.Error("zero depth should be invalid")
	}
}

func TestDefaultCamera_FocalFallback(t *testing.T) {
	cam := DefaultCamera(640, 480, 0)
	if cam.Fx != 640 || cam.Fy != 640 {
		t.Errorf("focal: got %v/%v, want 640", cam.Fx, cam.Fy)
	}
	if cam.Cx != 319.5 || cam.Cy != 239.5 {
		t.Errorf("principal point: got (%v,%v)", cam.Cx, cam.Cy)
	}
}

func TestAreas(t *testing.T) {
	seg := NewLabelMap(4, 2)
	seg.Labels = []int{0, 3, 3, 1, 1, 0, 3, 0}
	area, labels := seg.Areas()
	if len(labels) != 2 || labels[0] != 1 || labels[1] != 3 {
		t.Fatalf("labels: got %v, want [1 3]", labels)
	}
	if area[1] != 2 || area[3] != 3 {
		t.Errorf("area: got %v", area)
	}
	if _, ok := area[0]; ok {
		t.Error("background should not be counted")
	}
}

func TestCheckSize(t *testing.T) {
	d, seg := createPlaneScene(10, 8, 1, 0, 0, 1, 1)
	if err := CheckSize(10, 8, d, seg); err != nil {
		t.Errorf("matching sizes: %v", err)
	}
	if err := CheckSize(8, 10, d, seg); err == nil {
		t.Error("mismatched size should fail")
	}
}

func TestFindRegions_FrontalPlane(t *testing.T) {
	d, seg := createPlaneScene(80, 60, 2, 10, 10, 70, 50)
	xyz := PinholeProjector{}.DepthToXYZ(d)
	area, labels := seg.Areas()

	f := NewPlaneFinder(testSceneConfig())
	cands := f.FindRegions(xyz, seg, area, labels)
	if len(cands) != 1 {
		t.Fatalf("got %d candidates, want 1", len(cands))
	}
	c := cands[0]
	if c.Label != 1 {
		t.Errorf("label: got %d, want 1", c.Label)
	}
	// Facing the camera: normal is (0,0,-1) and the plane is z = 2.
	n := c.Plane.Normal()
	if math.Abs(n.Z+1) > 1e-6 {
		t.Errorf("normal: got %v, want (0,0,-1)", n)
	}
	if math.Abs(c.Plane[3]-2) > 1e-6 {
		t.Errorf("offset: got %v, want 2", c.Plane[3])
	}
}

func TestFindRegions_SkipsSmallSegments(t *testing.T) {
	d, seg := createPlaneScene(40, 40, 2, 0, 0, 5, 5)
	xyz := PinholeProjector{}.DepthToXYZ(d)
	area, labels := seg.Areas()

	f := NewPlaneFinder(testSceneConfig())
	if cands := f.FindRegions(xyz, seg, area, labels); len(cands) != 0 {
		t.Errorf("got %d candidates for a 25 pixel segment, want 0", len(cands))
	}
}

func TestFindRegions_RejectsNonPlanar(t *testing.T) {
	d, seg := createPlaneScene(60, 60, 2, 0, 0, 60, 60)
	// A checkerboard of two depths far apart is not a plane.
	for y := 0; y < 60; y++ {
		for x := 0; x < 60; x++ {
			if (x/3+y/3)%2 == 0 {
				d.Set(x, y, 6)
			}
		}
	}
	xyz := PinholeProjector{}.DepthToXYZ(d)
	area, labels := seg.Areas()

	f := NewPlaneFinder(testSceneConfig())
	if cands := f.FindRegions(xyz, seg, area, labels); len(cands) != 0 {
		t.Errorf("got %d candidates for a non-planar segment, want 0", len(cands))
	}
}

func TestPlacementMask_FrontalPlane(t *testing.T) {
	d, seg := createPlaneScene(80, 60, 2, 10, 10, 70, 50)
	xyz := PinholeProjector{}.DepthToXYZ(d)
	area, labels := seg.Areas()

	f := NewPlaneFinder(testSceneConfig())
	cands := f.FindRegions(xyz, seg, area, labels)
	if len(cands) != 1 {
		t.Fatalf("got %d candidates, want 1", len(cands))
	}

	const pad = 2
	mask, h, hinv, ok := f.PlacementMask(xyz, seg, cands[0], pad)
	if !ok {
		t.Fatal("PlacementMask failed for a frontal rectangle")
	}

	b := mask.Bounds()
	// The canvas should be close to the 60x40 segment plus padding.
	if b.Dx() < 55 || b.Dx() > 70 || b.Dy() < 35 || b.Dy() > 50 {
		t.Errorf("canvas size: got %dx%d, want about 65x45", b.Dx(), b.Dy())
	}

	// Padding stays occupied.
	for x := 0; x < b.Dx(); x++ {
		if mask.GrayAt(x, 0).Y != 255 || mask.GrayAt(x, b.Dy()-1).Y != 255 {
			t.Fatalf("padding at column %d is free", x)
		}
	}

	// Every free canvas pixel lands inside the segment.
	nfree := 0
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if mask.GrayAt(x, y).Y != 0 {
				continue
			}
			nfree++
			p := hinv.Apply(geometry.Point{X: float64(x), Y: float64(y)})
			u, v := int(math.Round(p.X)), int(math.Round(p.Y))
			if seg.At(u, v) != 1 {
				t.Fatalf("free pixel (%d,%d) maps to (%d,%d) outside the segment", x, y, u, v)
			}
		}
	}
	if nfree < 1500 {
		t.Errorf("free pixels: got %d, want most of the 2400 pixel segment", nfree)
	}

	// Text laid out left to right on the canvas reads left to right in the image.
	left := hinv.Apply(geometry.Point{X: 10, Y: 20})
	right := hinv.Apply(geometry.Point{X: 40, Y: 20})
	if right.X <= left.X {
		t.Errorf("canvas x axis is mirrored: %v -> %v", left, right)
	}

	// h and hinv are inverses.
	p := geometry.Point{X: 33, Y: 21}
	q := h.Apply(hinv.Apply(p))
	if p.Dist(q) > 1e-6 {
		t.Errorf("h(hinv(p)): got %v, want %v", q, p)
	}
}

func TestPlacementMask_TooSmall(t *testing.T) {
	d, seg := createPlaneScene(80, 60, 2, 10, 10, 70, 50)
	xyz := PinholeProjector{}.DepthToXYZ(d)
	area, labels := seg.Areas()

	cfg := testSceneConfig()
	f := NewPlaneFinder(cfg)
	cands := f.FindRegions(xyz, seg, area, labels)
	if len(cands) != 1 {
		t.Fatalf("got %d candidates, want 1", len(cands))
	}

	cfg.MinPlacementPixels = 10000
	f = NewPlaneFinder(cfg)
	if _, _, _, ok := f.PlacementMask(xyz, seg, cands[0], 2); ok {
		t.Error("PlacementMask should fail below MinPlacementPixels")
	}
}

func TestPlaneBasis(t *testing.T) {
	tests := []struct {
		name string
		n    [3]float64
	}{
		{"frontal", [3]float64{0, 0, -1}},
		{"floor", [3]float64{0, -1, 0}},
		{"floor sloping away", [3]float64{0, -1, 0.05}},
		{"floor sloping up", [3]float64{0, -1, -0.05}},
		{"side wall", [3]float64{-1, 0, 0}},
		{"slanted", [3]float64{0.3, -0.2, -0.93}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Plane{tt.n[0], tt.n[1], tt.n[2], 0}.Normal().Normalize()
			e1, e2, ok := planeBasis(n)
			if !ok {
				t.Fatal("planeBasis failed")
			}
			if math.Abs(e1.Dot(n)) > 1e-9 || math.Abs(e2.Dot(n)) > 1e-9 || math.Abs(e1.Dot(e2)) > 1e-9 {
				t.Errorf("basis not orthogonal: e1=%v e2=%v n=%v", e1, e2, n)
			}
			if c := e1.Cross(e2).Add(n); c.Norm() > 1e-9 {
				t.Errorf("e1 x e2 = %v, want -n = %v", e1.Cross(e2), n.Mul(-1))
			}
			if e1.X < 0 {
				t.Errorf("e1 points left: %v", e1)
			}
		})
	}
}

// createFloorScene builds a width x height floor Y = camY - tilt*Z seen by
// DefaultCamera, with segment 1 covering rows [y0, height).
func createFloorScene(width, height int, camY, tilt float64, y0 int) (*DepthMap, *LabelMap) {
	cam := DefaultCamera(width, height, 0)
	d := NewDepthMap(width, height)
	seg := NewLabelMap(width, height)
	for y := y0; y < height; y++ {
		z := camY / ((float64(y)-cam.Cy)/cam.Fy + tilt)
		for x := 0; x < width; x++ {
			d.Set(x, y, z)
			seg.Set(x, y, 1)
		}
	}
	return d, seg
}

func TestPlacementMask_Orientation(t *testing.T) {
	for _, tilt := range []float64{-0.1, -0.05, -0.02, 0, 0.02, 0.3} {
		t.Run(fmt.Sprintf("tilt %+.2f", tilt), func(t *testing.T) {
			d, seg := createFloorScene(120, 90, 1.5, tilt, 70)
			xyz := PinholeProjector{}.DepthToXYZ(d)
			area, labels := seg.Areas()

			cfg := testSceneConfig()
			cfg.MaxViewAngle = 89
			f := NewPlaneFinder(cfg)
			cands := f.FindRegions(xyz, seg, area, labels)
			if len(cands) != 1 {
				t.Fatalf("got %d candidates, want 1", len(cands))
			}
			mask, _, hinv, ok := f.PlacementMask(xyz, seg, cands[0], 2)
			if !ok {
				t.Fatal("PlacementMask failed for a floor")
			}

			b := mask.Bounds()
			c := geometry.Point{X: float64(b.Dx()) / 2, Y: float64(b.Dy()) / 2}
			p0 := hinv.Apply(c)
			dx := hinv.Apply(geometry.Point{X: c.X + 1, Y: c.Y}).Sub(p0)
			dy := hinv.Apply(geometry.Point{X: c.X, Y: c.Y + 1}).Sub(p0)

			if det := dx.X*dy.Y - dx.Y*dy.X; det <= 0 {
				t.Errorf("canvas is mirrored: det %v (right %v, down %v)", det, dx, dy)
			}
			if dx.X <= 0 {
				t.Errorf("canvas right maps to image %v", dx)
			}
			if dy.Y <= 0 {
				t.Errorf("canvas down maps to image %v", dy)
			}
		})
	}
}

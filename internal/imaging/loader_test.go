package imaging

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// writeTestPNG encodes img into dir and returns its path.
func writeTestPNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// createTestImage writes a uniform color image and returns its path.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	return writeTestPNG(t, t.TempDir(), "image.png", createInMemoryImage(width, height, c))
}

func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 100, 100, color.RGBA{255, 0, 0, 255})

	img1, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	bounds := img1.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 100 {
		t.Errorf("unexpected dimensions: got %dx%d, want 100x100", bounds.Dx(), bounds.Dy())
	}

	// Second load should return cached image
	img2, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load did not return cached image")
	}
	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}
}

func TestImageCache_Load_Errors(t *testing.T) {
	cache := NewImageCache()
	if _, err := cache.Load("/nonexistent/path/to/image.png"); err == nil {
		t.Error("Load should fail for non-existent file")
	}

	path := filepath.Join(t.TempDir(), "invalid.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if _, err := cache.Load(path); err == nil {
		t.Error("Load should fail for invalid image data")
	}
	if cache.Len() != 0 {
		t.Errorf("failed loads were cached: Len = %d", cache.Len())
	}
}

func TestImageCache_ClearAndEvict(t *testing.T) {
	cache := NewImageCache()
	a := createTestImage(t, 10, 10, color.RGBA{0, 255, 0, 255})
	b := createTestImage(t, 10, 10, color.RGBA{0, 0, 255, 255})
	for _, p := range []string{a, b} {
		if _, err := cache.Load(p); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
	}

	cache.Evict(a)
	cache.Evict("/nonexistent/path")
	if cache.Len() != 1 {
		t.Errorf("after Evict: Len = %d, want 1", cache.Len())
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("after Clear: Len = %d, want 0", cache.Len())
	}
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 50, 50, color.RGBA{128, 128, 128, 255})

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(imgPath); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load error: %v", err)
	}
}

func TestLoadDepth(t *testing.T) {
	dir := t.TempDir()

	g16 := image.NewGray16(image.Rect(0, 0, 4, 3))
	g16.SetGray16(1, 2, color.Gray16{Y: 2500})
	g8 := image.NewGray(image.Rect(0, 0, 4, 3))
	g8.SetGray(3, 0, color.Gray{Y: 200})

	tests := []struct {
		name  string
		img   image.Image
		scale float64
		x, y  int
		want  float64
	}{
		{"16-bit millimetres", g16, 0.001, 1, 2, 2.5},
		{"8-bit", g8, 0.01, 3, 0, 2.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestPNG(t, dir, tt.name+".png", tt.img)
			d, err := LoadDepth(path, tt.scale)
			if err != nil {
				t.Fatalf("LoadDepth failed: %v", err)
			}
			if d.Width != 4 || d.Height != 3 {
				t.Errorf("size: got %dx%d, want 4x3", d.Width, d.Height)
			}
			if got := d.At(tt.x, tt.y); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("At(%d,%d) = %g, want %g", tt.x, tt.y, got, tt.want)
			}
			if d.At(0, 1) != 0 {
				t.Errorf("missing depth should stay zero, got %g", d.At(0, 1))
			}
		})
	}
}

func TestLoadDepth_Errors(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), "depth.png", image.NewGray16(image.Rect(0, 0, 2, 2)))
	if _, err := LoadDepth(path, 0); err == nil {
		t.Error("LoadDepth should reject a zero scale")
	}
	if _, err := LoadDepth("/nonexistent/depth.png", 1); err == nil {
		t.Error("LoadDepth should fail for non-existent file")
	}
}

func TestLoadLabels(t *testing.T) {
	dir := t.TempDir()

	gray := image.NewGray(image.Rect(0, 0, 3, 2))
	gray.SetGray(2, 1, color.Gray{Y: 7})

	rgb := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for i := range rgb.Pix {
		rgb.Pix[i] = 0xff
	}
	rgb.SetNRGBA(2, 1, color.NRGBA{R: 0x01, G: 0x02, B: 0x03, A: 0xff})

	tests := []struct {
		name     string
		img      image.Image
		want     int
		wantRest int
	}{
		{"gray", gray, 7, 0},
		{"packed rgb", rgb, 0x010203, 0xffffff},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestPNG(t, dir, tt.name+".png", tt.img)
			l, err := LoadLabels(path)
			if err != nil {
				t.Fatalf("LoadLabels failed: %v", err)
			}
			if got := l.At(2, 1); got != tt.want {
				t.Errorf("At(2,1) = %#x, want %#x", got, tt.want)
			}
			if got := l.At(0, 0); got != tt.wantRest {
				t.Errorf("At(0,0) = %#x, want %#x", got, tt.wantRest)
			}
		})
	}
}

func TestLoadScene(t *testing.T) {
	dir := t.TempDir()
	rgb := writeTestPNG(t, dir, "rgb.png", createInMemoryImage(6, 4, color.RGBA{10, 20, 30, 255}))
	depth := writeTestPNG(t, dir, "depth.png", image.NewGray16(image.Rect(0, 0, 6, 4)))
	seg := image.NewGray(image.Rect(0, 0, 6, 4))
	for x := 0; x < 3; x++ {
		for y := 0; y < 4; y++ {
			seg.SetGray(x, y, color.Gray{Y: 1})
		}
	}
	segPath := writeTestPNG(t, dir, "seg.png", seg)

	s, err := LoadScene(NewImageCache(), rgb, depth, segPath, 0.001)
	if err != nil {
		t.Fatalf("LoadScene failed: %v", err)
	}
	if s.Area[1] != 12 {
		t.Errorf("areas: got %v, want 12 pixels for label 1", s.Area)
	}
	if len(s.Labels) != 1 || s.Labels[0] != 1 {
		t.Errorf("labels: got %v, want [1]", s.Labels)
	}

	small := writeTestPNG(t, dir, "small.png", image.NewGray16(image.Rect(0, 0, 5, 4)))
	if _, err := LoadScene(NewImageCache(), rgb, small, segPath, 0.001); err == nil {
		t.Error("LoadScene should fail when the depth size differs")
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.png")
	img := createInMemoryImage(8, 5, color.RGBA{200, 100, 50, 255})

	if err := SavePNG(path, img); err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}
	got, err := NewImageCache().Load(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.Bounds().Dx() != 8 || got.Bounds().Dy() != 5 {
		t.Errorf("saved size: got %v, want 8x5", got.Bounds())
	}
	r, g, b, _ := got.At(3, 3).RGBA()
	if r>>8 != 200 || g>>8 != 100 || b>>8 != 50 {
		t.Errorf("saved color: got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

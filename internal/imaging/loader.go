package imaging

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/synthtext-mcp/internal/scene"
)

// ImageCache provides thread-safe caching of decoded scene images.
//
// The cache stores decoded image.Image objects keyed by their file path. A
// background image is usually rendered many times with different seeds, so
// subsequent Load() calls for the same path return the cached copy without
// disk I/O.
//
// Cached images remain in memory until explicitly removed via Evict() or
// Clear(). Callers must treat returned images as read-only.
//
//	cache := imaging.NewImageCache()
//	img, err := cache.Load("/data/scenes/kitchen.jpg")
//	if err != nil {
//	    log.Fatal(err)
//	}
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or decodes it from disk. PNG, JPEG
// and GIF are supported.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another goroutine may have won the race.
	if cached, ok := c.images[path]; ok {
		return cached, nil
	}
	c.images[path] = img
	return img, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images = make(map[string]image.Image)
}

// Evict removes one image from the cache. Evicting an unknown path is a no-op.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.images, path)
}

// Len reports the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// LoadDepth reads a single-channel depth image. Each stored value, 16-bit or
// 8-bit, is multiplied by scale to give depth in scene units; zero stays zero
// and marks missing depth. Color images are reduced to their 16-bit luminance.
func LoadDepth(path string, scale float64) (*scene.DepthMap, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("depth scale must be positive, got %g", scale)
	}
	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	d := scene.NewDepthMap(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			var v uint16
			switch src := img.(type) {
			case *image.Gray16:
				v = src.Gray16At(b.Min.X+x, b.Min.Y+y).Y
			case *image.Gray:
				v = uint16(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			default:
				v = color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16).Y
			}
			d.Set(x, y, float64(v)*scale)
		}
	}
	return d, nil
}

// LoadLabels reads a segmentation image. Gray and paletted images carry the
// label directly; for color images the label is the packed 0xRRGGBB value.
func LoadLabels(path string) (*scene.LabelMap, error) {
	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	l := scene.NewLabelMap(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			px, py := b.Min.X+x, b.Min.Y+y
			var label int
			switch src := img.(type) {
			case *image.Gray:
				label = int(src.GrayAt(px, py).Y)
			case *image.Gray16:
				label = int(src.Gray16At(px, py).Y)
			case *image.Paletted:
				label = int(src.ColorIndexAt(px, py))
			default:
				c := color.NRGBAModel.Convert(img.At(px, py)).(color.NRGBA)
				label = int(c.R)<<16 | int(c.G)<<8 | int(c.B)
			}
			l.Set(x, y, label)
		}
	}
	return l, nil
}

// Scene bundles the inputs of one render call.
type Scene struct {
	RGB    image.Image
	Depth  *scene.DepthMap
	Seg    *scene.LabelMap
	Area   map[int]int
	Labels []int
}

// LoadScene loads a color image through the cache together with its depth and
// segmentation maps, and checks that all three have the same size.
func LoadScene(cache *ImageCache, rgbPath, depthPath, segPath string, depthScale float64) (*Scene, error) {
	rgb, err := cache.Load(rgbPath)
	if err != nil {
		return nil, err
	}
	depth, err := LoadDepth(depthPath, depthScale)
	if err != nil {
		return nil, fmt.Errorf("depth: %w", err)
	}
	seg, err := LoadLabels(segPath)
	if err != nil {
		return nil, fmt.Errorf("segmentation: %w", err)
	}

	b := rgb.Bounds()
	if err := scene.CheckSize(b.Dx(), b.Dy(), depth, seg); err != nil {
		return nil, err
	}
	area, labels := seg.Areas()
	return &Scene{RGB: rgb, Depth: depth, Seg: seg, Area: area, Labels: labels}, nil
}

// SavePNG writes img to path, creating parent directories as needed.
func SavePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", filepath.Base(path), err)
	}
	return nil
}

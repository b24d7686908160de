package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/synthtext-mcp/internal/geometry"
)

// CropResult contains an encoded image returned to MCP clients.
type CropResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// CropQuad extracts the axis-aligned bounds of q, grown by pad pixels on each
// side and clipped to the image, and scales the crop by scale. It fails when
// the quad lies entirely outside the image.
func CropQuad(img image.Image, q geometry.Quad, pad int, scale float64) (*image.NRGBA, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("scale must be positive, got %g", scale)
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range q {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	r := image.Rect(
		int(math.Floor(minX))-pad, int(math.Floor(minY))-pad,
		int(math.Ceil(maxX))+pad, int(math.Ceil(maxY))+pad,
	).Intersect(img.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("box (%.1f,%.1f)-(%.1f,%.1f) outside image bounds %v", minX, minY, maxX, maxY, img.Bounds())
	}

	crop := imaging.Crop(img, r)
	if scale != 1.0 {
		w := max(1, int(math.Round(float64(r.Dx())*scale)))
		h := max(1, int(math.Round(float64(r.Dy())*scale)))
		crop = imaging.Resize(crop, w, h, imaging.Lanczos)
	}
	return crop, nil
}

// Thumbnail scales img down to fit within size x size. Smaller images are
// returned unscaled.
func Thumbnail(img image.Image, size int) *image.NRGBA {
	return imaging.Fit(img, size, size, imaging.Lanczos)
}

// Encode returns img as a base64 PNG.
func Encode(img image.Image) (*CropResult, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	b := img.Bounds()
	return &CropResult{
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

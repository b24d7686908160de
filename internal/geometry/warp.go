package geometry

import (
	"image"
	"math"
)

// WarpPerspective resamples src onto a width x height canvas.
//
// h is treated as the map from output coordinates to source coordinates (an
// inverse-mapped warp), so every output pixel (x, y) reads src at h(x, y) with
// bilinear interpolation. Samples that fall outside src contribute zero.
// The returned image has its origin at (0,0); src is not modified.
func WarpPerspective(src *image.Gray, h Homography, width, height int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, width, height))
	sb := src.Bounds()
	sw, sh := sb.Dx(), sb.Dy()

	// Source pixel accessor in src-relative coordinates; zero outside.
	at := func(x, y int) float64 {
		if x < 0 || y < 0 || x >= sw || y >= sh {
			return 0
		}
		return float64(src.Pix[y*src.Stride+x])
	}

	for y := 0; y < height; y++ {
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < width; x++ {
			p := h.Apply(Point{X: float64(x), Y: float64(y)})
			sx := p.X - float64(sb.Min.X)
			sy := p.Y - float64(sb.Min.Y)
			if math.IsNaN(sx) || math.IsNaN(sy) || sx <= -1 || sy <= -1 || sx >= float64(sw) || sy >= float64(sh) {
				continue
			}

			x0 := int(math.Floor(sx))
			y0 := int(math.Floor(sy))
			fx := sx - float64(x0)
			fy := sy - float64(y0)

			v := (1-fx)*(1-fy)*at(x0, y0) +
				fx*(1-fy)*at(x0+1, y0) +
				(1-fx)*fy*at(x0, y0+1) +
				fx*fy*at(x0+1, y0+1)

			row[x] = uint8(math.Min(255, math.Round(v)))
		}
	}
	return dst
}

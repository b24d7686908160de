// Package colorize blends glyph masks into an image with a text color that
// contrasts with the background beneath it.
//
// Colors are chosen in HCL space and blended in CIE L*a*b* with go-colorful.
// An optional drop shadow is rendered from a blurred, offset copy of the mask.
package colorize

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/synthtext-mcp/internal/config"
	"github.com/ironsheep/synthtext-mcp/internal/random"
)

// Colorizer is the default synth.Colorizer.
type Colorizer struct {
	cfg config.ColorConfig
	rng random.Source
}

// New returns a Colorizer.
func New(cfg config.ColorConfig, rng random.Source) *Colorizer {
	return &Colorizer{cfg: cfg, rng: rng}
}

// Colorize returns a copy of img with every mask blended in. Masks are
// image-sized alpha maps; minHeights holds the smallest character height of
// each mask and scales its shadow.
func (c *Colorizer) Colorize(img *image.NRGBA, masks []*image.Gray, minHeights []float64) (*image.NRGBA, error) {
	if len(masks) != len(minHeights) {
		return nil, fmt.Errorf("%d masks but %d heights", len(masks), len(minHeights))
	}
	out := imaging.Clone(img)
	b := out.Bounds()
	for i, m := range masks {
		if m.Bounds().Dx() != b.Dx() || m.Bounds().Dy() != b.Dy() {
			return nil, fmt.Errorf("mask %d is %v, image is %v", i, m.Bounds().Size(), b.Size())
		}
		bg, ok := meanUnder(out, m)
		if !ok {
			continue
		}
		fg := c.textColor(bg)
		if c.rng.Float64() < c.cfg.ShadowProb {
			c.shadow(out, m, bg, minHeights[i])
		}
		blend(out, m, fg, c.cfg.Opacity)
	}
	return out, nil
}

// textColor picks a color whose HCL lightness differs from bg by at least
// MinContrast, with a hue roughly opposite to the background.
func (c *Colorizer) textColor(bg colorful.Color) colorful.Color {
	h, ch, l := bg.Hcl()

	delta := c.cfg.MinContrast + (1-c.cfg.MinContrast)*0.5*c.rng.Float64()
	if l > 0.5 {
		l = math.Max(0, l-delta)
	} else {
		l = math.Min(1, l+delta)
	}
	h = math.Mod(h+180+30*c.rng.NormFloat64()+360, 360)
	ch = math.Min(0.6, ch*0.5+0.3*c.rng.Float64())
	return colorful.Hcl(h, ch, l).Clamped()
}

// shadow darkens the image under a blurred copy of m offset down and right.
func (c *Colorizer) shadow(img *image.NRGBA, m *image.Gray, bg colorful.Color, minH float64) {
	b := img.Bounds()
	off := max(1, int(math.Round(minH/15)))
	blurred := imaging.Blur(m, math.Max(1, minH/10))
	shifted := imaging.Paste(imaging.New(b.Dx(), b.Dy(), color.Black), blurred, image.Pt(off, off))

	h, ch, l := bg.Hcl()
	dark := colorful.Hcl(h, ch, l*0.3).Clamped()
	alpha := image.NewGray(shifted.Bounds())
	for i := range alpha.Pix {
		alpha.Pix[i] = shifted.Pix[4*i] / 2
	}
	blend(img, alpha, dark, 1)
}

// meanUnder returns the mean color of img where m is non-zero.
func meanUnder(img *image.NRGBA, m *image.Gray) (colorful.Color, bool) {
	var r, g, bl, w float64
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			a := float64(m.Pix[y*m.Stride+x]) / 255
			if a == 0 {
				continue
			}
			p := img.Pix[y*img.Stride+4*x:]
			r += a * float64(p[0])
			g += a * float64(p[1])
			bl += a * float64(p[2])
			w += a
		}
	}
	if w == 0 {
		return colorful.Color{}, false
	}
	return colorful.Color{R: r / w / 255, G: g / w / 255, B: bl / w / 255}, true
}

// blend mixes fg into img in L*a*b* with weight opacity * m/255 per pixel.
func blend(img *image.NRGBA, m *image.Gray, fg colorful.Color, opacity float64) {
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			a := opacity * float64(m.Pix[y*m.Stride+x]) / 255
			if a == 0 {
				continue
			}
			p := img.Pix[y*img.Stride+4*x : y*img.Stride+4*x+3]
			src := colorful.Color{R: float64(p[0]) / 255, G: float64(p[1]) / 255, B: float64(p[2]) / 255}
			p[0], p[1], p[2] = src.BlendLab(fg, a).Clamped().RGB255()
		}
	}
}

package synth

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/convolution"

	"github.com/ironsheep/synthtext-mcp/internal/random"
)

// BlurProfile picks the Gaussian kernel size and sigma used to feather text
// whose smallest character is minH pixels tall. Small text gets a fixed light
// blur; larger text gets a randomized, stronger one.
func BlurProfile(minH float64, rng random.Source) (int, float64) {
	switch {
	case minH <= 15:
		return 1, 0.25
	case minH < 30:
		return 3, math.Max(0.30, 0.5+0.1*rng.NormFloat64())
	default:
		return 5, math.Max(0.5, 1.5+0.5*rng.NormFloat64())
	}
}

// Feather blurs a warped glyph mask according to BlurProfile(minH). The
// result has the same bounds as mask. Borders are edge-extended and values
// truncated, so results can sit up to one level below a rounded blur.
func Feather(mask *image.Gray, minH float64, rng random.Source) *image.Gray {
	ksize, sigma := BlurProfile(minH, rng)
	if ksize == 1 {
		return cloneMask(mask)
	}

	g := gaussianKernel(ksize, sigma)
	k := &convolution.Kernel{Matrix: make([]float64, ksize*ksize), Width: ksize, Height: ksize}
	for y := 0; y < ksize; y++ {
		for x := 0; x < ksize; x++ {
			k.Matrix[y*ksize+x] = g[y] * g[x]
		}
	}

	blurred := convolution.Convolve(mask, k, &convolution.Options{Bias: 0, Wrap: false})

	out := image.NewGray(mask.Rect)
	b := blurred.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Pix[y*out.Stride+x] = blurred.Pix[y*blurred.Stride+x*4]
		}
	}
	return out
}

// gaussianKernel returns the normalized 1D Gaussian of size n centered on
// (n-1)/2.
func gaussianKernel(n int, sigma float64) []float64 {
	g := make([]float64, n)
	c := float64(n-1) / 2
	var sum float64
	for i := range g {
		d := float64(i) - c
		g[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += g[i]
	}
	for i := range g {
		g[i] /= sum
	}
	return g
}

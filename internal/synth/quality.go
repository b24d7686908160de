package synth

import (
	"fmt"
	"math"
	"sort"
	"unicode"

	"github.com/ironsheep/synthtext-mcp/internal/geometry"
)

// QualityGate rejects placements whose characters the warp made too small or
// too distorted.
type QualityGate struct {
	MinCharHeight  float64 // Minimum post-warp character height in pixels
	MinAspectRatio float64 // In (0,1); bounds the change of median aspect ratio
}

// Accept compares character boxes before and after the warp.
//
// Only boxes of alphanumeric runes are considered. A placement is accepted when
// the smallest warped height exceeds MinCharHeight and the median aspect ratio
// (height/width) changed by a factor strictly between MinAspectRatio and
// 1/MinAspectRatio. Text without alphanumeric runes is rejected. The error is
// ErrTextMismatch when a box set does not match text.
func (g QualityGate) Accept(before, after geometry.Boxes, text string) (bool, error) {
	b0, err := alnumBoxes(before, text)
	if err != nil {
		return false, err
	}
	b1, err := alnumBoxes(after, text)
	if err != nil {
		return false, err
	}
	if len(b1) == 0 {
		return false, nil
	}

	minH := math.Inf(1)
	asp0 := make([]float64, len(b0))
	asp1 := make([]float64, len(b1))
	for i := range b1 {
		minH = math.Min(minH, b1[i].Height())
		asp0[i] = b0[i].Height() / b0[i].Width()
		asp1[i] = b1[i].Height() / b1[i].Width()
	}

	ratio := median(asp1) / median(asp0)
	return minH > g.MinCharHeight &&
		ratio > g.MinAspectRatio &&
		ratio < 1/g.MinAspectRatio, nil
}

// MinHeight returns the smallest height among the boxes of alphanumeric runes,
// or 0 when text has none.
func MinHeight(boxes geometry.Boxes, text string) (float64, error) {
	bb, err := alnumBoxes(boxes, text)
	if err != nil {
		return 0, err
	}
	if len(bb) == 0 {
		return 0, nil
	}
	minH := math.Inf(1)
	for _, q := range bb {
		minH = math.Min(minH, q.Height())
	}
	return minH, nil
}

// alnumBoxes pairs boxes with the non-whitespace runes of text and keeps those
// of letters and digits.
func alnumBoxes(boxes geometry.Boxes, text string) (geometry.Boxes, error) {
	var runes []rune
	for _, r := range text {
		if !unicode.IsSpace(r) {
			runes = append(runes, r)
		}
	}
	if len(runes) != len(boxes) {
		return nil, fmt.Errorf("%w: %d boxes for %d characters", ErrTextMismatch, len(boxes), len(runes))
	}

	var out geometry.Boxes
	for i, r := range runes {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			out = append(out, boxes[i])
		}
	}
	return out, nil
}

// median returns the middle value of v, averaging the two middle values when
// len(v) is even. v is reordered.
func median(v []float64) float64 {
	sort.Float64s(v)
	n := len(v)
	if n%2 == 1 {
		return v[n/2]
	}
	return (v[n/2-1] + v[n/2]) / 2
}

package synth

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/ironsheep/synthtext-mcp/internal/geometry"
)

// cornerPerms lists the 24 orderings of four corners in lexicographic order.
var cornerPerms = permutations4()

func permutations4() [][4]int {
	var out [][4]int
	for a := 0; a < 4; a++ {
		for b := 0; b < 4; b++ {
			for c := 0; c < 4; c++ {
				d := 6 - a - b - c
				if a == b || a == c || b == c || d == a || d == b || d == c {
					continue
				}
				out = append(out, [4]int{a, b, c, d})
			}
		}
	}
	return out
}

// CharToWordBoxes groups character boxes into one box per whitespace-separated
// word of text.
//
// Each word box is the minimum-area rectangle around its characters' corners.
// Its corners are ordered to best match the word's own extent: the first
// character's top-left and bottom-left corners and the last character's
// top-right and bottom-right corners. Ties resolve to the first permutation
// in lexicographic order.
func CharToWordBoxes(charBoxes geometry.Boxes, text string) (geometry.Boxes, error) {
	words := strings.Fields(text)
	total := 0
	for _, w := range words {
		total += utf8.RuneCountInString(w)
	}
	if total != len(charBoxes) {
		return nil, fmt.Errorf("%w: %d boxes for %d characters", ErrTextMismatch, len(charBoxes), total)
	}

	out := make(geometry.Boxes, len(words))
	start := 0
	for i, w := range words {
		end := start + utf8.RuneCountInString(w)
		out[i] = wordBox(charBoxes[start:end])
		start = end
	}
	return out, nil
}

func wordBox(cc geometry.Boxes) geometry.Quad {
	pts := make([]geometry.Point, 0, 4*len(cc))
	for _, q := range cc {
		pts = append(pts, q[:]...)
	}
	rect := geometry.MinAreaRect(pts)

	first, last := cc[0], cc[len(cc)-1]
	ref := geometry.Quad{first[0], last[1], last[2], first[3]}

	best := math.Inf(1)
	var out geometry.Quad
	for _, p := range cornerPerms {
		var d float64
		for k := 0; k < 4; k++ {
			d += rect[p[k]].Dist(ref[k])
		}
		if d < best {
			best = d
			out = geometry.Quad{rect[p[0]], rect[p[1]], rect[p[2]], rect[p[3]]}
		}
	}
	return out
}

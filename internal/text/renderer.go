package text

import (
	"context"
	"image"
	"image/color"
	"math"
	"strings"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ironsheep/synthtext-mcp/internal/config"
	"github.com/ironsheep/synthtext-mcp/internal/geometry"
	"github.com/ironsheep/synthtext-mcp/internal/random"
	"github.com/ironsheep/synthtext-mcp/internal/synth"
)

const (
	// shrink is the font size factor between successive size attempts.
	shrink = 0.8

	// margin is the free border, in pixels, kept around a text block.
	margin = 4
)

// Renderer draws corpus text onto free space of a collision mask.
type Renderer struct {
	cfg    config.TextConfig
	rng    random.Source
	fonts  *fontSet
	corpus Corpus
}

// New returns a Renderer drawing words from cfg.CorpusPath, or from the
// built-in corpus when the path is empty.
func New(cfg config.TextConfig, rng random.Source) (*Renderer, error) {
	fs, err := loadGoFonts()
	if err != nil {
		return nil, err
	}
	corpus, err := LoadCorpus(cfg.CorpusPath, fs.fonts[0])
	if err != nil {
		return nil, err
	}
	return &Renderer{cfg: cfg, rng: rng, fonts: fs, corpus: corpus}, nil
}

// FontState is one sample of the font distribution.
type FontState struct {
	Font  int     // Index into the Go font family
	Size  float64 // Pixels
	Caps  int     // 0 = as is, 1 = upper, 2 = title
	Curve float64 // Baseline y = Curve * x^2; 0 = straight
}

// SampleFontState draws a font state. Curved baselines are only drawn when
// lines == 1. Under the fixed policy caps and curves are always off.
func (r *Renderer) SampleFontState(lines int) FontState {
	fs := FontState{
		Font: r.rng.Intn(len(r.fonts.fonts)),
		Size: r.cfg.MinFontSize + (r.cfg.MaxFontSize-r.cfg.MinFontSize)*r.rng.Float64(),
	}
	if r.rng.Bernoulli(r.cfg.CapsProb) {
		fs.Caps = 1 + r.rng.Intn(2)
	}
	if lines == 1 && r.rng.Bernoulli(r.cfg.CurveProb) {
		sgn := 1.0
		if r.rng.Float64() < 0.5 {
			sgn = -1
		}
		fs.Curve = sgn * r.cfg.CurveAmount * math.Max(0.25, 1+0.5*r.rng.NormFloat64())
	}
	return fs
}

// sampleLines draws 1..MaxLines lines of 1..MaxWords corpus words.
func (r *Renderer) sampleLines() []string {
	n := 1 + r.rng.Intn(r.cfg.MaxLines)
	lines := make([]string, n)
	for i := range lines {
		k := 1 + r.rng.Intn(r.cfg.MaxWords)
		words := make([]string, k)
		for j := range words {
			words[j] = r.corpus[r.rng.Intn(len(r.corpus))]
		}
		lines[i] = strings.Join(words, " ")
	}
	return lines
}

// Render implements synth.GlyphRenderer. It tries SizeAttempts sizes, each
// smaller than the last, and returns nil when the text fits nowhere.
func (r *Renderer) Render(ctx context.Context, collision *image.Gray) (*synth.Glyphs, error) {
	occ := newOccupancy(collision)

	lines := r.sampleLines()
	state := r.SampleFontState(len(lines))
	lines = applyCaps(lines, state.Caps)

	size := state.Size
	for i := 0; i < r.cfg.SizeAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		face, err := r.fonts.face(state.Font, size)
		if err != nil {
			return nil, err
		}
		blk := layout(face, lines, state.Curve)
		spots := occ.freeSpots(blk.w, blk.h, min(blk.w, blk.h)/8)
		if len(spots) == 0 {
			size *= shrink
			if size < 1 {
				break
			}
			continue
		}

		at := spots[r.rng.Intn(len(spots))]
		mask, boxes := blk.draw(face, collision.Rect, at.Add(collision.Rect.Min))
		return &synth.Glyphs{
			Mask:   mask,
			Boxes:  boxes,
			Text:   strings.Join(lines, "\n"),
			Curved: state.Curve != 0,
		}, nil
	}
	return nil, nil
}

func applyCaps(lines []string, mode int) []string {
	var c cases.Caser
	switch mode {
	case 1:
		c = cases.Upper(language.Und)
	case 2:
		c = cases.Title(language.Und)
	default:
		return lines
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = c.String(l)
	}
	return out
}

// block is a laid-out text block, measured from its top-left corner.
type block struct {
	lines  []string
	widths []fixed.Int26_6
	w, h   int
	pitch  int
	ascent int
	curve  float64
	bend   float64 // Vertical extent added by the curve
}

func layout(face font.Face, lines []string, curve float64) *block {
	m := face.Metrics()
	b := &block{
		lines:  lines,
		pitch:  m.Height.Ceil(),
		ascent: m.Ascent.Ceil(),
		curve:  curve,
	}
	var maxW fixed.Int26_6
	for _, l := range lines {
		w := font.MeasureString(face, l)
		b.widths = append(b.widths, w)
		if w > maxW {
			maxW = w
		}
	}
	b.w = maxW.Ceil() + 2*margin
	half := float64(maxW.Ceil()) / 2
	b.bend = math.Abs(curve) * half * half
	b.h = (len(lines)-1)*b.pitch + b.ascent + m.Descent.Ceil() + int(math.Ceil(b.bend)) + 2*margin
	return b
}

// draw renders the block with its top-left corner at origin into a mask with
// the given bounds and returns one box per non-whitespace rune.
func (b *block) draw(face font.Face, bounds image.Rectangle, origin image.Point) (*image.Gray, geometry.Boxes) {
	mask := image.NewGray(bounds)
	d := &font.Drawer{Dst: mask, Src: image.NewUniform(color.Gray{Y: 255}), Face: face}
	m := face.Metrics()

	top := float64(origin.Y + margin + b.ascent)
	if b.curve < 0 {
		top += b.bend
	}
	center := float64(origin.X+margin) + float64(b.w-2*margin)/2

	var boxes geometry.Boxes
	for i, line := range b.lines {
		baseline := top + float64(i*b.pitch)
		x := fixed.I(origin.X+margin) + (fixed.I(b.w-2*margin)-b.widths[i])/2
		prev := rune(-1)
		for _, c := range line {
			if prev >= 0 {
				x += face.Kern(prev, c)
			}
			prev = c

			gb, adv, ok := face.GlyphBounds(c)
			dx := float64(x)/64 - center
			y := baseline + b.curve*dx*dx
			if !unicode.IsSpace(c) {
				d.Dot = fixed.Point26_6{X: x, Y: fixed.Int26_6(math.Round(y * 64))}
				d.DrawString(string(c))

				if !ok || gb.Empty() {
					gb = fixed.Rectangle26_6{
						Min: fixed.Point26_6{X: 0, Y: -m.Ascent},
						Max: fixed.Point26_6{X: adv, Y: m.Descent},
					}
				}
				l := float64(x+gb.Min.X) / 64
				rr := float64(x+gb.Max.X) / 64
				t := y + float64(gb.Min.Y)/64
				bt := y + float64(gb.Max.Y)/64
				boxes = append(boxes, geometry.Quad{
					{X: l, Y: t}, {X: rr, Y: t}, {X: rr, Y: bt}, {X: l, Y: bt},
				})
			}
			x += adv
		}
	}
	return mask, boxes
}

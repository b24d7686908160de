package synth

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/synthtext-mcp/internal/geometry"
)

// Outcome is how a placement attempt ended.
type Outcome int

const (
	Committed Outcome = iota // Text was blended into the image
	Discarded                // The glyph renderer found no room
	Rejected                 // The quality gate refused the warped text
	TimedOut                 // The attempt's deadline passed
)

func (o Outcome) String() string {
	switch o {
	case Committed:
		return "committed"
	case Discarded:
		return "discarded"
	case Rejected:
		return "rejected"
	case TimedOut:
		return "timed out"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Attempt is the result of a committed placement.
type Attempt struct {
	Image   *image.NRGBA
	Text    string
	Boxes   geometry.Boxes // Image coordinates
	Frontal geometry.Boxes // Canvas coordinates
	Curved  bool
	MinH    float64
}

// attemptPlacement places one block of text on reg.
//
// The glyph coverage is claimed in collision before anything else can fail and
// stays claimed whatever the outcome. A nil Attempt is returned for every
// outcome but Committed. Errors are fatal.
func (r *Renderer) attemptPlacement(ctx context.Context, img *image.NRGBA, collision *image.Gray, reg *Region) (*Attempt, Outcome, error) {
	g, err := r.deps.Glyphs.Render(ctx, collision)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, TimedOut, nil
		}
		return nil, Discarded, fmt.Errorf("glyph renderer: %w", err)
	}
	if g == nil {
		return nil, Discarded, nil
	}

	claim(collision, g.Mask)
	if ctx.Err() != nil {
		return nil, TimedOut, nil
	}

	b := img.Bounds()
	warped := geometry.WarpPerspective(g.Mask, reg.H, b.Dx(), b.Dy())
	boxes := geometry.TransformPoints(g.Boxes, reg.Hinv, nil)

	ok, err := r.gate.Accept(g.Boxes, boxes, g.Text)
	if err != nil {
		return nil, Rejected, err
	}
	if !ok {
		return nil, Rejected, nil
	}
	if ctx.Err() != nil {
		return nil, TimedOut, nil
	}

	minH, err := MinHeight(boxes, g.Text)
	if err != nil {
		return nil, Rejected, err
	}
	feathered := Feather(warped, minH, r.rng)

	out, err := r.deps.Colorizer.Colorize(img, []*image.Gray{feathered}, []float64{minH})
	if err != nil {
		return nil, Discarded, fmt.Errorf("colorizer: %w", err)
	}
	if ctx.Err() != nil {
		return nil, TimedOut, nil
	}

	return &Attempt{
		Image:   out,
		Text:    g.Text,
		Boxes:   boxes,
		Frontal: g.Boxes,
		Curved:  g.Curved,
		MinH:    minH,
	}, Committed, nil
}

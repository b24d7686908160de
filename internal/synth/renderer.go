package synth

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/synthtext-mcp/internal/config"
	"github.com/ironsheep/synthtext-mcp/internal/geometry"
	"github.com/ironsheep/synthtext-mcp/internal/random"
	"github.com/ironsheep/synthtext-mcp/internal/scene"
)

// Deps holds the collaborators of a Renderer.
type Deps struct {
	Projector Projector
	Finder    RegionFinder
	Glyphs    GlyphRenderer
	Colorizer Colorizer
}

// Snapshot is the state of one instance after a successful placement.
type Snapshot struct {
	Instance  int
	Image     *image.NRGBA
	CharBoxes geometry.Boxes // One per non-whitespace rune of Text, in order
	WordBoxes geometry.Boxes // One per word of strings.Join(Text, " ")
	Text      []string
}

// Renderer composites text onto scene images.
type Renderer struct {
	cfg    config.Config
	deps   Deps
	gate   QualityGate
	rng    random.Source
	logger *log.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSource sets the random source. Pass the same Source to the glyph
// renderer and colorizer so the whole pipeline draws from one stream.
func WithSource(src random.Source) Option {
	return func(r *Renderer) { r.rng = src }
}

// WithLogger sets the logger used when cfg.Verbose is set.
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// New returns a Renderer. The random source defaults to
// random.New(cfg.Debug, cfg.Seed) and the logger to log.Default().
func New(cfg config.Config, deps Deps, opts ...Option) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if deps.Projector == nil || deps.Finder == nil || deps.Glyphs == nil || deps.Colorizer == nil {
		return nil, errors.New("renderer needs a projector, region finder, glyph renderer and colorizer")
	}
	r := &Renderer{
		cfg:  cfg,
		deps: deps,
		gate: QualityGate{
			MinCharHeight:  cfg.MinCharHeight,
			MinAspectRatio: cfg.MinAspectRatio,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		r.rng = random.New(cfg.Debug, cfg.Seed)
	}
	if r.logger == nil {
		r.logger = log.Default()
	}
	return r, nil
}

// Render places text on rgb for the given number of instances.
//
// depth and seg must match the size of rgb; area and labels describe seg as
// returned by LabelMap.Areas. Each instance starts from rgb and fresh collision
// masks, and adds a Snapshot after every successful placement, so the
// snapshots of one instance grow cumulatively. An instance without any
// placement adds nothing. The result is empty, not nil, when no surface can
// carry text.
func (r *Renderer) Render(rgb image.Image, depth *scene.DepthMap, seg *scene.LabelMap, area map[int]int, labels []int, instances int) ([]Snapshot, error) {
	b := rgb.Bounds()
	if err := scene.CheckSize(b.Dx(), b.Dy(), depth, seg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSizeMismatch, err)
	}

	xyz := r.deps.Projector.DepthToXYZ(depth)
	cands := r.deps.Finder.FindRegions(xyz, seg, area, labels)
	regions := PlanRegions(r.deps.Finder, xyz, seg, cands)
	r.debugf("%d candidate surfaces, %d with placement geometry", len(cands), len(regions))

	res := []Snapshot{}
	if len(regions) == 0 {
		return res, nil
	}

	base := imaging.Clone(rgb)
	for i := 0; i < instances; i++ {
		snaps, err := r.renderInstance(i, base, regions)
		if err != nil {
			return nil, err
		}
		res = append(res, snaps...)
	}
	return res, nil
}

func (r *Renderer) renderInstance(instance int, base *image.NRGBA, regions []Region) ([]Snapshot, error) {
	r.debugf("instance %d", instance)

	masks := make([]*image.Gray, len(regions))
	for i := range regions {
		masks[i] = cloneMask(regions[i].PlaceMask)
	}

	m := ChooseRegionCount(r.rng, len(regions), r.cfg.MaxTextRegions)
	chosen := chooseRegions(r.rng, len(regions), m)

	var (
		snaps []Snapshot
		img   = base
		texts []string
		boxes geometry.Boxes
	)
	for _, ireg := range schedule(chosen, r.cfg.NumRepeat) {
		att, outcome, err := r.runAttempt(img, masks[ireg], &regions[ireg])
		if err != nil {
			return nil, fmt.Errorf("instance %d, region %d: %w", instance, regions[ireg].Label, err)
		}
		if outcome != Committed {
			r.debugf("instance %d, region %d: %s", instance, regions[ireg].Label, outcome)
			continue
		}

		img = att.Image
		texts = append(texts, att.Text)
		boxes = append(boxes, att.Boxes...)

		words, err := CharToWordBoxes(boxes, strings.Join(texts, " "))
		if err != nil {
			return nil, fmt.Errorf("instance %d: %w", instance, err)
		}
		snaps = append(snaps, Snapshot{
			Instance:  instance,
			Image:     img,
			CharBoxes: boxes.Clone(),
			WordBoxes: words,
			Text:      append([]string(nil), texts...),
		})
		r.debugf("instance %d, region %d: placed %q (curved=%v)", instance, regions[ireg].Label, att.Text, att.Curved)
	}
	return snaps, nil
}

// runAttempt runs one placement under the per-attempt deadline, if any.
func (r *Renderer) runAttempt(img *image.NRGBA, collision *image.Gray, reg *Region) (*Attempt, Outcome, error) {
	ctx := context.Background()
	if d := r.cfg.MaxTime.D(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	return r.attemptPlacement(ctx, img, collision, reg)
}

func (r *Renderer) debugf(format string, args ...any) {
	if r.cfg.Verbose {
		r.logger.Printf(format, args...)
	}
}

package ocr

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/synthtext-mcp/internal/geometry"
	imgio "github.com/ironsheep/synthtext-mcp/internal/imaging"
)

// ErrOCRNotEnabled is returned when the binary was built without Tesseract.
var ErrOCRNotEnabled = errors.New("OCR support not compiled in (requires cgo on linux)")

// Recognizer reads a single word from a cropped image.
type Recognizer interface {
	// RecognizeWord returns the recognized text and a confidence in [0, 1].
	RecognizeWord(img image.Image) (string, float64, error)
}

// WordResult is the verification result for one word box.
type WordResult struct {
	Index      int           `json:"index"`
	Expected   string        `json:"expected"`
	Recognized string        `json:"recognized"`
	Confidence float64       `json:"confidence"`
	Distance   int           `json:"distance"` // Edit distance after normalization
	Match      bool          `json:"match"`
	Box        geometry.Quad `json:"-"`
}

// Report summarizes how well OCR reads back the rendered words.
type Report struct {
	Words    []WordResult `json:"words"`
	Matched  int          `json:"matched"`
	Accuracy float64      `json:"accuracy"` // Matched / len(Words); 1 when there are no words
}

// Verifier crops each word box from a rendered image and checks that the
// recognizer reads the expected word.
type Verifier struct {
	rec     Recognizer
	pad     int
	scale   float64
	maxDist int
}

// NewVerifier returns a Verifier that pads word crops by pad pixels, scales
// them by scale before recognition, and accepts words within maxDist edits.
func NewVerifier(rec Recognizer, pad int, scale float64, maxDist int) *Verifier {
	return &Verifier{rec: rec, pad: pad, scale: scale, maxDist: maxDist}
}

// Verify reads back every word of text. words must hold one box per
// whitespace-separated word of text, in order.
func (v *Verifier) Verify(img image.Image, words geometry.Boxes, text string) (*Report, error) {
	expected := strings.Fields(text)
	if len(expected) != len(words) {
		return nil, fmt.Errorf("%d word boxes for %d words", len(words), len(expected))
	}

	rep := &Report{Words: make([]WordResult, 0, len(words)), Accuracy: 1}
	for i, q := range words {
		crop, err := imgio.CropQuad(img, q, v.pad, v.scale)
		if err != nil {
			return nil, fmt.Errorf("word %d: %w", i, err)
		}
		got, conf, err := v.rec.RecognizeWord(imaging.Grayscale(crop))
		if err != nil {
			return nil, fmt.Errorf("word %d: %w", i, err)
		}

		d := wordDistance(expected[i], got)
		res := WordResult{
			Index:      i,
			Expected:   expected[i],
			Recognized: strings.TrimSpace(got),
			Confidence: conf,
			Distance:   d,
			Match:      d <= v.maxDist,
			Box:        q,
		}
		if res.Match {
			rep.Matched++
		}
		rep.Words = append(rep.Words, res)
	}
	if len(rep.Words) > 0 {
		rep.Accuracy = float64(rep.Matched) / float64(len(rep.Words))
	}
	return rep, nil
}

// normalizeWord folds case and drops everything but letters and digits.
func normalizeWord(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// wordDistance is the Levenshtein distance, in runes, between the normalized
// forms of the expected and recognized words.
func wordDistance(expected, recognized string) int {
	return levenshtein.ComputeDistance(normalizeWord(expected), normalizeWord(recognized))
}

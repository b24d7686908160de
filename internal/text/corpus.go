package text

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/image/font/sfnt"
	"golang.org/x/text/unicode/norm"
)

// defaultCorpus is used when no corpus file is configured.
const defaultCorpus = `
Open daily from nine until late. Fresh bread baked every morning in our own
kitchen. Please keep this door closed at all times. No parking in front of the
gate. Main street station is two blocks north. Welcome to the public library,
reading room on the second floor. Sale ends Sunday, everything must go. Exit
only. Deliveries at the rear entrance. Coffee, tea and pastries served until
four. Mind the gap between the train and the platform. Platform 3 for the
express service to Central. Handmade shoes since 1952. Quiet please, exams in
progress. Bicycle repairs while you wait. Fire assembly point. Room 204,
administration office. Tickets available at the box office. Caution wet floor.
Garden center and outdoor furniture. Please ring the bell for service.
`

// Corpus is a list of words to sample text from.
type Corpus []string

// ParseCorpus normalizes s to NFC and splits it into words, dropping words that
// f cannot render.
func ParseCorpus(s string, f *sfnt.Font) Corpus {
	var buf sfnt.Buffer
	var out Corpus
	for _, w := range strings.Fields(norm.NFC.String(s)) {
		if renderable(w, f, &buf) {
			out = append(out, w)
		}
	}
	return out
}

// LoadCorpus reads a corpus file. An empty path yields the built-in corpus.
func LoadCorpus(path string, f *sfnt.Font) (Corpus, error) {
	s := defaultCorpus
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read corpus: %w", err)
		}
		s = string(b)
	}
	c := ParseCorpus(s, f)
	if len(c) == 0 {
		return nil, fmt.Errorf("corpus %q has no renderable words", path)
	}
	return c, nil
}

func renderable(w string, f *sfnt.Font, buf *sfnt.Buffer) bool {
	for _, r := range w {
		if !unicode.IsGraphic(r) {
			return false
		}
		if f == nil {
			continue
		}
		idx, err := f.GlyphIndex(buf, r)
		if err != nil || idx == 0 {
			return false
		}
	}
	return true
}

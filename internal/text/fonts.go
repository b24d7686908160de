package text

import (
	"fmt"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// fontSet holds the parsed faces and a cache of sized faces.
type fontSet struct {
	names []string
	fonts []*opentype.Font
	faces map[faceKey]font.Face
}

type faceKey struct {
	font int
	size int
}

func loadGoFonts() (*fontSet, error) {
	src := []struct {
		name string
		ttf  []byte
	}{
		{"Go Regular", goregular.TTF},
		{"Go Bold", gobold.TTF},
		{"Go Italic", goitalic.TTF},
		{"Go Mono", gomono.TTF},
	}

	fs := &fontSet{faces: make(map[faceKey]font.Face)}
	for _, s := range src {
		f, err := opentype.Parse(s.ttf)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", s.name, err)
		}
		fs.names = append(fs.names, s.name)
		fs.fonts = append(fs.fonts, f)
	}
	return fs, nil
}

// face returns font i at size pixels, rounded to a whole pixel.
func (fs *fontSet) face(i int, size float64) (font.Face, error) {
	key := faceKey{font: i, size: int(math.Round(size))}
	if f, ok := fs.faces[key]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(fs.fonts[i], &opentype.FaceOptions{
		Size:    float64(key.size),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s face: %w", fs.names[i], err)
	}
	fs.faces[key] = f
	return f, nil
}

//go:build cgo && linux

package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract recognizes single words with the native Tesseract engine. A
// Tesseract is safe for concurrent use; calls are serialized on one client.
type Tesseract struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseract returns a Tesseract reading the given language, for example
// "eng". The language data must be installed on the system.
func NewTesseract(language string) (*Tesseract, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_WORD); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	return &Tesseract{client: client}, nil
}

// RecognizeWord implements Recognizer.
func (t *Tesseract) RecognizeWord(img image.Image) (string, float64, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", 0, fmt.Errorf("failed to encode crop: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", 0, fmt.Errorf("failed to set image: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("OCR failed: %w", err)
	}

	// Confidence is only available per box; average the word boxes.
	var conf float64
	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err == nil && len(boxes) > 0 {
		for _, b := range boxes {
			conf += float64(b.Confidence)
		}
		conf /= 100 * float64(len(boxes))
	}
	return strings.TrimSpace(text), conf, nil
}

// Close releases the native client.
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}

// GetOCRInfo returns information about OCR availability.
func GetOCRInfo() OCRInfo {
	client := gosseract.NewClient()
	defer client.Close()
	return OCRInfo{
		Available: true,
		Version:   client.Version(),
		Backend:   "gosseract",
	}
}

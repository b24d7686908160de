//go:build !cgo || !linux

package ocr

import "image"

// Tesseract is unavailable in this build.
type Tesseract struct{}

// NewTesseract always fails with ErrOCRNotEnabled in this build.
func NewTesseract(string) (*Tesseract, error) {
	return nil, ErrOCRNotEnabled
}

// RecognizeWord implements Recognizer.
func (*Tesseract) RecognizeWord(image.Image) (string, float64, error) {
	return "", 0, ErrOCRNotEnabled
}

// Close is a no-op.
func (*Tesseract) Close() error { return nil }

// GetOCRInfo returns information about OCR availability.
func GetOCRInfo() OCRInfo {
	return OCRInfo{
		Available: false,
		Error:     ErrOCRNotEnabled.Error(),
		Backend:   "none",
	}
}

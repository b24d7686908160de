// Package ocr reads rendered words back with Tesseract to check that they
// stay legible after warping and blending.
//
// A Verifier crops each word box from a rendered image, converts it to
// grayscale, scales it up, and hands it to a Recognizer. The result is
// compared with the expected word after folding case and dropping
// punctuation; a word matches when the edit distance stays within the
// configured tolerance.
//
// # Prerequisites
//
// The Tesseract backend uses gosseract/v2 and is compiled on Linux with cgo
// enabled. Tesseract and its language data must be installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng libtesseract-dev
//
// Other builds get a stub whose NewTesseract returns ErrOCRNotEnabled. The
// rest of the server works without OCR.
package ocr

package synth

import "errors"

var (
	// ErrTextMismatch is returned when a box set does not have one box per
	// non-whitespace rune of its text.
	ErrTextMismatch = errors.New("character box count does not match text")

	// ErrSizeMismatch is returned when the depth or segmentation map does not
	// match the image size.
	ErrSizeMismatch = errors.New("input size mismatch")
)

// Package text is the default glyph renderer of the compositor.
//
// A Renderer samples a font state per call (face, size, caps mode and an
// optional curved baseline), draws one to MaxLines lines of corpus words into a
// free spot of the collision mask and reports a tight box for every
// non-whitespace rune. Faces come from the Go font family, so no font files are
// needed at run time.
//
// Under the fixed random policy every call picks the regular face at the middle
// of the size range, a single word and a straight baseline.
package text

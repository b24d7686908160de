// Package synth implements the perspective text compositor.
//
// Given an RGB image with depth and segmentation, a Renderer finds planar
// surfaces, lays text out on each surface's frontal-parallel canvas, warps the
// text into the image and blends it in. Every successful placement yields a
// Snapshot holding the composited image, per-character and per-word boxes and
// the placed strings.
//
// # Collaborators
//
// Back-projection, plane finding, glyph rendering and colorization are supplied
// through the Projector, RegionFinder, GlyphRenderer and Colorizer interfaces.
// The scene, text and colorize packages provide the default implementations.
//
// # Boxes
//
// Boxes keep the glyph renderer's corner order (top-left, top-right,
// bottom-right, bottom-left) through every transform. Character boxes cover
// non-whitespace runes only, so for every Snapshot the number of character
// boxes equals the number of non-whitespace runes across its Text.
//
// # Masks
//
// Placement and collision masks use 0 for free pixels and 255 for pixels that
// are occupied or not part of the surface. A collision mask only ever gains
// occupied pixels during an instance, even when an attempt is rejected.
//
// # Errors
//
// Timeouts, renderer misses and quality rejections only skip an attempt.
// Malformed geometry (ErrTextMismatch), mismatched input sizes
// (ErrSizeMismatch) and collaborator failures abort Render.
//
// # Thread Safety
//
// A Renderer is not safe for concurrent Render calls: it shares one random
// source with its collaborators.
package synth

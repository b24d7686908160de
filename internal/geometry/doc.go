// Package geometry provides the planar projective geometry used to place text
// on scene surfaces.
//
// This package implements 3x3 homographies, dense perspective warping of glyph
// masks, sparse transformation of character box sets, and the minimum-area
// rectangle fit used to derive word boxes from character boxes.
//
// # Coordinate System
//
// All coordinates are floating point pixel positions with (0,0) at the top-left
// corner, X increasing rightward and Y increasing downward. Integer pixel (x, y)
// is sampled at exactly (x, y); there is no half-pixel offset.
//
// # Box Convention
//
// A Quad holds the four corners of one character (or word) box in a fixed order:
//
//	0 = top-left, 1 = top-right, 2 = bottom-right, 3 = bottom-left
//
// The order is defined by the glyph renderer and is preserved by every transform
// in this package. A Boxes value is the Go form of the 2x4xn box array exchanged
// with dataset consumers; see Boxes.Array and BoxesFromArray.
//
// # Error Handling
//
// Shape violations on array input return ErrBadShape and singular matrices return
// ErrSingular. Both are precondition failures that callers propagate rather than
// recover from.
package geometry

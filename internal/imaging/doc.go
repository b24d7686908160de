// Package imaging handles image I/O for the compositor.
//
// It decodes the three inputs of a render (a color image, a depth map and a
// segmentation map), writes rendered snapshots as PNG, and produces the small
// encoded crops and previews returned to MCP clients.
//
// # Input Formats
//
// Depth maps are single-channel PNGs. 16-bit images keep their full range;
// every stored value is multiplied by a depth scale (for example 1/1000 for
// millimetres to metres). A stored zero means the depth is unknown.
//
// Segmentation maps hold one integer label per pixel. Gray images store the
// label as the gray value, paletted images as the palette index, and color
// images as the packed 0xRRGGBB value.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Decoded maps are shifted so
// that their origin is (0,0) whatever the bounds of the source image.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. All other functions are stateless.
package imaging

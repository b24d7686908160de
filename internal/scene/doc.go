// Package scene turns depth and segmentation into planar surfaces that can
// carry text.
//
// It provides the default Projector (PinholeProjector) and RegionFinder
// (PlaneFinder) of the compositor.
//
// # Coordinate System
//
// Images and maps are row-major with (0,0) at the top-left pixel. Camera-frame
// points use X right, Y down and Z forward, so depth is the Z coordinate.
//
// # Plane Finding
//
// Every segment with enough pixels is fitted with a plane by seeded RANSAC on a
// stride subsample of its points, refined by PCA on the inliers. The fit is
// deterministic for a given input. Planes are oriented towards the camera.
//
// # Placement Masks
//
// A fitted plane is unrolled into a frontal-parallel canvas sized to roughly
// the segment's pixel density in the image. The mask marks free canvas pixels
// with 0 and everything else with 255. Two homographies relate the canvas and
// the image: Hinv maps canvas to image, H maps image to canvas.
package scene

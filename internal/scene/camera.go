package scene

import (
	"github.com/golang/geo/r3"
)

// Camera is a pinhole camera model in pixel units.
type Camera struct {
	Fx, Fy float64 // Focal lengths
	Cx, Cy float64 // Principal point
}

// DefaultCamera returns a camera centered on a width x height image. A zero
// focal length falls back to the image width (about 53 degrees horizontal FOV).
func DefaultCamera(width, height int, focal float64) Camera {
	if focal <= 0 {
		focal = float64(width)
	}
	return Camera{
		Fx: focal,
		Fy: focal,
		Cx: float64(width-1) / 2,
		Cy: float64(height-1) / 2,
	}
}

// DepthToXYZ back-projects every pixel of d into the camera frame
// (X right, Y down, Z forward). Pixels with non-positive depth map to the
// origin, which PointCloud.Valid reports as invalid.
func (c Camera) DepthToXYZ(d *DepthMap) *PointCloud {
	pc := &PointCloud{
		Width:  d.Width,
		Height: d.Height,
		Points: make([]r3.Vector, d.Width*d.Height),
	}
	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			z := d.At(x, y)
			if z <= 0 {
				continue
			}
			pc.Points[y*d.Width+x] = r3.Vector{
				X: (float64(x) - c.Cx) * z / c.Fx,
				Y: (float64(y) - c.Cy) * z / c.Fy,
				Z: z,
			}
		}
	}
	return pc
}

// PinholeProjector back-projects depth maps with a camera centered on each
// map. It is the default projector of the compositor.
type PinholeProjector struct {
	Focal float64 // Focal length in pixels; 0 = map width
}

// DepthToXYZ back-projects d with DefaultCamera(d.Width, d.Height, p.Focal).
func (p PinholeProjector) DepthToXYZ(d *DepthMap) *PointCloud {
	return DefaultCamera(d.Width, d.Height, p.Focal).DepthToXYZ(d)
}

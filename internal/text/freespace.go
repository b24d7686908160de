package text

import "image"

// occupancy is a summed-area table of the non-zero pixels of a mask.
type occupancy struct {
	w, h int
	sum  []int32 // (w+1) x (h+1)
}

func newOccupancy(m *image.Gray) *occupancy {
	b := m.Bounds()
	o := &occupancy{w: b.Dx(), h: b.Dy(), sum: make([]int32, (b.Dx()+1)*(b.Dy()+1))}
	stride := o.w + 1
	for y := 0; y < o.h; y++ {
		var row int32
		for x := 0; x < o.w; x++ {
			if m.Pix[y*m.Stride+x] != 0 {
				row++
			}
			o.sum[(y+1)*stride+x+1] = o.sum[y*stride+x+1] + row
		}
	}
	return o
}

// count returns the number of occupied pixels in [x, x+w) x [y, y+h).
func (o *occupancy) count(x, y, w, h int) int32 {
	s := o.w + 1
	return o.sum[(y+h)*s+x+w] - o.sum[y*s+x+w] - o.sum[(y+h)*s+x] + o.sum[y*s+x]
}

// freeSpots returns the top-left corners, on a grid of step pixels, of every
// fully free w x h rectangle.
func (o *occupancy) freeSpots(w, h, step int) []image.Point {
	if w <= 0 || h <= 0 || w > o.w || h > o.h {
		return nil
	}
	step = max(1, step)
	var out []image.Point
	for y := 0; y+h <= o.h; y += step {
		for x := 0; x+w <= o.w; x += step {
			if o.count(x, y, w, h) == 0 {
				out = append(out, image.Point{X: x, Y: y})
			}
		}
	}
	return out
}

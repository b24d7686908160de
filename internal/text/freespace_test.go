package text

import (
	"image"
	"testing"
)

func TestOccupancy(t *testing.T) {
	m := image.NewGray(image.Rect(0, 0, 10, 6))
	m.Pix[2*m.Stride+3] = 255
	m.Pix[5*m.Stride+9] = 1
	o := newOccupancy(m)

	tests := []struct {
		x, y, w, h int
		want       int32
	}{
		{0, 0, 10, 6, 2},
		{0, 0, 3, 6, 0},
		{3, 2, 1, 1, 1},
		{4, 0, 6, 6, 1},
		{9, 5, 1, 1, 1},
	}
	for _, tt := range tests {
		if got := o.count(tt.x, tt.y, tt.w, tt.h); got != tt.want {
			t.Errorf("count(%d,%d,%d,%d) = %d, want %d", tt.x, tt.y, tt.w, tt.h, got, tt.want)
		}
	}
}

func TestFreeSpots(t *testing.T) {
	m := image.NewGray(image.Rect(0, 0, 10, 4))
	// Column 4 is occupied top to bottom.
	for y := 0; y < 4; y++ {
		m.Pix[y*m.Stride+4] = 255
	}
	o := newOccupancy(m)

	spots := o.freeSpots(4, 4, 1)
	want := []image.Point{{0, 0}, {5, 0}, {6, 0}}
	if len(spots) != len(want) {
		t.Fatalf("got %v, want %v", spots, want)
	}
	for i := range want {
		if spots[i] != want[i] {
			t.Errorf("spot %d: got %v, want %v", i, spots[i], want[i])
		}
	}

	if got := o.freeSpots(11, 1, 1); got != nil {
		t.Errorf("oversize block: got %v, want nil", got)
	}
}

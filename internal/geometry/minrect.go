package geometry

import (
	"math"
	"sort"
)

// ConvexHull returns the convex hull of pts using Andrew's monotone chain.
//
// Collinear points on the hull boundary are dropped. For fewer than three
// distinct points the distinct points themselves are returned.
func ConvexHull(pts []Point) []Point {
	if len(pts) == 0 {
		return nil
	}
	sorted := make([]Point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	uniq := sorted[:1]
	for _, p := range sorted[1:] {
		if p != uniq[len(uniq)-1] {
			uniq = append(uniq, p)
		}
	}
	if len(uniq) < 3 {
		return uniq
	}

	hull := make([]Point, 0, 2*len(uniq))
	for _, p := range uniq {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(uniq) - 2; i >= 0; i-- {
		p := uniq[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// PolygonArea returns the absolute area of a simple polygon (shoelace formula).
func PolygonArea(poly []Point) float64 {
	var a float64
	for i := range poly {
		j := (i + 1) % len(poly)
		a += poly[i].X*poly[j].Y - poly[j].X*poly[i].Y
	}
	return math.Abs(a) / 2
}

func cross(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// MinAreaRect fits the minimum-area (possibly rotated) rectangle enclosing pts
// and returns its four corners in cyclic order.
//
// The rectangle has one side collinear with a hull edge (rotating calipers).
// The starting corner is unspecified; callers that need a semantic corner order
// must resolve it themselves. Degenerate inputs give degenerate rectangles: a
// single point repeated, or a zero-width rectangle along a segment.
func MinAreaRect(pts []Point) Quad {
	hull := ConvexHull(pts)
	switch len(hull) {
	case 0:
		return Quad{}
	case 1:
		return Quad{hull[0], hull[0], hull[0], hull[0]}
	case 2:
		return Quad{hull[0], hull[1], hull[1], hull[0]}
	}

	best := math.Inf(1)
	var rect Quad
	for i := range hull {
		e := hull[(i+1)%len(hull)].Sub(hull[i])
		l := math.Hypot(e.X, e.Y)
		if l == 0 {
			continue
		}
		u := Point{X: e.X / l, Y: e.Y / l}
		v := Point{X: -u.Y, Y: u.X}

		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			pu := p.X*u.X + p.Y*u.Y
			pv := p.X*v.X + p.Y*v.Y
			minU, maxU = math.Min(minU, pu), math.Max(maxU, pu)
			minV, maxV = math.Min(minV, pv), math.Max(maxV, pv)
		}

		if area := (maxU - minU) * (maxV - minV); area < best {
			best = area
			corner := func(a, b float64) Point {
				return Point{X: a*u.X + b*v.X, Y: a*u.Y + b*v.Y}
			}
			rect = Quad{corner(minU, minV), corner(maxU, minV), corner(maxU, maxV), corner(minU, maxV)}
		}
	}
	return rect
}

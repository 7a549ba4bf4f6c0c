package arcroad

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// coplanarTolerance is the largest gap, relative to the distance travelled
// along the rays, that still counts as an intersection.
const coplanarTolerance = 1e-6

// RayIntersect computes the intersection of the rays o0 + s·d0 and o1 + t·d1.
//
// The rays need not be exactly coplanar: the midpoint of their closest
// approach is returned as long as the gap between them is small relative to
// the distances travelled. The result is rejected if either s or t is below
// minT, which excludes intersections behind an origin. Parallel rays have no
// solution.
func RayIntersect(o0, d0, o1, d1 mgl64.Vec3, minT float64) (mgl64.Vec3, bool) {
	w := o0.Sub(o1)
	a := d0.Dot(d0)
	b := d0.Dot(d1)
	c := d1.Dot(d1)
	d := d0.Dot(w)
	e := d1.Dot(w)
	den := a*c - b*b
	if math.Abs(den) <= 1e-12*a*c || a == 0 || c == 0 {
		return mgl64.Vec3{}, false
	}
	s := (b*e - c*d) / den
	t := (a*e - b*d) / den
	if s < minT || t < minT {
		return mgl64.Vec3{}, false
	}
	p0 := o0.Add(d0.Mul(s))
	p1 := o1.Add(d1.Mul(t))
	scale := max(s*math.Sqrt(a), t*math.Sqrt(c), 1)
	if p0.Sub(p1).Len() > coplanarTolerance*scale {
		return mgl64.Vec3{}, false
	}
	return p0.Add(p1).Mul(0.5), true
}

// BiarcFromTangents returns a short polyline starting at start and ending at
// end whose fitted road leaves start along startTan and arrives at end along
// endTan.
//
// When the two tangent lines meet in front of both points, the polyline has a
// single interior corner at their intersection. When they don't (parallel
// tangents with a lateral shift, or an intersection behind one of the points),
// two interior corners are placed a third of the chord length along each
// tangent. Collinear configurations degenerate to the straight span
// [start, end]. A nil result is returned for coincident endpoints.
func BiarcFromTangents(start, startTan, end, endTan mgl64.Vec3, minT float64) []mgl64.Vec3 {
	chord := end.Sub(start)
	dist := chord.Len()
	if dist == 0 {
		return nil
	}
	t0 := startTan.Normalize()
	t1 := endTan.Normalize()
	dir := chord.Mul(1 / dist)
	if t0.Cross(dir).Len() < 1e-9 && t1.Cross(dir).Len() < 1e-9 && t0.Dot(dir) > 0 && t1.Dot(dir) > 0 {
		return []mgl64.Vec3{start, end}
	}
	if x, ok := RayIntersect(start, t0, end, t1.Mul(-1), minT); ok {
		if x.Sub(start).Len() > 0 && x.Sub(end).Len() > 0 {
			return []mgl64.Vec3{start, x, end}
		}
	}
	h := dist / 3
	return []mgl64.Vec3{
		start,
		start.Add(t0.Mul(h)),
		end.Sub(t1.Mul(h)),
		end,
	}
}

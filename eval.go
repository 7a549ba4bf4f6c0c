package arcroad

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// leftOf returns the unit vector perpendicular to up and to the heading of
// dir, its projection onto the xy plane, pointing to the left of travel. It
// ignores the grade of dir, which changes where segments meet arcs.
func leftOf(dir, up mgl64.Vec3) mgl64.Vec3 {
	l := up.Cross(flat(dir))
	if n := l.Len(); n > 0 {
		return l.Mul(1 / n)
	}
	return l
}

// featurePoint evaluates feature i at local position local and the given
// offset, returning the position and the unit tangent.
func (r *Road) featurePoint(i int, local, offset float64, up mgl64.Vec3) (pos, tan mgl64.Vec3) {
	k := i / 2
	if i%2 == 0 {
		start, end := r.segStart(k), r.segEnd(k)
		tan = r.normals[k]
		pos = start.Add(end.Sub(start).Mul(local)).Add(leftOf(tan, up).Mul(offset))
		return pos, tan
	}
	f := r.frames[k]
	center := f.Col(3).Vec3()
	if r.straight(k) {
		tan = r.normals[k]
		return center.Add(leftOf(tan, up).Mul(offset)), tan
	}
	x, y := f.Col(0).Vec3(), f.Col(1).Vec3()
	sign := math.Copysign(1, r.radii[k])
	sin, cos := math.Sincos(local * r.arcs[k])
	radial := x.Mul(cos).Add(y.Mul(sin))
	heading := y.Mul(cos).Sub(x.Mul(sin)).Mul(sign)
	pos = center.Add(radial.Mul(math.Abs(r.radii[k]))).Add(zAxis.Mul(local * r.rises[k]))
	// The helix at the offset climbs the same height over a shorter or
	// longer run.
	run := math.Abs(r.arcs[k] * (r.radii[k] - offset))
	tan = heading.Mul(run).Add(zAxis.Mul(r.rises[k])).Normalize()
	return pos.Add(leftOf(heading, up).Mul(offset)), tan
}

// Point returns the position at parameter t ∈ [0, 1], displaced laterally by
// offset. Positive offsets lie to the left of the direction of travel, as seen
// from up, perpendicular to up and to the heading.
//
// Lengths and parameters at an offset describe the road displaced with the
// default up vector; other up vectors tilt the displacement but keep the
// parameterization.
func (r *Road) Point(t, offset float64, up mgl64.Vec3) mgl64.Vec3 {
	i, local := r.LocateScale(t, offset)
	p, _ := r.featurePoint(i, local, offset, up)
	return p
}

// frameFromTangent returns the orientation with columns tangent, left and
// normal.
func frameFromTangent(tan, up mgl64.Vec3, reverse bool) mgl64.Mat3 {
	normal := tan.Cross(leftOf(tan, up)).Normalize()
	left := normal.Cross(tan)
	if reverse {
		tan = tan.Mul(-1)
		left = left.Mul(-1)
	}
	return mgl64.Mat3FromCols(tan, left, normal)
}

// Frame returns the orientation at parameter t and the given offset. The
// columns are the unit tangent, the unit vector to the left of travel, and
// their cross product, the surface normal. With reverse set, tangent and
// left vector are flipped, as for the opposing lane of a two-way road; the
// normal is unchanged.
func (r *Road) Frame(t, offset float64, reverse bool, up mgl64.Vec3) mgl64.Mat3 {
	i, local := r.LocateScale(t, offset)
	_, tan := r.featurePoint(i, local, offset, up)
	return frameFromTangent(tan, up, reverse)
}

// PointTheta returns the position at parameter t and the given offset along
// with the heading of travel, the angle of the tangent's projection onto the
// xy plane measured from the x axis.
func (r *Road) PointTheta(t, offset float64, reverse bool, up mgl64.Vec3) (mgl64.Vec3, float64) {
	i, local := r.LocateScale(t, offset)
	p, tan := r.featurePoint(i, local, offset, up)
	if reverse {
		tan = tan.Mul(-1)
	}
	return p, math.Atan2(tan[1], tan[0])
}

// PointFrame returns the rigid transform combining [Road.Frame] and
// [Road.Point].
func (r *Road) PointFrame(t, offset float64, reverse bool, up mgl64.Vec3) mgl64.Mat4 {
	i, local := r.LocateScale(t, offset)
	p, tan := r.featurePoint(i, local, offset, up)
	m := frameFromTangent(tan, up, reverse)
	return mgl64.Mat4FromCols(m.Col(0).Vec4(0), m.Col(1).Vec4(0), m.Col(2).Vec4(0), p.Vec4(1))
}

// Center returns the center of the arc at interior point p, 0 ≤ p < N.
func (r *Road) Center(p int) (mgl64.Vec3, error) {
	if p < 0 || p >= len(r.frames) {
		return mgl64.Vec3{}, fmt.Errorf("%w: point %d not in [0, %d)", ErrFeature, p, len(r.frames))
	}
	if r.straight(p) {
		return mgl64.Vec3{}, fmt.Errorf("%w: point %d", ErrStraight, p)
	}
	return r.frames[p].Col(3).Vec3(), nil
}

// Translate returns a copy of r shifted by v. Lengths are unaffected.
func (r *Road) Translate(v mgl64.Vec3) *Road {
	out := r.clone()
	for i, f := range out.frames {
		out.frames[i] = mgl64.Translate3D(v[0], v[1], v[2]).Mul4(f)
	}
	for i, p := range out.points {
		out.points[i] = p.Add(v)
	}
	return out
}

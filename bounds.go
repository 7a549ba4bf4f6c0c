package arcroad

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r1"
)

// Unit is the full parameter interval [0, 1].
var Unit = r1.Interval{Lo: 0, Hi: 1}

// normInterval clamps iv to [0, 1] and orders its ends.
func normInterval(iv r1.Interval) r1.Interval {
	if iv.Lo > iv.Hi {
		iv.Lo, iv.Hi = iv.Hi, iv.Lo
	}
	return r1.Interval{Lo: Unit.ClampPoint(iv.Lo), Hi: Unit.ClampPoint(iv.Hi)}
}

// arcExtrema calls fn with every swept angle in the open range (th0, th1) at
// which coordinate axis of arc k attains an extremum. Heights are monotonic
// along an arc, so there are none for the z axis.
func (r *Road) arcExtrema(k, axis int, th0, th1 float64, fn func(th float64)) {
	if th0 > th1 {
		th0, th1 = th1, th0
	}
	f := r.frames[k]
	x, y := f.Col(0).Vec3(), f.Col(1).Vec3()
	if x[axis] == 0 && y[axis] == 0 {
		return
	}
	base := math.Atan2(y[axis], x[axis])
	first := math.Ceil((th0 - base) / math.Pi)
	for m := first; ; m++ {
		th := base + m*math.Pi
		if th >= th1 {
			break
		}
		if th > th0 {
			fn(th)
		}
	}
}

// arcPointAt returns the position of arc k at swept angle th and the given
// offset.
func (r *Road) arcPointAt(k int, th, offset float64) mgl64.Vec3 {
	f := r.frames[k]
	rho := math.Copysign(1, r.radii[k]) * (r.radii[k] - offset)
	sin, cos := math.Sincos(th)
	lift := zAxis.Mul(th / r.arcs[k] * r.rises[k])
	return f.Col(3).Vec3().Add(f.Col(0).Vec3().Mul(cos * rho)).Add(f.Col(1).Vec3().Mul(sin * rho)).Add(lift)
}

// BoundingBox returns the axis-aligned bounding box of the whole road at the
// given offset, evaluated with the default up vector. Arcs contribute their
// extremal points, not just their endpoints.
func (r *Road) BoundingBox(offset float64) (lo, hi mgl64.Vec3) {
	r.mustOffset(offset)
	first, _ := r.featurePoint(0, 0, offset, zAxis)
	lo, hi = first, first
	add := func(p mgl64.Vec3) {
		for a := range 3 {
			lo[a] = min(lo[a], p[a])
			hi[a] = max(hi[a], p[a])
		}
	}
	for i := range r.NumFeatures() {
		end, _ := r.featurePoint(i, 1, offset, zAxis)
		add(end)
		k := i / 2
		if i%2 == 0 || r.straight(k) {
			continue
		}
		for a := range 3 {
			r.arcExtrema(k, a, 0, r.arcs[k], func(th float64) {
				add(r.arcPointAt(k, th, offset))
			})
		}
	}
	return lo, hi
}

// BoundFeature2D returns the bounding rectangle, in the xy plane, of feature
// i over the local interval iv at the given offset.
func (r *Road) BoundFeature2D(offset float64, iv r1.Interval, i int) Rect {
	r.mustFeature(i)
	r.mustOffset(offset)
	iv = normInterval(iv)
	p0, _ := r.featurePoint(i, iv.Lo, offset, zAxis)
	p1, _ := r.featurePoint(i, iv.Hi, offset, zAxis)
	box := NewRectFromPoints(pt2(p0), pt2(p1))
	k := i / 2
	if i%2 == 0 || r.straight(k) {
		return box
	}
	for a := range 2 {
		r.arcExtrema(k, a, iv.Lo*r.arcs[k], iv.Hi*r.arcs[k], func(th float64) {
			box = box.UnionPoint(pt2(r.arcPointAt(k, th, offset)))
		})
	}
	return box
}

// PlanarBoundingBox returns the bounding rectangle, in the xy plane, of the
// part of the road between the parameters in iv at the given offset. It is
// the union of [Road.BoundFeature2D] over the features the interval covers.
func (r *Road) PlanarBoundingBox(offset float64, iv r1.Interval) Rect {
	iv = normInterval(iv)
	i0, l0 := r.LocateScale(iv.Lo, offset)
	i1, l1 := r.LocateScale(iv.Hi, offset)
	var box Rect
	for i := i0; i <= i1; i++ {
		local := r1.Interval{Lo: 0, Hi: 1}
		if i == i0 {
			local.Lo = l0
		}
		if i == i1 {
			local.Hi = l1
		}
		b := r.BoundFeature2D(offset, local, i)
		if i == i0 {
			box = b
		} else {
			box = box.Union(b)
		}
	}
	return box
}

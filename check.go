package arcroad

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/multierr"
)

// checkTolerance is the relative tolerance used when comparing recomputed
// quantities against stored ones.
const checkTolerance = 1e-6

func near(a, b, scale float64) bool {
	return math.Abs(a-b) <= checkTolerance*max(1, scale)
}

// Check verifies the internal consistency of r: array lengths, monotonic
// cumulative tables that agree with the geometry, level orthonormal frames,
// and arcs that touch the control polygon where expected. It is meant for tests
// and for roads built from untrusted data.
//
// Every violation is reported; the returned error combines them and each
// wraps [ErrInvariant]. Check never repairs anything.
func (r *Road) Check() error {
	var err error
	n := len(r.frames)
	if len(r.radii) != n || len(r.arcs) != n || len(r.rises) != n || len(r.arcCum) != n {
		err = multierr.Append(err, invariantf("%d frames, %d radii, %d arcs, %d rises, %d arc lengths",
			n, len(r.radii), len(r.arcs), len(r.rises), len(r.arcCum)))
	}
	if len(r.segCum) != n+1 {
		err = multierr.Append(err, invariantf("%d segment lengths for %d arcs", len(r.segCum), n))
	}
	if len(r.points) != n+2 || len(r.normals) != n+1 {
		err = multierr.Append(err, invariantf("%d points and %d normals for %d arcs", len(r.points), len(r.normals), n))
	}
	if err != nil {
		// Everything below indexes the arrays in lockstep.
		return err
	}

	for i, p := range r.points {
		if !finiteVec(p) {
			err = multierr.Append(err, invariantf("point %d is %v", i, p))
		}
	}
	for k, nrm := range r.normals {
		if !near(nrm.Len(), 1, 1) {
			err = multierr.Append(err, invariantf("normal %d has length %g", k, nrm.Len()))
		}
		d := r.points[k+1].Sub(r.points[k])
		if !near(d.Dot(nrm), d.Len(), d.Len()) {
			err = multierr.Append(err, invariantf("normal %d does not follow the control polygon", k))
		}
	}

	total := r.length(0)
	if len(r.segCum) > 0 && r.segCum[0] != 0 {
		err = multierr.Append(err, invariantf("road starts at length %g", r.segCum[0]))
	}
	var angle float64
	for k := range n {
		err = multierr.Append(err, r.checkArc(k, total))
		if r.arcCum[k].base < r.segCum[k] || r.segCum[k+1] < r.arcCum[k].base {
			err = multierr.Append(err, invariantf("cumulative lengths decrease around arc %d", k))
		}
		if !near(r.arcCum[k].base, r.segCum[k]+r.segLength(k), total) {
			err = multierr.Append(err, invariantf("arc %d starts at %g, expected %g", k, r.arcCum[k].base, r.segCum[k]+r.segLength(k)))
		}
		if !near(r.segCum[k+1], r.arcCum[k].base+r.arcLength0(k), total) {
			err = multierr.Append(err, invariantf("segment %d starts at %g, expected %g", k+1, r.segCum[k+1], r.arcCum[k].base+r.arcLength0(k)))
		}
		if !near(r.arcCum[k].angle, angle, math.Pi) {
			err = multierr.Append(err, invariantf("arc %d has cumulative angle %g, expected %g", k, r.arcCum[k].angle, angle))
		}
		angle += r.arcs[k]
	}
	return err
}

func (r *Road) checkArc(k int, total float64) error {
	var err error
	f := r.frames[k]
	x, y, z := f.Col(0).Vec3(), f.Col(1).Vec3(), f.Col(2).Vec3()
	for j, v := range [3]mgl64.Vec3{x, y, z} {
		if !near(v.Len(), 1, 1) {
			err = multierr.Append(err, invariantf("frame %d axis %d has length %g", k, j, v.Len()))
		}
	}
	if !near(x.Dot(y), 0, 1) || !near(y.Dot(z), 0, 1) || !near(x.Dot(z), 0, 1) {
		err = multierr.Append(err, invariantf("frame %d is not orthogonal", k))
	}
	if f.Col(0)[3] != 0 || f.Col(1)[3] != 0 || f.Col(2)[3] != 0 || f.Col(3)[3] != 1 {
		err = multierr.Append(err, invariantf("frame %d is not rigid", k))
	}
	if !near(z.Dot(zAxis), 1, 1) {
		err = multierr.Append(err, invariantf("frame %d is not level", k))
	}

	rad, arc := r.radii[k], r.arcs[k]
	if math.IsNaN(rad) || rad == 0 || math.IsNaN(arc) || !isFinite(r.rises[k]) {
		return multierr.Append(err, invariantf("arc %d has radius %g, angle %g and rise %g", k, rad, arc, r.rises[k]))
	}
	if r.straight(k) {
		if arc != 0 {
			err = multierr.Append(err, invariantf("straight arc %d sweeps %g", k, arc))
		}
		return err
	}
	if math.Signbit(rad) != math.Signbit(arc) || math.Abs(arc) >= math.Pi {
		err = multierr.Append(err, invariantf("arc %d has radius %g and angle %g", k, rad, arc))
	}

	// The arc must leave the incoming edge and join the outgoing edge of the
	// control polygon at the same distance in plan from their shared corner.
	corner := r.points[k+1]
	start, end := r.arcStart(k), r.arcEnd(k)
	d0 := corner.Sub(start)
	d1 := end.Sub(corner)
	scale := max(d0.Len(), d1.Len(), total)
	if !near(d0.Dot(r.normals[k]), d0.Len(), scale) || !near(d1.Dot(r.normals[k+1]), d1.Len(), scale) {
		err = multierr.Append(err, invariantf("arc %d does not touch the control polygon", k))
	}
	if l0, l1 := flat(d0).Len(), flat(d1).Len(); !near(l0, l1, scale) {
		err = multierr.Append(err, invariantf("arc %d has tangent lengths %g and %g", k, l0, l1))
	}
	return err
}

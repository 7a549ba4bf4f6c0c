package arcroad

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// straightAngle is the turn angle below which a corner is treated as
// collinear and receives an infinite radius.
const straightAngle = 1e-9

// FitOptions controls fitting. Use [DefaultFitOptions] as a starting point.
type FitOptions struct {
	// CullProximity collapses consecutive input points that are at most
	// this far apart. Exact duplicates are always collapsed.
	CullProximity float64
	// RemoveRedundant removes near-collinear interior points before
	// fitting, using the tolerances in Redundancy.
	RemoveRedundant bool
	Redundancy      RedundancyOptions
	// MinRadiusFactor rejects fits in which an arc's radius is smaller than
	// this factor times the shorter of the two polyline edges meeting at
	// its corner, both measured in plan.
	MinRadiusFactor float64
	// MinT is the smallest parametric distance accepted by [RayIntersect]
	// when [FitTangents] constructs its control polygon.
	MinT float64
}

// RedundancyOptions are the tolerances used to decide whether an interior
// point adds nothing to the shape of a road.
type RedundancyOptions struct {
	// Angle is the largest turn angle, in radians, of a redundant point.
	Angle float64
	// Distance is the largest distance of a redundant point from the
	// chord through its neighbors.
	Distance float64
}

// DefaultRedundancyOptions returns the tolerances used by
// [DefaultFitOptions].
func DefaultRedundancyOptions() RedundancyOptions {
	return RedundancyOptions{
		Angle:    1e-3,
		Distance: 1e-3,
	}
}

// DefaultFitOptions returns sensible defaults for fitting road centerlines
// given in meters.
func DefaultFitOptions() FitOptions {
	return FitOptions{
		CullProximity:   0,
		RemoveRedundant: true,
		Redundancy:      DefaultRedundancyOptions(),
		MinRadiusFactor: 1e-3,
		MinT:            0,
	}
}

// Fit fits a road to a polyline of at least two points.
//
// Every interior point becomes an arc tangent to the polyline edges on both
// sides of it. The tangent length of each arc is limited by the edges it
// shares with its neighbors: the first and last edges can be used in full,
// interior edges are split between their two corners in proportion to
// tan(φ/2) of each corner's turn angle φ, which gives both corners the same
// radius when they compete for the same edge.
//
// Corners are rounded in plan view: radii, turn angles and tangent lengths
// are those of the polygon projected onto the xy plane, and each arc climbs
// at a constant rate between the heights of its tangent points. Edges must
// not be vertical.
//
// Fit never returns a partially fitted road; on failure the error wraps one
// of [ErrTooFewPoints], [ErrNonFinite] or [ErrInfeasible].
func Fit(points []mgl64.Vec3, opts FitOptions) (*Road, error) {
	pts, err := cullPoints(points, opts.CullProximity)
	if err != nil {
		return nil, err
	}
	if opts.RemoveRedundant {
		pts = removeRedundant(pts, opts.Redundancy)
	}
	c, err := newCorners(pts)
	if err != nil {
		return nil, err
	}
	d := make([]float64, len(c.turns))
	for i := range d {
		d[i] = min(c.share(i, i), c.share(i+1, i))
	}
	return c.build(d, opts)
}

// FitFromRadii fits a road to a polyline using explicit radii for its
// interior points. Only the magnitude of each radius is used; the turn
// direction follows from the polyline. Radii of collinear points are
// ignored.
//
// The fit fails with [ErrInfeasible] if the arcs don't fit on the polyline's
// edges.
func FitFromRadii(points []mgl64.Vec3, radii []float64, opts FitOptions) (*Road, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPoints, len(points))
	}
	if len(radii) != len(points)-2 {
		return nil, fmt.Errorf("%w: %d radii for %d interior points", ErrInfeasible, len(radii), len(points)-2)
	}
	for i, p := range points {
		if !finiteVec(p) {
			return nil, fmt.Errorf("%w: point %d is %v", ErrNonFinite, i, p)
		}
	}
	c, err := newCorners(points)
	if err != nil {
		return nil, err
	}
	d := make([]float64, len(c.turns))
	for i, rad := range radii {
		if c.turns[i] < straightAngle {
			continue
		}
		if math.IsNaN(rad) || rad == 0 || math.IsInf(rad, 0) {
			return nil, fmt.Errorf("%w: radius %d is %g", ErrInfeasible, i, rad)
		}
		d[i] = math.Abs(rad) * math.Tan(c.turns[i]/2)
	}
	const slack = 1e-9
	for s, l := range c.runs {
		var used float64
		if s > 0 {
			used += d[s-1]
		}
		if s < len(d) {
			used += d[s]
		}
		if used > l*(1+slack)+slack {
			return nil, fmt.Errorf("%w: arcs need %g of edge %d of length %g", ErrInfeasible, used, s, l)
		}
	}
	return c.build(d, opts)
}

// FitTangents fits a road that starts at start heading along startTan and
// ends at end heading along endTan. The control polygon is constructed with
// [BiarcFromTangents].
func FitTangents(start, startTan, end, endTan mgl64.Vec3, opts FitOptions) (*Road, error) {
	pts := BiarcFromTangents(start, startTan, end, endTan, opts.MinT)
	if pts == nil {
		return nil, fmt.Errorf("%w: coincident endpoints", ErrTooFewPoints)
	}
	opts.RemoveRedundant = false
	return Fit(pts, opts)
}

// RemoveRedundant returns a road refitted without the interior points that
// are redundant under opts. Calling it again on the result with the same
// options removes nothing further.
func (r *Road) RemoveRedundant(opts RedundancyOptions) (*Road, error) {
	fo := r.opts
	fo.CullProximity = 0
	fo.RemoveRedundant = true
	fo.Redundancy = opts
	return Fit(r.points, fo)
}

func finiteVec(v mgl64.Vec3) bool {
	return isFinite(v[0]) && isFinite(v[1]) && isFinite(v[2])
}

// cullPoints validates points and collapses runs of points closer than
// proximity. The first and last points are always kept.
func cullPoints(points []mgl64.Vec3, proximity float64) ([]mgl64.Vec3, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPoints, len(points))
	}
	if !isFinite(proximity) || proximity < 0 {
		return nil, fmt.Errorf("%w: cull proximity %g", ErrNonFinite, proximity)
	}
	for i, p := range points {
		if !finiteVec(p) {
			return nil, fmt.Errorf("%w: point %d is %v", ErrNonFinite, i, p)
		}
	}
	out := make([]mgl64.Vec3, 0, len(points))
	out = append(out, points[0])
	last := points[len(points)-1]
	for _, p := range points[1 : len(points)-1] {
		if p.Sub(out[len(out)-1]).Len() > proximity {
			out = append(out, p)
		}
	}
	for len(out) > 1 && last.Sub(out[len(out)-1]).Len() <= proximity {
		out = out[:len(out)-1]
	}
	if last.Sub(out[0]).Len() <= proximity {
		return nil, fmt.Errorf("%w: all points within %g of each other", ErrTooFewPoints, proximity)
	}
	out = append(out, last)
	return out, nil
}

// isRedundant reports whether p adds nothing between prev and next.
func isRedundant(prev, p, next mgl64.Vec3, opts RedundancyOptions) bool {
	in := p.Sub(prev)
	out := next.Sub(p)
	turn := math.Atan2(in.Cross(out).Len(), in.Dot(out))
	if turn > opts.Angle {
		return false
	}
	chord := next.Sub(prev)
	l := chord.Len()
	var dist float64
	if l == 0 {
		dist = in.Len()
	} else {
		dist = chord.Cross(in).Len() / l
	}
	return dist <= opts.Distance
}

// removeRedundant drops redundant interior points until none are left.
func removeRedundant(points []mgl64.Vec3, opts RedundancyOptions) []mgl64.Vec3 {
	for {
		if len(points) < 3 {
			return points
		}
		out := make([]mgl64.Vec3, 0, len(points))
		out = append(out, points[0])
		for i := 1; i < len(points)-1; i++ {
			if isRedundant(out[len(out)-1], points[i], points[i+1], opts) {
				continue
			}
			out = append(out, points[i])
		}
		out = append(out, points[len(points)-1])
		if len(out) == len(points) {
			return out
		}
		points = out
	}
}

// corners holds the per-edge and per-corner quantities of a control polygon.
// Corners are rounded in plan view; heights follow the edges.
type corners struct {
	points []mgl64.Vec3
	dirs   []mgl64.Vec3
	lens   []float64
	// heads and runs are the unit directions and lengths of the edges
	// projected onto the xy plane.
	heads []mgl64.Vec3
	runs  []float64
	// turns[i] is the unsigned turn angle in plan at points[i+1], signs[i]
	// is +1 for left turns and -1 for right turns.
	turns []float64
	signs []float64
	// weights[i] is tan(turns[i]/2), the tangent length per unit radius.
	weights []float64
}

// flat projects v onto the xy plane.
func flat(v mgl64.Vec3) mgl64.Vec3 { return mgl64.Vec3{v[0], v[1], 0} }

func newCorners(points []mgl64.Vec3) (*corners, error) {
	c := &corners{
		points:  points,
		dirs:    make([]mgl64.Vec3, len(points)-1),
		lens:    make([]float64, len(points)-1),
		heads:   make([]mgl64.Vec3, len(points)-1),
		runs:    make([]float64, len(points)-1),
		turns:   make([]float64, len(points)-2),
		signs:   make([]float64, len(points)-2),
		weights: make([]float64, len(points)-2),
	}
	for i := range c.dirs {
		d := points[i+1].Sub(points[i])
		l := d.Len()
		if l == 0 {
			return nil, fmt.Errorf("%w: points %d and %d coincide", ErrInfeasible, i, i+1)
		}
		h := flat(d)
		run := h.Len()
		if run <= 1e-9*l {
			return nil, fmt.Errorf("%w: edge from point %d to %d is vertical", ErrInfeasible, i, i+1)
		}
		c.dirs[i] = d.Mul(1 / l)
		c.lens[i] = l
		c.heads[i] = h.Mul(1 / run)
		c.runs[i] = run
	}
	for i := range c.turns {
		h0, h1 := c.heads[i], c.heads[i+1]
		cross := h0.Cross(h1)[2]
		turn := math.Atan2(math.Abs(cross), h0.Dot(h1))
		if turn >= math.Pi-1e-9 {
			return nil, fmt.Errorf("%w: direction reverses at point %d", ErrInfeasible, i+1)
		}
		c.turns[i] = turn
		c.signs[i] = math.Copysign(1, cross)
		if turn >= straightAngle {
			c.weights[i] = math.Tan(turn / 2)
		}
	}
	return c, nil
}

// share returns the part of edge s, measured in plan, available to corner i,
// one of the two corners at the edge's ends. Edge s runs from corner s-1 to
// corner s.
func (c *corners) share(s, i int) float64 {
	other := i + 1
	if s == i {
		other = i - 1
	}
	if other < 0 || other >= len(c.weights) {
		return c.runs[s]
	}
	sum := c.weights[i] + c.weights[other]
	if sum == 0 {
		return 0
	}
	return c.runs[s] * c.weights[i] / sum
}

// along returns the point on edge s at plan distance d from its start.
func (c *corners) along(s int, d float64) mgl64.Vec3 {
	return c.points[s].Add(c.dirs[s].Mul(c.lens[s] * d / c.runs[s]))
}

// build constructs a road whose arc i has tangent length d[i] in plan.
//
// Each arc is a horizontal circular arc that climbs linearly from the point
// where it leaves edge i to the point where it joins edge i+1. Its frame has
// the z axis as third column, so lateral offsets stay horizontal.
func (c *corners) build(d []float64, opts FitOptions) (*Road, error) {
	n := len(c.turns)
	r := &Road{
		frames:  make([]mgl64.Mat4, n),
		radii:   make([]float64, n),
		arcs:    make([]float64, n),
		rises:   make([]float64, n),
		points:  c.points,
		normals: c.dirs,
		opts:    opts,
	}
	for i := range n {
		p := c.points[i+1]
		if c.turns[i] < straightAngle || d[i] == 0 {
			if c.turns[i] >= straightAngle {
				return nil, fmt.Errorf("%w: no room for an arc at point %d", ErrInfeasible, i+1)
			}
			r.frames[i] = straightFrame(p, c.heads[i])
			r.radii[i] = math.Inf(1)
			continue
		}

		radius := d[i] / c.weights[i]
		if limit := opts.MinRadiusFactor * min(c.runs[i], c.runs[i+1]); radius < limit || !isFinite(radius) {
			return nil, fmt.Errorf("%w: radius %g at point %d is below %g", ErrInfeasible, radius, i+1, limit)
		}

		a := p.Sub(c.dirs[i].Mul(c.lens[i] * d[i] / c.runs[i]))
		b := c.along(i+1, d[i])
		sign := c.signs[i]
		inward := zAxis.Cross(c.heads[i]).Mul(sign)
		center := a.Add(inward.Mul(radius))
		x := inward.Mul(-1)
		y := zAxis.Cross(x)
		r.frames[i] = mgl64.Mat4FromCols(x.Vec4(0), y.Vec4(0), zAxis.Vec4(0), center.Vec4(1))
		r.radii[i] = sign * radius
		r.arcs[i] = sign * c.turns[i]
		r.rises[i] = b[2] - a[2]
	}
	r.computeTables()
	return r, nil
}

// straightFrame returns the frame of a collinear corner at p with
// horizontal travel direction dir.
func straightFrame(p, dir mgl64.Vec3) mgl64.Mat4 {
	x := dir.Cross(zAxis)
	return mgl64.Mat4FromCols(x.Vec4(0), dir.Vec4(0), zAxis.Vec4(0), p.Vec4(1))
}

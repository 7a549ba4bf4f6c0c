package arcroad

import (
	"fmt"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// zAxis is the default up direction for queries and the axis of every arc.
var zAxis = mgl64.Vec3{0, 0, 1}

// Up returns the default up direction ⟨0, 0, 1⟩.
func Up() mgl64.Vec3 { return zAxis }

// Road is a curve made of alternating straight segments and circular arcs,
// fitted to a polyline.
//
// A road with N interior control points has 2N+1 features. Even features are
// segments (frequently of zero length), odd features are arcs. Feature i is
// described by the arrays at index i/2 and can be inspected with
// [Road.Feature].
//
// Arcs are horizontal in plan and climb at a constant rate, so on a road
// that changes height they are helical. Lateral offsets are horizontal.
//
// Roads are immutable once built: [Fit], [FitFromRadii], [FitTangents],
// [Road.RemoveRedundant] and [Road.Translate] all return new values. Queries
// may be issued concurrently.
type Road struct {
	// frames[k] is the rigid frame of arc k. The columns are the
	// horizontal unit vector from the center to the arc's start, its
	// cross product with the z axis, the z axis and the center, which is
	// level with the start.
	frames []mgl64.Mat4
	// radii[k] is the signed centerline radius of arc k, positive for
	// left turns. Collinear corners have an infinite radius.
	radii []float64
	// arcs[k] is the signed angle swept by arc k. It has the sign of
	// radii[k], so that arcs[k]*(radii[k]-offset) is the arc's length in
	// plan at the offset.
	arcs []float64
	// rises[k] is the height gained along arc k.
	rises []float64
	// graded is set if any curved arc has a nonzero rise.
	graded bool

	// segCum[k] is the centerline length from the start of the road to
	// the start of feature 2k.
	segCum []float64
	// arcCum[k] holds the centerline length to the start of feature 2k+1
	// and the signed angle swept by all arcs before it.
	arcCum []arcLength

	// points are the fitting input after culling and redundancy removal;
	// normals[k] is the unit direction of the polyline from points[k] to
	// points[k+1].
	points  []mgl64.Vec3
	normals []mgl64.Vec3

	minRadius float64
	opts      FitOptions
}

type arcLength struct {
	base  float64
	angle float64
}

// FeatureKind distinguishes the two kinds of features.
type FeatureKind int

const (
	// SegmentKind is a straight segment.
	SegmentKind FeatureKind = iota + 1
	// ArcKind is a circular arc.
	ArcKind
)

func (k FeatureKind) String() string {
	switch k {
	case SegmentKind:
		return "Segment"
	case ArcKind:
		return "Arc"
	default:
		return fmt.Sprintf("FeatureKind(%d)", int(k))
	}
}

// Feature describes one feature of a road along its centerline. It is
// computed on demand by [Road.Feature] and not stored.
type Feature struct {
	Kind FeatureKind
	// Index is the feature's position in the road, in [0, 2N].
	Index int
	// Start and End are the feature's endpoints on the centerline.
	Start mgl64.Vec3
	End   mgl64.Vec3
	// Direction is the unit direction of a segment, or of the tangent at
	// the start of an arc.
	Direction mgl64.Vec3
	// Center, Radius, Angle, Rise and Frame are only set for arcs.
	Center mgl64.Vec3
	Radius float64
	Angle  float64
	Rise   float64
	Frame  mgl64.Mat4
}

// Length returns the feature's centerline length.
func (f Feature) Length() float64 {
	if f.Kind == ArcKind {
		if math.IsInf(f.Radius, 0) {
			return 0
		}
		return math.Hypot(f.Angle*f.Radius, f.Rise)
	}
	return f.End.Sub(f.Start).Len()
}

// NumFeatures returns the number of features, 2N+1.
func (r *Road) NumFeatures() int { return 2*len(r.frames) + 1 }

// NumArcs returns the number of interior control points N.
func (r *Road) NumArcs() int { return len(r.frames) }

// Points returns the control points the road was fitted to.
func (r *Road) Points() []mgl64.Vec3 { return slices.Clone(r.points) }

// Normals returns the unit directions of the control polygon's edges.
func (r *Road) Normals() []mgl64.Vec3 { return slices.Clone(r.normals) }

// Radii returns the signed arc radii, measured in plan.
func (r *Road) Radii() []float64 { return slices.Clone(r.radii) }

// ArcAngles returns the signed angles swept by the arcs.
func (r *Road) ArcAngles() []float64 { return slices.Clone(r.arcs) }

// Rises returns the height gained along each arc.
func (r *Road) Rises() []float64 { return slices.Clone(r.rises) }

// Frames returns the arcs' control frames.
func (r *Road) Frames() []mgl64.Mat4 { return slices.Clone(r.frames) }

// MinRadius returns the smallest arc radius magnitude, or +Inf for a road
// without curved arcs. Valid offsets are strictly smaller in magnitude.
func (r *Road) MinRadius() float64 { return r.minRadius }

// Options returns the options the road was fitted with.
func (r *Road) Options() FitOptions { return r.opts }

// Feature returns the descriptor of feature i. It panics if i is out of
// range.
func (r *Road) Feature(i int) Feature {
	r.mustFeature(i)
	k := i / 2
	if i%2 == 0 {
		return Feature{
			Kind:      SegmentKind,
			Index:     i,
			Start:     r.segStart(k),
			End:       r.segEnd(k),
			Direction: r.normals[k],
		}
	}
	return Feature{
		Kind:      ArcKind,
		Index:     i,
		Start:     r.arcStart(k),
		End:       r.arcEnd(k),
		Direction: r.normals[k],
		Center:    r.frames[k].Col(3).Vec3(),
		Radius:    r.radii[k],
		Angle:     r.arcs[k],
		Rise:      r.rises[k],
		Frame:     r.frames[k],
	}
}

func (r *Road) straight(k int) bool { return math.IsInf(r.radii[k], 0) }

func (r *Road) arcStart(k int) mgl64.Vec3 {
	f := r.frames[k]
	if r.straight(k) {
		return f.Col(3).Vec3()
	}
	return f.Col(3).Vec3().Add(f.Col(0).Vec3().Mul(math.Abs(r.radii[k])))
}

func (r *Road) arcEnd(k int) mgl64.Vec3 {
	f := r.frames[k]
	if r.straight(k) {
		return f.Col(3).Vec3()
	}
	sin, cos := math.Sincos(r.arcs[k])
	radial := f.Col(0).Vec3().Mul(cos).Add(f.Col(1).Vec3().Mul(sin))
	return f.Col(3).Vec3().Add(radial.Mul(math.Abs(r.radii[k]))).Add(zAxis.Mul(r.rises[k]))
}

func (r *Road) segStart(k int) mgl64.Vec3 {
	if k == 0 {
		return r.points[0]
	}
	return r.arcEnd(k - 1)
}

func (r *Road) segEnd(k int) mgl64.Vec3 {
	if k == len(r.frames) {
		return r.points[len(r.points)-1]
	}
	return r.arcStart(k)
}

func (r *Road) segLength(k int) float64 {
	return r.segEnd(k).Sub(r.segStart(k)).Len()
}

// arcSize is the length of arc k at the given offset, that of a helix with
// the arc's rise.
func (r *Road) arcSize(k int, offset float64) float64 {
	if r.straight(k) {
		return 0
	}
	return math.Hypot(r.arcs[k]*(r.radii[k]-offset), r.rises[k])
}

// arcLength0 is the centerline length of arc k.
func (r *Road) arcLength0(k int) float64 { return r.arcSize(k, 0) }

// computeTables fills the cumulative length tables and the minimum radius
// from frames, radii and arcs.
func (r *Road) computeTables() {
	n := len(r.frames)
	r.segCum = make([]float64, n+1)
	r.arcCum = make([]arcLength, n)
	var angle float64
	r.minRadius = math.Inf(1)
	r.graded = false
	for k := range n {
		r.arcCum[k] = arcLength{
			base:  r.segCum[k] + r.segLength(k),
			angle: angle,
		}
		r.segCum[k+1] = r.arcCum[k].base + r.arcLength0(k)
		angle += r.arcs[k]
		if !r.straight(k) {
			r.minRadius = min(r.minRadius, math.Abs(r.radii[k]))
			r.graded = r.graded || r.rises[k] != 0
		}
	}
}

// clone returns a deep copy of r.
func (r *Road) clone() *Road {
	return &Road{
		frames:    slices.Clone(r.frames),
		radii:     slices.Clone(r.radii),
		arcs:      slices.Clone(r.arcs),
		rises:     slices.Clone(r.rises),
		graded:    r.graded,
		segCum:    slices.Clone(r.segCum),
		arcCum:    slices.Clone(r.arcCum),
		points:    slices.Clone(r.points),
		normals:   slices.Clone(r.normals),
		minRadius: r.minRadius,
		opts:      r.opts,
	}
}

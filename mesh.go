package arcroad

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r1"
)

// Vertex is a sample of a road surface.
type Vertex struct {
	Position mgl64.Vec3
	Normal   mgl64.Vec3
	TexCoord mgl64.Vec2
}

// Mesh is a triangulated ribbon between two offsets of a road.
type Mesh struct {
	Vertices []Vertex
	// Faces are triangles of indices into Vertices, wound counter-clockwise
	// when seen from above.
	Faces [][3]uint32
	// ReverseStart is the index of the first vertex whose texture
	// coordinates are mirrored along the road. It equals len(Vertices) if
	// none are.
	ReverseStart int
}

// sample is a position on a road, expressed as a feature and a local
// position within it. The same sample refers to corresponding points at all
// offsets.
type sample struct {
	feature int
	local   float64
}

func checkResolution(resolution float64) error {
	if !isFinite(resolution) || resolution <= 0 {
		return fmt.Errorf("%w: %g", ErrResolution, resolution)
	}
	return nil
}

// arcSteps returns the number of chords needed to sample the local range
// [lo, hi] of arc k at every one of offsets, such that no chord deviates from
// the arc by more than resolution.
func (r *Road) arcSteps(k int, lo, hi float64, offsets []float64, resolution float64) int {
	sweep := math.Abs(r.arcs[k] * (hi - lo))
	if sweep == 0 {
		return 1
	}
	steps := 1
	for _, o := range offsets {
		rho := math.Abs(r.radii[k] - o)
		step := math.Pi / 2
		if resolution < rho {
			step = min(step, 2*math.Acos(1-resolution/rho))
		}
		steps = max(steps, int(math.Ceil(sweep/step)))
	}
	return steps
}

// samples returns the sample positions covering the parameter interval iv,
// measured at offset ref, fine enough for each of offsets. Segments are
// sampled at their ends only.
func (r *Road) samples(iv r1.Interval, ref float64, offsets []float64, resolution float64) []sample {
	iv = normInterval(iv)
	i0, l0 := r.LocateScale(iv.Lo, ref)
	i1, l1 := r.LocateScale(iv.Hi, ref)
	out := []sample{{i0, l0}}
	eps := r.degenerateLength()
	for i := i0; i <= i1; i++ {
		lo, hi := 0.0, 1.0
		if i == i0 {
			lo = l0
		}
		if i == i1 {
			hi = l1
		}
		if hi <= lo {
			continue
		}
		k := i / 2
		if i%2 == 0 {
			if (hi-lo)*r.segLength(k) > eps {
				out = append(out, sample{i, hi})
			}
			continue
		}
		if r.straight(k) {
			continue
		}
		n := r.arcSteps(k, lo, hi, offsets, resolution)
		for j := 1; j <= n; j++ {
			out = append(out, sample{i, lo + (hi-lo)*float64(j)/float64(n)})
		}
	}
	if len(out) == 1 {
		out = append(out, sample{i1, l1})
	}
	return out
}

// degenerateLength is the length below which a segment is treated as a
// point when sampling. Fitting leaves segments of rounding-error length
// between arcs that share an edge.
func (r *Road) degenerateLength() float64 {
	return 1e-9 * max(1, r.length(0))
}

func (r *Road) vertices(samples []sample, offset float64, up mgl64.Vec3, texRef float64, texOffset float64) []Vertex {
	out := make([]Vertex, len(samples))
	start := r.featureBase(samples[0].feature, texRef) + samples[0].local*r.featureSize(samples[0].feature, texRef)
	for j, s := range samples {
		p, tan := r.featurePoint(s.feature, s.local, offset, up)
		u := r.featureBase(s.feature, texRef) + s.local*r.featureSize(s.feature, texRef) - start
		out[j] = Vertex{
			Position: p,
			Normal:   frameFromTangent(tan, up, false).Col(2),
			TexCoord: mgl64.Vec2{u + texOffset, 0},
		}
	}
	return out
}

// ExtractLine samples the road at the given offset over the parameter
// interval iv (parameters at that offset). Arcs are subdivided so that no
// chord deviates from the arc by more than resolution; segments contribute
// their endpoints. The first texture coordinate is the distance from the
// interval's start along the sampled line plus texOffset.
func (r *Road) ExtractLine(iv r1.Interval, offset, resolution float64, up mgl64.Vec3, texOffset float64) ([]Vertex, error) {
	if err := r.CheckOffset(offset); err != nil {
		return nil, err
	}
	if err := checkResolution(resolution); err != nil {
		return nil, err
	}
	s := r.samples(iv, offset, []float64{offset}, resolution)
	return r.vertices(s, offset, up, offset, texOffset), nil
}

// ExtractCenter is like [Road.ExtractLine], but measures texture
// coordinates along the centerline, so that lines extracted at different
// offsets share their texture parametrization.
func (r *Road) ExtractCenter(iv r1.Interval, offset, resolution float64, up mgl64.Vec3) ([]Vertex, error) {
	if err := r.CheckOffset(offset); err != nil {
		return nil, err
	}
	if err := checkResolution(resolution); err != nil {
		return nil, err
	}
	s := r.samples(iv, offset, []float64{offset}, resolution)
	return r.vertices(s, offset, up, 0, 0), nil
}

// ExtractArc samples the local interval iv of arc feature i at the given
// offset.
func (r *Road) ExtractArc(i int, iv r1.Interval, offset, resolution float64, up mgl64.Vec3) ([]Vertex, error) {
	if i < 0 || i >= r.NumFeatures() || i%2 == 0 {
		return nil, fmt.Errorf("%w: %d is not an arc", ErrFeature, i)
	}
	if err := r.CheckOffset(offset); err != nil {
		return nil, err
	}
	if err := checkResolution(resolution); err != nil {
		return nil, err
	}
	iv = normInterval(iv)
	k := i / 2
	n := 1
	if !r.straight(k) {
		n = r.arcSteps(k, iv.Lo, iv.Hi, []float64{offset}, resolution)
	}
	s := make([]sample, n+1)
	for j := range s {
		s[j] = sample{i, iv.Lo + iv.Length()*float64(j)/float64(n)}
	}
	return r.vertices(s, offset, up, offset, 0), nil
}

// MakeMesh builds a ribbon between offsets[0] and offsets[1] over the
// centerline parameter interval iv. Both sides are sampled at the same
// positions along the road, and consecutive pairs of samples are joined by
// two triangles. Texture coordinates run along each side with v = 0 on the
// first and v = 1 on the second; with reverseTex1 set, the second side's
// coordinates run backwards, and Mesh.ReverseStart marks where it begins.
func (r *Road) MakeMesh(iv r1.Interval, offsets [2]float64, resolution float64, reverseTex1 bool) (*Mesh, error) {
	for _, o := range offsets {
		if err := r.CheckOffset(o); err != nil {
			return nil, err
		}
	}
	if err := checkResolution(resolution); err != nil {
		return nil, err
	}
	s := r.samples(iv, 0, offsets[:], resolution)
	low := r.vertices(s, offsets[0], zAxis, offsets[0], 0)
	high := r.vertices(s, offsets[1], zAxis, offsets[1], 0)
	n := len(s)
	m := &Mesh{
		Vertices:     make([]Vertex, 0, 2*n),
		ReverseStart: 2 * n,
	}
	m.Vertices = append(m.Vertices, low...)
	total := high[n-1].TexCoord[0]
	for _, v := range high {
		v.TexCoord[1] = 1
		if reverseTex1 {
			v.TexCoord[0] = total - v.TexCoord[0]
		}
		m.Vertices = append(m.Vertices, v)
	}
	if reverseTex1 {
		m.ReverseStart = n
	}
	if offsets[0] <= offsets[1] {
		m.Faces = StripFaces(0, n, n, 2*n)
	} else {
		m.Faces = StripFaces(n, 2*n, 0, n)
	}
	return m, nil
}

// StripFaces triangulates the strip between the vertex ranges [lowStart,
// lowEnd) and [highStart, highEnd), which must have the same length. The
// low side is expected to lie to the right of the high side when walking
// along the strip, in which case the triangles are wound counter-clockwise.
func StripFaces(lowStart, lowEnd, highStart, highEnd int) [][3]uint32 {
	n := lowEnd - lowStart
	if n != highEnd-highStart {
		panic(fmt.Sprintf("arcroad: strip sides have %d and %d vertices", n, highEnd-highStart))
	}
	if n < 2 {
		return nil
	}
	faces := make([][3]uint32, 0, 2*(n-1))
	for j := range n - 1 {
		a0, a1 := uint32(lowStart+j), uint32(lowStart+j+1)
		b0, b1 := uint32(highStart+j), uint32(highStart+j+1)
		faces = append(faces, [3]uint32{a0, a1, b0}, [3]uint32{b0, a1, b1})
	}
	return faces
}

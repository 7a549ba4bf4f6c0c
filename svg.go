package arcroad

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r1"
)

// planarArc returns the projection onto the xy plane of arc k at the given
// offset, restricted to the local range [lo, hi].
func (r *Road) planarArc(k int, lo, hi, offset float64) Arc {
	f := r.frames[k]
	rho := math.Copysign(1, r.radii[k]) * (r.radii[k] - offset)
	x, y := f.Col(0), f.Col(1)
	return Arc{
		Center:     pt2(f.Col(3).Vec3()),
		U:          mgl64.Vec2{x[0] * rho, x[1] * rho},
		V:          mgl64.Vec2{y[0] * rho, y[1] * rho},
		StartAngle: lo * r.arcs[k],
		SweepAngle: (hi - lo) * r.arcs[k],
	}
}

// SVGArcPath returns the part of the road between the parameters in iv at the
// given offset, projected onto the xy plane. Segments become lines and arcs
// become cubic Béziers within tolerance of the true arc.
func (r *Road) SVGArcPath(iv r1.Interval, offset, tolerance float64) BezPath {
	iv = normInterval(iv)
	i0, l0 := r.LocateScale(iv.Lo, offset)
	i1, l1 := r.LocateScale(iv.Hi, offset)
	start, _ := r.featurePoint(i0, l0, offset, zAxis)
	p := BezPath{MoveTo(pt2(start))}
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
			end, _ := r.featurePoint(i, hi, offset, zAxis)
			if (hi-lo)*r.segLength(k) > eps {
				p.LineTo(pt2(end))
			}
			continue
		}
		if r.straight(k) {
			continue
		}
		first := true
		for el := range r.planarArc(k, lo, hi, offset).PathElements(tolerance) {
			if first {
				first = false
				continue
			}
			p.Push(el)
		}
	}
	return p
}

// centerInterval maps an interval of centerline parameters to the parameters
// at offset.
func (r *Road) centerInterval(iv r1.Interval, offset float64) r1.Interval {
	iv = normInterval(iv)
	return r1.Interval{
		Lo: r.ParameterMap(iv.Lo, 0, offset),
		Hi: r.ParameterMap(iv.Hi, 0, offset),
	}
}

// SVGArcPathCenter is like [Road.SVGArcPath], but iv holds centerline
// parameters.
func (r *Road) SVGArcPathCenter(iv r1.Interval, offset, tolerance float64) BezPath {
	return r.SVGArcPath(r.centerInterval(iv, offset), offset, tolerance)
}

// SVGPolyPath returns the polyline produced by [Road.ExtractLine], projected
// onto the xy plane.
func (r *Road) SVGPolyPath(iv r1.Interval, offset, resolution float64) (BezPath, error) {
	verts, err := r.ExtractLine(iv, offset, resolution, zAxis, 0)
	if err != nil {
		return nil, err
	}
	return polyPath(verts), nil
}

// SVGPolyPathCenter is like [Road.SVGPolyPath], but iv holds centerline
// parameters.
func (r *Road) SVGPolyPathCenter(iv r1.Interval, offset, resolution float64) (BezPath, error) {
	if err := r.CheckOffset(offset); err != nil {
		return nil, err
	}
	return r.SVGPolyPath(r.centerInterval(iv, offset), offset, resolution)
}

func polyPath(verts []Vertex) BezPath {
	p := make(BezPath, 0, len(verts))
	for j, v := range verts {
		if j == 0 {
			p.MoveTo(pt2(v.Position))
		} else {
			p.LineTo(pt2(v.Position))
		}
	}
	return p
}

// SVGArcArcPath returns the centerline of arc feature i as an SVG path using
// the elliptical arc command. The arc is drawn in the xy plane with its
// centerline radius. It panics if i is not an arc.
func (r *Road) SVGArcArcPath(i int, opts SVGOptions) string {
	r.mustFeature(i)
	if i%2 == 0 {
		panic(fmt.Errorf("%w: %d is not an arc", ErrFeature, i))
	}
	k := i / 2
	f := opts.Format
	start, end := pt2(r.arcStart(k)), pt2(r.arcEnd(k))
	if r.straight(k) {
		return fmt.Sprintf("M%s,%s L%s,%s", f(start.X), f(start.Y), f(end.X), f(end.Y))
	}
	// Arcs never sweep half a turn, so the large-arc flag is always 0.
	sweep := 0
	if r.arcs[k] > 0 {
		sweep = 1
	}
	rad := f(math.Abs(r.radii[k]))
	return fmt.Sprintf("M%s,%s A%s,%s 0 0,%d %s,%s",
		f(start.X), f(start.Y), rad, rad, sweep, f(end.X), f(end.Y))
}

func writeGroup(w io.Writer, id string, body func(writef func(string, ...any))) error {
	var err error
	writef := func(s string, v ...any) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, s, v...)
	}
	writef(`<g id="`)
	if err == nil {
		err = xml.EscapeText(w, []byte(id))
	}
	writef("\">\n")
	body(writef)
	writef("</g>\n")
	return err
}

// WriteSVGArcCircles writes an SVG group with the given id holding the full
// circle of every curved arc.
func (r *Road) WriteSVGArcCircles(w io.Writer, id string, opts SVGOptions) error {
	return writeGroup(w, id, func(writef func(string, ...any)) {
		for k := range r.frames {
			if r.straight(k) {
				continue
			}
			c := Circle{Center: pt2(r.frames[k].Col(3).Vec3()), Radius: math.Abs(r.radii[k])}
			writef("<path d=\"%s\"/>\n", c.Path(1e-3*c.Radius).SVG(opts))
		}
	})
}

// WriteSVGArcArcs writes an SVG group with the given id holding every arc
// as drawn by [Road.SVGArcArcPath].
func (r *Road) WriteSVGArcArcs(w io.Writer, id string, opts SVGOptions) error {
	return writeGroup(w, id, func(writef func(string, ...any)) {
		for k := range r.frames {
			if r.straight(k) {
				continue
			}
			writef("<path d=\"%s\"/>\n", r.SVGArcArcPath(2*k+1, opts))
		}
	})
}

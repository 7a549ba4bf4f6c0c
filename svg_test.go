package arcroad

import (
	"math"
	"strings"
	"testing"

	"github.com/golang/geo/r1"
)

func TestSVGArcArcPath(t *testing.T) {
	opts := SVGOptions{MaxPrecision: 6}
	r := mustFit(t, lShape(), noCull())
	diff(t, "M0,0 A10,10 0 0,1 10,10", r.SVGArcArcPath(1, opts))

	r = mustFit(t, bulge(), noCull())
	diff(t, "M0,0 A14.142136,14.142136 0 0,0 20,0", r.SVGArcArcPath(1, opts))

	mustPanic(t, ErrFeature, func() { r.SVGArcArcPath(0, opts) })
	mustPanic(t, ErrFeature, func() { r.SVGArcArcPath(3, opts) })
}

// endOf returns the point a path element draws to.
func endOf(t *testing.T, el PathElement) Point {
	t.Helper()
	switch el.Kind {
	case MoveToKind, LineToKind:
		return el.P0
	case CubicToKind:
		return el.P2
	}
	t.Fatalf("%v has no end point", el)
	return Point{}
}

func TestSVGArcPath(t *testing.T) {
	r := mustFit(t, zigzag(), DefaultFitOptions())
	for _, o := range []float64{-2, 0, 2} {
		p := r.SVGArcPath(Unit, o, 1e-3)
		if p[0].Kind != MoveToKind {
			t.Fatalf("path starts with %v", p[0])
		}
		diff(t, pt2(r.Point(0, o, Up())), p[0].P0, approx(1e-9))
		diff(t, pt2(r.Point(1, o, Up())), endOf(t, p[len(p)-1]), approx(1e-9))
		for _, el := range p[1:] {
			if el.Kind == MoveToKind {
				t.Fatalf("path has more than one subpath")
			}
		}
		var cubics int
		for _, el := range p {
			if el.Kind == CubicToKind {
				cubics++
			}
		}
		if cubics < 3 {
			t.Errorf("offset %g: got %d cubics for 3 arcs", o, cubics)
		}
	}

	half := r.SVGArcPath(r1.Interval{Lo: 0, Hi: 0.5}, 0, 1e-3)
	diff(t, pt2(r.Point(0.5, 0, Up())), endOf(t, half[len(half)-1]), approx(1e-9))
}

func TestSVGArcPathCenter(t *testing.T) {
	r := mustFit(t, lShape(), noCull())
	// Halfway along the centerline is halfway along every parallel line
	// of a single arc.
	p := r.SVGArcPathCenter(r1.Interval{Lo: 0, Hi: 0.5}, 3, 1e-3)
	diff(t, pt2(r.Point(0.5, 3, Up())), endOf(t, p[len(p)-1]), approx(1e-9))
}

func TestSVGPolyPath(t *testing.T) {
	r := mustFit(t, lShape(), noCull())
	p, err := r.SVGPolyPath(Unit, 0, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	verts, err := r.ExtractLine(Unit, 0, 0.5, Up(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(p) != len(verts) {
		t.Fatalf("got %d elements for %d vertices", len(p), len(verts))
	}
	s := p.SVG(SVGOptions{MaxPrecision: 3})
	if !strings.HasPrefix(s, "M0,0 L") || !strings.HasSuffix(s, " L10,10") {
		t.Errorf("unexpected path %q", s)
	}
	if _, err := r.SVGPolyPath(Unit, 10, 0.5); err == nil {
		t.Error("offset at the minimum radius accepted")
	}
	if _, err := r.SVGPolyPathCenter(Unit, 10, 0.5); err == nil {
		t.Error("offset at the minimum radius accepted")
	}
}

func TestWriteSVGGroups(t *testing.T) {
	r := mustFit(t, zigzag(), DefaultFitOptions())
	var sb strings.Builder
	if err := r.WriteSVGArcCircles(&sb, "circles & more", SVGOptions{MaxPrecision: 3}); err != nil {
		t.Fatal(err)
	}
	out := sb.String()
	if !strings.HasPrefix(out, `<g id="circles &amp; more">`) || !strings.HasSuffix(out, "</g>\n") {
		t.Errorf("unexpected group %q", out)
	}
	if n := strings.Count(out, "<path "); n != 3 {
		t.Errorf("got %d circles, want 3", n)
	}
	if n := strings.Count(out, "Z"); n != 3 {
		t.Errorf("got %d closed paths, want 3", n)
	}

	sb.Reset()
	if err := r.WriteSVGArcArcs(&sb, "arcs", SVGOptions{}); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(sb.String(), " A"); n != 3 {
		t.Errorf("got %d arcs, want 3", n)
	}
}

func TestCirclePath(t *testing.T) {
	c := Circle{Center: Pt(1, 2), Radius: 3}
	p := c.Path(1e-3)
	diff(t, MoveTo(Pt(4, 2)), p[0], approx(1e-12))
	diff(t, ClosePath(), p[len(p)-1])
	for _, el := range p[1 : len(p)-1] {
		end := endOf(t, el)
		diff(t, 3.0, math.Hypot(end.X-1, end.Y-2), approx(1e-12))
	}
	diff(t, Pt(4, 2), endOf(t, p[len(p)-2]), approx(1e-12))
}

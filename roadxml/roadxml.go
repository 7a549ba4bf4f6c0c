// Package roadxml stores roads as XML.
//
// Two forms are supported. The points form records the control points a road
// was fitted to:
//
//	<arc_road>
//	  <point x="0" y="0" z="0"/>
//	  <point x="10" y="0" z="0"/>
//	  <point x="10" y="10" z="0"/>
//	</arc_road>
//
// The poly form additionally records the radius of every interior point, so
// that reading it reproduces the arcs exactly instead of refitting them:
//
//	<arc_road_poly>
//	  <point x="0" y="0" z="0"/>
//	  <point x="10" y="0" z="0" radius="10"/>
//	  <point x="10" y="10" z="0"/>
//	</arc_road_poly>
//
// Numbers are written with the shortest representation that reads back
// exactly.
package roadxml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"honnef.co/go/arcroad"
)

const (
	pointsElement = "arc_road"
	polyElement   = "arc_road_poly"
)

// ErrFormat is returned for documents that aren't roads.
var ErrFormat = errors.New("roadxml: malformed document")

type point struct {
	X      float64  `xml:"x,attr"`
	Y      float64  `xml:"y,attr"`
	Z      float64  `xml:"z,attr"`
	Radius *float64 `xml:"radius,attr,omitempty"`
}

type document struct {
	XMLName xml.Name
	Points  []point `xml:"point"`
}

// ReadOptions controls how roads are read.
type ReadOptions struct {
	// Scale multiplies every coordinate. A zero component is treated as 1.
	Scale mgl64.Vec3
	// Fit is used to fit the points form.
	Fit arcroad.FitOptions
}

// DefaultReadOptions returns options that read coordinates unchanged and fit
// with [arcroad.DefaultFitOptions].
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		Scale: mgl64.Vec3{1, 1, 1},
		Fit:   arcroad.DefaultFitOptions(),
	}
}

func (opts ReadOptions) scale() mgl64.Vec3 {
	s := opts.Scale
	for i := range s {
		if s[i] == 0 {
			s[i] = 1
		}
	}
	return s
}

func encode(w io.Writer, doc document) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func toPoints(pts []mgl64.Vec3) []point {
	out := make([]point, len(pts))
	for i, p := range pts {
		out[i] = point{X: p[0], Y: p[1], Z: p[2]}
	}
	return out
}

// Write writes r in the points form.
func Write(w io.Writer, r *arcroad.Road) error {
	return encode(w, document{
		XMLName: xml.Name{Local: pointsElement},
		Points:  toPoints(r.Points()),
	})
}

// WritePoly writes r in the poly form.
func WritePoly(w io.Writer, r *arcroad.Road) error {
	pts := toPoints(r.Points())
	for i, rad := range r.Radii() {
		rad := math.Abs(rad)
		pts[i+1].Radius = &rad
	}
	return encode(w, document{
		XMLName: xml.Name{Local: polyElement},
		Points:  pts,
	})
}

// Read reads a road in either form. Points-form roads are fitted with
// opts.Fit; poly-form roads keep their recorded radii.
//
// Scaling applies to coordinates. Radii are scaled by the geometric mean of
// the x and y scale factors, which is exact for uniform horizontal scales.
func Read(rd io.Reader, opts ReadOptions) (*arcroad.Road, error) {
	var doc document
	if err := xml.NewDecoder(rd).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	s := opts.scale()
	pts := make([]mgl64.Vec3, len(doc.Points))
	for i, p := range doc.Points {
		pts[i] = mgl64.Vec3{p.X * s[0], p.Y * s[1], p.Z * s[2]}
	}

	switch doc.XMLName.Local {
	case pointsElement:
		return arcroad.Fit(pts, opts.Fit)
	case polyElement:
		if len(pts) < 2 {
			return nil, fmt.Errorf("%w: %d points", arcroad.ErrTooFewPoints, len(pts))
		}
		radii := make([]float64, len(pts)-2)
		rs := math.Sqrt(math.Abs(s[0] * s[1]))
		for i := range radii {
			p := doc.Points[i+1]
			if p.Radius == nil {
				return nil, fmt.Errorf("%w: interior point %d has no radius", ErrFormat, i+1)
			}
			radii[i] = *p.Radius * rs
		}
		fo := opts.Fit
		fo.CullProximity = 0
		fo.RemoveRedundant = false
		return arcroad.FitFromRadii(pts, radii, fo)
	default:
		return nil, fmt.Errorf("%w: unexpected element <%s>", ErrFormat, doc.XMLName.Local)
	}
}

package geoexport

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"honnef.co/go/arcroad"
)

// Road is a road with a name for display.
type Road struct {
	Name string
	Road *arcroad.Road
}

// Options controls which lines are exported and how finely they are
// sampled.
type Options struct {
	Projection Projection
	// Resolution is the largest distance, in meters, between an arc and
	// the chords approximating it.
	Resolution float64
	// Edges are the offsets of additional lines to export, such as lane
	// boundaries.
	Edges []float64
	// Ribbon, if not both zero, exports the surface between two offsets
	// as a polygon.
	Ribbon [2]float64
}

// DefaultOptions returns options that export the centerline only, sampled
// to within 10 cm.
func DefaultOptions(origin orb.Point) Options {
	return Options{
		Projection: Projection{Origin: origin},
		Resolution: 0.1,
	}
}

func (opts Options) hasRibbon() bool {
	return opts.Ribbon[0] != opts.Ribbon[1]
}

func (opts Options) line(r *arcroad.Road, offset float64) ([]mgl64.Vec3, error) {
	verts, err := r.ExtractLine(arcroad.Unit, offset, opts.Resolution, arcroad.Up(), 0)
	if err != nil {
		return nil, err
	}
	out := make([]mgl64.Vec3, len(verts))
	for i, v := range verts {
		out[i] = v.Position
	}
	return out, nil
}

func (opts Options) lineString(pts []mgl64.Vec3) orb.LineString {
	ls := make(orb.LineString, len(pts))
	for i, p := range pts {
		ls[i], _ = opts.Projection.ToLonLat(p)
	}
	return ls
}

// ribbon returns the outline of the surface between the ribbon offsets: the
// first side forwards, then the second side backwards.
func (opts Options) ribbon(r *arcroad.Road) ([]mgl64.Vec3, error) {
	m, err := r.MakeMesh(arcroad.Unit, opts.Ribbon, opts.Resolution, false)
	if err != nil {
		return nil, err
	}
	n := len(m.Vertices) / 2
	out := make([]mgl64.Vec3, 0, 2*n+1)
	for _, v := range m.Vertices[:n] {
		out = append(out, v.Position)
	}
	for i := 2*n - 1; i >= n; i-- {
		out = append(out, m.Vertices[i].Position)
	}
	return append(out, out[0]), nil
}

// FeatureCollection returns the centerline, edges and ribbon of every road as
// GeoJSON features. Each feature's properties hold the road's name, the kind
// of line ("centerline", "edge" or "ribbon"), and for lines their offset and
// length in meters.
func FeatureCollection(roads []Road, opts Options) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	for _, rd := range roads {
		offsets := append([]float64{0}, opts.Edges...)
		for i, o := range offsets {
			pts, err := opts.line(rd.Road, o)
			if err != nil {
				return nil, fmt.Errorf("road %q: %w", rd.Name, err)
			}
			f := geojson.NewFeature(opts.lineString(pts))
			f.Properties["name"] = rd.Name
			f.Properties["kind"] = "edge"
			if i == 0 {
				f.Properties["kind"] = "centerline"
			}
			f.Properties["offset"] = o
			f.Properties["length"] = rd.Road.Length(o)
			fc.Append(f)
		}
		if opts.hasRibbon() {
			pts, err := opts.ribbon(rd.Road)
			if err != nil {
				return nil, fmt.Errorf("road %q: %w", rd.Name, err)
			}
			ring := orb.Ring(opts.lineString(pts))
			// GeoJSON wants exterior rings counter-clockwise.
			if ring.Orientation() == orb.CW {
				ring.Reverse()
			}
			f := geojson.NewFeature(orb.Polygon{ring})
			f.Properties["name"] = rd.Name
			f.Properties["kind"] = "ribbon"
			fc.Append(f)
		}
	}
	return fc, nil
}

// Bound returns the bounding box of all features in fc.
func Bound(fc *geojson.FeatureCollection) orb.Bound {
	var b orb.Bound
	for i, f := range fc.Features {
		if i == 0 {
			b = f.Geometry.Bound()
		} else {
			b = b.Union(f.Geometry.Bound())
		}
	}
	return b
}

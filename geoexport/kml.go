package geoexport

import (
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/twpayne/go-kml"
)

func (opts Options) kmlCoordinates(pts []mgl64.Vec3) kml.Element {
	coords := make([]kml.Coordinate, len(pts))
	for i, p := range pts {
		ll, alt := opts.Projection.ToLonLat(p)
		coords[i] = kml.Coordinate{Lon: ll.Lon(), Lat: ll.Lat(), Alt: alt}
	}
	return kml.Coordinates(coords...)
}

// KML returns a KML document with one folder per road, holding a placemark
// for the centerline, one per edge, and one for the ribbon.
func KML(name string, roads []Road, opts Options) (*kml.CompoundElement, error) {
	children := []kml.Element{kml.Name(name)}
	for _, rd := range roads {
		folder := []kml.Element{kml.Name(rd.Name)}
		offsets := append([]float64{0}, opts.Edges...)
		for i, o := range offsets {
			pts, err := opts.line(rd.Road, o)
			if err != nil {
				return nil, fmt.Errorf("road %q: %w", rd.Name, err)
			}
			label := "centerline"
			if i > 0 {
				label = fmt.Sprintf("edge %g", o)
			}
			folder = append(folder, kml.Placemark(
				kml.Name(label),
				kml.Description(fmt.Sprintf("%.2f m", rd.Road.Length(o))),
				kml.LineString(
					kml.Tessellate(true),
					opts.kmlCoordinates(pts),
				),
			))
		}
		if opts.hasRibbon() {
			pts, err := opts.ribbon(rd.Road)
			if err != nil {
				return nil, fmt.Errorf("road %q: %w", rd.Name, err)
			}
			folder = append(folder, kml.Placemark(
				kml.Name("ribbon"),
				kml.Polygon(
					kml.OuterBoundaryIs(
						kml.LinearRing(opts.kmlCoordinates(pts)),
					),
				),
			))
		}
		children = append(children, kml.Folder(folder...))
	}
	return kml.KML(kml.Document(children...)), nil
}

// WriteKML writes the document returned by [KML] to w.
func WriteKML(w io.Writer, name string, roads []Road, opts Options) error {
	doc, err := KML(name, roads, opts)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>`+"\n"); err != nil {
		return err
	}
	return doc.WriteIndent(w, "", "  ")
}

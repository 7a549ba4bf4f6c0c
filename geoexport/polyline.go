package geoexport

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"
	"github.com/twpayne/go-polyline"

	"honnef.co/go/arcroad"
)

// ErrPolyline is returned for malformed encoded polylines.
var ErrPolyline = errors.New("geoexport: malformed polyline")

// codec encodes latitude and longitude with five decimal places, as used by
// most map services.
var codec = polyline.Codec{Dim: 2, Scale: 1e5}

// EncodePolyline returns the road's line at the given offset as an encoded
// polyline. Altitudes are dropped.
func EncodePolyline(r *arcroad.Road, offset float64, opts Options) (string, error) {
	pts, err := opts.line(r, offset)
	if err != nil {
		return "", err
	}
	coords := make([][]float64, 0, len(pts))
	for _, p := range pts {
		ll, _ := opts.Projection.ToLonLat(p)
		coords = append(coords, []float64{ll.Lat(), ll.Lon()})
	}
	return string(codec.EncodeCoords(nil, coords)), nil
}

// DecodePolyline decodes an encoded polyline into local positions at
// altitude alt, suitable for [arcroad.Fit].
func DecodePolyline(s string, alt float64, proj Projection) ([]mgl64.Vec3, error) {
	coords, rest, err := codec.DecodeCoords([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPolyline, err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrPolyline, len(rest))
	}
	out := make([]mgl64.Vec3, len(coords))
	for i, c := range coords {
		out[i] = proj.ToLocal(orb.Point{c[1], c[0]}, alt)
	}
	return out, nil
}

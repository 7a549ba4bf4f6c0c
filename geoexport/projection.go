// Package geoexport converts roads in local metric coordinates into
// geographic formats: GeoJSON, KML and encoded polylines.
package geoexport

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"
)

// earthRadius is the mean earth radius in meters.
const earthRadius = 6371008.8

// Projection maps between local coordinates in meters, with x pointing east,
// y pointing north and z up, and longitude/latitude in degrees. It is an
// equirectangular projection around Origin and is accurate for areas of a
// few tens of kilometers.
type Projection struct {
	Origin orb.Point
}

func (p Projection) metersPerDegree() (lon, lat float64) {
	lat = earthRadius * math.Pi / 180
	return lat * math.Cos(p.Origin.Lat()*math.Pi/180), lat
}

// ToLonLat converts a local position to longitude and latitude. The z
// coordinate is the altitude and is returned separately.
func (p Projection) ToLonLat(v mgl64.Vec3) (orb.Point, float64) {
	mlon, mlat := p.metersPerDegree()
	return orb.Point{
		p.Origin.Lon() + v[0]/mlon,
		p.Origin.Lat() + v[1]/mlat,
	}, v[2]
}

// ToLocal converts longitude, latitude and altitude to a local position.
func (p Projection) ToLocal(pt orb.Point, alt float64) mgl64.Vec3 {
	mlon, mlat := p.metersPerDegree()
	return mgl64.Vec3{
		(pt.Lon() - p.Origin.Lon()) * mlon,
		(pt.Lat() - p.Origin.Lat()) * mlat,
		alt,
	}
}

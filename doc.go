// Package arcroad fits road centerlines made of straight segments and
// circular arcs to polylines in 3D, and evaluates them at lateral offsets.
//
// # Features
//
// A [Road] fitted to a polyline with N interior points consists of 2N+1
// features. Even features are straight segments, odd features are circular
// arcs, one per interior point, tangent to the polyline edges on both sides of
// it. Segments are frequently of zero length, when neighboring arcs use up an
// edge completely. [Road.Feature] describes a single feature.
//
// Corners are rounded in plan view. Each arc is a horizontal circle that
// climbs at a constant rate between its tangent points, so arcs on a road
// that changes height are helical. Radii and arc angles are signed: positive
// values turn left when seen from above. A corner without a turn in plan gets
// an infinite radius and sweeps no angle.
//
// # Offsets and parameters
//
// Most queries take a lateral offset. Offsets are horizontal, and positive
// offsets are to the left of the direction of travel. Segments have the same
// length at every offset; a level arc of angle θ and radius R has length
// θ·(R−o) at offset o, and one that climbs by h has length √((θ·(R−o))² + h²).
// Offsets must be smaller in magnitude than [Road.MinRadius]; see
// [Road.CheckOffset].
//
// Positions along a road are given as parameters t ∈ [0, 1], proportional to
// arc length at the queried offset. Because lengths depend on the offset, the
// same t refers to different places on different lanes. [Road.ParameterMap]
// converts between them.
//
// # Output
//
// Roads can be sampled into vertices ([Road.ExtractLine]) and triangulated
// into ribbons between two offsets ([Road.MakeMesh]). For 2D output, their
// projection onto the xy plane can be converted to Bézier paths and SVG, and
// bounded with [Road.PlanarBoundingBox].
//
// Subpackages serialize roads and meshes. meshio writes OBJ and SMF, roadxml
// reads and writes XML, geoexport produces GeoJSON, KML and encoded
// polylines, osmimport fits roads to OpenStreetMap highways, and preview
// renders meshes to PNG.
//
// # Literature
//
//   - [Approximate a circle with cubic Bézier curves] by Spencer Mortensen
//
// [Approximate a circle with cubic Bézier curves]: https://spencermortensen.com/articles/bezier-circle/
package arcroad

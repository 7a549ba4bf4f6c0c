package arcroad

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Point is a position in the xy plane, used for planar bounds and SVG
// output.
type Point struct {
	X float64
	Y float64
}

// Pt returns the point (x, y).
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// pt2 projects v onto the xy plane.
func pt2(v mgl64.Vec3) Point { return Point{X: v[0], Y: v[1]} }

func (pt Point) String() string {
	return fmt.Sprintf("(%g, %g)", pt.X, pt.Y)
}

func (pt Point) Translate(o mgl64.Vec2) Point {
	return Point{X: pt.X + o[0], Y: pt.Y + o[1]}
}

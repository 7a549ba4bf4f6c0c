package arcroad

import (
	"iter"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// Circle is a circle in the xy plane. Roads use it to draw the full circle an
// arc belongs to.
type Circle struct {
	Center Point
	Radius float64
}

func (c Circle) Path(tolerance float64) BezPath { return slices.Collect(c.PathElements(tolerance)) }

// PathElements approximates the circle with a closed path of cubic Béziers,
// starting and ending on the positive x side of the center.
func (c Circle) PathElements(tolerance float64) iter.Seq[PathElement] {
	r := math.Abs(c.Radius)
	full := Arc{
		Center:     c.Center,
		U:          mgl64.Vec2{r, 0},
		V:          mgl64.Vec2{0, r},
		SweepAngle: 2 * math.Pi,
	}
	return func(yield func(PathElement) bool) {
		for el := range full.PathElements(tolerance) {
			if !yield(el) {
				return
			}
		}
		yield(ClosePath())
	}
}

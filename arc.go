package arcroad

import (
	"iter"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Arc is the planar image of a circular arc: the points Center + U cos θ +
// V sin θ for θ from StartAngle to StartAngle+SweepAngle. For an arc lying in
// the xy plane, such as the plan view of a road's arc, U and V are
// perpendicular and of equal length.
type Arc struct {
	Center     Point
	U, V       mgl64.Vec2
	StartAngle float64
	SweepAngle float64
}

func (a Arc) sample(angle float64) mgl64.Vec2 {
	sin, cos := math.Sincos(angle)
	return a.U.Mul(cos).Add(a.V.Mul(sin))
}

// Start returns the arc's first point.
func (a Arc) Start() Point { return a.Center.Translate(a.sample(a.StartAngle)) }

// PathElements approximates the arc with cubic Béziers whose distance from
// the arc does not exceed tolerance. The sequence starts with a MoveTo to
// the arc's start.
func (a Arc) PathElements(tolerance float64) iter.Seq[PathElement] {
	return func(yield func(PathElement) bool) {
		if !yield(MoveTo(a.Start())) {
			return
		}
		scaledError := max(a.U.Len(), a.V.Len()) / tolerance
		// Number of subdivisions per full turn based on error tolerance.
		nError := max(math.Pow(1.1163*scaledError, 1.0/6.0), 3.999_999)
		n := max(math.Ceil(nError*math.Abs(a.SweepAngle)*(1.0/(2.0*math.Pi))), 1)
		angleStep := a.SweepAngle / n
		armLen := math.Copysign((4.0/3.0)*math.Tan(math.Abs(0.25*angleStep)), a.SweepAngle)
		angle0 := a.StartAngle
		p0 := a.sample(angle0)

		for range int(n) {
			angle1 := angle0 + angleStep
			p1 := p0.Add(a.sample(angle0 + math.Pi/2).Mul(armLen))
			p3 := a.sample(angle1)
			p2 := p3.Add(a.sample(angle1 + math.Pi/2).Mul(-armLen))

			angle0 = angle1
			p0 = p3

			if !yield(CubicTo(
				a.Center.Translate(p1),
				a.Center.Translate(p2),
				a.Center.Translate(p3),
			)) {
				break
			}
		}
	}
}

package arcroad

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestPointOnArc(t *testing.T) {
	r := mustFit(t, lShape(), noCull())
	s := math.Sqrt2 / 2
	diff(t, v3(10*s, 10-10*s, 0), r.Point(0.5, 0, Up()), approx(1e-9))
	// Positive offsets are on the left, towards the center of a left turn.
	diff(t, v3(8*s, 10-8*s, 0), r.Point(0.5, 2, Up()), approx(1e-9))
	diff(t, v3(12*s, 10-12*s, 0), r.Point(0.5, -2, Up()), approx(1e-9))
	diff(t, v3(0, 2, 0), r.Point(0, 2, Up()), approx(1e-9))
	diff(t, v3(8, 10, 0), r.Point(1, 2, Up()), approx(1e-9))
}

func TestOffsetSymmetry(t *testing.T) {
	straight := mustFit(t, []mgl64.Vec3{v3(0, 0, 0), v3(10, 0, 0)}, DefaultFitOptions())
	for _, tt := range []float64{0, 0.3, 1} {
		p0 := straight.Point(tt, 0, Up())
		pl := straight.Point(tt, 2, Up())
		pr := straight.Point(tt, -2, Up())
		diff(t, v3(0, 2, 0), pl.Sub(p0), approx(1e-12))
		diff(t, v3(0, -2, 0), pr.Sub(p0), approx(1e-12))
	}

	// On curved roads the same centerline position has different
	// parameters at different offsets.
	for _, r := range []*Road{mustFit(t, zigzag(), DefaultFitOptions()), mustFit(t, hill(), DefaultFitOptions())} {
		for j := 0; j <= 20; j++ {
			tt := float64(j) / 20
			p0 := r.Point(tt, 0, Up())
			pl := r.Point(r.ParameterMap(tt, 0, 3), 3, Up())
			pr := r.Point(r.ParameterMap(tt, 0, -3), -3, Up())
			dl, dr := pl.Sub(p0), pr.Sub(p0)
			diff(t, 3.0, dl.Len(), approx(1e-7))
			diff(t, 3.0, dr.Len(), approx(1e-7))
			diff(t, dl, dr.Mul(-1), approx(1e-7))
		}
	}
}

func TestFrame(t *testing.T) {
	r := mustFit(t, hill(), DefaultFitOptions())
	for j := 0; j <= 50; j++ {
		tt := float64(j) / 50
		f := r.Frame(tt, 1, false, Up())
		tan, left, normal := f.Col(0), f.Col(1), f.Col(2)
		diff(t, 1.0, tan.Len(), approx(1e-9))
		diff(t, 1.0, left.Len(), approx(1e-9))
		diff(t, 0.0, tan.Dot(left), approx(1e-9))
		diff(t, 0.0, left.Dot(Up()), approx(1e-9))
		if normal.Dot(Up()) <= 0 {
			t.Errorf("t=%g: normal %v points down", tt, normal)
		}

		rev := r.Frame(tt, 1, true, Up())
		diff(t, tan.Mul(-1), rev.Col(0), approx(1e-12))
		diff(t, left.Mul(-1), rev.Col(1), approx(1e-12))
		diff(t, normal, rev.Col(2), approx(1e-12))

		m := r.PointFrame(tt, 1, false, Up())
		diff(t, r.Point(tt, 1, Up()), m.Col(3).Vec3(), approx(1e-12))
		diff(t, tan, m.Col(0).Vec3(), approx(1e-12))
	}
}

func TestFrameFollowsPosition(t *testing.T) {
	// The tangent is the direction in which positions move.
	for _, pts := range [][]mgl64.Vec3{zigzag(), hill()} {
		r := mustFit(t, pts, DefaultFitOptions())
		const h = 1e-6
		for j := 1; j < 20; j++ {
			tt := float64(j) / 20
			d := r.Point(tt+h, -2, Up()).Sub(r.Point(tt-h, -2, Up())).Normalize()
			diff(t, d, r.Frame(tt, -2, false, Up()).Col(0), approx(1e-5))
		}
	}
}

// sampleLength walks the road at the given offset in n equal parameter steps
// and returns the length of the resulting polyline and its longest edge.
func sampleLength(r *Road, n int, offset float64, up mgl64.Vec3) (total, longest float64) {
	prev := r.Point(0, offset, up)
	for j := 1; j <= n; j++ {
		p := r.Point(float64(j)/float64(n), offset, up)
		d := p.Sub(prev).Len()
		total += d
		longest = max(longest, d)
		prev = p
	}
	return total, longest
}

func TestOffsetGeometry(t *testing.T) {
	tests := []struct {
		name   string
		points []mgl64.Vec3
	}{
		{"zigzag", zigzag()},
		{"hill", hill()},
		{"grade", grade()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustFit(t, tt.points, DefaultFitOptions())
			m := r.MinRadius()
			for _, o := range []float64{-0.5 * m, -0.3 * m, -3, 0, 3, 0.3 * m, 0.5 * m} {
				const n = 5000
				want := r.Length(o)
				total, longest := sampleLength(r, n, o, Up())
				if !closeTo(total, want, 1e-6*want) {
					t.Errorf("offset %g: sampled length %g, want %g", o, total, want)
				}
				// Equal parameter steps cover equal lengths, so no chord
				// can be longer than one step.
				if step := want / n; longest > step*(1+1e-6)+1e-9 {
					t.Errorf("offset %g: jump of %g, step is %g", o, longest, step)
				}

				for j := 0; j <= 40; j++ {
					u := float64(j) / 40
					p0 := r.Point(u, 0, Up())
					tan := r.Frame(u, 0, false, Up()).Col(0)
					d := r.Point(r.ParameterMap(u, 0, o), o, Up()).Sub(p0)
					diff(t, math.Abs(o), d.Len(), approx(1e-9*max(1, m)))
					diff(t, 0.0, d.Dot(Up()), approx(1e-9*max(1, m)))
					diff(t, 0.0, d.Dot(tan), approx(1e-9*max(1, m)))
				}
			}
		})
	}
}

func TestOffsetContinuousForAnyUp(t *testing.T) {
	// Lateral directions depend only on the heading, which is continuous
	// where segments meet arcs.
	up := v3(0, 0.2, 1).Normalize()
	r := mustFit(t, hill(), DefaultFitOptions())
	const n = 5000
	for _, o := range []float64{-3, 3} {
		_, longest := sampleLength(r, n, o, up)
		if step := r.Length(o) / n; longest > 2*step {
			t.Errorf("offset %g: jump of %g, step is %g", o, longest, step)
		}
	}
}

func TestPointTheta(t *testing.T) {
	r := mustFit(t, lShape(), noCull())
	p, theta := r.PointTheta(1, 0, false, Up())
	diff(t, v3(10, 10, 0), p, approx(1e-9))
	diff(t, math.Pi/2, theta, approx(1e-9))
	_, theta = r.PointTheta(1, 0, true, Up())
	diff(t, -math.Pi/2, theta, approx(1e-9))
	_, theta = r.PointTheta(0, 0, false, Up())
	diff(t, 0.0, theta, approx(1e-9))
}

func TestCenter(t *testing.T) {
	r := mustFit(t, lShape(), noCull())
	c, err := r.Center(0)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, v3(0, 10, 0), c, approx(1e-9))
	if _, err := r.Center(1); !errors.Is(err, ErrFeature) {
		t.Errorf("got %v, want %v", err, ErrFeature)
	}
	if _, err := r.Center(-1); !errors.Is(err, ErrFeature) {
		t.Errorf("got %v, want %v", err, ErrFeature)
	}
}

func TestTranslate(t *testing.T) {
	r := mustFit(t, hill(), DefaultFitOptions())
	v := v3(100, -50, 7)
	moved := r.Translate(v)
	if err := moved.Check(); err != nil {
		t.Fatal(err)
	}
	diff(t, r.Length(2), moved.Length(2), approx(1e-9))
	for _, tt := range []float64{0, 0.2, 0.7, 1} {
		diff(t, r.Point(tt, 2, Up()).Add(v), moved.Point(tt, 2, Up()), approx(1e-9))
	}
	// r itself is unchanged.
	diff(t, hill()[0], r.Points()[0])
}

func TestConcurrentQueries(t *testing.T) {
	r := mustFit(t, zigzag(), DefaultFitOptions())
	want := r.Point(0.37, 1, Up())
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				if got := r.Point(0.37, 1, Up()); got != want {
					t.Errorf("got %v, want %v", got, want)
					return
				}
			}
		}()
	}
	wg.Wait()
}

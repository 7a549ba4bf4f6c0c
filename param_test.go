package arcroad

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

func TestLengthDependsOnOffset(t *testing.T) {
	r := mustFit(t, lShape(), noCull())
	for _, o := range []float64{-9, -2, 0, 2, 9} {
		want := (10 - o) * math.Pi / 2
		diff(t, want, r.Length(o), approx(1e-9))
		diff(t, 0.0, r.LengthAt(0, o))
		diff(t, r.Length(o), r.LengthAt(1, o))
		diff(t, r.Length(o), r.LengthAtFeature(2, 1, o), approx(1e-9))
	}
	diff(t, 4*math.Pi, r.FeatureBase(2, 2), approx(1e-9))
	diff(t, 4*math.Pi, r.FeatureSize(1, 2), approx(1e-9))
}

func TestLengthMultipleOffsets(t *testing.T) {
	r := mustFit(t, zigzag(), DefaultFitOptions())
	center := r.Length(0)
	for _, o := range []float64{-5, -1, 1, 5} {
		// The arcs turn left, right and left by a total of zero, so every
		// lateral line has the same length, but the features shift.
		diff(t, center, r.Length(o), approx(1e-9))
		for i := range r.NumFeatures() {
			var sum float64
			for j := range i {
				sum += r.FeatureSize(j, o)
			}
			diff(t, sum, r.FeatureBase(i, o), approx(1e-9))
		}
	}
	diff(t, 5*math.Pi/4, r.FeatureSize(1, 5), approx(1e-9))
	diff(t, 15*math.Pi/2, r.FeatureSize(3, 5), approx(1e-9))
}

func TestLengthGraded(t *testing.T) {
	r := mustFit(t, grade(), DefaultFitOptions())
	rise := r.Rises()[0]
	angle := r.ArcAngles()[0]
	rad := r.Radii()[0]
	last := r.FeatureSize(2, 0)
	for _, o := range []float64{-1000, -3, 0, 3, 1000} {
		// The arc is a helix that gains the same height at every offset.
		arc := math.Hypot(angle*(rad-o), rise)
		diff(t, arc, r.FeatureSize(1, o), approx(1e-9))
		diff(t, arc+last, r.Length(o), approx(1e-9))
		diff(t, arc, r.FeatureBase(2, o), approx(1e-9))
		diff(t, 0.5*r.Length(o), r.LengthAt(0.5, o), approx(1e-9))
	}

	h := mustFit(t, hill(), DefaultFitOptions())
	for _, o := range []float64{-5, 5} {
		for i := range h.NumFeatures() {
			var sum float64
			for j := range i {
				sum += h.FeatureSize(j, o)
			}
			diff(t, sum, h.FeatureBase(i, o), approx(1e-9))
		}
		prev := 0
		for j := 0; j <= 200; j++ {
			i := h.Locate(float64(j)/200, o)
			if i < prev {
				t.Fatalf("offset %g: Locate went back from %d to %d", o, prev, i)
			}
			prev = i
		}
	}
}

func TestOffsetBoundary(t *testing.T) {
	r := mustFit(t, lShape(), noCull())
	diff(t, 10.0, r.MinRadius(), approx(1e-9))
	bad := []float64{r.MinRadius(), -r.MinRadius(), 20, math.NaN(), math.Inf(1)}
	for _, o := range bad {
		t.Run(fmt.Sprint(o), func(t *testing.T) {
			if err := r.CheckOffset(o); !errors.Is(err, ErrOffset) {
				t.Errorf("got %v, want %v", err, ErrOffset)
			}
			mustPanic(t, ErrOffset, func() { r.Length(o) })
			mustPanic(t, ErrOffset, func() { r.LengthAt(0.5, o) })
			mustPanic(t, ErrOffset, func() { r.FeatureBase(1, o) })
			mustPanic(t, ErrOffset, func() { r.Locate(0.5, o) })
			mustPanic(t, ErrOffset, func() { r.Point(0.5, o, Up()) })
			mustPanic(t, ErrOffset, func() { r.Frame(0.5, o, false, Up()) })
			mustPanic(t, ErrOffset, func() { r.BoundingBox(o) })
			mustPanic(t, ErrOffset, func() { r.ParameterMap(0.5, 0, o) })
			if _, err := r.ExtractLine(Unit, o, 0.1, Up(), 0); !errors.Is(err, ErrOffset) {
				t.Errorf("got %v, want %v", err, ErrOffset)
			}
			if _, err := r.MakeMesh(Unit, [2]float64{0, o}, 0.1, false); !errors.Is(err, ErrOffset) {
				t.Errorf("got %v, want %v", err, ErrOffset)
			}
		})
	}
	if err := r.CheckOffset(math.Nextafter(r.MinRadius(), 0)); err != nil {
		t.Errorf("offset just inside the minimum radius: %v", err)
	}
}

func TestFeatureIndexPanics(t *testing.T) {
	r := mustFit(t, lShape(), noCull())
	mustPanic(t, ErrFeature, func() { r.FeatureBase(3, 0) })
	mustPanic(t, ErrFeature, func() { r.FeatureSize(-1, 0) })
	mustPanic(t, ErrFeature, func() { r.LengthAtFeature(7, 0, 0) })
}

func TestLocate(t *testing.T) {
	r := mustFit(t, zigzag(), DefaultFitOptions())
	for _, o := range []float64{-5, 0, 5} {
		prev := 0
		for j := 0; j <= 1000; j++ {
			tt := float64(j) / 1000
			i, local := r.LocateScale(tt, o)
			if i < prev {
				t.Fatalf("offset %g: Locate(%g) = %d after %d", o, tt, i, prev)
			}
			if local < 0 || local > 1 {
				t.Fatalf("offset %g: local position %g out of range", o, local)
			}
			prev = i
			diff(t, tt*r.Length(o), r.LengthAt(tt, o), approx(1e-9))
		}
	}

	n := r.NumFeatures()
	for _, tt := range []float64{-1, 0} {
		i, local := r.LocateScale(tt, 0)
		diff(t, [2]float64{0, 0}, [2]float64{float64(i), local})
	}
	for _, tt := range []float64{1, 2, math.Inf(1)} {
		i, local := r.LocateScale(tt, 0)
		diff(t, [2]float64{float64(n - 1), 1}, [2]float64{float64(i), local})
	}
	mustPanic(t, ErrNonFinite, func() { r.Locate(math.NaN(), 0) })
}

func TestParameterMap(t *testing.T) {
	r := mustFit(t, zigzag(), DefaultFitOptions())
	for _, tt := range []float64{0, 0.1, 0.25, 0.5, 0.8, 1} {
		for _, o := range []float64{-5, 5} {
			u := r.ParameterMap(tt, 0, o)
			i0, l0 := r.LocateScale(tt, 0)
			i1, l1 := r.LocateScale(u, o)
			p0, _ := r.featurePoint(i0, l0, o, Up())
			p1, _ := r.featurePoint(i1, l1, o, Up())
			diff(t, p0, p1, approx(1e-7))
			diff(t, tt, r.ParameterMap(u, o, 0), approx(1e-9))
		}
	}
}

func BenchmarkLocate(b *testing.B) {
	pts := zigzag()
	for i := range 200 {
		last := pts[len(pts)-1]
		pts = append(pts, last.Add(v3(10, float64(i%3)*5, 0)))
	}
	r, err := Fit(pts, DefaultFitOptions())
	if err != nil {
		b.Fatal(err)
	}
	for _, o := range []float64{0, 1} {
		b.Run(fmt.Sprint(o), func(b *testing.B) {
			for j := range b.N {
				r.LocateScale(float64(j%1000)/1000, o)
			}
		})
	}
}

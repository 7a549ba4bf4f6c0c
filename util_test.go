package arcroad

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

// approx compares floats, including those inside vectors, with an absolute
// tolerance.
func approx(margin float64) cmp.Option {
	return cmpopts.EquateApprox(0, margin)
}

func v3(x, y, z float64) mgl64.Vec3 { return mgl64.Vec3{x, y, z} }

func mustPanic(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		v := recover()
		if v == nil {
			t.Fatalf("expected a panic")
		}
		err, ok := v.(error)
		if !ok {
			t.Fatalf("panicked with %v, want an error", v)
		}
		if !errors.Is(err, target) {
			t.Fatalf("panicked with %v, want %v", err, target)
		}
	}()
	fn()
}

func mustFit(t testing.TB, points []mgl64.Vec3, opts FitOptions) *Road {
	t.Helper()
	r, err := Fit(points, opts)
	if err != nil {
		t.Fatalf("fit failed: %s", err)
	}
	return r
}

func noCull() FitOptions {
	opts := DefaultFitOptions()
	opts.RemoveRedundant = false
	return opts
}

// lShape turns left by 90° at (10, 0), giving a single arc of radius 10 that
// uses both edges in full.
func lShape() []mgl64.Vec3 {
	return []mgl64.Vec3{v3(0, 0, 0), v3(10, 0, 0), v3(10, 10, 0)}
}

// zigzag has three arcs, all of radius 10: left by 45°, right by 90°, left by
// 45°.
func zigzag() []mgl64.Vec3 {
	return []mgl64.Vec3{v3(0, 0, 0), v3(10, 0, 0), v3(20, 10, 0), v3(30, 0, 0), v3(40, 0, 0)}
}

// hill climbs while turning, so its arcs are helical.
func hill() []mgl64.Vec3 {
	return []mgl64.Vec3{v3(0, 0, 0), v3(20, 0, 1), v3(30, 15, 3), v3(50, 20, 3), v3(60, 40, 0)}
}

// grade turns by less than 3° where it starts climbing at 5%. Its single arc
// has a radius of about 4000 and uses both edges in full.
func grade() []mgl64.Vec3 {
	return []mgl64.Vec3{v3(0, 0, 0), v3(100, 0, 0), v3(200, 5, 5)}
}

func closeTo(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

package arcroad

import (
	"fmt"
	"math"
	"sort"
)

// CheckOffset reports whether offset is a valid lateral offset for r. An
// offset is valid if it is finite and its magnitude is strictly smaller than
// [Road.MinRadius]; larger offsets would turn some arc inside out.
//
// All methods that take an offset panic on invalid offsets. Callers handling
// untrusted offsets should check them first.
func (r *Road) CheckOffset(offset float64) error {
	if !isFinite(offset) {
		return fmt.Errorf("%w: %g", ErrOffset, offset)
	}
	if math.Abs(offset) >= r.minRadius {
		return fmt.Errorf("%w: |%g| reaches the minimum radius %g", ErrOffset, offset, r.minRadius)
	}
	return nil
}

func (r *Road) mustOffset(offset float64) {
	if err := r.CheckOffset(offset); err != nil {
		panic(err)
	}
}

func (r *Road) mustFeature(i int) {
	if i < 0 || i >= r.NumFeatures() {
		panic(fmt.Errorf("%w: %d not in [0, %d)", ErrFeature, i, r.NumFeatures()))
	}
}

func mustParam(t float64) {
	if math.IsNaN(t) {
		panic(fmt.Errorf("%w: NaN parameter", ErrNonFinite))
	}
}

// cumAngle returns the signed angle swept by all arcs before feature 2k.
func (r *Road) cumAngle(k int) float64 {
	if k < len(r.arcCum) {
		return r.arcCum[k].angle
	}
	if k == 0 {
		return 0
	}
	return r.arcCum[k-1].angle + r.arcs[k-1]
}

// featureBase sums the feature sizes before i. Unless arcs climb, arc sizes
// are linear in the offset and the cumulative tables answer in constant
// time.
func (r *Road) featureBase(i int, offset float64) float64 {
	if r.graded && offset != 0 {
		var base float64
		for j := range i {
			base += r.featureSize(j, offset)
		}
		return base
	}
	k := i / 2
	if i%2 == 0 {
		return r.segCum[k] - offset*r.cumAngle(k)
	}
	return r.arcCum[k].base - offset*r.arcCum[k].angle
}

func (r *Road) featureSize(i int, offset float64) float64 {
	k := i / 2
	if i%2 == 0 {
		return r.segLength(k)
	}
	return r.arcSize(k, offset)
}

func (r *Road) length(offset float64) float64 {
	return r.featureBase(r.NumFeatures()-1, offset) + r.segLength(len(r.frames))
}

// FeatureBase returns the length of the road at the given offset from its
// start to the start of feature i.
//
// Segments have the same length at every offset. A level arc's length at
// offset o is its swept angle times (radius − o), so on a level road the base
// of a feature at offset o is its centerline base minus o times the signed
// angle swept before it. An arc that climbs by h has length
// √((angle·(radius − o))² + h²).
func (r *Road) FeatureBase(i int, offset float64) float64 {
	r.mustFeature(i)
	r.mustOffset(offset)
	return r.featureBase(i, offset)
}

// FeatureSize returns the length of feature i at the given offset.
func (r *Road) FeatureSize(i int, offset float64) float64 {
	r.mustFeature(i)
	r.mustOffset(offset)
	return r.featureSize(i, offset)
}

// Length returns the total length of the road at the given offset.
func (r *Road) Length(offset float64) float64 {
	r.mustOffset(offset)
	return r.length(offset)
}

// LengthAt returns the length of the road at the given offset from its start
// up to parameter t. Parameters are normalized to [0, 1] and clamped.
func (r *Road) LengthAt(t, offset float64) float64 {
	i, local := r.LocateScale(t, offset)
	return r.featureBase(i, offset) + local*r.featureSize(i, offset)
}

// LengthAtFeature returns the length of the road at the given offset up to
// the local position local ∈ [0, 1] within feature i.
func (r *Road) LengthAtFeature(i int, local, offset float64) float64 {
	r.mustFeature(i)
	r.mustOffset(offset)
	return r.featureBase(i, offset) + local*r.featureSize(i, offset)
}

// Locate returns the index of the feature containing parameter t at the
// given offset. It is non-decreasing in t.
func (r *Road) Locate(t, offset float64) int {
	i, _ := r.LocateScale(t, offset)
	return i
}

// LocateScale is like [Road.Locate] but also returns the local position
// within the feature, 0 at its start and 1 at its end. For segments the
// local position is linear in distance, for arcs it is linear in the swept
// angle.
//
// Parameters at or before the start map to (0, 0), parameters at or after the
// end map to (2N, 1).
func (r *Road) LocateScale(t, offset float64) (int, float64) {
	mustParam(t)
	r.mustOffset(offset)
	if t <= 0 {
		return 0, 0
	}
	n := r.NumFeatures()
	if t >= 1 {
		return n - 1, 1
	}
	return r.locateLength(t*r.length(offset), offset)
}

// locateLength finds the feature containing the point at length l from the
// start, measured at the given offset.
func (r *Road) locateLength(l, offset float64) (int, float64) {
	n := r.NumFeatures()
	i := sort.Search(n, func(i int) bool {
		return r.featureBase(i, offset)+r.featureSize(i, offset) > l
	})
	if i == n {
		return n - 1, 1
	}
	size := r.featureSize(i, offset)
	if size <= 0 {
		return i, 0
	}
	local := (l - r.featureBase(i, offset)) / size
	return i, min(max(local, 0), 1)
}

// ParameterMap converts parameter t at offset from to the parameter at
// offset to that refers to the same position along the road, that is, to
// the same feature and local position. This keeps samples of parallel lanes
// aligned.
func (r *Road) ParameterMap(t, from, to float64) float64 {
	i, local := r.LocateScale(t, from)
	r.mustOffset(to)
	total := r.length(to)
	if total == 0 {
		return 0
	}
	return (r.featureBase(i, to) + local*r.featureSize(i, to)) / total
}

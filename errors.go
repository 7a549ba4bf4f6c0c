package arcroad

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrTooFewPoints is returned when fewer than two usable points remain
	// after culling.
	ErrTooFewPoints = errors.New("arcroad: too few points")
	// ErrNonFinite is returned for inputs containing NaN or infinite values.
	ErrNonFinite = errors.New("arcroad: non-finite input")
	// ErrInfeasible is returned when no valid arc can be fitted, for example
	// for a full reversal of direction or a radius below the configured
	// minimum.
	ErrInfeasible = errors.New("arcroad: geometrically infeasible")
	// ErrOffset is returned for lateral offsets whose magnitude reaches the
	// smallest arc radius of a road.
	ErrOffset = errors.New("arcroad: offset out of range")
	// ErrResolution is returned for non-positive or non-finite sampling
	// resolutions.
	ErrResolution = errors.New("arcroad: invalid resolution")
	// ErrFeature is returned for feature or point indices outside the road.
	ErrFeature = errors.New("arcroad: feature index out of range")
	// ErrStraight is returned when asking for the center of an arc with zero
	// curvature.
	ErrStraight = errors.New("arcroad: arc has no center")
	// ErrInvariant is wrapped by every error reported by [Road.Check].
	ErrInvariant = errors.New("arcroad: invariant violated")
)

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}
